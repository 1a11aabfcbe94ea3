package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	logx "github.com/duantianjun/qtshut/pkg/logx"

	"github.com/duantianjun/qtshut/internal/notify"
	"github.com/duantianjun/qtshut/internal/taskstore"
)

type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Store    StoreConfig    `json:"store"`
	Shutdown ShutdownConfig `json:"shutdown"`

	// Notify is optional; nil means the notification sink is disabled.
	Notify *NotifyConfig `json:"notify,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StoreConfig controls where the scheduled task is persisted.
//
// Example:
//
//	"store": { "driver": "file", "path": "./qtshut_task" }
type StoreConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// ShutdownConfig controls what happens when the countdown reaches zero.
//
// Grace is a Go duration string; it delays the power-off command after
// the countdown completes, giving the final notification time to land.
type ShutdownConfig struct {
	Simulate bool   `json:"simulate"`
	Grace    string `json:"grace,omitempty"`
}

// NotifyConfig controls the Telegram delivery sink.
// Timeout is a Go duration string bounding a single send attempt.
type NotifyConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chat_id"`
	Timeout string `json:"timeout,omitempty"`
}

// Validate checks the parts of the config that must be rejected before
// commit. Logging level typos degrade to info and are not fatal.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store.Driver)) {
	case "", "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if _, err := ParseDurationField("store.busy_timeout", c.Store.BusyTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("shutdown.grace", c.Shutdown.Grace); err != nil {
		return err
	}
	if c.Notify != nil {
		if _, err := ParseDurationField("notify.timeout", c.Notify.Timeout); err != nil {
			return err
		}
		if c.Notify.Enabled && strings.TrimSpace(c.Notify.Token) == "" {
			return errors.New("notify.token: required when notify is enabled")
		}
	}
	return nil
}

func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

func (c *Config) StoreConfig() taskstore.Config {
	busy, _ := ParseDurationField("store.busy_timeout", c.Store.BusyTimeout)
	return taskstore.Config{
		Driver:      c.Store.Driver,
		Path:        c.Store.Path,
		BusyTimeout: busy,
	}
}

func (c *Config) NotifyConfig() notify.Config {
	if c.Notify == nil {
		return notify.Config{}
	}
	timeout, _ := ParseDurationField("notify.timeout", c.Notify.Timeout)
	return notify.Config{
		Enabled: c.Notify.Enabled,
		Token:   c.Notify.Token,
		ChatID:  c.Notify.ChatID,
		Timeout: timeout,
	}
}

// GraceDuration returns the post-countdown delay, defaulting to zero.
func (c *Config) GraceDuration() time.Duration {
	d, _ := ParseDurationField("shutdown.grace", c.Shutdown.Grace)
	return d
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
		Store:   StoreConfig{Driver: "file", Path: "qtshut_task"},
	}
}
