package config

import (
	"sort"
	"strings"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// SummarizeChange returns the changed sections plus safe structured
// attrs for logging. Secrets (the notify token) are never included.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Store != newCfg.Store {
		changed = append(changed, "store")
		attrs = append(attrs,
			logx.String("store.driver", strings.TrimSpace(newCfg.Store.Driver)),
			logx.Bool("store.path_set", strings.TrimSpace(newCfg.Store.Path) != ""),
		)
	}

	if oldCfg.Shutdown != newCfg.Shutdown {
		changed = append(changed, "shutdown")
		attrs = append(attrs,
			logx.Bool("shutdown.simulate", newCfg.Shutdown.Simulate),
			logx.String("shutdown.grace", strings.TrimSpace(newCfg.Shutdown.Grace)),
		)
	}

	oldN, newN := oldCfg.Notify, newCfg.Notify
	if (oldN == nil) != (newN == nil) || (oldN != nil && *oldN != *newN) {
		changed = append(changed, "notify")
		enabled := newN != nil && newN.Enabled
		tokenSet := newN != nil && strings.TrimSpace(newN.Token) != ""
		attrs = append(attrs,
			logx.Bool("notify.enabled", enabled),
			logx.Bool("notify.token_set", tokenSet),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
