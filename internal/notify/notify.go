package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	logx "github.com/duantianjun/qtshut/pkg/logx"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

// Config controls the Telegram delivery sink.
type Config struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chat_id"`
	// Timeout bounds a single send attempt.
	Timeout time.Duration `json:"timeout"`
}

// Service is a small send-only Telegram client. It holds no poller;
// the bot is used purely as an outbound transport.
//
// It is safe for concurrent use, and Apply may swap credentials while
// sends are in flight.
type Service struct {
	mu  sync.Mutex
	log logx.Logger

	cfg     Config
	bot     *tele.Bot
	limiter *rate.Limiter
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled && s.bot != nil
}

// Apply swaps configuration at runtime. A failed bot construction
// disables the sink until the next Apply.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	s.cfg = cfg
	// Telegram throttles per-chat sends; one message per second with a
	// small burst stays well under the limit.
	s.limiter = rate.NewLimiter(rate.Limit(1), 3)
	s.bot = nil

	if !cfg.Enabled {
		return
	}
	if strings.TrimSpace(cfg.Token) == "" || cfg.ChatID == 0 {
		s.log.Warn("notify enabled but token or chat_id missing; sink disabled")
		return
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		s.log.Warn("telegram bot init failed; sink disabled", logx.Err(err))
		return
	}
	s.bot = b
}

// Send delivers text to the configured chat. A disabled sink is a
// silent no-op; send errors are logged and swallowed.
func (s *Service) Send(ctx context.Context, text string) {
	s.mu.Lock()
	bot := s.bot
	chatID := s.cfg.ChatID
	timeout := s.cfg.Timeout
	limiter := s.limiter
	s.mu.Unlock()
	if bot == nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := limiter.Wait(sctx); err != nil {
		s.log.Warn("notification dropped: rate wait aborted", logx.Err(err))
		return
	}
	if _, err := bot.Send(tele.ChatID(chatID), text); err != nil {
		s.log.Warn("notification send failed", logx.Err(err), logx.Int64("chat_id", chatID))
		return
	}
	s.log.Debug("notification sent", logx.Int("len", len(text)))
}
