package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	logx "ffbot/pkg/logx"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.groupme.com"
	postPath       = "/v3/bots/post"
)

// Service posts messages to a GroupMe bot. It is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	log     logx.Logger
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	s.cfg = cfg

	s.client = cfg.HTTPClient
	if s.client == nil {
		s.client = http.DefaultClient
	}

	s.limiter = nil
	if cfg.RatePerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
}

// Send posts text to the chat. It returns nil only when GroupMe answers 202 Accepted.
func (s *Service) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	cfg := s.cfg
	client := s.client
	lim := s.limiter
	s.mu.Unlock()

	if strings.TrimSpace(cfg.BotID) == "" {
		return fmt.Errorf("groupme: empty bot id: %w", ErrInvalidCredential)
	}

	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(message{BotID: cfg.BotID, Text: text, Attachments: []any{}})
	if err != nil {
		return fmt.Errorf("groupme: encode: %w", err)
	}

	callCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, cfg.BaseURL+postPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("groupme: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("groupme: post: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		s.log.Debug("post rejected", logx.Int("status", resp.StatusCode), logx.Duration("took", time.Since(start)))
		return &StatusError{StatusCode: resp.StatusCode}
	}

	s.appendHistory(text, cfg.HistorySize)
	s.log.Debug("message posted", logx.Int("len", len(text)), logx.Duration("took", time.Since(start)))
	return nil
}

// History returns recently posted messages, oldest first.
func (s *Service) History() []HistoryItem {
	s.hmu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return out
}

func (s *Service) appendHistory(text string, max int) {
	s.hmu.Lock()
	s.history = append(s.history, HistoryItem{At: time.Now(), Text: text})
	if len(s.history) > max {
		s.history = s.history[len(s.history)-max:]
	}
	s.hmu.Unlock()
}
