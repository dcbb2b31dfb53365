// Package dispatch maps report tokens to report builds and webhook posts.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"ffbot/internal/report"
	logx "ffbot/pkg/logx"
)

// Tokens accepted by Run.
const (
	TokenInit            = "init"
	TokenScoreboard      = "get_scoreboard"
	TokenScoreboardShort = "get_scoreboard_short"
	TokenCloseScores     = "get_close_scores"
	TokenRandomPhrase    = "get_random_phrase"
)

// FallbackMessage is posted for any token that is not recognized.
const FallbackMessage = "Something happened. HALP"

// Sender posts one text message. *notifier.Service implements it.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// ReportBuilder renders one report. *report.Builder implements it.
type ReportBuilder interface {
	Build(ctx context.Context, kind report.Kind) (string, error)
}

var reportTokens = map[string]report.Kind{
	TokenScoreboard:      report.KindFull,
	TokenScoreboardShort: report.KindShort,
	TokenCloseScores:     report.KindClose,
	TokenRandomPhrase:    report.KindFlavor,
}

// Tokens returns every recognized token.
func Tokens() []string {
	return []string{TokenInit, TokenScoreboard, TokenScoreboardShort, TokenCloseScores, TokenRandomPhrase}
}

// Known reports whether token maps to an action other than the fallback.
func Known(token string) bool {
	if token == TokenInit {
		return true
	}
	_, ok := reportTokens[token]
	return ok
}

type Dispatcher struct {
	mu      sync.RWMutex
	builder ReportBuilder
	sender  Sender
	initMsg string

	log logx.Logger
}

func New(builder ReportBuilder, sender Sender, initMessage string, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{builder: builder, sender: sender, initMsg: initMessage, log: log}
}

// SetInitMessage swaps the message posted for the init token.
func (d *Dispatcher) SetInitMessage(msg string) {
	d.mu.Lock()
	d.initMsg = msg
	d.mu.Unlock()
}

// Run resolves token, builds the message and posts it. Tokens match exactly,
// so " init" is unknown. An empty init message posts nothing. Unknown tokens
// post FallbackMessage.
func (d *Dispatcher) Run(ctx context.Context, token string) error {
	d.mu.RLock()
	initMsg := d.initMsg
	d.mu.RUnlock()

	var text string
	switch kind, isReport := reportTokens[token]; {
	case token == TokenInit:
		if strings.TrimSpace(initMsg) == "" {
			d.log.Debug("init message empty; nothing sent")
			return nil
		}
		text = initMsg
	case isReport:
		if d.builder == nil {
			return fmt.Errorf("%s: no report builder", token)
		}
		out, err := d.builder.Build(ctx, kind)
		if err != nil {
			return fmt.Errorf("%s: %w", token, err)
		}
		text = out
	default:
		d.log.Warn("unknown report token; sending fallback", logx.String("token", token))
		text = FallbackMessage
	}

	if d.sender == nil {
		return fmt.Errorf("%s: no sender", token)
	}
	if err := d.sender.Send(ctx, text); err != nil {
		return fmt.Errorf("%s: send: %w", token, err)
	}
	d.log.Info("message sent", logx.String("token", token), logx.Int("len", len(text)))
	return nil
}

// WriterSender prints messages instead of posting them. Used for dry runs.
type WriterSender struct {
	mu sync.Mutex
	W  io.Writer
}

func (w *WriterSender) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.W, "%s\n\n", text)
	return err
}
