package dispatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"ffbot/internal/league/fixture"
	"ffbot/internal/notifier"
	"ffbot/internal/report"
	logx "ffbot/pkg/logx"
)

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) Send(_ context.Context, text string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, text)
	return nil
}

type failingBuilder struct{ err error }

func (f failingBuilder) Build(context.Context, report.Kind) (string, error) { return "", f.err }

func newFixtureDispatcher(s Sender, initMsg string) *Dispatcher {
	return New(report.NewBuilder(fixture.New()), s, initMsg, logx.Nop())
}

func TestRunReportTokens(t *testing.T) {
	t.Parallel()
	matchups, _ := fixture.New().Scoreboard(context.Background())
	tests := []struct {
		token string
		want  string
	}{
		{token: TokenScoreboard, want: report.Full(matchups)},
		{token: TokenScoreboardShort, want: report.Short(matchups)},
		{token: TokenCloseScores, want: report.Close(matchups)},
	}
	for _, tt := range tests {
		s := &recordingSender{}
		if err := newFixtureDispatcher(s, "").Run(context.Background(), tt.token); err != nil {
			t.Fatalf("Run(%s): %v", tt.token, err)
		}
		if len(s.sent) != 1 || s.sent[0] != tt.want {
			t.Fatalf("Run(%s) sent %q, want %q", tt.token, s.sent, tt.want)
		}
	}
}

func TestRunRandomPhrase(t *testing.T) {
	t.Parallel()
	s := &recordingSender{}
	if err := newFixtureDispatcher(s, "").Run(context.Background(), TokenRandomPhrase); err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, p := range report.Phrases() {
		if len(s.sent) == 1 && s.sent[0] == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("sent %q, not a known phrase", s.sent)
	}
}

func TestRunInit(t *testing.T) {
	t.Parallel()
	s := &recordingSender{}
	d := newFixtureDispatcher(s, "")
	if err := d.Run(context.Background(), TokenInit); err != nil {
		t.Fatalf("Run(init): %v", err)
	}
	if len(s.sent) != 0 {
		t.Fatalf("empty init message should send nothing, sent %q", s.sent)
	}

	d.SetInitMessage("Hi")
	if err := d.Run(context.Background(), TokenInit); err != nil {
		t.Fatalf("Run(init): %v", err)
	}
	if len(s.sent) != 1 || s.sent[0] != "Hi" {
		t.Fatalf("sent %q, want [Hi]", s.sent)
	}
}

func TestRunUnknownTokenSendsFallback(t *testing.T) {
	t.Parallel()
	for _, token := range []string{"get_standings", " init", "get_scoreboard ", "GET_CLOSE_SCORES", ""} {
		s := &recordingSender{}
		if err := newFixtureDispatcher(s, "Hi").Run(context.Background(), token); err != nil {
			t.Fatalf("Run(%q): %v", token, err)
		}
		if len(s.sent) != 1 || s.sent[0] != FallbackMessage {
			t.Fatalf("Run(%q) sent %q, want fallback", token, s.sent)
		}
	}
	if Known(" init") {
		t.Fatal("padded token should not be known")
	}
}

func TestRunPropagatesSendError(t *testing.T) {
	t.Parallel()
	s := &recordingSender{err: &notifier.StatusError{StatusCode: 404}}
	err := newFixtureDispatcher(s, "").Run(context.Background(), TokenCloseScores)
	if !errors.Is(err, notifier.ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestRunPropagatesBuildError(t *testing.T) {
	t.Parallel()
	boom := errors.New("espn down")
	s := &recordingSender{}
	d := New(failingBuilder{err: boom}, s, "", logx.Nop())
	if err := d.Run(context.Background(), TokenScoreboard); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped build error", err)
	}
	if len(s.sent) != 0 {
		t.Fatal("nothing should be sent on build error")
	}
}

func TestKnownAndTokens(t *testing.T) {
	t.Parallel()
	for _, tok := range Tokens() {
		if !Known(tok) {
			t.Fatalf("Known(%q) = false", tok)
		}
	}
	if Known("nope") {
		t.Fatal("Known(nope) = true")
	}
}

func TestWriterSender(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	w := &WriterSender{W: &buf}
	if err := w.Send(context.Background(), "Score Update"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if buf.String() != "Score Update\n\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
