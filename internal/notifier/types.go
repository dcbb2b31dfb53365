package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidCredential is returned when GroupMe rejects a post; the bot id is presumed wrong.
var ErrInvalidCredential = errors.New("invalid bot id")

// Config controls the GroupMe webhook client.
type Config struct {
	BotID   string
	BaseURL string

	// RatePerSec bounds outbound posts. 0 disables limiting.
	RatePerSec float64

	// Timeout bounds a single post. 0 leaves it to the HTTP client.
	Timeout time.Duration

	HistorySize int
	HTTPClient  *http.Client
}

type HistoryItem struct {
	At   time.Time
	Text string
}

// StatusError carries the unexpected HTTP status of a rejected post.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("groupme: %s (status=%d)", ErrInvalidCredential, e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrInvalidCredential }

// message is the GroupMe bot post payload.
type message struct {
	BotID       string `json:"bot_id"`
	Text        string `json:"text"`
	Attachments []any  `json:"attachments"`
}
