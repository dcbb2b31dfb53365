package report

import (
	"context"
	"fmt"

	"ffbot/internal/league"
)

// Kind selects one of the fixed reports.
type Kind int

const (
	KindFull Kind = iota
	KindShort
	KindClose
	KindFlavor
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindShort:
		return "short"
	case KindClose:
		return "close"
	case KindFlavor:
		return "flavor"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Builder pulls a fresh scoreboard for every report it builds.
type Builder struct {
	src league.Provider
}

func NewBuilder(src league.Provider) *Builder {
	return &Builder{src: src}
}

// Build renders the report of the given kind. Only scoreboard fetch errors are returned.
func (b *Builder) Build(ctx context.Context, kind Kind) (string, error) {
	if kind == KindFlavor {
		return Flavor(), nil
	}
	if b.src == nil {
		return "", fmt.Errorf("report %s: no league provider", kind)
	}
	matchups, err := b.src.Scoreboard(ctx)
	if err != nil {
		return "", fmt.Errorf("report %s: scoreboard: %w", kind, err)
	}
	switch kind {
	case KindFull:
		return Full(matchups), nil
	case KindShort:
		return Short(matchups), nil
	case KindClose:
		return Close(matchups), nil
	default:
		return "", fmt.Errorf("unknown report %s", kind)
	}
}
