package engine

import "sync"

// history keeps the most recent task outcomes, oldest first.
type history struct {
	mu    sync.Mutex
	items []HistoryItem
}

func (h *history) add(it HistoryItem, limit int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, it)
	if over := len(h.items) - limit; over > 0 {
		h.items = append(h.items[:0], h.items[over:]...)
	}
}

func (h *history) list() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryItem, len(h.items))
	copy(out, h.items)
	return out
}
