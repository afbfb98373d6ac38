package tui

import (
	"sync"

	"github.com/discripper/discripper/internal/ripsession"
)

// shared is Adapter's synchronization point with the Model running on the
// bubbletea goroutine: button-press accumulation and the pending yes/no
// prompt's response channel.
type shared struct {
	mu      sync.Mutex
	buttons ripsession.Buttons

	promptMu sync.Mutex
	respCh   chan bool
}

func newShared() *shared { return &shared{} }

func (s *shared) setButton(f func(*ripsession.Buttons)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.buttons)
}

// drainButtons returns the accumulated button state and resets it, so
// ButtonsPressed reports edge-triggered presses rather than held state.
func (s *shared) drainButtons() ripsession.Buttons {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buttons
	s.buttons = ripsession.Buttons{}
	return b
}

func (s *shared) beginPrompt() chan bool {
	ch := make(chan bool, 1)
	s.promptMu.Lock()
	s.respCh = ch
	s.promptMu.Unlock()
	return ch
}

func (s *shared) answerPrompt(v bool) {
	s.promptMu.Lock()
	ch := s.respCh
	s.respCh = nil
	s.promptMu.Unlock()
	if ch != nil {
		ch <- v
	}
}
