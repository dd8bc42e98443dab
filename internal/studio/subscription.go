package studio

import (
	"sync"

	"github.com/vovakirdan/arcade-studio/internal/round"
)

// Subscription receives the resolved code of the current round.
// Only the newest updates matter: when the buffer is full the oldest
// update is dropped.
type Subscription struct {
	updates  chan round.Update
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscription(size int) *Subscription {
	if size < 1 {
		size = 8
	}
	return &Subscription{
		updates: make(chan round.Update, size),
		done:    make(chan struct{}),
	}
}

// Updates returns the channel to receive updates from.
func (s *Subscription) Updates() <-chan round.Update {
	return s.updates
}

// Done returns a channel that closes when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) send(u round.Update) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.updates <- u:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- u:
		default:
		}
	}
}

func (s *Subscription) close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}
