// Package notify delivers transient one-shot notifications for discrete
// user actions, the equivalent of toast messages in a visual client.
package notify

import (
	"sync"
	"time"

	"storefront-client/internal/util"

	"github.com/google/uuid"
)

// Level indicates how a notice should be presented.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a single transient notification.
type Notice struct {
	ID      string
	Level   Level
	Message string
	Time    time.Time
}

// Notifier fans notices out to subscribers. Delivery is best-effort: a
// subscriber that stops draining loses notices rather than blocking the
// publisher.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Notice
	next int
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Notice)}
}

// Subscribe returns a channel of notices and a function to unsubscribe.
func (n *Notifier) Subscribe() (<-chan Notice, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Notice, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish sends a notice to all subscribers.
func (n *Notifier) Publish(level Level, message string) {
	notice := Notice{
		ID:      uuid.New().String(),
		Level:   level,
		Message: message,
		Time:    time.Now(),
	}

	util.NoticesPublishedTotal.WithLabelValues(string(level)).Inc()

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- notice:
		default:
		}
	}
}
