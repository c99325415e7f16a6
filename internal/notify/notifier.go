// Package notify carries user-facing operation outcomes (the toasts of a
// graphical shell) from the explorer core to whatever surface renders them.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a single user-visible message about an operation outcome.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier fans notifications out to subscribers. Publishing never blocks:
// a subscriber that cannot keep up has notifications dropped rather than
// stalling the operation that produced them.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[string]chan Notification
}

func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[string]chan Notification),
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (n *Notifier) Subscribe() (string, <-chan Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Notification, 16)
	n.subscribers[id] = ch

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subscribers[id]; ok {
		close(ch)
		delete(n.subscribers, id)
	}
}

// Info publishes a success/progress notification. Safe on a nil Notifier so
// core components can run without a rendering surface attached.
func (n *Notifier) Info(operation, message string) {
	if n == nil {
		return
	}

	n.publish(Notification{
		Level:     LevelInfo,
		Operation: operation,
		Message:   message,
	})
}

// Error publishes a failure notification. err may be nil. Safe on a nil
// Notifier.
func (n *Notifier) Error(operation, message string, err error) {
	if n == nil {
		return
	}

	note := Notification{
		Level:     LevelError,
		Operation: operation,
		Message:   message,
	}
	if err != nil {
		note.Detail = err.Error()
	}

	n.publish(note)
}

func (n *Notifier) publish(note Notification) {
	note.ID = uuid.New().String()
	note.CreatedAt = time.Now()

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- note:
		default:
			// Subscriber buffer full, drop instead of blocking.
		}
	}
}
