package events

import (
	"sync"

	"github.com/dwolgast/matchlog/internal/telemetry"
)

// Handler processes a notification. Returning an error logs it but does
// not stop dispatch.
type Handler func(Notification) error

// Bus is a synchronous in-process notification bus. Subscribers run in
// registration order on the publisher's goroutine, which preserves the
// one-writer-at-a-time model of the action handler.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a notification type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish dispatches a notification to all registered handlers for its type.
func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	handlers := b.handlers[n.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(n); err != nil {
			// one bad handler shouldn't block the others
			telemetry.Warnf("%s handler: %v", n.Type, err)
		}
	}
}
