package events

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Event names delivered over the bus. The badge_* events come from the
// platform's badge subsystem; the credit_* events are emitted by this plugin.
const (
	BadgeAwarded  = "badge_awarded"
	BadgeDeleted  = "badge_deleted"
	CreditCreated = "credit_created"
	CreditUpdated = "credit_updated"
	CreditDeleted = "credit_deleted"
	CreditAwarded = "credit_awarded"
)

var ErrMissingObjectID = errors.New("event objectid must be set")

// Event carries the subject record id and the user the event relates to
// (the awarded learner for badge/credit awards, the acting staff member
// for admin mutations).
type Event struct {
	Name          string    `json:"name"`
	ObjectID      uuid.UUID `json:"object_id"`
	RelatedUserID uuid.UUID `json:"related_user_id"`
}

type Handler func(e Event) error

// Bus is a synchronous in-process publish/subscribe dispatcher. Observers
// run inline in the publishing request, in registration order.
type Bus struct {
	mu        sync.RWMutex
	observers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{observers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers[name] = append(b.observers[name], h)
}

func (b *Bus) Publish(e Event) error {
	if e.ObjectID == uuid.Nil {
		return ErrMissingObjectID
	}

	b.mu.RLock()
	handlers := b.observers[e.Name]
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
