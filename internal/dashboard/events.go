package dashboard

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
)

// Event carries a dashboard state change to subscribed listeners. Listeners
// treat events as invalidation hints and re-read the store.
type Event struct {
	ProjectID  uuid.UUID
	Generation uint64
	ExpenseID  *uuid.UUID
	Status     domain.ExpenseStatus
}

// Broadcaster fans dashboard events out to subscribers. Delivery is best
// effort: a subscriber with a full buffer misses the event and catches up
// on its next store read.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the subscription.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
