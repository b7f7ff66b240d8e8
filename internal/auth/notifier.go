package auth

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated principal delivered to subscribers. A nil
// *Identity means no one is signed in.
type Identity struct {
	ID          primitive.ObjectID
	Email       string
	DisplayName string
}

// Notifier fans auth-state changes out to registered callbacks. A new
// subscriber immediately receives the current state, and the returned
// handle must be called on teardown so no further callbacks are
// dispatched into torn-down consumers.
type Notifier struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]func(*Identity)
	current *Identity
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(*Identity))}
}

func (n *Notifier) Subscribe(fn func(*Identity)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	current := n.current
	n.mu.Unlock()

	fn(current)

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) Publish(identity *Identity) {
	n.mu.Lock()
	n.current = identity
	callbacks := make([]func(*Identity), 0, len(n.subs))
	for _, fn := range n.subs {
		callbacks = append(callbacks, fn)
	}
	n.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may unsubscribe or
	// re-subscribe from within its own callback.
	for _, fn := range callbacks {
		fn(identity)
	}
}

func (n *Notifier) Current() *Identity {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
