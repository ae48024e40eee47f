package refresh

import "sync"

// Bus is a process-wide, payload-less publish/subscribe channel used to tell
// mounted consumers "re-fetch now". Subscriptions are explicit and must be
// released when the consumer unmounts.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func())}
}

// Subscribe registers fn and returns an unsubscribe function. Unsubscribing
// twice is harmless.
func (b *Bus) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Notify invokes every current subscriber synchronously, in no particular
// order.
func (b *Bus) Notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
