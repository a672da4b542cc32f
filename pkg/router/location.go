package router

import "sync"

// MemoryLocation is an in-process Location. Navigate changes the hash and
// notifies subscribers synchronously, in subscription order.
type MemoryLocation struct {
	mu     sync.Mutex
	hash   string
	nextID int
	subs   map[int]func(string)
	order  []int
}

// NewMemoryLocation creates a location positioned at hash.
func NewMemoryLocation(hash string) *MemoryLocation {
	return &MemoryLocation{
		hash: hash,
		subs: make(map[int]func(string)),
	}
}

// Hash implements Location.
func (l *MemoryLocation) Hash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hash
}

// Subscribe implements Location.
func (l *MemoryLocation) Subscribe(fn func(hash string)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.order = append(l.order, id)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
			for i, v := range l.order {
				if v == id {
					l.order = append(l.order[:i], l.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Navigate sets the hash and notifies every subscriber, even when the hash
// is unchanged (a reload of the same fragment).
func (l *MemoryLocation) Navigate(hash string) {
	l.mu.Lock()
	l.hash = hash
	fns := make([]func(string), 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.subs[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(hash)
	}
}

// Subscribers returns the number of active subscriptions.
func (l *MemoryLocation) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
