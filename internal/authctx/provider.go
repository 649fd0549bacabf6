package authctx

import "sync"

// Source is an observable auth state.
type Source interface {
	Current() Snapshot
	Subscribe(fn func(Snapshot)) (cancel func())
}

// Provider holds the current auth snapshot and notifies subscribers on change.
type Provider struct {
	mu          sync.Mutex
	current     Snapshot
	nextID      int
	subscribers map[int]func(Snapshot)
	order       []int
}

// NewProvider returns a Provider in the Pending state.
func NewProvider() *Provider {
	return &Provider{current: Pending(), subscribers: make(map[int]func(Snapshot))}
}

// Current returns the latest snapshot.
func (p *Provider) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Publish replaces the snapshot and calls every subscriber in subscription order.
// Subscribers run on the caller's goroutine after the lock is released, so a
// subscriber may itself Subscribe or cancel. Publish calls from several goroutines
// are not ordered against each other: a subscriber can see an older snapshot last.
// Callers that publish concurrently must serialize their own calls.
func (p *Provider) Publish(snap Snapshot) {
	p.mu.Lock()
	p.current = snap
	fns := make([]func(Snapshot), 0, len(p.order))
	for _, id := range p.order {
		fns = append(fns, p.subscribers[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Subscribe registers fn for future snapshots. The returned func unsubscribes and is
// safe to call more than once.
func (p *Provider) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	p.order = append(p.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
			for i, v := range p.order {
				if v == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
		})
	}
}
