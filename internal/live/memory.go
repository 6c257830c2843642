package live

import (
	"context"
	"sync"
)

// memoryFeed is the in-process fallback used when no Redis client is
// configured, and by tests. Fan-out is then limited to a single process.
type memoryFeed struct {
	mu   sync.Mutex
	subs map[string][]*memorySub
}

type memorySub struct {
	ch     chan Event
	closed bool
}

func NewMemoryFeed() Feed {
	return &memoryFeed{subs: make(map[string][]*memorySub)}
}

func (f *memoryFeed) Publish(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs[event.Collection] {
		if sub.closed {
			continue
		}
		// Best-effort: a subscriber that stopped draining loses events
		// rather than blocking every other delivery.
		select {
		case sub.ch <- event:
		default:
		}
	}

	return nil
}

func (f *memoryFeed) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	sub := &memorySub{ch: make(chan Event, 16)}

	f.mu.Lock()
	f.subs[collection] = append(f.subs[collection], sub)
	f.mu.Unlock()

	var once sync.Once
	return &Subscription{
		C: sub.ch,
		close: func() {
			once.Do(func() {
				f.mu.Lock()
				sub.closed = true
				remaining := f.subs[collection][:0]
				for _, s := range f.subs[collection] {
					if s != sub {
						remaining = append(remaining, s)
					}
				}
				f.subs[collection] = remaining
				f.mu.Unlock()
				close(sub.ch)
			})
		},
	}, nil
}
