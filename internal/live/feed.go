// Package live carries document-change notifications between repositories and
// the watchers that maintain role-scoped views. A change event says only that
// something in a collection changed; watchers requery the full matching set on
// every event, so events never need to carry document contents.
package live

import "context"

const (
	CollectionProfiles     = "profiles"
	CollectionAppointments = "appointments"
)

const (
	KindAdded    = "added"
	KindModified = "modified"
	KindRemoved  = "removed"
)

type Event struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
	Kind       string `json:"kind"`
}

// Subscription delivers events for one collection until Close is called.
// Close stops further delivery; events already queued may still arrive.
type Subscription struct {
	C     <-chan Event
	close func()
}

func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
	}
}

type Feed interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, collection string) (*Subscription, error)
}
