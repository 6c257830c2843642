package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

type redisFeed struct {
	client *redis.Client
}

// NewRedisFeed publishes change events on one pub/sub channel per collection,
// so every process subscribed to a collection sees every mutation.
func NewRedisFeed(client *redis.Client) Feed {
	return &redisFeed{client: client}
}

func channelFor(collection string) string {
	return fmt.Sprintf("changes:%s", collection)
}

func (f *redisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return f.client.Publish(ctx, channelFor(event.Collection), payload).Err()
}

func (f *redisFeed) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, channelFor(collection))

	// Wait for confirmation that the subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	var once sync.Once

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("live: dropping malformed change event: %v", err)
				continue
			}

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Subscription{
		C: out,
		close: func() {
			once.Do(func() {
				if err := pubsub.Close(); err != nil {
					log.Printf("live: error closing subscription: %v", err)
				}
			})
		},
	}, nil
}
