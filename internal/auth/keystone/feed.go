package keystone

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const changedMessage = "changed"

// Feed announces credential changes per browser client over Redis
// pub/sub, so every server instance watching that client reacts.
// Messages carry no data; watchers re-read the session store.
type Feed struct {
	client *redis.Client
	prefix string
}

func NewFeed(client *redis.Client) *Feed {
	return &Feed{client: client, prefix: "credential:"}
}

func (f *Feed) channel(clientID string) string {
	return f.prefix + clientID
}

func (f *Feed) Publish(ctx context.Context, clientID string) error {
	return f.client.Publish(ctx, f.channel(clientID), changedMessage).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so no
// change published afterwards can be missed.
func (f *Feed) Subscribe(ctx context.Context, clientID string) (*redis.PubSub, error) {
	ps := f.client.Subscribe(ctx, f.channel(clientID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("keystone: subscribe %s: %w", clientID, err)
	}
	return ps, nil
}
