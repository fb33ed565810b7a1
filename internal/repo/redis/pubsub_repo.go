package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lestercardoz11/haven/internal/domain/model"
)

// PubSubRepo fans freshly sent messages out to live subscribers. Delivery is
// best effort, the ledger in Postgres stays the source of truth.
type PubSubRepo struct {
	client *goredis.Client
}

func NewPubSubRepo(client *goredis.Client) *PubSubRepo {
	return &PubSubRepo{client: client}
}

func conversationChannel(conversationID int64) string {
	return fmt.Sprintf("conv:%d:messages", conversationID)
}

func (r *PubSubRepo) PublishMessage(ctx context.Context, msg model.Message) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if msg.ConversationID <= 0 {
		return fmt.Errorf("invalid message payload")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message event: %w", err)
	}

	if err := r.client.Publish(ctx, conversationChannel(msg.ConversationID), payload).Err(); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}

	return nil
}

// SubscribeMessages delivers decoded message events for one conversation
// until ctx is cancelled. The returned stop func must be called to release
// the underlying subscription.
func (r *PubSubRepo) SubscribeMessages(ctx context.Context, conversationID int64) (<-chan model.Message, func(), error) {
	if r.client == nil {
		return nil, nil, fmt.Errorf("redis client is nil")
	}
	if conversationID <= 0 {
		return nil, nil, fmt.Errorf("invalid conversation id")
	}

	sub := r.client.Subscribe(ctx, conversationChannel(conversationID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe conversation channel: %w", err)
	}

	out := make(chan model.Message, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub.Channel():
				if !ok {
					return
				}
				msg, err := decodeMessageEvent(raw)
				if err != nil {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	stop := func() { _ = sub.Close() }

	return out, stop, nil
}

func decodeMessageEvent(raw *goredis.Message) (model.Message, error) {
	var msg model.Message
	if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
		return model.Message{}, fmt.Errorf("decode message event: %w", err)
	}
	return msg, nil
}
