package sync

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
	"github.com/homefix-app/homefix-backend/internal/store"
)

// Publisher receives request-collection events for cross-instance fan-out.
type Publisher interface {
	PublishRequestEvent(ctx context.Context, ev Event)
}

// Event is the compact request-collection summary published on every
// mirror change, so sibling instances and relays can follow activity
// without their own store subscription.
type Event struct {
	Total                int       `json:"total"`
	Pending              int       `json:"pending"`
	AwaitingConfirmation int       `json:"awaiting_confirmation"`
	InProgress           int       `json:"in_progress"`
	Completed            int       `json:"completed"`
	ObservedAt           time.Time `json:"observed_at"`
}

func snapshotEvent(reqs []domain.RepairRequest) Event {
	return Event{
		Total:                len(reqs),
		Pending:              domain.CountByStatus(reqs, domain.StatusPending),
		AwaitingConfirmation: domain.CountByStatus(reqs, domain.StatusWaitingConfirmation),
		InProgress:           domain.CountByStatus(reqs, domain.StatusInProgress),
		Completed:            domain.CountByStatus(reqs, domain.StatusCompleted),
		ObservedAt:           time.Now().UTC(),
	}
}

// PublishLoop watches the global request collection and forwards one event
// per change to the publisher. One loop per process: session synchronizers
// never publish, so concurrent streams cannot duplicate events and events
// flow even when nobody is streaming.
func PublishLoop(ctx context.Context, requests *repository.RequestRepo, pub Publisher) store.CancelFunc {
	ch, cancel := requests.Watch(ctx)
	go func() {
		for snap := range ch {
			if snap.Err != nil {
				log.Printf("[warn] scope=activity subscription error: %v", snap.Err)
				return
			}
			pub.PublishRequestEvent(ctx, snapshotEvent(repository.DecodeRequests(snap.Docs)))
		}
	}()
	return cancel
}

const eventChannelPrefix = "repair:events:" // Pub/Sub channel: repair:events:{app_id}

// RedisBridge fans request events out over Redis Pub/Sub.
type RedisBridge struct {
	client  *redis.Client
	channel string
}

func NewRedisBridge(client *redis.Client, appID string) *RedisBridge {
	return &RedisBridge{client: client, channel: eventChannelPrefix + appID}
}

// PublishRequestEvent publishes fire-and-forget; a failed publish is
// logged and dropped, never retried.
func (b *RedisBridge) PublishRequestEvent(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		log.Printf("[warn] channel=%s publish failed: %v", b.channel, err)
	}
}

// Subscribe opens a standing subscription on the event channel. The
// returned cancel func closes the subscription and the channel.
func (b *RedisBridge) Subscribe(ctx context.Context) (<-chan Event, func()) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	out := make(chan Event, 8)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[warn] channel=%s bad event payload: %v", b.channel, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = pubsub.Close() }
}
