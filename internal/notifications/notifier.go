// Package notifications publishes engagement events to the notification
// delivery pipeline over Redis pub/sub. Delivery content and push fan-out
// are handled downstream; this core only emits the event record.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resonate/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ResponseEvent is the wire payload published when a post receives a
// response from another user.
type ResponseEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	PostID      uint      `json:"post_id"`
	ResponseID  uint      `json:"response_id"`
	ResponderID uint      `json:"responder_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier provides helpers to publish notifications into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishResponse publishes the response event to the recipient's channel.
// A nil Redis client degrades to a no-op; the persisted notification row
// is the source of truth either way.
func (n *Notifier) PublishResponse(ctx context.Context, record *models.Notification) error {
	if n.rdb == nil || record == nil {
		return nil
	}
	event := ResponseEvent{
		EventID:     uuid.NewString(),
		Type:        record.Type,
		PostID:      record.PostID,
		ResponseID:  record.ResponseID,
		ResponderID: record.ResponderID,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("notifications:user:%d", record.RecipientID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}
