package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"resonate/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, "notifications:user:9")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewNotifier(rdb)
	record := &models.Notification{
		RecipientID: 9,
		Type:        models.NotificationTypeResponse,
		PostID:      5,
		ResponseID:  20,
		ResponderID: 2,
	}
	require.NoError(t, notifier.PublishResponse(ctx, record))

	select {
	case msg := <-sub.Channel():
		var event ResponseEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.NotEmpty(t, event.EventID)
		assert.Equal(t, models.NotificationTypeResponse, event.Type)
		assert.Equal(t, uint(5), event.PostID)
		assert.Equal(t, uint(20), event.ResponseID)
		assert.Equal(t, uint(2), event.ResponderID)
		assert.False(t, event.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestPublishResponseNilClient(t *testing.T) {
	notifier := NewNotifier(nil)

	// No sink configured degrades to a no-op; the stored row remains the
	// source of truth.
	err := notifier.PublishResponse(context.Background(), &models.Notification{RecipientID: 1})
	assert.NoError(t, err)

	err = notifier.PublishResponse(context.Background(), nil)
	assert.NoError(t, err)
}
