package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/model"
)

func TestHub_SubscribeAndNotify(t *testing.T) {
	hub := NewHub()
	assert.Zero(t, hub.SubscriberCount())

	events, cancel := hub.Subscribe()
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.NotifyNewContent(3, []*model.Post{{ID: "p-1", Title: "First"}})

	var event newContentEvent
	require.NoError(t, json.Unmarshal(<-events, &event))
	assert.Equal(t, 3, event.Count)
	require.Len(t, event.Posts, 1)
	assert.Equal(t, "p-1", event.Posts[0].ID)

	cancel()
	assert.Zero(t, hub.SubscriberCount())
}

func TestHub_NotifyWithoutSubscribers(t *testing.T) {
	hub := NewHub()

	// Must not block or panic.
	hub.NotifyNewContent(1, nil)
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe()
	defer cancel()

	// Overflow the subscriber buffer; the extra events are dropped.
	for i := 0; i < 20; i++ {
		hub.NotifyNewContent(i, nil)
	}

	received := 0
	for {
		select {
		case <-events:
			received++
		default:
			assert.Equal(t, 8, received)
			return
		}
	}
}
