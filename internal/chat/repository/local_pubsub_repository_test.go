package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"smart_talk_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPubSub(t *testing.T) {
	ps := NewLocalPubSub()
	channel := domain.RoomChannel("general")

	ctx, cancel := context.WithCancel(context.Background())
	var got []domain.WSResponse
	_, err := ps.Subscribe(ctx, channel, func(resp domain.WSResponse) {
		got = append(got, resp)
	})
	require.NoError(t, err)

	// other rooms are not delivered
	require.NoError(t, ps.Publish(context.Background(), domain.RoomChannel("random"), domain.RoomEvent{Action: domain.NotifyMessage}))

	event := domain.RoomEvent{
		Action:  domain.NotifyMessage,
		Room:    "general",
		Message: &domain.Message{ID: "m1", Content: "hola"},
	}
	require.NoError(t, ps.Publish(context.Background(), channel, event))

	require.Len(t, got, 1)
	assert.Equal(t, "notify_message", got[0].Action)

	cancel()
	assert.Eventually(t, func() bool { return ps.subscribers(channel) == 0 }, time.Second, 10*time.Millisecond)

	require.NoError(t, ps.Publish(context.Background(), channel, event))
	assert.Len(t, got, 1)
}

func TestLocalPubSub_UnsubscribeIsSynchronous(t *testing.T) {
	ps := NewLocalPubSub()
	channel := domain.RoomChannel("general")

	var delivered int32
	unsubscribe, err := ps.Subscribe(context.Background(), channel, func(domain.WSResponse) {
		atomic.AddInt32(&delivered, 1)
	})
	require.NoError(t, err)

	require.NoError(t, ps.Publish(context.Background(), channel, domain.RoomEvent{Action: domain.NotifyMessage}))
	unsubscribe()
	assert.Equal(t, 0, ps.subscribers(channel))

	require.NoError(t, ps.Publish(context.Background(), channel, domain.RoomEvent{Action: domain.NotifyMessage}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))

	// a second call is a no-op
	assert.NotPanics(t, unsubscribe)
}

func TestLocalPubSub_NoDeliveryAfterUnsubscribe(t *testing.T) {
	ps := NewLocalPubSub()
	channel := domain.RoomChannel("general")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				_ = ps.Publish(ctx, channel, domain.RoomEvent{Action: domain.NotifyMessage})
			}
		}()
	}

	for i := 0; i < 200; i++ {
		var mu sync.Mutex
		gone := false
		unsubscribe, err := ps.Subscribe(context.Background(), channel, func(domain.WSResponse) {
			mu.Lock()
			defer mu.Unlock()
			if gone {
				t.Error("handler called after unsubscribe returned")
			}
		})
		require.NoError(t, err)

		unsubscribe()
		mu.Lock()
		gone = true
		mu.Unlock()
	}

	cancel()
	wg.Wait()
	assert.Equal(t, 0, ps.subscribers(channel))
}
