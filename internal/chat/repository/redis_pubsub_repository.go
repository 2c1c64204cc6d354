package repository

import (
	"context"
	"encoding/json"
	"sync"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Publisher definition room event fan-out
type Publisher interface {
	Publish(ctx context.Context, channel string, event domain.RoomEvent) error
	// Subscribe delivers every event of channel to handler until ctx is done or
	// unsubscribe is called. Once unsubscribe returns handler is never called again.
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) (unsubscribe func(), err error)
}

// RedisPubSub definition redis pub/sub, shares room events between instances
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish 將 event 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event domain.RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe 訂閱 channel，收到訊息後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) (func(), error) {
	sub := r.client.Subscribe(ctx, channel)
	// wait for the subscription confirmation so early publishes are not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				// select picks at random when both are ready
				select {
				case <-stop:
					return
				default:
				}

				var event domain.RoomEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					logger.Log.Error("room event unmarshal failed", zap.String("channel", channel), zap.Error(err))
					continue
				}
				handler(event.Response())
			case <-stop:
				return
			case <-ctx.Done():
				logger.Log.Debug("sub close", zap.String("channel", channel))
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}, nil
}
