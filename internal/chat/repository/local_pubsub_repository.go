package repository

import (
	"context"
	"sync"

	"smart_talk_service/internal/chat/domain"
)

// LocalPubSub in-process Publisher for a single instance without redis.
// Handlers run under the read lock, so they must not block or call back into LocalPubSub.
type LocalPubSub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(resp domain.WSResponse)
}

// NewLocalPubSub create LocalPubSub
func NewLocalPubSub() *LocalPubSub {
	return &LocalPubSub{
		subs: make(map[string]map[int]func(resp domain.WSResponse)),
	}
}

// Publish delivers event synchronously to the current subscribers of channel
func (l *LocalPubSub) Publish(_ context.Context, channel string, event domain.RoomEvent) error {
	resp := event.Response()

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, h := range l.subs[channel] {
		h(resp)
	}
	return nil
}

// Subscribe registers handler until ctx is done or unsubscribe is called
func (l *LocalPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) (func(), error) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	if l.subs[channel] == nil {
		l.subs[channel] = make(map[int]func(resp domain.WSResponse))
	}
	l.subs[channel][id] = handler
	l.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(stop)
			// waits for in-flight Publish calls holding the read lock
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[channel], id)
			if len(l.subs[channel]) == 0 {
				delete(l.subs, channel)
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-stop:
		}
	}()
	return unsubscribe, nil
}

// subscribers number of handlers on channel
func (l *LocalPubSub) subscribers(channel string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs[channel])
}
