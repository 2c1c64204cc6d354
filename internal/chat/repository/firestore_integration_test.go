//go:build integration

package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/pkg/database"
	"smart_talk_service/pkg/logger"
	testtool "smart_talk_service/pkg/test_tool"

	"cloud.google.com/go/firestore"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	fsClient    *firestore.Client
	redisClient *redis.Client
)

// go test -tags integration ./internal/chat/repository/...
func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()

	fsContainer, fsHost, fsPort, err := testtool.SetupContainer(ctx, testtool.FirestoreEmulatorRequest())
	if err != nil {
		log.Fatalf("❌ Failed to start Firestore emulator: %v", err)
	}
	os.Setenv("FIRESTORE_EMULATOR_HOST", fmt.Sprintf("%s:%s", fsHost, fsPort))

	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start Redis container: %v", err)
	}

	fsClient, err = firestore.NewClient(ctx, "smart-talk-test")
	if err != nil {
		log.Fatalf("❌ Failed to create Firestore client: %v", err)
	}

	redisClient, err = database.NewRedisClient(ctx, database.RedisConnection{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort)})
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}

	code := m.Run()

	_ = fsClient.Close()
	_ = redisClient.Close()
	_ = fsContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)

	os.Exit(code)
}

func TestFirestoreUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreUserRepository(fsClient, "users_"+uuid.NewString())
	room := "room-" + uuid.NewString()

	active := &domain.User{ID: uuid.NewString(), Name: "John Test", Room: room, IsOnline: true, IsActive: true}
	inactive := &domain.User{ID: uuid.NewString(), Name: "Gone", Room: room, IsOnline: false, IsActive: false}
	require.NoError(t, repo.CreateUser(ctx, active))
	require.NoError(t, repo.CreateUser(ctx, inactive))

	got, err := repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Name, got.Name)
	assert.Equal(t, room, got.Room)
	assert.False(t, got.CreatedAt.IsZero())
	firstSeen := got.LastSeen

	users, err := repo.FindActiveByRoom(ctx, room)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, active.ID, users[0].ID)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.UpdateOnlineStatus(ctx, active.ID, false))
	got, err = repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOnline)
	assert.True(t, got.LastSeen.After(firstSeen))

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateOnlineStatus(ctx, "missing", true), domain.ErrUserNotFound)
}

func TestFirestoreMessageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreMessageRepository(fsClient, "messages_"+uuid.NewString())
	room := "room-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveMessage(ctx, &domain.Message{
			ID:          uuid.NewString(),
			Content:     fmt.Sprintf("msg-%d", i),
			UserID:      "user-1",
			UserName:    "Ana",
			Room:        room,
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			MessageType: domain.MessageTypeText,
		}))
	}
	require.NoError(t, repo.SaveMessage(ctx, &domain.Message{
		ID: uuid.NewString(), Content: "elsewhere", Room: "other-" + room, Timestamp: base,
	}))

	recent, err := repo.FindRecentByRoom(ctx, room, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "msg-4", recent[0].Content)
	assert.Equal(t, "msg-3", recent[1].Content)
	assert.Equal(t, "msg-2", recent[2].Content)
	assert.False(t, recent[0].CreatedAt.IsZero())
}

func TestRedisPubSub(t *testing.T) {
	ps := NewRedisPubSub(redisClient)
	channel := domain.RoomChannel("room-" + uuid.NewString())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.WSResponse, 1)
	unsubscribe, err := ps.Subscribe(ctx, channel, func(resp domain.WSResponse) { got <- resp })
	require.NoError(t, err)

	require.NoError(t, ps.Publish(ctx, channel, domain.RoomEvent{
		Action:  domain.NotifyMessage,
		Message: &domain.Message{ID: "m1", Content: "hola"},
	}))

	select {
	case resp := <-got:
		assert.Equal(t, "notify_message", resp.Action)
		assert.Contains(t, resp.Payload, "message")
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	// nothing is delivered once unsubscribe has returned
	unsubscribe()
	require.NoError(t, ps.Publish(ctx, channel, domain.RoomEvent{Action: domain.NotifyMessage}))
	select {
	case resp := <-got:
		t.Fatalf("unexpected event after unsubscribe: %s", resp.Action)
	case <-time.After(300 * time.Millisecond):
	}
}
