package app

import (
	"context"

	"smart_talk_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// CreateUser mock create user
func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// FindByID mock find user by id
func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindActiveByRoom mock find active users of room
func (m *MockUserRepository) FindActiveByRoom(ctx context.Context, room string) ([]domain.User, error) {
	args := m.Called(ctx, room)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateOnlineStatus mock update online flag
func (m *MockUserRepository) UpdateOnlineStatus(ctx context.Context, userID string, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// SaveMessage mock save message
func (m *MockMessageRepository) SaveMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindRecentByRoom mock find newest messages of room
func (m *MockMessageRepository) FindRecentByRoom(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, room, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPushRepository Mock PushRepository
type MockPushRepository struct {
	mock.Mock
}

// Send mock send push
func (m *MockPushRepository) Send(ctx context.Context, n *domain.Notification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

// MockPublisher Mock Publisher
type MockPublisher struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPublisher) Publish(ctx context.Context, channel string, event domain.RoomEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockPublisher) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) (func(), error) {
	args := m.Called(ctx, channel, handler)
	if f, ok := args.Get(0).(func()); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
