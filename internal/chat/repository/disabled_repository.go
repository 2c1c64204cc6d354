package repository

import (
	"context"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/pkg/logger"

	"go.uber.org/zap"
)

// The disabled repositories stand in for firebase when credentials are
// missing: writes are logged and reported as done, reads come back empty.

type disabledUserRepository struct{}

// NewDisabledUserRepository UserRepository used without firebase credentials
func NewDisabledUserRepository() UserRepository {
	return disabledUserRepository{}
}

func (disabledUserRepository) CreateUser(_ context.Context, user *domain.User) error {
	logger.Log.Info("Firebase not initialized. Would create user", zap.String("name", user.Name))
	return nil
}

func (disabledUserRepository) FindByID(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrBackendDisabled
}

func (disabledUserRepository) FindActiveByRoom(_ context.Context, room string) ([]domain.User, error) {
	logger.Log.Info("Firebase not initialized. Would get users for room", zap.String("room", room))
	return []domain.User{}, nil
}

func (disabledUserRepository) UpdateOnlineStatus(_ context.Context, userID string, online bool) error {
	logger.Log.Info("Firebase not initialized. Would update user status",
		zap.String("user_id", userID), zap.Bool("is_online", online))
	return nil
}

type disabledMessageRepository struct{}

// NewDisabledMessageRepository MessageRepository used without firebase credentials
func NewDisabledMessageRepository() MessageRepository {
	return disabledMessageRepository{}
}

func (disabledMessageRepository) SaveMessage(_ context.Context, msg *domain.Message) error {
	logger.Log.Info("Firebase not initialized. Would save message", zap.String("content", msg.Content))
	return nil
}

func (disabledMessageRepository) FindRecentByRoom(_ context.Context, room string, _ int) ([]domain.Message, error) {
	logger.Log.Info("Firebase not initialized. Would get messages for room", zap.String("room", room))
	return []domain.Message{}, nil
}

type disabledPushRepository struct{}

// NewDisabledPushRepository PushRepository used without firebase credentials
func NewDisabledPushRepository() PushRepository {
	return disabledPushRepository{}
}

func (disabledPushRepository) Send(_ context.Context, n *domain.Notification) (string, error) {
	logger.Log.Info("Firebase not initialized. Would send notification", zap.String("title", n.Title))
	return "", nil
}
