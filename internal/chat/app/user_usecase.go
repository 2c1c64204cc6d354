package app

import (
	"context"
	"fmt"
	"strings"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/internal/chat/repository"
	"smart_talk_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer issues the session token handed out on join
type TokenIssuer func(userID, userName, room string) (string, error)

// UserUseCase 負責聊天室使用者與上線狀態
type UserUseCase struct {
	userRepo   repository.UserRepository
	pub        repository.Publisher
	issueToken TokenIssuer
}

// NewUserUseCase init user use case; pub may be nil
func NewUserUseCase(userRepo repository.UserRepository, pub repository.Publisher, issueToken TokenIssuer) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		pub:        pub,
		issueToken: issueToken,
	}
}

// CreateUser validate and persist user, filling id and room when empty
func (uc *UserUseCase) CreateUser(ctx context.Context, user *domain.User) error {
	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Room = strings.TrimSpace(user.Room)
	if user.Room == "" {
		user.Room = domain.DefaultRoom
	}
	return uc.userRepo.CreateUser(ctx, user)
}

// Join create an online user in room and issue its session token
func (uc *UserUseCase) Join(ctx context.Context, name, room string) (*domain.User, string, error) {
	user := &domain.User{
		Name:     name,
		Room:     room,
		IsOnline: true,
		IsActive: true,
	}
	if err := uc.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	t, err := uc.issueToken(user.ID, user.Name, user.Room)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	uc.publish(ctx, domain.RoomEvent{Action: domain.UserJoined, Room: user.Room, User: user})
	return user, t, nil
}

// GetUser find user by id
func (uc *UserUseCase) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	return uc.userRepo.FindByID(ctx, userID)
}

// GetUsersByRoom active users of room
func (uc *UserUseCase) GetUsersByRoom(ctx context.Context, room string) ([]domain.User, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	return uc.userRepo.FindActiveByRoom(ctx, room)
}

// UpdateUserStatus set the online flag and refresh last seen
func (uc *UserUseCase) UpdateUserStatus(ctx context.Context, userID string, online bool) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	return uc.userRepo.UpdateOnlineStatus(ctx, userID, online)
}

// SetPresence UpdateUserStatus and tell the room about it
func (uc *UserUseCase) SetPresence(ctx context.Context, userID, room string, online bool) error {
	if err := uc.UpdateUserStatus(ctx, userID, online); err != nil {
		return err
	}
	uc.publish(ctx, domain.RoomEvent{
		Action: domain.UserStatus,
		Room:   room,
		User:   &domain.User{ID: userID, Room: room, IsOnline: online},
	})
	return nil
}

// publish failures only cost live delivery, the record is already stored
func (uc *UserUseCase) publish(ctx context.Context, event domain.RoomEvent) {
	if uc.pub == nil {
		return
	}
	if err := uc.pub.Publish(ctx, domain.RoomChannel(event.Room), event); err != nil {
		logger.Log.Error("publish room event", zap.String("action", string(event.Action)), zap.String("room", event.Room), zap.Error(err))
	}
}
