package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/internal/chat/repository"
	"smart_talk_service/pkg"
	"smart_talk_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultHistoryLimit messages returned when no limit is asked for
	DefaultHistoryLimit = 50
	// MaxHistoryLimit upper bound of one history read
	MaxHistoryLimit = 500
)

// MessageUseCase 負責處理聊天訊息
type MessageUseCase struct {
	msgRepo         repository.MessageRepository
	pub             repository.Publisher
	historyLimit    int
	maxHistoryLimit int
	now             func() time.Time
}

// NewMessageUseCase init message use case; non-positive limits use the defaults
func NewMessageUseCase(msgRepo repository.MessageRepository, pub repository.Publisher, historyLimit, maxHistoryLimit int) *MessageUseCase {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if maxHistoryLimit <= 0 {
		maxHistoryLimit = MaxHistoryLimit
	}
	if historyLimit > maxHistoryLimit {
		historyLimit = maxHistoryLimit
	}
	return &MessageUseCase{
		msgRepo:         msgRepo,
		pub:             pub,
		historyLimit:    historyLimit,
		maxHistoryLimit: maxHistoryLimit,
		now:             time.Now,
	}
}

// SaveMessage validate and persist msg, filling id, room, type and timestamp when empty
func (uc *MessageUseCase) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if strings.TrimSpace(msg.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrInvalidArgument)
	}
	if msg.MessageType == "" {
		msg.MessageType = domain.MessageTypeText
	}
	if !pkg.Contains(domain.MessageTypes, string(msg.MessageType)) {
		return fmt.Errorf("%w: unknown message type %q", domain.ErrInvalidArgument, msg.MessageType)
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Room == "" {
		msg.Room = domain.DefaultRoom
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = uc.now().UTC()
	}
	return uc.msgRepo.SaveMessage(ctx, msg)
}

// SendMessage save a message from sender into its room and broadcast it.
// Senders are clients, so only text is accepted; system messages are built by the server via SaveMessage.
func (uc *MessageUseCase) SendMessage(ctx context.Context, sender domain.User, content string, msgType domain.MessageType) (*domain.Message, error) {
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if msgType != domain.MessageTypeText {
		return nil, fmt.Errorf("%w: clients may only send %s messages", domain.ErrInvalidArgument, domain.MessageTypeText)
	}
	msg := &domain.Message{
		Content:     content,
		UserID:      sender.ID,
		UserName:    sender.Name,
		Room:        sender.Room,
		MessageType: msgType,
	}
	if err := uc.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if uc.pub != nil {
		event := domain.RoomEvent{Action: domain.NotifyMessage, Room: msg.Room, Message: msg}
		if err := uc.pub.Publish(ctx, domain.RoomChannel(msg.Room), event); err != nil {
			logger.Log.Error("publish message", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
	return msg, nil
}

// GetMessagesByRoom the most recent limit messages of room in chronological order
func (uc *MessageUseCase) GetMessagesByRoom(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	switch {
	case limit <= 0:
		limit = uc.historyLimit
	case limit > uc.maxHistoryLimit:
		limit = uc.maxHistoryLimit
	}

	recent, err := uc.msgRepo.FindRecentByRoom(ctx, room, limit)
	if err != nil {
		return nil, err
	}
	return pkg.Reverse(recent), nil
}
