package app

import (
	"context"
	"fmt"
	"strings"

	"smart_talk_service/internal/chat/domain"
	"smart_talk_service/internal/chat/repository"
)

// NotificationUseCase push notifications to devices
type NotificationUseCase struct {
	pushRepo repository.PushRepository
}

// NewNotificationUseCase init notification use case
func NewNotificationUseCase(pushRepo repository.PushRepository) *NotificationUseCase {
	return &NotificationUseCase{pushRepo: pushRepo}
}

// SendNotification send title/body with optional data to a device token
func (uc *NotificationUseCase) SendNotification(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: device token is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	return uc.pushRepo.Send(ctx, &domain.Notification{
		Token: token,
		Title: title,
		Body:  body,
		Data:  data,
	})
}
