package repository

import (
	"context"

	"smart_talk_service/internal/chat/domain"
	errprocess "smart_talk_service/pkg/err"
	"smart_talk_service/pkg/logger"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// PushRepository definition push notification sender
type PushRepository interface {
	// Send returns the message id assigned by the push service
	Send(ctx context.Context, n *domain.Notification) (string, error)
}

type fcmPushRepository struct {
	client *messaging.Client
}

// NewFCMPushRepository create a PushRepository on firebase cloud messaging
func NewFCMPushRepository(client *messaging.Client) PushRepository {
	return &fcmPushRepository{client: client}
}

func (r *fcmPushRepository) Send(ctx context.Context, n *domain.Notification) (string, error) {
	id, err := r.client.Send(ctx, toFCMMessage(n))
	if err != nil {
		return "", errprocess.Wrap("send notification", err, zap.String("title", n.Title))
	}
	logger.Log.Info("notification sent", zap.String("response", id))
	return id, nil
}

func toFCMMessage(n *domain.Notification) *messaging.Message {
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data:  data,
		Token: n.Token,
	}
}
