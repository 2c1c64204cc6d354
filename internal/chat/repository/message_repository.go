package repository

import (
	"context"
	"fmt"

	"smart_talk_service/internal/chat/domain"
	errprocess "smart_talk_service/pkg/err"
	"smart_talk_service/pkg/logger"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// MessageRepository definition chat message store
type MessageRepository interface {
	SaveMessage(ctx context.Context, msg *domain.Message) error
	// FindRecentByRoom the newest limit messages of room, newest first
	FindRecentByRoom(ctx context.Context, room string, limit int) ([]domain.Message, error)
}

type firestoreMessageRepository struct {
	coll *firestore.CollectionRef
}

// NewFirestoreMessageRepository create a MessageRepository on collection
func NewFirestoreMessageRepository(client *firestore.Client, collection string) MessageRepository {
	return &firestoreMessageRepository{
		coll: client.Collection(collection),
	}
}

func (r *firestoreMessageRepository) SaveMessage(ctx context.Context, msg *domain.Message) error {
	data := map[string]interface{}{
		"id":           msg.ID,
		"content":      msg.Content,
		"user_id":      msg.UserID,
		"user_name":    msg.UserName,
		"room":         msg.Room,
		"timestamp":    msg.Timestamp,
		"message_type": string(msg.MessageType),
		"created_at":   firestore.ServerTimestamp,
	}

	if _, err := r.coll.Doc(msg.ID).Set(ctx, data); err != nil {
		return errprocess.Wrap("save message", err, zap.String("message_id", msg.ID))
	}
	logger.Log.Info("message saved to firestore", zap.String("message_id", msg.ID), zap.String("room", msg.Room))
	return nil
}

// FindRecentByRoom needs the composite index (room ASC, timestamp DESC) on a real project
func (r *firestoreMessageRepository) FindRecentByRoom(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	iter := r.coll.
		Where("room", "==", room).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	messages := []domain.Message{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errprocess.Wrap("get messages by room", err, zap.String("room", room))
		}

		msg, err := messageFromData(snap.Ref.ID, snap.Data())
		if err != nil {
			logger.Log.Warn("skip message document", zap.String("doc_id", snap.Ref.ID), zap.Error(err))
			continue
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

func messageFromData(docID string, data map[string]interface{}) (*domain.Message, error) {
	ts := timeField(data, "timestamp")
	if ts.IsZero() {
		return nil, fmt.Errorf("message document %s: missing timestamp", docID)
	}
	return &domain.Message{
		ID:          stringField(data, "id", docID),
		Content:     stringField(data, "content", ""),
		UserID:      stringField(data, "user_id", ""),
		UserName:    stringField(data, "user_name", ""),
		Room:        stringField(data, "room", domain.DefaultRoom),
		Timestamp:   ts,
		MessageType: domain.MessageType(stringField(data, "message_type", string(domain.MessageTypeText))),
		CreatedAt:   timeField(data, "created_at"),
	}, nil
}
