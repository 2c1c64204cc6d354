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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UserRepository definition chat user store
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	// FindByID returns domain.ErrUserNotFound when no document exists
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	// FindActiveByRoom users of room with is_active == true
	FindActiveByRoom(ctx context.Context, room string) ([]domain.User, error)
	// UpdateOnlineStatus set is_online and refresh last_seen
	UpdateOnlineStatus(ctx context.Context, userID string, online bool) error
}

type firestoreUserRepository struct {
	coll *firestore.CollectionRef
}

// NewFirestoreUserRepository create a UserRepository on collection
func NewFirestoreUserRepository(client *firestore.Client, collection string) UserRepository {
	return &firestoreUserRepository{
		coll: client.Collection(collection),
	}
}

func (r *firestoreUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	data := map[string]interface{}{
		"id":         user.ID,
		"name":       user.Name,
		"room":       user.Room,
		"is_online":  user.IsOnline,
		"is_active":  user.IsActive,
		"created_at": firestore.ServerTimestamp,
		"last_seen":  firestore.ServerTimestamp,
	}

	if _, err := r.coll.Doc(user.ID).Set(ctx, data); err != nil {
		return errprocess.Wrap("create user", err, zap.String("user_id", user.ID))
	}
	logger.Log.Info("user created in firestore", zap.String("user_id", user.ID), zap.String("name", user.Name))
	return nil
}

func (r *firestoreUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	snap, err := r.coll.Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, errprocess.Wrap("get user", err, zap.String("user_id", userID))
	}

	user, err := userFromData(snap.Ref.ID, snap.Data())
	if err != nil {
		return nil, errprocess.Wrap("get user", err, zap.String("user_id", userID))
	}
	return user, nil
}

func (r *firestoreUserRepository) FindActiveByRoom(ctx context.Context, room string) ([]domain.User, error) {
	iter := r.coll.
		Where("room", "==", room).
		Where("is_active", "==", true).
		Documents(ctx)
	defer iter.Stop()

	users := []domain.User{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errprocess.Wrap("get users by room", err, zap.String("room", room))
		}

		user, err := userFromData(snap.Ref.ID, snap.Data())
		if err != nil {
			// one malformed document should not hide the rest of the room
			logger.Log.Warn("skip user document", zap.String("doc_id", snap.Ref.ID), zap.Error(err))
			continue
		}
		users = append(users, *user)
	}
	return users, nil
}

func (r *firestoreUserRepository) UpdateOnlineStatus(ctx context.Context, userID string, online bool) error {
	_, err := r.coll.Doc(userID).Update(ctx, []firestore.Update{
		{Path: "is_online", Value: online},
		{Path: "last_seen", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return errprocess.Wrap("update user status", err, zap.String("user_id", userID))
	}
	logger.Log.Info("user status updated", zap.String("user_id", userID), zap.Bool("is_online", online))
	return nil
}

// userFromData decode a users document; room and flags fall back to their defaults
func userFromData(docID string, data map[string]interface{}) (*domain.User, error) {
	name := stringField(data, "name", "")
	if name == "" {
		return nil, fmt.Errorf("user document %s: missing name", docID)
	}
	return &domain.User{
		ID:        stringField(data, "id", docID),
		Name:      name,
		Room:      stringField(data, "room", domain.DefaultRoom),
		IsOnline:  boolField(data, "is_online", true),
		IsActive:  boolField(data, "is_active", true),
		CreatedAt: timeField(data, "created_at"),
		LastSeen:  timeField(data, "last_seen"),
	}, nil
}
