package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const googleTokenURI = "https://oauth2.googleapis.com/token"

// ErrFirebaseNotConfigured one of the credential fields is missing
var ErrFirebaseNotConfigured = errors.New("firebase credentials not configured")

var (
	firebaseOnce     sync.Once
	firebaseInstance *Firebase
	firebaseErr      error
)

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// ServiceAccountJSON builds the service account document for c
func ServiceAccountJSON(c FirebaseConnection) ([]byte, error) {
	if !c.Complete() {
		return nil, ErrFirebaseNotConfigured
	}
	return json.Marshal(serviceAccount{
		Type:        "service_account",
		ProjectID:   c.ProjectID,
		PrivateKey:  c.PrivateKey,
		ClientEmail: c.ClientEmail,
		TokenURI:    googleTokenURI,
	})
}

// NewFirebase authenticate firebase once per process.
// Later calls return the first result regardless of c.
func NewFirebase(ctx context.Context, c FirebaseConnection) (*Firebase, error) {
	if !c.Complete() {
		return nil, ErrFirebaseNotConfigured
	}

	firebaseOnce.Do(func() {
		firebaseInstance, firebaseErr = connectFirebase(ctx, c)
	})
	return firebaseInstance, firebaseErr
}

func connectFirebase(ctx context.Context, c FirebaseConnection) (*Firebase, error) {
	credJSON, err := ServiceAccountJSON(c)
	if err != nil {
		return nil, err
	}

	credOpt := option.WithCredentialsJSON(credJSON)
	if c.CredentialsPath != "" {
		if err := os.WriteFile(c.CredentialsPath, credJSON, 0600); err != nil {
			return nil, fmt.Errorf("write firebase credentials: %w", err)
		}
		credOpt = option.WithCredentialsFile(c.CredentialsPath)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: c.ProjectID}, credOpt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}

	msg, err := app.Messaging(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	return &Firebase{
		App:       app,
		Firestore: fs,
		Messaging: msg,
	}, nil
}

// Close release the firestore client
func (f *Firebase) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}
