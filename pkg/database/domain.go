package database

import (
	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// FirebaseConnection definition firebase service account setting
type FirebaseConnection struct {
	ProjectID   string
	PrivateKey  string
	ClientEmail string

	// CredentialsPath persists the service account document when set
	CredentialsPath string
}

// Complete reports whether every credential field is present
func (c FirebaseConnection) Complete() bool {
	return c.ProjectID != "" && c.PrivateKey != "" && c.ClientEmail != ""
}

// Firebase definition firebase app with firestore & messaging clients
type Firebase struct {
	App       *firebase.App
	Firestore *firestore.Client
	Messaging *messaging.Client
}

// RedisConnection definition redis setting
type RedisConnection struct {
	Addr          string
	MasterName    string
	SentinelAddrs []string
	DB            int
}
