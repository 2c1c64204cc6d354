package config

import (
	"errors"
	"time"
)

// ErrMissingJWTSecret session tokens cannot be signed safely without jwt.secret
var ErrMissingJWTSecret = errors.New("jwt.secret is required in production")

// Chat definition chat_service YAML structure
type Chat struct {
	Port     string         `mapstructure:"port"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

// Validate check settings without a safe default
func (c Chat) Validate(production bool) error {
	if production && c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// FirebaseConfig definition firestore / fcm setting
type FirebaseConfig struct {
	UsersCollection    string `mapstructure:"users_collection"`
	MessagesCollection string `mapstructure:"messages_collection"`
	HistoryLimit       int    `mapstructure:"history_limit"`
	MaxHistoryLimit    int    `mapstructure:"max_history_limit"`
	// CredentialsPath, when set, persists the synthesized service account file (0600)
	CredentialsPath string `mapstructure:"credentials_path"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	RedisDB int    `mapstructure:"redis_db"`
}

// JWTConfig definition session token setting
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

// ChatDefaults viper defaults for chat_service
var ChatDefaults = map[string]interface{}{
	"port":                         "8080",
	"firebase.users_collection":    "users",
	"firebase.messages_collection": "messages",
	"firebase.history_limit":       50,
	"firebase.max_history_limit":   500,
	"redis.redis_db":               0,
	"jwt.ttl":                      "24h",
	"jwt.issuer":                   "chat_service",
}
