package token

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims structure for chat session tokens
type Claims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Room     string `json:"room"`
	jwt.RegisteredClaims
}

var (
	mu              sync.RWMutex
	jwtSecret       = randomSecret()
	tokenExpiration = 24 * time.Hour
	tokenIssuer     = "chat_service"
)

// randomSecret per-process key used until Configure sets one; tokens die with the process
func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("token: read random secret: " + err.Error())
	}
	return b
}

// Configure set signing secret, lifetime and issuer; empty values keep the current ones
func Configure(secret string, ttl time.Duration, issuer string) {
	mu.Lock()
	defer mu.Unlock()
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		tokenExpiration = ttl
	}
	if issuer != "" {
		tokenIssuer = issuer
	}
}

func secret() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret
}

// GenerateJWT generates a session token bound to a user and room
func GenerateJWT(userID, userName, room string) (string, error) {
	mu.RLock()
	ttl, issuer := tokenExpiration, tokenIssuer
	mu.RUnlock()

	now := time.Now()
	claims := Claims{
		UserID:   userID,
		UserName: userName,
		Room:     room,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret())
}

// ParseJWT parses a JWT and extracts the Claims
func ParseJWT(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
