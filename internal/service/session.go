package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"omezka-shop-api/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionPrefix is the prefix for all session tokens
	SessionPrefix = "omz_"

	// SessionTTL is the session lifetime
	SessionTTL = 12 * time.Hour

	// SessionRedisKeyPrefix is the Redis key prefix for sessions
	SessionRedisKeyPrefix = "omezka:session:"
)

// ErrSessionInvalid is returned for unknown or expired session tokens.
var ErrSessionInvalid = errors.New("invalid or expired session")

// SessionService issues and validates opaque session tokens backed by Redis.
type SessionService struct {
	redis *redis.Client
}

// NewSessionService creates a session service.
func NewSessionService(redisClient *redis.Client) *SessionService {
	return &SessionService{redis: redisClient}
}

// Create mints a session token for the user and stores it in Redis.
func (s *SessionService) Create(ctx context.Context, user *model.User) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := SessionPrefix + hex.EncodeToString(tokenBytes)

	data := model.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: time.Now(),
	}
	data.ExpiresAt = data.CreatedAt.Add(SessionTTL)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := s.redis.Set(ctx, SessionRedisKeyPrefix+token, jsonData, SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("[SessionService] Session created for user_id=%d, expires=%v", user.ID, data.ExpiresAt)
	return token, nil
}

// Validate looks a token up and returns its session data.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.SessionData, error) {
	raw, err := s.redis.Get(ctx, SessionRedisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var data model.SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("corrupt session data: %w", err)
	}
	if time.Now().After(data.ExpiresAt) {
		return nil, ErrSessionInvalid
	}
	return &data, nil
}

// Revoke deletes a session token.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	return s.redis.Del(ctx, SessionRedisKeyPrefix+token).Err()
}
