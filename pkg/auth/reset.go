package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrResetTokenInvalid = errors.New("password reset token is invalid or expired")

// DefaultResetTokenTTL bounds how long a reset link stays usable.
const DefaultResetTokenTTL = time.Hour

type resetEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// ResetTokenStore holds single-use password reset tokens in memory. Tokens
// do not survive a restart; a user simply requests a new link.
type ResetTokenStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]resetEntry
}

// NewResetTokenStore creates a store with the given token lifetime.
func NewResetTokenStore(ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenStore{
		ttl:    ttl,
		tokens: make(map[string]resetEntry),
	}
}

// Issue creates a new single-use token for the user.
func (s *ResetTokenStore) Issue(userID uuid.UUID) string {
	buf := make([]byte, 32)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetEntry{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return token
}

// Consume redeems a token, invalidating it. Expired and unknown tokens
// return ErrResetTokenInvalid.
func (s *ResetTokenStore) Consume(token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, ErrResetTokenInvalid
	}
	delete(s.tokens, token)
	if time.Now().After(entry.expiresAt) {
		return uuid.Nil, ErrResetTokenInvalid
	}
	return entry.userID, nil
}
