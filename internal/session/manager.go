package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "mass-payout"

var ErrInvalidToken = errors.New("invalid session token")

// Manager signs and verifies the session cookie. The cookie only names the
// session; credentials stay server side in a Store.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to new session tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a new session id and its signed token.
func (m *Manager) Issue() (sessionID, token string, expiresAt time.Time, err error) {
	if len(m.secret) == 0 {
		return "", "", time.Time{}, errors.New("session secret is not configured")
	}
	now := m.now()
	sessionID = uuid.NewString()
	expiresAt = now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return sessionID, token, expiresAt, nil
}

// Parse verifies token and returns the session id it carries.
func (m *Manager) Parse(token string) (string, error) {
	if token == "" || len(m.secret) == 0 {
		return "", ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}
