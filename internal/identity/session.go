package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/logger"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired session token")
	ErrMissingSecret = errors.New("session secret is not configured")
)

// Claims are the custom JWT claims of a signed session.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionManager signs and validates HS256 session tokens.
type SessionManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewSessionManager creates a manager for the given secret. A zero duration
// uses the default session lifetime.
func NewSessionManager(secretKey string, tokenDuration time.Duration) (*SessionManager, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}
	if tokenDuration <= 0 {
		tokenDuration = constants.SessionTokenDuration
	}
	return &SessionManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

// Generate creates a signed token for userID.
func (m *SessionManager) Generate(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppName,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims when the signature and
// time window check out.
func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(constants.AppName),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Session resolves the user from a stored signed token. The token is
// re-validated on every call so an expired session stops resolving.
type Session struct {
	Manager *SessionManager
	Token   string
}

func (s Session) CurrentUserID(context.Context) (string, bool) {
	if s.Manager == nil || s.Token == "" {
		return "", false
	}
	claims, err := s.Manager.Validate(s.Token)
	if err != nil {
		logger.Warn("session token rejected", "error", err)
		return "", false
	}
	return claims.UserID, true
}
