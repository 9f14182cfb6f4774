// Package token issues and verifies session JWTs for credentials-based
// login, and wraps password hashing.
package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is how long a session token stays valid.
const DefaultTTL = 24 * time.Hour

// Claims are the verified contents of a session token.
type Claims struct {
	UserID uuid.UUID
	Email  string
}

// Service signs and verifies HS256 session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service with the given signing secret.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed session token for a user.
func (s *Service) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(userID.String()).
		Claim("email", email).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify parses and validates a session token and extracts its claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	tok, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := uuid.Parse(tok.Subject())
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}

	email := ""
	if v, ok := tok.Get("email"); ok {
		if str, ok := v.(string); ok {
			email = str
		}
	}

	return &Claims{UserID: userID, Email: email}, nil
}

// HashPassword turns a plaintext password into a bcrypt hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
