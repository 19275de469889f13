// Package session issues and verifies signed session tokens.
//
// A session token is the proof of a successful voice login. It carries the
// identified username and enrollment language as claims, signed HS256, so
// later requests can be attributed to a speaker without re-running
// identification. Tokens are stateless: nothing is stored server-side, and
// expiry is the only revocation.
package session

import (
	stderrors "errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/voicegate/errors"
)

// Claims are the session token claims.
type Claims struct {
	gojwt.RegisteredClaims
	Username string `json:"username"`
	Language string `json:"language"`
}

// Service issues and verifies session tokens.
type Service struct {
	cfg Config
}

// NewService creates a session token service.
func NewService(cfg *Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &Service{cfg: *cfg}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }

// Issue creates a signed session token for an identified speaker.
func (s *Service) Issue(username, language string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		Username: username,
		Language: language,
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns its claims.
// Expired tokens and tokens with a bad signature or wrong algorithm are
// rejected with distinct error codes.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		if stderrors.Is(err, gojwt.ErrTokenExpired) {
			return nil, apperrors.TokenExpired()
		}
		return nil, apperrors.InvalidToken().WithCause(err)
	}
	if !token.Valid {
		return nil, apperrors.InvalidToken()
	}
	return claims, nil
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("session: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
