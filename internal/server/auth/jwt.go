// Package auth holds the security-sensitive core: password hashing, signed
// session tokens and the bearer-token gate in front of protected resources.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 24 * time.Hour

// Claims is the token payload: the registered iat/exp claims plus the
// user's id and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// TokenService issues and validates HS256 session tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService copies secret; later changes to the caller's slice have
// no effect.
func NewTokenService(secret []byte, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issue signs a token for the user valid from now until now+TokenTTL.
func (s *TokenService) Issue(userID int64, email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Validate checks the signature first and expiry second. It returns an
// error matching common.ErrInvalidToken for anything malformed, unsigned or
// signed with another key, and common.ErrTokenExpired once now >= exp.
func (s *TokenService) Validate(tokenString string) (models.Identity, error) {
	claims := &Claims{}

	// Expiry is checked below against s.now so the boundary is exact.
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil || claims.UserID == 0 || claims.Email == "" {
		return models.Identity{}, fmt.Errorf("%w: missing claims", common.ErrInvalidToken)
	}

	if !s.now().Before(claims.ExpiresAt.Time) {
		return models.Identity{}, common.ErrTokenExpired
	}

	return models.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
