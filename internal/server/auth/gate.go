package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Rejection reasons, used as log fields and metric labels.
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
	ReasonExpiredToken = "expired_token"
	ReasonUnknown      = "unknown"
)

// TokenValidator is the part of TokenService the gate depends on.
type TokenValidator interface {
	Validate(token string) (models.Identity, error)
}

// Gate turns a raw Authorization header into an Identity. Every rejection
// matches common.ErrorUnauthorized; the cause (missing, invalid, expired)
// stays in the chain.
type Gate struct {
	tokens TokenValidator
}

func NewGate(tokens TokenValidator) *Gate {
	return &Gate{tokens: tokens}
}

func (g *Gate) Authorize(header string) (models.Identity, error) {
	token, ok := ParseBearer(header)
	if !ok {
		return models.Identity{}, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrorMissingToken)
	}

	id, err := g.tokens.Validate(token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	return id, nil
}

// ParseBearer extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively; the token must be a single non-empty word.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// RejectReason classifies an error returned by Authorize.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, common.ErrorMissingToken):
		return ReasonMissingToken
	case errors.Is(err, common.ErrTokenExpired):
		return ReasonExpiredToken
	case errors.Is(err, common.ErrInvalidToken):
		return ReasonInvalidToken
	default:
		return ReasonUnknown
	}
}
