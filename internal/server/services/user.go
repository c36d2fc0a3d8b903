// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and profile lookup and
// issues the session token returned to the client.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token string
	User  models.PublicUser
}

// TokenIssuer is the part of auth.TokenService the flow depends on.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// UserService orchestrates the password hasher, the user repository and
// the token issuer. It keeps no per-request state and is safe for
// concurrent use.
type UserService struct {
	users  users.Repository
	hasher auth.PasswordHasher
	tokens TokenIssuer

	// dummyHash is verified against when the email is unknown
	dummyHash string
}

// fallbackDummyHash is a well-formed cost-10 bcrypt hash that matches no
// password. It is used only when the hasher cannot produce one.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// NewUserService constructs a UserService from its collaborators.
func NewUserService(repo users.Repository, hasher auth.PasswordHasher, tokens TokenIssuer) *UserService {
	dummy, err := hasher.Hash(context.Background(), "gatekeeper-timing-equalizer")
	if err != nil || dummy == "" {
		dummy = fallbackDummyHash
	}
	return &UserService{users: repo, hasher: hasher, tokens: tokens, dummyHash: dummy}
}

// Register creates an account and returns a token for it. Errors match
// common.ErrorValidation, ErrorDuplicateUser, ErrorHashing,
// ErrorPersistence or ErrorInternal.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorDuplicateUser
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: error searching user: %v", common.ErrorPersistence, err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	id, err := s.users.Insert(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateKey) {
			return nil, common.ErrorDuplicateUser
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrorPersistence, err)
	}

	return s.issue(&models.User{ID: id, Name: name, Email: email})
}

// Login checks the credentials and returns a fresh token. An unknown email
// and a wrong password both yield common.ErrorInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same bcrypt work as a real mismatch
			s.hasher.Verify(ctx, password, s.dummyHash)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("%w: error searching user: %v", common.ErrorPersistence, err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, common.ErrorInvalidCredentials
	}

	return s.issue(user)
}

// Profile loads the account behind a validated identity. Only the id from
// the token is trusted.
func (s *UserService) Profile(ctx context.Context, id models.Identity) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: error loading user: %v", common.ErrorPersistence, err)
	}
	return user, nil
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: error issuing token: %v", common.ErrorInternal, err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}
