package users

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Repository stores user records. Emails are expected in normalized form.
//
// FindByEmail and FindByID return common.ErrorNotFound when nothing matches;
// Insert returns common.ErrorDuplicateKey when the email is already taken.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Insert(ctx context.Context, name, email, passwordHash string) (int64, error)
}
