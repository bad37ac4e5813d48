// Package directory wraps the external "production" user directory and the
// two organization collections. They live in a separate store from the
// token-lifecycle tables; nothing here ever joins across the two stores.
package directory

import (
	"context"
	"errors"

	"github.com/badal-community/backend/internal/domain"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicateUser is returned by CreateUser when the directory already
// holds a matching record. DuplicateUserError carries the conflicting id.
var ErrDuplicateUser = errors.New("directory user already exists")

// DuplicateUserError carries the id of the conflicting directory record.
type DuplicateUserError struct {
	ExistingID string
}

func (e *DuplicateUserError) Error() string { return "directory user already exists" }

func (e *DuplicateUserError) Unwrap() error { return ErrDuplicateUser }

type Directory struct {
	Users          Users
	RegisteredOrgs Organizations
	DefaultOrgs    Organizations
}

func New(db *sqlx.DB) *Directory {
	return &Directory{
		Users:          newUserDirectory(db),
		RegisteredOrgs: newOrgCollection(db, "organizations"),
		DefaultOrgs:    newOrgCollection(db, "default_organizations"),
	}
}

type Users interface {
	FindByEmail(ctx context.Context, email string) (*domain.DirectoryUser, error)
	FindByPhone(ctx context.Context, phone string) (*domain.DirectoryUser, error)
	FindByGithubURL(ctx context.Context, githubURL string) (*domain.DirectoryUser, error)
	CreateUser(ctx context.Context, user *domain.DirectoryUser) (string, error)
}

type Organizations interface {
	FindByID(ctx context.Context, id string) (*domain.Organization, error)
}
