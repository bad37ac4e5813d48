package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/badal-community/backend/internal/db"
	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type userDirectory struct {
	db *sqlx.DB
}

func newUserDirectory(db *sqlx.DB) *userDirectory {
	return &userDirectory{
		db: db,
	}
}

const directoryUserColumns = `
    id, full_name, email, phone, github_url, org_name, org_type, city, tech_stack, created_at
`

func (d *userDirectory) FindByEmail(ctx context.Context, email string) (*domain.DirectoryUser, error) {
	return d.findOne(ctx, "email = ?", email)
}

func (d *userDirectory) FindByPhone(ctx context.Context, phone string) (*domain.DirectoryUser, error) {
	return d.findOne(ctx, "phone = ?", phone)
}

func (d *userDirectory) FindByGithubURL(ctx context.Context, githubURL string) (*domain.DirectoryUser, error) {
	return d.findOne(ctx, "github_url = ?", githubURL)
}

func (d *userDirectory) findOne(ctx context.Context, where string, arg interface{}) (*domain.DirectoryUser, error) {
	const op = "directory.users.findOne"

	query := "SELECT " + directoryUserColumns + " FROM users WHERE " + where

	var user domain.DirectoryUser
	if err := d.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select directory user failed: %w", op, err)
	}

	return &user, nil
}

// CreateUser mirrors a cleaned submission into the directory. A duplicate-key
// conflict is resolved to the existing record's id so the caller can surface
// an actionable conflict instead of a storage error.
func (d *userDirectory) CreateUser(ctx context.Context, user *domain.DirectoryUser) (string, error) {
	const op = "directory.users.CreateUser"

	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("%s: generate user id failed: %w", op, err)
		}
		user.ID = id.String()
	}

	const query = `
    INSERT INTO users (id, full_name, email, phone, github_url, org_name, org_type, city, tech_stack)
    VALUES (:id, :full_name, :email, :phone, :github_url, :org_name, :org_type, :city, :tech_stack)
    `

	if _, err := d.db.NamedExecContext(ctx, query, user); err != nil {
		if db.IsDuplicateEntry(err) {
			return "", &DuplicateUserError{ExistingID: d.resolveExistingID(ctx, user)}
		}
		return "", fmt.Errorf("%s: insert directory user failed: %w", op, err)
	}

	return user.ID, nil
}

// resolveExistingID looks up the record that caused a duplicate-key conflict
// across all three unique columns. An empty id means the record vanished
// between the insert and the lookup.
func (d *userDirectory) resolveExistingID(ctx context.Context, user *domain.DirectoryUser) string {
	if existing, err := d.FindByEmail(ctx, user.Email); err == nil {
		return existing.ID
	}
	if existing, err := d.FindByPhone(ctx, user.Phone); err == nil {
		return existing.ID
	}
	if user.GithubURL != nil && *user.GithubURL != "" {
		if existing, err := d.FindByGithubURL(ctx, *user.GithubURL); err == nil {
			return existing.ID
		}
	}
	return ""
}
