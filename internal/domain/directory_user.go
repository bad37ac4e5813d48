package domain

import "time"

// DirectoryUser is a record in the external "production" user directory. The
// directory owns these rows; this service only mirrors cleaned submissions
// into it and checks for duplicates.
type DirectoryUser struct {
	ID        string    `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	GithubURL *string   `db:"github_url"`
	OrgName   string    `db:"org_name"`
	OrgType   string    `db:"org_type"`
	City      *string   `db:"city"`
	TechStack TechStack `db:"tech_stack"`
	CreatedAt time.Time `db:"created_at"`
}
