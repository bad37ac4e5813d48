package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/badal-community/backend/internal/domain"

	"github.com/jmoiron/sqlx"
)

// orgCollection reads one of the two organization tables. The registered and
// default seed collections share a shape but are independent.
type orgCollection struct {
	db    *sqlx.DB
	table string
}

func newOrgCollection(db *sqlx.DB, table string) *orgCollection {
	return &orgCollection{
		db:    db,
		table: table,
	}
}

func (c *orgCollection) FindByID(ctx context.Context, id string) (*domain.Organization, error) {
	const op = "directory.orgs.FindByID"

	query := `
    SELECT id, name, org_type, website, created_at, updated_at, deleted_at
    FROM ` + c.table + `
    WHERE id = ? AND deleted_at IS NULL
    `

	var org domain.Organization
	if err := c.db.GetContext(ctx, &org, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select organization failed: %w", op, err)
	}

	return &org, nil
}
