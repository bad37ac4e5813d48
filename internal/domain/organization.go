package domain

import "time"

// OrgRefType is the canonical organization-reference classification. Every
// boundary that used to trust free-text org types validates against this
// list instead.
type OrgRefType string

const (
	// OrgRefRegistered points into the registered-organizations collection.
	OrgRefRegistered OrgRefType = "orgs"
	// OrgRefDefault points into the default seed organizations.
	OrgRefDefault OrgRefType = "default"
	// OrgRefCustom is a caller-supplied organization with no directory record.
	OrgRefCustom OrgRefType = "custom"
)

// Valid reports whether t is one of the canonical reference types.
func (t OrgRefType) Valid() bool {
	switch t {
	case OrgRefRegistered, OrgRefDefault, OrgRefCustom:
		return true
	}
	return false
}

// Organization is a row in one of the two directory-store org collections.
// The authoritative type classification comes from this record, never from
// the caller.
type Organization struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	OrgType   string     `db:"org_type"`
	Website   *string    `db:"website"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
