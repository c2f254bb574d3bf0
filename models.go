package authgate

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// RoleUser is the default role stamped on registered identities.
	RoleUser = "USER"
	// RoleAdmin is the administrative role, also carried by the break-glass operator.
	RoleAdmin = "ADMIN"
)

// Identity is the persisted identity owned by the security service. It is
// deliberately narrow: the token core needs a subject, a password hash, and
// a role set. Business profile data lives elsewhere.
type Identity struct {
	bun.BaseModel `bun:"table:identities,alias:idn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Subject       string     `bun:"subject,notnull,unique" json:"subject,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Roles         []string   `bun:"roles" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Record converts the persisted identity into the fallback store shape.
func (i *Identity) Record() IdentityRecord {
	return IdentityRecord{
		Subject:      i.Subject,
		PasswordHash: i.PasswordHash,
		Roles:        append([]string(nil), i.Roles...),
	}
}
