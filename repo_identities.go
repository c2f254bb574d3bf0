package authgate

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Identities exposes the persistence surface the security service needs.
type Identities interface {
	repository.Repository[*Identity]

	GetBySubject(ctx context.Context, subject string) (*Identity, error)
	GetBySubjectTx(ctx context.Context, tx bun.IDB, subject string) (*Identity, error)
}

type identities struct {
	repository.Repository[*Identity]
	db *bun.DB
}

var _ Identities = (*identities)(nil)

func NewIdentitiesRepository(db *bun.DB) Identities {
	repo := repository.NewRepository[*Identity](db, repository.ModelHandlers[*Identity]{
		NewRecord: func() *Identity { return &Identity{} },
		GetID: func(i *Identity) uuid.UUID {
			if i == nil {
				return uuid.Nil
			}
			return i.ID
		},
		SetID: func(i *Identity, id uuid.UUID) {
			if i != nil {
				i.ID = id
			}
		},
		GetIdentifier: func() string {
			return "subject"
		},
	})

	return &identities{
		Repository: repo,
		db:         db,
	}
}

func (r *identities) GetBySubject(ctx context.Context, subject string) (*Identity, error) {
	return r.GetBySubjectTx(ctx, r.db, subject)
}

func (r *identities) GetBySubjectTx(ctx context.Context, tx bun.IDB, subject string) (*Identity, error) {
	record, err := r.Repository.GetByIdentifierTx(ctx, tx, subject)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RepositoryManager exposes all repositories plus transaction plumbing.
type RepositoryManager interface {
	Validate() error
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Identities() Identities
}

type mngr struct {
	db         *bun.DB
	identities Identities
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:         db,
		identities: NewIdentitiesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.identities == nil {
		return errors.New("repository identities should be initialized", errors.CategoryInternal)
	}
	return nil
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Identities() Identities {
	return m.identities
}

// RepositoryIdentityProvider adapts the identities repository to the
// IdentityProvider consumed by the fallback store.
type RepositoryIdentityProvider struct {
	repo Identities
}

func NewRepositoryIdentityProvider(repo Identities) *RepositoryIdentityProvider {
	return &RepositoryIdentityProvider{repo: repo}
}

var _ IdentityProvider = (*RepositoryIdentityProvider)(nil)

func (p *RepositoryIdentityProvider) FindIdentityBySubject(ctx context.Context, subject string) (*IdentityRecord, error) {
	identity, err := p.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityNotFound
	}

	record := identity.Record()
	return &record, nil
}
