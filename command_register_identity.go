package authgate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterIdentityMessage struct {
	Subject   string   `json:"subject"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	UseHashid bool
}

func (e RegisterIdentityMessage) Type() string { return "identity.register" }

// RegisterIdentityHandler hashes the password and inserts the identity in a
// transaction. It satisfies the command-bus handler shape used by callers.
type RegisterIdentityHandler struct {
	repo RepositoryManager
}

func NewRegisterIdentityHandler(repo RepositoryManager) *RegisterIdentityHandler {
	return &RegisterIdentityHandler{repo: repo}
}

func (h *RegisterIdentityHandler) Execute(ctx context.Context, event RegisterIdentityMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during identity registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterIdentityHandler) execute(ctx context.Context, event RegisterIdentityMessage) error {
	identity := &Identity{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		identity.PasswordHash = hash
		identity.Subject = event.Subject
		identity.Roles = normalizeRoles(event.Roles)
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Subject); err == nil {
				identity.ID = id
			}
		}

		if identity, err = h.repo.Identities().CreateTx(ctx, tx, identity); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create identity")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "identity registration transaction failed")
	}

	return nil
}

func normalizeRoles(roles []string) []string {
	if len(roles) == 0 {
		return []string{RoleUser}
	}
	return append([]string(nil), roles...)
}
