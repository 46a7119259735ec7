package mongodb

import (
	"context"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

// UnavailableRepo stands in for the store when no client could be created at
// startup. Every call fails with a store_unavailable StoreError.
type UnavailableRepo struct {
	cause error
}

// NewUnavailableRepo creates a repository that reports cause on every call.
func NewUnavailableRepo(cause error) *UnavailableRepo {
	return &UnavailableRepo{cause: cause}
}

func (r *UnavailableRepo) err() error {
	return apperrors.NewStoreError(apperrors.KindStoreUnavailable, apperrors.ErrStoreUnavailable.Message, r.cause)
}

// Create always fails.
func (r *UnavailableRepo) Create(context.Context, *user.User) (*user.User, error) {
	return nil, r.err()
}

// GetByID always fails.
func (r *UnavailableRepo) GetByID(context.Context, string) (*user.User, error) {
	return nil, r.err()
}

// Update always fails.
func (r *UnavailableRepo) Update(context.Context, string, user.Fields) (*user.User, error) {
	return nil, r.err()
}

// Delete always fails.
func (r *UnavailableRepo) Delete(context.Context, string) (*user.User, error) {
	return nil, r.err()
}

// List always fails.
func (r *UnavailableRepo) List(context.Context) ([]user.User, error) {
	return nil, r.err()
}
