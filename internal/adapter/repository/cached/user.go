package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-service/internal/adapter/cache"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
)

// UserRepository implements user.Repository with a read cache in front of
// a persistent repository.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository wraps dbRepo with cache.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by id using the cache-aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Only one concurrent miss per id goes to the database. Waiters must not
	// share the first caller's cancellation.
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		if cachedUser, err := r.cache.Get(ctx, id); err == nil && cachedUser != nil {
			r.log.Debug("user retrieved from cache after single-flight wait", zap.String("id", id))
			return cachedUser, nil
		}

		// An update or delete landing after this read turns SetIfVersion into a no-op.
		version, versionErr := r.cache.Version(ctx, id)

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if versionErr != nil {
			r.log.Warn("cache version unavailable, not caching user", zap.String("id", id), zap.Error(versionErr))
			return u, nil
		}
		if _, err := r.cache.SetIfVersion(ctx, u, version); err != nil {
			r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.User), nil
}

// Update updates the user in DB and invalidates the cache entry.
func (r *UserRepository) Update(ctx context.Context, id string, f domain.Fields) (*domain.User, error) {
	u, err := r.dbRepo.Update(ctx, id, f)
	r.invalidate(ctx, id, err)
	return u, err
}

// Delete deletes the user from DB and invalidates the cache entry.
func (r *UserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.dbRepo.Delete(ctx, id)
	r.invalidate(ctx, id, err)
	return u, err
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// invalidate drops the cache entry after a mutation that reached the store,
// including one that found nothing to mutate.
func (r *UserRepository) invalidate(ctx context.Context, id string, err error) {
	if err != nil && !apperrors.IsNotFound(err) {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("id", id), zap.Error(err))
	}
}
