// Package fake provides an in-memory user repository for integration tests
// and benchmarks. It reproduces the store's observable behaviour: generated
// ObjectIDs, insertion order, NotFound for missing ids and invalid_id store
// errors for ids that are not 24-char hex.
package fake

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

// UserRepo is a concurrency-safe in-memory user.Repository.
type UserRepo struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]domain.User
	fail  error
}

// NewUserRepo returns an empty repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{docs: make(map[primitive.ObjectID]domain.User)}
}

// FailWith makes every following call return err until cleared with nil.
func (r *UserRepo) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// Len returns the number of stored users.
func (r *UserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}

	doc := domain.User{ID: primitive.NewObjectID(), Name: clone(u.Name), Email: clone(u.Email)}
	r.docs[doc.ID] = doc
	r.order = append(r.order, doc.ID)
	return copyOf(doc), nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fail != nil {
		return nil, r.fail
	}

	doc, ok := r.docs[oid]
	if !ok {
		return nil, notFound()
	}
	return copyOf(doc), nil
}

func (r *UserRepo) Update(_ context.Context, id string, f domain.Fields) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}

	if _, ok := r.docs[oid]; !ok {
		return nil, notFound()
	}
	doc := domain.User{ID: oid, Name: clone(f.Name), Email: clone(f.Email)}
	r.docs[oid] = doc
	return copyOf(doc), nil
}

func (r *UserRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}

	doc, ok := r.docs[oid]
	if !ok {
		return nil, notFound()
	}
	delete(r.docs, oid)
	for i, o := range r.order {
		if o == oid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return copyOf(doc), nil
}

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fail != nil {
		return nil, r.fail
	}

	users := make([]domain.User, 0, len(r.order))
	for _, oid := range r.order {
		users = append(users, *copyOf(r.docs[oid]))
	}
	return users, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewStoreError(apperrors.KindInvalidID, fmt.Sprintf("invalid user id %q", id), err)
	}
	return oid, nil
}

func notFound() error {
	return apperrors.NewNotFoundError("user", "User not found")
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyOf(u domain.User) *domain.User {
	return &domain.User{ID: u.ID, Name: clone(u.Name), Email: clone(u.Email)}
}
