package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// Implementations return *apperrors.NotFoundError when no document matches
// and *apperrors.StoreError for every other failure, including ids the
// store cannot parse.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)             // Insert a new document
	GetByID(ctx context.Context, id string) (*domain.User, error)                 // Find one document by id
	Update(ctx context.Context, id string, f domain.Fields) (*domain.User, error) // Replace name/email, return post-update document
	Delete(ctx context.Context, id string) (*domain.User, error)                  // Remove a document, return it
	List(ctx context.Context) ([]domain.User, error)                              // Scan the whole collection
}

// UserUsecase implements the user operations on top of a Repository.
// It holds no state between calls.
type UserUsecase struct {
	repo Repository  // Repository for data access
	log  *zap.Logger // Logger for structured logging
}

// New creates a new instance of UserUsecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, log: log}
}

var _ Usecase = (*UserUsecase)(nil)

// CreateUser stores a new user exactly as supplied.
func (uc *UserUsecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.Stringp("name", in.Name), zap.Stringp("email", in.Email))

	u, err := uc.repo.Create(ctx, domain.New(domain.Fields{Name: in.Name, Email: in.Email}))
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, asStoreError(err, "failed to create user")
	}

	log.Info("user created", zap.String("id", u.ID.Hex()))
	return &CreateUserResponse{User: toDTO(u)}, nil
}

// UpdateUser replaces name and email of an existing user and returns the new state.
func (uc *UserUsecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.String("id", in.ID), zap.Stringp("name", in.Name), zap.Stringp("email", in.Email))

	u, err := uc.repo.Update(ctx, in.ID, domain.Fields{Name: in.Name, Email: in.Email})
	if err != nil {
		if apperrors.IsNotFound(err) {
			log.Warn("user not found for update", zap.String("id", in.ID))
			return nil, err
		}
		log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		return nil, asStoreError(err, "failed to update user")
	}

	return &UpdateUserResponse{User: toDTO(u)}, nil
}

// DeleteUser removes a user and returns the removed document.
func (uc *UserUsecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.String("id", in.ID))

	u, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			log.Warn("user not found for delete", zap.String("id", in.ID))
			return nil, err
		}
		log.Error("failed to delete user", zap.String("id", in.ID), zap.Error(err))
		return nil, asStoreError(err, "failed to delete user")
	}

	return &DeleteUserResponse{User: toDTO(u)}, nil
}

// GetUser retrieves a user by id.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			log.Warn("user not found", zap.String("id", in.ID))
			return nil, err
		}
		log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
		return nil, asStoreError(err, "failed to get user")
	}

	return &GetUserResponse{User: toDTO(u)}, nil
}

// ListUsers returns every user in store order.
func (uc *UserUsecase) ListUsers(ctx context.Context, _ ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, asStoreError(err, "failed to list users")
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = toDTO(&domainUsers[i])
	}

	log.Debug("listed users", zap.Int("count", len(users)))
	return &ListUsersResponse{Users: users}, nil
}

// asStoreError makes sure anything leaving the usecase other than NotFound is a StoreError.
func asStoreError(err error, message string) error {
	var se *apperrors.StoreError
	if errors.As(err, &se) {
		return err
	}
	return apperrors.NewStoreError(apperrors.KindStoreFailure, message, err)
}
