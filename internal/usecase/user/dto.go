package user

import domain "user-crud-service/internal/domain/user"

// CreateUserRequest represents the request payload for creating a new user.
// Both fields are optional and stored as given.
type CreateUserRequest struct {
	Name  *string
	Email *string
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	User User
}

// UpdateUserRequest represents the request payload for replacing a user's fields.
// A nil field is removed from the stored document.
type UpdateUserRequest struct {
	ID    string
	Name  *string
	Email *string
}

// UpdateUserResponse carries the post-update user.
type UpdateUserResponse struct {
	User User
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserResponse carries the user as it was before deletion.
type DeleteUserResponse struct {
	User User
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct{}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    string
	Name  *string
	Email *string
}

func toDTO(u *domain.User) User {
	return User{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}
