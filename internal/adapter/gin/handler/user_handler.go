package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Fixed client-facing messages
const (
	MsgUserNotFound     = "User not found"
	MsgUserDeleted      = "User deleted"
	MsgInvalidBody      = "Invalid request body"
	MsgErrCreatingUser  = "Error creating user"
	MsgErrFetchingUsers = "Error fetching users"
	MsgErrFetchingUser  = "Error fetching user"
	MsgErrUpdatingUser  = "Error updating user"
	MsgErrDeletingUser  = "Error deleting user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc           user.Usecase
	log          *zap.Logger
	exposeErrors bool
}

// NewUserHandler creates a new UserHandler instance. When exposeErrors is
// false, error responses carry only the fixed message.
func NewUserHandler(uc user.Usecase, log *zap.Logger, exposeErrors bool) *UserHandler {
	return &UserHandler{
		uc:           uc,
		log:          log,
		exposeErrors: exposeErrors,
	}
}

// UserRequest represents the HTTP request body for creating or replacing a user.
// Both fields are optional; no format is enforced.
type UserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UnmarshalJSON accepts numbers and booleans for name and email and keeps
// them in their string form. Objects and arrays are rejected.
func (r *UserRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  json.RawMessage `json:"name"`
		Email json.RawMessage `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	name, err := scalarText("name", raw.Name)
	if err != nil {
		return err
	}
	email, err := scalarText("email", raw.Email)
	if err != nil {
		return err
	}

	r.Name, r.Email = name, email
	return nil
}

func scalarText(field string, raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var s string
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = val
	case json.Number:
		s = val.String()
	case bool:
		s = strconv.FormatBool(val)
	default:
		return nil, fmt.Errorf("%s: cannot cast %T to string", field, v)
	}
	return &s, nil
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// DeleteUserResponse represents the HTTP response for a deleted user
type DeleteUserResponse struct {
	Message     string       `json:"message"`
	DeletedUser UserResponse `json:"deletedUser"`
}

// MessageResponse is a body carrying only a message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string            `json:"message"`
	Error   *apperrors.Detail `json:"error,omitempty"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	req, ok := h.bindUser(c)
	if !ok {
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err, MsgErrCreatingUser)
		return
	}

	c.JSON(http.StatusCreated, toResponse(resp.User))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{})
	if err != nil {
		h.handleError(c, err, MsgErrFetchingUsers)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toResponse(u)
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		h.handleError(c, err, MsgErrFetchingUser)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	req, ok := h.bindUser(c)
	if !ok {
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    c.Param("id"),
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err, MsgErrUpdatingUser)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: c.Param("id")})
	if err != nil {
		h.handleError(c, err, MsgErrDeletingUser)
		return
	}

	c.JSON(http.StatusOK, DeleteUserResponse{
		Message:     MsgUserDeleted,
		DeletedUser: toResponse(resp.User),
	})
}

// bindUser decodes the request body. An empty body counts as {}.
func (h *UserHandler) bindUser(c *gin.Context) (UserRequest, bool) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid user request body", zap.Error(err))
		h.writeError(c, http.StatusBadRequest, MsgInvalidBody, apperrors.NewValidationError("", err.Error()))
		return UserRequest{}, false
	}
	return req, true
}

// handleError converts usecase errors to HTTP responses: 404 for a missing
// user, the error's own status (500 for store failures) otherwise.
func (h *UserHandler) handleError(c *gin.Context, err error, failureMessage string) {
	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, MessageResponse{Message: MsgUserNotFound})
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Error(failureMessage,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	h.writeError(c, apperrors.StatusOf(err), failureMessage, err)
}

func (h *UserHandler) writeError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if h.exposeErrors {
		detail := apperrors.DetailOf(err)
		resp.Error = &detail
	}
	c.JSON(status, resp)
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
