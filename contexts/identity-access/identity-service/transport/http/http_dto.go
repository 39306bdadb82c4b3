package http

import (
	"time"

	"keystone/contexts/identity-access/identity-service/domain/entities"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
	URL   string `json:"url,omitempty"`
}

type ChangePasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	Code                 string `json:"code"`
}

// ProviderCallbackRequest carries the provider handshake result. Profile
// keeps the provider's raw field names; normalization happens server
// side per provider.
type ProviderCallbackRequest struct {
	AccessToken string         `json:"access_token"`
	TokenSecret string         `json:"token_secret,omitempty"`
	Profile     map[string]any `json:"profile"`
}

type UserResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is the outbound shape of every successful authentication.
// The user is serialized without password or reset-code material.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UpdateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

func ToUserResponse(user entities.User) UserResponse {
	roles := user.RoleNames()
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func ToUserResponses(users []entities.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, ToUserResponse(user))
	}
	return items
}
