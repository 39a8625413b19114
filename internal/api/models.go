package api

import "github.com/phrazzld/account-api/internal/domain"

// SignUpRequest defines the payload for the signup endpoint.
type SignUpRequest struct {
	Email    string `json:"email"     validate:"required"`
	Password string `json:"password"  validate:"required"`
	Username string `json:"username"  validate:"required"`
	FullName string `json:"full_name" validate:"required"`
}

// Account converts the request into the domain account.
func (r SignUpRequest) Account() domain.Account {
	return domain.Account{
		Email:    r.Email,
		Password: r.Password,
		Username: r.Username,
		FullName: r.FullName,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
// Only the fields present in the body are applied.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// Update converts the request into a partial domain update.
func (r UpdateProfileRequest) Update() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Username: r.Username,
		FullName: r.FullName,
	}
}

// ResetPasswordRequest defines the payload for the password reset endpoint.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// MessageResponse is returned by endpoints that report a single outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}

// ProfileResponse is the stored profile as returned to clients.
type ProfileResponse struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
}

// NewProfileResponse renders a domain profile.
func NewProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		Email:     p.Email,
		Username:  p.Username,
		FullName:  p.FullName,
		CreatedAt: p.FormattedCreatedAt(),
	}
}
