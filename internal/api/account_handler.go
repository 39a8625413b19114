package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/redact"
)

// AccountGateway is the set of identity gateway operations the handlers use.
type AccountGateway interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	VerifySessionToken(ctx context.Context, token string) (string, error)
	DeleteAccount(ctx context.Context, userID string) error
	SendPasswordReset(ctx context.Context, email string) error
	CreateProfileRecord(ctx context.Context, userID string, profile *domain.Profile) error
	GetProfileRecord(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfileRecord(ctx context.Context, userID string, update domain.ProfileUpdate) error
	DeleteProfileRecord(ctx context.Context, userID string) error
}

// Success messages.
const (
	msgAccountCreated = "User account created successfully for user "
	msgProfileUpdated = "User profile updated successfully"
	msgAccountDeleted = "User account deleted successfully"
	msgResetSent      = "Password reset email sent successfully"
)

// AccountHandler serves the account endpoints.
type AccountHandler struct {
	gateway AccountGateway
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(gateway AccountGateway, log *slog.Logger) *AccountHandler {
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AccountHandler{
		gateway: gateway,
		logger:  log.With(slog.String("component", "account_handler")),
	}
}

// SignUp handles POST /signup.
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SignUpRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	userID, err := h.gateway.CreateAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) && !errors.Is(err, domain.ErrUnavailable) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
				fmt.Sprintf("%s %s", msgDuplicateAccount, req.Email), err)
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	if err := h.gateway.CreateProfileRecord(r.Context(), userID, domain.NewProfile(req.Account())); err != nil {
		log.Error("profile record not created, identity record is orphaned",
			slog.String("user_id", userID),
			slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err)
		return
	}

	log.Info("account created", slog.String("user_id", userID))
	shared.RespondWithJSON(w, r, http.StatusCreated, MessageResponse{
		Message: msgAccountCreated + userID,
	})
}

// Login handles POST /login. Every gateway failure, including an unavailable
// provider, is reported as invalid credentials.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, err := h.gateway.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidCredentials, err,
			shared.WithElevatedLogLevel())
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}

// GetProfile handles GET /get_user_profile?token=.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	token, err := requiredQuery(r, "token")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	userID, err := h.gateway.VerifySessionToken(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	profile, err := h.gateway.GetProfileRecord(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if profile.IsEmpty() {
		HandleAPIError(w, r, fmt.Errorf("%w: record for %s has no fields", domain.ErrProfileNotFound, userID))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewProfileResponse(profile))
}

// UpdateProfile handles PUT /profile?token=.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	token, err := requiredQuery(r, "token")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateProfileRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	userID, err := h.gateway.VerifySessionToken(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.gateway.UpdateProfileRecord(r.Context(), userID, req.Update()); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: msgProfileUpdated})
}

// DeleteAccount handles DELETE /account?token=. The identity record is
// removed before the profile record.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token, err := requiredQuery(r, "token")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	userID, err := h.gateway.VerifySessionToken(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.gateway.DeleteAccount(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.gateway.DeleteProfileRecord(r.Context(), userID); err != nil {
		log.Error("profile record not deleted, document record is orphaned",
			slog.String("user_id", userID),
			slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err)
		return
	}

	log.Info("account deleted", slog.String("user_id", userID))
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: msgAccountDeleted})
}

// ResetPassword handles POST /reset_password. The email is read from the
// email query parameter, or from a JSON body when the parameter is absent.
// Every gateway failure is a 400 carrying the reset reason.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" && (r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0) {
		HandleAPIError(w, r, domain.NewValidationError("email", "is required", nil))
		return
	}
	if email == "" {
		var req ResetPasswordRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			HandleAPIError(w, r, err)
			return
		}
		email = req.Email
	}

	if err := h.gateway.SendPasswordReset(r.Context(), email); err != nil {
		reason := "unknown error"
		var resetErr *domain.ResetError
		if errors.As(err, &resetErr) && resetErr.Reason != "" {
			reason = resetErr.Reason
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgResetFailedPrefix+reason, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: msgResetSent})
}
