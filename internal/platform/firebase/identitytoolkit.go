package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/domain"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// passwordResetRequestType asks Identity Toolkit for a password reset email.
const passwordResetRequestType = "PASSWORD_RESET"

// PasswordClient performs the password operations the Admin SDK lacks.
type PasswordClient interface {
	// VerifyPassword signs in with email/password and returns an ID token.
	VerifyPassword(ctx context.Context, email, password string) (string, error)
	// SendPasswordResetEmail asks the provider to email a reset link.
	SendPasswordResetEmail(ctx context.Context, email string) error
}

// ToolkitClient is a PasswordClient backed by the Identity Toolkit REST API.
type ToolkitClient struct {
	relyingParty *identitytoolkit.RelyingpartyService
}

var _ PasswordClient = (*ToolkitClient)(nil)

// NewToolkitClient creates a ToolkitClient authenticated with the web API key.
// A configured endpoint replaces the public one, which is how the Firebase
// Auth emulator is targeted.
func NewToolkitClient(ctx context.Context, cfg config.FirebaseConfig, opts ...option.ClientOption) (*ToolkitClient, error) {
	base := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.IdentityToolkitEndpoint != "" {
		base = append(base, option.WithEndpoint(cfg.IdentityToolkitEndpoint))
	}

	svc, err := identitytoolkit.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	return &ToolkitClient{relyingParty: svc.Relyingparty}, nil
}

// VerifyPassword implements PasswordClient.
func (c *ToolkitClient) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	resp, err := c.relyingParty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, apiReason(err))
	}
	if resp.IdToken == "" {
		return "", fmt.Errorf("%w: no id token in response", domain.ErrInvalidCredentials)
	}
	return resp.IdToken, nil
}

// SendPasswordResetEmail implements PasswordClient.
func (c *ToolkitClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := c.relyingParty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: passwordResetRequestType,
	}).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return &domain.ResetError{Reason: apiReason(err), Err: err}
}

// apiReason extracts the provider's error code, such as EMAIL_NOT_FOUND,
// from a REST error.
func apiReason(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		for _, item := range apiErr.Errors {
			if item.Message != "" {
				return item.Message
			}
		}
		return http.StatusText(apiErr.Code)
	}
	return err.Error()
}
