package firebase

import (
	"context"
	stderrors "errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"skipfurther/internal/domain/entity"
	"skipfurther/pkg/errors"
)

// AuthClient talks to Firebase Auth: the admin SDK for user management and
// token checks, the Identity Toolkit REST API for password sign-in.
type AuthClient struct {
	client  *auth.Client
	toolkit *identitytoolkit.Service
}

func NewAuthClient(ctx context.Context, client *auth.Client, apiKey string) (*AuthClient, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &AuthClient{
		client:  client,
		toolkit: toolkit,
	}, nil
}

func (f *AuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("Email is already registered")
		}
		return "", errors.BadRequest("Failed to create account", err)
	}

	return user.UID, nil
}

func (f *AuthClient) DeleteUser(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}

// VerifyToken checks signature, expiry and revocation of an ID token.
func (f *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *AuthClient) SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if isClientError(err) {
			return nil, errors.Unauthorized("Invalid email or password", err)
		}
		return nil, errors.Internal("Failed to sign in", err)
	}

	return &entity.AuthSession{
		UserID:       resp.LocalId,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (f *AuthClient) RevokeSessions(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

func (f *AuthClient) SendPasswordReset(ctx context.Context, email, continueURL string) error {
	_, err := f.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: "PASSWORD_RESET",
		ContinueUrl: continueURL,
	}).Context(ctx).Do()
	if err != nil {
		if isClientError(err) {
			return errors.BadRequest("Failed to send password reset email", err)
		}
		return errors.Internal("Failed to send password reset email", err)
	}

	return nil
}

func isClientError(err error) bool {
	var apiErr *googleapi.Error
	return stderrors.As(err, &apiErr) && apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError
}
