package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

const passwordResetPath = "/auth/reset-password/confirm"

type AuthUseCase struct {
	profileRepo repository.ProfileRepository
	identity    IdentityProvider
	appOrigin   string
	log         zerolog.Logger
}

func NewAuthUseCase(profileRepo repository.ProfileRepository, identity IdentityProvider, appOrigin string) *AuthUseCase {
	return &AuthUseCase{
		profileRepo: profileRepo,
		identity:    identity,
		appOrigin:   strings.TrimRight(appOrigin, "/"),
		log:         logger.With("auth"),
	}
}

type SignupInput struct {
	Email    string
	Password string
	Username string
}

type AuthResult struct {
	Profile *entity.Profile     `json:"user"`
	Session *entity.AuthSession `json:"session"`
}

func (uc *AuthUseCase) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if _, err := uc.profileRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, errors.Conflict("Username is already taken")
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	uid, err := uc.identity.CreateUser(ctx, input.Email, input.Password, input.Username)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	profile := &entity.Profile{
		ID:                 uid,
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		Username:           input.Username,
		VerificationStatus: entity.IdentityUnverified,
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if delErr := uc.identity.DeleteUser(ctx, uid); delErr != nil {
			uc.log.Error().Err(delErr).Str("user_id", uid).Msg("failed to roll back identity after profile creation failed")
		}
		return nil, err
	}

	session, err := uc.identity.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Profile: profile, Session: session}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	session, err := uc.identity.SignIn(ctx, email, password)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Unauthorized("Invalid email or password", err)
	}

	profile, err := uc.profileRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Profile: profile, Session: session}, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, uid string) error {
	if err := uc.identity.RevokeSessions(ctx, uid); err != nil {
		return errors.Internal("Failed to revoke sessions", err)
	}
	return nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, email string) error {
	return uc.identity.SendPasswordReset(ctx, email, uc.appOrigin+passwordResetPath)
}
