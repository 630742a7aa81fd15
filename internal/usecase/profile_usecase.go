package usecase

import (
	"context"
	"io"
	"path"

	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/internal/domain/service"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	storage     service.FileUploadService
	log         zerolog.Logger
}

func NewProfileUseCase(profileRepo repository.ProfileRepository, storage service.FileUploadService) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		storage:     storage,
		log:         logger.With("profiles"),
	}
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, uid)
}

func (uc *ProfileUseCase) GetPublicProfile(ctx context.Context, id string) (*entity.PublicProfile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return profile.Public(), nil
}

// UpdateProfileInput carries only the fields being changed.
type UpdateProfileInput struct {
	Username  *string
	Bio       *string
	AvatarURL *string
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != profile.Username {
		existing, err := uc.profileRepo.GetByUsername(ctx, *input.Username)
		if err == nil && existing.ID != uid {
			return nil, errors.Conflict("Username is already taken")
		}
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		profile.Username = *input.Username
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = *input.AvatarURL
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// SubmitVerification stores an identity document privately and opens a verification request.
func (uc *ProfileUseCase) SubmitVerification(ctx context.Context, uid string, document io.Reader, contentType, documentType string) (*entity.VerificationRequest, error) {
	if _, err := uc.profileRepo.GetByID(ctx, uid); err != nil {
		return nil, err
	}

	url, err := uc.storage.UploadFile(ctx, document, contentType, path.Join(service.FolderVerificationDocuments, uid), false)
	if err != nil {
		return nil, errors.Internal("Failed to upload verification document", err)
	}

	request := &entity.VerificationRequest{
		UserID:       uid,
		DocumentURL:  url,
		DocumentType: documentType,
		Status:       entity.IdentityPending,
	}
	if err := uc.profileRepo.CreateVerificationRequest(ctx, request); err != nil {
		if delErr := uc.storage.DeleteFile(ctx, url); delErr != nil {
			uc.log.Warn().Err(delErr).Str("url", url).Msg("failed to delete orphaned verification document")
		}
		return nil, err
	}

	return request, nil
}
