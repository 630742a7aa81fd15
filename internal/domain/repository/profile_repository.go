package repository

import (
	"context"

	"skipfurther/internal/domain/entity"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByUsername(ctx context.Context, username string) (*entity.Profile, error)
	// GetByIDs skips ids that have no profile.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error

	// CreateVerificationRequest stores the request and marks the profile's identity as pending.
	CreateVerificationRequest(ctx context.Context, request *entity.VerificationRequest) error
}
