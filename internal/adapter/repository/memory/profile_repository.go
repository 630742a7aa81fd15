package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type profileRepository struct {
	s *Store
}

func NewProfileRepository(s *Store) repository.ProfileRepository {
	return &profileRepository{s: s}
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[profile.ID]; ok {
		return errors.Conflict("Profile already exists")
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.s.profiles[profile.ID] = clone(profile)
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return clone(p), nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.profiles {
		if p.Username == username {
			return clone(p), nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string]*entity.Profile, len(ids))
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out[id] = clone(p)
		}
	}
	return out, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	profile.UpdatedAt = time.Now()
	r.s.profiles[profile.ID] = clone(profile)
	return nil
}

func (r *profileRepository) CreateVerificationRequest(ctx context.Context, request *entity.VerificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[request.UserID]
	if !ok {
		return errors.NotFound("User", nil)
	}

	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	request.CreatedAt = time.Now()
	r.s.verificationRequests[request.ID] = clone(request)

	p.VerificationStatus = entity.IdentityPending
	p.UpdatedAt = request.CreatedAt
	return nil
}
