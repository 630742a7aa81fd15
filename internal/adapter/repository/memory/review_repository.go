package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type reviewRepository struct {
	s *Store
}

func NewReviewRepository(s *Store) repository.ReviewRepository {
	return &reviewRepository{s: s}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if review.TransactionID != "" {
		review.ID = fmt.Sprintf("%s_%s", review.ReviewerID, review.TransactionID)
		if _, ok := r.s.reviews[review.ID]; ok {
			return errors.Conflict("You have already reviewed this transaction")
		}
	} else {
		review.ID = uuid.New().String()
	}

	profile, ok := r.s.profiles[review.UserID]
	if !ok {
		return errors.NotFound("User", nil)
	}

	review.CreatedAt = time.Now()
	profile.ApplyRating(review.Rating)
	profile.UpdatedAt = review.CreatedAt
	r.s.reviews[review.ID] = clone(review)
	return nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID, sortBy string, desc bool, limit, offset int) ([]*entity.Review, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Review
	for _, rv := range r.s.reviews {
		if rv.UserID == userID {
			out = append(out, clone(rv))
		}
	}

	repository.SortReviews(out, sortBy, desc)
	return repository.Page(out, limit, offset), int64(len(out)), nil
}
