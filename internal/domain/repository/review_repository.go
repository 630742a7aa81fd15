package repository

import (
	"context"
	"sort"

	"skipfurther/internal/domain/entity"
)

type ReviewRepository interface {
	// Create stores the review and folds its rating into the reviewee's profile atomically.
	// A reviewer can review a transaction only once.
	Create(ctx context.Context, review *entity.Review) error
	// ListByUser returns reviews received by userID. sortBy is created_at or rating.
	ListByUser(ctx context.Context, userID, sortBy string, desc bool, limit, offset int) ([]*entity.Review, int64, error)
}

const ReviewSortRating = "rating"

// SortReviews orders by rating or creation time, breaking ties by newest first.
func SortReviews(reviews []*entity.Review, sortBy string, desc bool) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if sortBy == ReviewSortRating && a.Rating != b.Rating {
			if desc {
				return a.Rating > b.Rating
			}
			return a.Rating < b.Rating
		}
		if sortBy != ReviewSortRating && !a.CreatedAt.Equal(b.CreatedAt) {
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
