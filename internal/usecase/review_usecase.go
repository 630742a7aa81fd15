package usecase

import (
	"context"
	"fmt"
	"strings"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type ReviewUseCase struct {
	reviewRepo      repository.ReviewRepository
	transactionRepo repository.TransactionRepository
	profileRepo     repository.ProfileRepository
	notifier        Notifier
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	transactionRepo repository.TransactionRepository,
	profileRepo repository.ProfileRepository,
	notifier Notifier,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:      reviewRepo,
		transactionRepo: transactionRepo,
		profileRepo:     profileRepo,
		notifier:        notifier,
	}
}

type CreateReviewInput struct {
	UserID        string
	TransactionID string
	Rating        int
	Comment       string
}

func (uc *ReviewUseCase) CreateReview(ctx context.Context, reviewerID string, input CreateReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.BadRequest("Rating must be between 1 and 5", nil)
	}
	if input.UserID == reviewerID {
		return nil, errors.BadRequest("You cannot review yourself", nil)
	}
	if _, err := uc.profileRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	if input.TransactionID != "" {
		txn, err := uc.transactionRepo.GetByID(ctx, input.TransactionID)
		if err != nil {
			return nil, err
		}
		if !txn.IsParty(reviewerID) {
			return nil, errors.Forbidden("You can only review your own transactions", nil)
		}
		if txn.Status != entity.TransactionStatusCompleted {
			return nil, errors.InvalidState("Only completed transactions can be reviewed")
		}
		if txn.Counterparty(reviewerID) != input.UserID {
			return nil, errors.BadRequest("You can only review the other party of the transaction", nil)
		}
	}

	review := &entity.Review{
		ReviewerID:    reviewerID,
		UserID:        input.UserID,
		TransactionID: input.TransactionID,
		Rating:        input.Rating,
		Comment:       strings.TrimSpace(input.Comment),
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, review.UserID, entity.NotificationNewReview,
		fmt.Sprintf("You received a %d-star review", review.Rating), review.ID)

	return review, nil
}

// ListReviews returns every review userID received, newest first.
func (uc *ReviewUseCase) ListReviews(ctx context.Context, userID string) ([]*entity.ReviewWithReviewer, error) {
	reviews, _, err := uc.reviewRepo.ListByUser(ctx, userID, "", true, 0, 0)
	if err != nil {
		return nil, err
	}
	return uc.withReviewers(ctx, reviews)
}

type UserReviews struct {
	Reviews       []*entity.ReviewWithReviewer `json:"reviews"`
	Total         int64                        `json:"total"`
	AverageRating float64                      `json:"average_rating"`
	ReviewCount   int64                        `json:"review_count"`
}

func (uc *ReviewUseCase) UserReviews(ctx context.Context, userID, sortBy string, desc bool, page, limit int) (*UserReviews, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reviews, total, err := uc.reviewRepo.ListByUser(ctx, userID, sortBy, desc, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	joined, err := uc.withReviewers(ctx, reviews)
	if err != nil {
		return nil, err
	}

	return &UserReviews{
		Reviews:       joined,
		Total:         total,
		AverageRating: profile.AverageRating,
		ReviewCount:   profile.ReviewCount,
	}, nil
}

func (uc *ReviewUseCase) withReviewers(ctx context.Context, reviews []*entity.Review) ([]*entity.ReviewWithReviewer, error) {
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ReviewerID)
	}

	profiles, err := uc.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.ReviewWithReviewer, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, &entity.ReviewWithReviewer{Review: r, Reviewer: profiles[r.ReviewerID].Public()})
	}
	return out, nil
}
