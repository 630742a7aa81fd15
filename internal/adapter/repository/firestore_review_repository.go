package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func reviewID(review *entity.Review) string {
	if review.TransactionID != "" {
		return fmt.Sprintf("%s_%s", review.ReviewerID, review.TransactionID)
	}
	return uuid.New().String()
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.ID = reviewID(review)
	review.CreatedAt = time.Now()

	reviewRef := r.client.Collection(reviewsCollection).Doc(review.ID)
	profileRef := r.client.Collection(profilesCollection).Doc(review.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if review.TransactionID != "" {
			_, err := tx.Get(reviewRef)
			if err == nil {
				return errors.Conflict("You have already reviewed this transaction")
			}
			if !IsNotFound(err) {
				return err
			}
		}

		doc, err := tx.Get(profileRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("User", err)
			}
			return err
		}

		var profile entity.Profile
		if err := doc.DataTo(&profile); err != nil {
			return err
		}
		profile.ApplyRating(review.Rating)

		if err := tx.Create(reviewRef, review); err != nil {
			return err
		}
		return tx.Update(profileRef, []firestore.Update{
			{Path: "averageRating", Value: profile.AverageRating},
			{Path: "reviewCount", Value: profile.ReviewCount},
			{Path: "updatedAt", Value: review.CreatedAt},
		})
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		if isAlreadyExists(err) {
			return errors.Conflict("You have already reviewed this transaction")
		}
		return errors.Internal("Failed to create review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) ListByUser(ctx context.Context, userID, sortBy string, desc bool, limit, offset int) ([]*entity.Review, int64, error) {
	docs, err := r.client.Collection(reviewsCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to list reviews", err)
	}

	reviews, err := decodeAll[entity.Review](docs)
	if err != nil {
		return nil, 0, errors.Internal("Failed to parse review data", err)
	}

	repository.SortReviews(reviews, sortBy, desc)
	return repository.Page(reviews, limit, offset), int64(len(reviews)), nil
}
