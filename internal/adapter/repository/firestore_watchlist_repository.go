package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type firestoreWatchlistRepository struct {
	client *firestore.Client
}

func NewFirestoreWatchlistRepository(client *firestore.Client) repository.WatchlistRepository {
	return &firestoreWatchlistRepository{
		client: client,
	}
}

func (r *firestoreWatchlistRepository) Add(ctx context.Context, item *entity.WatchlistItem) error {
	item.ID = entity.WatchlistItemID(item.UserID, item.ListingID)
	item.CreatedAt = time.Now()

	_, err := r.client.Collection(watchlistsCollection).Doc(item.ID).Create(ctx, item)
	if err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Listing is already in your watchlist")
		}
		return errors.Internal("Failed to add to watchlist", err)
	}

	return nil
}

func (r *firestoreWatchlistRepository) Remove(ctx context.Context, userID, listingID string) error {
	ref := r.client.Collection(watchlistsCollection).Doc(entity.WatchlistItemID(userID, listingID))

	_, err := ref.Delete(ctx, firestore.Exists)
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Watchlist item", err)
		}
		return errors.Internal("Failed to remove from watchlist", err)
	}

	return nil
}

func (r *firestoreWatchlistRepository) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	_, err := r.client.Collection(watchlistsCollection).Doc(entity.WatchlistItemID(userID, listingID)).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, errors.Internal("Failed to check watchlist", err)
	}

	return true, nil
}

func (r *firestoreWatchlistRepository) ListByUser(ctx context.Context, userID string) ([]*entity.WatchlistItem, error) {
	docs, err := r.client.Collection(watchlistsCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list watchlist", err)
	}

	items, err := decodeAll[entity.WatchlistItem](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse watchlist data", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
