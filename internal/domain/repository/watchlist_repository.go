package repository

import (
	"context"

	"skipfurther/internal/domain/entity"
)

type WatchlistRepository interface {
	Add(ctx context.Context, item *entity.WatchlistItem) error
	Remove(ctx context.Context, userID, listingID string) error
	Exists(ctx context.Context, userID, listingID string) (bool, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]*entity.WatchlistItem, error)
}
