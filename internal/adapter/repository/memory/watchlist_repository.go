package memory

import (
	"context"
	"sort"
	"time"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type watchlistRepository struct {
	s *Store
}

func NewWatchlistRepository(s *Store) repository.WatchlistRepository {
	return &watchlistRepository{s: s}
}

func (r *watchlistRepository) Add(ctx context.Context, item *entity.WatchlistItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item.ID = entity.WatchlistItemID(item.UserID, item.ListingID)
	if _, ok := r.s.watchlist[item.ID]; ok {
		return errors.Conflict("Listing is already in your watchlist")
	}
	item.CreatedAt = time.Now()
	r.s.watchlist[item.ID] = clone(item)
	return nil
}

func (r *watchlistRepository) Remove(ctx context.Context, userID, listingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id := entity.WatchlistItemID(userID, listingID)
	if _, ok := r.s.watchlist[id]; !ok {
		return errors.NotFound("Watchlist item", nil)
	}
	delete(r.s.watchlist, id)
	return nil
}

func (r *watchlistRepository) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.watchlist[entity.WatchlistItemID(userID, listingID)]
	return ok, nil
}

func (r *watchlistRepository) ListByUser(ctx context.Context, userID string) ([]*entity.WatchlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.WatchlistItem
	for _, item := range r.s.watchlist {
		if item.UserID == userID {
			out = append(out, clone(item))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
