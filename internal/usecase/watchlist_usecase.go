package usecase

import (
	"context"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type WatchlistUseCase struct {
	watchlistRepo repository.WatchlistRepository
	listingRepo   repository.ListingRepository
}

func NewWatchlistUseCase(watchlistRepo repository.WatchlistRepository, listingRepo repository.ListingRepository) *WatchlistUseCase {
	return &WatchlistUseCase{
		watchlistRepo: watchlistRepo,
		listingRepo:   listingRepo,
	}
}

func (uc *WatchlistUseCase) Add(ctx context.Context, uid, listingID string) (*entity.WatchlistItem, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsOwnedBy(uid) {
		return nil, errors.BadRequest("You cannot watch your own listing", nil)
	}
	if !listing.IsActive() {
		return nil, errors.InvalidState("Only active listings can be watched")
	}

	item := &entity.WatchlistItem{UserID: uid, ListingID: listingID}
	if err := uc.watchlistRepo.Add(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *WatchlistUseCase) Remove(ctx context.Context, uid, listingID string) error {
	return uc.watchlistRepo.Remove(ctx, uid, listingID)
}

func (uc *WatchlistUseCase) List(ctx context.Context, uid string, page, limit int) ([]*entity.WatchlistItemWithListing, int64, error) {
	items, err := uc.watchlistRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(items))
	items = repository.Page(items, limit, (page-1)*limit)

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ListingID)
	}
	listings, err := uc.listingRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*entity.WatchlistItemWithListing, 0, len(items))
	for _, item := range items {
		joined := &entity.WatchlistItemWithListing{WatchlistItem: item}
		if l, ok := listings[item.ListingID]; ok {
			joined.Listing = l.Summary()
		}
		out = append(out, joined)
	}
	return out, total, nil
}

func (uc *WatchlistUseCase) Count(ctx context.Context, uid string) (int64, error) {
	items, err := uc.watchlistRepo.ListByUser(ctx, uid)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}
