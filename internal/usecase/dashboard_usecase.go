package usecase

import (
	"context"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
)

type DashboardUseCase struct {
	listingRepo     repository.ListingRepository
	bidRepo         repository.BidRepository
	transactionRepo repository.TransactionRepository
	watchlistRepo   repository.WatchlistRepository
}

func NewDashboardUseCase(
	listingRepo repository.ListingRepository,
	bidRepo repository.BidRepository,
	transactionRepo repository.TransactionRepository,
	watchlistRepo repository.WatchlistRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		listingRepo:     listingRepo,
		bidRepo:         bidRepo,
		transactionRepo: transactionRepo,
		watchlistRepo:   watchlistRepo,
	}
}

type DashboardSummary struct {
	ActiveListings        int   `json:"active_listings"`
	ActiveBids            int64 `json:"active_bids"`
	CompletedTransactions int64 `json:"completed_transactions"`
	WatchlistItems        int   `json:"watchlist_items"`
}

func (uc *DashboardUseCase) Summary(ctx context.Context, uid string) (*DashboardSummary, error) {
	listings, err := uc.listingRepo.ListBySeller(ctx, uid, entity.ListingStatusActive)
	if err != nil {
		return nil, err
	}

	activeBids, err := uc.bidRepo.CountByBidder(ctx, uid, entity.BidStatusActive)
	if err != nil {
		return nil, err
	}

	_, completed, err := uc.transactionRepo.ListByUser(ctx, uid, repository.TransactionFilter{
		Status: entity.TransactionStatusCompleted,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}

	watched, err := uc.watchlistRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		ActiveListings:        len(listings),
		ActiveBids:            activeBids,
		CompletedTransactions: completed,
		WatchlistItems:        len(watched),
	}, nil
}
