package usecase

import (
	"context"
	"fmt"
	"time"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

// Limiter throttles an action per key.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

type BidUseCase struct {
	bidRepo     repository.BidRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	notifier    Notifier
	limiter     Limiter
}

func NewBidUseCase(
	bidRepo repository.BidRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	notifier Notifier,
	limiter Limiter,
) *BidUseCase {
	return &BidUseCase{
		bidRepo:     bidRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		limiter:     limiter,
	}
}

func (uc *BidUseCase) PlaceBid(ctx context.Context, bidderID, listingID string, amount float64) (*entity.Bid, error) {
	if uc.limiter != nil {
		if ok, wait := uc.limiter.Allow(bidderID); !ok {
			return nil, errors.TooManyRequests("You are bidding too fast, please wait", wait)
		}
	}

	amount = entity.RoundMoney(amount)
	placed, err := uc.bidRepo.Place(ctx, listingID, func(listing *entity.Listing) (*entity.Bid, error) {
		now := time.Now()
		if err := listing.CheckBid(bidderID, amount, now); err != nil {
			return nil, err
		}
		return &entity.Bid{
			BidderID:  bidderID,
			Amount:    amount,
			Status:    entity.BidStatusActive,
			CreatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	listing := placed.Listing
	uc.notifier.Notify(ctx, listing.SellerID, entity.NotificationNewBid,
		fmt.Sprintf("New bid of %.2f on \"%s\"", amount, listing.Title), listing.ID)

	if prev := placed.Outbid; prev != nil && prev.BidderID != bidderID {
		uc.notifier.Notify(ctx, prev.BidderID, entity.NotificationOutbid,
			fmt.Sprintf("You have been outbid on \"%s\"", listing.Title), listing.ID)
	}

	return placed.Bid, nil
}

// ListBids returns the highest bids of a listing with their bidders.
func (uc *BidUseCase) ListBids(ctx context.Context, listingID string) ([]*entity.BidWithBidder, error) {
	if _, err := uc.listingRepo.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	bids, err := uc.bidRepo.ListTopByListing(ctx, listingID, TopBidsLimit)
	if err != nil {
		return nil, err
	}
	return joinBidders(ctx, uc.profileRepo, bids)
}

func (uc *BidUseCase) ListMyBids(ctx context.Context, bidderID, listingID string) ([]*entity.BidWithListing, error) {
	bids, err := uc.bidRepo.ListByBidder(ctx, bidderID, listingID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(bids))
	for _, b := range bids {
		ids = append(ids, b.ListingID)
	}
	listings, err := uc.listingRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.BidWithListing, 0, len(bids))
	for _, b := range bids {
		item := &entity.BidWithListing{Bid: b}
		if l, ok := listings[b.ListingID]; ok {
			item.Listing = l.Summary()
		}
		out = append(out, item)
	}
	return out, nil
}

// UpdateBidStatus lets the bidder or the listing's seller move a bid to another status.
func (uc *BidUseCase) UpdateBidStatus(ctx context.Context, requesterID, bidID, status string) (*entity.Bid, error) {
	bid, err := uc.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	listing, err := uc.listingRepo.GetByID(ctx, bid.ListingID)
	if err != nil {
		return nil, err
	}

	if requesterID != bid.BidderID && !listing.IsOwnedBy(requesterID) {
		return nil, errors.Forbidden("Only the bidder or the seller can update this bid", nil)
	}
	if !entity.ValidBidStatus(status) {
		return nil, errors.BadRequest("Invalid bid status", nil)
	}

	bid.Status = status
	if err := uc.bidRepo.Update(ctx, bid); err != nil {
		return nil, err
	}

	return bid, nil
}
