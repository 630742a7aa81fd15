package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type bidRepository struct {
	s *Store
}

func NewBidRepository(s *Store) repository.BidRepository {
	return &bidRepository{s: s}
}

func (r *bidRepository) Place(ctx context.Context, listingID string, fn repository.PlaceBidFunc) (*repository.PlacedBid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listings[listingID]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	listing := cloneListing(stored)

	bid, err := fn(listing)
	if err != nil {
		return nil, err
	}

	var previous *entity.Bid
	if p, ok := r.s.bids[listing.CurrentBidID]; ok {
		previous = p
	}

	bid.ID = uuid.New().String()
	bid.ListingID = listing.ID
	bid.UpdatedAt = bid.CreatedAt
	listing.ApplyBid(bid, bid.CreatedAt)

	r.s.bids[bid.ID] = clone(bid)
	r.s.listings[listing.ID] = cloneListing(listing)

	placed := &repository.PlacedBid{Bid: bid, Listing: listing}
	if previous != nil && previous.Status == entity.BidStatusActive {
		previous.Status = entity.BidStatusOutbid
		previous.UpdatedAt = bid.CreatedAt
		placed.Outbid = clone(previous)
	}
	return placed, nil
}

func (r *bidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bids[id]
	if !ok {
		return nil, errors.NotFound("Bid", nil)
	}
	return clone(b), nil
}

func (r *bidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	bid.UpdatedAt = time.Now()
	r.s.bids[bid.ID] = clone(bid)
	return nil
}

func (r *bidRepository) ListTopByListing(ctx context.Context, listingID string, limit int) ([]*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Bid
	for _, b := range r.s.bids {
		if b.ListingID == listingID {
			out = append(out, clone(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return repository.Page(out, limit, 0), nil
}

func (r *bidRepository) ListByBidder(ctx context.Context, bidderID, listingID string) ([]*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Bid
	for _, b := range r.s.bids {
		if b.BidderID == bidderID && (listingID == "" || b.ListingID == listingID) {
			out = append(out, clone(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *bidRepository) CountByBidder(ctx context.Context, bidderID, status string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, b := range r.s.bids {
		if b.BidderID == bidderID && (status == "" || b.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *bidRepository) CloseAuction(ctx context.Context, listingID string, now time.Time) (*repository.ClosedAuction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[listingID]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	if !l.IsAuction || !l.IsActive() || l.AuctionClosed || !l.AuctionEnded(now) {
		return nil, nil
	}

	l.AuctionClosed = true
	l.UpdatedAt = now

	closed := &repository.ClosedAuction{Listing: cloneListing(l)}
	if winner, ok := r.s.bids[l.CurrentBidID]; ok {
		if winner.Status == entity.BidStatusActive {
			winner.Status = entity.BidStatusWon
			winner.UpdatedAt = now
		}
		closed.Winner = clone(winner)
	}
	return closed, nil
}
