package repository

import (
	"context"
	"time"

	"skipfurther/internal/domain/entity"
)

// PlaceBidFunc validates a bid against the listing read inside the datastore transaction.
type PlaceBidFunc func(listing *entity.Listing) (*entity.Bid, error)

type PlacedBid struct {
	Bid     *entity.Bid
	Listing *entity.Listing
	// Outbid is the bid that led before this one, if any.
	Outbid *entity.Bid
}

type ClosedAuction struct {
	Listing *entity.Listing
	Winner  *entity.Bid
}

type BidRepository interface {
	// Place inserts the bid returned by fn, moves the listing's highest-bid projection
	// and marks the previous leader outbid, all in one datastore transaction.
	Place(ctx context.Context, listingID string, fn PlaceBidFunc) (*PlacedBid, error)
	GetByID(ctx context.Context, id string) (*entity.Bid, error)
	Update(ctx context.Context, bid *entity.Bid) error
	ListTopByListing(ctx context.Context, listingID string, limit int) ([]*entity.Bid, error)
	// ListByBidder returns newest first; listingID is optional.
	ListByBidder(ctx context.Context, bidderID, listingID string) ([]*entity.Bid, error)
	CountByBidder(ctx context.Context, bidderID, status string) (int64, error)

	// CloseAuction flags an ended auction closed and marks its leading bid won.
	// It returns nil when the auction was already closed or has not ended.
	CloseAuction(ctx context.Context, listingID string, now time.Time) (*ClosedAuction, error)
}
