package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type firestoreBidRepository struct {
	client *firestore.Client
}

func NewFirestoreBidRepository(client *firestore.Client) repository.BidRepository {
	return &firestoreBidRepository{
		client: client,
	}
}

func (r *firestoreBidRepository) Place(ctx context.Context, listingID string, fn repository.PlaceBidFunc) (*repository.PlacedBid, error) {
	listingRef := r.client.Collection(listingsCollection).Doc(listingID)
	bids := r.client.Collection(bidsCollection)

	var placed *repository.PlacedBid
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		placed = nil

		doc, err := tx.Get(listingRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Listing", err)
			}
			return err
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return err
		}

		bid, err := fn(&listing)
		if err != nil {
			return err
		}

		var previous *entity.Bid
		if listing.CurrentBidID != "" {
			prevDoc, err := tx.Get(bids.Doc(listing.CurrentBidID))
			if err != nil && !IsNotFound(err) {
				return err
			}
			if err == nil {
				var prev entity.Bid
				if err := prevDoc.DataTo(&prev); err != nil {
					return err
				}
				previous = &prev
			}
		}

		bid.ID = uuid.New().String()
		bid.ListingID = listing.ID
		bid.UpdatedAt = bid.CreatedAt
		listing.ApplyBid(bid, bid.CreatedAt)

		if err := tx.Create(bids.Doc(bid.ID), bid); err != nil {
			return err
		}
		if err := tx.Set(listingRef, &listing); err != nil {
			return err
		}

		result := &repository.PlacedBid{Bid: bid, Listing: &listing}
		if previous != nil && previous.Status == entity.BidStatusActive {
			previous.Status = entity.BidStatusOutbid
			previous.UpdatedAt = bid.CreatedAt
			if err := tx.Update(bids.Doc(previous.ID), []firestore.Update{
				{Path: "status", Value: previous.Status},
				{Path: "updatedAt", Value: previous.UpdatedAt},
			}); err != nil {
				return err
			}
			result.Outbid = previous
		}

		placed = result
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to place bid", err)
	}

	return placed, nil
}

func (r *firestoreBidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	doc, err := r.client.Collection(bidsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Bid", err)
		}
		return nil, errors.Internal("Failed to get bid", err)
	}

	var bid entity.Bid
	if err := doc.DataTo(&bid); err != nil {
		return nil, errors.Internal("Failed to parse bid data", err)
	}

	return &bid, nil
}

func (r *firestoreBidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	bid.UpdatedAt = time.Now()

	_, err := r.client.Collection(bidsCollection).Doc(bid.ID).Set(ctx, bid)
	if err != nil {
		return errors.Internal("Failed to update bid", err)
	}

	return nil
}

func (r *firestoreBidRepository) ListTopByListing(ctx context.Context, listingID string, limit int) ([]*entity.Bid, error) {
	query := r.client.Collection(bidsCollection).
		Where("listingId", "==", listingID).
		OrderBy("amount", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list bids", err)
	}

	bids, err := decodeAll[entity.Bid](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse bid data", err)
	}

	return bids, nil
}

func (r *firestoreBidRepository) ListByBidder(ctx context.Context, bidderID, listingID string) ([]*entity.Bid, error) {
	query := r.client.Collection(bidsCollection).Where("bidderId", "==", bidderID)
	if listingID != "" {
		query = query.Where("listingId", "==", listingID)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list bids", err)
	}

	bids, err := decodeAll[entity.Bid](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse bid data", err)
	}

	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

func (r *firestoreBidRepository) CountByBidder(ctx context.Context, bidderID, status string) (int64, error) {
	query := r.client.Collection(bidsCollection).Where("bidderId", "==", bidderID)
	if status != "" {
		query = query.Where("status", "==", status)
	}

	docs, err := query.Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count bids", err)
	}

	return int64(len(docs)), nil
}

func (r *firestoreBidRepository) CloseAuction(ctx context.Context, listingID string, now time.Time) (*repository.ClosedAuction, error) {
	listingRef := r.client.Collection(listingsCollection).Doc(listingID)
	bids := r.client.Collection(bidsCollection)

	var closed *repository.ClosedAuction
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		closed = nil

		doc, err := tx.Get(listingRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Listing", err)
			}
			return err
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return err
		}
		if !listing.IsAuction || !listing.IsActive() || listing.AuctionClosed || !listing.AuctionEnded(now) {
			return nil
		}

		var winner *entity.Bid
		if listing.CurrentBidID != "" {
			bidDoc, err := tx.Get(bids.Doc(listing.CurrentBidID))
			if err != nil && !IsNotFound(err) {
				return err
			}
			if err == nil {
				var bid entity.Bid
				if err := bidDoc.DataTo(&bid); err != nil {
					return err
				}
				winner = &bid
			}
		}

		listing.AuctionClosed = true
		listing.UpdatedAt = now
		if err := tx.Set(listingRef, &listing); err != nil {
			return err
		}

		if winner != nil && winner.Status == entity.BidStatusActive {
			winner.Status = entity.BidStatusWon
			winner.UpdatedAt = now
			if err := tx.Update(bids.Doc(winner.ID), []firestore.Update{
				{Path: "status", Value: winner.Status},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}

		closed = &repository.ClosedAuction{Listing: &listing, Winner: winner}
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to close auction", err)
	}

	return closed, nil
}
