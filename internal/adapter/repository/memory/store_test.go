package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

func seedListing(t *testing.T, s *Store, l *entity.Listing) *entity.Listing {
	t.Helper()
	require.NoError(t, NewListingRepository(s).Create(context.Background(), l))
	return l
}

func auctionListing(minimum float64) *entity.Listing {
	end := time.Now().Add(time.Hour)
	return &entity.Listing{
		SellerID:       "seller",
		Title:          "Early access",
		IsAuction:      true,
		MinimumBid:     minimum,
		AuctionEndTime: &end,
		Status:         entity.ListingStatusActive,
	}
}

func placeFn(bidderID string, amount float64) repository.PlaceBidFunc {
	return func(l *entity.Listing) (*entity.Bid, error) {
		now := time.Now()
		if err := l.CheckBid(bidderID, amount, now); err != nil {
			return nil, err
		}
		return &entity.Bid{BidderID: bidderID, Amount: amount, Status: entity.BidStatusActive, CreatedAt: now}, nil
	}
}

func TestPlaceBidMovesProjectionAndOutbidsLeader(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	bids := NewBidRepository(s)
	listing := seedListing(t, s, auctionListing(100))

	_, err := bids.Place(ctx, listing.ID, placeFn("u1", 100))
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	first, err := bids.Place(ctx, listing.ID, placeFn("u1", 101))
	require.NoError(t, err)
	assert.Nil(t, first.Outbid)
	assert.Equal(t, 101.0, *first.Listing.CurrentBid)

	second, err := bids.Place(ctx, listing.ID, placeFn("u2", 150))
	require.NoError(t, err)
	require.NotNil(t, second.Outbid)
	assert.Equal(t, first.Bid.ID, second.Outbid.ID)

	stored, err := bids.GetByID(ctx, first.Bid.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BidStatusOutbid, stored.Status)

	got, err := NewListingRepository(s).GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, *got.CurrentBid)
	assert.Equal(t, "u2", got.CurrentBidderID)
}

func TestConcurrentBidsNeverRegressProjection(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	bids := NewBidRepository(s)
	listing := seedListing(t, s, auctionListing(10))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			_, _ = bids.Place(ctx, listing.ID, placeFn("bidder", amount))
		}(float64(10 + i))
	}
	wg.Wait()

	got, err := NewListingRepository(s).GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, *got.CurrentBid)

	top, err := bids.ListTopByListing(ctx, listing.ID, 0)
	require.NoError(t, err)
	active := 0
	for _, b := range top {
		if b.Status == entity.BidStatusActive {
			active++
			assert.Equal(t, got.CurrentBidID, b.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestConcurrentPurchasesOnlyOneSucceeds(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	txns := NewTransactionRepository(s)
	listing := seedListing(t, s, &entity.Listing{SellerID: "seller", Price: 245, Status: entity.ListingStatusActive})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, buyer := range []string{"u1", "u2", "u3", "u4"} {
		wg.Add(1)
		go func(buyer string) {
			defer wg.Done()
			_, err := txns.Open(ctx, listing.ID, "", func(l *entity.Listing, b *entity.Bid) (*entity.Transaction, error) {
				return entity.NewTransaction(l, b, buyer, time.Now())
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, errors.CodeNotFound))
			}
		}(buyer)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	got, err := NewListingRepository(s).GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusSold, got.Status)
}

func TestMutateAwardsReputationOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	profiles := NewProfileRepository(s)
	require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: "buyer", Username: "buyer"}))
	require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: "seller", Username: "seller"}))

	listing := seedListing(t, s, &entity.Listing{SellerID: "seller", Price: 245, Status: entity.ListingStatusActive})
	txns := NewTransactionRepository(s)
	txn, err := txns.Open(ctx, listing.ID, "", func(l *entity.Listing, b *entity.Bid) (*entity.Transaction, error) {
		return entity.NewTransaction(l, b, "buyer", time.Now())
	})
	require.NoError(t, err)

	complete := func(txn *entity.Transaction, _ []*entity.Verification) (*repository.TransactionMutation, error) {
		award, err := txn.ChangeStatus("buyer", entity.TransactionStatusCompleted, time.Now())
		return &repository.TransactionMutation{AwardReputation: award}, err
	}

	_, m, err := txns.Mutate(ctx, txn.ID, complete)
	require.NoError(t, err)
	assert.True(t, m.AwardReputation)

	_, m, err = txns.Mutate(ctx, txn.ID, complete)
	require.NoError(t, err)
	assert.False(t, m.AwardReputation)

	for _, id := range []string{"buyer", "seller"} {
		p, err := profiles.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), p.Reputation)
	}
}

func TestCloseAuctionIsIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	bids := NewBidRepository(s)
	listing := seedListing(t, s, auctionListing(10))

	placed, err := bids.Place(ctx, listing.ID, placeFn("u1", 20))
	require.NoError(t, err)

	later := listing.AuctionEndTime.Add(time.Minute)
	closed, err := bids.CloseAuction(ctx, listing.ID, later)
	require.NoError(t, err)
	require.NotNil(t, closed)
	require.NotNil(t, closed.Winner)
	assert.Equal(t, placed.Bid.ID, closed.Winner.ID)
	assert.Equal(t, entity.BidStatusWon, closed.Winner.Status)

	again, err := bids.CloseAuction(ctx, listing.ID, later)
	require.NoError(t, err)
	assert.Nil(t, again)

	ended, err := NewListingRepository(s).ListEndedAuctions(ctx, later, 10)
	require.NoError(t, err)
	assert.Empty(t, ended)
}

func TestImagesKeepSinglePrimary(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	listings := NewListingRepository(s)

	first := &entity.ListingImage{ListingID: "l1", URL: "a"}
	require.NoError(t, listings.AddImage(ctx, first))
	assert.True(t, first.IsPrimary)

	second := &entity.ListingImage{ListingID: "l1", URL: "b", IsPrimary: true}
	require.NoError(t, listings.AddImage(ctx, second))

	images, err := listings.ListImages(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, second.ID, images[0].ID)
	assert.False(t, images[1].IsPrimary)

	_, err = listings.RemoveImage(ctx, "l1", second.ID)
	require.NoError(t, err)

	images, err = listings.ListImages(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.True(t, images[0].IsPrimary)

	_, err = listings.RemoveImage(ctx, "other", first.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestReviewOncePerTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, NewProfileRepository(s).Create(ctx, &entity.Profile{ID: "seller", Username: "seller"}))
	reviews := NewReviewRepository(s)

	require.NoError(t, reviews.Create(ctx, &entity.Review{ReviewerID: "buyer", UserID: "seller", TransactionID: "t1", Rating: 5}))
	err := reviews.Create(ctx, &entity.Review{ReviewerID: "buyer", UserID: "seller", TransactionID: "t1", Rating: 1})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	p, err := NewProfileRepository(s).GetByID(ctx, "seller")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ReviewCount)
	assert.Equal(t, 5.0, p.AverageRating)
}

func TestListingMutateInterleavedWithBids(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	listings := NewListingRepository(s)
	bids := NewBidRepository(s)
	listing := seedListing(t, s, auctionListing(100))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(amount float64) {
			defer wg.Done()
			_, _ = bids.Place(ctx, listing.ID, placeFn("u1", amount))
		}(100 + float64(i))
		go func() {
			defer wg.Done()
			_, err := listings.Mutate(ctx, listing.ID, func(l *entity.Listing) ([]repository.ListingField, error) {
				l.Description = "edited"
				return []repository.ListingField{repository.ListingFieldDescription}, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Description)
	require.NotNil(t, stored.CurrentBid)
	assert.Equal(t, 120.0, *stored.CurrentBid)
}

func TestListingMutateErrorLeavesListingUntouched(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	listings := NewListingRepository(s)
	listing := seedListing(t, s, auctionListing(100))

	_, err := listings.Mutate(ctx, listing.ID, func(l *entity.Listing) ([]repository.ListingField, error) {
		l.Title = "changed"
		return nil, errors.InvalidState("Only active listings can be edited")
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	_, err = listings.Mutate(ctx, "missing", func(l *entity.Listing) ([]repository.ListingField, error) {
		return nil, nil
	})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	stored, err := listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Early access", stored.Title)
}
