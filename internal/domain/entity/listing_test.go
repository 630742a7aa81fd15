package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"skipfurther/pkg/errors"
)

func auctionListing(minimum float64, current *float64, endsIn time.Duration) *Listing {
	end := time.Now().Add(endsIn)
	return &Listing{
		ID:             "listing-1",
		SellerID:       "seller",
		IsAuction:      true,
		MinimumBid:     minimum,
		CurrentBid:     current,
		AuctionEndTime: &end,
		Status:         ListingStatusActive,
	}
}

func float(v float64) *float64 { return &v }

func TestCheckBidMustExceedMinimum(t *testing.T) {
	l := auctionListing(100, nil, time.Hour)

	err := l.CheckBid("bidder", 100, time.Now())
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	assert.NoError(t, l.CheckBid("bidder", 101, time.Now()))
}

func TestCheckBidMustExceedCurrentBid(t *testing.T) {
	l := auctionListing(100, float(150), time.Hour)

	assert.True(t, errors.Is(l.CheckBid("bidder", 120, time.Now()), errors.CodeBadRequest))
	assert.True(t, errors.Is(l.CheckBid("bidder", 150, time.Now()), errors.CodeBadRequest))
	assert.True(t, errors.Is(l.CheckBid("bidder", 150.001, time.Now()), errors.CodeBadRequest), "sub-cent increments do not count")
	assert.NoError(t, l.CheckBid("bidder", 150.01, time.Now()))
}

func TestCheckBidRejections(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		listing *Listing
		bidder  string
		amount  float64
		code    string
	}{
		{"seller bids", auctionListing(10, nil, time.Hour), "seller", 50, errors.CodeForbidden},
		{"auction ended", auctionListing(10, nil, -time.Minute), "bidder", 50, errors.CodeInvalidState},
		{"fixed price", &Listing{SellerID: "seller", Price: 20, Status: ListingStatusActive}, "bidder", 50, errors.CodeInvalidState},
		{"zero amount", auctionListing(0, nil, time.Hour), "bidder", 0, errors.CodeBadRequest},
		{"negative amount", auctionListing(0, nil, time.Hour), "bidder", -5, errors.CodeBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.listing.CheckBid(tc.bidder, tc.amount, now)
			assert.True(t, errors.Is(err, tc.code), "got %v", err)
		})
	}

	sold := auctionListing(10, nil, time.Hour)
	sold.Status = ListingStatusSold
	assert.True(t, errors.Is(sold.CheckBid("bidder", 50, now), errors.CodeInvalidState))

	closed := auctionListing(10, nil, time.Hour)
	closed.AuctionClosed = true
	assert.True(t, errors.Is(closed.CheckBid("bidder", 50, now), errors.CodeInvalidState))
}

func TestApplyBidMovesProjection(t *testing.T) {
	l := auctionListing(100, nil, time.Hour)
	l.ApplyBid(&Bid{ID: "bid-1", BidderID: "bidder", Amount: 101}, time.Now())

	assert.Equal(t, 101.0, l.HighestBid())
	assert.Equal(t, "bid-1", l.CurrentBidID)
	assert.Equal(t, "bidder", l.CurrentBidderID)
	assert.True(t, l.HasBids())
	assert.Equal(t, 101.0, l.EffectivePrice())
}

func TestMatchesText(t *testing.T) {
	l := &Listing{
		Title:          "Early access spot",
		Description:    "Top 100 position",
		CompanyOrEvent: "Arc Browser",
		Tags:           []string{"browser", "mac"},
	}

	assert.True(t, l.MatchesText(""))
	assert.True(t, l.MatchesText("arc"))
	assert.True(t, l.MatchesText("MAC early"))
	assert.False(t, l.MatchesText("windows"))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"ai", "beta"}, NormalizeTags([]string{" AI", "beta", "", "ai "}))
}
