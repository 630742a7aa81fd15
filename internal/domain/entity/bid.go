package entity

import (
	"time"
)

const (
	BidStatusActive    = "active"
	BidStatusOutbid    = "outbid"
	BidStatusWon       = "won"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
	BidStatusWithdrawn = "withdrawn"
)

type Bid struct {
	ID        string    `json:"id" firestore:"id"`
	ListingID string    `json:"listing_id" firestore:"listingId"`
	BidderID  string    `json:"bidder_id" firestore:"bidderId"`
	Amount    float64   `json:"amount" firestore:"amount"`
	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

type BidWithBidder struct {
	*Bid
	Bidder *PublicProfile `json:"bidder"`
}

type BidWithListing struct {
	*Bid
	Listing *ListingSummary `json:"listing"`
}

func ValidBidStatus(status string) bool {
	switch status {
	case BidStatusActive, BidStatusOutbid, BidStatusWon, BidStatusAccepted, BidStatusRejected, BidStatusWithdrawn:
		return true
	}
	return false
}

// Usable reports whether the bid can still back a transaction.
func (b *Bid) Usable() bool {
	return b.Status != BidStatusRejected && b.Status != BidStatusWithdrawn
}
