package entity

import (
	"strings"
	"time"

	"skipfurther/pkg/errors"
)

const (
	ListingStatusActive  = "active"
	ListingStatusSold    = "sold"
	ListingStatusDeleted = "deleted"
)

const (
	VerificationMethodScreenshot    = "screenshot"
	VerificationMethodInviteCode    = "invite_code"
	VerificationMethodEmailTransfer = "email_transfer"
)

type Listing struct {
	ID                  string     `json:"id" firestore:"id"`
	SellerID            string     `json:"seller_id" firestore:"sellerId"`
	CategoryID          string     `json:"category_id" firestore:"categoryId"`
	Title               string     `json:"title" firestore:"title"`
	Description         string     `json:"description" firestore:"description"`
	CompanyOrEvent      string     `json:"company_or_event" firestore:"companyOrEvent"`
	PositionNumber      *int       `json:"position_number,omitempty" firestore:"positionNumber,omitempty"`
	EstimatedAccessDate *time.Time `json:"estimated_access_date,omitempty" firestore:"estimatedAccessDate,omitempty"`
	VerificationMethod  string     `json:"verification_method" firestore:"verificationMethod"`
	Tags                []string   `json:"tags" firestore:"tags"`

	IsAuction bool    `json:"is_auction" firestore:"isAuction"`
	Price     float64 `json:"price,omitempty" firestore:"price"`

	MinimumBid      float64    `json:"minimum_bid,omitempty" firestore:"minimumBid"`
	CurrentBid      *float64   `json:"current_bid,omitempty" firestore:"currentBid"`
	CurrentBidID    string     `json:"current_bid_id,omitempty" firestore:"currentBidId"`
	CurrentBidderID string     `json:"current_bidder_id,omitempty" firestore:"currentBidderId"`
	AuctionEndTime  *time.Time `json:"auction_end_time,omitempty" firestore:"auctionEndTime"`
	AuctionClosed   bool       `json:"auction_closed" firestore:"auctionClosed"`

	Status     string    `json:"status" firestore:"status"`
	ViewsCount int64     `json:"views_count" firestore:"viewsCount"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}

type ListingImage struct {
	ID        string    `json:"id" firestore:"id"`
	ListingID string    `json:"listing_id" firestore:"listingId"`
	URL       string    `json:"url" firestore:"url"`
	IsPrimary bool      `json:"is_primary" firestore:"isPrimary"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

type Category struct {
	ID   string `json:"id" firestore:"id"`
	Name string `json:"name" firestore:"name"`
	Slug string `json:"slug" firestore:"slug"`
}

// ListingSummary is the slice of a listing embedded in bids, transactions and watchlist items.
type ListingSummary struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	CompanyOrEvent string     `json:"company_or_event"`
	SellerID       string     `json:"seller_id"`
	IsAuction      bool       `json:"is_auction"`
	Price          float64    `json:"price,omitempty"`
	CurrentBid     *float64   `json:"current_bid,omitempty"`
	AuctionEndTime *time.Time `json:"auction_end_time,omitempty"`
	Status         string     `json:"status"`
}

func ValidVerificationMethod(method string) bool {
	switch method {
	case VerificationMethodScreenshot, VerificationMethodInviteCode, VerificationMethodEmailTransfer:
		return true
	}
	return false
}

func (l *Listing) IsOwnedBy(userID string) bool {
	return l.SellerID == userID
}

func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// HighestBid is the amount the next bid has to beat.
func (l *Listing) HighestBid() float64 {
	if l.CurrentBid != nil && *l.CurrentBid > l.MinimumBid {
		return *l.CurrentBid
	}
	return l.MinimumBid
}

// EffectivePrice is the fixed price, or the amount currently leading an auction.
func (l *Listing) EffectivePrice() float64 {
	if l.IsAuction {
		return l.HighestBid()
	}
	return l.Price
}

func (l *Listing) AuctionEnded(now time.Time) bool {
	return l.AuctionClosed || (l.AuctionEndTime != nil && now.After(*l.AuctionEndTime))
}

func (l *Listing) HasBids() bool {
	return l.CurrentBidID != ""
}

// CheckBid validates a bid of amount by bidderID against the listing as it is now.
func (l *Listing) CheckBid(bidderID string, amount float64, now time.Time) error {
	if !l.IsAuction {
		return errors.InvalidState("This listing is not an auction")
	}
	if !l.IsActive() {
		return errors.InvalidState("This listing is no longer active")
	}
	if l.IsOwnedBy(bidderID) {
		return errors.Forbidden("You cannot bid on your own listing", nil)
	}
	if l.AuctionEnded(now) {
		return errors.InvalidState("This auction has ended")
	}
	if amount <= 0 {
		return errors.BadRequest("Invalid bid amount", nil)
	}
	if !MoneyGreater(amount, l.HighestBid()) {
		return errors.BadRequest("Bid must be higher than the current bid", nil)
	}
	return nil
}

// ApplyBid moves the highest-bid projection to bid.
func (l *Listing) ApplyBid(bid *Bid, now time.Time) {
	amount := bid.Amount
	l.CurrentBid = &amount
	l.CurrentBidID = bid.ID
	l.CurrentBidderID = bid.BidderID
	l.UpdatedAt = now
}

func (l *Listing) Summary() *ListingSummary {
	return &ListingSummary{
		ID:             l.ID,
		Title:          l.Title,
		CompanyOrEvent: l.CompanyOrEvent,
		SellerID:       l.SellerID,
		IsAuction:      l.IsAuction,
		Price:          l.Price,
		CurrentBid:     l.CurrentBid,
		AuctionEndTime: l.AuctionEndTime,
		Status:         l.Status,
	}
}

// MatchesText reports whether every word of q appears in the listing's searchable text.
func (l *Listing) MatchesText(q string) bool {
	q = strings.TrimSpace(strings.ToLower(q))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join(append([]string{l.Title, l.Description, l.CompanyOrEvent}, l.Tags...), " "))
	for _, word := range strings.Fields(q) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}

// NormalizeTags trims, lowercases and deduplicates tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
