package repository

import (
	"sort"

	"skipfurther/internal/domain/entity"
)

const (
	SortCreatedAt      = "created_at"
	SortPrice          = "price"
	SortCurrentBid     = "current_bid"
	SortAuctionEndTime = "auction_end_time"
	SortViewsCount     = "views_count"
)

// ListingSortFields are the fields a listing search can be ordered by.
var ListingSortFields = []string{SortCreatedAt, SortPrice, SortCurrentBid, SortAuctionEndTime, SortViewsCount}

type ListingFilter struct {
	// Equality filters, applied by the store.
	Status     string
	SellerID   string
	CategoryID string
	IsAuction  *bool

	// Range and text filters.
	MinPrice *float64
	MaxPrice *float64
	Query    string

	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// Matches applies the range and text filters.
func (f ListingFilter) Matches(l *entity.Listing) bool {
	price := l.EffectivePrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	return l.MatchesText(f.Query)
}

// MatchesEquality applies the equality filters. Stores that cannot push them down use it.
func (f ListingFilter) MatchesEquality(l *entity.Listing) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.SellerID != "" && l.SellerID != f.SellerID {
		return false
	}
	if f.CategoryID != "" && l.CategoryID != f.CategoryID {
		return false
	}
	if f.IsAuction != nil && l.IsAuction != *f.IsAuction {
		return false
	}
	return true
}

// Apply filters, sorts and pages listings the store has already narrowed by equality.
func (f ListingFilter) Apply(listings []*entity.Listing) ([]*entity.Listing, int64) {
	matched := make([]*entity.Listing, 0, len(listings))
	for _, l := range listings {
		if f.Matches(l) {
			matched = append(matched, l)
		}
	}

	SortListings(matched, f.SortBy, f.SortDesc)
	return Page(matched, f.Limit, f.Offset), int64(len(matched))
}

// SortListings orders listings in place, breaking ties by newest first.
func SortListings(listings []*entity.Listing, field string, desc bool) {
	key := func(l *entity.Listing) float64 {
		switch field {
		case SortPrice:
			return l.EffectivePrice()
		case SortCurrentBid:
			if l.CurrentBid != nil {
				return *l.CurrentBid
			}
			return 0
		case SortAuctionEndTime:
			if l.AuctionEndTime != nil {
				return float64(l.AuctionEndTime.UnixNano())
			}
			return 0
		case SortViewsCount:
			return float64(l.ViewsCount)
		default:
			return float64(l.CreatedAt.UnixNano())
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		a, b := key(listings[i]), key(listings[j])
		if a == b {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

// Page returns the window [offset, offset+limit). A non-positive limit means no limit.
func Page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
