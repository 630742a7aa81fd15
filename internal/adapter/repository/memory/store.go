// Package memory is an in-process data backend used for local development and tests.
// A single store-wide mutex stands in for Firestore transactions.
package memory

import (
	"sync"

	"skipfurther/internal/domain/entity"
)

type Store struct {
	mu sync.Mutex

	profiles             map[string]*entity.Profile
	verificationRequests map[string]*entity.VerificationRequest
	listings             map[string]*entity.Listing
	images               map[string]*entity.ListingImage
	categories           map[string]*entity.Category
	bids                 map[string]*entity.Bid
	transactions         map[string]*entity.Transaction
	verifications        map[string]*entity.Verification
	reviews              map[string]*entity.Review
	notifications        map[string]*entity.Notification
	watchlist            map[string]*entity.WatchlistItem
}

func NewStore() *Store {
	return &Store{
		profiles:             make(map[string]*entity.Profile),
		verificationRequests: make(map[string]*entity.VerificationRequest),
		listings:             make(map[string]*entity.Listing),
		images:               make(map[string]*entity.ListingImage),
		categories:           make(map[string]*entity.Category),
		bids:                 make(map[string]*entity.Bid),
		transactions:         make(map[string]*entity.Transaction),
		verifications:        make(map[string]*entity.Verification),
		reviews:              make(map[string]*entity.Review),
		notifications:        make(map[string]*entity.Notification),
		watchlist:            make(map[string]*entity.WatchlistItem),
	}
}

// DefaultCategories seed a fresh development store.
func DefaultCategories() []*entity.Category {
	return []*entity.Category{
		{ID: "cat-tech", Name: "Tech Launches", Slug: "tech-launches"},
		{ID: "cat-events", Name: "Events", Slug: "events"},
		{ID: "cat-restaurants", Name: "Restaurants", Slug: "restaurants"},
		{ID: "cat-fashion", Name: "Fashion Drops", Slug: "fashion-drops"},
		{ID: "cat-other", Name: "Other", Slug: "other"},
	}
}

func (s *Store) SeedCategories(categories ...*entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		s.categories[c.ID] = clone(c)
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneListing(l *entity.Listing) *entity.Listing {
	c := clone(l)
	if c != nil && l.Tags != nil {
		c.Tags = append([]string(nil), l.Tags...)
	}
	return c
}
