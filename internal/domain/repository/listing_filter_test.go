package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"skipfurther/internal/domain/entity"
)

func sampleListings() []*entity.Listing {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bid := 300.0
	return []*entity.Listing{
		{ID: "a", Title: "Arc browser invite", Price: 50, Status: entity.ListingStatusActive, CreatedAt: base, ViewsCount: 9},
		{ID: "b", Title: "Concert presale spot", IsAuction: true, MinimumBid: 100, CurrentBid: &bid, Status: entity.ListingStatusActive, CreatedAt: base.Add(time.Hour), ViewsCount: 2},
		{ID: "c", Title: "Robotaxi waitlist", Price: 120, Status: entity.ListingStatusActive, CreatedAt: base.Add(2 * time.Hour), Tags: []string{"browser"}},
	}
}

func ids(listings []*entity.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestApplyPriceRangeUsesEffectivePrice(t *testing.T) {
	lo, hi := 100.0, 400.0
	got, total := ListingFilter{MinPrice: &lo, MaxPrice: &hi, SortBy: SortPrice}.Apply(sampleListings())

	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"c", "b"}, ids(got))
}

func TestApplyTextSearch(t *testing.T) {
	got, total := ListingFilter{Query: "browser", SortBy: SortCreatedAt, SortDesc: true}.Apply(sampleListings())

	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"c", "a"}, ids(got))
}

func TestApplyPaginates(t *testing.T) {
	got, total := ListingFilter{SortBy: SortViewsCount, SortDesc: true, Limit: 2, Offset: 1}.Apply(sampleListings())

	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"b", "c"}, ids(got))
}

func TestMatchesEquality(t *testing.T) {
	auction := true
	f := ListingFilter{Status: entity.ListingStatusActive, IsAuction: &auction}

	listings := sampleListings()
	assert.False(t, f.MatchesEquality(listings[0]))
	assert.True(t, f.MatchesEquality(listings[1]))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Page(items, 2, 2))
	assert.Equal(t, []int{}, Page(items, 2, 10))
	assert.Equal(t, items, Page(items, 0, 0))
}
