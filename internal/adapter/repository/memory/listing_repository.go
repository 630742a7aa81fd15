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

type listingRepository struct {
	s *Store
}

func NewListingRepository(s *Store) repository.ListingRepository {
	return &listingRepository{s: s}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	r.s.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return cloneListing(l), nil
}

func (r *listingRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string]*entity.Listing, len(ids))
	for _, id := range ids {
		if l, ok := r.s.listings[id]; ok {
			out[id] = cloneListing(l)
		}
	}
	return out, nil
}

func (r *listingRepository) Mutate(ctx context.Context, id string, fn repository.MutateListingFunc) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}

	listing := cloneListing(stored)
	changed, err := fn(listing)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return cloneListing(stored), nil
	}

	listing.UpdatedAt = time.Now()
	r.s.listings[id] = cloneListing(listing)
	return listing, nil
}

func (r *listingRepository) IncrementViews(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	l.ViewsCount++
	return nil
}

func (r *listingRepository) Search(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, int64, error) {
	r.s.mu.Lock()
	candidates := make([]*entity.Listing, 0, len(r.s.listings))
	for _, l := range r.s.listings {
		if filter.MatchesEquality(l) {
			candidates = append(candidates, cloneListing(l))
		}
	}
	r.s.mu.Unlock()

	items, total := filter.Apply(candidates)
	return items, total, nil
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerID, status string) ([]*entity.Listing, error) {
	items, _, err := r.Search(ctx, repository.ListingFilter{
		SellerID: sellerID,
		Status:   status,
		SortBy:   repository.SortCreatedAt,
		SortDesc: true,
	})
	return items, err
}

func (r *listingRepository) ListEndedAuctions(ctx context.Context, now time.Time, limit int) ([]*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Listing
	for _, l := range r.s.listings {
		if l.IsAuction && l.IsActive() && !l.AuctionClosed && l.AuctionEndTime != nil && !l.AuctionEndTime.After(now) {
			out = append(out, cloneListing(l))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AuctionEndTime.Before(*out[j].AuctionEndTime)
	})
	return repository.Page(out, limit, 0), nil
}

func (r *listingRepository) AddImage(ctx context.Context, image *entity.ListingImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	image.CreatedAt = time.Now()

	hasSiblings := false
	for _, other := range r.s.images {
		if other.ListingID != image.ListingID {
			continue
		}
		hasSiblings = true
		if image.IsPrimary {
			other.IsPrimary = false
		}
	}
	if !hasSiblings {
		image.IsPrimary = true
	}

	r.s.images[image.ID] = clone(image)
	return nil
}

func (r *listingRepository) ListImages(ctx context.Context, listingID string) ([]*entity.ListingImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.imagesOf(listingID), nil
}

func (r *listingRepository) imagesOf(listingID string) []*entity.ListingImage {
	var out []*entity.ListingImage
	for _, img := range r.s.images {
		if img.ListingID == listingID {
			out = append(out, clone(img))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *listingRepository) RemoveImage(ctx context.Context, listingID, imageID string) (*entity.ListingImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	img, ok := r.s.images[imageID]
	if !ok || img.ListingID != listingID {
		return nil, errors.NotFound("Image", nil)
	}
	delete(r.s.images, imageID)

	if img.IsPrimary {
		if rest := r.imagesOf(listingID); len(rest) > 0 {
			r.s.images[rest[0].ID].IsPrimary = true
		}
	}
	return clone(img), nil
}

func (r *listingRepository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *listingRepository) GetCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, errors.NotFound("Category", nil)
	}
	return clone(c), nil
}

func (r *listingRepository) GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			return clone(c), nil
		}
	}
	return nil, errors.NotFound("Category", nil)
}
