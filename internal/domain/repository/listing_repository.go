package repository

import (
	"context"
	"time"

	"skipfurther/internal/domain/entity"
)

// ListingField is a listing attribute that can be written on its own.
type ListingField string

const (
	ListingFieldCategory            ListingField = "category_id"
	ListingFieldTitle               ListingField = "title"
	ListingFieldDescription         ListingField = "description"
	ListingFieldCompanyOrEvent      ListingField = "company_or_event"
	ListingFieldPositionNumber      ListingField = "position_number"
	ListingFieldEstimatedAccessDate ListingField = "estimated_access_date"
	ListingFieldVerificationMethod  ListingField = "verification_method"
	ListingFieldTags                ListingField = "tags"
	ListingFieldPrice               ListingField = "price"
	ListingFieldAuctionEndTime      ListingField = "auction_end_time"
	ListingFieldStatus              ListingField = "status"
)

// MutateListingFunc edits listing in place and reports which fields it changed.
type MutateListingFunc func(listing *entity.Listing) ([]ListingField, error)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Listing, error)
	// Mutate runs fn against the stored listing in one datastore transaction
	// and writes back only the fields fn reports.
	Mutate(ctx context.Context, id string, fn MutateListingFunc) (*entity.Listing, error)
	IncrementViews(ctx context.Context, id string) error

	Search(ctx context.Context, filter ListingFilter) ([]*entity.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerID, status string) ([]*entity.Listing, error)
	// ListEndedAuctions returns active auctions past their end time that have not been closed yet.
	ListEndedAuctions(ctx context.Context, now time.Time, limit int) ([]*entity.Listing, error)

	// AddImage stores the image. A primary image demotes every other image of the listing.
	AddImage(ctx context.Context, image *entity.ListingImage) error
	ListImages(ctx context.Context, listingID string) ([]*entity.ListingImage, error)
	// RemoveImage deletes the image and promotes another one when the primary was removed.
	RemoveImage(ctx context.Context, listingID, imageID string) (*entity.ListingImage, error)

	ListCategories(ctx context.Context) ([]*entity.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*entity.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error)
}
