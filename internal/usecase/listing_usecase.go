package usecase

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/internal/domain/service"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

// TopBidsLimit is how many bids a listing page shows.
const TopBidsLimit = 10

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	bidRepo     repository.BidRepository
	profileRepo repository.ProfileRepository
	storage     service.FileUploadService
	log         zerolog.Logger
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	bidRepo repository.BidRepository,
	profileRepo repository.ProfileRepository,
	storage service.FileUploadService,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		profileRepo: profileRepo,
		storage:     storage,
		log:         logger.With("listings"),
	}
}

type CreateListingInput struct {
	CategoryID          string
	Title               string
	Description         string
	CompanyOrEvent      string
	PositionNumber      *int
	EstimatedAccessDate *time.Time
	VerificationMethod  string
	Tags                []string
	IsAuction           bool
	Price               float64
	MinimumBid          float64
	AuctionEndTime      *time.Time
}

type ListingDetail struct {
	*entity.Listing
	Seller   *entity.PublicProfile   `json:"seller,omitempty"`
	Category *entity.Category        `json:"category,omitempty"`
	Images   []*entity.ListingImage  `json:"images"`
	Bids     []*entity.BidWithBidder `json:"bids,omitempty"`
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, sellerID string, input CreateListingInput) (*entity.Listing, error) {
	if !entity.ValidVerificationMethod(input.VerificationMethod) {
		return nil, errors.BadRequest("Invalid verification method", nil)
	}
	if _, err := uc.listingRepo.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.BadRequest("Category does not exist", err)
		}
		return nil, err
	}

	listing := &entity.Listing{
		SellerID:            sellerID,
		CategoryID:          input.CategoryID,
		Title:               strings.TrimSpace(input.Title),
		Description:         input.Description,
		CompanyOrEvent:      strings.TrimSpace(input.CompanyOrEvent),
		PositionNumber:      input.PositionNumber,
		EstimatedAccessDate: input.EstimatedAccessDate,
		VerificationMethod:  input.VerificationMethod,
		Tags:                entity.NormalizeTags(input.Tags),
		IsAuction:           input.IsAuction,
		Status:              entity.ListingStatusActive,
	}

	if input.IsAuction {
		if input.MinimumBid <= 0 {
			return nil, errors.BadRequest("Auctions need a minimum bid greater than zero", nil)
		}
		if input.AuctionEndTime == nil || !input.AuctionEndTime.After(time.Now()) {
			return nil, errors.BadRequest("Auction end time must be in the future", nil)
		}
		listing.MinimumBid = entity.RoundMoney(input.MinimumBid)
		listing.AuctionEndTime = input.AuctionEndTime
	} else {
		if input.Price <= 0 {
			return nil, errors.BadRequest("Price must be greater than zero", nil)
		}
		listing.Price = entity.RoundMoney(input.Price)
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id, viewerID string) (*ListingDetail, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == entity.ListingStatusDeleted && !listing.IsOwnedBy(viewerID) {
		return nil, errors.NotFound("Listing", nil)
	}

	detail := &ListingDetail{Listing: listing}

	if seller, err := uc.profileRepo.GetByID(ctx, listing.SellerID); err == nil {
		detail.Seller = seller.Public()
	}
	if category, err := uc.listingRepo.GetCategoryByID(ctx, listing.CategoryID); err == nil {
		detail.Category = category
	}

	images, err := uc.listingRepo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Images = images

	if listing.IsAuction {
		bids, err := uc.topBids(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Bids = bids
	}

	if !listing.IsOwnedBy(viewerID) {
		if err := uc.listingRepo.IncrementViews(ctx, id); err != nil {
			uc.log.Warn().Err(err).Str("listing_id", id).Msg("failed to count view")
		}
	}

	return detail, nil
}

func (uc *ListingUseCase) topBids(ctx context.Context, listingID string) ([]*entity.BidWithBidder, error) {
	bids, err := uc.bidRepo.ListTopByListing(ctx, listingID, TopBidsLimit)
	if err != nil {
		return nil, err
	}
	return joinBidders(ctx, uc.profileRepo, bids)
}

func joinBidders(ctx context.Context, profileRepo repository.ProfileRepository, bids []*entity.Bid) ([]*entity.BidWithBidder, error) {
	ids := make([]string, 0, len(bids))
	for _, b := range bids {
		ids = append(ids, b.BidderID)
	}

	profiles, err := profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.BidWithBidder, 0, len(bids))
	for _, b := range bids {
		out = append(out, &entity.BidWithBidder{Bid: b, Bidder: profiles[b.BidderID].Public()})
	}
	return out, nil
}

// UpdateListingInput carries only the fields being changed.
type UpdateListingInput struct {
	CategoryID          *string
	Title               *string
	Description         *string
	CompanyOrEvent      *string
	PositionNumber      *int
	EstimatedAccessDate *time.Time
	VerificationMethod  *string
	Tags                []string
	Price               *float64
	AuctionEndTime      *time.Time
}

func (uc *ListingUseCase) ownedListing(ctx context.Context, uid, id string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(listing, uid); err != nil {
		return nil, err
	}
	return listing, nil
}

func checkOwnership(listing *entity.Listing, uid string) error {
	if listing.Status == entity.ListingStatusDeleted {
		return errors.NotFound("Listing", nil)
	}
	if !listing.IsOwnedBy(uid) {
		return errors.Forbidden("You don't have permission to modify this listing", nil)
	}
	return nil
}

// UpdateListing applies a partial edit. Ownership and status are checked again
// inside the write against the stored listing.
func (uc *ListingUseCase) UpdateListing(ctx context.Context, uid, id string, input UpdateListingInput) (*entity.Listing, error) {
	current, err := uc.ownedListing(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil && *input.CategoryID != current.CategoryID {
		if _, err := uc.listingRepo.GetCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return nil, errors.BadRequest("Category does not exist", err)
			}
			return nil, err
		}
	}
	if input.VerificationMethod != nil && !entity.ValidVerificationMethod(*input.VerificationMethod) {
		return nil, errors.BadRequest("Invalid verification method", nil)
	}
	if input.Price != nil && *input.Price <= 0 {
		return nil, errors.BadRequest("Price must be greater than zero", nil)
	}
	if input.AuctionEndTime != nil && !input.AuctionEndTime.After(time.Now()) {
		return nil, errors.BadRequest("Auction end time must be in the future", nil)
	}

	return uc.listingRepo.Mutate(ctx, id, func(listing *entity.Listing) ([]repository.ListingField, error) {
		if err := checkOwnership(listing, uid); err != nil {
			return nil, err
		}
		if !listing.IsActive() {
			return nil, errors.InvalidState("Only active listings can be edited")
		}

		var changed []repository.ListingField
		if input.CategoryID != nil && *input.CategoryID != listing.CategoryID {
			listing.CategoryID = *input.CategoryID
			changed = append(changed, repository.ListingFieldCategory)
		}
		if input.VerificationMethod != nil {
			listing.VerificationMethod = *input.VerificationMethod
			changed = append(changed, repository.ListingFieldVerificationMethod)
		}
		if input.Title != nil {
			listing.Title = strings.TrimSpace(*input.Title)
			changed = append(changed, repository.ListingFieldTitle)
		}
		if input.Description != nil {
			listing.Description = *input.Description
			changed = append(changed, repository.ListingFieldDescription)
		}
		if input.CompanyOrEvent != nil {
			listing.CompanyOrEvent = strings.TrimSpace(*input.CompanyOrEvent)
			changed = append(changed, repository.ListingFieldCompanyOrEvent)
		}
		if input.PositionNumber != nil {
			position := *input.PositionNumber
			listing.PositionNumber = &position
			changed = append(changed, repository.ListingFieldPositionNumber)
		}
		if input.EstimatedAccessDate != nil {
			date := *input.EstimatedAccessDate
			listing.EstimatedAccessDate = &date
			changed = append(changed, repository.ListingFieldEstimatedAccessDate)
		}
		if input.Tags != nil {
			listing.Tags = entity.NormalizeTags(input.Tags)
			changed = append(changed, repository.ListingFieldTags)
		}

		if input.Price != nil {
			if listing.IsAuction {
				return nil, errors.BadRequest("Auction listings have no fixed price", nil)
			}
			listing.Price = entity.RoundMoney(*input.Price)
			changed = append(changed, repository.ListingFieldPrice)
		}
		if input.AuctionEndTime != nil {
			if !listing.IsAuction {
				return nil, errors.BadRequest("Only auctions have an end time", nil)
			}
			if listing.HasBids() {
				return nil, errors.InvalidState("Auction end time cannot change once bids exist")
			}
			end := *input.AuctionEndTime
			listing.AuctionEndTime = &end
			changed = append(changed, repository.ListingFieldAuctionEndTime)
		}

		return changed, nil
	})
}

// DeleteListing soft-deletes the listing.
func (uc *ListingUseCase) DeleteListing(ctx context.Context, uid, id string) error {
	_, err := uc.listingRepo.Mutate(ctx, id, func(listing *entity.Listing) ([]repository.ListingField, error) {
		if err := checkOwnership(listing, uid); err != nil {
			return nil, err
		}
		listing.Status = entity.ListingStatusDeleted
		return []repository.ListingField{repository.ListingFieldStatus}, nil
	})
	return err
}

type ListListingsInput struct {
	CategorySlug string
	MinPrice     *float64
	MaxPrice     *float64
	IsAuction    *bool
	Query        string
	SortBy       string
	SortDesc     bool
	Page         int
	Limit        int
}

// ListListings returns a page of active listings.
func (uc *ListingUseCase) ListListings(ctx context.Context, input ListListingsInput) ([]*entity.Listing, int64, error) {
	filter := repository.ListingFilter{
		Status:    entity.ListingStatusActive,
		IsAuction: input.IsAuction,
		MinPrice:  input.MinPrice,
		MaxPrice:  input.MaxPrice,
		Query:     input.Query,
		SortBy:    input.SortBy,
		SortDesc:  input.SortDesc,
		Limit:     input.Limit,
		Offset:    (input.Page - 1) * input.Limit,
	}

	if input.CategorySlug != "" {
		category, err := uc.listingRepo.GetCategoryBySlug(ctx, input.CategorySlug)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return []*entity.Listing{}, 0, nil
			}
			return nil, 0, err
		}
		filter.CategoryID = category.ID
	}

	return uc.listingRepo.Search(ctx, filter)
}

func (uc *ListingUseCase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	return uc.listingRepo.ListCategories(ctx)
}

func (uc *ListingUseCase) MyListings(ctx context.Context, uid, status string) ([]*entity.Listing, error) {
	return uc.listingRepo.ListBySeller(ctx, uid, status)
}

func (uc *ListingUseCase) AddImage(ctx context.Context, uid, listingID string, file io.Reader, contentType string, isPrimary bool) (*entity.ListingImage, error) {
	if _, err := uc.ownedListing(ctx, uid, listingID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.BadRequest("Only image files are allowed", nil)
	}

	url, err := uc.storage.UploadFile(ctx, file, contentType, path.Join(service.FolderListingImages, listingID), true)
	if err != nil {
		return nil, errors.Internal("Failed to upload image", err)
	}

	image := &entity.ListingImage{
		ListingID: listingID,
		URL:       url,
		IsPrimary: isPrimary,
	}
	if err := uc.listingRepo.AddImage(ctx, image); err != nil {
		if delErr := uc.storage.DeleteFile(ctx, url); delErr != nil {
			uc.log.Warn().Err(delErr).Str("url", url).Msg("failed to delete orphaned image")
		}
		return nil, err
	}

	return image, nil
}

func (uc *ListingUseCase) RemoveImage(ctx context.Context, uid, listingID, imageID string) error {
	if _, err := uc.ownedListing(ctx, uid, listingID); err != nil {
		return err
	}

	image, err := uc.listingRepo.RemoveImage(ctx, listingID, imageID)
	if err != nil {
		return err
	}

	if err := uc.storage.DeleteFile(ctx, image.URL); err != nil {
		uc.log.Warn().Err(err).Str("url", image.URL).Msg("failed to delete image object")
	}
	return nil
}
