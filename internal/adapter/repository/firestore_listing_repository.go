package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type firestoreListingRepository struct {
	client *firestore.Client
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client: client,
	}
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := r.client.Collection(listingsCollection).Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.client.Collection(listingsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}

	return &listing, nil
}

func (r *firestoreListingRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Listing, error) {
	ids = uniqueIDs(ids)
	result := make(map[string]*entity.Listing, len(ids))

	for i := 0; i < len(ids); i += getAllBatchSize {
		end := i + getAllBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		refs := make([]*firestore.DocumentRef, 0, end-i)
		for _, id := range ids[i:end] {
			refs = append(refs, r.client.Collection(listingsCollection).Doc(id))
		}

		docs, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, errors.Internal("Failed to get listings", err)
		}

		listings, err := decodeAll[entity.Listing](docs)
		if err != nil {
			return nil, errors.Internal("Failed to parse listing data", err)
		}
		for _, l := range listings {
			result[l.ID] = l
		}
	}

	return result, nil
}

func (r *firestoreListingRepository) Mutate(ctx context.Context, id string, fn repository.MutateListingFunc) (*entity.Listing, error) {
	ref := r.client.Collection(listingsCollection).Doc(id)

	var result *entity.Listing
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = nil

		doc, err := tx.Get(ref)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Listing", err)
			}
			return err
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return err
		}

		changed, err := fn(&listing)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			result = &listing
			return nil
		}

		listing.UpdatedAt = time.Now()
		if err := tx.Update(ref, listingUpdates(&listing, changed)); err != nil {
			return err
		}

		result = &listing
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to update listing", err)
	}

	return result, nil
}

// listingUpdates maps changed fields to their document paths. updatedAt is always written.
func listingUpdates(l *entity.Listing, fields []repository.ListingField) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for _, f := range fields {
		switch f {
		case repository.ListingFieldCategory:
			updates = append(updates, firestore.Update{Path: "categoryId", Value: l.CategoryID})
		case repository.ListingFieldTitle:
			updates = append(updates, firestore.Update{Path: "title", Value: l.Title})
		case repository.ListingFieldDescription:
			updates = append(updates, firestore.Update{Path: "description", Value: l.Description})
		case repository.ListingFieldCompanyOrEvent:
			updates = append(updates, firestore.Update{Path: "companyOrEvent", Value: l.CompanyOrEvent})
		case repository.ListingFieldPositionNumber:
			updates = append(updates, firestore.Update{Path: "positionNumber", Value: l.PositionNumber})
		case repository.ListingFieldEstimatedAccessDate:
			updates = append(updates, firestore.Update{Path: "estimatedAccessDate", Value: l.EstimatedAccessDate})
		case repository.ListingFieldVerificationMethod:
			updates = append(updates, firestore.Update{Path: "verificationMethod", Value: l.VerificationMethod})
		case repository.ListingFieldTags:
			updates = append(updates, firestore.Update{Path: "tags", Value: l.Tags})
		case repository.ListingFieldPrice:
			updates = append(updates, firestore.Update{Path: "price", Value: l.Price})
		case repository.ListingFieldAuctionEndTime:
			updates = append(updates, firestore.Update{Path: "auctionEndTime", Value: l.AuctionEndTime})
		case repository.ListingFieldStatus:
			updates = append(updates, firestore.Update{Path: "status", Value: l.Status})
		}
	}
	return append(updates, firestore.Update{Path: "updatedAt", Value: l.UpdatedAt})
}

func (r *firestoreListingRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.client.Collection(listingsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "viewsCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Listing", err)
		}
		return errors.Internal("Failed to increment views", err)
	}

	return nil
}

// Search pushes equality filters down to Firestore and applies price, text,
// sort and paging in memory so that no composite index is needed per sort order.
func (r *firestoreListingRepository) Search(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, int64, error) {
	query := r.client.Collection(listingsCollection).Query
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	if filter.SellerID != "" {
		query = query.Where("sellerId", "==", filter.SellerID)
	}
	if filter.CategoryID != "" {
		query = query.Where("categoryId", "==", filter.CategoryID)
	}
	if filter.IsAuction != nil {
		query = query.Where("isAuction", "==", *filter.IsAuction)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to search listings", err)
	}

	listings, err := decodeAll[entity.Listing](docs)
	if err != nil {
		return nil, 0, errors.Internal("Failed to parse listing data", err)
	}

	items, total := filter.Apply(listings)
	return items, total, nil
}

func (r *firestoreListingRepository) ListBySeller(ctx context.Context, sellerID, status string) ([]*entity.Listing, error) {
	items, _, err := r.Search(ctx, repository.ListingFilter{
		SellerID: sellerID,
		Status:   status,
		SortBy:   repository.SortCreatedAt,
		SortDesc: true,
	})
	return items, err
}

func (r *firestoreListingRepository) ListEndedAuctions(ctx context.Context, now time.Time, limit int) ([]*entity.Listing, error) {
	docs, err := r.client.Collection(listingsCollection).
		Where("isAuction", "==", true).
		Where("status", "==", entity.ListingStatusActive).
		Where("auctionClosed", "==", false).
		Where("auctionEndTime", "<=", now).
		OrderBy("auctionEndTime", firestore.Asc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list ended auctions", err)
	}

	listings, err := decodeAll[entity.Listing](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}

	return listings, nil
}

func (r *firestoreListingRepository) AddImage(ctx context.Context, image *entity.ListingImage) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	image.CreatedAt = time.Now()

	images := r.client.Collection(listingImagesCollection)
	siblings := images.Where("listingId", "==", image.ListingID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(siblings).GetAll()
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			image.IsPrimary = true
		}

		if image.IsPrimary {
			for _, doc := range docs {
				if primary, _ := doc.DataAt("isPrimary"); primary == true {
					if err := tx.Update(doc.Ref, []firestore.Update{{Path: "isPrimary", Value: false}}); err != nil {
						return err
					}
				}
			}
		}

		return tx.Create(images.Doc(image.ID), image)
	})
	if err != nil {
		return errors.Internal("Failed to add listing image", err)
	}

	return nil
}

func (r *firestoreListingRepository) ListImages(ctx context.Context, listingID string) ([]*entity.ListingImage, error) {
	docs, err := r.client.Collection(listingImagesCollection).Where("listingId", "==", listingID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list listing images", err)
	}

	images, err := decodeAll[entity.ListingImage](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse listing image data", err)
	}

	sortImages(images)
	return images, nil
}

func (r *firestoreListingRepository) RemoveImage(ctx context.Context, listingID, imageID string) (*entity.ListingImage, error) {
	images := r.client.Collection(listingImagesCollection)
	imageRef := images.Doc(imageID)

	var removed *entity.ListingImage
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(imageRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Image", err)
			}
			return err
		}

		var image entity.ListingImage
		if err := doc.DataTo(&image); err != nil {
			return err
		}
		if image.ListingID != listingID {
			return errors.NotFound("Image", nil)
		}

		var promote *firestore.DocumentRef
		if image.IsPrimary {
			docs, err := tx.Documents(images.Where("listingId", "==", listingID)).GetAll()
			if err != nil {
				return err
			}
			others, err := decodeAll[entity.ListingImage](docs)
			if err != nil {
				return err
			}
			sortImages(others)
			for _, other := range others {
				if other.ID != imageID {
					promote = images.Doc(other.ID)
					break
				}
			}
		}

		if err := tx.Delete(imageRef); err != nil {
			return err
		}
		if promote != nil {
			if err := tx.Update(promote, []firestore.Update{{Path: "isPrimary", Value: true}}); err != nil {
				return err
			}
		}

		removed = &image
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to remove listing image", err)
	}

	return removed, nil
}

func (r *firestoreListingRepository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	docs, err := r.client.Collection(categoriesCollection).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list categories", err)
	}

	categories, err := decodeAll[entity.Category](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse category data", err)
	}

	return categories, nil
}

func (r *firestoreListingRepository) GetCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	doc, err := r.client.Collection(categoriesCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Category", err)
		}
		return nil, errors.Internal("Failed to get category", err)
	}

	var category entity.Category
	if err := doc.DataTo(&category); err != nil {
		return nil, errors.Internal("Failed to parse category data", err)
	}

	return &category, nil
}

func (r *firestoreListingRepository) GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	iter := r.client.Collection(categoriesCollection).Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Category", nil)
		}
		return nil, errors.Internal("Failed to query category", err)
	}

	var category entity.Category
	if err := doc.DataTo(&category); err != nil {
		return nil, errors.Internal("Failed to parse category data", err)
	}

	return &category, nil
}

// sortImages puts the primary image first, then oldest first.
func sortImages(images []*entity.ListingImage) {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].IsPrimary != images[j].IsPrimary {
			return images[i].IsPrimary
		}
		return images[i].CreatedAt.Before(images[j].CreatedAt)
	})
}
