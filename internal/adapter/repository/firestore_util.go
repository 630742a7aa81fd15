package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	profilesCollection             = "profiles"
	verificationRequestsCollection = "verification_requests"
	listingsCollection             = "listings"
	listingImagesCollection        = "listing_images"
	categoriesCollection           = "categories"
	bidsCollection                 = "bids"
	transactionsCollection         = "transactions"
	verificationsCollection        = "transaction_verifications"
	reviewsCollection              = "reviews"
	notificationsCollection        = "notifications"
	watchlistsCollection           = "watchlists"
)

// Firestore caps the number of documents fetched by a single GetAll call.
const getAllBatchSize = 100

func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func decodeAll[T any](docs []*firestore.DocumentSnapshot) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		if doc == nil || !doc.Exists() {
			continue
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// countQuery counts the documents matching query with a server-side aggregation.
func countQuery(ctx context.Context, query firestore.Query) (int64, error) {
	result, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := result["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", result["total"])
	}
	return v.GetIntegerValue(), nil
}
