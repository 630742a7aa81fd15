package repository

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type firestoreTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreTransactionRepository(client *firestore.Client) repository.TransactionRepository {
	return &firestoreTransactionRepository{
		client: client,
	}
}

func (r *firestoreTransactionRepository) Open(ctx context.Context, listingID, bidID string, fn repository.OpenTransactionFunc) (*entity.Transaction, error) {
	listingRef := r.client.Collection(listingsCollection).Doc(listingID)
	bids := r.client.Collection(bidsCollection)
	transactions := r.client.Collection(transactionsCollection)

	var opened *entity.Transaction
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		opened = nil

		var listing *entity.Listing
		doc, err := tx.Get(listingRef)
		if err != nil && !IsNotFound(err) {
			return err
		}
		if err == nil {
			var l entity.Listing
			if err := doc.DataTo(&l); err != nil {
				return err
			}
			listing = &l
		}

		var bid *entity.Bid
		if bidID != "" {
			bidDoc, err := tx.Get(bids.Doc(bidID))
			if err != nil {
				if IsNotFound(err) {
					return errors.NotFound("Bid", err)
				}
				return err
			}
			var b entity.Bid
			if err := bidDoc.DataTo(&b); err != nil {
				return err
			}
			bid = &b
		}

		txn, err := fn(listing, bid)
		if err != nil {
			return err
		}

		txn.ID = uuid.New().String()
		if err := tx.Create(transactions.Doc(txn.ID), txn); err != nil {
			return err
		}

		listing.Status = entity.ListingStatusSold
		listing.AuctionClosed = listing.IsAuction
		listing.UpdatedAt = txn.CreatedAt
		if err := tx.Set(listingRef, listing); err != nil {
			return err
		}

		if bid != nil {
			if err := tx.Update(bids.Doc(bid.ID), []firestore.Update{
				{Path: "status", Value: entity.BidStatusAccepted},
				{Path: "updatedAt", Value: txn.CreatedAt},
			}); err != nil {
				return err
			}
		}

		opened = txn
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to create transaction", err)
	}

	return opened, nil
}

func (r *firestoreTransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	doc, err := r.client.Collection(transactionsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Transaction", err)
		}
		return nil, errors.Internal("Failed to get transaction", err)
	}

	var transaction entity.Transaction
	if err := doc.DataTo(&transaction); err != nil {
		return nil, errors.Internal("Failed to parse transaction data", err)
	}

	return &transaction, nil
}

func (r *firestoreTransactionRepository) Mutate(ctx context.Context, id string, fn repository.MutateTransactionFunc) (*entity.Transaction, *repository.TransactionMutation, error) {
	txnRef := r.client.Collection(transactionsCollection).Doc(id)
	verifications := r.client.Collection(verificationsCollection)
	profiles := r.client.Collection(profilesCollection)

	var (
		result   *entity.Transaction
		mutation *repository.TransactionMutation
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result, mutation = nil, nil

		doc, err := tx.Get(txnRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Transaction", err)
			}
			return err
		}

		var txn entity.Transaction
		if err := doc.DataTo(&txn); err != nil {
			return err
		}

		verDocs, err := tx.Documents(verifications.Where("transactionId", "==", id)).GetAll()
		if err != nil {
			return err
		}
		existing, err := decodeAll[entity.Verification](verDocs)
		if err != nil {
			return err
		}

		m, err := fn(&txn, existing)
		if err != nil {
			return err
		}
		if m == nil {
			m = &repository.TransactionMutation{}
		}

		if err := tx.Set(txnRef, &txn); err != nil {
			return err
		}

		if v := m.Verification; v != nil {
			v.ID = uuid.New().String()
			v.TransactionID = txn.ID
			if err := tx.Create(verifications.Doc(v.ID), v); err != nil {
				return err
			}
		}

		for _, vid := range m.ConfirmVerificationIDs {
			if err := tx.Update(verifications.Doc(vid), []firestore.Update{
				{Path: "status", Value: entity.VerificationStatusConfirmed},
			}); err != nil {
				return err
			}
		}

		if m.AwardReputation {
			for _, userID := range []string{txn.BuyerID, txn.SellerID} {
				if err := tx.Set(profiles.Doc(userID), map[string]interface{}{
					"reputation": firestore.Increment(entity.ReputationPerCompletion),
					"updatedAt":  txn.UpdatedAt,
				}, firestore.MergeAll); err != nil {
					return err
				}
			}
		}

		result, mutation = &txn, m
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, nil, err
		}
		return nil, nil, errors.Internal("Failed to update transaction", err)
	}

	return result, mutation, nil
}

// ListByUser pages each role query in Firestore, ordered by createdAt. With both
// roles it fetches the first offset+limit of each side and merges them.
func (r *firestoreTransactionRepository) ListByUser(ctx context.Context, userID string, filter repository.TransactionFilter) ([]*entity.Transaction, int64, error) {
	var fields []string
	switch filter.Role {
	case repository.RoleBuyer:
		fields = []string{"buyerId"}
	case repository.RoleSeller:
		fields = []string{"sellerId"}
	default:
		fields = []string{"buyerId", "sellerId"}
	}

	if len(fields) == 1 {
		query := r.roleQuery(fields[0], userID, filter.Status)
		total, err := countQuery(ctx, query)
		if err != nil {
			return nil, 0, errors.Internal("Failed to count transactions", err)
		}

		query = query.OrderBy("createdAt", firestore.Desc)
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		txns, err := r.fetch(ctx, query)
		if err != nil {
			return nil, 0, err
		}
		return txns, total, nil
	}

	var (
		total int64
		sides [][]*entity.Transaction
	)
	for _, field := range fields {
		query := r.roleQuery(field, userID, filter.Status)
		count, err := countQuery(ctx, query)
		if err != nil {
			return nil, 0, errors.Internal("Failed to count transactions", err)
		}
		total += count

		query = query.OrderBy("createdAt", firestore.Desc)
		if filter.Limit > 0 {
			query = query.Limit(filter.Offset + filter.Limit)
		}
		txns, err := r.fetch(ctx, query)
		if err != nil {
			return nil, 0, err
		}
		sides = append(sides, txns)
	}

	return mergeNewestFirst(sides, filter.Limit, filter.Offset), total, nil
}

// mergeNewestFirst merges per-role pages, each already newest first, and pages the result.
func mergeNewestFirst(sides [][]*entity.Transaction, limit, offset int) []*entity.Transaction {
	seen := make(map[string]bool)
	var merged []*entity.Transaction
	for _, txns := range sides {
		for _, txn := range txns {
			if !seen[txn.ID] {
				seen[txn.ID] = true
				merged = append(merged, txn)
			}
		}
	}

	repository.SortTransactions(merged)
	return repository.Page(merged, limit, offset)
}

func (r *firestoreTransactionRepository) roleQuery(field, userID, status string) firestore.Query {
	query := r.client.Collection(transactionsCollection).Where(field, "==", userID)
	if status != "" {
		query = query.Where("status", "==", status)
	}
	return query
}

func (r *firestoreTransactionRepository) fetch(ctx context.Context, query firestore.Query) ([]*entity.Transaction, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list transactions", err)
	}

	txns, err := decodeAll[entity.Transaction](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse transaction data", err)
	}
	return txns, nil
}

func (r *firestoreTransactionRepository) ListVerifications(ctx context.Context, transactionID string) ([]*entity.Verification, error) {
	docs, err := r.client.Collection(verificationsCollection).
		Where("transactionId", "==", transactionID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list verifications", err)
	}

	verifications, err := decodeAll[entity.Verification](docs)
	if err != nil {
		return nil, errors.Internal("Failed to parse verification data", err)
	}

	sort.SliceStable(verifications, func(i, j int) bool {
		return verifications[i].CreatedAt.Before(verifications[j].CreatedAt)
	})
	return verifications, nil
}
