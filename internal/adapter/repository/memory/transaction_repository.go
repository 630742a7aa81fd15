package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
)

type transactionRepository struct {
	s *Store
}

func NewTransactionRepository(s *Store) repository.TransactionRepository {
	return &transactionRepository{s: s}
}

func (r *transactionRepository) Open(ctx context.Context, listingID, bidID string, fn repository.OpenTransactionFunc) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	listing := cloneListing(r.s.listings[listingID])

	var bid *entity.Bid
	if bidID != "" {
		b, ok := r.s.bids[bidID]
		if !ok {
			return nil, errors.NotFound("Bid", nil)
		}
		bid = clone(b)
	}

	txn, err := fn(listing, bid)
	if err != nil {
		return nil, err
	}

	txn.ID = uuid.New().String()
	r.s.transactions[txn.ID] = clone(txn)

	listing.Status = entity.ListingStatusSold
	listing.AuctionClosed = listing.IsAuction
	listing.UpdatedAt = txn.CreatedAt
	r.s.listings[listing.ID] = listing

	if bid != nil {
		stored := r.s.bids[bid.ID]
		stored.Status = entity.BidStatusAccepted
		stored.UpdatedAt = txn.CreatedAt
	}

	return txn, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return nil, errors.NotFound("Transaction", nil)
	}
	return clone(t), nil
}

func (r *transactionRepository) Mutate(ctx context.Context, id string, fn repository.MutateTransactionFunc) (*entity.Transaction, *repository.TransactionMutation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.transactions[id]
	if !ok {
		return nil, nil, errors.NotFound("Transaction", nil)
	}
	txn := clone(stored)

	m, err := fn(txn, r.verificationsOf(id))
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		m = &repository.TransactionMutation{}
	}

	r.s.transactions[id] = clone(txn)

	if v := m.Verification; v != nil {
		v.ID = uuid.New().String()
		v.TransactionID = txn.ID
		r.s.verifications[v.ID] = clone(v)
	}

	for _, vid := range m.ConfirmVerificationIDs {
		if v, ok := r.s.verifications[vid]; ok {
			v.Status = entity.VerificationStatusConfirmed
		}
	}

	if m.AwardReputation {
		for _, userID := range []string{txn.BuyerID, txn.SellerID} {
			if p, ok := r.s.profiles[userID]; ok {
				p.Reputation += entity.ReputationPerCompletion
				p.UpdatedAt = txn.UpdatedAt
			}
		}
	}

	return txn, m, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, filter repository.TransactionFilter) ([]*entity.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*entity.Transaction
	for _, t := range r.s.transactions {
		if filter.Matches(userID, t) {
			matched = append(matched, clone(t))
		}
	}

	repository.SortTransactions(matched)
	return repository.Page(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *transactionRepository) ListVerifications(ctx context.Context, transactionID string) ([]*entity.Verification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.verificationsOf(transactionID), nil
}

func (r *transactionRepository) verificationsOf(transactionID string) []*entity.Verification {
	var out []*entity.Verification
	for _, v := range r.s.verifications {
		if v.TransactionID == transactionID {
			out = append(out, clone(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
