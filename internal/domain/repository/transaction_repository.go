package repository

import (
	"context"
	"sort"

	"skipfurther/internal/domain/entity"
)

// OpenTransactionFunc builds the transaction from the listing and bid read inside the datastore transaction.
// bid is nil when no bid id was given.
type OpenTransactionFunc func(listing *entity.Listing, bid *entity.Bid) (*entity.Transaction, error)

// MutateTransactionFunc changes txn in place, given its verifications.
type MutateTransactionFunc func(txn *entity.Transaction, verifications []*entity.Verification) (*TransactionMutation, error)

type TransactionMutation struct {
	// Verification is inserted when set.
	Verification *entity.Verification
	// ConfirmVerificationIDs are flipped to confirmed.
	ConfirmVerificationIDs []string
	// AwardReputation credits buyer and seller with entity.ReputationPerCompletion each.
	AwardReputation bool
}

type TransactionFilter struct {
	Role   string // buyer, seller or empty for both
	Status string
	Limit  int
	Offset int
}

type TransactionRepository interface {
	// Open creates the transaction returned by fn and marks the listing sold (and the bid
	// accepted) atomically. A listing can only be sold once.
	Open(ctx context.Context, listingID, bidID string, fn OpenTransactionFunc) (*entity.Transaction, error)
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// Mutate applies fn and its side effects in one datastore transaction.
	Mutate(ctx context.Context, id string, fn MutateTransactionFunc) (*entity.Transaction, *TransactionMutation, error)
	ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]*entity.Transaction, int64, error)
	ListVerifications(ctx context.Context, transactionID string) ([]*entity.Verification, error)
}

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Matches reports whether txn is one of userID's transactions under the filter.
func (f TransactionFilter) Matches(userID string, txn *entity.Transaction) bool {
	switch f.Role {
	case RoleBuyer:
		if txn.BuyerID != userID {
			return false
		}
	case RoleSeller:
		if txn.SellerID != userID {
			return false
		}
	default:
		if !txn.IsParty(userID) {
			return false
		}
	}
	return f.Status == "" || txn.Status == f.Status
}

// SortTransactions orders newest first.
func SortTransactions(txns []*entity.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
}
