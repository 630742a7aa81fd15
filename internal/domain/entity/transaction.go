package entity

import (
	"net/http"
	"time"

	"skipfurther/pkg/errors"
)

const (
	TransactionStatusPending    = "pending"
	TransactionStatusInProgress = "in_progress"
	TransactionStatusCompleted  = "completed"
	TransactionStatusCanceled   = "canceled"
	TransactionStatusDisputed   = "disputed"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// ReputationPerCompletion is awarded to each party when a transaction completes.
const ReputationPerCompletion = 1

type Transaction struct {
	ID            string  `json:"id" firestore:"id"`
	ListingID     string  `json:"listing_id" firestore:"listingId"`
	BidID         string  `json:"bid_id,omitempty" firestore:"bidId,omitempty"`
	BuyerID       string  `json:"buyer_id" firestore:"buyerId"`
	SellerID      string  `json:"seller_id" firestore:"sellerId"`
	Amount        float64 `json:"amount" firestore:"amount"`
	Status        string  `json:"status" firestore:"status"`
	PaymentStatus string  `json:"payment_status" firestore:"paymentStatus"`
	UpdatedBy     string  `json:"updated_by,omitempty" firestore:"updatedBy,omitempty"`

	// Set once both parties have been credited for completing this transaction.
	ReputationAwarded bool `json:"-" firestore:"reputationAwarded"`

	CompletedAt *time.Time `json:"completed_at,omitempty" firestore:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
}

type TransactionDetail struct {
	*Transaction
	Listing *ListingSummary `json:"listing,omitempty"`
	Buyer   *PublicProfile  `json:"buyer,omitempty"`
	Seller  *PublicProfile  `json:"seller,omitempty"`
}

func ValidTransactionStatus(status string) bool {
	switch status {
	case TransactionStatusPending, TransactionStatusInProgress, TransactionStatusCompleted,
		TransactionStatusCanceled, TransactionStatusDisputed:
		return true
	}
	return false
}

// NewTransaction resolves buyer, seller and amount for a purchase of listing by actorID.
// bid is nil for a fixed-price purchase.
func NewTransaction(listing *Listing, bid *Bid, actorID string, now time.Time) (*Transaction, error) {
	if listing == nil || !listing.IsActive() {
		return nil, errors.New(errors.CodeNotFound, "Listing not found or inactive", http.StatusNotFound, nil)
	}

	txn := &Transaction{
		ListingID:     listing.ID,
		SellerID:      listing.SellerID,
		Status:        TransactionStatusPending,
		PaymentStatus: PaymentStatusPending,
		UpdatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch {
	case listing.IsAuction && bid != nil:
		if bid.ListingID != listing.ID {
			return nil, errors.BadRequest("Bid does not belong to this listing", nil)
		}
		if !bid.Usable() {
			return nil, errors.InvalidState("This bid can no longer be accepted")
		}
		txn.BidID = bid.ID
		txn.BuyerID = bid.BidderID
		txn.Amount = bid.Amount
		if actorID != txn.BuyerID && actorID != txn.SellerID {
			return nil, errors.Forbidden("You are not a party to this bid", nil)
		}
	case !listing.IsAuction && bid == nil:
		if listing.IsOwnedBy(actorID) {
			return nil, errors.Forbidden("You cannot buy your own listing", nil)
		}
		txn.BuyerID = actorID
		txn.Amount = listing.Price
	default:
		return nil, errors.BadRequest("Invalid transaction request", nil)
	}

	if txn.BuyerID == txn.SellerID {
		return nil, errors.Forbidden("Buyer and seller must be different users", nil)
	}

	return txn, nil
}

func (t *Transaction) IsParty(userID string) bool {
	return userID != "" && (t.BuyerID == userID || t.SellerID == userID)
}

// Counterparty returns the other party of the transaction.
func (t *Transaction) Counterparty(userID string) string {
	if userID == t.BuyerID {
		return t.SellerID
	}
	return t.BuyerID
}

func (t *Transaction) IsClosed() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusCanceled
}

// ChangeStatus sets status on behalf of actorID. It reports whether the change
// earns the parties their completion reputation.
func (t *Transaction) ChangeStatus(actorID, status string, now time.Time) (bool, error) {
	if !t.IsParty(actorID) {
		return false, errors.Forbidden("Only the buyer or seller can update this transaction", nil)
	}
	if !ValidTransactionStatus(status) {
		return false, errors.BadRequest("Invalid status", nil)
	}
	if status == t.Status {
		return false, nil
	}

	t.Status = status
	t.UpdatedBy = actorID
	t.UpdatedAt = now
	if status == TransactionStatusCompleted {
		return t.complete(now), nil
	}
	return false, nil
}

// complete marks the transaction completed and reports whether reputation is still owed.
func (t *Transaction) complete(now time.Time) bool {
	t.Status = TransactionStatusCompleted
	if t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now
	if t.ReputationAwarded {
		return false
	}
	t.ReputationAwarded = true
	return true
}
