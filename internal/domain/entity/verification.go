package entity

import (
	"time"

	"skipfurther/pkg/errors"
)

const (
	VerificationStatusPending   = "pending"
	VerificationStatusConfirmed = "confirmed"
)

// VerificationMethodOther covers transfer proofs that fit no listing method.
const VerificationMethodOther = "other"

// Verification is one party's attestation that the position was transferred.
type Verification struct {
	ID                 string    `json:"id" firestore:"id"`
	TransactionID      string    `json:"transaction_id" firestore:"transactionId"`
	UserID             string    `json:"user_id" firestore:"userId"`
	VerificationMethod string    `json:"verification_method" firestore:"verificationMethod"`
	VerificationData   string    `json:"verification_data,omitempty" firestore:"verificationData,omitempty"`
	ProofImageURL      string    `json:"proof_image_url,omitempty" firestore:"proofImageUrl,omitempty"`
	Status             string    `json:"status" firestore:"status"`
	CreatedAt          time.Time `json:"created_at" firestore:"createdAt"`
}

type VerificationInput struct {
	Method        string
	Data          string
	ProofImageURL string
}

// VerificationOutcome is everything a submitted verification changes.
type VerificationOutcome struct {
	Record          *Verification
	ConfirmIDs      []string
	AwardReputation bool
}

// Verify records userID's verification against the verifications already stored.
// A seller record is confirmed at once and starts the transfer. The transaction
// completes as soon as both a seller and a buyer record exist.
func (t *Transaction) Verify(userID string, in VerificationInput, existing []*Verification, now time.Time) (*VerificationOutcome, error) {
	if !t.IsParty(userID) {
		return nil, errors.Forbidden("Only the buyer or seller can verify this transaction", nil)
	}
	if t.IsClosed() {
		return nil, errors.InvalidState("This transaction is already " + t.Status)
	}
	if !ValidVerificationMethod(in.Method) && in.Method != VerificationMethodOther {
		return nil, errors.BadRequest("Invalid verification method", nil)
	}

	record := &Verification{
		TransactionID:      t.ID,
		UserID:             userID,
		VerificationMethod: in.Method,
		VerificationData:   in.Data,
		ProofImageURL:      in.ProofImageURL,
		Status:             VerificationStatusPending,
		CreatedAt:          now,
	}
	outcome := &VerificationOutcome{Record: record}

	var sellerVerified bool
	var pendingBuyer []string
	for _, v := range existing {
		switch v.UserID {
		case t.SellerID:
			sellerVerified = true
		case t.BuyerID:
			if v.Status == VerificationStatusPending {
				pendingBuyer = append(pendingBuyer, v.ID)
			}
		}
	}

	t.UpdatedBy = userID
	t.UpdatedAt = now

	if userID == t.SellerID {
		record.Status = VerificationStatusConfirmed
		if t.Status == TransactionStatusPending {
			t.Status = TransactionStatusInProgress
		}
		if len(pendingBuyer) > 0 {
			outcome.ConfirmIDs = pendingBuyer
			outcome.AwardReputation = t.complete(now)
		}
		return outcome, nil
	}

	if sellerVerified {
		record.Status = VerificationStatusConfirmed
		outcome.AwardReputation = t.complete(now)
	}
	return outcome, nil
}
