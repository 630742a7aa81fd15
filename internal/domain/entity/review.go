package entity

import (
	"time"
)

type Review struct {
	ID            string    `json:"id" firestore:"id"`
	ReviewerID    string    `json:"reviewer_id" firestore:"reviewerId"`
	UserID        string    `json:"user_id" firestore:"userId"`
	TransactionID string    `json:"transaction_id,omitempty" firestore:"transactionId,omitempty"`
	Rating        int       `json:"rating" firestore:"rating"`
	Comment       string    `json:"comment" firestore:"comment"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}

type ReviewWithReviewer struct {
	*Review
	Reviewer *PublicProfile `json:"reviewer"`
}
