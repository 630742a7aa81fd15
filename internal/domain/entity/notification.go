package entity

import (
	"time"
)

const (
	NotificationNewBid               = "new_bid"
	NotificationOutbid               = "outbid"
	NotificationAuctionWon           = "auction_won"
	NotificationAuctionEnded         = "auction_ended"
	NotificationNewTransaction       = "new_transaction"
	NotificationTransactionStatus    = "transaction_status"
	NotificationTransactionVerified  = "transaction_verified"
	NotificationTransactionCompleted = "transaction_completed"
	NotificationNewReview            = "new_review"
)

type Notification struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Type      string    `json:"type" firestore:"type"`
	Content   string    `json:"content" firestore:"content"`
	RelatedID string    `json:"related_id,omitempty" firestore:"relatedId,omitempty"`
	IsRead    bool      `json:"is_read" firestore:"isRead"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// Event is a realtime message pushed to a user's open connections.
type Event struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}
