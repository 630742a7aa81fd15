package entity

import (
	"fmt"
	"time"
)

type WatchlistItem struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	ListingID string    `json:"listing_id" firestore:"listingId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

type WatchlistItemWithListing struct {
	*WatchlistItem
	Listing *ListingSummary `json:"listing"`
}

func WatchlistItemID(userID, listingID string) string {
	return fmt.Sprintf("%s_%s", userID, listingID)
}
