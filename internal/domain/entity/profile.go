package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	IdentityUnverified = "unverified"
	IdentityPending    = "pending"
	IdentityVerified   = "verified"
)

type Profile struct {
	ID        string `json:"id" firestore:"id"`
	Email     string `json:"email" firestore:"email"`
	Username  string `json:"username" firestore:"username"`
	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty" firestore:"bio,omitempty"`

	Reputation    int64   `json:"reputation" firestore:"reputation"`
	AverageRating float64 `json:"average_rating" firestore:"averageRating"`
	ReviewCount   int64   `json:"review_count" firestore:"reviewCount"`

	VerificationStatus string    `json:"verification_status" firestore:"verificationStatus"`
	CreatedAt          time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt          time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PublicProfile is what other users get to see.
type PublicProfile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Reputation    int64     `json:"reputation"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type VerificationRequest struct {
	ID           string    `json:"id" firestore:"id"`
	UserID       string    `json:"user_id" firestore:"userId"`
	DocumentURL  string    `json:"document_url" firestore:"documentUrl"`
	DocumentType string    `json:"document_type" firestore:"documentType"`
	Status       string    `json:"status" firestore:"status"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
}

func (p *Profile) Public() *PublicProfile {
	if p == nil {
		return nil
	}
	return &PublicProfile{
		ID:            p.ID,
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		Bio:           p.Bio,
		Reputation:    p.Reputation,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
	}
}

// ApplyRating folds one more review into the running average.
func (p *Profile) ApplyRating(rating int) {
	total := decimal.NewFromFloat(p.AverageRating).Mul(decimal.NewFromInt(p.ReviewCount))
	p.ReviewCount++
	p.AverageRating = total.Add(decimal.NewFromInt(int64(rating))).
		Div(decimal.NewFromInt(p.ReviewCount)).
		Round(2).
		InexactFloat64()
}
