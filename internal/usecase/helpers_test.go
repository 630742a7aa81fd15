package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skipfurther/internal/adapter/repository/memory"
	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/internal/infrastructure/storage"
)

type sentNotification struct {
	UserID    string
	Type      string
	RelatedID string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, notificationType, content, relatedID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: notificationType, RelatedID: relatedID})
}

func (n *recordingNotifier) ofType(notificationType string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Type == notificationType {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	storage  *storage.MemoryStorage
	notifier *recordingNotifier

	profiles      repository.ProfileRepository
	listings      repository.ListingRepository
	bids          repository.BidRepository
	transactions  repository.TransactionRepository
	reviews       repository.ReviewRepository
	notifications repository.NotificationRepository
	watchlist     repository.WatchlistRepository

	listingUC     *ListingUseCase
	bidUC         *BidUseCase
	transactionUC *TransactionUseCase
	reviewUC      *ReviewUseCase
	watchlistUC   *WatchlistUseCase
	dashboardUC   *DashboardUseCase
	closer        *AuctionCloser
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memory.NewStore()
	s.SeedCategories(memory.DefaultCategories()...)

	f := &fixture{
		ctx:           context.Background(),
		store:         s,
		storage:       storage.NewMemoryStorage(),
		notifier:      &recordingNotifier{},
		profiles:      memory.NewProfileRepository(s),
		listings:      memory.NewListingRepository(s),
		bids:          memory.NewBidRepository(s),
		transactions:  memory.NewTransactionRepository(s),
		reviews:       memory.NewReviewRepository(s),
		notifications: memory.NewNotificationRepository(s),
		watchlist:     memory.NewWatchlistRepository(s),
	}

	f.listingUC = NewListingUseCase(f.listings, f.bids, f.profiles, f.storage)
	f.bidUC = NewBidUseCase(f.bids, f.listings, f.profiles, f.notifier, nil)
	f.transactionUC = NewTransactionUseCase(f.transactions, f.listings, f.profiles, f.storage, f.notifier)
	f.reviewUC = NewReviewUseCase(f.reviews, f.transactions, f.profiles, f.notifier)
	f.watchlistUC = NewWatchlistUseCase(f.watchlist, f.listings)
	f.dashboardUC = NewDashboardUseCase(f.listings, f.bids, f.transactions, f.watchlist)
	f.closer = NewAuctionCloser(f.listings, f.bids, f.notifier)

	for _, id := range []string{"seller", "buyer", "bidder2", "stranger"} {
		require.NoError(t, f.profiles.Create(f.ctx, &entity.Profile{
			ID:                 id,
			Email:              id + "@example.com",
			Username:           id,
			VerificationStatus: entity.IdentityUnverified,
		}))
	}

	return f
}

func (f *fixture) fixedPriceListing(t *testing.T, price float64) *entity.Listing {
	t.Helper()
	l, err := f.listingUC.CreateListing(f.ctx, "seller", CreateListingInput{
		CategoryID:         "cat-tech",
		Title:              "Beta access spot",
		CompanyOrEvent:     "Acme",
		VerificationMethod: entity.VerificationMethodInviteCode,
		Price:              price,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) auction(t *testing.T, minimum float64) *entity.Listing {
	t.Helper()
	end := time.Now().Add(time.Hour)
	l, err := f.listingUC.CreateListing(f.ctx, "seller", CreateListingInput{
		CategoryID:         "cat-events",
		Title:              "Festival presale",
		CompanyOrEvent:     "Festival",
		VerificationMethod: entity.VerificationMethodEmailTransfer,
		IsAuction:          true,
		MinimumBid:         minimum,
		AuctionEndTime:     &end,
	})
	require.NoError(t, err)
	return l
}

// expire moves an auction's end time into the past.
func (f *fixture) expire(t *testing.T, listingID string) {
	t.Helper()
	past := time.Now().Add(-time.Minute)
	_, err := f.listings.Mutate(f.ctx, listingID, func(l *entity.Listing) ([]repository.ListingField, error) {
		l.AuctionEndTime = &past
		return []repository.ListingField{repository.ListingFieldAuctionEndTime}, nil
	})
	require.NoError(t, err)
}

// racingListings runs beforeRead once, just before the first GetByID returns,
// to land a concurrent write between a use case's read and its write.
type racingListings struct {
	repository.ListingRepository
	beforeRead func()
	fired      bool
}

func (r *racingListings) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	l, err := r.ListingRepository.GetByID(ctx, id)
	if !r.fired && r.beforeRead != nil {
		r.fired = true
		r.beforeRead()
	}
	return l, err
}

// completedTransaction buys a fixed-price listing and has both parties verify it.
func (f *fixture) completedTransaction(t *testing.T) *entity.Transaction {
	t.Helper()
	l := f.fixedPriceListing(t, 40)
	txn, err := f.transactionUC.CreateTransaction(f.ctx, "buyer", l.ID, "")
	require.NoError(t, err)

	_, err = f.transactionUC.SubmitVerification(f.ctx, "seller", txn.ID, SubmitVerificationInput{Method: entity.VerificationMethodInviteCode, Data: "CODE-1"})
	require.NoError(t, err)
	res, err := f.transactionUC.SubmitVerification(f.ctx, "buyer", txn.ID, SubmitVerificationInput{Method: entity.VerificationMethodInviteCode})
	require.NoError(t, err)
	require.Equal(t, entity.TransactionStatusCompleted, res.Transaction.Status)
	return res.Transaction
}
