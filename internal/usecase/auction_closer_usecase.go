package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/logger"
)

const auctionSweepBatch = 100

// AuctionCloser settles auctions whose end time has passed.
type AuctionCloser struct {
	listingRepo repository.ListingRepository
	bidRepo     repository.BidRepository
	notifier    Notifier
	log         zerolog.Logger
}

func NewAuctionCloser(listingRepo repository.ListingRepository, bidRepo repository.BidRepository, notifier Notifier) *AuctionCloser {
	return &AuctionCloser{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		notifier:    notifier,
		log:         logger.With("auction_closer"),
	}
}

// ProcessEndedAuctions closes every ended auction and reports how many it closed.
func (uc *AuctionCloser) ProcessEndedAuctions(ctx context.Context, now time.Time) (int, error) {
	listings, err := uc.listingRepo.ListEndedAuctions(ctx, now, auctionSweepBatch)
	if err != nil {
		return 0, err
	}

	closedCount := 0
	for _, listing := range listings {
		closed, err := uc.bidRepo.CloseAuction(ctx, listing.ID, now)
		if err != nil {
			uc.log.Error().Err(err).Str("listing_id", listing.ID).Msg("failed to close auction")
			continue
		}
		if closed == nil {
			continue
		}
		closedCount++

		l := closed.Listing
		if closed.Winner == nil {
			uc.notifier.Notify(ctx, l.SellerID, entity.NotificationAuctionEnded,
				fmt.Sprintf("Your auction \"%s\" ended without bids", l.Title), l.ID)
			continue
		}

		uc.notifier.Notify(ctx, l.SellerID, entity.NotificationAuctionEnded,
			fmt.Sprintf("Your auction \"%s\" ended with a winning bid of %.2f", l.Title, closed.Winner.Amount), l.ID)
		uc.notifier.Notify(ctx, closed.Winner.BidderID, entity.NotificationAuctionWon,
			fmt.Sprintf("You won the auction for \"%s\"", l.Title), l.ID)
	}

	if closedCount > 0 {
		uc.log.Info().Int("closed", closedCount).Msg("auction sweep finished")
	}
	return closedCount, nil
}

// StartAuctionCloseJob sweeps for ended auctions every interval until ctx is done.
func (uc *AuctionCloser) StartAuctionCloseJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := uc.ProcessEndedAuctions(ctx, time.Now()); err != nil {
					uc.log.Error().Err(err).Msg("auction close job error")
				}
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()

	uc.log.Info().Dur("interval", interval).Msg("auction close job started")
}
