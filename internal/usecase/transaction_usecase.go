package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/internal/domain/service"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

type TransactionUseCase struct {
	transactionRepo repository.TransactionRepository
	listingRepo     repository.ListingRepository
	profileRepo     repository.ProfileRepository
	storage         service.FileUploadService
	notifier        Notifier
	log             zerolog.Logger
}

func NewTransactionUseCase(
	transactionRepo repository.TransactionRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	storage service.FileUploadService,
	notifier Notifier,
) *TransactionUseCase {
	return &TransactionUseCase{
		transactionRepo: transactionRepo,
		listingRepo:     listingRepo,
		profileRepo:     profileRepo,
		storage:         storage,
		notifier:        notifier,
		log:             logger.With("transactions"),
	}
}

// CreateTransaction buys a fixed-price listing, or settles an auction on a bid.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, actorID, listingID, bidID string) (*entity.Transaction, error) {
	txn, err := uc.transactionRepo.Open(ctx, listingID, bidID, func(listing *entity.Listing, bid *entity.Bid) (*entity.Transaction, error) {
		return entity.NewTransaction(listing, bid, actorID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, txn.Counterparty(actorID), entity.NotificationNewTransaction,
		fmt.Sprintf("A new transaction of %.2f was opened for your listing", txn.Amount), txn.ID)

	return txn, nil
}

func (uc *TransactionUseCase) memberTransaction(ctx context.Context, uid, id string) (*entity.Transaction, error) {
	txn, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.IsParty(uid) {
		return nil, errors.Forbidden("You don't have permission to view this transaction", nil)
	}
	return txn, nil
}

func (uc *TransactionUseCase) GetTransaction(ctx context.Context, uid, id string) (*entity.TransactionDetail, error) {
	txn, err := uc.memberTransaction(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	details, err := uc.details(ctx, []*entity.Transaction{txn})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (uc *TransactionUseCase) ListTransactions(ctx context.Context, uid string, filter repository.TransactionFilter) ([]*entity.TransactionDetail, int64, error) {
	txns, total, err := uc.transactionRepo.ListByUser(ctx, uid, filter)
	if err != nil {
		return nil, 0, err
	}

	details, err := uc.details(ctx, txns)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// details joins listing summaries and both parties' public profiles.
func (uc *TransactionUseCase) details(ctx context.Context, txns []*entity.Transaction) ([]*entity.TransactionDetail, error) {
	listingIDs := make([]string, 0, len(txns))
	userIDs := make([]string, 0, 2*len(txns))
	for _, t := range txns {
		listingIDs = append(listingIDs, t.ListingID)
		userIDs = append(userIDs, t.BuyerID, t.SellerID)
	}

	listings, err := uc.listingRepo.GetByIDs(ctx, listingIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := uc.profileRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.TransactionDetail, 0, len(txns))
	for _, t := range txns {
		d := &entity.TransactionDetail{
			Transaction: t,
			Buyer:       profiles[t.BuyerID].Public(),
			Seller:      profiles[t.SellerID].Public(),
		}
		if l, ok := listings[t.ListingID]; ok {
			d.Listing = l.Summary()
		}
		out = append(out, d)
	}
	return out, nil
}

func (uc *TransactionUseCase) UpdateStatus(ctx context.Context, uid, id, status string) (*entity.Transaction, error) {
	var previous string
	txn, mutation, err := uc.transactionRepo.Mutate(ctx, id, func(t *entity.Transaction, _ []*entity.Verification) (*repository.TransactionMutation, error) {
		previous = t.Status
		award, err := t.ChangeStatus(uid, status, time.Now())
		if err != nil {
			return nil, err
		}
		return &repository.TransactionMutation{AwardReputation: award}, nil
	})
	if err != nil {
		return nil, err
	}

	if previous != txn.Status {
		uc.notifier.Notify(ctx, txn.Counterparty(uid), entity.NotificationTransactionStatus,
			fmt.Sprintf("Transaction status changed to %s", txn.Status), txn.ID)
	}
	if mutation.AwardReputation {
		uc.notifyCompleted(ctx, txn)
	}

	return txn, nil
}

type SubmitVerificationInput struct {
	Method           string
	Data             string
	Proof            io.Reader
	ProofContentType string
}

type VerificationResult struct {
	Transaction  *entity.Transaction  `json:"transaction"`
	Verification *entity.Verification `json:"verification"`
}

func (uc *TransactionUseCase) SubmitVerification(ctx context.Context, uid, id string, input SubmitVerificationInput) (*VerificationResult, error) {
	current, err := uc.memberTransaction(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if current.IsClosed() {
		return nil, errors.InvalidState("This transaction is already " + current.Status)
	}

	var proofURL string
	if input.Proof != nil {
		proofURL, err = uc.storage.UploadFile(ctx, input.Proof, input.ProofContentType, path.Join(service.FolderTransactionProofs, id), false)
		if err != nil {
			return nil, errors.Internal("Failed to upload proof image", err)
		}
	}

	var previous string
	txn, mutation, err := uc.transactionRepo.Mutate(ctx, id, func(t *entity.Transaction, existing []*entity.Verification) (*repository.TransactionMutation, error) {
		previous = t.Status
		outcome, err := t.Verify(uid, entity.VerificationInput{
			Method:        input.Method,
			Data:          input.Data,
			ProofImageURL: proofURL,
		}, existing, time.Now())
		if err != nil {
			return nil, err
		}
		return &repository.TransactionMutation{
			Verification:           outcome.Record,
			ConfirmVerificationIDs: outcome.ConfirmIDs,
			AwardReputation:        outcome.AwardReputation,
		}, nil
	})
	if err != nil {
		if proofURL != "" {
			if delErr := uc.storage.DeleteFile(ctx, proofURL); delErr != nil {
				logger.LogTransactionError(id, "delete_orphaned_proof", delErr)
			}
		}
		return nil, err
	}

	uc.notifier.Notify(ctx, txn.Counterparty(uid), entity.NotificationTransactionVerified,
		"The other party submitted a transfer verification", txn.ID)
	if previous != entity.TransactionStatusCompleted && txn.Status == entity.TransactionStatusCompleted {
		uc.notifyCompleted(ctx, txn)
	}
	if mutation.AwardReputation {
		uc.log.Info().Str("transaction_id", txn.ID).Msg("reputation awarded")
	}

	return &VerificationResult{Transaction: txn, Verification: mutation.Verification}, nil
}

func (uc *TransactionUseCase) notifyCompleted(ctx context.Context, txn *entity.Transaction) {
	for _, userID := range []string{txn.BuyerID, txn.SellerID} {
		uc.notifier.Notify(ctx, userID, entity.NotificationTransactionCompleted, "Transaction completed", txn.ID)
	}
}

func (uc *TransactionUseCase) ListVerifications(ctx context.Context, uid, id string) ([]*entity.Verification, error) {
	if _, err := uc.memberTransaction(ctx, uid, id); err != nil {
		return nil, err
	}
	return uc.transactionRepo.ListVerifications(ctx, id)
}
