package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipfurther/pkg/errors"
)

func pendingTransaction() *Transaction {
	return &Transaction{ID: "txn-1", BuyerID: "buyer", SellerID: "seller", Status: TransactionStatusPending}
}

func TestSellerThenBuyerCompletes(t *testing.T) {
	txn := pendingTransaction()

	seller, err := txn.Verify("seller", VerificationInput{Method: VerificationMethodScreenshot}, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, VerificationStatusConfirmed, seller.Record.Status)
	assert.Equal(t, TransactionStatusInProgress, txn.Status)
	assert.False(t, seller.AwardReputation)

	seller.Record.ID = "v-seller"
	buyer, err := txn.Verify("buyer", VerificationInput{Method: VerificationMethodScreenshot}, []*Verification{seller.Record}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusCompleted, txn.Status)
	assert.True(t, buyer.AwardReputation)
	assert.Equal(t, VerificationStatusConfirmed, buyer.Record.Status)
}

func TestBuyerAloneStaysPending(t *testing.T) {
	txn := pendingTransaction()

	out, err := txn.Verify("buyer", VerificationInput{Method: VerificationMethodInviteCode, Data: "ABC-123"}, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, VerificationStatusPending, out.Record.Status)
	assert.Equal(t, TransactionStatusPending, txn.Status)
	assert.False(t, out.AwardReputation)
	assert.Equal(t, "ABC-123", out.Record.VerificationData)
}

func TestBuyerThenSellerCompletes(t *testing.T) {
	txn := pendingTransaction()
	buyerRecord := &Verification{ID: "v-buyer", UserID: "buyer", Status: VerificationStatusPending}

	out, err := txn.Verify("seller", VerificationInput{Method: VerificationMethodEmailTransfer}, []*Verification{buyerRecord}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusCompleted, txn.Status)
	assert.Equal(t, []string{"v-buyer"}, out.ConfirmIDs)
	assert.True(t, out.AwardReputation)
}

func TestSellerVerifyKeepsLaterStatus(t *testing.T) {
	txn := pendingTransaction()
	txn.Status = TransactionStatusDisputed

	_, err := txn.Verify("seller", VerificationInput{Method: VerificationMethodScreenshot}, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusDisputed, txn.Status)
}

func TestVerifyGuards(t *testing.T) {
	txn := pendingTransaction()
	_, err := txn.Verify("stranger", VerificationInput{Method: VerificationMethodScreenshot}, nil, time.Now())
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = txn.Verify("buyer", VerificationInput{Method: "carrier-pigeon"}, nil, time.Now())
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = txn.Verify("buyer", VerificationInput{Method: VerificationMethodOther}, nil, time.Now())
	assert.NoError(t, err)

	txn.Status = TransactionStatusCompleted
	_, err = txn.Verify("buyer", VerificationInput{Method: VerificationMethodScreenshot}, nil, time.Now())
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestVerifyAfterManualCompletionDoesNotAwardTwice(t *testing.T) {
	txn := pendingTransaction()
	_, err := txn.ChangeStatus("buyer", TransactionStatusCompleted, time.Now())
	require.NoError(t, err)
	_, err = txn.ChangeStatus("buyer", TransactionStatusDisputed, time.Now())
	require.NoError(t, err)

	seller := &Verification{ID: "v-seller", UserID: "seller", Status: VerificationStatusConfirmed}
	out, err := txn.Verify("buyer", VerificationInput{Method: VerificationMethodScreenshot}, []*Verification{seller}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusCompleted, txn.Status)
	assert.False(t, out.AwardReputation)
}

func TestApplyRating(t *testing.T) {
	p := &Profile{}
	p.ApplyRating(5)
	p.ApplyRating(4)
	p.ApplyRating(4)

	assert.Equal(t, int64(3), p.ReviewCount)
	assert.Equal(t, 4.33, p.AverageRating)
}
