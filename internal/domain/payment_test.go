package domain_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	now := time.Now()

	t.Run("creates pending payment successfully", func(t *testing.T) {
		payment, err := domain.NewPayment("PAY-1A2B3C4D", "ORD-1", "K1", 7, decimal.RequireFromString("100.00"), now)

		require.NoError(t, err)
		assert.Zero(t, payment.ID)
		assert.Equal(t, "PAY-1A2B3C4D", payment.Reference)
		assert.Equal(t, "ORD-1", payment.OrderID)
		assert.Equal(t, "K1", payment.IdempotencyKey)
		assert.Equal(t, int64(7), payment.UserID)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, domain.StatusPending, payment.Status)
		assert.Nil(t, payment.TransactionID)
		assert.Nil(t, payment.FailureReason)
		assert.Equal(t, now, payment.CreatedAt)
	})

	t.Run("rejects empty order ID", func(t *testing.T) {
		_, err := domain.NewPayment("PAY-1", "", "K1", 7, decimal.NewFromInt(10), now)

		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
		assert.Contains(t, err.Error(), "order ID is required")
	})

	t.Run("rejects empty idempotency key", func(t *testing.T) {
		_, err := domain.NewPayment("PAY-1", "ORD-1", "", 7, decimal.NewFromInt(10), now)

		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := domain.NewPayment("PAY-1", "ORD-1", "K1", 7, decimal.Zero, now)

		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := domain.NewPayment("PAY-1", "ORD-1", "K1", 7, decimal.RequireFromString("-0.01"), now)

		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("rejects sub-cent amounts", func(t *testing.T) {
		for _, raw := range []string{"0.001", "100.005", "19.999"} {
			_, err := domain.NewPayment("PAY-1", "ORD-1", "K1", 7, decimal.RequireFromString(raw), now)

			assert.ErrorIs(t, err, domain.ErrInvalidAmount, raw)
			assert.Contains(t, err.Error(), "at most 2 decimal places", raw)
		}
	})

	t.Run("accepts trailing zeros past two places", func(t *testing.T) {
		p, err := domain.NewPayment("PAY-1", "ORD-1", "K1", 7, decimal.RequireFromString("100.500"), now)

		require.NoError(t, err)
		assert.Equal(t, "100.50", p.Amount.StringFixed(2))
	})
}

func TestReconstitute(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := domain.Reconstitute(1, "PAY-1", "ORD-1", "K1", 7, decimal.NewFromInt(1),
			domain.PaymentStatus("AUTHORIZED"), nil, nil, time.Now(), time.Now())

		assert.Error(t, err)
	})

	t.Run("restores all fields", func(t *testing.T) {
		txn := "TXN-1"
		created := time.Now().Add(-time.Hour)
		p, err := domain.Reconstitute(42, "PAY-1", "ORD-1", "K1", 7, decimal.NewFromInt(5),
			domain.StatusSuccess, &txn, nil, created, created)

		require.NoError(t, err)
		assert.Equal(t, int64(42), p.ID)
		assert.Equal(t, domain.StatusSuccess, p.Status)
		assert.Equal(t, "TXN-1", *p.TransactionID)
	})
}

func TestPayment_IsTerminal(t *testing.T) {
	cases := map[domain.PaymentStatus]bool{
		domain.StatusPending:  false,
		domain.StatusSuccess:  false,
		domain.StatusFailed:   true,
		domain.StatusRefunded: true,
	}

	for status, terminal := range cases {
		p := domain.Payment{Status: status}
		assert.Equal(t, terminal, p.IsTerminal(), status)
	}
}
