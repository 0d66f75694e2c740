package domain_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingPayment(t *testing.T) domain.Payment {
	t.Helper()
	p, err := domain.NewPayment("PAY-TEST0001", "ORD-1", "K1", 7, decimal.RequireFromString("100.00"), time.Now())
	require.NoError(t, err)
	p.ID = 1
	return *p
}

func settledPayment(t *testing.T) domain.Payment {
	t.Helper()
	p, err := domain.Transition(pendingPayment(t), domain.GatewayApproved("TXN-1", time.Now()))
	require.NoError(t, err)
	return p
}

func TestTransition_Allowed(t *testing.T) {
	t.Run("PENDING -> SUCCESS on approval", func(t *testing.T) {
		p := pendingPayment(t)

		next, err := domain.Transition(p, domain.GatewayApproved("TXN-abc", time.Now()))

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSuccess, next.Status)
		require.NotNil(t, next.TransactionID)
		assert.Equal(t, "TXN-abc", *next.TransactionID)
		assert.Nil(t, next.FailureReason)
	})

	t.Run("PENDING -> FAILED on decline", func(t *testing.T) {
		p := pendingPayment(t)

		next, err := domain.Transition(p, domain.GatewayDeclined("Insufficient funds", time.Now()))

		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, next.Status)
		assert.Nil(t, next.TransactionID)
		require.NotNil(t, next.FailureReason)
		assert.Equal(t, "Insufficient funds", *next.FailureReason)
	})

	t.Run("PENDING -> FAILED when abandoned", func(t *testing.T) {
		next, err := domain.Transition(pendingPayment(t), domain.ChargeAbandoned("charge did not complete", time.Now()))

		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, next.Status)
		assert.Equal(t, "charge did not complete", *next.FailureReason)
	})

	t.Run("SUCCESS -> REFUNDED on refund", func(t *testing.T) {
		p := settledPayment(t)

		next, err := domain.Transition(p, domain.RefundRequested("customer request", time.Now()))

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRefunded, next.Status)
		assert.Equal(t, "customer request", *next.FailureReason)
		assert.Equal(t, "TXN-1", *next.TransactionID)
	})

	t.Run("refund without a reason records none", func(t *testing.T) {
		next, err := domain.Transition(settledPayment(t), domain.RefundRequested("", time.Now()))

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRefunded, next.Status)
		assert.Nil(t, next.FailureReason)
	})
}

func TestTransition_Rejected(t *testing.T) {
	failed, err := domain.Transition(pendingPayment(t), domain.GatewayDeclined("declined", time.Now()))
	require.NoError(t, err)
	refunded, err := domain.Transition(settledPayment(t), domain.RefundRequested("r", time.Now()))
	require.NoError(t, err)

	tests := []struct {
		name    string
		payment domain.Payment
		event   domain.Event
		message string
	}{
		{"refund pending", pendingPayment(t), domain.RefundRequested("r", time.Now()), "not yet settled"},
		{"refund failed", failed, domain.RefundRequested("r", time.Now()), "only successful payments can be refunded"},
		{"refund refunded", refunded, domain.RefundRequested("r", time.Now()), "already REFUNDED"},
		{"approve success", settledPayment(t), domain.GatewayApproved("TXN-2", time.Now()), "gateway outcome already applied"},
		{"decline success", settledPayment(t), domain.GatewayDeclined("x", time.Now()), "gateway outcome already applied"},
		{"approve failed", failed, domain.GatewayApproved("TXN-2", time.Now()), "already FAILED"},
		{"abandon refunded", refunded, domain.ChargeAbandoned("x", time.Now()), "already REFUNDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := domain.Transition(tt.payment, tt.event)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
			assert.Contains(t, err.Error(), string(tt.payment.Status))
			assert.Contains(t, err.Error(), string(tt.event.Kind))
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, tt.payment, next)
		})
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	p := pendingPayment(t)
	before := p

	_, err := domain.Transition(p, domain.GatewayApproved("TXN-1", time.Now()))

	require.NoError(t, err)
	assert.Equal(t, before, p)
}

func TestTransition_ApprovalRequiresTransactionID(t *testing.T) {
	_, err := domain.Transition(pendingPayment(t), domain.GatewayApproved("", time.Now()))

	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestCanApply(t *testing.T) {
	assert.True(t, domain.CanApply(domain.StatusSuccess, domain.EventRefundRequested))
	assert.False(t, domain.CanApply(domain.StatusPending, domain.EventRefundRequested))
	assert.False(t, domain.CanApply(domain.StatusFailed, domain.EventRefundRequested))
	assert.False(t, domain.CanApply(domain.StatusRefunded, domain.EventRefundRequested))
	assert.False(t, domain.CanApply(domain.StatusRefunded, domain.EventGatewayApproved))
}
