package testhelpers

import (
	"testing"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewPendingPayment returns an unsaved PENDING payment with a unique key.
func NewPendingPayment(t *testing.T, orderID string, createdAt time.Time) *domain.Payment {
	t.Helper()

	key := "idem-" + uuid.NewString()
	p, err := domain.NewPayment(
		"PAY-"+key[5:13],
		orderID,
		key,
		42,
		decimal.RequireFromString("150.00"),
		createdAt.UTC().Truncate(time.Microsecond),
	)
	require.NoError(t, err)
	return p
}

// Settle applies a gateway approval to p.
func Settle(t *testing.T, p *domain.Payment) *domain.Payment {
	t.Helper()

	next, err := domain.Transition(*p, domain.GatewayApproved("TXN-"+uuid.NewString(), time.Now().UTC().Truncate(time.Microsecond)))
	require.NoError(t, err)
	return &next
}
