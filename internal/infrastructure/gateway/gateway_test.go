package gateway_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/config"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var amount = decimal.RequireFromString("100.00")

func TestStaticGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("approves with a transaction id", func(t *testing.T) {
		auth, err := gateway.NewApprovingGateway().Authorize(ctx, amount)

		require.NoError(t, err)
		assert.True(t, auth.Approved())
		assert.True(t, strings.HasPrefix(auth.TransactionID, "TXN-"))
		assert.Empty(t, auth.DeclineReason)
	})

	t.Run("declines with the configured reason", func(t *testing.T) {
		auth, err := gateway.NewDecliningGateway("card blocked").Authorize(ctx, amount)

		require.NoError(t, err)
		assert.Equal(t, application.DecisionDeclined, auth.Decision)
		assert.Equal(t, "card blocked", auth.DeclineReason)
		assert.Empty(t, auth.TransactionID)
	})

	t.Run("declines with the default reason", func(t *testing.T) {
		auth, err := gateway.NewDecliningGateway("").Authorize(ctx, amount)

		require.NoError(t, err)
		assert.Equal(t, gateway.DefaultDeclineReason, auth.DeclineReason)
	})

	t.Run("cancelled context is an error", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := gateway.NewApprovingGateway().Authorize(cancelled, amount)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRandomGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("rate one always approves", func(t *testing.T) {
		g := gateway.NewRandomGateway(rand.New(rand.NewSource(1)), 1, "")
		for range 100 {
			auth, err := g.Authorize(ctx, amount)
			require.NoError(t, err)
			assert.True(t, auth.Approved())
		}
	})

	t.Run("rate zero always declines", func(t *testing.T) {
		g := gateway.NewRandomGateway(rand.New(rand.NewSource(1)), 0, "")
		for range 100 {
			auth, err := g.Authorize(ctx, amount)
			require.NoError(t, err)
			assert.False(t, auth.Approved())
			assert.Equal(t, gateway.DefaultDeclineReason, auth.DeclineReason)
		}
	})

	t.Run("same seed gives the same decisions", func(t *testing.T) {
		a := gateway.NewRandomGateway(rand.New(rand.NewSource(42)), gateway.DefaultApprovalRate, "")
		b := gateway.NewRandomGateway(rand.New(rand.NewSource(42)), gateway.DefaultApprovalRate, "")
		for range 50 {
			first, err := a.Authorize(ctx, amount)
			require.NoError(t, err)
			second, err := b.Authorize(ctx, amount)
			require.NoError(t, err)
			assert.Equal(t, first.Decision, second.Decision)
		}
	})

	t.Run("approval rate is roughly honoured", func(t *testing.T) {
		g := gateway.NewRandomGateway(rand.New(rand.NewSource(7)), 0.9, "")
		approved := 0
		for range 1000 {
			auth, err := g.Authorize(ctx, amount)
			require.NoError(t, err)
			if auth.Approved() {
				approved++
			}
		}
		assert.InDelta(t, 900, approved, 60)
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{gateway.ModeRandom, false},
		{gateway.ModeApprove, false},
		{gateway.ModeDecline, false},
		{"bank", true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			g, err := gateway.New(config.GatewayConfig{Mode: tt.mode, ApprovalRate: 0.9, Seed: 3})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}
