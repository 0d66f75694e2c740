package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/shopspring/decimal"
)

const (
	DefaultApprovalRate  = 0.9
	DefaultDeclineReason = "Insufficient funds (mock failure)"
)

// RandomGateway approves a charge with a fixed probability.
type RandomGateway struct {
	mu            sync.Mutex
	rng           *rand.Rand
	approvalRate  float64
	declineReason string
}

// NewRandomGateway draws every decision from rng. approvalRate is clamped
// to [0, 1].
func NewRandomGateway(rng *rand.Rand, approvalRate float64, declineReason string) *RandomGateway {
	if approvalRate < 0 {
		approvalRate = 0
	}
	if approvalRate > 1 {
		approvalRate = 1
	}
	if declineReason == "" {
		declineReason = DefaultDeclineReason
	}
	return &RandomGateway{
		rng:           rng,
		approvalRate:  approvalRate,
		declineReason: declineReason,
	}
}

func (g *RandomGateway) Authorize(ctx context.Context, amount decimal.Decimal) (application.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return application.Authorization{}, fmt.Errorf("authorize %s: %w", amount, err)
	}

	// *rand.Rand is not safe for concurrent use
	g.mu.Lock()
	draw := g.rng.Float64()
	g.mu.Unlock()

	if draw < g.approvalRate {
		return approve(), nil
	}
	return decline(g.declineReason), nil
}
