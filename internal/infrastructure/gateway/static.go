package gateway

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaticGateway returns the same decision for every amount.
type StaticGateway struct {
	decision      application.Decision
	declineReason string
}

func NewApprovingGateway() *StaticGateway {
	return &StaticGateway{decision: application.DecisionApproved}
}

func NewDecliningGateway(reason string) *StaticGateway {
	if reason == "" {
		reason = DefaultDeclineReason
	}
	return &StaticGateway{
		decision:      application.DecisionDeclined,
		declineReason: reason,
	}
}

func (g *StaticGateway) Authorize(ctx context.Context, amount decimal.Decimal) (application.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return application.Authorization{}, fmt.Errorf("authorize %s: %w", amount, err)
	}
	if g.decision == application.DecisionApproved {
		return approve(), nil
	}
	return decline(g.declineReason), nil
}

func approve() application.Authorization {
	return application.Authorization{
		Decision:      application.DecisionApproved,
		TransactionID: "TXN-" + uuid.NewString(),
	}
}

func decline(reason string) application.Authorization {
	return application.Authorization{
		Decision:      application.DecisionDeclined,
		DeclineReason: reason,
	}
}
