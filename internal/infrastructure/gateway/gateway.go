// Package gateway holds the simulated payment processors.
package gateway

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/config"
)

const (
	ModeRandom  = "random"
	ModeApprove = "approve"
	ModeDecline = "decline"
)

// New builds the gateway selected by cfg.Mode. A zero seed seeds the random
// gateway from the clock.
func New(cfg config.GatewayConfig) (application.Gateway, error) {
	switch cfg.Mode {
	case ModeRandom, "":
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return NewRandomGateway(rand.New(rand.NewSource(seed)), cfg.ApprovalRate, cfg.DeclineReason), nil
	case ModeApprove:
		return NewApprovingGateway(), nil
	case ModeDecline:
		return NewDecliningGateway(cfg.DeclineReason), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode %q", cfg.Mode)
	}
}
