// Package bank executes settlement transfers on behalf of the lifecycle
// engine. The engine only emits instructions; what "paying out" means is
// the host's business.
package bank

import (
	"context"

	"github.com/kapu/chess-wager-go/internal/escrow"
	"github.com/kapu/chess-wager-go/internal/obslog"
	"go.uber.org/zap"
)

// Noop logs the instructions and succeeds. Used when no ledger database is
// configured.
type Noop struct{}

func (Noop) Execute(ctx context.Context, gameID uint64, reason string, transfers []escrow.Transfer) error {
	for _, t := range transfers {
		obslog.L().Info("transfer_noop",
			zap.Uint64("game_id", gameID),
			zap.String("reason", reason),
			zap.String("to", t.To),
			zap.Uint64("amount", t.Amount.Amount),
			zap.String("denom", t.Amount.Denom),
		)
	}
	return nil
}
