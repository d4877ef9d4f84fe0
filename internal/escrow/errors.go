package escrow

import (
	"errors"
	"fmt"
)

// Sentinel failures for the command surface. Every one of them aborts the
// whole operation with no state change; callers may retry after correcting
// the input.
var (
	ErrInvalidFunds  = errors.New("invalid funds")
	ErrWagerMismatch = errors.New("wager mismatch")
	ErrGameNotFound  = errors.New("game not found")
	ErrWrongTurn     = errors.New("wrong turn")
	ErrNotAPlayer    = errors.New("not a player")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameNotActive = errors.New("game not active")
)

// ErrorCode maps a lifecycle error to its stable wire code, or "" when the
// error is not part of the domain taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFunds):
		return "invalid_funds"
	case errors.Is(err, ErrWagerMismatch):
		return "wager_mismatch"
	case errors.Is(err, ErrGameNotFound):
		return "game_not_found"
	case errors.Is(err, ErrWrongTurn):
		return "wrong_turn"
	case errors.Is(err, ErrNotAPlayer):
		return "not_a_player"
	case errors.Is(err, ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, ErrGameNotActive):
		return "game_not_active"
	}
	return ""
}

func notFound(id uint64) error {
	return fmt.Errorf("no game with id %d: %w", id, ErrGameNotFound)
}
