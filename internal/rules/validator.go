// Package rules adapts the chess library into the engine's move oracle.
// All rule knowledge lives here; the lifecycle engine treats the verdict as
// ground truth.
package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/kapu/chess-wager-go/internal/escrow"
)

// Validator checks a proposed move against the position encoded in fen and
// applies it. Squares use algebraic notation ("e2"); promotion is one of
// q, r, b, n (case-insensitive) or empty.
type Validator struct{}

func New() Validator { return Validator{} }

func (Validator) Validate(fen, from, to, promotion string) (string, escrow.Classification, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return "", escrow.Ongoing, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	game := nchess.NewGame(option)

	uci, err := uciString(from, to, promotion)
	if err != nil {
		return "", escrow.Ongoing, err
	}
	if err := game.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
		return "", escrow.Ongoing, fmt.Errorf("move %s: %w", uci, err)
	}

	return game.FEN(), classify(game), nil
}

func uciString(from, to, promotion string) (string, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if len(from) != 2 || len(to) != 2 {
		return "", fmt.Errorf("invalid square %q-%q", from, to)
	}
	promo := strings.ToLower(strings.TrimSpace(promotion))
	switch promo {
	case "", "q", "r", "b", "n":
	default:
		return "", fmt.Errorf("invalid promotion piece %q", promotion)
	}
	return from + to + promo, nil
}

// classify folds the library outcome into the three verdicts the lifecycle
// understands. Forced draws that are not literal stalemates (insufficient
// material, 75-move rule, fivefold repetition) settle like stalemates: both
// stakes go back.
func classify(game *nchess.Game) escrow.Classification {
	if game.Outcome() == nchess.NoOutcome {
		return escrow.Ongoing
	}
	if game.Method() == nchess.Checkmate {
		return escrow.Checkmate
	}
	return escrow.Stalemate
}
