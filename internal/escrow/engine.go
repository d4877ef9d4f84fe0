package escrow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kapu/chess-wager-go/internal/obslog"
	"go.uber.org/zap"
)

// Classification is the rules engine's verdict on the position reached by
// an accepted move.
type Classification int

const (
	Ongoing Classification = iota
	Stalemate
	Checkmate
)

// MoveValidator is the delegated rules engine. It either returns the new
// position encoding plus a terminal classification, or rejects the move.
// The engine never second-guesses it.
type MoveValidator interface {
	Validate(fen, from, to, promotion string) (string, Classification, error)
}

// TransferExecutor carries out settlement transfers. Execution happens
// before the triggering state change is persisted: if it fails, the whole
// operation fails and the record stays untouched.
type TransferExecutor interface {
	Execute(ctx context.Context, gameID uint64, reason string, transfers []Transfer) error
}

// Engine owns the game lifecycle: create, join, move, resign, plus the
// read-only projections. Commands are serialized; each one runs
// read-validate-settle-persist to completion under the engine mutex.
type Engine struct {
	mu        sync.Mutex
	store     GameStore
	validator MoveValidator
	bank      TransferExecutor
	colors    ColorSource
	denom     string
}

func NewEngine(store GameStore, validator MoveValidator, bank TransferExecutor, colors ColorSource, denom string) *Engine {
	return &Engine{
		store:     store,
		validator: validator,
		bank:      bank,
		colors:    colors,
		denom:     denom,
	}
}

// Create opens a new game funded by the creator's stake and returns its id.
// The attached funds fix the wager for the lifetime of the game. Color is
// chosen by the injected randomness: low bit of the first byte, even means
// white; with no randomness the creator takes white.
func (e *Engine) Create(ctx context.Context, creator string, funds []Coin) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(funds) == 0 {
		return 0, fmt.Errorf("no funds sent: %w", ErrInvalidFunds)
	}
	if funds[0].Denom != e.denom {
		return 0, fmt.Errorf("stake not denominated in %s: %w", e.denom, ErrInvalidFunds)
	}

	id, err := e.store.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate game id: %w", err)
	}

	now := time.Now().UTC()
	g := &Game{
		ID:        id,
		FEN:       StartFEN,
		Turn:      0,
		Status:    StatusPending,
		Wager:     funds[0],
		CreatedAt: now,
		UpdatedAt: now,
	}

	seat := &g.White
	if e.colors != nil {
		if b := e.colors.Bytes(); len(b) > 0 && b[0]%2 != 0 {
			seat = &g.Black
		}
	}
	*seat = &creator

	if err := e.store.Save(ctx, g); err != nil {
		return 0, fmt.Errorf("save game %d: %w", id, err)
	}

	obslog.L().Info("game_create",
		zap.Uint64("game_id", id),
		zap.String("creator", creator),
		zap.Uint64("wager", g.Wager.Amount),
		zap.String("denom", g.Wager.Denom),
		zap.Bool("creator_white", g.White != nil),
	)
	return id, nil
}

// Join seats the candidate in the open slot and activates the game. A
// player already seated, or a third party joining a full game, gets the
// current record back unchanged. A real join escrows funds matching the
// recorded wager.
func (e *Engine) Join(ctx context.Context, candidate string, funds []Coin, gameID uint64) (*Game, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.store.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	// reconnects and spectators are not errors
	if g.seated(candidate) {
		return g, nil
	}
	if g.White != nil && g.Black != nil {
		return g, nil
	}

	if len(funds) == 0 {
		return nil, fmt.Errorf("no funds sent: %w", ErrInvalidFunds)
	}
	if funds[0].Denom != g.Wager.Denom {
		return nil, fmt.Errorf("stake not denominated in %s: %w", g.Wager.Denom, ErrInvalidFunds)
	}
	if funds[0].Amount != g.Wager.Amount {
		return nil, fmt.Errorf("stake %d does not match wager %d: %w", funds[0].Amount, g.Wager.Amount, ErrWagerMismatch)
	}

	if g.White != nil {
		g.Black = &candidate
	} else {
		g.White = &candidate
	}
	g.Status = StatusActive
	g.UpdatedAt = time.Now().UTC()

	if err := e.store.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("save game %d: %w", gameID, err)
	}

	obslog.L().Info("game_join",
		zap.Uint64("game_id", gameID),
		zap.String("candidate", candidate),
	)
	return g, nil
}

// Move applies one move for the seated mover. Turn and identity are checked
// before legality; a validator rejection leaves the record byte-for-byte
// unchanged. On a terminal classification the settlement transfers are
// executed and returned together with the updated record.
func (e *Engine) Move(ctx context.Context, mover string, gameID uint64, from, to, promotion string) (*Game, []Transfer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.store.Load(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.Status != StatusActive {
		return nil, nil, fmt.Errorf("game is %s: %w", g.Status, ErrGameNotActive)
	}

	moverWhite := g.White != nil && *g.White == mover
	moverBlack := g.Black != nil && *g.Black == mover
	switch {
	case moverWhite && g.Turn%2 != 0:
		return nil, nil, fmt.Errorf("black to move: %w", ErrWrongTurn)
	case moverBlack && g.Turn%2 == 0:
		return nil, nil, fmt.Errorf("white to move: %w", ErrWrongTurn)
	case !moverWhite && !moverBlack:
		return nil, nil, ErrNotAPlayer
	}

	newFEN, class, verr := e.validator.Validate(g.FEN, from, to, promotion)
	if verr != nil {
		return nil, nil, fmt.Errorf("%v: %w", verr, ErrIllegalMove)
	}

	g.FEN = newFEN
	switch class {
	case Stalemate:
		g.Status = StatusStalemate
	case Checkmate:
		// the side that just delivered mate wins
		if moverWhite {
			g.Status = StatusWhiteWins
		} else {
			g.Status = StatusBlackWins
		}
	default:
		g.Status = StatusActive
	}
	g.Turn++
	g.UpdatedAt = time.Now().UTC()

	transfers, err := e.conclude(ctx, g)
	if err != nil {
		return nil, nil, err
	}

	obslog.L().Info("game_move",
		zap.Uint64("game_id", gameID),
		zap.String("mover", mover),
		zap.String("move", from+to+promotion),
		zap.Uint64("turn", g.Turn),
		zap.String("status", g.Status.String()),
	)
	return g, transfers, nil
}

// Resign forfeits the game for the seated resigner. Only active games can
// be resigned, and only by a seated player.
func (e *Engine) Resign(ctx context.Context, resigner string, gameID uint64) (*Game, []Transfer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.store.Load(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.Status != StatusActive {
		return nil, nil, fmt.Errorf("game is %s: %w", g.Status, ErrGameNotActive)
	}

	switch {
	case g.White != nil && *g.White == resigner:
		g.Status = StatusWhiteResigned
	case g.Black != nil && *g.Black == resigner:
		g.Status = StatusBlackResigned
	default:
		return nil, nil, ErrNotAPlayer
	}
	g.UpdatedAt = time.Now().UTC()

	transfers, err := e.conclude(ctx, g)
	if err != nil {
		return nil, nil, err
	}

	obslog.L().Info("game_resign",
		zap.Uint64("game_id", gameID),
		zap.String("resigner", resigner),
		zap.String("status", g.Status.String()),
	)
	return g, transfers, nil
}

// conclude executes any settlement due for g's status and persists the
// record. Transfer execution comes first so that a failed payout never
// leaves a terminal state behind, and a save failure aborts the command
// before anything is reported to the caller.
func (e *Engine) conclude(ctx context.Context, g *Game) ([]Transfer, error) {
	transfers := Settle(g)
	if len(transfers) > 0 && e.bank != nil {
		if err := e.bank.Execute(ctx, g.ID, g.Status.String(), transfers); err != nil {
			return nil, fmt.Errorf("execute settlement for game %d: %w", g.ID, err)
		}
	}
	if err := e.store.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("save game %d: %w", g.ID, err)
	}
	if len(transfers) > 0 {
		obslog.L().Info("game_settle",
			zap.Uint64("game_id", g.ID),
			zap.String("status", g.Status.String()),
			zap.Int("transfers", len(transfers)),
		)
	}
	return transfers, nil
}

// Get returns the full record for one game.
func (e *Engine) Get(ctx context.Context, gameID uint64) (*Game, error) {
	return e.store.Load(ctx, gameID)
}

// List returns every stored game in id order.
func (e *Engine) List(ctx context.Context) ([]*Game, error) {
	return e.store.List(ctx)
}
