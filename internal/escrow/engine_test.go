package escrow

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubValidator lets lifecycle tests script the oracle's verdict without
// dragging real chess rules in.
type stubValidator struct {
	fen   string
	class Classification
	err   error
}

func (s stubValidator) Validate(fen, from, to, promotion string) (string, Classification, error) {
	if s.err != nil {
		return "", Ongoing, s.err
	}
	out := s.fen
	if out == "" {
		out = fen + " +" + from + to
	}
	return out, s.class, nil
}

type recordingExecutor struct {
	calls     int
	transfers []Transfer
	fail      error
}

func (r *recordingExecutor) Execute(ctx context.Context, gameID uint64, reason string, transfers []Transfer) error {
	if r.fail != nil {
		return r.fail
	}
	r.calls++
	r.transfers = append(r.transfers, transfers...)
	return nil
}

func newTestEngine(t *testing.T, v MoveValidator, colors ColorSource) (*Engine, *recordingExecutor) {
	t.Helper()
	exec := &recordingExecutor{}
	if v == nil {
		v = stubValidator{}
	}
	return NewEngine(NewMemoryStore(), v, exec, colors, "uscrt"), exec
}

func stake(amount uint64) []Coin {
	return []Coin{{Denom: "uscrt", Amount: amount}}
}

// activeGame creates and joins a game so alice is white, bob is black.
func activeGame(t *testing.T, e *Engine) uint64 {
	t.Helper()
	ctx := context.Background()
	id, err := e.Create(ctx, "alice", stake(100))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.Join(ctx, "bob", stake(100), id); err != nil {
		t.Fatalf("Join: %v", err)
	}
	return id
}

func TestCreateRequiresFunds(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil)
	ctx := context.Background()

	if _, err := e.Create(ctx, "alice", nil); !errors.Is(err, ErrInvalidFunds) {
		t.Errorf("no funds: got %v, want ErrInvalidFunds", err)
	}
	if _, err := e.Create(ctx, "alice", []Coin{{Denom: "doge", Amount: 5}}); !errors.Is(err, ErrInvalidFunds) {
		t.Errorf("wrong denom: got %v, want ErrInvalidFunds", err)
	}
}

func TestCreateIDsAreMonotonic(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil)
	ctx := context.Background()

	var last uint64
	for i := 0; i < 20; i++ {
		id, err := e.Create(ctx, fmt.Sprintf("p%d", i), stake(1))
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
	if last != 20 {
		t.Errorf("last id %d, want 20 (ids start at 1)", last)
	}
}

func TestCreateColorAssignment(t *testing.T) {
	cases := []struct {
		name      string
		colors    ColorSource
		wantWhite bool
	}{
		{"even first byte", FixedColorSource{0x02}, true},
		{"odd first byte", FixedColorSource{0x03}, false},
		{"empty bytes defaults white", FixedColorSource{}, true},
		{"no source defaults white", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil, tc.colors)
			ctx := context.Background()
			id, err := e.Create(ctx, "alice", stake(10))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			g, err := e.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if tc.wantWhite {
				if g.White == nil || *g.White != "alice" || g.Black != nil {
					t.Errorf("expected creator white, got white=%v black=%v", g.White, g.Black)
				}
			} else {
				if g.Black == nil || *g.Black != "alice" || g.White != nil {
					t.Errorf("expected creator black, got white=%v black=%v", g.White, g.Black)
				}
			}
			if g.Status != StatusPending || g.Turn != 0 || g.FEN != StartFEN {
				t.Errorf("new game state wrong: %+v", g)
			}
		})
	}
}

func TestJoinActivatesGame(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	g, err := e.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if g.Status != StatusActive {
		t.Errorf("status %v, want active", g.Status)
	}
	if g.Black == nil || *g.Black != "bob" {
		t.Errorf("bob not seated black: %+v", g)
	}
}

func TestJoinErrors(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	id, err := e.Create(ctx, "alice", stake(100))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := e.Join(ctx, "bob", stake(100), 999); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown id: got %v, want ErrGameNotFound", err)
	}
	if _, err := e.Join(ctx, "bob", nil, id); !errors.Is(err, ErrInvalidFunds) {
		t.Errorf("no funds: got %v, want ErrInvalidFunds", err)
	}
	if _, err := e.Join(ctx, "bob", []Coin{{Denom: "doge", Amount: 100}}, id); !errors.Is(err, ErrInvalidFunds) {
		t.Errorf("wrong denom: got %v, want ErrInvalidFunds", err)
	}
	if _, err := e.Join(ctx, "bob", stake(99), id); !errors.Is(err, ErrWagerMismatch) {
		t.Errorf("short stake: got %v, want ErrWagerMismatch", err)
	}

	// failed joins must not seat anyone
	g, err := e.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if g.Black != nil || g.Status != StatusPending {
		t.Errorf("failed join mutated game: %+v", g)
	}
}

func TestJoinIdempotentForSeatedPlayer(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	before, _ := e.Get(ctx, id)
	// seated player rejoining without funds is a no-op success
	g, err := e.Join(ctx, "bob", nil, id)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if g.Status != before.Status || g.Turn != before.Turn {
		t.Errorf("rejoin changed state: %+v", g)
	}

	// a third party joining a full game is a spectator, not an error
	if _, err := e.Join(ctx, "carol", stake(100), id); err != nil {
		t.Fatalf("spectator join: %v", err)
	}
	after, _ := e.Get(ctx, id)
	if *after.White != "alice" || *after.Black != "bob" {
		t.Errorf("spectator displaced a seat: %+v", after)
	}
}

func TestMoveTurnEnforcement(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	// turn 0: black may not move
	if _, _, err := e.Move(ctx, "bob", id, "e7", "e5", ""); !errors.Is(err, ErrWrongTurn) {
		t.Errorf("black at even turn: got %v, want ErrWrongTurn", err)
	}
	// outsiders are rejected regardless of parity
	if _, _, err := e.Move(ctx, "carol", id, "e2", "e4", ""); !errors.Is(err, ErrNotAPlayer) {
		t.Errorf("outsider: got %v, want ErrNotAPlayer", err)
	}

	g, _, err := e.Move(ctx, "alice", id, "e2", "e4", "")
	if err != nil {
		t.Fatalf("white move: %v", err)
	}
	if g.Turn != 1 || g.Status != StatusActive {
		t.Errorf("after move: turn=%d status=%v", g.Turn, g.Status)
	}

	// turn 1: white may not move
	if _, _, err := e.Move(ctx, "alice", id, "d2", "d4", ""); !errors.Is(err, ErrWrongTurn) {
		t.Errorf("white at odd turn: got %v, want ErrWrongTurn", err)
	}
	if _, _, err := e.Move(ctx, "bob", id, "e7", "e5", ""); err != nil {
		t.Fatalf("black move: %v", err)
	}
}

func TestMoveRejectionLeavesRecordUntouched(t *testing.T) {
	e, _ := newTestEngine(t, stubValidator{err: errors.New("piece cannot move there")}, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)
	before, _ := e.Get(ctx, id)

	_, _, err := e.Move(ctx, "alice", id, "e2", "e5", "")
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("got %v, want ErrIllegalMove", err)
	}

	after, _ := e.Get(ctx, id)
	if after.FEN != before.FEN || after.Turn != before.Turn || after.Status != before.Status {
		t.Errorf("rejected move mutated record:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestMoveNotFoundAndNotActive(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()

	if _, _, err := e.Move(ctx, "alice", 42, "e2", "e4", ""); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown id: got %v, want ErrGameNotFound", err)
	}

	// pending games accept no moves
	id, _ := e.Create(ctx, "alice", stake(10))
	if _, _, err := e.Move(ctx, "alice", id, "e2", "e4", ""); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("pending game: got %v, want ErrGameNotActive", err)
	}
}

func TestMoveCheckmateMoverWinsAndSettles(t *testing.T) {
	cases := []struct {
		name       string
		preMoves   int // accepted moves before the mating one
		mover      string
		wantStatus Status
		winner     string
	}{
		{"white delivers mate", 0, "alice", StatusWhiteWins, "alice"},
		{"black delivers mate", 1, "bob", StatusBlackWins, "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, exec := newTestEngine(t, stubValidator{}, FixedColorSource{0})
			ctx := context.Background()
			id := activeGame(t, e)

			if tc.preMoves > 0 {
				if _, _, err := e.Move(ctx, "alice", id, "e2", "e4", ""); err != nil {
					t.Fatalf("setup move: %v", err)
				}
			}

			// swap the oracle verdict to checkmate for the mating move
			e.validator = stubValidator{class: Checkmate}
			g, transfers, err := e.Move(ctx, tc.mover, id, "d8", "h4", "")
			if err != nil {
				t.Fatalf("mating move: %v", err)
			}
			if g.Status != tc.wantStatus {
				t.Errorf("status %v, want %v", g.Status, tc.wantStatus)
			}
			if len(transfers) != 1 || transfers[0].To != tc.winner || transfers[0].Amount.Amount != 200 {
				t.Errorf("transfers %+v, want 200 to %s", transfers, tc.winner)
			}
			if exec.calls != 1 {
				t.Errorf("executor ran %d times, want 1", exec.calls)
			}
		})
	}
}

func TestMoveStalemateSettlesRefunds(t *testing.T) {
	e, exec := newTestEngine(t, stubValidator{class: Stalemate}, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	g, transfers, err := e.Move(ctx, "alice", id, "g5", "g6", "")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if g.Status != StatusStalemate {
		t.Errorf("status %v, want stalemate", g.Status)
	}
	if len(transfers) != 2 {
		t.Fatalf("transfers %+v, want two refunds", transfers)
	}
	if exec.calls != 1 {
		t.Errorf("executor ran %d times, want 1", exec.calls)
	}
}

func TestTerminalGameIsImmutable(t *testing.T) {
	e, exec := newTestEngine(t, stubValidator{class: Checkmate}, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	if _, _, err := e.Move(ctx, "alice", id, "f1", "b5", ""); err != nil {
		t.Fatalf("mating move: %v", err)
	}

	if _, _, err := e.Move(ctx, "bob", id, "e7", "e5", ""); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("move after mate: got %v, want ErrGameNotActive", err)
	}
	if _, _, err := e.Resign(ctx, "bob", id); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("resign after mate: got %v, want ErrGameNotActive", err)
	}
	g, _ := e.Get(ctx, id)
	if g.Status != StatusWhiteWins {
		t.Errorf("terminal status changed to %v", g.Status)
	}
	// settlement ran exactly once for the whole game
	if exec.calls != 1 {
		t.Errorf("executor ran %d times, want 1", exec.calls)
	}
}

func TestResign(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	if _, _, err := e.Resign(ctx, "carol", id); !errors.Is(err, ErrNotAPlayer) {
		t.Errorf("outsider resign: got %v, want ErrNotAPlayer", err)
	}

	g, transfers, err := e.Resign(ctx, "bob", id)
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if g.Status != StatusBlackResigned {
		t.Errorf("status %v, want black_resigned", g.Status)
	}
	if len(transfers) != 1 || transfers[0].To != "alice" || transfers[0].Amount.Amount != 200 {
		t.Errorf("transfers %+v, want 200 to alice", transfers)
	}
}

func TestResignRequiresActiveGame(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()

	if _, _, err := e.Resign(ctx, "alice", 7); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown id: got %v, want ErrGameNotFound", err)
	}

	id, _ := e.Create(ctx, "alice", stake(10))
	if _, _, err := e.Resign(ctx, "alice", id); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("pending resign: got %v, want ErrGameNotActive", err)
	}
}

func TestFailedPayoutAbortsTransition(t *testing.T) {
	e, exec := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	id := activeGame(t, e)

	exec.fail = errors.New("bank unavailable")
	if _, _, err := e.Resign(ctx, "alice", id); err == nil {
		t.Fatal("expected resign to fail when payout fails")
	}

	g, _ := e.Get(ctx, id)
	if g.Status != StatusActive {
		t.Errorf("status %v after failed payout, want active", g.Status)
	}

	// once the bank recovers the same command succeeds
	exec.fail = nil
	g, transfers, err := e.Resign(ctx, "alice", id)
	if err != nil {
		t.Fatalf("retry resign: %v", err)
	}
	if g.Status != StatusWhiteResigned || len(transfers) != 1 || transfers[0].To != "bob" {
		t.Errorf("retry outcome: %+v %+v", g, transfers)
	}
}

func TestListReturnsGamesInIDOrder(t *testing.T) {
	e, _ := newTestEngine(t, nil, FixedColorSource{0})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := e.Create(ctx, fmt.Sprintf("p%d", i), stake(1)); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	games, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(games) != 5 {
		t.Fatalf("got %d games, want 5", len(games))
	}
	for i, g := range games {
		if g.ID != uint64(i+1) {
			t.Errorf("games[%d].ID = %d, want %d", i, g.ID, i+1)
		}
	}
}
