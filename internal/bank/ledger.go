package bank

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kapu/chess-wager-go/internal/escrow"
)

// Ledger records executed settlement transfers in Postgres. All transfers
// for one settlement are inserted in a single transaction so a game either
// has its full payout on record or none of it.
type Ledger struct {
	db *sql.DB
}

func NewLedger(databaseURL string) (*Ledger, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Ledger) Execute(ctx context.Context, gameID uint64, reason string, transfers []escrow.Transfer) error {
	if l == nil || l.db == nil || len(transfers) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settlement tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO settlement_transfers (
			game_id, recipient, denom, amount, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now().UTC()
	for _, t := range transfers {
		if _, err := tx.ExecContext(ctx, q, int64(gameID), t.To, t.Amount.Denom, int64(t.Amount.Amount), reason, now); err != nil {
			return fmt.Errorf("insert transfer for game %d: %w", gameID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement tx: %w", err)
	}
	return nil
}
