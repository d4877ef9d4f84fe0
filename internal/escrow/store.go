package escrow

import "context"

// GameStore is the persistence boundary: a game table keyed by id plus one
// durable counter. Save must be all-or-nothing; partial writes are not part
// of the contract.
type GameStore interface {
	// Load returns the record for id, or ErrGameNotFound.
	Load(ctx context.Context, id uint64) (*Game, error)
	// Save writes the full record, creating or replacing it.
	Save(ctx context.Context, g *Game) error
	// List returns every stored record in ascending id order.
	List(ctx context.Context) ([]*Game, error)
	// NextID advances the shared counter and returns the next id,
	// starting at 1 and strictly increasing.
	NextID(ctx context.Context) (uint64, error)
}
