package wagerdto

import "time"

// GameState is the wire projection of one game record.
type GameState struct {
	ID        uint64      `json:"id"`
	FEN       string      `json:"fen"`
	White     *string     `json:"white,omitempty"`
	Black     *string     `json:"black,omitempty"`
	Turn      uint64      `json:"turn"`
	Status    int         `json:"status"`
	StatusTag string      `json:"status_tag"`
	Wager     CoinPayload `json:"wager"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TransferPayload is one settlement instruction executed by the host.
type TransferPayload struct {
	To     string      `json:"to"`
	Amount CoinPayload `json:"amount"`
}

// CreateGameResponse returns the id of the freshly created game.
type CreateGameResponse struct {
	GameID uint64 `json:"game_id"`
}

// CommandResponse is the reply to join/move/resign: the updated record plus
// any transfers the status transition produced.
type CommandResponse struct {
	Game      GameState         `json:"game"`
	Transfers []TransferPayload `json:"transfers,omitempty"`
}

// ListGamesResponse is the reply to the list query.
type ListGamesResponse struct {
	Games []GameState `json:"games"`
}

// ErrorResponse wraps a DomainError for the wire.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}
