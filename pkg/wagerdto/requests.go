package wagerdto

// CoinPayload is a stake or payout amount in one denomination.
type CoinPayload struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// CreateGameRequest opens a game; the attached funds become the wager.
type CreateGameRequest struct {
	Player string        `json:"player"`
	Funds  []CoinPayload `json:"funds"`
}

// JoinGameRequest seats the player in an existing game. Funds are required
// only on a first real join; reconnects and spectators may omit them.
type JoinGameRequest struct {
	Player string        `json:"player"`
	Funds  []CoinPayload `json:"funds,omitempty"`
}

// MakeMoveRequest proposes a move in algebraic square notation, with an
// optional promotion piece (q, r, b, n).
type MakeMoveRequest struct {
	Player    string `json:"player"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// ResignRequest forfeits the game for the named player.
type ResignRequest struct {
	Player string `json:"player"`
}
