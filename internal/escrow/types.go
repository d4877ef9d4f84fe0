package escrow

import (
	"encoding/json"
	"fmt"
	"time"
)

// StartFEN is the canonical starting position every new game begins from.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Status represents a game lifecycle state. The numeric codes are part of
// the persisted format and must never change; they are mapped explicitly
// below rather than relying on declaration order.
type Status int

const (
	StatusPending Status = iota + 1 // waiting for an opponent
	StatusActive
	StatusStalemate
	StatusWhiteWins
	StatusBlackWins
	StatusWhiteResigned
	StatusBlackResigned
)

var statusCodes = map[Status]int{
	StatusPending:       1,
	StatusActive:        2,
	StatusStalemate:     3,
	StatusWhiteWins:     4,
	StatusBlackWins:     5,
	StatusWhiteResigned: 6,
	StatusBlackResigned: 7,
}

var statusFromCode = map[int]Status{
	1: StatusPending,
	2: StatusActive,
	3: StatusStalemate,
	4: StatusWhiteWins,
	5: StatusBlackWins,
	6: StatusWhiteResigned,
	7: StatusBlackResigned,
}

var statusNames = map[Status]string{
	StatusPending:       "pending",
	StatusActive:        "active",
	StatusStalemate:     "stalemate",
	StatusWhiteWins:     "white_wins",
	StatusBlackWins:     "black_wins",
	StatusWhiteResigned: "white_resigned",
	StatusBlackResigned: "black_resigned",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Terminal reports whether no further moves or resignations are accepted.
func (s Status) Terminal() bool {
	switch s {
	case StatusStalemate, StatusWhiteWins, StatusBlackWins, StatusWhiteResigned, StatusBlackResigned:
		return true
	}
	return false
}

func (s Status) MarshalJSON() ([]byte, error) {
	code, ok := statusCodes[s]
	if !ok {
		return nil, fmt.Errorf("unknown game status %d", int(s))
	}
	return json.Marshal(code)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	st, ok := statusFromCode[code]
	if !ok {
		return fmt.Errorf("invalid game status code %d", code)
	}
	*s = st
	return nil
}

// Coin is an amount in a single denomination.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// Transfer instructs the caller to pay Amount to the named recipient.
type Transfer struct {
	To     string `json:"to"`
	Amount Coin   `json:"amount"`
}

// Game is the persisted state of a wagered match. Seats are optional until
// bound and immutable afterwards. Turn parity decides who moves: even means
// white, odd means black.
type Game struct {
	ID        uint64    `json:"id"`
	FEN       string    `json:"fen"`
	White     *string   `json:"white,omitempty"`
	Black     *string   `json:"black,omitempty"`
	Turn      uint64    `json:"turn"`
	Status    Status    `json:"status"`
	Wager     Coin      `json:"wager"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *Game) seated(player string) bool {
	return (g.White != nil && *g.White == player) || (g.Black != nil && *g.Black == player)
}

// clone returns a deep copy so failed operations never leak partial
// mutations into the caller's record.
func (g *Game) clone() *Game {
	c := *g
	if g.White != nil {
		w := *g.White
		c.White = &w
	}
	if g.Black != nil {
		b := *g.Black
		c.Black = &b
	}
	return &c
}
