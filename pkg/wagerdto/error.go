package wagerdto

// DomainError is the structured failure surfaced at the transport
// boundary. Code is stable and machine-matchable; Message is for humans.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "wager service error"
}

// Stable error codes mirrored from the lifecycle engine.
const (
	CodeInvalidFunds  = "invalid_funds"
	CodeWagerMismatch = "wager_mismatch"
	CodeGameNotFound  = "game_not_found"
	CodeWrongTurn     = "wrong_turn"
	CodeNotAPlayer    = "not_a_player"
	CodeIllegalMove   = "illegal_move"
	CodeGameNotActive = "game_not_active"
	CodeInternal      = "internal"
	CodeBadRequest    = "bad_request"
)
