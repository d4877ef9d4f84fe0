package escrow

// Settle maps a concluded game to the transfers the caller must execute.
// It is pure: no side effects, no mutation of g.
//
// Stalemate refunds each player their own stake; a win or an opponent's
// resignation pays the whole pot (both stakes) to the survivor. Nothing is
// emitted for a zero wager, an unfilled seat, or a non-terminal status.
func Settle(g *Game) []Transfer {
	if g == nil || g.Wager.Amount == 0 {
		return nil
	}

	switch g.Status {
	case StatusStalemate:
		if g.White == nil || g.Black == nil {
			return nil
		}
		refund := Coin{Denom: g.Wager.Denom, Amount: g.Wager.Amount}
		return []Transfer{
			{To: *g.White, Amount: refund},
			{To: *g.Black, Amount: refund},
		}
	case StatusWhiteWins, StatusBlackResigned:
		if g.White == nil {
			return nil
		}
		return []Transfer{{To: *g.White, Amount: Coin{Denom: g.Wager.Denom, Amount: g.Wager.Amount * 2}}}
	case StatusBlackWins, StatusWhiteResigned:
		if g.Black == nil {
			return nil
		}
		return []Transfer{{To: *g.Black, Amount: Coin{Denom: g.Wager.Denom, Amount: g.Wager.Amount * 2}}}
	}
	return nil
}
