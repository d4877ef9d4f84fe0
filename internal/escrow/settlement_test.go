package escrow

import "testing"

func strptr(s string) *string { return &s }

func TestSettleStalemateRefundsBoth(t *testing.T) {
	g := &Game{
		Status: StatusStalemate,
		White:  strptr("alice"),
		Black:  strptr("bob"),
		Wager:  Coin{Denom: "uscrt", Amount: 100},
	}
	transfers := Settle(g)
	if len(transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(transfers))
	}
	for i, to := range []string{"alice", "bob"} {
		if transfers[i].To != to {
			t.Errorf("transfer %d to %s, want %s", i, transfers[i].To, to)
		}
		if transfers[i].Amount.Amount != 100 || transfers[i].Amount.Denom != "uscrt" {
			t.Errorf("transfer %d amount %+v, want 100 uscrt", i, transfers[i].Amount)
		}
	}
}

func TestSettleWinnerTakesPot(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		winner string
	}{
		{"white wins", StatusWhiteWins, "alice"},
		{"black resigned", StatusBlackResigned, "alice"},
		{"black wins", StatusBlackWins, "bob"},
		{"white resigned", StatusWhiteResigned, "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &Game{
				Status: tc.status,
				White:  strptr("alice"),
				Black:  strptr("bob"),
				Wager:  Coin{Denom: "uscrt", Amount: 50},
			}
			transfers := Settle(g)
			if len(transfers) != 1 {
				t.Fatalf("expected 1 transfer, got %d", len(transfers))
			}
			if transfers[0].To != tc.winner {
				t.Errorf("paid %s, want %s", transfers[0].To, tc.winner)
			}
			if transfers[0].Amount.Amount != 100 {
				t.Errorf("amount %d, want 100", transfers[0].Amount.Amount)
			}
		})
	}
}

func TestSettleNoPayout(t *testing.T) {
	cases := []struct {
		name string
		game *Game
	}{
		{"nil game", nil},
		{"pending", &Game{Status: StatusPending, White: strptr("a"), Wager: Coin{Denom: "uscrt", Amount: 5}}},
		{"active", &Game{Status: StatusActive, White: strptr("a"), Black: strptr("b"), Wager: Coin{Denom: "uscrt", Amount: 5}}},
		{"zero wager", &Game{Status: StatusWhiteWins, White: strptr("a"), Black: strptr("b")}},
		{"stalemate missing seat", &Game{Status: StatusStalemate, White: strptr("a"), Wager: Coin{Denom: "uscrt", Amount: 5}}},
		{"winner seat unbound", &Game{Status: StatusWhiteWins, Black: strptr("b"), Wager: Coin{Denom: "uscrt", Amount: 5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if transfers := Settle(tc.game); len(transfers) != 0 {
				t.Fatalf("expected no transfers, got %+v", transfers)
			}
		})
	}
}

func TestSettleIsPure(t *testing.T) {
	g := &Game{
		Status: StatusStalemate,
		White:  strptr("alice"),
		Black:  strptr("bob"),
		Wager:  Coin{Denom: "uscrt", Amount: 100},
	}
	before := *g
	_ = Settle(g)
	if *g != before {
		t.Errorf("Settle mutated its input: %+v != %+v", *g, before)
	}
}
