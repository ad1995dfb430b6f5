package noose

import "testing"

func TestGameResolvesOnlyWhenBothSubmitted(t *testing.T) {
	g := NewGame(DefaultConfig(), 13, "alice", "bob")
	for _, id := range []string{"alice", "bob"} {
		powers := make(map[string]int)
		for i, tok := range g.State.Players[id].Tokens {
			powers[tok.ID] = i + 1
		}
		if err := g.Deploy(id, powers); err != nil {
			t.Fatal(err)
		}
	}

	aliceTok := g.State.Players["alice"].Tokens[4] // sits at (2,0), free hex east
	res, err := g.SubmitOrders("alice", []Order{{
		Player: "alice", TokenID: aliceTok.ID, Type: OrderMove, Target: Hex{Q: 3, R: 0},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatal("turn must not resolve until both players submit")
	}
	if g.State.Turn != 1 {
		t.Fatalf("turn advanced early to %d", g.State.Turn)
	}

	res, err = g.SubmitOrders("bob", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil {
		t.Fatal("second submission must complete the turn")
	}
	if g.State.Turn != 2 {
		t.Errorf("expected turn 2 after upkeep, got %d", g.State.Turn)
	}
}

func TestGameRejectsOrdersBeforeDeployment(t *testing.T) {
	g := NewGame(DefaultConfig(), 14, "alice", "bob")
	_, err := g.SubmitOrders("alice", nil)
	if err == nil {
		t.Fatal("expected contract error before deployment")
	}
	if _, ok := err.(*ContractError); !ok {
		t.Errorf("expected *ContractError, got %T", err)
	}
}

func TestGameRejectsMismatchedSubmitter(t *testing.T) {
	g := NewGame(DefaultConfig(), 15, "alice", "bob")
	for _, id := range []string{"alice", "bob"} {
		powers := make(map[string]int)
		for i, tok := range g.State.Players[id].Tokens {
			powers[tok.ID] = i + 1
		}
		if err := g.Deploy(id, powers); err != nil {
			t.Fatal(err)
		}
	}
	_, err := g.SubmitOrders("alice", []Order{{Player: "bob", TokenID: "bob_f1", Type: OrderFortify}})
	if err == nil {
		t.Fatal("expected contract error for mismatched submitter")
	}
}
