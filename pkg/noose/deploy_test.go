package noose

import "testing"

func powersFor(s *State, playerID string, powers ...int) map[string]int {
	out := make(map[string]int)
	for i, t := range s.Players[playerID].Tokens {
		out[t.ID] = powers[i]
	}
	return out
}

func TestDeployAssignsPermutation(t *testing.T) {
	s := newTestState()
	if err := Deploy(s, "alice", powersFor(s, "alice", 1, 5, 4, 2, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[int]bool)
	for _, tok := range s.Players["alice"].Tokens {
		seen[tok.Power] = true
	}
	for p := 1; p <= 5; p++ {
		if !seen[p] {
			t.Errorf("power %d was never assigned", p)
		}
	}
	if s.Phase != PhaseDeploy {
		t.Errorf("phase should stay deploy until both sides deploy, got %s", s.Phase)
	}
}

func TestDeployAdvancesPhaseWhenBothDeployed(t *testing.T) {
	s := newTestState()
	if err := Deploy(s, "alice", powersFor(s, "alice", 1, 2, 3, 4, 5)); err != nil {
		t.Fatalf("alice deploy: %v", err)
	}
	if err := Deploy(s, "bob", powersFor(s, "bob", 5, 4, 3, 2, 1)); err != nil {
		t.Fatalf("bob deploy: %v", err)
	}
	if s.Phase != PhasePlan {
		t.Errorf("expected phase plan, got %s", s.Phase)
	}
	if s.Turn != 1 {
		t.Errorf("expected turn 1, got %d", s.Turn)
	}
}

func TestDeployRejectsDuplicatePowers(t *testing.T) {
	s := newTestState()
	err := Deploy(s, "alice", powersFor(s, "alice", 1, 1, 3, 4, 5))
	if err == nil {
		t.Fatal("expected error for duplicate power values")
	}
	if _, ok := err.(*BadDeploymentError); !ok {
		t.Errorf("expected *BadDeploymentError, got %T", err)
	}
}

func TestDeployRejectsForeignToken(t *testing.T) {
	s := newTestState()
	powers := powersFor(s, "alice", 1, 2, 3, 4, 5)
	delete(powers, s.Players["alice"].Tokens[0].ID)
	powers[s.Players["bob"].Tokens[0].ID] = 1
	if err := Deploy(s, "alice", powers); err == nil {
		t.Fatal("expected error assigning a power to an enemy token")
	}
}

func TestDeployRejectsIncompleteAssignment(t *testing.T) {
	s := newTestState()
	powers := powersFor(s, "alice", 1, 2, 3, 4, 5)
	delete(powers, s.Players["alice"].Tokens[4].ID)
	if err := Deploy(s, "alice", powers); err == nil {
		t.Fatal("expected error for incomplete assignment")
	}
}

func TestDeployTwiceRejected(t *testing.T) {
	s := newTestState()
	if err := Deploy(s, "alice", powersFor(s, "alice", 1, 2, 3, 4, 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Deploy(s, "alice", powersFor(s, "alice", 1, 2, 3, 4, 5)); err == nil {
		t.Fatal("expected error redeploying an already-deployed player")
	}
}

func TestDeployUnknownPlayerIsContractError(t *testing.T) {
	s := newTestState()
	err := Deploy(s, "carol", map[string]int{})
	if err == nil {
		t.Fatal("expected error for unknown player")
	}
	if _, ok := err.(*ContractError); !ok {
		t.Errorf("expected *ContractError, got %T", err)
	}
}
