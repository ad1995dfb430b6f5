package noose

import "testing"

func TestViewIncludesAllOwnTokens(t *testing.T) {
	s := newBattleState()
	v := ViewFor(s, "alice")
	if len(v.OwnTokens) != len(s.Players["alice"].AliveTokens()) {
		t.Fatalf("expected %d own tokens, got %d", len(s.Players["alice"].AliveTokens()), len(v.OwnTokens))
	}
	for _, tv := range v.OwnTokens {
		if tv.Power == 0 {
			t.Errorf("own token %s must carry its power", tv.ID)
		}
	}
}

func TestViewHidesEnemyBeyondVisibility(t *testing.T) {
	s := newBattleState()
	// Starting clusters sit in opposite corners, far outside visibility.
	v := ViewFor(s, "alice")
	if len(v.EnemyTokens) != 0 {
		t.Errorf("expected no visible enemies across the board, got %d", len(v.EnemyTokens))
	}
}

func TestViewShowsEnemyInRangeWithoutPower(t *testing.T) {
	s := newBattleState()
	moveTokenTo(s, "alice", 2, Hex{Q: 3, R: 3})
	enemy := moveTokenTo(s, "bob", 3, Hex{Q: 4, R: 3})
	v := ViewFor(s, "alice")
	var seen *TokenView
	for i := range v.EnemyTokens {
		if v.EnemyTokens[i].ID == enemy.ID {
			seen = &v.EnemyTokens[i]
		}
	}
	if seen == nil {
		t.Fatal("enemy within visibility range must appear in the view")
	}
	if seen.Power != 0 || seen.Source != "" {
		t.Errorf("unrevealed enemy must have no power in the view, got %d/%q", seen.Power, seen.Source)
	}
}

func TestViewRevealedEnemyCarriesCombatSource(t *testing.T) {
	s := newBattleState()
	moveTokenTo(s, "alice", 2, Hex{Q: 3, R: 3})
	enemy := moveTokenTo(s, "bob", 3, Hex{Q: 4, R: 3})
	enemy.Revealed = true
	v := ViewFor(s, "alice")
	for _, tv := range v.EnemyTokens {
		if tv.ID == enemy.ID {
			if tv.Power != enemy.Power || tv.Source != "combat" {
				t.Errorf("revealed enemy should show power %d via combat, got %d/%q", enemy.Power, tv.Power, tv.Source)
			}
			return
		}
	}
	t.Fatal("revealed enemy in range missing from view")
}

func TestViewScoutedEnemyCarriesScoutedSource(t *testing.T) {
	s := newBattleState()
	moveTokenTo(s, "alice", 2, Hex{Q: 3, R: 3})
	enemy := moveTokenTo(s, "bob", 3, Hex{Q: 4, R: 3})
	s.Players["alice"].KnownEnemyPowers[enemy.ID] = PowerKnowledge{Exact: true, Value: enemy.Power}
	v := ViewFor(s, "alice")
	for _, tv := range v.EnemyTokens {
		if tv.ID == enemy.ID {
			if tv.Power != enemy.Power || tv.Source != "scouted" {
				t.Errorf("scouted enemy should show power %d via scouted, got %d/%q", enemy.Power, tv.Power, tv.Source)
			}
			return
		}
	}
	t.Fatal("scouted enemy in range missing from view")
}

func TestViewHidesAmbushingEnemyEvenInRange(t *testing.T) {
	s := newBattleState()
	moveTokenTo(s, "alice", 2, Hex{Q: 3, R: 3})
	enemy := moveTokenTo(s, "bob", 3, Hex{Q: 4, R: 3})
	enemy.Ambushing = true
	v := ViewFor(s, "alice")
	for _, tv := range v.EnemyTokens {
		if tv.ID == enemy.ID {
			t.Fatal("ambushing enemy must be hidden from fog even in range")
		}
	}
}

func TestViewFiltersOpponentPrivateScoutEvents(t *testing.T) {
	s := newBattleState()
	s.record(Event{Kind: EventScout, Actor: "bob", TokenA: "bob_f2", TokenB: "alice_f3", Detail: "exact", Private: true})
	av := ViewFor(s, "alice")
	for _, e := range av.Events {
		if e.Kind == EventScout && e.Actor == "bob" {
			t.Fatal("opponent's private scout events must not leak into the view")
		}
	}
	bv := ViewFor(s, "bob")
	found := false
	for _, e := range bv.Events {
		if e.Kind == EventScout && e.Actor == "bob" {
			found = true
		}
	}
	if !found {
		t.Error("scouter must see its own scout event")
	}
}

func TestViewOpponentShihVisible(t *testing.T) {
	s := newBattleState()
	s.Players["bob"].Shih = 4
	v := ViewFor(s, "alice")
	if v.OpponentShih != 4 {
		t.Errorf("expected opponent shih 4, got %d", v.OpponentShih)
	}
}
