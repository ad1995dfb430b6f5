package noose

import "sort"

// effectivePower computes a token's combat strength for this engagement:
// base power, plus its order's bonus, plus support from adjacent
// friendly tokens (capped), plus a terrain bonus when defending Difficult
// ground, plus a random swing in [-2, 2].
func effectivePower(s *State, t *Token, order OrderType, isDefender bool, swing int) int {
	power := t.Power

	switch order {
	case OrderCharge:
		if !isDefender {
			power += s.Config.ChargeAttackBonus
		}
	case OrderFortify:
		if isDefender {
			power += s.Config.FortifyBonus
		}
	case OrderAmbush:
		if isDefender {
			power += s.Config.AmbushBonus
		}
	}

	if isDefender {
		if mh := s.Board.Get(t.Position); mh != nil && mh.Terrain == Difficult {
			power += s.Config.DifficultDefenseBonus
		}
	}

	power += supportBonus(s, t, s.Config.MaxSupportBonus)
	power += swing
	return power
}

// supportBonus counts living, same-owner tokens adjacent to t (other than t
// itself), each contributing 1, capped at max.
func supportBonus(s *State, t *Token, max int) int {
	count := 0
	for _, n := range t.Position.Neighbors() {
		other := s.TokenAt(n)
		if other != nil && other.Owner == t.Owner && other.ID != t.ID {
			count++
		}
	}
	if count > max {
		count = max
	}
	return count
}

// combatOutcome is the result of resolving a fight between two tokens.
// On a tie both tokens survive and the contested hex is left empty; winner
// and loser are nil in that case.
type combatOutcome struct {
	winner      *Token
	loser       *Token
	tie         bool
	attackerEff int
	defenderEff int
	eliminated  bool // loser killed rather than retreating
}

// fight resolves combat between attacker (moving into defender's hex, or a
// swap participant) and defender. Both tokens are revealed regardless of
// outcome: combat always exposes power. The loser is eliminated when the
// effective-power gap exceeds RetreatThreshold, otherwise it retreats.
func fight(s *State, attacker, defender *Token, attackerOrder, defenderOrder OrderType, defenderDefends bool) combatOutcome {
	aEff := effectivePower(s, attacker, attackerOrder, false, s.rng.combatSwing())
	dEff := effectivePower(s, defender, defenderOrder, defenderDefends, s.rng.combatSwing())

	attacker.Revealed = true
	defender.Revealed = true

	out := combatOutcome{attackerEff: aEff, defenderEff: dEff}
	switch {
	case aEff == dEff:
		out.tie = true
	case aEff > dEff:
		out.winner, out.loser = attacker, defender
		out.eliminated = aEff-dEff > s.Config.RetreatThreshold
	default:
		out.winner, out.loser = defender, attacker
		out.eliminated = dEff-aEff > s.Config.RetreatThreshold
	}
	return out
}

// retreatHex picks the hex a loser falls back to: in bounds, unoccupied,
// not Scorched, preferring hexes farther from the winner, with a
// lexicographic (Q, R) tiebreak so resolution stays deterministic.
// ok is false when no legal hex exists, in which case the loser dies.
func retreatHex(s *State, loser *Token, winnerPos Hex) (Hex, bool) {
	candidates := loser.Position.Neighbors()
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Q != candidates[j].Q {
			return candidates[i].Q < candidates[j].Q
		}
		return candidates[i].R < candidates[j].R
	})

	best := Hex{}
	bestDist := -1
	for _, h := range candidates {
		mh := s.Board.Get(h)
		if mh == nil || mh.Terrain == Scorched {
			continue
		}
		if s.TokenAt(h) != nil {
			continue
		}
		if d := h.Distance(winnerPos); d > bestDist {
			best, bestDist = h, d
		}
	}
	return best, bestDist >= 0
}

// applyLoss moves the loser off the contested hex: a retreat to the best
// available hex, or elimination when the gap was decisive or no retreat
// exists. A sovereign that loses combat is captured outright; retreating
// does not save it. Returns true if the loser survived.
func applyLoss(s *State, out combatOutcome) bool {
	loser := out.loser
	if loser.IsSovereign() {
		loser.Alive = false
		s.record(Event{Kind: EventCapture, Actor: loser.Owner, TokenA: loser.ID, TokenB: out.winner.ID})
		return false
	}
	if !out.eliminated {
		if to, ok := retreatHex(s, loser, out.winner.Position); ok {
			from := loser.Position
			loser.Position = to
			s.record(Event{Kind: EventRetreat, Actor: loser.Owner, TokenA: loser.ID, From: from, To: to})
			return true
		}
	}
	loser.Alive = false
	s.record(Event{Kind: EventElim, Actor: loser.Owner, TokenA: loser.ID})
	return false
}
