package noose

import "strconv"

// Upkeep runs the post-resolution housekeeping for a turn: Noose shrink (on
// its interval), income, domination-streak tracking, and terminal-condition
// checks, in that order. When no terminal condition is met it
// advances the turn counter and returns the game to the plan phase.
func Upkeep(s *State) {
	if s.Phase == PhaseEnded {
		return
	}
	s.Phase = PhaseUpkeep
	if s.Config.ShrinkInterval > 0 && s.Turn > 0 && s.Turn%s.Config.ShrinkInterval == 0 {
		shrinkNoose(s)
	}
	payIncome(s)
	trackDomination(s)
	checkTerminal(s)
	if s.Phase != PhaseEnded {
		s.Turn++
		s.Phase = PhasePlan
	}
}

// chebyshev is the square-grid ring distance used by the Noose: the
// playfield contracts in rectangular rings around the center, not hex
// rings, so the corners go first.
func chebyshev(a, b Hex) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	if dq > dr {
		return dq
	}
	return dr
}

// shrinkNoose advances the shrink stage and scorches every hex whose ring
// distance from the center exceeds Side/2 - stage. The center itself is
// never scorched. Tokens caught on newly-scorched ground die; a sovereign
// caught there counts as captured.
func shrinkNoose(s *State) {
	s.ShrinkStage++
	b := s.Board
	center := b.Center()
	keep := b.Side/2 - s.ShrinkStage
	if keep < 0 {
		keep = 0
	}
	for r := 0; r < b.Side; r++ {
		for q := 0; q < b.Side; q++ {
			h := Hex{Q: q, R: r}
			mh := b.Hexes[h]
			if mh == nil || mh.Terrain == Scorched || chebyshev(h, center) <= keep {
				continue
			}
			mh.Terrain = Scorched
			s.record(Event{Kind: EventShrink, To: h})
			if t := s.TokenAt(h); t != nil {
				t.Alive = false
				s.record(Event{Kind: EventElim, Actor: t.Owner, TokenA: t.ID, Detail: "caught in the noose"})
				if t.IsSovereign() {
					s.record(Event{Kind: EventCapture, Actor: t.Owner, TokenA: t.ID, Detail: "noose"})
				}
			}
		}
	}
}

// payIncome credits each player base income plus a bonus per Contentious
// hex they currently occupy, clamped to MaxShih. A Contentious hex is
// controlled by the unique player whose living token stands on it.
func payIncome(s *State) {
	for _, id := range s.Order {
		p := s.Players[id]
		income := s.Config.BaseShihIncome
		for _, h := range s.Board.ContentiousHexes() {
			if t := s.TokenAt(h); t != nil && t.Owner == id {
				income += s.Config.ContentiousShihBonus
			}
		}
		p.AddShih(income, s.Config.MaxShih)
		s.record(Event{Kind: EventIncome, Actor: id, Detail: strconv.Itoa(income)})
	}
}

// trackDomination increments a player's streak while they hold enough
// Contentious hexes simultaneously, and resets it otherwise.
func trackDomination(s *State) {
	for _, id := range s.Order {
		p := s.Players[id]
		held := 0
		for _, h := range s.Board.ContentiousHexes() {
			if t := s.TokenAt(h); t != nil && t.Owner == id {
				held++
			}
		}
		if held >= s.Config.DominationHexesRequired {
			p.DominationStreak++
		} else {
			p.DominationStreak = 0
		}
	}
}

// checkTerminal evaluates the victory and draw conditions in a fixed
// order: sovereign capture (mutual destruction if both sovereigns are dead),
// elimination (mutual destruction if both sides are empty), domination,
// then the turn cap.
func checkTerminal(s *State) {
	finish := func(winner, victoryType string) {
		s.Phase = PhaseEnded
		s.Winner = winner
		s.VictoryType = victoryType
		s.record(Event{Kind: EventTerminal, Actor: winner, Detail: victoryType})
	}

	var sovereignDead, noTokens [2]bool
	for i, id := range s.Order {
		p := s.Players[id]
		sov := p.Sovereign()
		sovereignDead[i] = sov == nil || !sov.Alive
		noTokens[i] = len(p.AliveTokens()) == 0
	}

	switch {
	case sovereignDead[0] && sovereignDead[1]:
		finish("", VictoryMutualDestruction)
		return
	case sovereignDead[0]:
		finish(s.Order[1], VictorySovereignCapture)
		return
	case sovereignDead[1]:
		finish(s.Order[0], VictorySovereignCapture)
		return
	}
	switch {
	case noTokens[0] && noTokens[1]:
		finish("", VictoryMutualDestruction)
		return
	case noTokens[0]:
		finish(s.Order[1], VictoryElimination)
		return
	case noTokens[1]:
		finish(s.Order[0], VictoryElimination)
		return
	}
	for _, id := range s.Order {
		if s.Players[id].DominationStreak >= s.Config.DominationTurnsRequired {
			finish(id, VictoryDomination)
			return
		}
	}
	if s.Config.MaxTurns > 0 && s.Turn >= s.Config.MaxTurns {
		finish("", VictoryTimeout)
		return
	}
}
