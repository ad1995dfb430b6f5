package noose

// TokenView is what a player is permitted to know about one token. Power is
// only populated when it can legitimately be known: always for the
// viewer's own tokens, and for enemy tokens only once Revealed (public) or
// via the viewer's private scouting knowledge.
type TokenView struct {
	ID        string
	Owner     string
	Position  Hex
	Power     int    // 0 means unknown to this viewer
	Source    string // "combat" or "scouted" when Power is set for an enemy
	Revealed  bool
	Fortified bool
	HasSupply bool            // only meaningful for own tokens
	Known     *PowerKnowledge // non-nil only for enemy tokens the viewer has scouted
}

// View is the complete fog-of-war projection of a State for one player: it
// carries everything that player is entitled to see, and nothing else. It
// is the only representation ever handed to an agent or a renderer — core
// game code must never leak a *State to untrusted consumers.
type View struct {
	Turn         int
	Phase        Phase
	Player       string
	Opponent     string
	Shih         int
	OpponentShih int
	MaxShih      int
	Board        *Board // terrain is always fully visible; only tokens carry fog

	ShrinkStage     int
	DominationTurns map[string]int

	OwnTokens   []TokenView
	EnemyTokens []TokenView // only enemy tokens within visibility range, ambushers excluded
	Events      []Event     // this player's visible slice of history
	Finished    bool
	Winner      string
	VictoryType string
}

// ViewFor projects s into the fog-of-war view for playerID. An enemy token
// is included only while within VisibilityRange of one of the viewer's
// living tokens and not currently under Ambush; ambushed tokens are hidden
// even in range.
func ViewFor(s *State, playerID string) *View {
	p := s.Players[playerID]
	opponentID := s.Opponent(playerID)
	opp := s.Players[opponentID]

	v := &View{
		Turn:         s.Turn,
		Phase:        s.Phase,
		Player:       playerID,
		Opponent:     opponentID,
		Shih:         p.Shih,
		OpponentShih: opp.Shih,
		MaxShih:      s.Config.MaxShih,
		Board:        s.Board,
		Finished:     s.Finished(),
		Winner:       s.Winner,
		VictoryType:  s.VictoryType,
		ShrinkStage:  s.ShrinkStage,
		DominationTurns: map[string]int{
			playerID:   p.DominationStreak,
			opponentID: opp.DominationStreak,
		},
	}

	for _, t := range p.Tokens {
		if !t.Alive {
			continue
		}
		v.OwnTokens = append(v.OwnTokens, TokenView{
			ID: t.ID, Owner: t.Owner, Position: t.Position,
			Power: t.Power, Revealed: t.Revealed,
			Fortified: t.Fortified, HasSupply: IsSupplied(s, t),
		})
	}

	for _, t := range opp.Tokens {
		if !t.Alive || t.Ambushing {
			continue
		}
		if !withinVisibility(s, p, t.Position) {
			continue
		}
		tv := TokenView{ID: t.ID, Owner: t.Owner, Position: t.Position, Revealed: t.Revealed}
		if t.Revealed {
			tv.Power = t.Power
			tv.Source = "combat"
		} else if k, ok := p.KnownEnemyPowers[t.ID]; ok {
			kc := k
			tv.Known = &kc
			if k.Exact {
				tv.Power = k.Value
				tv.Source = "scouted"
			}
		}
		v.EnemyTokens = append(v.EnemyTokens, tv)
	}

	v.Events = redactEvents(s.Events, playerID)
	return v
}

// withinVisibility reports whether pos is inside VisibilityRange of any of
// p's living tokens.
func withinVisibility(s *State, p *Player, pos Hex) bool {
	for _, t := range p.AliveTokens() {
		if t.Position.Distance(pos) <= s.Config.VisibilityRange {
			return true
		}
	}
	return false
}

// redactEvents strips history the viewer is not entitled to: the
// opponent's private scout results. Combat events stay intact because
// combat publicly reveals both participants.
func redactEvents(events []Event, viewer string) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Private && e.Actor != viewer {
			continue
		}
		out = append(out, e)
	}
	return out
}
