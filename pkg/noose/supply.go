package noose

// IsSupplied reports whether t can trace a chain of same-owner living tokens
// back to its sovereign, each hop within Config.SupplyRange, in no more than
// Config.MaxSupplyHops hops. A sovereign is always considered supplied.
func IsSupplied(s *State, t *Token) bool {
	if t.IsSovereign() {
		return true
	}
	p := s.Players[t.Owner]
	sov := p.Sovereign()
	if sov == nil || !sov.Alive {
		return false
	}
	return hasSupplyChain(s, p, t, sov, s.Config.MaxSupplyHops)
}

// hasSupplyChain does a bounded breadth-first search over same-owner living
// tokens, where an edge exists between two tokens within SupplyRange of each
// other, looking for a path from t to sovereign within maxHops.
func hasSupplyChain(s *State, p *Player, t, sov *Token, maxHops int) bool {
	if maxHops <= 0 {
		return false
	}
	if t.Position.Distance(sov.Position) <= s.Config.SupplyRange {
		return true
	}

	visited := map[string]bool{t.ID: true}
	frontier := []*Token{t}
	for hop := 1; hop < maxHops; hop++ {
		var next []*Token
		for _, cur := range frontier {
			for _, other := range p.AliveTokens() {
				if visited[other.ID] || other.ID == cur.ID {
					continue
				}
				if cur.Position.Distance(other.Position) > s.Config.SupplyRange {
					continue
				}
				if other.Position.Distance(sov.Position) <= s.Config.SupplyRange {
					return true
				}
				visited[other.ID] = true
				next = append(next, other)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			return false
		}
	}
	return false
}
