package noose

import "sort"

// OrderError records one order dropped during resolution, keyed by its
// owner and token. Dropped orders never abort the turn.
type OrderError struct {
	Player  string
	TokenID string
	Reason  string
}

// Resolution is the outcome of one turn's full order batch.
type Resolution struct {
	Events            []Event
	Errors            []OrderError
	SovereignCaptured []string // owner ids whose sovereign fell this turn
}

// moveEntry is the dense per-token resolution record for one turn: the
// order it was given, its computed destination, and whether it is still
// eligible to move once conflicts have been arbitrated.
type moveEntry struct {
	token   *Token
	order   Order
	hasMove bool // Move or Charge
	dest    Hex
	bounced bool // lost a destination race or a swap; stays at origin
	settled bool // combat already resolved for this entry (swap/conflict)
}

// resolver holds the dense lookup (token id -> entry) used across the
// resolution pipeline: a sorted slice plus an id-indexed map, so each step
// is a single deterministic pass with O(1) entry lookups.
type resolver struct {
	s       *State
	res     *Resolution
	ordered []*moveEntry
	byID    map[string]*moveEntry
}

// Resolve adjudicates one turn's full order batch: per-order validation and
// cost payment, scouting, movement (with swap and destination-conflict
// arbitration), combat, and event recording, in that fixed order
// Ill-formed orders are dropped and recorded, never fatal;
// contract violations (wrong phase, unknown player or token) fail the call.
// Resolve mutates s in place and leaves it in the upkeep phase.
func Resolve(s *State, orders []Order) (*Resolution, error) {
	if s.Phase != PhasePlan {
		return nil, &ContractError{Message: "resolve called in phase " + string(s.Phase)}
	}
	for _, o := range orders {
		p := s.Players[o.Player]
		if p == nil {
			return nil, &ContractError{Message: "unknown player " + o.Player}
		}
		if p.TokenByID(o.TokenID) == nil {
			return nil, &ContractError{Message: "token " + o.TokenID + " not owned by " + o.Player}
		}
	}
	s.Phase = PhaseResolve

	start := len(s.Events)
	r := &resolver{s: s, res: &Resolution{}, byID: make(map[string]*moveEntry)}

	for _, t := range s.AllAlive() {
		t.Fortified = false
		t.Ambushing = false
	}

	// Step 1: validate and pay. Orders are admitted in submission order;
	// each valid order pays its cost immediately, so a player who overspends
	// loses only the orders that arrived after the pool ran dry.
	for _, o := range orders {
		if _, dup := r.byID[o.TokenID]; dup {
			r.drop(o, "token already has an order this turn")
			continue
		}
		if err := Validate(o, s); err != nil {
			r.drop(o, err.Error())
			continue
		}
		p := s.Players[o.Player]
		if cost := orderCost(s.Config, o.Type); !p.SpendShih(cost) {
			r.drop(o, "insufficient shih")
			continue
		}
		t := p.TokenByID(o.TokenID)
		e := &moveEntry{token: t, order: o}
		switch o.Type {
		case OrderFortify:
			t.Fortified = true
		case OrderAmbush:
			t.Ambushing = true
		}
		r.ordered = append(r.ordered, e)
		r.byID[t.ID] = e
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].token.ID < r.ordered[j].token.ID })

	r.resolveScouts()
	r.computeDestinations()
	r.resolveSwaps()
	r.resolveDestinationConflicts()
	r.applyMoves()
	r.resolveCombats()

	r.res.Events = append([]Event(nil), s.Events[start:]...)
	for _, e := range r.res.Events {
		if e.Kind == EventCapture {
			r.res.SovereignCaptured = append(r.res.SovereignCaptured, e.Actor)
		}
	}
	s.Phase = PhaseUpkeep
	return r.res, nil
}

func (r *resolver) drop(o Order, reason string) {
	r.res.Errors = append(r.res.Errors, OrderError{Player: o.Player, TokenID: o.TokenID, Reason: reason})
	r.s.record(Event{Kind: EventOrderErr, Actor: o.Player, TokenA: o.TokenID, Detail: reason})
}

// resolveScouts applies every Scout order: with probability ScoutAccuracy
// the scouter learns the exact power, otherwise a band of candidate powers.
// Results are private to the scouter unless the configuration makes exact
// reveals public.
func (r *resolver) resolveScouts() {
	for _, e := range r.ordered {
		if e.order.Type != OrderScout {
			continue
		}
		target := r.s.TokenByID(e.order.ScoutTargetID)
		if target == nil || !target.Alive {
			continue
		}
		owner := r.s.Players[e.token.Owner]
		if r.s.rng.chance(r.s.Config.ScoutAccuracy) {
			owner.KnownEnemyPowers[target.ID] = PowerKnowledge{Exact: true, Value: target.Power}
			if r.s.Config.ScoutRevealsPublicly {
				target.Revealed = true
			}
			r.s.record(Event{
				Kind: EventScout, Actor: e.token.Owner, TokenA: e.token.ID, TokenB: target.ID,
				PowerB: target.Power, Detail: "exact", Private: !r.s.Config.ScoutRevealsPublicly,
			})
		} else {
			band := scoutBand(r.s, target.Power)
			owner.KnownEnemyPowers[target.ID] = PowerKnowledge{Band: band}
			r.s.record(Event{
				Kind: EventScout, Actor: e.token.Owner, TokenA: e.token.ID, TokenB: target.ID,
				Detail: "band", Private: true,
			})
		}
	}
}

// scoutBand returns a sorted band of two or three candidate powers that
// contains the true power, for an inaccurate scout result.
func scoutBand(s *State, truePower int) []int {
	width := 2
	if s.rng.chance(0.5) {
		width = 3
	}
	lo := truePower - s.rng.Intn(width)
	if lo < 1 {
		lo = 1
	}
	if lo+width-1 > 5 {
		lo = 5 - width + 1
	}
	band := make([]int, 0, width)
	for v := lo; v < lo+width; v++ {
		band = append(band, v)
	}
	return band
}

func (r *resolver) computeDestinations() {
	for _, e := range r.ordered {
		switch e.order.Type {
		case OrderMove, OrderCharge:
			e.hasMove = true
			e.dest = e.order.Target
		default:
			e.dest = e.token.Position
		}
	}
}

// resolveSwaps detects two opposing tokens attempting to exchange hexes and
// fights them head-to-head once: both count as attackers (each keeping its
// Charge bonus if it charged), the loser dies or retreats, and the winner
// advances into the vacated hex. Exactly one combat event is emitted.
func (r *resolver) resolveSwaps() {
	for _, e := range r.ordered {
		if e.settled || !e.hasMove || !e.token.Alive {
			continue
		}
		other := r.s.TokenAt(e.dest)
		if other == nil || other.Owner == e.token.Owner {
			continue
		}
		oe := r.byID[other.ID]
		if oe == nil || oe.settled || !oe.hasMove || oe.dest != e.token.Position {
			continue
		}
		e.settled = true
		oe.settled = true
		e.bounced = true
		oe.bounced = true

		origin, otherOrigin := e.token.Position, oe.token.Position
		out := fight(r.s, e.token, oe.token, e.order.Type, oe.order.Type, false)
		r.s.record(Event{
			Kind: EventCombat, Actor: e.token.Owner, TokenA: e.token.ID, TokenB: oe.token.ID,
			PowerA: e.token.Power, PowerB: oe.token.Power, EffA: out.attackerEff, EffB: out.defenderEff,
			Outcome: swapOutcomeLabel(out, e.token), Detail: "swap",
		})
		if out.tie {
			continue // both hold their original hexes
		}
		survived := applyLoss(r.s, out)
		// Winner advances into the hex the loser vacated.
		var vacated Hex
		if out.loser == e.token {
			vacated = origin
		} else {
			vacated = otherOrigin
		}
		if !survived || r.s.TokenAt(vacated) == nil {
			we := r.byID[out.winner.ID]
			from := out.winner.Position
			out.winner.Position = vacated
			we.dest = vacated
			r.s.record(Event{Kind: EventMove, Actor: out.winner.Owner, TokenA: out.winner.ID, From: from, To: vacated})
		}
	}
}

func swapOutcomeLabel(out combatOutcome, first *Token) string {
	switch {
	case out.tie:
		return "tie"
	case out.winner == first:
		return "attacker_wins"
	default:
		return "defender_wins"
	}
}

// resolveDestinationConflicts arbitrates hexes that two or more moving
// tokens still target. Same-owner groups pick a single mover by lowest
// token id; mixed-owner groups fight a multi-way combat with the hex's
// defender (if any) as an extra participant.
func (r *resolver) resolveDestinationConflicts() {
	byDest := make(map[Hex][]*moveEntry)
	var dests []Hex
	for _, e := range r.ordered {
		if e.hasMove && !e.bounced && !e.settled && e.token.Alive {
			if len(byDest[e.dest]) == 0 {
				dests = append(dests, e.dest)
			}
			byDest[e.dest] = append(byDest[e.dest], e)
		}
	}
	sort.Slice(dests, func(i, j int) bool {
		if dests[i].Q != dests[j].Q {
			return dests[i].Q < dests[j].Q
		}
		return dests[i].R < dests[j].R
	})

	for _, dest := range dests {
		group := byDest[dest]
		if len(group) < 2 {
			continue
		}
		mixed := false
		for _, e := range group[1:] {
			if e.token.Owner != group[0].token.Owner {
				mixed = true
				break
			}
		}
		if !mixed {
			// Stable tiebreak: the lexicographically-lowest token id moves,
			// the rest hold in place. group is already sorted by token id.
			for _, e := range group[1:] {
				e.bounced = true
			}
			continue
		}
		r.resolveContestedHex(dest, group)
	}
}

// resolveContestedHex fights a multi-way combat over dest between every
// mover targeting it plus the defender already occupying it, if any. The
// strongest effective power wins; every loser retreats or dies by its gap
// to the winner; a tie for the top sends all involved away from the hex.
func (r *resolver) resolveContestedHex(dest Hex, movers []*moveEntry) {
	type participant struct {
		entry    *moveEntry // nil for the standing defender
		token    *Token
		order    OrderType
		defender bool
		eff      int
	}
	var parts []participant
	for _, e := range movers {
		e.settled = true
		e.bounced = true
		parts = append(parts, participant{entry: e, token: e.token, order: e.order.Type})
	}
	if occ := r.s.TokenAt(dest); occ != nil {
		var occOrder OrderType
		if oe := r.byID[occ.ID]; oe != nil {
			occOrder = oe.order.Type
			oe.settled = true
		}
		parts = append(parts, participant{token: occ, order: occOrder, defender: true})
	}

	best, bestCount := -1<<31, 0
	for i := range parts {
		p := &parts[i]
		p.eff = effectivePower(r.s, p.token, p.order, p.defender, r.s.rng.combatSwing())
		p.token.Revealed = true
		if p.eff > best {
			best, bestCount = p.eff, 1
		} else if p.eff == best {
			bestCount++
		}
	}

	var winner *participant
	if bestCount == 1 {
		for i := range parts {
			if parts[i].eff == best {
				winner = &parts[i]
				break
			}
		}
	}

	for i := range parts {
		p := &parts[i]
		if winner != nil && p == winner {
			continue
		}
		if winner != nil {
			out := combatOutcome{
				winner:     winner.token,
				loser:      p.token,
				eliminated: best-p.eff > r.s.Config.RetreatThreshold,
			}
			applyLoss(r.s, out)
		} else if p.defender {
			// Tied contest: everyone moves one hex away from the contested
			// hex. Movers simply hold their origins; the standing defender
			// must leave.
			if to, ok := retreatHex(r.s, p.token, dest); ok {
				from := p.token.Position
				p.token.Position = to
				r.s.record(Event{Kind: EventRetreat, Actor: p.token.Owner, TokenA: p.token.ID, From: from, To: to})
			} else {
				p.token.Alive = false
				r.s.record(Event{Kind: EventElim, Actor: p.token.Owner, TokenA: p.token.ID})
			}
		}
	}

	attacker, defender := parts[0], parts[len(parts)-1]
	outcome := "tie"
	if winner != nil {
		if winner.defender {
			outcome = "defender_wins"
		} else {
			outcome = "attacker_wins"
		}
	}
	r.s.record(Event{
		Kind: EventCombat, Actor: attacker.token.Owner,
		TokenA: attacker.token.ID, TokenB: defender.token.ID,
		PowerA: attacker.token.Power, PowerB: defender.token.Power,
		EffA: attacker.eff, EffB: defender.eff,
		Outcome: outcome, Detail: "contested", To: dest,
	})

	if winner != nil && winner.entry != nil && r.s.TokenAt(dest) == nil && winner.token.Alive {
		from := winner.token.Position
		winner.token.Position = dest
		r.s.record(Event{Kind: EventMove, Actor: winner.token.Owner, TokenA: winner.token.ID, From: from, To: dest})
	}
}

// applyMoves settles every remaining uncontested Move/Charge into an empty
// hex. Enemy-occupied destinations are handled by resolveCombats;
// friendly-occupied destinations cancel the move.
func (r *resolver) applyMoves() {
	for _, e := range r.ordered {
		if !e.hasMove || e.bounced || e.settled || !e.token.Alive {
			continue
		}
		occ := r.s.TokenAt(e.dest)
		if occ != nil {
			if occ.Owner == e.token.Owner {
				e.bounced = true // never settle onto a friendly token
			}
			continue // enemy-occupied: resolveCombats takes it from here
		}
		origin := e.token.Position
		e.token.Position = e.dest
		e.settled = true
		r.s.record(Event{Kind: EventMove, Actor: e.token.Owner, TokenA: e.token.ID, From: origin, To: e.dest})
	}
}

// resolveCombats fights each remaining mover whose destination holds an
// enemy: the mover attacks, the occupant defends with its posture bonuses.
func (r *resolver) resolveCombats() {
	for _, e := range r.ordered {
		if !e.hasMove || e.bounced || e.settled || !e.token.Alive {
			continue
		}
		defender := r.s.TokenAt(e.dest)
		if defender == nil {
			// The occupant vacated the hex earlier this turn; take it.
			origin := e.token.Position
			e.token.Position = e.dest
			e.settled = true
			r.s.record(Event{Kind: EventMove, Actor: e.token.Owner, TokenA: e.token.ID, From: origin, To: e.dest})
			continue
		}
		if defender.Owner == e.token.Owner {
			continue
		}
		e.settled = true
		var defenderOrder OrderType // zero value carries no bonus in effectivePower
		if de := r.byID[defender.ID]; de != nil {
			defenderOrder = de.order.Type
		}
		origin := e.token.Position
		out := fight(r.s, e.token, defender, e.order.Type, defenderOrder, true)
		r.s.record(Event{
			Kind: EventCombat, Actor: e.token.Owner, TokenA: e.token.ID, TokenB: defender.ID,
			PowerA: e.token.Power, PowerB: defender.Power, EffA: out.attackerEff, EffB: out.defenderEff,
			Outcome: attackOutcomeLabel(out, e.token), To: e.dest,
		})
		if out.tie {
			// Both retreat: the attacker's retreat is its origin, and the
			// defender leaves the contested hex, which stays empty.
			if to, ok := retreatHex(r.s, defender, e.token.Position); ok {
				from := defender.Position
				defender.Position = to
				r.s.record(Event{Kind: EventRetreat, Actor: defender.Owner, TokenA: defender.ID, From: from, To: to})
			} else {
				defender.Alive = false
				r.s.record(Event{Kind: EventElim, Actor: defender.Owner, TokenA: defender.ID})
			}
			continue
		}
		applyLoss(r.s, out)
		if out.winner == e.token && r.s.TokenAt(e.dest) == nil {
			e.token.Position = e.dest
			r.s.record(Event{Kind: EventMove, Actor: e.token.Owner, TokenA: e.token.ID, From: origin, To: e.dest})
		}
	}
}

func attackOutcomeLabel(out combatOutcome, attacker *Token) string {
	switch {
	case out.tie:
		return "tie"
	case out.winner == attacker:
		return "attacker_wins"
	default:
		return "defender_wins"
	}
}
