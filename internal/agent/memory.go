package agent

import (
	"math/rand"

	"github.com/covertfive/noose/internal/telemetry"
	"github.com/covertfive/noose/pkg/noose"
)

// PerfectMemoryAgent is the observation-memory ceiling: it accumulates
// every reveal across turns and applies the permutation constraint — once
// a power is pinned to one enemy token it is removed from every other
// unknown token's candidate set and the remainder is renormalized. No
// strategic inference beyond direct observation.
type PerfectMemoryAgent struct {
	perfectComprehension
	known      map[string]int // enemy token id -> confirmed power
	eliminated map[int]bool   // powers confirmed assigned somewhere
}

// NewPerfectMemoryAgent returns a fresh memory; one instance serves
// exactly one game.
func NewPerfectMemoryAgent() *PerfectMemoryAgent {
	return &PerfectMemoryAgent{
		known:      make(map[string]int),
		eliminated: make(map[int]bool),
	}
}

func (*PerfectMemoryAgent) Name() string { return "baseline_perfect_memory" }

func (*PerfectMemoryAgent) Deploy(p *noose.Player, _ *rand.Rand) map[string]int {
	return frontLoadedDeployment(p)
}

func (a *PerfectMemoryAgent) ObserveAndPlan(playerID string, s *noose.State, _ *rand.Rand) ([]noose.Order, *telemetry.AgentReport) {
	p := s.Players[playerID]
	v := noose.ViewFor(s, playerID)

	for _, tv := range v.EnemyTokens {
		if tv.Power > 0 {
			a.known[tv.ID] = tv.Power
			a.eliminated[tv.Power] = true
		}
	}

	var remaining []int
	for power := 1; power <= 5; power++ {
		if !a.eliminated[power] {
			remaining = append(remaining, power)
		}
	}

	beliefs := make(map[string]telemetry.BeliefState, len(v.EnemyTokens))
	for _, tv := range v.EnemyTokens {
		if power, ok := a.known[tv.ID]; ok {
			beliefs[tv.ID] = telemetry.PointMass(power)
		} else if len(remaining) > 0 {
			beliefs[tv.ID] = telemetry.OverBand(remaining)
		} else {
			beliefs[tv.ID] = telemetry.Uniform()
		}
	}

	center := s.Board.Center()
	var orders []noose.Order
	for _, t := range sortedAlive(p) {
		if t.IsSovereign() {
			if canOrder(s, p, t, noose.OrderFortify) {
				orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderFortify})
			} else if dest, ok := moveToward(s, t, center); ok {
				orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
			}
			continue
		}

		// Attack a known-weaker enemy in reach.
		if dest, ok := a.weakTargetMove(s, t, v); ok {
			orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
			continue
		}

		// Scout the nearest enemy of unknown power.
		if target, ok := a.unknownNearby(s, t, v); ok && canOrder(s, p, t, noose.OrderScout) {
			orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderScout, ScoutTargetID: target})
			continue
		}

		if dest, ok := moveToward(s, t, center); ok {
			orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
		}
	}
	return orders, buildReport(s.Turn, playerID, a.Name(), beliefs, orders)
}

// weakTargetMove finds a step toward a visible enemy confirmed weaker than
// t, preferring the closest.
func (a *PerfectMemoryAgent) weakTargetMove(s *noose.State, t *noose.Token, v *noose.View) (noose.Hex, bool) {
	bestDist := 1 << 30
	var bestPos noose.Hex
	found := false
	for _, tv := range v.EnemyTokens {
		power, ok := a.known[tv.ID]
		if !ok || power >= t.Power {
			continue
		}
		if d := t.Position.Distance(tv.Position); d < bestDist {
			bestDist, bestPos, found = d, tv.Position, true
		}
	}
	if !found {
		return noose.Hex{}, false
	}
	return moveToward(s, t, bestPos)
}

// unknownNearby picks the closest visible enemy of unknown power within
// scout range.
func (a *PerfectMemoryAgent) unknownNearby(s *noose.State, t *noose.Token, v *noose.View) (string, bool) {
	bestDist := 1 << 30
	best := ""
	for _, tv := range v.EnemyTokens {
		if _, ok := a.known[tv.ID]; ok {
			continue
		}
		d := t.Position.Distance(tv.Position)
		if d <= s.Config.ScoutRange && d < bestDist {
			bestDist, best = d, tv.ID
		}
	}
	return best, best != ""
}
