package agent

import (
	"math/rand"

	"github.com/covertfive/noose/internal/telemetry"
	"github.com/covertfive/noose/pkg/noose"
)

// StatelessRationalAgent reasons only from the current turn's view: exact
// beliefs for currently revealed or scouted enemies, an even split over the
// band for band-scouted enemies, uniform otherwise,
// forgotten the moment the turn ends. It establishes the single-turn
// reasoning floor.
type StatelessRationalAgent struct {
	perfectComprehension
}

func (*StatelessRationalAgent) Name() string { return "baseline_stateless" }

func (*StatelessRationalAgent) Deploy(p *noose.Player, _ *rand.Rand) map[string]int {
	return frontLoadedDeployment(p)
}

func (a *StatelessRationalAgent) ObserveAndPlan(playerID string, s *noose.State, _ *rand.Rand) ([]noose.Order, *telemetry.AgentReport) {
	p := s.Players[playerID]
	v := noose.ViewFor(s, playerID)

	beliefs := make(map[string]telemetry.BeliefState, len(v.EnemyTokens))
	for _, tv := range v.EnemyTokens {
		switch {
		case tv.Power > 0:
			beliefs[tv.ID] = telemetry.PointMass(tv.Power)
		case tv.Known != nil && !tv.Known.Exact:
			beliefs[tv.ID] = telemetry.OverBand(tv.Known.Band)
		default:
			beliefs[tv.ID] = telemetry.Uniform()
		}
	}

	center := s.Board.Center()
	var orders []noose.Order
	for _, t := range sortedAlive(p) {
		if t.IsSovereign() {
			threatened := false
			for _, tv := range v.EnemyTokens {
				if tv.Position.Distance(t.Position) <= s.Config.VisibilityRange {
					threatened = true
					break
				}
			}
			if threatened && canOrder(s, p, t, noose.OrderFortify) {
				orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderFortify})
				continue
			}
		}
		if dest, ok := moveToward(s, t, center); ok {
			orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
		}
	}
	return orders, buildReport(s.Turn, playerID, a.Name(), beliefs, orders)
}
