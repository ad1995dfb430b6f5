package agent

import (
	"math/rand"

	"github.com/covertfive/noose/internal/telemetry"
	"github.com/covertfive/noose/pkg/noose"
)

// RandomAgent holds uniform beliefs and issues random legal moves: the
// absolute measurement floor. Any agent scoring near it is not reasoning
// at all.
type RandomAgent struct {
	perfectComprehension
}

func (*RandomAgent) Name() string { return "baseline_random" }

func (*RandomAgent) Deploy(p *noose.Player, rng *rand.Rand) map[string]int {
	return shuffledDeployment(p, rng)
}

func (a *RandomAgent) ObserveAndPlan(playerID string, s *noose.State, rng *rand.Rand) ([]noose.Order, *telemetry.AgentReport) {
	p := s.Players[playerID]
	v := noose.ViewFor(s, playerID)
	beliefs := uniformBeliefs(v)

	var orders []noose.Order
	for _, t := range sortedAlive(p) {
		moves := validMoves(s, t)
		if len(moves) == 0 {
			continue
		}
		orders = append(orders, noose.Order{
			Player: playerID, TokenID: t.ID, Type: noose.OrderMove,
			Target: moves[rng.Intn(len(moves))],
		})
	}
	return orders, buildReport(s.Turn, playerID, a.Name(), beliefs, orders)
}
