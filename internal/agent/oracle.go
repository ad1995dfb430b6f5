package agent

import (
	"math/rand"

	"github.com/covertfive/noose/internal/telemetry"
	"github.com/covertfive/noose/pkg/noose"
)

// OracleAgent reads the full privileged state and emits point-mass beliefs
// at the true powers: the absolute ceiling (Brier 0, log loss 0). Its
// access to unfiltered state is a harness privilege, not an engine
// capability.
type OracleAgent struct {
	perfectComprehension
}

func (*OracleAgent) Name() string { return "baseline_oracle" }

func (*OracleAgent) Deploy(p *noose.Player, _ *rand.Rand) map[string]int {
	return frontLoadedDeployment(p)
}

func (a *OracleAgent) ObserveAndPlan(playerID string, s *noose.State, _ *rand.Rand) ([]noose.Order, *telemetry.AgentReport) {
	p := s.Players[playerID]
	opp := s.Players[s.Opponent(playerID)]

	beliefs := make(map[string]telemetry.BeliefState)
	var enemySovereign *noose.Token
	for _, e := range opp.AliveTokens() {
		beliefs[e.ID] = telemetry.PointMass(e.Power)
		if e.IsSovereign() {
			enemySovereign = e
		}
	}

	var orders []noose.Order
	for _, t := range sortedAlive(p) {
		if t.IsSovereign() {
			if canOrder(s, p, t, noose.OrderFortify) {
				orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderFortify})
			} else if dest, ok := retreatToward(s, t, playerID); ok {
				orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
			}
			continue
		}

		if enemySovereign != nil && t.Power >= 4 {
			if t.Position.Distance(enemySovereign.Position) <= 2 && canOrder(s, p, t, noose.OrderCharge) {
				orders = append(orders, noose.Order{
					Player: playerID, TokenID: t.ID, Type: noose.OrderCharge, Target: enemySovereign.Position,
				})
				continue
			}
			if dest, ok := moveToward(s, t, enemySovereign.Position); ok {
				orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
				continue
			}
		}

		if dest, ok := moveToward(s, t, s.Board.Center()); ok {
			orders = append(orders, noose.Order{Player: playerID, TokenID: t.ID, Type: noose.OrderMove, Target: dest})
		}
	}

	report := buildReport(s.Turn, playerID, a.Name(), beliefs, orders)
	report.Confidence = 1
	return orders, report
}

// retreatToward steps the sovereign back toward its own corner.
func retreatToward(s *noose.State, t *noose.Token, playerID string) (noose.Hex, bool) {
	corner := noose.Hex{Q: 0, R: 0}
	if playerID == s.Order[len(s.Order)-1] {
		corner = noose.Hex{Q: s.Board.Side - 1, R: s.Board.Side - 1}
	}
	return moveToward(s, t, corner)
}
