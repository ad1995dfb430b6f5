// Package agent implements the baseline ladder the benchmark is calibrated
// against: random, single-turn rational, perfect-memory Bayesian, and
// oracle. Each rung establishes an interpretable score level; an agent
// scoring below the single-turn floor is confused about the rules, and one
// exceeding perfect memory is doing genuine strategic inference.
package agent

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/covertfive/noose/internal/probe"
	"github.com/covertfive/noose/internal/telemetry"
	"github.com/covertfive/noose/pkg/noose"
)

// Agent generates a deployment and per-turn orders plus a belief report.
type Agent interface {
	Name() string
	Deploy(p *noose.Player, rng *rand.Rand) map[string]int
	ObserveAndPlan(playerID string, s *noose.State, rng *rand.Rand) ([]noose.Order, *telemetry.AgentReport)
}

// ProbeResponder answers comprehension probes. Baselines read the view
// perfectly, so they echo the derivable answer; an external agent would
// produce free text instead.
type ProbeResponder interface {
	AnswerProbes(v *noose.View, probes []probe.Probe) []string
}

// ForName returns a fresh agent for a ladder tier. Stateful tiers
// (perfect memory) must not be shared between games.
func ForName(name string) (Agent, error) {
	switch name {
	case "random":
		return &RandomAgent{}, nil
	case "stateless", "single_turn":
		return &StatelessRationalAgent{}, nil
	case "perfect_memory":
		return NewPerfectMemoryAgent(), nil
	case "oracle":
		return &OracleAgent{}, nil
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}

// LadderNames lists the baseline tiers from floor to ceiling.
func LadderNames() []string {
	return []string{"random", "stateless", "perfect_memory", "oracle"}
}

// perfectComprehension is embedded by every baseline: they answer probes
// from the same view the probes were generated from, so comprehension is
// exact by construction.
type perfectComprehension struct{}

func (perfectComprehension) AnswerProbes(_ *noose.View, probes []probe.Probe) []string {
	out := make([]string, len(probes))
	for i, p := range probes {
		out[i] = p.Expected
	}
	return out
}

// validMoves lists legal Move destinations for a token: in bounds, not
// Scorched, not occupied by a friendly token.
func validMoves(s *noose.State, t *noose.Token) []noose.Hex {
	var out []noose.Hex
	for _, h := range s.Board.Neighbors(t.Position) {
		if mh := s.Board.Get(h); mh == nil || mh.Terrain == noose.Scorched {
			continue
		}
		if occ := s.TokenAt(h); occ != nil && occ.Owner == t.Owner {
			continue
		}
		out = append(out, h)
	}
	return out
}

// moveToward returns the valid Move destination closest to target, or
// false when the token is boxed in.
func moveToward(s *noose.State, t *noose.Token, target noose.Hex) (noose.Hex, bool) {
	moves := validMoves(s, t)
	if len(moves) == 0 {
		return noose.Hex{}, false
	}
	best := moves[0]
	for _, m := range moves[1:] {
		if m.Distance(target) < best.Distance(target) {
			best = m
		}
	}
	return best, true
}

// canOrder reports whether a token can execute a paid order right now:
// enough shih and, where the order demands it, supply.
func canOrder(s *noose.State, p *noose.Player, t *noose.Token, typ noose.OrderType) bool {
	switch typ {
	case noose.OrderScout:
		if p.Shih < s.Config.ScoutCost {
			return false
		}
	case noose.OrderFortify:
		if p.Shih < s.Config.FortifyCost {
			return false
		}
	case noose.OrderAmbush:
		if p.Shih < s.Config.AmbushCost {
			return false
		}
	case noose.OrderCharge:
		if p.Shih < s.Config.ChargeCost {
			return false
		}
	}
	return noose.IsSupplied(s, t)
}

// uniformBeliefs assigns the uniform prior to every enemy visible in the
// view.
func uniformBeliefs(v *noose.View) map[string]telemetry.BeliefState {
	out := make(map[string]telemetry.BeliefState, len(v.EnemyTokens))
	for _, tv := range v.EnemyTokens {
		out[tv.ID] = telemetry.Uniform()
	}
	return out
}

// buildReport assembles the per-turn telemetry record from beliefs and the
// chosen order batch.
func buildReport(turn int, playerID, strategy string, beliefs map[string]telemetry.BeliefState, orders []noose.Order) *telemetry.AgentReport {
	strs := make([]string, len(orders))
	for i, o := range orders {
		strs[i] = o.Describe()
	}
	return &telemetry.AgentReport{
		Turn:         turn,
		PlayerID:     playerID,
		Strategy:     strategy,
		Beliefs:      beliefs,
		ChosenOrders: strs,
		Confidence:   0.5,
	}
}

// sortedAlive returns the player's living tokens in id order so agent
// decisions are deterministic for a fixed rng.
func sortedAlive(p *noose.Player) []*noose.Token {
	out := append([]*noose.Token(nil), p.AliveTokens()...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// shuffledDeployment assigns a random power permutation to the player's
// tokens.
func shuffledDeployment(p *noose.Player, rng *rand.Rand) map[string]int {
	powers := rng.Perm(len(p.Tokens))
	out := make(map[string]int, len(p.Tokens))
	for i, t := range p.Tokens {
		out[t.ID] = powers[i] + 1
	}
	return out
}

// frontLoadedDeployment places the sovereign mid-line with the strongest
// tokens leading: the fixed layout the heuristic tiers share.
func frontLoadedDeployment(p *noose.Player) map[string]int {
	layout := []int{5, 4, 1, 3, 2}
	out := make(map[string]int, len(p.Tokens))
	for i, t := range p.Tokens {
		out[t.ID] = layout[i%len(layout)]
	}
	return out
}
