// Package runner orchestrates benchmark games: it wires agents to the
// engine, captures telemetry, gates prompts through the integrity
// verifier, injects comprehension probes, scores each finished game, and
// aggregates results across the (agent, opponent, seed) grid.
package runner

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/covertfive/noose/internal/agent"
	"github.com/covertfive/noose/internal/integrity"
	"github.com/covertfive/noose/internal/logger"
	"github.com/covertfive/noose/internal/metrics"
	"github.com/covertfive/noose/internal/probe"
	"github.com/covertfive/noose/internal/render"
	"github.com/covertfive/noose/internal/telemetry"
	"github.com/covertfive/noose/pkg/noose"
)

// GameConfig describes one benchmark game.
type GameConfig struct {
	AgentName    string // plays p1, the measured side
	OpponentName string // plays p2
	Seed         int64
	Format       string // renderer used for probe prompts
	ProbeEvery   int    // run comprehension probes every k-th turn; 0 disables
	NProbes      int
	Rules        noose.Config
}

// GameResult is the scored outcome of one benchmark game.
type GameResult struct {
	GameID              string             `json:"game_id"`
	Agent               string             `json:"agent"`
	Opponent            string             `json:"opponent"`
	Seed                int64              `json:"seed"`
	Format              string             `json:"format"`
	Winner              string             `json:"winner"`
	VictoryType         string             `json:"victory_type"`
	Turns               int                `json:"turns"`
	Metrics             map[string]float64 `json:"metrics"`
	ComprehensionScore  float64            `json:"comprehension_score"`
	Flagged             bool               `json:"flagged"`
	IntegrityViolations int                `json:"integrity_violations"`

	Telemetry *telemetry.GameTelemetry `json:"-"`
}

// RunGame plays one full benchmark game to termination and scores it.
func RunGame(ctx context.Context, cfg GameConfig) (*GameResult, error) {
	p1Agent, err := agent.ForName(cfg.AgentName)
	if err != nil {
		return nil, err
	}
	p2Agent, err := agent.ForName(cfg.OpponentName)
	if err != nil {
		return nil, err
	}
	renderFn, ok := render.Formats[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", cfg.Format)
	}

	s := noose.NewState(cfg.Rules, cfg.Seed, "p1", "p2")
	s.ID = uuid.NewString()
	agents := map[string]agent.Agent{"p1": p1Agent, "p2": p2Agent}
	// Baseline agents draw from one per-game stream so a fixed seed fixes
	// the whole game; the engine's own stream is seeded separately inside
	// the state.
	agentRng := rand.New(rand.NewSource(cfg.Seed))

	for _, pid := range s.Order {
		if err := noose.Deploy(s, pid, agents[pid].Deploy(s.Players[pid], agentRng)); err != nil {
			return nil, fmt.Errorf("deploy %s: %w", pid, err)
		}
	}

	tel := &telemetry.GameTelemetry{
		GameID:     s.ID,
		P1Strategy: p1Agent.Name(),
		P2Strategy: p2Agent.Name(),
		Seed:       cfg.Seed,
	}
	result := &GameResult{
		GameID:   s.ID,
		Agent:    cfg.AgentName,
		Opponent: cfg.OpponentName,
		Seed:     cfg.Seed,
		Format:   cfg.Format,
	}

	var comprehensionScores []float64

	for s.Phase == noose.PhasePlan {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if cfg.ProbeEvery > 0 && s.Turn%cfg.ProbeEvery == 0 {
			for _, pid := range s.Order {
				score, violations := runProbeRound(s, pid, agents[pid], renderFn, cfg, tel)
				result.IntegrityViolations += violations
				if score >= 0 {
					comprehensionScores = append(comprehensionScores, score)
				}
			}
		}

		var orders []noose.Order
		for _, pid := range s.Order {
			batch, report := agents[pid].ObserveAndPlan(pid, s, agentRng)
			tel.AddReport(report)
			orders = append(orders, batch...)
		}

		res, err := noose.Resolve(s, orders)
		if err != nil {
			return nil, fmt.Errorf("resolve turn %d: %w", s.Turn, err)
		}
		tel.AddEventLog(toEventLog(s.Turn, res.Events))
		noose.Upkeep(s)
	}

	tel.Winner = s.Winner
	tel.VictoryType = s.VictoryType
	tel.Turns = s.Turn

	result.Winner = s.Winner
	result.VictoryType = s.VictoryType
	result.Turns = s.Turn
	result.Telemetry = tel

	groundTruth := s.GroundTruth("p1")
	for id, power := range s.GroundTruth("p2") {
		groundTruth[id] = power
	}
	result.Metrics = metrics.ComputeGameMetrics(tel, groundTruth)

	if len(comprehensionScores) > 0 {
		total := 0.0
		for _, sc := range comprehensionScores {
			total += sc
		}
		result.ComprehensionScore = total / float64(len(comprehensionScores))
		result.Flagged = result.ComprehensionScore < probe.ComprehensionThreshold
	} else {
		result.ComprehensionScore = 1
	}
	return result, nil
}

// runProbeRound renders the player's view, gates the prompt through the
// integrity verifier, and scores the agent's probe answers. A prompt with
// violations is disqualified: its probes are skipped and the violation
// count reported. Returns score -1 when no probes ran.
func runProbeRound(s *noose.State, pid string, ag agent.Agent, renderFn render.Func, cfg GameConfig, tel *telemetry.GameTelemetry) (float64, int) {
	responder, ok := ag.(agent.ProbeResponder)
	if !ok {
		return -1, 0
	}
	v := noose.ViewFor(s, pid)
	prompt := renderFn(v, cfg.Rules)
	if violations := integrity.VerifyPrompt(prompt, v, s, pid); len(violations) > 0 {
		gameLog := logger.ForGame(s.ID)
		for _, viol := range violations {
			gameLog.Warn().Str("player", pid).Str("violation", viol.String()).Msg("Prompt disqualified")
		}
		return -1, len(violations)
	}

	probes := probe.Generate(v, cfg.Rules, cfg.NProbes)
	if len(probes) == 0 {
		return -1, 0
	}
	responses := responder.AnswerProbes(v, probes)
	score := probe.Score(probes, responses)

	cr := &telemetry.ComprehensionResult{Turn: s.Turn, PlayerID: pid, Score: score}
	for i, pr := range probes {
		resp := ""
		if i < len(responses) {
			resp = responses[i]
		}
		cr.Probes = append(cr.Probes, telemetry.ProbeRecord{
			Question: pr.Question, Expected: pr.Expected,
			Response: resp, Correct: pr.Validate(resp),
		})
	}
	tel.AddComprehensionResult(cr)
	return score, 0
}

// toEventLog converts the engine's resolution events into the telemetry
// ground-truth log for one turn.
func toEventLog(turn int, events []noose.Event) *telemetry.EventLog {
	l := &telemetry.EventLog{Turn: turn}
	for _, e := range events {
		switch e.Kind {
		case noose.EventCombat:
			l.AddCombat(e.TokenA, e.TokenB, e.PowerA, e.PowerB, e.Outcome)
		case noose.EventScout:
			l.AddScoutReveal(e.TokenA, e.TokenB, e.Detail, e.PowerB)
		case noose.EventMove:
			l.AddMovement(e.TokenA, e.From.Q, e.From.R, e.To.Q, e.To.R)
		case noose.EventElim:
			if e.Detail == "caught in the noose" {
				l.AddNooseKill(e.TokenA, e.To.Q, e.To.R, false)
			}
		}
	}
	return l
}

// Config spans the full benchmark grid.
type Config struct {
	Agents     []string
	Opponents  []string
	Seeds      []int64
	Formats    []string
	ProbeEvery int
	NProbes    int
	Workers    int
	Rules      noose.Config
}

// Run plays every (agent, opponent, seed, format) combination, dispatching
// games across a bounded worker pool. Games share no mutable state, so
// results merge only after each game terminates; a cancelled context drops
// in-flight games without corrupting completed ones.
func Run(ctx context.Context, cfg Config) ([]*GameResult, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	type job struct{ game GameConfig }
	var jobs []job
	for _, agentName := range cfg.Agents {
		for _, oppName := range cfg.Opponents {
			for _, format := range cfg.Formats {
				for _, seed := range cfg.Seeds {
					jobs = append(jobs, job{GameConfig{
						AgentName:    agentName,
						OpponentName: oppName,
						Seed:         seed,
						Format:       format,
						ProbeEvery:   cfg.ProbeEvery,
						NProbes:      cfg.NProbes,
						Rules:        cfg.Rules,
					}})
				}
			}
		}
	}

	results := make([]*GameResult, len(jobs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, cfg.Workers)
	errCount := 0

	for i, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, gc GameConfig) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := RunGame(ctx, gc)
			if err != nil {
				log.Error().Err(err).Str("agent", gc.AgentName).Str("opponent", gc.OpponentName).Int64("seed", gc.Seed).Msg("Game failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}
			mu.Lock()
			results[idx] = result
			mu.Unlock()
			log.Info().
				Str("gameId", result.GameID).
				Str("agent", gc.AgentName).
				Str("opponent", gc.OpponentName).
				Str("winner", result.Winner).
				Str("victoryType", result.VictoryType).
				Int("turns", result.Turns).
				Msg("Game completed")
		}(i, j.game)
	}
	wg.Wait()

	var out []*GameResult
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 && errCount > 0 {
		return nil, fmt.Errorf("all %d games failed", errCount)
	}
	return out, nil
}

// Stats summarizes one metric over a result group: mean, standard
// deviation, and the 95%% confidence half-width 1.96*sigma/sqrt(n).
type Stats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	CI95 float64 `json:"ci95"`
	N    int     `json:"n"`
}

func computeStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	std := math.Sqrt(variance)
	return Stats{Mean: mean, Std: std, CI95: 1.96 * std / math.Sqrt(float64(n)), N: n}
}

// FormatSensitivity computes, per agent, the coefficient of variation of
// each metric's per-format mean, the cross-format validity check.
// Empty unless an agent was run under at least two formats.
func FormatSensitivity(results []*GameResult) map[string]map[string]float64 {
	perAgentFormat := make(map[string]map[string]map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		byFormat, ok := perAgentFormat[r.Agent]
		if !ok {
			byFormat = make(map[string]map[string][]float64)
			perAgentFormat[r.Agent] = byFormat
		}
		byMetric, ok := byFormat[r.Format]
		if !ok {
			byMetric = make(map[string][]float64)
			byFormat[r.Format] = byMetric
		}
		for name, value := range r.Metrics {
			byMetric[name] = append(byMetric[name], value)
		}
	}

	out := make(map[string]map[string]float64)
	for agentName, byFormat := range perAgentFormat {
		means := make(map[string]map[string]float64, len(byFormat))
		for format, byMetric := range byFormat {
			m := make(map[string]float64, len(byMetric))
			for name, values := range byMetric {
				m[name] = computeStats(values).Mean
			}
			means[format] = m
		}
		if cv := metrics.FormatSensitivity(means); len(cv) > 0 {
			out[agentName] = cv
		}
	}
	return out
}

// Aggregate groups results by agent and summarizes every metric plus the
// comprehension score. Aggregation is order-independent.
func Aggregate(results []*GameResult) map[string]map[string]Stats {
	byAgent := make(map[string]map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		group, ok := byAgent[r.Agent]
		if !ok {
			group = make(map[string][]float64)
			byAgent[r.Agent] = group
		}
		for name, value := range r.Metrics {
			group[name] = append(group[name], value)
		}
		group["comprehension_score"] = append(group["comprehension_score"], r.ComprehensionScore)
	}

	out := make(map[string]map[string]Stats, len(byAgent))
	for agentName, group := range byAgent {
		stats := make(map[string]Stats, len(group))
		for name, values := range group {
			stats[name] = computeStats(values)
		}
		out[agentName] = stats
	}
	return out
}
