// Package telemetry defines the per-turn records the benchmark harness
// captures while a game runs: belief distributions, agent reports, ground
// truth event logs, and comprehension probe outcomes. Every record
// serializes to JSONL so two implementations' outputs can be diffed
// line by line.
package telemetry

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
)

// BeliefState is a probability distribution over an enemy token's hidden
// power value, keyed 1..5. Distributions are normalized by construction or
// via Normalized.
type BeliefState struct {
	Distribution map[int]float64
}

// Uniform returns the uniform prior over powers 1-5.
func Uniform() BeliefState {
	d := make(map[int]float64, 5)
	for p := 1; p <= 5; p++ {
		d[p] = 0.2
	}
	return BeliefState{Distribution: d}
}

// PointMass returns certainty on a single power.
func PointMass(power int) BeliefState {
	d := make(map[int]float64, 5)
	for p := 1; p <= 5; p++ {
		d[p] = 0
	}
	d[power] = 1
	return BeliefState{Distribution: d}
}

// OverBand spreads probability uniformly over a candidate set.
func OverBand(band []int) BeliefState {
	d := make(map[int]float64, 5)
	for p := 1; p <= 5; p++ {
		d[p] = 0
	}
	if len(band) > 0 {
		share := 1.0 / float64(len(band))
		for _, p := range band {
			d[p] = share
		}
	}
	return BeliefState{Distribution: d}
}

// Entropy is the Shannon entropy H = -sum(p * log2(p)) in bits.
func (b BeliefState) Entropy() float64 {
	h := 0.0
	for _, p := range b.Distribution {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// MaxProbability returns the distribution's largest probability.
func (b BeliefState) MaxProbability() float64 {
	max := 0.0
	for _, p := range b.Distribution {
		if p > max {
			max = p
		}
	}
	return max
}

// PredictedPower returns the most likely power, lowest power winning ties,
// or 0 for an empty distribution.
func (b BeliefState) PredictedPower() int {
	best, bestP := 0, -1.0
	for power := 1; power <= 5; power++ {
		if p, ok := b.Distribution[power]; ok && p > bestP {
			best, bestP = power, p
		}
	}
	return best
}

// Normalized returns a copy whose probabilities sum to 1. A zero-mass
// distribution normalizes to uniform.
func (b BeliefState) Normalized() BeliefState {
	total := 0.0
	for _, p := range b.Distribution {
		total += p
	}
	if total == 0 {
		return Uniform()
	}
	d := make(map[int]float64, len(b.Distribution))
	for power, p := range b.Distribution {
		d[power] = p / total
	}
	return BeliefState{Distribution: d}
}

// MarshalJSON renders the distribution with string power keys, the shape
// the JSONL contract uses.
func (b BeliefState) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(b.Distribution))
	for power, p := range b.Distribution {
		out[strconv.Itoa(power)] = p
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the string-keyed shape MarshalJSON produces.
func (b *BeliefState) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Distribution = make(map[int]float64, len(raw))
	for k, v := range raw {
		power, err := strconv.Atoi(k)
		if err != nil {
			return err
		}
		b.Distribution[power] = v
	}
	return nil
}

// AgentReport is the primary telemetry unit: one agent's beliefs and
// chosen orders for one turn. RawReasoning is kept in memory for analysis
// but never serialized.
type AgentReport struct {
	Turn         int                    `json:"turn"`
	PlayerID     string                 `json:"player_id"`
	Strategy     string                 `json:"strategy"`
	Beliefs      map[string]BeliefState `json:"beliefs"`
	ChosenOrders []string               `json:"chosen_orders"`
	Confidence   float64                `json:"confidence"`
	RawReasoning string                 `json:"-"`
}

// BeliefEntropy is the average entropy across all belief distributions.
func (r *AgentReport) BeliefEntropy() float64 {
	if len(r.Beliefs) == 0 {
		return 0
	}
	total := 0.0
	for _, b := range r.Beliefs {
		total += b.Entropy()
	}
	return total / float64(len(r.Beliefs))
}

// Event is one ground-truth entry in a turn's EventLog. Fields not
// relevant to Type are omitted from the serialized record.
type Event struct {
	Type string `json:"type"`

	Attacker      string `json:"attacker,omitempty"`
	Defender      string `json:"defender,omitempty"`
	AttackerPower int    `json:"attacker_power,omitempty"`
	DefenderPower int    `json:"defender_power,omitempty"`
	Result        string `json:"result,omitempty"`

	Scout       string `json:"scout,omitempty"`
	Target      string `json:"target,omitempty"`
	Revealed    string `json:"revealed,omitempty"`
	ActualPower int    `json:"actual_power,omitempty"`

	Force        string `json:"force,omitempty"`
	Position     []int  `json:"position,omitempty"`
	WasSovereign bool   `json:"was_sovereign,omitempty"`
	From         []int  `json:"from,omitempty"`
	To           []int  `json:"to,omitempty"`
}

// EventLog captures one turn's game events, the ground truth that belief
// quality is scored against.
type EventLog struct {
	Turn   int     `json:"turn"`
	Events []Event `json:"events"`
}

// AddCombat appends a combat outcome.
func (l *EventLog) AddCombat(attacker, defender string, attackerPower, defenderPower int, result string) {
	l.Events = append(l.Events, Event{
		Type: "combat", Attacker: attacker, Defender: defender,
		AttackerPower: attackerPower, DefenderPower: defenderPower, Result: result,
	})
}

// AddScoutReveal appends a scout result; revealed describes what the
// scouter learned ("exact" or "band").
func (l *EventLog) AddScoutReveal(scout, target, revealed string, actualPower int) {
	l.Events = append(l.Events, Event{
		Type: "scout_reveal", Scout: scout, Target: target,
		Revealed: revealed, ActualPower: actualPower,
	})
}

// AddNooseKill appends a shrink casualty.
func (l *EventLog) AddNooseKill(force string, q, r int, wasSovereign bool) {
	l.Events = append(l.Events, Event{
		Type: "noose_kill", Force: force, Position: []int{q, r}, WasSovereign: wasSovereign,
	})
}

// AddMovement appends a completed move.
func (l *EventLog) AddMovement(force string, fromQ, fromR, toQ, toR int) {
	l.Events = append(l.Events, Event{
		Type: "movement", Force: force, From: []int{fromQ, fromR}, To: []int{toQ, toR},
	})
}

// ProbeRecord is one comprehension question with the agent's answer.
type ProbeRecord struct {
	Question string `json:"question"`
	Expected string `json:"expected"`
	Response string `json:"response"`
	Correct  bool   `json:"correct"`
}

// ComprehensionResult is one turn's probe outcomes for one player.
type ComprehensionResult struct {
	Turn     int           `json:"turn"`
	PlayerID string        `json:"player_id"`
	Probes   []ProbeRecord `json:"probes"`
	Score    float64       `json:"score"`
}

// GameTelemetry is the complete record of one benchmarked game.
type GameTelemetry struct {
	GameID               string
	P1Strategy           string
	P2Strategy           string
	Seed                 int64
	AgentReports         []*AgentReport
	EventLogs            []*EventLog
	ComprehensionResults []*ComprehensionResult
	Winner               string
	VictoryType          string
	Turns                int
}

// AddReport appends an agent report.
func (g *GameTelemetry) AddReport(r *AgentReport) {
	g.AgentReports = append(g.AgentReports, r)
}

// AddEventLog appends a turn's event log.
func (g *GameTelemetry) AddEventLog(l *EventLog) {
	g.EventLogs = append(g.EventLogs, l)
}

// AddComprehensionResult appends a probe outcome.
func (g *GameTelemetry) AddComprehensionResult(c *ComprehensionResult) {
	g.ComprehensionResults = append(g.ComprehensionResults, c)
}

// ReportsForPlayer filters the reports belonging to one player, in turn
// order.
func (g *GameTelemetry) ReportsForPlayer(playerID string) []*AgentReport {
	var out []*AgentReport
	for _, r := range g.AgentReports {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	return out
}

type jsonlHeader struct {
	Type        string `json:"type"`
	GameID      string `json:"game_id"`
	P1Strategy  string `json:"p1_strategy"`
	P2Strategy  string `json:"p2_strategy"`
	Seed        int64  `json:"seed"`
	Winner      string `json:"winner"`
	VictoryType string `json:"victory_type"`
	Turns       int    `json:"turns"`
}

// WriteJSONL streams the game record as newline-delimited JSON: one
// game_header line, then one line per agent report, event log, and
// comprehension result, each discriminated by a "type" field.
func (g *GameTelemetry) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(jsonlHeader{
		Type: "game_header", GameID: g.GameID,
		P1Strategy: g.P1Strategy, P2Strategy: g.P2Strategy, Seed: g.Seed,
		Winner: g.Winner, VictoryType: g.VictoryType, Turns: g.Turns,
	}); err != nil {
		return err
	}
	for _, r := range g.AgentReports {
		if err := encodeTagged(enc, "agent_report", r); err != nil {
			return err
		}
	}
	for _, l := range g.EventLogs {
		if err := encodeTagged(enc, "event_log", l); err != nil {
			return err
		}
	}
	for _, c := range g.ComprehensionResults {
		if err := encodeTagged(enc, "comprehension_result", c); err != nil {
			return err
		}
	}
	return nil
}

// encodeTagged writes v with an injected "type" discriminator.
func encodeTagged(enc *json.Encoder, typ string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	m["type"] = json.RawMessage(strconv.Quote(typ))
	return enc.Encode(m)
}
