package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math"
	"testing"
)

func TestUniformEntropy(t *testing.T) {
	b := Uniform()
	want := math.Log2(5)
	if got := b.Entropy(); math.Abs(got-want) > 1e-9 {
		t.Errorf("uniform entropy: want %f, got %f", want, got)
	}
}

func TestPointMassEntropyZero(t *testing.T) {
	b := PointMass(3)
	if got := b.Entropy(); got != 0 {
		t.Errorf("point mass entropy should be 0, got %f", got)
	}
	if got := b.PredictedPower(); got != 3 {
		t.Errorf("predicted power should be 3, got %d", got)
	}
	if got := b.MaxProbability(); got != 1 {
		t.Errorf("max probability should be 1, got %f", got)
	}
}

func TestOverBandSplitsEvenly(t *testing.T) {
	b := OverBand([]int{2, 3})
	if b.Distribution[2] != 0.5 || b.Distribution[3] != 0.5 {
		t.Errorf("band split wrong: %+v", b.Distribution)
	}
	if b.Distribution[1] != 0 || b.Distribution[4] != 0 || b.Distribution[5] != 0 {
		t.Errorf("out-of-band powers must be 0: %+v", b.Distribution)
	}
}

func TestNormalizedZeroMassFallsBackToUniform(t *testing.T) {
	b := BeliefState{Distribution: map[int]float64{1: 0, 2: 0}}
	n := b.Normalized()
	if math.Abs(n.Distribution[1]-0.2) > 1e-9 {
		t.Errorf("zero-mass normalization should yield uniform, got %+v", n.Distribution)
	}
}

func TestBeliefStateJSONRoundTrip(t *testing.T) {
	b := BeliefState{Distribution: map[int]float64{1: 0.25, 4: 0.75}}
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	var back BeliefState
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Distribution[1] != 0.25 || back.Distribution[4] != 0.75 {
		t.Errorf("round trip lost probabilities: %+v", back.Distribution)
	}
}

func TestReportBeliefEntropyAverages(t *testing.T) {
	r := AgentReport{Beliefs: map[string]BeliefState{
		"p2_f1": PointMass(2),
		"p2_f2": Uniform(),
	}}
	want := math.Log2(5) / 2
	if got := r.BeliefEntropy(); math.Abs(got-want) > 1e-9 {
		t.Errorf("want %f, got %f", want, got)
	}
}

func TestGameTelemetryJSONLShape(t *testing.T) {
	g := &GameTelemetry{
		GameID:      "g1",
		P1Strategy:  "baseline_random",
		P2Strategy:  "baseline_oracle",
		Seed:        42,
		Winner:      "p2",
		VictoryType: "sovereign_capture",
		Turns:       9,
	}
	g.AddReport(&AgentReport{Turn: 1, PlayerID: "p1", Strategy: "baseline_random", Beliefs: map[string]BeliefState{"p2_f1": Uniform()}})
	l := &EventLog{Turn: 1}
	l.AddCombat("p1_f3", "p2_f1", 4, 2, "attacker_wins")
	l.AddScoutReveal("p1_f2", "p2_f4", "exact", 5)
	l.AddMovement("p1_f1", 0, 0, 1, 0)
	l.AddNooseKill("p2_f5", 6, 6, false)
	g.AddEventLog(l)
	g.AddComprehensionResult(&ComprehensionResult{Turn: 1, PlayerID: "p1", Score: 1})

	var buf bytes.Buffer
	if err := g.WriteJSONL(&buf); err != nil {
		t.Fatal(err)
	}

	var types []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		typ, _ := record["type"].(string)
		types = append(types, typ)
	}
	want := []string{"game_header", "agent_report", "event_log", "comprehension_result"}
	if len(types) != len(want) {
		t.Fatalf("expected %d lines, got %d (%v)", len(want), len(types), types)
	}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("line %d: want type %q, got %q", i, typ, types[i])
		}
	}
}

func TestReportsForPlayerFilters(t *testing.T) {
	g := &GameTelemetry{}
	g.AddReport(&AgentReport{Turn: 1, PlayerID: "p1"})
	g.AddReport(&AgentReport{Turn: 1, PlayerID: "p2"})
	g.AddReport(&AgentReport{Turn: 2, PlayerID: "p1"})
	if got := len(g.ReportsForPlayer("p1")); got != 2 {
		t.Errorf("expected 2 reports for p1, got %d", got)
	}
}
