package metrics

import (
	"math"
	"testing"

	"github.com/covertfive/noose/internal/telemetry"
)

func report(beliefs map[string]telemetry.BeliefState) *telemetry.AgentReport {
	return &telemetry.AgentReport{Turn: 1, PlayerID: "p1", Beliefs: beliefs}
}

func TestBrierScorePerfect(t *testing.T) {
	reports := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(3),
		"p2_f2": telemetry.PointMass(5),
	})}
	truth := map[string]int{"p2_f1": 3, "p2_f2": 5}
	if got := BrierScore(reports, truth); got != 0 {
		t.Errorf("perfect beliefs must score 0, got %f", got)
	}
}

func TestBrierScoreUniform(t *testing.T) {
	reports := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.Uniform(),
	})}
	truth := map[string]int{"p2_f1": 2}
	// Uniform: ((0.2-1)^2 + 4*(0.2)^2) / 5 = 0.16.
	if got := BrierScore(reports, truth); math.Abs(got-0.16) > 1e-9 {
		t.Errorf("uniform Brier should be 0.16, got %f", got)
	}
}

func TestBrierScoreIgnoresUnknownTokens(t *testing.T) {
	reports := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(1),
		"ghost": telemetry.PointMass(5),
	})}
	truth := map[string]int{"p2_f1": 1}
	if got := BrierScore(reports, truth); got != 0 {
		t.Errorf("tokens without ground truth must be skipped, got %f", got)
	}
}

func TestBrierScoreEmpty(t *testing.T) {
	if got := BrierScore(nil, nil); got != 0 {
		t.Errorf("no reports should score 0, got %f", got)
	}
}

func TestLogLossPerfectAndUniform(t *testing.T) {
	perfect := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(4)})}
	truth := map[string]int{"p2_f1": 4}
	if got := LogLoss(perfect, truth); got != 0 {
		t.Errorf("perfect log loss should be 0, got %f", got)
	}
	uniform := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{"p2_f1": telemetry.Uniform()})}
	if got := LogLoss(uniform, truth); math.Abs(got-math.Log(5)) > 1e-9 {
		t.Errorf("uniform log loss should be ln(5), got %f", got)
	}
}

func TestLogLossClampsZeroProbability(t *testing.T) {
	reports := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(1)})}
	truth := map[string]int{"p2_f1": 5}
	got := LogLoss(reports, truth)
	if math.IsInf(got, 1) || math.IsNaN(got) {
		t.Fatalf("log loss must be clamped, got %f", got)
	}
	if got < 10 {
		t.Errorf("certain-and-wrong should be heavily penalized, got %f", got)
	}
}

func TestCalibrationErrorPerfect(t *testing.T) {
	reports := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(2),
	})}
	truth := map[string]int{"p2_f1": 2}
	if got := CalibrationError(reports, truth, 5); got != 0 {
		t.Errorf("perfectly calibrated certainty should score 0, got %f", got)
	}
}

func TestInformationGainTracksEntropyDrop(t *testing.T) {
	r1 := report(map[string]telemetry.BeliefState{"p2_f1": telemetry.Uniform()})
	r2 := report(map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(3)})
	gains := InformationGain([]*telemetry.AgentReport{r1, r2})
	if len(gains) != 1 {
		t.Fatalf("expected one gain, got %d", len(gains))
	}
	if math.Abs(gains[0]-math.Log2(5)) > 1e-9 {
		t.Errorf("expected gain of log2(5), got %f", gains[0])
	}
}

func TestUncertaintyReductionFull(t *testing.T) {
	r1 := report(map[string]telemetry.BeliefState{"p2_f1": telemetry.Uniform()})
	r2 := report(map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(3)})
	if got := UncertaintyReduction([]*telemetry.AgentReport{r1, r2}); math.Abs(got-1) > 1e-9 {
		t.Errorf("full certainty should give reduction 1, got %f", got)
	}
}

func TestTheoryOfMindDeltaPositiveWhenAgentBetter(t *testing.T) {
	truth := map[string]int{"p2_f1": 2}
	agent := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(2)})}
	baseline := []*telemetry.AgentReport{report(map[string]telemetry.BeliefState{"p2_f1": telemetry.Uniform()})}
	if got := TheoryOfMindDelta(agent, baseline, truth); got <= 0 {
		t.Errorf("better agent should give positive delta, got %f", got)
	}
}

func TestBeliefConsistencyPermutationAware(t *testing.T) {
	// A permutation-consistent joint: each power's marginal sums to 1.
	consistent := report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(1),
		"p2_f2": telemetry.PointMass(2),
		"p2_f3": telemetry.PointMass(3),
		"p2_f4": telemetry.PointMass(4),
		"p2_f5": telemetry.PointMass(5),
	})
	if got := BeliefConsistency([]*telemetry.AgentReport{consistent}); got != 0 {
		t.Errorf("a full permutation assignment should be perfectly consistent, got %f", got)
	}

	// Independent uniforms over 5 tokens also satisfy the marginal (5 x 0.2).
	uniform := report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.Uniform(), "p2_f2": telemetry.Uniform(), "p2_f3": telemetry.Uniform(),
		"p2_f4": telemetry.Uniform(), "p2_f5": telemetry.Uniform(),
	})
	if got := BeliefConsistency([]*telemetry.AgentReport{uniform}); math.Abs(got) > 1e-9 {
		t.Errorf("5 uniform beliefs sum to 1 per power, got %f", got)
	}

	// Two certain beliefs on the same power violate the constraint.
	clash := report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(3),
		"p2_f2": telemetry.PointMass(3),
	})
	if got := BeliefConsistency([]*telemetry.AgentReport{clash}); got == 0 {
		t.Error("double-assigned power must register as inconsistent")
	}
}

func TestBeliefConsistencySkipsSingleBelief(t *testing.T) {
	single := report(map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(3)})
	if got := BeliefConsistency([]*telemetry.AgentReport{single}); got != 0 {
		t.Errorf("reports with fewer than two beliefs are skipped, got %f", got)
	}
}

func TestEliminatedPowerTracking(t *testing.T) {
	revealed := map[string]int{"p2_f1": 3}
	good := report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(3),
		"p2_f2": telemetry.OverBand([]int{1, 2, 4, 5}),
	})
	if got := EliminatedPowerTracking([]*telemetry.AgentReport{good}, revealed); got != 1 {
		t.Errorf("zeroed-out revealed power should score 1, got %f", got)
	}
	bad := report(map[string]telemetry.BeliefState{
		"p2_f1": telemetry.PointMass(3),
		"p2_f2": telemetry.Uniform(),
	})
	if got := EliminatedPowerTracking([]*telemetry.AgentReport{bad}, revealed); got != 0 {
		t.Errorf("uniform belief keeps 0.2 on the revealed power, want 0, got %f", got)
	}
}

func TestEliminatedPowerTrackingNoCases(t *testing.T) {
	if got := EliminatedPowerTracking(nil, map[string]int{"p2_f1": 2}); got != 1 {
		t.Errorf("no checkable cases should score 1, got %f", got)
	}
}

func TestFormatSensitivity(t *testing.T) {
	byFormat := map[string]map[string]float64{
		"narrative": {"brier": 0.10, "stable": 0.5},
		"tabular":   {"brier": 0.30, "stable": 0.5},
	}
	out := FormatSensitivity(byFormat)
	if out["stable"] != 0 {
		t.Errorf("identical values across formats must give CV 0, got %f", out["stable"])
	}
	if out["brier"] <= 0 {
		t.Errorf("diverging values must give positive CV, got %f", out["brier"])
	}
	if got := FormatSensitivity(map[string]map[string]float64{"only": {"brier": 1}}); len(got) != 0 {
		t.Error("fewer than two formats should yield no sensitivities")
	}
}

func TestComputeGameMetricsPerPlayer(t *testing.T) {
	tel := &telemetry.GameTelemetry{}
	tel.AddReport(&telemetry.AgentReport{Turn: 1, PlayerID: "p1", Beliefs: map[string]telemetry.BeliefState{"p2_f1": telemetry.PointMass(2)}})
	tel.AddReport(&telemetry.AgentReport{Turn: 1, PlayerID: "p2", Beliefs: map[string]telemetry.BeliefState{"p1_f1": telemetry.Uniform()}})
	truth := map[string]int{"p1_f1": 1, "p2_f1": 2}
	out := ComputeGameMetrics(tel, truth)
	if out["p1_brier_score"] != 0 {
		t.Errorf("p1 had perfect beliefs, got %f", out["p1_brier_score"])
	}
	if math.Abs(out["p2_brier_score"]-0.16) > 1e-9 {
		t.Errorf("p2 was uniform, want 0.16, got %f", out["p2_brier_score"])
	}
}
