// Package metrics scores belief quality from telemetry records: Brier
// score, log loss, calibration, information gain, consistency, and format
// sensitivity. Every function is a pure function of its inputs; there is
// no hidden state.
package metrics

import (
	"math"
	"sort"

	"gorgonia.org/tensor"

	"github.com/covertfive/noose/internal/telemetry"
)

const logLossEpsilon = 1e-10

// beliefMatrix flattens every (report, token) belief pair with known
// ground truth into two dense (n, 5) tensors: predicted probabilities and
// one-hot actuals. Returns nil tensors when no pair qualifies.
func beliefMatrix(reports []*telemetry.AgentReport, groundTruth map[string]int) (pred, actual *tensor.Dense, n int) {
	var predData, actualData []float64
	for _, report := range reports {
		for _, tokenID := range sortedBeliefKeys(report) {
			truth, ok := groundTruth[tokenID]
			if !ok {
				continue
			}
			belief := report.Beliefs[tokenID]
			for power := 1; power <= 5; power++ {
				predData = append(predData, belief.Distribution[power])
				if power == truth {
					actualData = append(actualData, 1)
				} else {
					actualData = append(actualData, 0)
				}
			}
			n++
		}
	}
	if n == 0 {
		return nil, nil, 0
	}
	pred = tensor.New(tensor.WithShape(n, 5), tensor.WithBacking(predData))
	actual = tensor.New(tensor.WithShape(n, 5), tensor.WithBacking(actualData))
	return pred, actual, n
}

func sortedBeliefKeys(r *telemetry.AgentReport) []string {
	keys := make([]string, 0, len(r.Beliefs))
	for k := range r.Beliefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BrierScore is the mean squared error of power beliefs against one-hot
// ground truth, normalized by pairs x 5 power values. Perfect = 0, uniform
// = 0.16.
func BrierScore(reports []*telemetry.AgentReport, groundTruth map[string]int) float64 {
	pred, actual, n := beliefMatrix(reports, groundTruth)
	if n == 0 {
		return 0
	}
	diff, err := tensor.Sub(pred, actual)
	if err != nil {
		return 0
	}
	sq, err := tensor.Mul(diff, diff)
	if err != nil {
		return 0
	}
	sum, err := tensor.Sum(sq)
	if err != nil {
		return 0
	}
	return scalarOf(sum) / float64(n*5)
}

// scalarOf reads a 0-d or 1-element tensor back out as a float64.
func scalarOf(t tensor.Tensor) float64 {
	switch d := t.Data().(type) {
	case float64:
		return d
	case []float64:
		if len(d) > 0 {
			return d[0]
		}
	}
	return 0
}

// LogLoss is the mean negative log probability assigned to the true power,
// clamped away from log(0). Perfect = 0, uniform = ln(5).
func LogLoss(reports []*telemetry.AgentReport, groundTruth map[string]int) float64 {
	total, n := 0.0, 0
	for _, report := range reports {
		for tokenID, belief := range report.Beliefs {
			truth, ok := groundTruth[tokenID]
			if !ok {
				continue
			}
			p := belief.Distribution[truth]
			if p < logLossEpsilon {
				p = logLossEpsilon
			}
			total -= math.Log(p)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// CalibrationError is the expected calibration error (ECE): predictions
// are bucketed by confidence and each bucket contributes its count-weighted
// |mean predicted - mean actual|.
func CalibrationError(reports []*telemetry.AgentReport, groundTruth map[string]int, nBins int) float64 {
	if nBins <= 0 {
		nBins = 5
	}
	type sample struct{ predicted, actual float64 }
	bins := make([][]sample, nBins)

	for _, report := range reports {
		for tokenID, belief := range report.Beliefs {
			truth, ok := groundTruth[tokenID]
			if !ok {
				continue
			}
			for power := 1; power <= 5; power++ {
				predicted := belief.Distribution[power]
				actual := 0.0
				if power == truth {
					actual = 1.0
				}
				idx := int(predicted * float64(nBins))
				if idx >= nBins {
					idx = nBins - 1
				}
				bins[idx] = append(bins[idx], sample{predicted, actual})
			}
		}
	}

	total := 0
	for _, b := range bins {
		total += len(b)
	}
	if total == 0 {
		return 0
	}

	errSum := 0.0
	for _, b := range bins {
		if len(b) == 0 {
			continue
		}
		var sumP, sumA float64
		for _, s := range b {
			sumP += s.predicted
			sumA += s.actual
		}
		n := float64(len(b))
		errSum += n * math.Abs(sumP/n-sumA/n)
	}
	return errSum / float64(total)
}

// InformationGain returns the entropy drop between each pair of
// consecutive reports: positive values mean uncertainty was reduced.
func InformationGain(reports []*telemetry.AgentReport) []float64 {
	var gains []float64
	for i := 1; i < len(reports); i++ {
		gains = append(gains, reports[i-1].BeliefEntropy()-reports[i].BeliefEntropy())
	}
	return gains
}

// UncertaintyReduction is (H_first - H_last) / H_first: 1 means complete
// certainty was achieved, 0 means no learning.
func UncertaintyReduction(reports []*telemetry.AgentReport) float64 {
	if len(reports) < 2 {
		return 0
	}
	hFirst := reports[0].BeliefEntropy()
	if hFirst == 0 {
		return 0
	}
	return (hFirst - reports[len(reports)-1].BeliefEntropy()) / hFirst
}

// TheoryOfMindDelta is Brier(baseline) - Brier(agent): positive means the
// agent's opponent model beats the baseline.
func TheoryOfMindDelta(agentReports, baselineReports []*telemetry.AgentReport, groundTruth map[string]int) float64 {
	return BrierScore(baselineReports, groundTruth) - BrierScore(agentReports, groundTruth)
}

// BeliefConsistency measures violation of the permutation constraint:
// because the enemy's powers are a permutation, each power's marginal
// probability summed across all enemy tokens should equal 1. Returns the
// mean absolute deviation from 1 over every (report, power) with at least
// two beliefs; perfect joint reasoning scores 0.
func BeliefConsistency(reports []*telemetry.AgentReport) float64 {
	totalDeviation, n := 0.0, 0
	for _, report := range reports {
		if len(report.Beliefs) < 2 {
			continue
		}
		for power := 1; power <= 5; power++ {
			marginal := 0.0
			for _, belief := range report.Beliefs {
				marginal += belief.Distribution[power]
			}
			totalDeviation += math.Abs(marginal - 1)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return totalDeviation / float64(n)
}

// EliminatedPowerTracking checks whether revealed powers are zeroed out of
// every other token's distribution: the fraction of (report, other token,
// revealed power) triples whose probability stays within tolerance of 0.
// Perfect constraint tracking = 1.
func EliminatedPowerTracking(reports []*telemetry.AgentReport, revealedPowers map[string]int) float64 {
	const tolerance = 0.05
	correct, total := 0, 0
	for _, report := range reports {
		for revealedID, revealedPower := range revealedPowers {
			if _, ok := report.Beliefs[revealedID]; !ok {
				continue
			}
			for tokenID, belief := range report.Beliefs {
				if tokenID == revealedID {
					continue
				}
				total++
				if belief.Distribution[revealedPower] <= tolerance {
					correct++
				}
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(correct) / float64(total)
}

// FormatSensitivity computes the coefficient of variation (std/|mean|) of
// each metric across prompt formats. Low values mean the measurement is
// format-invariant; high values mean prompt format is a confound.
func FormatSensitivity(metricsByFormat map[string]map[string]float64) map[string]float64 {
	if len(metricsByFormat) < 2 {
		return map[string]float64{}
	}
	names := make(map[string]bool)
	for _, m := range metricsByFormat {
		for name := range m {
			names[name] = true
		}
	}

	out := make(map[string]float64)
	for name := range names {
		var values []float64
		for _, m := range metricsByFormat {
			if v, ok := m[name]; ok {
				values = append(values, v)
			}
		}
		if len(values) < 2 {
			continue
		}
		mean := 0.0
		for _, v := range values {
			mean += v
		}
		mean /= float64(len(values))
		if mean == 0 {
			out[name] = 0
			continue
		}
		variance := 0.0
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(values))
		out[name] = math.Sqrt(variance) / math.Abs(mean)
	}
	return out
}

// ComputeGameMetrics evaluates the standard per-player metric set for one
// game's telemetry against full ground truth.
func ComputeGameMetrics(t *telemetry.GameTelemetry, groundTruth map[string]int) map[string]float64 {
	out := make(map[string]float64)
	players := make(map[string]bool)
	for _, r := range t.AgentReports {
		players[r.PlayerID] = true
	}
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, pid := range ids {
		reports := t.ReportsForPlayer(pid)
		if len(reports) == 0 {
			continue
		}
		prefix := pid + "_"
		out[prefix+"brier_score"] = BrierScore(reports, groundTruth)
		out[prefix+"log_loss"] = LogLoss(reports, groundTruth)
		out[prefix+"calibration_error"] = CalibrationError(reports, groundTruth, 5)
		out[prefix+"uncertainty_reduction"] = UncertaintyReduction(reports)
		out[prefix+"belief_consistency"] = BeliefConsistency(reports)

		gains := InformationGain(reports)
		sum := 0.0
		for _, g := range gains {
			sum += g
		}
		out[prefix+"total_info_gain"] = sum
		if len(gains) > 0 {
			out[prefix+"avg_info_gain"] = sum / float64(len(gains))
		} else {
			out[prefix+"avg_info_gain"] = 0
		}

		entropy := 0.0
		for _, r := range reports {
			entropy += r.BeliefEntropy()
		}
		out[prefix+"avg_belief_entropy"] = entropy / float64(len(reports))
	}
	return out
}
