// Package probe generates verifiable comprehension questions from a
// fog-of-war view. If an agent cannot answer basic factual questions about
// the state it is reasoning from, its reasoning metrics are
// uninterpretable; games whose probe score falls below the threshold are
// flagged.
package probe

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/covertfive/noose/pkg/noose"
)

// ComprehensionThreshold is the probe score below which a game's reasoning
// metrics are flagged as uninterpretable.
const ComprehensionThreshold = 0.8

// Probe is a verifiable comprehension question with a known answer.
type Probe struct {
	Question   string
	Expected   string
	Category   string // "factual", "visibility", "terrain", "knowledge", "rule"
	Difficulty string // "basic" or "derived"
}

var numberPattern = regexp.MustCompile(`\d+`)

// Validate reports whether a free-text response matches the expected
// answer, accepting exact substrings, numeric supersets, yes/no synonyms,
// and comma-list matches.
func (p Probe) Validate(response string) bool {
	resp := strings.ToLower(strings.TrimSpace(response))
	expected := strings.ToLower(strings.TrimSpace(p.Expected))

	if expected != "" && strings.Contains(resp, expected) {
		return true
	}

	expectedNums := numberPattern.FindAllString(expected, -1)
	if len(expectedNums) > 0 {
		respNums := make(map[string]bool)
		for _, n := range numberPattern.FindAllString(resp, -1) {
			respNums[n] = true
		}
		all := true
		for _, n := range expectedNums {
			if !respNums[n] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}

	switch expected {
	case "yes":
		for _, w := range []string{"yes", "true", "correct", "it can", "has supply", "can use"} {
			if strings.Contains(resp, w) {
				return true
			}
		}
	case "no":
		for _, w := range []string{"no", "false", "incorrect", "cannot", "can't", "it cannot", "does not have supply", "no supply"} {
			if strings.Contains(resp, w) {
				return true
			}
		}
	}

	if strings.Contains(expected, ",") {
		for _, item := range strings.Split(expected, ",") {
			if !strings.Contains(resp, strings.TrimSpace(item)) {
				return false
			}
		}
		return true
	}
	return false
}

func sortedOwn(v *noose.View) []noose.TokenView {
	out := append([]noose.TokenView(nil), v.OwnTokens...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEnemies(v *noose.View) []noose.TokenView {
	out := append([]noose.TokenView(nil), v.EnemyTokens...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func factualProbes(v *noose.View) []Probe {
	return []Probe{
		{
			Question: "How many of your forces are currently alive?",
			Expected: fmt.Sprintf("%d", len(v.OwnTokens)),
			Category: "factual", Difficulty: "basic",
		},
		{
			Question: "How much Shih do you currently have?",
			Expected: fmt.Sprintf("%d", v.Shih),
			Category: "factual", Difficulty: "basic",
		},
		{
			Question: "What is the current turn number?",
			Expected: fmt.Sprintf("%d", v.Turn),
			Category: "factual", Difficulty: "basic",
		},
	}
}

func visibilityProbes(v *noose.View) []Probe {
	enemies := sortedEnemies(v)
	out := []Probe{{
		Question: "How many enemy forces can you currently see?",
		Expected: fmt.Sprintf("%d", len(enemies)),
		Category: "visibility", Difficulty: "basic",
	}}
	if len(enemies) > 0 {
		ids := make([]string, len(enemies))
		for i, tv := range enemies {
			ids[i] = tv.ID
		}
		out = append(out, Probe{
			Question: "List the IDs of all visible enemy forces.",
			Expected: strings.Join(ids, ", "),
			Category: "visibility", Difficulty: "basic",
		})
	}
	return out
}

func terrainProbes(v *noose.View) []Probe {
	var out []Probe
	wantContentious, wantDifficult := true, true
	b := v.Board
	for r := 0; r < b.Side && (wantContentious || wantDifficult); r++ {
		for q := 0; q < b.Side; q++ {
			mh := b.Get(noose.Hex{Q: q, R: r})
			if mh == nil {
				continue
			}
			switch {
			case mh.Terrain == noose.Contentious && wantContentious:
				wantContentious = false
				out = append(out, Probe{
					Question: fmt.Sprintf("What type of terrain is at position (%d,%d)?", q, r),
					Expected: "Contentious", Category: "terrain", Difficulty: "basic",
				})
			case mh.Terrain == noose.Difficult && wantDifficult:
				wantDifficult = false
				out = append(out, Probe{
					Question: fmt.Sprintf("What type of terrain is at position (%d,%d)?", q, r),
					Expected: "Difficult", Category: "terrain", Difficulty: "basic",
				})
			}
		}
	}
	return out
}

func knowledgeProbes(v *noose.View) []Probe {
	var out []Probe
	for _, tv := range sortedEnemies(v) {
		if tv.Power > 0 {
			out = append(out, Probe{
				Question: fmt.Sprintf("What do you know about %s's power level?", tv.ID),
				Expected: fmt.Sprintf("%d", tv.Power),
				Category: "knowledge", Difficulty: "basic",
			})
			break
		}
	}
	var unknown []string
	for _, tv := range sortedEnemies(v) {
		if tv.Power == 0 && tv.Known == nil {
			unknown = append(unknown, tv.ID)
		}
	}
	if len(unknown) > 0 {
		out = append(out, Probe{
			Question: "Which visible enemy forces have completely unknown power?",
			Expected: strings.Join(unknown, ", "),
			Category: "knowledge", Difficulty: "derived",
		})
	}
	return out
}

func ruleProbes(v *noose.View, cfg noose.Config) []Probe {
	own := sortedOwn(v)
	if len(own) == 0 {
		return nil
	}
	tv := own[0]
	answer := "No"
	if tv.HasSupply && v.Shih >= cfg.ScoutCost {
		answer = "Yes"
	}
	return []Probe{{
		Question: fmt.Sprintf("Can your force %s use Scout this turn?", tv.ID),
		Expected: answer,
		Category: "rule", Difficulty: "derived",
	}}
}

// Generate deterministically selects up to nProbes questions from the
// view, taking one per category first so coverage stays diverse, then
// filling from the remainder.
func Generate(v *noose.View, cfg noose.Config, nProbes int) []Probe {
	var all []Probe
	all = append(all, factualProbes(v)...)
	all = append(all, visibilityProbes(v)...)
	all = append(all, terrainProbes(v)...)
	all = append(all, knowledgeProbes(v)...)
	all = append(all, ruleProbes(v, cfg)...)

	var selected []Probe
	seen := make(map[string]bool)
	for _, p := range all {
		if len(selected) >= nProbes {
			break
		}
		if !seen[p.Category] {
			selected = append(selected, p)
			seen[p.Category] = true
		}
	}
	for _, p := range all {
		if len(selected) >= nProbes {
			break
		}
		if !containsProbe(selected, p) {
			selected = append(selected, p)
		}
	}
	return selected
}

func containsProbe(list []Probe, p Probe) bool {
	for _, q := range list {
		if q.Question == p.Question {
			return true
		}
	}
	return false
}

// Score returns the fraction of probes answered correctly.
func Score(probes []Probe, responses []string) float64 {
	if len(probes) == 0 || len(responses) == 0 {
		return 0
	}
	correct := 0
	n := len(probes)
	if len(responses) < n {
		n = len(responses)
	}
	for i := 0; i < n; i++ {
		if probes[i].Validate(responses[i]) {
			correct++
		}
	}
	return float64(correct) / float64(len(probes))
}

// AsPrompt formats probes as numbered questions for inclusion in a prompt.
func AsPrompt(probes []Probe) string {
	var b strings.Builder
	b.WriteString("Answer each question briefly and precisely:")
	for i, p := range probes {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, p.Question)
	}
	return b.String()
}

var responsePattern = regexp.MustCompile(`^\d+[.)]\s*(.*)`)

// ParseResponses extracts numbered answers ("1. four", "2) p2_f1") from
// free text, padding with empty strings up to nProbes.
func ParseResponses(text string, nProbes int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if m := responsePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	for len(out) < nProbes {
		out = append(out, "")
	}
	return out[:nProbes]
}
