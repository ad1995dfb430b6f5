package probe

import (
	"strings"
	"testing"

	"github.com/covertfive/noose/pkg/noose"
)

func battleView(t *testing.T) (*noose.View, noose.Config) {
	t.Helper()
	s := noose.NewState(noose.DefaultConfig(), 5, "p1", "p2")
	for _, pid := range []string{"p1", "p2"} {
		m := make(map[string]int)
		for i, tok := range s.Players[pid].Tokens {
			m[tok.ID] = i + 1
		}
		if err := noose.Deploy(s, pid, m); err != nil {
			t.Fatal(err)
		}
	}
	s.Players["p2"].Tokens[3].Position = noose.Hex{Q: 2, R: 1} // one visible enemy
	return noose.ViewFor(s, "p1"), s.Config
}

func TestGenerateCoversCategories(t *testing.T) {
	v, cfg := battleView(t)
	probes := Generate(v, cfg, 5)
	if len(probes) != 5 {
		t.Fatalf("expected 5 probes, got %d", len(probes))
	}
	categories := make(map[string]bool)
	for _, p := range probes {
		categories[p.Category] = true
	}
	if len(categories) < 4 {
		t.Errorf("expected diverse categories, got %v", categories)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	v, cfg := battleView(t)
	a := Generate(v, cfg, 5)
	b := Generate(v, cfg, 5)
	if len(a) != len(b) {
		t.Fatal("probe counts differ across runs")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("probe %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGeneratedAnswersAreDerivable(t *testing.T) {
	v, cfg := battleView(t)
	for _, p := range Generate(v, cfg, 8) {
		if !p.Validate(p.Expected) {
			t.Errorf("probe %q rejects its own expected answer %q", p.Question, p.Expected)
		}
	}
}

func TestValidateNumericSubset(t *testing.T) {
	p := Probe{Expected: "4"}
	if !p.Validate("I think there are 4 forces") {
		t.Error("numeric match inside free text should pass")
	}
	if p.Validate("three") {
		t.Error("wrong answer must fail")
	}
}

func TestValidateYesNoSynonyms(t *testing.T) {
	yes := Probe{Expected: "Yes"}
	if !yes.Validate("it can, since it has supply") {
		t.Error("affirmative synonym should pass")
	}
	no := Probe{Expected: "No"}
	if !no.Validate("it cannot act this turn") {
		t.Error("negative synonym should pass")
	}
}

func TestValidateCommaList(t *testing.T) {
	p := Probe{Expected: "p2_f1, p2_f3"}
	if !p.Validate("the visible ones are p2_f3 and p2_f1") {
		t.Error("order-independent list match should pass")
	}
	if p.Validate("only p2_f1") {
		t.Error("missing list item must fail")
	}
}

func TestScoreFractionCorrect(t *testing.T) {
	probes := []Probe{{Expected: "3"}, {Expected: "yes"}, {Expected: "Open"}}
	responses := []string{"3", "nope", "open terrain"}
	if got := Score(probes, responses); got < 0.66 || got > 0.67 {
		t.Errorf("expected 2/3, got %f", got)
	}
}

func TestScoreEmpty(t *testing.T) {
	if Score(nil, nil) != 0 {
		t.Error("no probes should score 0")
	}
}

func TestAsPromptNumbersQuestions(t *testing.T) {
	probes := []Probe{{Question: "How many?"}, {Question: "Where?"}}
	out := AsPrompt(probes)
	if !strings.Contains(out, "1. How many?") || !strings.Contains(out, "2. Where?") {
		t.Errorf("prompt missing numbered questions:\n%s", out)
	}
}

func TestParseResponses(t *testing.T) {
	text := "1. 4\n2) p2_f1, p2_f3\nsome commentary\n3. yes"
	got := ParseResponses(text, 4)
	want := []string{"4", "p2_f1, p2_f3", "yes", ""}
	if len(got) != len(want) {
		t.Fatalf("expected %d responses, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("response %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRuleProbeTracksShih(t *testing.T) {
	v, cfg := battleView(t)
	v.Shih = 0
	probes := ruleProbes(v, cfg)
	if len(probes) != 1 {
		t.Fatalf("expected one rule probe, got %d", len(probes))
	}
	if probes[0].Expected != "No" {
		t.Errorf("no shih means Scout is unaffordable, got %q", probes[0].Expected)
	}
}
