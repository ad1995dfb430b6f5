// Package integrity checks that a rendered prompt contains exactly what
// its player is entitled to know: no fog-of-war leaks, no hidden power
// values, and no omissions of the player's own information.
// A flagged prompt is disqualified from metric aggregation; this is a
// harness correctness gate, not an engine check.
package integrity

import (
	"fmt"
	"strings"

	"github.com/covertfive/noose/pkg/noose"
)

// Violation is one detected integrity failure.
type Violation struct {
	Kind    string // "leak" or "omission"
	Message string
}

func (v Violation) String() string {
	return strings.ToUpper(v.Kind) + ": " + v.Message
}

// VerifyView checks that a view was correctly fog-filtered against the
// full state: no out-of-range or ambushing enemy is included, no enemy in
// range is missing, no unrevealed power is populated, and every living own
// token appears. Run on ViewFor output before rendering.
func VerifyView(v *noose.View, s *noose.State, playerID string) []Violation {
	var out []Violation
	player := s.Players[playerID]
	opponent := s.Players[s.Opponent(playerID)]
	if player == nil || opponent == nil {
		return out
	}

	inView := make(map[string]noose.TokenView, len(v.EnemyTokens))
	for _, tv := range v.EnemyTokens {
		inView[tv.ID] = tv
	}

	for _, enemy := range opponent.AliveTokens() {
		visible := enemyVisible(s, player, enemy)
		_, included := inView[enemy.ID]
		if included && !visible {
			out = append(out, Violation{"leak", fmt.Sprintf(
				"enemy %s at %s included in view but outside visibility range %d",
				enemy.ID, enemy.Position, s.Config.VisibilityRange)})
		}
		if visible && !included {
			out = append(out, Violation{"omission", fmt.Sprintf(
				"enemy %s at %s within visibility range but missing from view",
				enemy.ID, enemy.Position)})
		}
	}

	for _, tv := range v.EnemyTokens {
		if tv.Power == 0 {
			continue
		}
		actual := opponent.TokenByID(tv.ID)
		if actual == nil {
			continue
		}
		_, scouted := player.KnownEnemyPowers[tv.ID]
		if !actual.Revealed && !scouted {
			out = append(out, Violation{"leak", fmt.Sprintf(
				"enemy %s has power %d in view but is neither revealed nor scouted", tv.ID, tv.Power)})
		}
	}

	ownInView := make(map[string]bool, len(v.OwnTokens))
	for _, tv := range v.OwnTokens {
		ownInView[tv.ID] = true
		if tv.Power == 0 {
			out = append(out, Violation{"omission", fmt.Sprintf("own token %s has no power in view", tv.ID)})
		}
	}
	for _, own := range player.AliveTokens() {
		if !ownInView[own.ID] {
			out = append(out, Violation{"omission", fmt.Sprintf("own token %s is alive but missing from view", own.ID)})
		}
	}
	return out
}

func enemyVisible(s *noose.State, player *noose.Player, enemy *noose.Token) bool {
	if enemy.Ambushing {
		return false
	}
	for _, own := range player.AliveTokens() {
		if own.Position.Distance(enemy.Position) <= s.Config.VisibilityRange {
			return true
		}
	}
	return false
}

// VerifyPrompt checks a rendered string against the view it came from and
// the full state. Detected violations: an invisible enemy id appearing
// literally, a hidden power value appearing syntactically near an
// unrevealed enemy id, a living own token id missing, and a missing turn
// number.
func VerifyPrompt(prompt string, v *noose.View, s *noose.State, playerID string) []Violation {
	var out []Violation
	player := s.Players[playerID]
	opponent := s.Players[s.Opponent(playerID)]
	if player == nil || opponent == nil {
		return out
	}

	inView := make(map[string]bool, len(v.EnemyTokens))
	for _, tv := range v.EnemyTokens {
		inView[tv.ID] = true
	}

	for _, enemy := range opponent.AliveTokens() {
		if inView[enemy.ID] {
			continue
		}
		if strings.Contains(prompt, enemy.ID) {
			out = append(out, Violation{"leak", fmt.Sprintf("invisible enemy id %q found in prompt", enemy.ID)})
		}
	}

	for _, enemy := range opponent.AliveTokens() {
		if enemy.Revealed || enemy.Power == 0 {
			continue
		}
		if _, scouted := player.KnownEnemyPowers[enemy.ID]; scouted {
			continue
		}
		if hiddenPowerNearID(prompt, enemy.ID, enemy.Power) {
			out = append(out, Violation{"leak", fmt.Sprintf(
				"hidden power %d for unrevealed enemy %s found in prompt", enemy.Power, enemy.ID)})
		}
	}

	for _, own := range player.AliveTokens() {
		if !strings.Contains(prompt, own.ID) {
			out = append(out, Violation{"omission", fmt.Sprintf("own token %s not found in prompt", own.ID)})
		}
	}

	if !turnNumberPresent(prompt, s.Turn) {
		out = append(out, Violation{"omission", fmt.Sprintf("turn number %d not found in prompt", s.Turn)})
	}
	return out
}

// hiddenPowerNearID scans the context window around each occurrence of id
// for power-value patterns like "power 4" or "pow=4".
func hiddenPowerNearID(prompt, id string, power int) bool {
	patterns := []string{
		fmt.Sprintf("power %d", power),
		fmt.Sprintf("power=%d", power),
		fmt.Sprintf("pow=%d", power),
		fmt.Sprintf("pow %d", power),
		fmt.Sprintf("\"power\": %d", power),
	}
	for from := 0; ; {
		idx := strings.Index(prompt[from:], id)
		if idx < 0 {
			return false
		}
		pos := from + idx
		lo := pos - 30
		if lo < 0 {
			lo = 0
		}
		hi := pos + len(id) + 50
		if hi > len(prompt) {
			hi = len(prompt)
		}
		context := prompt[lo:hi]
		for _, p := range patterns {
			if strings.Contains(context, p) {
				return true
			}
		}
		from = pos + len(id)
	}
}

func turnNumberPresent(prompt string, turn int) bool {
	t := fmt.Sprintf("%d", turn)
	lower := strings.ToLower(prompt)
	for _, pattern := range []string{
		"turn " + t,
		"turn: " + t,
		"\"turn\": " + t,
		"\"turn\":" + t,
	} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
