package noose

import "fmt"

// Token is a single combat unit. Its Power is assigned exactly once, at
// deployment, and never changes afterward. Revealed and Alive are
// monotonic: once true/false they stay that way for the rest of the game.
type Token struct {
	ID       string
	Owner    string
	Position Hex
	Power    int // 1..5, zero before deployment
	Revealed bool
	Alive    bool

	// Transient, valid only for the turn in which they were set; reset to
	// false at the start of every resolution.
	Fortified bool
	Ambushing bool
}

// TokenID builds the canonical "<player>_f<k>" identifier.
func TokenID(owner string, k int) string {
	return fmt.Sprintf("%s_f%d", owner, k)
}

// IsSovereign reports whether this token carries the power-1 role.
// Only meaningful once Power has been assigned.
func (t *Token) IsSovereign() bool {
	return t.Power == 1
}

func newTokens(owner string, count int) []*Token {
	tokens := make([]*Token, count)
	for i := 0; i < count; i++ {
		tokens[i] = &Token{
			ID:    TokenID(owner, i+1),
			Owner: owner,
			Alive: true,
		}
	}
	return tokens
}
