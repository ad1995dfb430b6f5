// Package noose implements the deterministic hex-grid strategy engine: map
// generation, deployment, simultaneous order resolution, upkeep, and the
// fog-of-war view projected to each player.
package noose

import "fmt"

// Hex is an axial coordinate on the board.
type Hex struct {
	Q int
	R int
}

// String renders the coordinate as "(q,r)".
func (h Hex) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// directionVectors are the 6 axial neighbor offsets, clockwise from east.
var directionVectors = [6]Hex{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbor returns the neighbor in the given direction (0-5).
func (h Hex) Neighbor(direction int) Hex {
	d := directionVectors[direction]
	return Hex{Q: h.Q + d.Q, R: h.R + d.R}
}

// Neighbors returns all 6 neighbors in a fixed order.
func (h Hex) Neighbors() []Hex {
	out := make([]Hex, 6)
	for i := range directionVectors {
		out[i] = h.Neighbor(i)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Distance is the cube-coordinate distance max(|Δq|,|Δr|,|Δq+Δr|).
func (h Hex) Distance(other Hex) int {
	dq := abs(h.Q - other.Q)
	dr := abs(h.R - other.R)
	dqr := abs((h.Q + h.R) - (other.Q + other.R))
	return max3(dq, dr, dqr)
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// IsAdjacent reports whether two hexes share an edge.
func (h Hex) IsAdjacent(other Hex) bool {
	return h.Distance(other) == 1
}
