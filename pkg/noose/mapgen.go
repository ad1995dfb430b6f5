package noose

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	contentiousCount   = 3
	difficultCoverMin  = 0.20
	difficultCoverMax  = 0.30
	difficultNoiseFreq = 0.18 // low frequency: broad, slowly-varying regions
	maxGenerationTries = 64
)

// GenerateBoard deterministically builds a square board of the configured
// side length from an integer seed: the same seed always produces the same
// map.
func GenerateBoard(side int, seed int64) *Board {
	var b *Board
	for attempt := 0; attempt < maxGenerationTries; attempt++ {
		var ok bool
		b, ok = generateAttempt(side, seed, attempt)
		if ok {
			return b
		}
	}
	// Exhausted retries: fall back to the last attempt's board regardless,
	// rather than panicking — callers always get a usable map.
	return b
}

func cornerCells(side int) [2]Hex {
	return [2]Hex{{Q: 0, R: 0}, {Q: side - 1, R: side - 1}}
}

func generateAttempt(side int, seed int64, attempt int) (*Board, bool) {
	subSeed := seed + int64(attempt)*104729 // distinct deterministic sub-seeds per retry
	rng := rand.New(rand.NewSource(subSeed))

	b := &Board{Side: side, Hexes: make(map[Hex]*MapHex, side*side)}
	for r := 0; r < side; r++ {
		for q := 0; q < side; q++ {
			h := Hex{Q: q, R: r}
			b.Hexes[h] = &MapHex{Coord: h, Terrain: Open}
		}
	}

	corners := cornerCells(side)
	center := b.Center()
	protected := map[Hex]bool{corners[0]: true, corners[1]: true}

	contentious := pickContentiousCells(b, center, rng, protected)
	for _, h := range contentious {
		b.Hexes[h].Terrain = Contentious
		protected[h] = true
	}

	sprinkleDifficult(b, subSeed, protected)

	for _, c := range corners {
		for _, target := range contentious {
			if b.ShortestPath(c, target, Difficult) == nil {
				return b, false // unreachable under this sub-seed; caller retries
			}
		}
	}

	coverage := difficultCoverage(b)
	if coverage < difficultCoverMin || coverage > difficultCoverMax {
		return b, false
	}

	return b, true
}

// pickContentiousCells chooses contentiousCount cells inside a radius-1 box
// around the center, excluding protected (corner) cells.
func pickContentiousCells(b *Board, center Hex, rng *rand.Rand, protected map[Hex]bool) []Hex {
	var candidates []Hex
	for dr := -1; dr <= 1; dr++ {
		for dq := -1; dq <= 1; dq++ {
			h := Hex{Q: center.Q + dq, R: center.R + dr}
			if !b.InBounds(h) || protected[h] {
				continue
			}
			candidates = append(candidates, h)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	n := contentiousCount
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

// sprinkleDifficult paints Difficult terrain using a low-frequency 2-D noise
// field: eligible cells are ranked by noise magnitude and the top N are
// painted, N being the midpoint of the cell counts for difficultCoverMin and
// difficultCoverMax. generateAttempt then checks that the coverage is inside
// that band.
func sprinkleDifficult(b *Board, seed int64, protected map[Hex]bool) {
	noise := opensimplex.New(seed)
	type cell struct {
		h     Hex
		score float64
	}
	var eligible []cell
	for h, mh := range b.Hexes {
		if protected[h] || mh.Terrain != Open {
			continue
		}
		v := noise.Eval2(float64(h.Q)*difficultNoiseFreq, float64(h.R)*difficultNoiseFreq)
		if v < 0 {
			v = -v
		}
		eligible = append(eligible, cell{h: h, score: v})
	}
	total := b.Side * b.Side
	targetLo := int(difficultCoverMin * float64(total))
	targetHi := int(difficultCoverMax * float64(total))
	targetCount := (targetLo + targetHi) / 2
	if targetCount > len(eligible) {
		targetCount = len(eligible)
	}

	// Sort descending by noise magnitude; admit the top targetCount cells.
	for i := 1; i < len(eligible); i++ {
		for j := i; j > 0 && eligible[j].score > eligible[j-1].score; j-- {
			eligible[j], eligible[j-1] = eligible[j-1], eligible[j]
		}
	}
	for i := 0; i < targetCount; i++ {
		b.Hexes[eligible[i].h].Terrain = Difficult
	}
}

func difficultCoverage(b *Board) float64 {
	count := 0
	for _, mh := range b.Hexes {
		if mh.Terrain == Difficult {
			count++
		}
	}
	return float64(count) / float64(b.Side*b.Side)
}
