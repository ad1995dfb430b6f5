package noose

import "testing"

func TestGenerateBoardDeterministic(t *testing.T) {
	a := GenerateBoard(7, 42)
	b := GenerateBoard(7, 42)
	for h, mh := range a.Hexes {
		ob := b.Hexes[h]
		if ob == nil || ob.Terrain != mh.Terrain {
			t.Fatalf("hex %s differs between two generations with the same seed", h)
		}
	}
}

func TestGenerateBoardDifferentSeeds(t *testing.T) {
	a := GenerateBoard(7, 1)
	b := GenerateBoard(7, 2)
	same := true
	for h, mh := range a.Hexes {
		if b.Hexes[h].Terrain != mh.Terrain {
			same = false
			break
		}
	}
	if same {
		t.Errorf("expected different seeds to usually produce different maps")
	}
}

func TestGenerateBoardCornersReachContentious(t *testing.T) {
	b := GenerateBoard(7, 7)
	corners := cornerCells(7)
	for _, c := range corners {
		for _, target := range b.ContentiousHexes() {
			if b.ShortestPath(c, target, Difficult) == nil {
				t.Errorf("corner %s cannot reach contentious hex %s", c, target)
			}
		}
	}
}

func TestGenerateBoardContentiousCount(t *testing.T) {
	b := GenerateBoard(7, 99)
	if got := len(b.ContentiousHexes()); got != contentiousCount {
		t.Errorf("expected %d contentious hexes, got %d", contentiousCount, got)
	}
}

func TestGenerateBoardDifficultCoverageInBand(t *testing.T) {
	b := GenerateBoard(7, 1234)
	coverage := difficultCoverage(b)
	if coverage < difficultCoverMin || coverage > difficultCoverMax {
		t.Errorf("difficult coverage %.2f outside [%.2f, %.2f]", coverage, difficultCoverMin, difficultCoverMax)
	}
}
