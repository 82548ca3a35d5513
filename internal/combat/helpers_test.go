package combat

import (
	"math"
	"testing"

	"github.com/napolitain/fleetsim/internal/models"
)

// stubRand replays scripted draws. Once a queue is empty IntN returns 0 and
// Float64 returns a value that never triggers an explosion or rapid fire.
type stubRand struct {
	ints       []int
	floats     []float64
	floatCalls int
}

func (s *stubRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *stubRand) Float64() float64 {
	s.floatCalls++
	if len(s.floats) == 0 {
		return 0.999999
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func player(tech models.TechLevels, units map[models.UnitKind]uint64) models.Player {
	return models.Player{Fleet: models.NewFleet(units), Tech: tech}
}

func singlePool(t *testing.T, kind models.UnitKind, count uint64) *Pool {
	t.Helper()
	fleet := models.NewFleet(map[models.UnitKind]uint64{kind: count})
	return NewPool(fleet, models.TechLevels{}, DefaultData())
}

// checkPoolInvariants verifies the alive index against the alive flags
func checkPoolInvariants(t *testing.T, p *Pool) {
	t.Helper()
	seen := make(map[int]bool, len(p.aliveIndex))
	for pos, id := range p.aliveIndex {
		if p.positionOf[id] != pos {
			t.Fatalf("positionOf[%d] = %d, want %d", id, p.positionOf[id], pos)
		}
		if !p.alive[id] {
			t.Fatalf("entity %d in alive index but marked dead", id)
		}
		if seen[id] {
			t.Fatalf("entity %d listed twice in alive index", id)
		}
		seen[id] = true
	}
	alive := 0
	var byKind [models.UnitKindCount]uint64
	for id, a := range p.alive {
		if a {
			alive++
			byKind[p.kind[id]]++
			if !seen[id] {
				t.Fatalf("entity %d alive but missing from alive index", id)
			}
		}
	}
	if alive != p.AliveCount() {
		t.Fatalf("alive flags = %d, AliveCount = %d", alive, p.AliveCount())
	}
	if byKind != p.aliveByKind {
		t.Fatalf("per-kind counts drifted: %v vs %v", byKind, p.aliveByKind)
	}
}
