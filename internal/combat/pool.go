package combat

import "github.com/napolitain/fleetsim/internal/models"

// Pool is the mutable per-unit state of one side during a single trial.
//
// Entities are stored in parallel arrays and never added or removed; dead
// entries keep their last hull and shield. aliveIndex is a dense list of the
// entities still in the fight and positionOf maps an entity back to its slot
// in aliveIndex, which makes both uniform picking and removal O(1).
type Pool struct {
	hull       []float64
	shield     []float64
	kind       []models.UnitKind
	alive      []bool
	aliveIndex []int
	positionOf []int

	aliveByKind [models.UnitKindCount]uint64

	attack    [models.UnitKindCount]float64
	maxShield [models.UnitKindCount]float64
	maxHull   [models.UnitKindCount]float64
}

// NewPool expands a fleet into one entity per unit, in kind index order
func NewPool(fleet models.Fleet, tech models.TechLevels, data *Data) *Pool {
	n := int(fleet.Total())
	p := &Pool{
		hull:       make([]float64, 0, n),
		shield:     make([]float64, 0, n),
		kind:       make([]models.UnitKind, 0, n),
		alive:      make([]bool, 0, n),
		aliveIndex: make([]int, 0, n),
		positionOf: make([]int, 0, n),
	}

	fleet.Each(func(k models.UnitKind, count uint64) {
		p.attack[k] = data.EffectiveAttack(k, tech)
		p.maxShield[k] = data.EffectiveShield(k, tech)
		p.maxHull[k] = data.EffectiveHull(k, tech)
		p.aliveByKind[k] = count

		for i := uint64(0); i < count; i++ {
			id := len(p.kind)
			p.hull = append(p.hull, p.maxHull[k])
			p.shield = append(p.shield, p.maxShield[k])
			p.kind = append(p.kind, k)
			p.alive = append(p.alive, true)
			p.aliveIndex = append(p.aliveIndex, id)
			p.positionOf = append(p.positionOf, id)
		}
	})
	return p
}

// Len returns the number of entities ever created, alive or dead
func (p *Pool) Len() int {
	return len(p.kind)
}

// AliveCount returns the number of entities still in the fight
func (p *Pool) AliveCount() int {
	return len(p.aliveIndex)
}

// PickRandomAlive returns a uniformly random alive entity. ok is false when
// the pool has no legal target left.
func (p *Pool) PickRandomAlive(r Rand) (id int, ok bool) {
	n := len(p.aliveIndex)
	if n == 0 {
		return -1, false
	}
	return p.aliveIndex[r.IntN(n)], true
}

// Kill removes an entity from the alive index by swapping the last alive
// entry into its slot. Killing a dead entity is a no-op.
func (p *Pool) Kill(id int) {
	if !p.alive[id] {
		return
	}
	pos := p.positionOf[id]
	last := len(p.aliveIndex) - 1
	moved := p.aliveIndex[last]

	p.aliveIndex[pos] = moved
	p.positionOf[moved] = pos
	p.aliveIndex = p.aliveIndex[:last]

	p.positionOf[id] = -1
	p.alive[id] = false
	p.aliveByKind[p.kind[id]]--
}

// ResetShields restores every alive entity to its kind's full shield
func (p *Pool) ResetShields() {
	for _, id := range p.aliveIndex {
		p.shield[id] = p.maxShield[p.kind[id]]
	}
}

// ToFleet counts alive entities per kind
func (p *Pool) ToFleet() models.Fleet {
	var f models.Fleet
	for i, n := range p.aliveByKind {
		f.Set(models.UnitKind(i), n)
	}
	return f
}

// AliveByKind snapshots alive counts per kind
func (p *Pool) AliveByKind() [models.UnitKindCount]uint64 {
	return p.aliveByKind
}

// Alive reports whether the entity is still in the fight
func (p *Pool) Alive(id int) bool { return p.alive[id] }

// Kind returns the unit kind of an entity
func (p *Pool) Kind(id int) models.UnitKind { return p.kind[id] }

// Hull returns the remaining hull points of an entity
func (p *Pool) Hull(id int) float64 { return p.hull[id] }

// Shield returns the remaining shield points of an entity. Negative values
// mean the shield collapsed this round.
func (p *Pool) Shield(id int) float64 { return p.shield[id] }

// Attack returns the effective weapon damage of a kind for this side
func (p *Pool) Attack(k models.UnitKind) float64 { return p.attack[k] }

// MaxShield returns the effective full shield of a kind for this side
func (p *Pool) MaxShield(k models.UnitKind) float64 { return p.maxShield[k] }

// MaxHull returns the effective full hull of a kind for this side
func (p *Pool) MaxHull(k models.UnitKind) float64 { return p.maxHull[k] }
