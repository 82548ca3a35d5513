// Package combat resolves battles between two fleets: per-unit pools,
// shot resolution with shields and explosions, the six-round battle loop
// and the Monte-Carlo averager built on top of it.
package combat

import "github.com/napolitain/fleetsim/internal/models"

// techBonus is the per-level multiplier applied to weapon, shield and armor
const techBonus = 0.1

// hullDivisor converts the structural integrity of a unit into hull points
const hullDivisor = 10.0

// Data combines the static unit and rapid fire tables with research levels.
// It is read-only and safe to share between goroutines.
type Data struct {
	stats     *models.StatsTable
	rapidFire *models.RapidFireTable
}

// NewData creates a combat data service over the given tables
func NewData(stats *models.StatsTable, rapidFire *models.RapidFireTable) *Data {
	return &Data{stats: stats, rapidFire: rapidFire}
}

// DefaultData uses the built-in tables
func DefaultData() *Data {
	return NewData(models.DefaultStatsTable(), models.DefaultRapidFireTable())
}

// Stats exposes the underlying unit table
func (d *Data) Stats() *models.StatsTable {
	return d.stats
}

// EffectiveAttack = base_attack * (1 + 0.1 * weapon)
func (d *Data) EffectiveAttack(k models.UnitKind, tech models.TechLevels) float64 {
	return d.stats.Get(k).Attack * (1 + techBonus*float64(tech.Weapon))
}

// EffectiveShield = base_shield * (1 + 0.1 * shield)
func (d *Data) EffectiveShield(k models.UnitKind, tech models.TechLevels) float64 {
	return d.stats.Get(k).Shield * (1 + techBonus*float64(tech.Shield))
}

// EffectiveHull = base_hull / 10 * (1 + 0.1 * armor)
func (d *Data) EffectiveHull(k models.UnitKind, tech models.TechLevels) float64 {
	return d.stats.Get(k).Hull / hullDivisor * (1 + techBonus*float64(tech.Armor))
}

// RapidFire returns how many shots shooter fires on average against target
func (d *Data) RapidFire(shooter, target models.UnitKind) int {
	return d.rapidFire.Get(shooter, target)
}
