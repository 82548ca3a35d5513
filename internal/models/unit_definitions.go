package models

import "fmt"

// UnitStats contains static unit data
type UnitStats struct {
	Kind   UnitKind
	Attack float64 // base weapon damage per shot
	Shield float64 // base shield points
	Hull   float64 // structural integrity (metal + crystal cost)
	Cost   Costs
	Speed  float64 // units/hour, 0 for defenses
	Cargo  float64
}

// StatsTable is an immutable kind -> stats lookup
type StatsTable struct {
	stats [UnitKindCount]UnitStats
}

// NewStatsTable builds a table from definitions. Kinds that are not listed
// keep zero stats.
func NewStatsTable(defs []UnitStats) (*StatsTable, error) {
	t := &StatsTable{}
	for i := range t.stats {
		t.stats[i].Kind = UnitKind(i)
	}
	for _, def := range defs {
		if err := validateStats(def); err != nil {
			return nil, err
		}
		t.stats[def.Kind] = def
	}
	return t, nil
}

// DefaultStatsTable returns the built-in OGame unit table
func DefaultStatsTable() *StatsTable {
	t, err := NewStatsTable(AllUnitDefinitions())
	if err != nil {
		panic(err)
	}
	return t
}

// Get returns the stats for a kind
func (t *StatsTable) Get(k UnitKind) UnitStats {
	return t.stats[k]
}

// With returns a copy of the table with def replacing the entry of def.Kind
func (t *StatsTable) With(def UnitStats) (*StatsTable, error) {
	if err := validateStats(def); err != nil {
		return nil, err
	}
	c := *t
	c.stats[def.Kind] = def
	return &c, nil
}

func validateStats(def UnitStats) error {
	if !def.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownUnit, int(def.Kind))
	}
	if def.Attack < 0 || def.Shield < 0 || def.Hull < 0 {
		return fmt.Errorf("negative combat stats for %s", def.Kind)
	}
	return nil
}

// AllUnitDefinitions returns definitions for all ships and defenses
func AllUnitDefinitions() []UnitStats {
	return []UnitStats{
		{Kind: SmallCargo, Attack: 1, Shield: 1, Hull: 4000,
			Cost: Costs{Metal: 2000, Crystal: 2000}, Speed: 5000, Cargo: 5000},
		{Kind: LargeCargo, Attack: 1, Shield: 1, Hull: 12000,
			Cost: Costs{Metal: 6000, Crystal: 6000}, Speed: 7500, Cargo: 25000},
		{Kind: LightFighter, Attack: 50, Shield: 10, Hull: 4000,
			Cost: Costs{Metal: 3000, Crystal: 1000}, Speed: 12000, Cargo: 50},
		{Kind: HeavyFighter, Attack: 150, Shield: 25, Hull: 10000,
			Cost: Costs{Metal: 6000, Crystal: 4000}, Speed: 10000, Cargo: 100},
		{Kind: Cruiser, Attack: 400, Shield: 50, Hull: 27000,
			Cost: Costs{Metal: 20000, Crystal: 7000, Deuterium: 2000}, Speed: 15000, Cargo: 800},
		{Kind: Battleship, Attack: 1000, Shield: 200, Hull: 60000,
			Cost: Costs{Metal: 45000, Crystal: 15000}, Speed: 10000, Cargo: 1500},
		{Kind: ColonyShip, Attack: 1, Shield: 10, Hull: 30000,
			Cost: Costs{Metal: 10000, Crystal: 20000, Deuterium: 10000}, Speed: 2500, Cargo: 5000},
		{Kind: Recycler, Attack: 1, Shield: 10, Hull: 16000,
			Cost: Costs{Metal: 10000, Crystal: 6000}, Speed: 2000, Cargo: 2000},
		// Probes carry no weapon and no shield.
		{Kind: EspionageProbe, Attack: 0, Shield: 0, Hull: 1000,
			Cost: Costs{Crystal: 1000}, Speed: 20000, Cargo: 5},
		{Kind: Bomber, Attack: 1000, Shield: 100, Hull: 75000,
			Cost: Costs{Metal: 50000, Crystal: 25000, Deuterium: 15000}, Speed: 4000, Cargo: 500},
		{Kind: SolarSatellite, Attack: 1, Shield: 20, Hull: 2000,
			Cost: Costs{Crystal: 2000, Deuterium: 500}},
		{Kind: Destroyer, Attack: 2000, Shield: 500, Hull: 110000,
			Cost: Costs{Metal: 60000, Crystal: 50000, Deuterium: 15000}, Speed: 10000, Cargo: 2000},
		{Kind: DeathStar, Attack: 90000, Shield: 50000, Hull: 9000000,
			Cost: Costs{Metal: 5000000, Crystal: 4000000, Deuterium: 1000000}, Speed: 1000, Cargo: 100000},
		{Kind: BattleCruiser, Attack: 700, Shield: 400, Hull: 70000,
			Cost: Costs{Metal: 30000, Crystal: 40000, Deuterium: 15000}, Speed: 10000, Cargo: 750},
		{Kind: Reaper, Attack: 2800, Shield: 700, Hull: 140000,
			Cost: Costs{Metal: 85000, Crystal: 55000, Deuterium: 20000}, Speed: 7000, Cargo: 10000},
		{Kind: Pathfinder, Attack: 200, Shield: 100, Hull: 23000,
			Cost: Costs{Metal: 8000, Crystal: 15000, Deuterium: 8000}, Speed: 12000, Cargo: 10000},
		{Kind: Crawler, Attack: 1, Shield: 1, Hull: 4000,
			Cost: Costs{Metal: 2000, Crystal: 2000, Deuterium: 1000}},

		{Kind: MissileLauncher, Attack: 80, Shield: 20, Hull: 2000,
			Cost: Costs{Metal: 2000}},
		{Kind: LightLaser, Attack: 100, Shield: 25, Hull: 2000,
			Cost: Costs{Metal: 1500, Crystal: 500}},
		{Kind: HeavyLaser, Attack: 250, Shield: 100, Hull: 8000,
			Cost: Costs{Metal: 6000, Crystal: 2000}},
		{Kind: GaussCannon, Attack: 1100, Shield: 200, Hull: 35000,
			Cost: Costs{Metal: 20000, Crystal: 15000}},
		{Kind: IonCannon, Attack: 150, Shield: 500, Hull: 8000,
			Cost: Costs{Metal: 2000, Crystal: 6000}},
		{Kind: PlasmaTurret, Attack: 3000, Shield: 300, Hull: 100000,
			Cost: Costs{Metal: 50000, Crystal: 50000, Deuterium: 30000}},
		{Kind: SmallShieldDome, Attack: 1, Shield: 2000, Hull: 20000,
			Cost: Costs{Metal: 10000, Crystal: 10000}},
		{Kind: LargeShieldDome, Attack: 1, Shield: 10000, Hull: 100000,
			Cost: Costs{Metal: 50000, Crystal: 50000}},

		{Kind: AntiBallisticMissile, Attack: 1, Shield: 1, Hull: 8000,
			Cost: Costs{Metal: 8000}},
		{Kind: InterplanetaryMissile, Attack: 1, Shield: 1, Hull: 12500,
			Cost: Costs{Metal: 12500}, Speed: 30000},
	}
}
