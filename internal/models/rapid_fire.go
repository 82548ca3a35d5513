package models

import "fmt"

// RapidFire is a single sparse override: Shooter repeats against Target
// Shots times on average.
type RapidFire struct {
	Shooter UnitKind
	Target  UnitKind
	Shots   int
}

// RapidFireTable is an immutable (shooter, target) -> repeat factor lookup.
// Pairs without an override have factor 1.
type RapidFireTable struct {
	factors [UnitKindCount][UnitKindCount]uint16
}

// NewRapidFireTable builds a table from sparse rules
func NewRapidFireTable(rules []RapidFire) (*RapidFireTable, error) {
	t := &RapidFireTable{}
	for i := range t.factors {
		for j := range t.factors[i] {
			t.factors[i][j] = 1
		}
	}
	for _, r := range rules {
		if !r.Shooter.Valid() || !r.Target.Valid() {
			return nil, fmt.Errorf("%w: rapid fire %d -> %d", ErrUnknownUnit, int(r.Shooter), int(r.Target))
		}
		if r.Shots < 1 || r.Shots > 0xFFFF {
			return nil, fmt.Errorf("rapid fire %s -> %s: shots %d out of range", r.Shooter, r.Target, r.Shots)
		}
		t.factors[r.Shooter][r.Target] = uint16(r.Shots)
	}
	return t, nil
}

// DefaultRapidFireTable returns the built-in rapid fire rules
func DefaultRapidFireTable() *RapidFireTable {
	t, err := NewRapidFireTable(AllRapidFireRules())
	if err != nil {
		panic(err)
	}
	return t
}

// Get returns the repeat factor, 1 when no override exists
func (t *RapidFireTable) Get(shooter, target UnitKind) int {
	return int(t.factors[shooter][target])
}

// Against returns every override a shooter has, in target index order
func (t *RapidFireTable) Against(shooter UnitKind) []RapidFire {
	var out []RapidFire
	for j, f := range t.factors[shooter] {
		if f > 1 {
			out = append(out, RapidFire{Shooter: shooter, Target: UnitKind(j), Shots: int(f)})
		}
	}
	return out
}

// civilianTargets are hit by rapid fire of almost every ship
var civilianTargets = []UnitKind{EspionageProbe, SolarSatellite, Crawler}

// AllRapidFireRules returns the sparse rapid fire rules
func AllRapidFireRules() []RapidFire {
	var rules []RapidFire
	for _, shooter := range []UnitKind{
		SmallCargo, LargeCargo, LightFighter, HeavyFighter, Cruiser, Battleship,
		BattleCruiser, Recycler, ColonyShip, Bomber, Destroyer, Reaper, Pathfinder,
	} {
		for _, target := range civilianTargets {
			rules = append(rules, RapidFire{Shooter: shooter, Target: target, Shots: 5})
		}
	}

	rules = append(rules,
		RapidFire{HeavyFighter, SmallCargo, 3},

		RapidFire{Cruiser, LightFighter, 6},
		RapidFire{Cruiser, MissileLauncher, 10},

		RapidFire{Battleship, Pathfinder, 5},

		RapidFire{BattleCruiser, HeavyFighter, 4},
		RapidFire{BattleCruiser, Cruiser, 4},
		RapidFire{BattleCruiser, Battleship, 7},
		RapidFire{BattleCruiser, SmallCargo, 3},
		RapidFire{BattleCruiser, LargeCargo, 3},

		RapidFire{Bomber, MissileLauncher, 20},
		RapidFire{Bomber, LightLaser, 20},
		RapidFire{Bomber, HeavyLaser, 10},
		RapidFire{Bomber, IonCannon, 10},
		RapidFire{Bomber, GaussCannon, 5},
		RapidFire{Bomber, PlasmaTurret, 5},

		RapidFire{Destroyer, LightLaser, 10},
		RapidFire{Destroyer, BattleCruiser, 2},

		RapidFire{DeathStar, EspionageProbe, 250},
		RapidFire{DeathStar, SolarSatellite, 250},
		RapidFire{DeathStar, Crawler, 250},
		RapidFire{DeathStar, SmallCargo, 250},
		RapidFire{DeathStar, LargeCargo, 250},
		RapidFire{DeathStar, ColonyShip, 250},
		RapidFire{DeathStar, Recycler, 250},
		RapidFire{DeathStar, LightFighter, 200},
		RapidFire{DeathStar, HeavyFighter, 100},
		RapidFire{DeathStar, Cruiser, 33},
		RapidFire{DeathStar, Battleship, 30},
		RapidFire{DeathStar, Bomber, 25},
		RapidFire{DeathStar, Destroyer, 5},
		RapidFire{DeathStar, BattleCruiser, 15},
		RapidFire{DeathStar, Pathfinder, 30},
		RapidFire{DeathStar, Reaper, 10},
		RapidFire{DeathStar, LightLaser, 200},
		RapidFire{DeathStar, HeavyLaser, 100},
		RapidFire{DeathStar, IonCannon, 100},
		RapidFire{DeathStar, GaussCannon, 50},

		RapidFire{Reaper, Battleship, 7},
		RapidFire{Reaper, Bomber, 4},
		RapidFire{Reaper, Destroyer, 3},

		RapidFire{Pathfinder, Cruiser, 3},
		RapidFire{Pathfinder, LightFighter, 3},
		RapidFire{Pathfinder, HeavyFighter, 2},
	)
	return rules
}
