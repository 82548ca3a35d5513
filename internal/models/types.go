package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceType represents the different resource types in the game
type ResourceType string

const (
	Metal     ResourceType = "metal"
	Crystal   ResourceType = "crystal"
	Deuterium ResourceType = "deuterium"
)

// AllResourceTypes returns all resource types
func AllResourceTypes() []ResourceType {
	return []ResourceType{Metal, Crystal, Deuterium}
}

// UnitKind is the dense index of a ship or defense type.
// The numeric value doubles as the canonical firing order.
type UnitKind int

const (
	SmallCargo UnitKind = iota
	LargeCargo
	LightFighter
	HeavyFighter
	Cruiser
	Battleship
	ColonyShip
	Recycler
	EspionageProbe
	Bomber
	SolarSatellite
	Destroyer
	DeathStar
	BattleCruiser
	Reaper
	Pathfinder
	Crawler

	MissileLauncher
	LightLaser
	HeavyLaser
	GaussCannon
	IonCannon
	PlasmaTurret
	SmallShieldDome
	LargeShieldDome

	AntiBallisticMissile
	InterplanetaryMissile
)

// UnitKindCount is the number of unit kinds
const UnitKindCount = int(InterplanetaryMissile) + 1

var unitKindNames = [UnitKindCount]string{
	"small_cargo",
	"large_cargo",
	"light_fighter",
	"heavy_fighter",
	"cruiser",
	"battleship",
	"colony_ship",
	"recycler",
	"espionage_probe",
	"bomber",
	"solar_satellite",
	"destroyer",
	"death_star",
	"battle_cruiser",
	"reaper",
	"pathfinder",
	"crawler",
	"missile_launcher",
	"light_laser",
	"heavy_laser",
	"gauss_cannon",
	"ion_cannon",
	"plasma_turret",
	"small_shield_dome",
	"large_shield_dome",
	"anti_ballistic_missile",
	"interplanetary_missile",
}

// AllUnitKinds returns all unit kinds in deterministic (index) order
func AllUnitKinds() []UnitKind {
	kinds := make([]UnitKind, UnitKindCount)
	for i := range kinds {
		kinds[i] = UnitKind(i)
	}
	return kinds
}

// Valid reports whether k is inside the closed enumeration
func (k UnitKind) Valid() bool {
	return k >= 0 && int(k) < UnitKindCount
}

// IsDefense returns true for stationary planetary defenses
func (k UnitKind) IsDefense() bool {
	return k >= MissileLauncher && k <= InterplanetaryMissile
}

func (k UnitKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("unit(%d)", int(k))
	}
	return unitKindNames[k]
}

// ParseUnitKind accepts the snake_case name ("light_fighter"), the name
// without separators ("lightfighter") or the dense index ("2").
func ParseUnitKind(s string) (UnitKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for i, name := range unitKindNames {
		if norm == name || norm == strings.ReplaceAll(name, "_", "") {
			return UnitKind(i), nil
		}
	}
	if idx, err := strconv.Atoi(norm); err == nil {
		if k := UnitKind(idx); k.Valid() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// TechLevels holds the combat research levels of a fleet owner.
// Levels are unbounded and scale stats linearly (+10% per level).
type TechLevels struct {
	Weapon int `json:"weapon" yaml:"weapon"`
	Shield int `json:"shield" yaml:"shield"`
	Armor  int `json:"armor" yaml:"armor"`
}

// Validate rejects negative research levels
func (t TechLevels) Validate() error {
	if t.Weapon < 0 || t.Shield < 0 || t.Armor < 0 {
		return fmt.Errorf("%w: negative tech level %+v", ErrInvalidTech, t)
	}
	return nil
}

// Player is one side of a battle
type Player struct {
	Fleet Fleet
	Tech  TechLevels
}

// Costs represents resource costs (no maps)
type Costs struct {
	Metal     float64 `json:"metal" yaml:"metal"`
	Crystal   float64 `json:"crystal" yaml:"crystal"`
	Deuterium float64 `json:"deuterium" yaml:"deuterium"`
}

// Get returns the cost for a specific resource type
func (c Costs) Get(rt ResourceType) float64 {
	switch rt {
	case Metal:
		return c.Metal
	case Crystal:
		return c.Crystal
	case Deuterium:
		return c.Deuterium
	}
	return 0
}

// Add returns the sum of two costs
func (c Costs) Add(o Costs) Costs {
	return Costs{
		Metal:     c.Metal + o.Metal,
		Crystal:   c.Crystal + o.Crystal,
		Deuterium: c.Deuterium + o.Deuterium,
	}
}

// Scale multiplies every resource by n
func (c Costs) Scale(n float64) Costs {
	return Costs{
		Metal:     c.Metal * n,
		Crystal:   c.Crystal * n,
		Deuterium: c.Deuterium * n,
	}
}

// Total returns the sum of all resources
func (c Costs) Total() float64 {
	return c.Metal + c.Crystal + c.Deuterium
}
