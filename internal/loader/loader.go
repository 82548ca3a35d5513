package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/napolitain/fleetsim/internal/combat"
	"github.com/napolitain/fleetsim/internal/models"
)

const (
	unitsFile     = "units.json"
	rapidFireFile = "rapid_fire.json"
)

// UnitJSON represents one entry of units.json. Omitted fields keep the
// built-in value.
type UnitJSON struct {
	Attack *float64           `json:"attack,omitempty"`
	Shield *float64           `json:"shield,omitempty"`
	Hull   *float64           `json:"hull,omitempty"`
	Speed  *float64           `json:"speed,omitempty"`
	Cargo  *float64           `json:"cargo,omitempty"`
	Costs  map[string]float64 `json:"costs,omitempty"`
}

// LoadUnitStats reads units.json and applies it on top of the built-in table
func LoadUnitStats(dataDir string) (*models.StatsTable, error) {
	filePath := filepath.Join(dataDir, unitsFile)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", unitsFile, err)
	}

	var rawUnits map[string]UnitJSON
	if err := json.Unmarshal(data, &rawUnits); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", unitsFile, err)
	}

	table := models.DefaultStatsTable()
	for _, name := range sortedKeys(rawUnits) {
		kind, err := models.ParseUnitKind(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", unitsFile, err)
		}
		stats, err := applyUnit(table.Get(kind), rawUnits[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", unitsFile, name, err)
		}
		if table, err = table.With(stats); err != nil {
			return nil, fmt.Errorf("%s: %w", unitsFile, err)
		}
	}
	return table, nil
}

func applyUnit(stats models.UnitStats, raw UnitJSON) (models.UnitStats, error) {
	if raw.Attack != nil {
		stats.Attack = *raw.Attack
	}
	if raw.Shield != nil {
		stats.Shield = *raw.Shield
	}
	if raw.Hull != nil {
		stats.Hull = *raw.Hull
	}
	if raw.Speed != nil {
		stats.Speed = *raw.Speed
	}
	if raw.Cargo != nil {
		stats.Cargo = *raw.Cargo
	}

	for res, amount := range raw.Costs {
		switch models.ResourceType(res) {
		case models.Metal:
			stats.Cost.Metal = amount
		case models.Crystal:
			stats.Cost.Crystal = amount
		case models.Deuterium:
			stats.Cost.Deuterium = amount
		default:
			return stats, fmt.Errorf("unknown resource %q", res)
		}
	}
	return stats, nil
}

// LoadRapidFire reads rapid_fire.json, a shooter -> target -> shots map, and
// merges it into the built-in rules. A factor of 1 removes a rule.
func LoadRapidFire(dataDir string) (*models.RapidFireTable, error) {
	filePath := filepath.Join(dataDir, rapidFireFile)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rapidFireFile, err)
	}

	var rawRules map[string]map[string]int
	if err := json.Unmarshal(data, &rawRules); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rapidFireFile, err)
	}

	merged := make(map[[2]models.UnitKind]int)
	for _, r := range models.AllRapidFireRules() {
		merged[[2]models.UnitKind{r.Shooter, r.Target}] = r.Shots
	}

	for shooterName, targets := range rawRules {
		shooter, err := models.ParseUnitKind(shooterName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rapidFireFile, err)
		}
		for targetName, shots := range targets {
			target, err := models.ParseUnitKind(targetName)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", rapidFireFile, err)
			}
			merged[[2]models.UnitKind{shooter, target}] = shots
		}
	}

	rules := make([]models.RapidFire, 0, len(merged))
	for pair, shots := range merged {
		rules = append(rules, models.RapidFire{Shooter: pair[0], Target: pair[1], Shots: shots})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Shooter != rules[j].Shooter {
			return rules[i].Shooter < rules[j].Shooter
		}
		return rules[i].Target < rules[j].Target
	})

	table, err := models.NewRapidFireTable(rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rapidFireFile, err)
	}
	return table, nil
}

// LoadData builds the combat data service from dataDir. An empty dataDir
// means the built-in tables. A missing file inside dataDir is not fatal and
// only logs a warning; a malformed one is.
func LoadData(dataDir string, logger *zap.Logger) (*combat.Data, error) {
	if dataDir == "" {
		return combat.DefaultData(), nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stats, err := LoadUnitStats(dataDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("no unit overrides, using built-in stats", zap.String("dir", dataDir))
		stats = models.DefaultStatsTable()
	case err != nil:
		return nil, err
	}

	rapidFire, err := LoadRapidFire(dataDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("no rapid fire overrides, using built-in rules", zap.String("dir", dataDir))
		rapidFire = models.DefaultRapidFireTable()
	case err != nil:
		return nil, err
	}

	logger.Debug("combat data loaded", zap.String("dir", dataDir))
	return combat.NewData(stats, rapidFire), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
