// Package scenario reads and writes battle setups: both sides' fleets and
// research levels plus the trial count and seed of a run.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/napolitain/fleetsim/internal/models"
)

var (
	// ErrInvalidScenario is returned for scenarios that cannot be simulated
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrUnsupportedFormat is returned for unknown file extensions
	ErrUnsupportedFormat = errors.New("unsupported scenario format")
)

// Side is one participant: unit counts keyed by unit name plus research
type Side struct {
	Units map[string]uint64 `yaml:"units" json:"units"`
	Tech  models.TechLevels `yaml:"tech" json:"tech"`
}

// Scenario describes a simulation run. Trials and Seed may be zero, in which
// case the caller's defaults apply.
type Scenario struct {
	Attacker Side   `yaml:"attacker" json:"attacker"`
	Defender Side   `yaml:"defender" json:"defender"`
	Trials   int    `yaml:"trials,omitempty" json:"trials,omitempty"`
	Seed     uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Format is a scenario file encoding
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatProto
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatProto:
		return "protobuf"
	default:
		return "yaml"
	}
}

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".pb", ".bin":
		return FormatProto, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	s, err := Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes a scenario in the encoding implied by the path
func Save(path string, s *Scenario) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(s, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	return nil
}

// Unmarshal decodes a scenario. JSON is read by the YAML decoder.
func Unmarshal(data []byte, format Format) (*Scenario, error) {
	s := &Scenario{}
	switch format {
	case FormatYAML, FormatJSON:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
	case FormatProto:
		if err := decodeScenario(data, s); err != nil {
			return nil, fmt.Errorf("%w: invalid protobuf: %v", ErrInvalidScenario, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return s, nil
}

// Marshal encodes a scenario
func Marshal(s *Scenario, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatProto:
		return encodeScenario(s), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Validate checks unit names, research levels and the trial count
func Validate(s *Scenario) error {
	if s.Trials < 0 {
		return fmt.Errorf("%w: trials %d is negative", ErrInvalidScenario, s.Trials)
	}
	for _, side := range []struct {
		name string
		side Side
	}{{"attacker", s.Attacker}, {"defender", s.Defender}} {
		for _, name := range sortedNames(side.side.Units) {
			if _, err := models.ParseUnitKind(name); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidScenario, side.name, err)
			}
		}
		if err := side.side.Tech.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidScenario, side.name, err)
		}
	}
	return nil
}

// Player converts a side into a combat participant. Counts for names that
// resolve to the same kind are added up.
func (s Side) Player() (models.Player, error) {
	p := models.Player{Tech: s.Tech}
	for _, name := range sortedNames(s.Units) {
		kind, err := models.ParseUnitKind(name)
		if err != nil {
			return models.Player{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
		p.Fleet.Add(kind, s.Units[name])
	}
	return p, nil
}

// Players converts both sides
func (s *Scenario) Players() (attacker, defender models.Player, err error) {
	if attacker, err = s.Attacker.Player(); err != nil {
		return models.Player{}, models.Player{}, fmt.Errorf("attacker: %w", err)
	}
	if defender, err = s.Defender.Player(); err != nil {
		return models.Player{}, models.Player{}, fmt.Errorf("defender: %w", err)
	}
	return attacker, defender, nil
}

// SideFromPlayer is the inverse of Side.Player, using canonical unit names
func SideFromPlayer(p models.Player) Side {
	return Side{Units: p.Fleet.Map(), Tech: p.Tech}
}

// FromPlayers builds a scenario for the given participants
func FromPlayers(attacker, defender models.Player, trials int, seed uint64) *Scenario {
	return &Scenario{
		Attacker: SideFromPlayer(attacker),
		Defender: SideFromPlayer(defender),
		Trials:   trials,
		Seed:     seed,
	}
}

func sortedNames(units map[string]uint64) []string {
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
