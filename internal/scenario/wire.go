package scenario

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/napolitain/fleetsim/internal/models"
)

// Binary layout, compatible with this message set:
//
//	message Scenario  { Side attacker = 1; Side defender = 2; int64 trials = 3; uint64 seed = 4; }
//	message Side      { Tech tech = 1; repeated UnitCount units = 2; }
//	message Tech      { int64 weapon = 1; int64 shield = 2; int64 armor = 3; }
//	message UnitCount { string kind = 1; uint64 count = 2; }
const (
	scenarioAttacker protowire.Number = 1
	scenarioDefender protowire.Number = 2
	scenarioTrials   protowire.Number = 3
	scenarioSeed     protowire.Number = 4

	sideTech  protowire.Number = 1
	sideUnits protowire.Number = 2

	techWeapon protowire.Number = 1
	techShield protowire.Number = 2
	techArmor  protowire.Number = 3

	unitKind  protowire.Number = 1
	unitCount protowire.Number = 2
)

func encodeScenario(s *Scenario) []byte {
	var b []byte
	b = protowire.AppendTag(b, scenarioAttacker, protowire.BytesType)
	b = protowire.AppendBytes(b, encodeSide(s.Attacker))
	b = protowire.AppendTag(b, scenarioDefender, protowire.BytesType)
	b = protowire.AppendBytes(b, encodeSide(s.Defender))
	if s.Trials != 0 {
		b = protowire.AppendTag(b, scenarioTrials, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(s.Trials)))
	}
	if s.Seed != 0 {
		b = protowire.AppendTag(b, scenarioSeed, protowire.VarintType)
		b = protowire.AppendVarint(b, s.Seed)
	}
	return b
}

func encodeSide(side Side) []byte {
	var b []byte
	if tech := encodeTech(side.Tech); len(tech) > 0 {
		b = protowire.AppendTag(b, sideTech, protowire.BytesType)
		b = protowire.AppendBytes(b, tech)
	}
	// Sorted for a stable encoding.
	for _, name := range sortedNames(side.Units) {
		var u []byte
		u = protowire.AppendTag(u, unitKind, protowire.BytesType)
		u = protowire.AppendString(u, name)
		u = protowire.AppendTag(u, unitCount, protowire.VarintType)
		u = protowire.AppendVarint(u, side.Units[name])

		b = protowire.AppendTag(b, sideUnits, protowire.BytesType)
		b = protowire.AppendBytes(b, u)
	}
	return b
}

func encodeTech(t models.TechLevels) []byte {
	var b []byte
	for _, f := range []struct {
		num   protowire.Number
		value int
	}{{techWeapon, t.Weapon}, {techShield, t.Shield}, {techArmor, t.Armor}} {
		if f.value == 0 {
			continue
		}
		b = protowire.AppendTag(b, f.num, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(f.value)))
	}
	return b
}

var errWireType = errors.New("unexpected wire type")

// fieldFunc handles one field of a message and returns the bytes consumed.
// Returning 0 with a nil error skips the field.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// consumeMessage walks every field of b
func consumeMessage(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

// consumeBytes reads a length-delimited field
func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// consumeVarint reads a varint field
func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

var errOverflow = errors.New("value does not fit in int")

// varintToInt reads an int64 varint. Values the platform int cannot hold
// are rejected, never truncated.
func varintToInt(v uint64) (int, error) {
	x := int64(v)
	if int64(int(x)) != x {
		return 0, fmt.Errorf("%w: %d", errOverflow, x)
	}
	return int(x), nil
}

func decodeScenario(b []byte, s *Scenario) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case scenarioAttacker, scenarioDefender:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			side := &s.Attacker
			if num == scenarioDefender {
				side = &s.Defender
			}
			return n, decodeSide(v, side)
		case scenarioTrials:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return 0, err
			}
			trials, err := varintToInt(v)
			if err != nil {
				return 0, fmt.Errorf("trials: %w", err)
			}
			s.Trials = trials
			return n, nil
		case scenarioSeed:
			v, n, err := consumeVarint(typ, b)
			s.Seed = v
			return n, err
		}
		return 0, nil
	})
}

func decodeSide(b []byte, side *Side) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case sideTech:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			return n, decodeTech(v, &side.Tech)
		case sideUnits:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			name, count, err := decodeUnitCount(v)
			if err != nil {
				return 0, err
			}
			if side.Units == nil {
				side.Units = make(map[string]uint64)
			}
			side.Units[name] = models.SaturatingAdd(side.Units[name], count)
			return n, nil
		}
		return 0, nil
	})
}

func decodeTech(b []byte, t *models.TechLevels) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var dst *int
		switch num {
		case techWeapon:
			dst = &t.Weapon
		case techShield:
			dst = &t.Shield
		case techArmor:
			dst = &t.Armor
		default:
			return 0, nil
		}
		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}
		level, err := varintToInt(v)
		if err != nil {
			return 0, fmt.Errorf("tech level: %w", err)
		}
		*dst = level
		return n, nil
	})
}

func decodeUnitCount(b []byte) (name string, count uint64, err error) {
	err = consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case unitKind:
			v, n, err := consumeBytes(typ, b)
			name = string(v)
			return n, err
		case unitCount:
			v, n, err := consumeVarint(typ, b)
			count = v
			return n, err
		}
		return 0, nil
	})
	if err == nil && name == "" {
		err = errors.New("unit entry without kind")
	}
	return name, count, err
}
