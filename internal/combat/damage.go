package combat

import "math"

const (
	// ShieldCollapsed marks a shield that was broken through this round
	ShieldCollapsed = -1.0

	// bounceRatio: shots at or below 1% of the full shield do nothing
	bounceRatio = 0.01

	// explosionThreshold: below 70% hull a unit may explode
	explosionThreshold = 0.7

	// zeroTolerance absorbs float noise when erosion lands on exactly zero
	zeroTolerance = 1e-9
)

// ApplyShot resolves one shot of the given damage against target and
// reports whether the target was destroyed by it.
func ApplyShot(p *Pool, target int, damage float64, r Rand) bool {
	if damage <= 0 || !p.alive[target] {
		return false
	}

	k := p.kind[target]
	full := p.maxShield[k]

	if p.shield[target] >= 0 {
		if damage <= full*bounceRatio {
			return false
		}
		if damage < full {
			erodeShield(p, target, damage, full)
		} else {
			carry := damage - p.shield[target]
			p.shield[target] = ShieldCollapsed
			if carry > 0 {
				p.hull[target] -= carry
			}
		}
	} else {
		p.hull[target] -= damage
	}

	if p.hull[target] <= 0 {
		p.hull[target] = 0
		p.Kill(target)
		return true
	}

	maxHull := p.maxHull[k]
	if p.hull[target] < explosionThreshold*maxHull {
		explodeChance := 1 - p.hull[target]/maxHull
		if r.Float64() < explodeChance {
			p.Kill(target)
			return true
		}
	}
	return false
}

// erodeShield removes whole percents of the full shield. A shield eroded to
// exactly zero keeps the rounded-off fraction as a negative value, which
// leaves it collapsed for the rest of the round.
func erodeShield(p *Pool, target int, damage, full float64) {
	percent := math.Floor(damage / full * 100)
	loss := percent / 100 * full
	remaining := p.shield[target] - loss

	switch {
	case math.Abs(remaining) <= zeroTolerance*full:
		if frac := damage - loss; frac > zeroTolerance*full {
			p.shield[target] = -frac
		} else {
			p.shield[target] = 0
		}
	case remaining > 0:
		p.shield[target] = remaining
	default:
		p.shield[target] = ShieldCollapsed
	}
}
