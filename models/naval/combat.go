package naval

import "math/rand"

// DefaultMissChance is the flat probability that a cannon shot
// misses when the caller does not inject its own policy.
const DefaultMissChance float64 = 0.3

type DamageRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type ShotOutcome struct {
	Hit    bool
	Damage int
}

// MissChanceFunc lets the combat manager supply a miss probability
// computed from both ships (distance, heading, upgrades etc.).
type MissChanceFunc func(attacker, defender *Ship) float64

// ResolveShot computes the outcome of a single cannon shot. It is pure:
// no cooldown, range or health state is touched here. The caller is
// responsible for gating the shot and applying the damage.
func ResolveShot(attacker, defender *Ship, missChance MissChanceFunc) ShotOutcome {
	chance := DefaultMissChance
	if missChance != nil {
		chance = missChance(attacker, defender)
	}

	if rand.Float64() < chance {
		return ShotOutcome{Hit: false, Damage: 0}
	}

	return ShotOutcome{Hit: true, Damage: rollDamage(attacker.cannonDamage)}
}

// Damage is sampled from [Min, Max) per the attacker's damage profile.
func rollDamage(dr DamageRange) int {
	if dr.Max <= dr.Min {
		return dr.Min
	}
	return dr.Min + rand.Intn(dr.Max-dr.Min)
}
