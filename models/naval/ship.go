package naval

import (
	"math"
	"time"
)

// arrivalEpsilon is how close a ship must get to its movement
// target before the target is considered reached and cleared.
const arrivalEpsilon float64 = 0.1

type ShipConfig struct {
	MaxHealth      int
	Speed          float64
	CannonRange    float64
	CannonDamage   DamageRange
	CannonCooldown time.Duration
}

// Ship is the combat/health/cooldown state machine of a single vessel,
// player or enemy. It owns no AI logic; an EnemyAI drives enemy ships
// and the game client drives the player ship, both through the same
// public operations.
type Ship struct {
	id       string
	shipType string

	pos        Vec3
	heading    float64
	speed      float64
	moveTarget *Vec3

	healthCurrent int
	healthMax     int

	cannonRange    float64
	cannonDamage   DamageRange
	cannonCooldown time.Duration
	lastFiredAt    time.Time

	isSunk bool

	missChance MissChanceFunc
	onSink     func(*Ship)
	nowFn      func() time.Time
}

func NewShip(id, shipType string, pos Vec3, cfg ShipConfig) *Ship {
	return &Ship{
		id:             id,
		shipType:       shipType,
		pos:            pos.OnWater(),
		speed:          cfg.Speed,
		healthCurrent:  cfg.MaxHealth,
		healthMax:      cfg.MaxHealth,
		cannonRange:    cfg.CannonRange,
		cannonDamage:   cfg.CannonDamage,
		cannonCooldown: cfg.CannonCooldown,
		nowFn:          time.Now,
	}
}

func (sh *Ship) Id() string {
	return sh.id
}

func (sh *Ship) ShipType() string {
	return sh.shipType
}

func (sh *Ship) Position() Vec3 {
	return sh.pos
}

func (sh *Ship) Heading() float64 {
	return sh.heading
}

func (sh *Ship) Health() int {
	return sh.healthCurrent
}

func (sh *Ship) MaxHealth() int {
	return sh.healthMax
}

func (sh *Ship) CannonRange() float64 {
	return sh.cannonRange
}

func (sh *Ship) IsSunk() bool {
	return sh.isSunk
}

func (sh *Ship) IsMoving() bool {
	return sh.moveTarget != nil
}

// SetOnSink registers the owner hook invoked exactly once when the ship
// sinks. The fleet manager uses it to convert enemies into shipwrecks;
// the player ship owner uses it to schedule a respawn.
func (sh *Ship) SetOnSink(fn func(*Ship)) {
	sh.onSink = fn
}

func (sh *Ship) SetMissChance(fn MissChanceFunc) {
	sh.missChance = fn
}

// SetClock swaps the wall clock. Tests inject a fake one so cooldown
// deadlines are deterministic.
func (sh *Ship) SetClock(nowFn func() time.Time) {
	sh.nowFn = nowFn
}

// TakeDamage clamps health at zero and sinks the ship when it gets
// there. Returns true only on the call that caused the sinking.
// Already sunken ships ignore further damage.
func (sh *Ship) TakeDamage(amount int) bool {
	if sh.isSunk || amount <= 0 {
		return false
	}

	sh.healthCurrent -= amount
	if sh.healthCurrent <= 0 {
		sh.healthCurrent = 0
		sh.Sink()
		return true
	}
	return false
}

// Sink is idempotent. The first call halts movement and fires the
// owner hook; any later call is a no-op.
func (sh *Ship) Sink() {
	if sh.isSunk {
		return
	}
	sh.isSunk = true
	sh.moveTarget = nil

	if sh.onSink != nil {
		sh.onSink(sh)
	}
}

func (sh *Ship) CanFire() bool {
	return sh.nowFn().Sub(sh.lastFiredAt) >= sh.cannonCooldown
}

// FireAt attempts a cannon shot at the target. Returns the damage
// dealt: 0 when sunk, on cooldown, out of range or on a miss. The
// cooldown is consumed only when a shot is actually attempted, so an
// out-of-range call does not push the next shot back.
func (sh *Ship) FireAt(target *Ship) int {
	if sh.isSunk || target == nil || target.isSunk {
		return 0
	}
	if !sh.CanFire() {
		return 0
	}
	if sh.pos.DistanceTo(target.pos) > sh.cannonRange {
		return 0
	}

	sh.lastFiredAt = sh.nowFn()

	outcome := ResolveShot(sh, target, sh.missChance)
	if !outcome.Hit {
		return 0
	}

	target.TakeDamage(outcome.Damage)
	return outcome.Damage
}

// MoveTo sets the movement target the ship steers toward on every
// update. Non-finite coordinates are rejected without touching state;
// valid targets are snapped to the water level before use.
func (sh *Ship) MoveTo(point Vec3) bool {
	if sh.isSunk || !point.IsFinite() {
		return false
	}

	target := point.OnWater()
	sh.moveTarget = &target
	sh.faceToward(target)
	return true
}

// Teleport places the ship directly, used for spawning and respawn.
func (sh *Ship) Teleport(point Vec3) bool {
	if !point.IsFinite() {
		return false
	}
	sh.pos = point.OnWater()
	return true
}

// Respawn brings a ship back from the sunk state with full health.
// Only the player ship owner calls this, after its respawn timer.
func (sh *Ship) Respawn(pos Vec3) {
	if !pos.IsFinite() {
		pos = Vec3{}
	}
	sh.isSunk = false
	sh.healthCurrent = sh.healthMax
	sh.moveTarget = nil
	sh.pos = pos.OnWater()
}

// Update advances the ship one tick. Sunken ships never move. Idle
// bobbing is cosmetic and left to the rendering collaborator.
func (sh *Ship) Update(dt time.Duration) {
	if sh.isSunk || sh.moveTarget == nil {
		return
	}

	target := *sh.moveTarget
	delta := target.Sub(sh.pos)
	dist := delta.Length()

	step := sh.speed * dt.Seconds()
	if dist <= arrivalEpsilon || step >= dist {
		sh.pos = target
		sh.moveTarget = nil
		return
	}

	sh.pos = sh.pos.Add(delta.Normalized().Scale(step)).OnWater()
	sh.faceToward(target)
}

func (sh *Ship) faceToward(target Vec3) {
	delta := target.Sub(sh.pos)
	if delta.X == 0 && delta.Z == 0 {
		return
	}
	sh.heading = math.Atan2(delta.X, delta.Z)
}
