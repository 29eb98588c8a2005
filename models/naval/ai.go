package naval

import (
	"math"
	"math/rand"
	"time"
)

type AIState uint8

const (
	AIStatePatrol AIState = iota
	AIStateAttack
)

const (
	// patrolArrivalDistance is how close an enemy must get to its
	// patrol point before it picks a new one.
	patrolArrivalDistance float64 = 10.0

	// idealAttackDistance is the firing distance an attacking enemy
	// tries to hold, with a +/- band before it corrects.
	idealAttackDistance float64 = 35.0
	attackDistanceBand  float64 = 10.0

	// disengageFactor scales the aggro range for breaking off a chase.
	disengageFactor float64 = 1.5

	// orbitAngularSpeed is in radians per second of wall-clock time.
	// Deriving the angle from the clock instead of accumulated dt
	// keeps every enemy's orbit deterministic relative to global time.
	orbitAngularSpeed float64 = 0.35

	minStateChangeCooldown = 5 * time.Second
	maxStateChangeCooldown = 10 * time.Second
)

// EnemyAI is the patrol/attack decision machine of one enemy ship.
// It only produces movement and firing intents on its Ship; it owns
// no combat or health state itself.
type EnemyAI struct {
	ship *Ship

	state        AIState
	patrolTarget *Vec3
	targetShipId string

	lastStateChangeAt   time.Time
	stateChangeCooldown time.Duration

	aggroRange float64
	worldSize  float64

	nowFn func() time.Time
}

func NewEnemyAI(ship *Ship, aggroRange, worldSize float64) *EnemyAI {
	return &EnemyAI{
		ship:       ship,
		state:      AIStatePatrol,
		aggroRange: aggroRange,
		worldSize:  worldSize,

		// randomized per instance so the fleet doesn't re-evaluate in
		// lockstep
		stateChangeCooldown: minStateChangeCooldown +
			time.Duration(rand.Int63n(int64(maxStateChangeCooldown-minStateChangeCooldown))),

		nowFn: time.Now,
	}
}

func (ai *EnemyAI) State() AIState {
	return ai.state
}

func (ai *EnemyAI) TargetShipId() string {
	return ai.targetShipId
}

func (ai *EnemyAI) PatrolTarget() *Vec3 {
	return ai.patrolTarget
}

func (ai *EnemyAI) SetClock(nowFn func() time.Time) {
	ai.nowFn = nowFn
}

func (ai *EnemyAI) cooldownElapsed(now time.Time) bool {
	return now.Sub(ai.lastStateChangeAt) > ai.stateChangeCooldown
}

// Update runs one decision tick. Cooldown-gated re-evaluations handle
// the slow transitions; arrival at a patrol point, the player entering
// aggro range while patrolling, and the player dying mid-chase all
// bypass the gate.
func (ai *EnemyAI) Update(player *Ship, viz Visualizer) {
	if ai.ship == nil || ai.ship.IsSunk() {
		return
	}

	switch ai.state {
	case AIStatePatrol:
		ai.updatePatrol(player)

	case AIStateAttack:
		ai.updateAttack(player, viz)
	}
}

func (ai *EnemyAI) updatePatrol(player *Ship) {
	now := ai.nowFn()

	if ai.patrolTarget == nil {
		ai.pickPatrolTarget(now)
	}

	if ai.ship.Position().DistanceTo(*ai.patrolTarget) < patrolArrivalDistance {
		ai.pickPatrolTarget(now)
	}

	ai.ship.MoveTo(*ai.patrolTarget)

	if player == nil || player.IsSunk() {
		return
	}

	if ai.ship.Position().DistanceTo(player.Position()) <= ai.aggroRange {
		ai.enterAttack(player, now)
	}
}

func (ai *EnemyAI) updateAttack(player *Ship, viz Visualizer) {
	now := ai.nowFn()

	// target died or despawned, break off right away
	if player == nil || player.IsSunk() || player.Id() != ai.targetShipId {
		ai.enterPatrol(now)
		return
	}

	dist := ai.ship.Position().DistanceTo(player.Position())

	if ai.cooldownElapsed(now) && dist > ai.aggroRange*disengageFactor {
		ai.enterPatrol(now)
		return
	}

	switch {
	case dist > idealAttackDistance+attackDistanceBand:
		ai.ship.MoveTo(player.Position())

	case dist < idealAttackDistance-attackDistanceBand:
		ai.backOff(player)

	default:
		if !ai.ship.IsMoving() {
			ai.orbit(player, now)
		}
	}

	if dist <= ai.ship.CannonRange() && ai.ship.CanFire() {
		damage := ai.ship.FireAt(player)
		viz.ShotFired(ai.ship, player, damage, damage == 0)
	}
}

func (ai *EnemyAI) enterAttack(player *Ship, now time.Time) {
	ai.state = AIStateAttack
	ai.targetShipId = player.Id()
	ai.patrolTarget = nil
	ai.lastStateChangeAt = now
}

func (ai *EnemyAI) enterPatrol(now time.Time) {
	ai.state = AIStatePatrol
	ai.targetShipId = ""
	ai.pickPatrolTarget(now)
	ai.ship.MoveTo(*ai.patrolTarget)
}

func (ai *EnemyAI) pickPatrolTarget(now time.Time) {
	half := ai.worldSize / 2
	point := NewVec3(
		rand.Float64()*ai.worldSize-half,
		WaterLevelY,
		rand.Float64()*ai.worldSize-half,
	)
	ai.patrolTarget = &point
	ai.lastStateChangeAt = now
}

func (ai *EnemyAI) backOff(player *Ship) {
	away := ai.ship.Position().Sub(player.Position()).Normalized()
	if away.Length() == 0 {
		away = NewVec3(1, 0, 0)
	}
	ai.ship.MoveTo(ai.ship.Position().Add(away.Scale(attackDistanceBand)))
}

// orbit steers along a circular path around the target. The angle is a
// function of wall-clock milliseconds, not accumulated dt.
func (ai *EnemyAI) orbit(player *Ship, now time.Time) {
	angle := float64(now.UnixMilli()) / 1000.0 * orbitAngularSpeed
	offset := NewVec3(
		math.Cos(angle)*idealAttackDistance,
		WaterLevelY,
		math.Sin(angle)*idealAttackDistance,
	)
	ai.ship.MoveTo(player.Position().Add(offset))
}
