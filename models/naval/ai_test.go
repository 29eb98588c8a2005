package naval

import (
	"testing"
	"time"
)

type recordingViz struct {
	initialized int
	shots       int
	misses      int
}

func (rv *recordingViz) InitializeEnemyShip(*Ship) {
	rv.initialized++
}

func (rv *recordingViz) ShotFired(attacker, defender *Ship, damage int, wasMiss bool) {
	rv.shots++
	if wasMiss {
		rv.misses++
	}
}

func newTestAI(fc *fakeClock, enemyPos Vec3) (*EnemyAI, *Ship) {
	enemy := testShip("enemy-1", enemyPos)
	enemy.SetClock(fc.Now)
	ai := NewEnemyAI(enemy, 150, 600)
	ai.SetClock(fc.Now)
	return ai, enemy
}

func assertStateTargetInvariant(t *testing.T, ai *EnemyAI) {
	t.Helper()
	switch ai.State() {
	case AIStateAttack:
		if ai.TargetShipId() == "" {
			t.Fatal("attack state without a target ship id")
		}
	case AIStatePatrol:
		if ai.TargetShipId() != "" {
			t.Fatalf("patrol state with a lingering target: %s", ai.TargetShipId())
		}
	}
}

func TestPatrolPicksTargetWithinWorld(t *testing.T) {
	fc := newFakeClock()
	ai, enemy := newTestAI(fc, Vec3{})

	ai.Update(nil, NopVisualizer{})

	pt := ai.PatrolTarget()
	if pt == nil {
		t.Fatal("patrol update must pick a patrol target")
	}
	if pt.X < -300 || pt.X > 300 || pt.Z < -300 || pt.Z > 300 {
		t.Fatalf("patrol target outside the world: %+v", *pt)
	}
	if pt.Y != WaterLevelY {
		t.Fatalf("patrol target off the water level: y=%f", pt.Y)
	}
	if !enemy.IsMoving() {
		t.Fatal("patrolling enemy must steer toward its patrol target")
	}
	assertStateTargetInvariant(t, ai)
}

func TestPatrolEntersAttackOnAggro(t *testing.T) {
	fc := newFakeClock()
	ai, _ := newTestAI(fc, Vec3{})
	player := testShip("player", NewVec3(100, 0, 0))

	ai.Update(player, NopVisualizer{})

	if ai.State() != AIStateAttack {
		t.Fatalf("player inside aggro range must trigger attack, state: %d", ai.State())
	}
	if ai.TargetShipId() != "player" {
		t.Fatalf("expected target: player\t got: %s", ai.TargetShipId())
	}
	if ai.PatrolTarget() != nil {
		t.Fatal("entering attack must drop the patrol target")
	}
	assertStateTargetInvariant(t, ai)
}

func TestPatrolIgnoresPlayerOutsideAggro(t *testing.T) {
	fc := newFakeClock()
	ai, _ := newTestAI(fc, Vec3{})
	player := testShip("player", NewVec3(400, 0, 0))

	ai.Update(player, NopVisualizer{})

	if ai.State() != AIStatePatrol {
		t.Fatal("player outside aggro range must not trigger attack")
	}
	assertStateTargetInvariant(t, ai)
}

func TestAttackBreaksOffWhenPlayerSinks(t *testing.T) {
	fc := newFakeClock()
	ai, _ := newTestAI(fc, Vec3{})
	player := testShip("player", NewVec3(100, 0, 0))

	ai.Update(player, NopVisualizer{})
	if ai.State() != AIStateAttack {
		t.Fatal("setup failed to enter attack")
	}

	// a dead target ends the chase immediately, no cooldown involved
	player.Sink()
	ai.Update(player, NopVisualizer{})

	if ai.State() != AIStatePatrol {
		t.Fatal("sunken player must flip the enemy back to patrol")
	}
	if ai.PatrolTarget() == nil {
		t.Fatal("re-entering patrol must pick a patrol target")
	}
	assertStateTargetInvariant(t, ai)
}

func TestAttackDisengageIsCooldownGated(t *testing.T) {
	fc := newFakeClock()
	ai, _ := newTestAI(fc, Vec3{})
	player := testShip("player", NewVec3(100, 0, 0))

	ai.Update(player, NopVisualizer{})
	if ai.State() != AIStateAttack {
		t.Fatal("setup failed to enter attack")
	}

	// beyond 1.5x aggro but inside the cooldown window: keep chasing
	player.Teleport(NewVec3(300, 0, 0))
	fc.Advance(time.Second)
	ai.Update(player, NopVisualizer{})
	if ai.State() != AIStateAttack {
		t.Fatal("disengage before the cooldown elapsed")
	}

	// same distance once the cooldown has passed: break off
	fc.Advance(11 * time.Second)
	ai.Update(player, NopVisualizer{})
	if ai.State() != AIStatePatrol {
		t.Fatal("enemy must disengage beyond 1.5x aggro range after cooldown")
	}
	assertStateTargetInvariant(t, ai)
}

func TestAttackClosesInWhenTooFar(t *testing.T) {
	fc := newFakeClock()
	ai, enemy := newTestAI(fc, Vec3{})
	player := testShip("player", NewVec3(100, 0, 0))

	ai.Update(player, NopVisualizer{})
	fc.Advance(time.Second)
	ai.Update(player, NopVisualizer{})

	if !enemy.IsMoving() {
		t.Fatal("enemy beyond the attack band must close in")
	}
	before := enemy.Position().DistanceTo(player.Position())
	enemy.Update(time.Second)
	after := enemy.Position().DistanceTo(player.Position())
	if after >= before {
		t.Fatalf("enemy did not close the distance: %f -> %f", before, after)
	}
}

func TestAttackBacksOffWhenTooClose(t *testing.T) {
	fc := newFakeClock()
	ai, enemy := newTestAI(fc, Vec3{})
	enemy.SetMissChance(alwaysMiss)
	player := testShip("player", NewVec3(100, 0, 0))

	ai.Update(player, NopVisualizer{})

	// well inside the attack band
	player.Teleport(NewVec3(15, 0, 0))
	fc.Advance(time.Second)
	ai.Update(player, NopVisualizer{})

	if !enemy.IsMoving() {
		t.Fatal("enemy inside the band must back off")
	}
	before := enemy.Position().DistanceTo(player.Position())
	enemy.Update(time.Second)
	after := enemy.Position().DistanceTo(player.Position())
	if after <= before {
		t.Fatalf("enemy did not open the distance: %f -> %f", before, after)
	}
}

func TestAttackFiresInCannonRange(t *testing.T) {
	fc := newFakeClock()
	ai, enemy := newTestAI(fc, Vec3{})
	enemy.SetMissChance(alwaysHit)
	player := testShip("player", NewVec3(30, 0, 0))
	viz := &recordingViz{}

	ai.Update(player, viz)
	if ai.State() != AIStateAttack {
		t.Fatal("setup failed to enter attack")
	}

	fc.Advance(time.Second)
	ai.Update(player, viz)

	if viz.shots != 1 {
		t.Fatalf("expected exactly one shot, got %d", viz.shots)
	}
	if viz.misses != 0 {
		t.Fatalf("zero miss chance shot reported as miss")
	}
	if player.Health() == player.MaxHealth() {
		t.Fatal("hit must damage the player at fire time")
	}

	// next tick is still inside the cannon cooldown: the attempt short
	// circuits before the visualizer hears about it
	fc.Advance(time.Second)
	healthAfterShot := player.Health()
	ai.Update(player, viz)
	if player.Health() != healthAfterShot {
		t.Fatal("shot landed during cannon cooldown")
	}
}

func TestSunkenEnemyAIIsInert(t *testing.T) {
	fc := newFakeClock()
	ai, enemy := newTestAI(fc, Vec3{})
	player := testShip("player", NewVec3(30, 0, 0))

	enemy.Sink()
	ai.Update(player, NopVisualizer{})

	if ai.State() != AIStatePatrol {
		t.Fatal("a sunken enemy must not change state")
	}
	if enemy.IsMoving() {
		t.Fatal("a sunken enemy must not move")
	}
}
