package naval

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/corsairgame/corsair-core/pkg/logger"
)

const (
	DefaultMaxEnemyShips = 5
	DefaultSpawnRadius   = 200.0
	DefaultSpawnInterval = 30 * time.Second
	DefaultWorldSize     = 600.0
	DefaultAggroRange    = 150.0
	DefaultLootableRange = 15.0

	playerRespawnDelay    = 5 * time.Second
	playerPosSyncInterval = 2 * time.Second
)

var enemyShipTypes = []string{"sloop", "brigantine", "galleon"}

func defaultEnemyShipConfig() ShipConfig {
	return ShipConfig{
		MaxHealth:      100,
		Speed:          8,
		CannonRange:    50,
		CannonDamage:   DamageRange{Min: 5, Max: 15},
		CannonCooldown: 3 * time.Second,
	}
}

// FleetOptions carries the recognized configuration keys. Zero values
// fall back to the documented defaults.
type FleetOptions struct {
	MaxEnemyShips     int
	SpawnRadius       float64
	SpawnInterval     time.Duration
	WorldSize         float64
	AggroRange        float64
	LootableRange     float64
	ShipwreckLifetime time.Duration
	SinkDuration      time.Duration
}

func (o FleetOptions) withDefaults() FleetOptions {
	if o.MaxEnemyShips <= 0 {
		o.MaxEnemyShips = DefaultMaxEnemyShips
	}
	if o.SpawnRadius <= 0 {
		o.SpawnRadius = DefaultSpawnRadius
	}
	if o.SpawnInterval <= 0 {
		o.SpawnInterval = DefaultSpawnInterval
	}
	if o.WorldSize <= 0 {
		o.WorldSize = DefaultWorldSize
	}
	if o.AggroRange <= 0 {
		o.AggroRange = DefaultAggroRange
	}
	if o.LootableRange <= 0 {
		o.LootableRange = DefaultLootableRange
	}
	if o.ShipwreckLifetime <= 0 {
		o.ShipwreckLifetime = DefaultShipwreckLifetime
	}
	if o.SinkDuration <= 0 {
		o.SinkDuration = DefaultSinkDuration
	}
	return o
}

type FleetManager interface {
	SetPlayerShip(ship *Ship)
	SpawnEnemy() *Ship
	LootAt(pos Vec3) Loot
	Update(dt time.Duration)

	Enemies() []*Ship
	Ledger() *ShipwreckLedger
}

type enemyUnit struct {
	ship      *Ship
	ai        *EnemyAI
	converted bool
}

// EnemyFleetManager is the top-level orchestrator of the enemy side of
// the simulation: it spawns and despawns enemies, drives their AI, owns
// the shipwreck ledger and reconciles it against the remote store.
// Everything runs synchronously inside Update; store callbacks are
// drained at the top of the tick, never applied concurrently.
type EnemyFleetManager struct {
	opts FleetOptions

	store  StateStore
	viz    Visualizer
	userId string

	playerShip      *Ship
	respawnDeadline time.Time

	enemies []*enemyUnit
	ledger  *ShipwreckLedger

	lastSpawnAt   time.Time
	lastPosSyncAt time.Time

	nowFn func() time.Time
}

var _ FleetManager = (*EnemyFleetManager)(nil)

func NewEnemyFleetManager(store StateStore, viz Visualizer, userId string, opts FleetOptions) *EnemyFleetManager {
	if store == nil {
		store = NewOfflineStore()
	}
	if viz == nil {
		viz = NopVisualizer{}
	}
	opts = opts.withDefaults()

	efm := &EnemyFleetManager{
		opts:    opts,
		store:   store,
		viz:     viz,
		userId:  userId,
		enemies: make([]*enemyUnit, 0, opts.MaxEnemyShips),
		ledger:  NewShipwreckLedger(store, userId, opts.ShipwreckLifetime, opts.SinkDuration),
		nowFn:   time.Now,
	}

	store.SubscribeShipwrecks(efm.ledger.ReconcileRemoteSnapshot, efm.ledger.ReconcileRemoteChange)

	return efm
}

// SetClock swaps the wall clock on the manager and its ledger. Newly
// spawned enemies inherit it; tests use this for deterministic runs.
func (efm *EnemyFleetManager) SetClock(nowFn func() time.Time) {
	efm.nowFn = nowFn
	efm.ledger.SetClock(nowFn)
}

func (efm *EnemyFleetManager) Ledger() *ShipwreckLedger {
	return efm.ledger
}

func (efm *EnemyFleetManager) PlayerShip() *Ship {
	return efm.playerShip
}

func (efm *EnemyFleetManager) Enemies() []*Ship {
	ships := make([]*Ship, 0, len(efm.enemies))
	for _, unit := range efm.enemies {
		ships = append(ships, unit.ship)
	}
	return ships
}

// EnemyAIFor exposes the controller of an enemy ship, mainly for the
// debug overlay and tests.
func (efm *EnemyFleetManager) EnemyAIFor(shipId string) *EnemyAI {
	for _, unit := range efm.enemies {
		if unit.ship.Id() == shipId {
			return unit.ai
		}
	}
	return nil
}

// SetPlayerShip registers the player-controlled ship. Its sink hook
// schedules a respawn instead of a shipwreck conversion; the wreck for
// the player is somebody else's loot only in a future iteration.
func (efm *EnemyFleetManager) SetPlayerShip(ship *Ship) {
	efm.playerShip = ship
	if ship == nil {
		return
	}

	ship.SetOnSink(func(*Ship) {
		efm.respawnDeadline = efm.nowFn().Add(playerRespawnDelay)
	})
}

// SpawnEnemy creates one enemy ship with its AI controller. Returns
// nil when the fleet is already at capacity; that is not an error.
func (efm *EnemyFleetManager) SpawnEnemy() *Ship {
	if len(efm.enemies) >= efm.opts.MaxEnemyShips {
		return nil
	}

	ship := NewShip(
		fmt.Sprintf("enemy-%s", uuid.NewString()[:8]),
		enemyShipTypes[rand.Intn(len(enemyShipTypes))],
		efm.randomSpawnPosition(),
		defaultEnemyShipConfig(),
	)
	ship.SetClock(efm.nowFn)

	unit := &enemyUnit{
		ship: ship,
		ai:   NewEnemyAI(ship, efm.opts.AggroRange, efm.opts.WorldSize),
	}
	unit.ai.SetClock(efm.nowFn)

	// one wreck per sinking, guarded by the sink hook firing only once
	ship.SetOnSink(func(s *Ship) {
		efm.ledger.RegisterFromSunkShip(s)
		unit.converted = true
	})

	efm.enemies = append(efm.enemies, unit)
	efm.viz.InitializeEnemyShip(ship)

	logger.Log.Debugf("spawned enemy %s (%s) at %+v", ship.Id(), ship.ShipType(), ship.Position())
	return ship
}

// LootAt claims the nearest lootable wreck within the lootable range
// of the given position. Empty loot when there is nothing to claim.
func (efm *EnemyFleetManager) LootAt(pos Vec3) Loot {
	rec := efm.ledger.FindLootable(pos, efm.opts.LootableRange)
	if rec == nil {
		return EmptyLoot()
	}
	return efm.ledger.Loot(rec)
}

// Update advances the whole subsystem one frame: drain store events,
// rate-limited spawning, per-enemy AI and movement, enemy-to-wreck
// conversion cleanup, player respawn and the ledger timelines.
func (efm *EnemyFleetManager) Update(dt time.Duration) {
	now := efm.nowFn()

	// apply remote snapshot/change events queued since last tick
	if d, ok := efm.store.(interface{ Drain() }); ok {
		d.Drain()
	}

	if now.Sub(efm.lastSpawnAt) >= efm.opts.SpawnInterval {
		if efm.SpawnEnemy() != nil {
			efm.lastSpawnAt = now
		}
	}

	for _, unit := range efm.enemies {
		unit.ai.Update(efm.playerShip, efm.viz)
		unit.ship.Update(dt)
	}
	efm.removeConvertedEnemies()

	if efm.playerShip != nil {
		efm.playerShip.Update(dt)

		if efm.playerShip.IsSunk() && !efm.respawnDeadline.IsZero() && !now.Before(efm.respawnDeadline) {
			efm.playerShip.Respawn(Vec3{})
			efm.respawnDeadline = time.Time{}
			logger.Log.Info("player ship respawned")
		}
	}

	efm.ledger.Update()

	if now.Sub(efm.lastPosSyncAt) >= playerPosSyncInterval && efm.playerShip != nil {
		efm.lastPosSyncAt = now
		if err := efm.store.UpdatePlayerPosition(efm.playerShip.Position()); err != nil {
			logger.Log.WithError(err).Debug("player position sync failed")
		}
	}
}

// A sunk enemy stays in the list until its wreck conversion ran, then
// the pair is dropped. The AI controller ceases to exist with it.
func (efm *EnemyFleetManager) removeConvertedEnemies() {
	kept := efm.enemies[:0]
	for _, unit := range efm.enemies {
		if unit.converted {
			continue
		}
		kept = append(kept, unit)
	}
	efm.enemies = kept
}

func (efm *EnemyFleetManager) randomSpawnPosition() Vec3 {
	center := Vec3{}
	if efm.playerShip != nil {
		center = efm.playerShip.Position()
	}

	angle := rand.Float64() * 2 * math.Pi
	// keep a minimum offset so enemies never spawn on top of the player
	dist := efm.opts.SpawnRadius * (0.5 + rand.Float64()*0.5)

	return center.Add(NewVec3(math.Cos(angle)*dist, WaterLevelY, math.Sin(angle)*dist))
}
