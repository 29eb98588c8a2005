package naval

import (
	"math/rand"
	"time"

	"github.com/corsairgame/corsair-core/pkg/logger"
)

const (
	// DefaultShipwreckLifetime caps how long any wreck exists,
	// looted or not.
	DefaultShipwreckLifetime = 5 * time.Minute

	// DefaultSinkDuration is the length of the sinking animation
	// timeline; sinkGracePeriod is the extra delay before removal.
	DefaultSinkDuration = 10 * time.Second
	sinkGracePeriod     = time.Second

	// staleRemoteLootAge: remote wrecks looted longer ago than this
	// are not worth materializing, there is nothing left to animate.
	staleRemoteLootAge = 30 * time.Second

	// unsyncedLocalGrace keeps a freshly authored record alive while
	// its create is still in flight to the store.
	unsyncedLocalGrace = 5 * time.Second
)

// ShipwreckLedger is the single owner of every ShipwreckRecord on this
// client. All mutation goes through it: local optimistic writes first,
// remote reconciliation merged in last-write-wins by record id.
type ShipwreckLedger struct {
	// insertion order; FindLootable returns the first match
	wrecks []*ShipwreckRecord
	byId   map[string]*ShipwreckRecord

	// ids this client authored, surviving across reconciliation passes
	// so our own just-published writes echoing back never duplicate
	authoredIds map[string]struct{}

	store  StateStore
	userId string

	lifetime     time.Duration
	sinkDuration time.Duration

	nowFn func() time.Time
}

func NewShipwreckLedger(store StateStore, userId string, lifetime, sinkDuration time.Duration) *ShipwreckLedger {
	if store == nil {
		store = NewOfflineStore()
	}
	if lifetime <= 0 {
		lifetime = DefaultShipwreckLifetime
	}
	if sinkDuration <= 0 {
		sinkDuration = DefaultSinkDuration
	}

	return &ShipwreckLedger{
		wrecks:       make([]*ShipwreckRecord, 0, 10),
		byId:         make(map[string]*ShipwreckRecord, 10),
		authoredIds:  make(map[string]struct{}, 10),
		store:        store,
		userId:       userId,
		lifetime:     lifetime,
		sinkDuration: sinkDuration,
		nowFn:        time.Now,
	}
}

func (sl *ShipwreckLedger) SetClock(nowFn func() time.Time) {
	sl.nowFn = nowFn
}

func (sl *ShipwreckLedger) Wrecks() []*ShipwreckRecord {
	return sl.wrecks
}

func (sl *ShipwreckLedger) FindWreck(wreckId string) *ShipwreckRecord {
	return sl.byId[wreckId]
}

// RegisterFromSunkShip converts a freshly sunken ship into a wreck:
// position and type snapshotted, loot rolled, and an optimistic create
// published to the store. A failed publish is logged and never rolled
// back; the wreck stays visible locally either way.
func (sl *ShipwreckLedger) RegisterFromSunkShip(ship *Ship) *ShipwreckRecord {
	if ship == nil {
		return nil
	}

	now := sl.nowFn()
	rec := &ShipwreckRecord{
		Id:       newWreckId(now),
		ShipType: ship.ShipType(),
		Position: ship.Position().OnWater(),
		Loot: Loot{
			Gold:  50 + rand.Intn(100),
			Items: []string{},
		},
		CreatedAt:      now,
		LocallyCreated: true,
	}

	sl.insert(rec)
	sl.authoredIds[rec.Id] = struct{}{}

	if err := sl.store.CreateShipwreck(*rec); err != nil {
		logger.Log.WithError(err).Warnf("failed to publish shipwreck %s, keeping it local only", rec.Id)
	}

	return rec
}

// FindLootable returns the first non-looted wreck within radius of the
// position, in ledger insertion order, or nil.
func (sl *ShipwreckLedger) FindLootable(pos Vec3, radius float64) *ShipwreckRecord {
	for _, rec := range sl.wrecks {
		if rec.Looted {
			continue
		}
		if rec.Position.DistanceTo(pos) <= radius {
			return rec
		}
	}
	return nil
}

// Loot claims a wreck. The local commit is synchronous and optimistic:
// the player gets the gold immediately, the wreck starts sinking, and
// the store confirms asynchronously. A rare server rejection is logged
// and surfaced as a warning but never takes the loot back.
// Looting an already-looted wreck is a no-op returning empty loot.
func (sl *ShipwreckLedger) Loot(rec *ShipwreckRecord) Loot {
	if rec == nil || rec.Looted {
		return EmptyLoot()
	}

	rec.Looted = true
	rec.LootedBy = sl.userId
	rec.LootedAt = sl.nowFn()
	sl.StartSinking(rec)

	wreckId := rec.Id
	sl.store.ValidateLoot(wreckId, func(v LootValidation) {
		if !v.Success {
			logger.Log.Warnf("server rejected loot of %s: %s (loot already granted locally)", wreckId, v.Error)
		}
	})

	return rec.Loot
}

// StartSinking arms the sinking timeline. No-op if already mid-sink.
func (sl *ShipwreckLedger) StartSinking(rec *ShipwreckRecord) {
	if rec == nil || rec.Sinking {
		return
	}
	rec.Sinking = true
	rec.SinkStartedAt = sl.nowFn()
}

// ReconcileRemoteSnapshot merges a full snapshot pushed by the store.
// The snapshot may arrive at any time relative to local writes, so the
// merge is last-write-wins per record id and never assumes ordering.
func (sl *ShipwreckLedger) ReconcileRemoteSnapshot(remote []ShipwreckRecord) {
	now := sl.nowFn()

	remoteIds := make(map[string]struct{}, len(remote))
	for i := range remote {
		remoteIds[remote[i].Id] = struct{}{}
		sl.reconcileOne(remote[i], now)
	}

	// locals the store no longer knows about: keep freshly authored
	// ones that may simply not have synced yet, drop the rest
	stale := make([]string, 0, 2)
	for _, rec := range sl.wrecks {
		if _, prs := remoteIds[rec.Id]; prs {
			continue
		}
		if rec.LocallyCreated && now.Sub(rec.CreatedAt) < unsyncedLocalGrace {
			continue
		}
		stale = append(stale, rec.Id)
	}
	for _, id := range stale {
		sl.remove(id)
	}
}

// ReconcileRemoteChange applies a single-record change push.
func (sl *ShipwreckLedger) ReconcileRemoteChange(remote ShipwreckRecord) {
	sl.reconcileOne(remote, sl.nowFn())
}

func (sl *ShipwreckLedger) reconcileOne(remote ShipwreckRecord, now time.Time) {
	local, prs := sl.byId[remote.Id]
	if !prs {
		// our own write echoing back is not a new wreck
		if _, authored := sl.authoredIds[remote.Id]; authored {
			return
		}

		// looted too long ago to be worth showing at all
		if remote.Looted && now.Sub(remote.LootedAt) > staleRemoteLootAge {
			return
		}

		rec := remote
		rec.LocallyCreated = false
		rec.Sinking = false
		rec.SinkStartedAt = time.Time{}
		sl.insert(&rec)

		// already claimed by someone else, go straight to sinking
		if rec.Looted {
			sl.StartSinking(&rec)
		}
		return
	}

	// remote side saw it looted first; adopt their claim and sink it
	if remote.Looted && !local.Looted {
		local.Looted = true
		local.LootedBy = remote.LootedBy
		local.LootedAt = remote.LootedAt
		sl.StartSinking(local)
	}
}

// Update advances every sinking timeline and prunes expired records.
// The fleet manager calls it every tick so a mid-sink record never
// stalls, even when everything else is idle.
func (sl *ShipwreckLedger) Update() {
	sl.Prune(sl.nowFn())
}

// Prune removes records past the lifetime cap regardless of status,
// and records whose sinking timeline has fully played out.
func (sl *ShipwreckLedger) Prune(now time.Time) {
	expired := make([]string, 0, 2)
	for _, rec := range sl.wrecks {
		if now.Sub(rec.CreatedAt) > sl.lifetime {
			expired = append(expired, rec.Id)
			continue
		}
		if rec.Sinking && now.Sub(rec.SinkStartedAt) >= sl.sinkDuration+sinkGracePeriod {
			expired = append(expired, rec.Id)
		}
	}
	for _, id := range expired {
		sl.remove(id)
	}
}

// HasSinkingWrecks reports whether any record is mid-sink, which the
// driver loop uses to keep the animation timeline hot.
func (sl *ShipwreckLedger) HasSinkingWrecks() bool {
	for _, rec := range sl.wrecks {
		if rec.Sinking {
			return true
		}
	}
	return false
}

func (sl *ShipwreckLedger) insert(rec *ShipwreckRecord) {
	sl.wrecks = append(sl.wrecks, rec)
	sl.byId[rec.Id] = rec
}

func (sl *ShipwreckLedger) remove(wreckId string) {
	delete(sl.byId, wreckId)
	for i, rec := range sl.wrecks {
		if rec.Id == wreckId {
			sl.wrecks = append(sl.wrecks[:i], sl.wrecks[i+1:]...)
			return
		}
	}
}
