package naval

import (
	"errors"
	"testing"
	"time"
)

// fakeStore records every call and lets tests fire loot results
// manually, the way WsStore delivers them on a later drain.
type fakeStore struct {
	created      []ShipwreckRecord
	lootRequests []string
	lootResults  map[string][]func(LootValidation)
	posUpdates   []Vec3

	onSnapshot func([]ShipwreckRecord)
	onChanged  func(ShipwreckRecord)

	createErr error
}

var _ StateStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		lootResults: make(map[string][]func(LootValidation)),
	}
}

func (fs *fakeStore) CreateShipwreck(rec ShipwreckRecord) error {
	fs.created = append(fs.created, rec)
	return fs.createErr
}

func (fs *fakeStore) SubscribeShipwrecks(onSnapshot func([]ShipwreckRecord), onChanged func(ShipwreckRecord)) {
	fs.onSnapshot = onSnapshot
	fs.onChanged = onChanged
}

func (fs *fakeStore) ValidateLoot(wreckId string, onResult func(LootValidation)) {
	fs.lootRequests = append(fs.lootRequests, wreckId)
	if onResult != nil {
		fs.lootResults[wreckId] = append(fs.lootResults[wreckId], onResult)
	}
}

func (fs *fakeStore) fireLootResult(wreckId string, v LootValidation) {
	for _, cb := range fs.lootResults[wreckId] {
		cb(v)
	}
	delete(fs.lootResults, wreckId)
}

func (fs *fakeStore) UpdatePlayerPosition(pos Vec3) error {
	fs.posUpdates = append(fs.posUpdates, pos)
	return nil
}

func (fs *fakeStore) Close() error {
	return nil
}

func newTestLedger(fc *fakeClock) (*ShipwreckLedger, *fakeStore) {
	fs := newFakeStore()
	sl := NewShipwreckLedger(fs, "player-1", 0, 0)
	sl.SetClock(fc.Now)
	return sl, fs
}

func TestRegisterFromSunkShip(t *testing.T) {
	fc := newFakeClock()
	sl, fs := newTestLedger(fc)

	enemy := testShip("enemy-1", NewVec3(40, 2, -12))
	enemy.Sink()

	rec := sl.RegisterFromSunkShip(enemy)
	if rec == nil {
		t.Fatal("expected a shipwreck record")
	}

	if rec.ShipType != "sloop" {
		t.Fatalf("expected ship type: sloop\t got: %s", rec.ShipType)
	}
	if rec.Position != NewVec3(40, WaterLevelY, -12) {
		t.Fatalf("wreck position not snapshotted on the water: %+v", rec.Position)
	}
	if rec.Loot.Gold < 50 || rec.Loot.Gold >= 150 {
		t.Fatalf("gold out of [50, 150) range: %d", rec.Loot.Gold)
	}
	if rec.Looted || rec.Sinking {
		t.Fatal("a fresh wreck must be neither looted nor sinking")
	}
	if !rec.LocallyCreated {
		t.Fatal("an authored wreck must be marked locally created")
	}

	if len(fs.created) != 1 || fs.created[0].Id != rec.Id {
		t.Fatalf("wreck not published to the store: %+v", fs.created)
	}
	if sl.FindWreck(rec.Id) != rec {
		t.Fatal("wreck not indexed in the ledger")
	}
}

func TestRegisterKeepsWreckWhenPublishFails(t *testing.T) {
	fc := newFakeClock()
	sl, fs := newTestLedger(fc)
	fs.createErr = errors.New("store unreachable")

	enemy := testShip("enemy-1", Vec3{})
	rec := sl.RegisterFromSunkShip(enemy)

	if rec == nil || sl.FindWreck(rec.Id) == nil {
		t.Fatal("a failed publish must not remove the local wreck")
	}
}

func TestLootIsIdempotent(t *testing.T) {
	fc := newFakeClock()
	sl, fs := newTestLedger(fc)
	rec := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))

	first := sl.Loot(rec)
	if first.Gold != rec.Loot.Gold {
		t.Fatalf("expected gold: %d\t got: %d", rec.Loot.Gold, first.Gold)
	}
	if !rec.Looted || rec.LootedBy != "player-1" {
		t.Fatalf("loot did not claim the wreck: %+v", rec)
	}
	if !rec.Sinking {
		t.Fatal("a looted wreck must start sinking")
	}

	second := sl.Loot(rec)
	if second.Gold != 0 || len(second.Items) != 0 {
		t.Fatalf("second loot must be empty, got %+v", second)
	}

	if len(fs.lootRequests) != 1 {
		t.Fatalf("expected one validation request, got %d", len(fs.lootRequests))
	}
}

func TestLootRejectionNeverRollsBack(t *testing.T) {
	fc := newFakeClock()
	sl, fs := newTestLedger(fc)
	rec := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))

	loot := sl.Loot(rec)
	fs.fireLootResult(rec.Id, LootValidation{Success: false, Error: "already looted by player-2"})

	if !rec.Looted {
		t.Fatal("a server rejection must not take the loot back")
	}
	if loot.Gold == 0 {
		t.Fatal("optimistic loot must grant the gold immediately")
	}
}

func TestFindLootableInsertionOrder(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)

	first := sl.RegisterFromSunkShip(testShip("enemy-1", NewVec3(3, 0, 0)))
	second := sl.RegisterFromSunkShip(testShip("enemy-2", NewVec3(1, 0, 0)))

	// both in radius: insertion order wins, not proximity
	if got := sl.FindLootable(Vec3{}, 15); got != first {
		t.Fatalf("expected first inserted wreck, got %+v", got)
	}

	sl.Loot(first)
	if got := sl.FindLootable(Vec3{}, 15); got != second {
		t.Fatal("looted wrecks must be skipped")
	}

	sl.Loot(second)
	if got := sl.FindLootable(Vec3{}, 15); got != nil {
		t.Fatalf("expected no lootable wreck, got %+v", got)
	}
}

func TestFindLootableRespectsRadius(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)
	sl.RegisterFromSunkShip(testShip("enemy-1", NewVec3(100, 0, 0)))

	if got := sl.FindLootable(Vec3{}, 15); got != nil {
		t.Fatalf("wreck outside the radius returned: %+v", got)
	}
}

func TestReconcileSkipsAuthoredEcho(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)
	rec := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))

	// our own create echoing back in the next snapshot
	sl.ReconcileRemoteSnapshot([]ShipwreckRecord{*rec})

	if len(sl.Wrecks()) != 1 {
		t.Fatalf("authored echo duplicated the wreck, count: %d", len(sl.Wrecks()))
	}
}

func TestReconcileMaterializesRemoteWrecks(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)

	remote := ShipwreckRecord{
		Id:        "wreck-remote-1",
		ShipType:  "galleon",
		Position:  NewVec3(50, 0, 50),
		Loot:      Loot{Gold: 80, Items: []string{}},
		CreatedAt: fc.Now().Add(-time.Minute),
	}
	sl.ReconcileRemoteSnapshot([]ShipwreckRecord{remote})

	got := sl.FindWreck("wreck-remote-1")
	if got == nil {
		t.Fatal("remote wreck not materialized")
	}
	if got.LocallyCreated {
		t.Fatal("a materialized wreck must not be marked locally created")
	}
	if got.Sinking {
		t.Fatal("an unlooted remote wreck must not sink")
	}
}

func TestReconcileFreshlyLootedRemoteSinksImmediately(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)

	remote := ShipwreckRecord{
		Id:        "wreck-remote-1",
		ShipType:  "sloop",
		Looted:    true,
		LootedBy:  "player-2",
		LootedAt:  fc.Now().Add(-10 * time.Second),
		CreatedAt: fc.Now().Add(-time.Minute),
	}
	sl.ReconcileRemoteSnapshot([]ShipwreckRecord{remote})

	got := sl.FindWreck("wreck-remote-1")
	if got == nil {
		t.Fatal("freshly looted remote wreck must still materialize")
	}
	if !got.Sinking {
		t.Fatal("an already-looted wreck must materialize mid-sink")
	}
}

func TestReconcileSkipsStaleLootedRemote(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)

	remote := ShipwreckRecord{
		Id:        "wreck-remote-1",
		ShipType:  "sloop",
		Looted:    true,
		LootedBy:  "player-2",
		LootedAt:  fc.Now().Add(-40 * time.Second),
		CreatedAt: fc.Now().Add(-time.Minute),
	}
	sl.ReconcileRemoteSnapshot([]ShipwreckRecord{remote})

	if sl.FindWreck("wreck-remote-1") != nil {
		t.Fatal("a wreck looted 40s ago must not be materialized")
	}
}

func TestReconcileAdoptsRemoteLootClaim(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)
	rec := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))

	remote := *rec
	remote.Looted = true
	remote.LootedBy = "player-2"
	remote.LootedAt = fc.Now()
	sl.ReconcileRemoteChange(remote)

	if !rec.Looted || rec.LootedBy != "player-2" {
		t.Fatalf("remote loot claim not adopted: %+v", rec)
	}
	if !rec.Sinking {
		t.Fatal("a wreck claimed remotely must start sinking")
	}
}

func TestReconcileRemovesStaleLocals(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)

	// a previously materialized remote wreck
	sl.ReconcileRemoteChange(ShipwreckRecord{
		Id:        "wreck-remote-1",
		CreatedAt: fc.Now().Add(-time.Minute),
	})

	// a wreck authored moments ago, create still in flight
	fresh := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))

	// the store knows about neither
	sl.ReconcileRemoteSnapshot(nil)

	if sl.FindWreck("wreck-remote-1") != nil {
		t.Fatal("a remote wreck absent from the snapshot must be dropped")
	}
	if sl.FindWreck(fresh.Id) == nil {
		t.Fatal("a freshly authored unsynced wreck must survive the snapshot")
	}

	// past the unsynced grace it is gone too
	fc.Advance(6 * time.Second)
	sl.ReconcileRemoteSnapshot(nil)
	if sl.FindWreck(fresh.Id) != nil {
		t.Fatal("an authored wreck the store never accepted must age out")
	}
}

func TestPruneLifetimeCap(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)
	rec := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))

	fc.Advance(5*time.Minute - time.Second)
	sl.Update()
	if sl.FindWreck(rec.Id) == nil {
		t.Fatal("wreck pruned before its lifetime elapsed")
	}

	fc.Advance(2 * time.Second)
	sl.Update()
	if sl.FindWreck(rec.Id) != nil {
		t.Fatal("wreck must be pruned past the lifetime cap")
	}
}

func TestPruneCompletedSink(t *testing.T) {
	fc := newFakeClock()
	sl, _ := newTestLedger(fc)
	rec := sl.RegisterFromSunkShip(testShip("enemy-1", Vec3{}))
	sl.Loot(rec)

	if !sl.HasSinkingWrecks() {
		t.Fatal("expected a sinking wreck")
	}

	// sink duration plus removal grace
	fc.Advance(11 * time.Second)
	sl.Update()

	if sl.FindWreck(rec.Id) != nil {
		t.Fatal("wreck must be removed once its sink timeline completes")
	}
	if sl.HasSinkingWrecks() {
		t.Fatal("no sinking wreck should remain")
	}
}

func TestLootNilAndUnknown(t *testing.T) {
	fc := newFakeClock()
	sl, fs := newTestLedger(fc)

	if loot := sl.Loot(nil); loot.Gold != 0 {
		t.Fatal("looting nil must return empty loot")
	}
	if len(fs.lootRequests) != 0 {
		t.Fatal("looting nil must not reach the store")
	}
}
