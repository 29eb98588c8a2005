package naval

import "github.com/corsairgame/corsair-core/pkg/logger"

type LootValidation struct {
	Success bool
	Error   string
}

// StateStore abstracts the authoritative multiplayer backend. Every
// call is best-effort: the simulation never blocks on any of them, and
// a failure never rolls back local state. Async results come back
// through callbacks that implementations must deliver on the game
// tick, never concurrently with it.
type StateStore interface {
	CreateShipwreck(rec ShipwreckRecord) error
	SubscribeShipwrecks(onSnapshot func([]ShipwreckRecord), onChanged func(ShipwreckRecord))
	ValidateLoot(wreckId string, onResult func(LootValidation))
	UpdatePlayerPosition(pos Vec3) error
	Close() error
}

// OfflineStore is the degraded mode when no backend is reachable or
// the player is not authenticated: the game keeps operating purely
// locally with no cross-client sync.
type OfflineStore struct{}

var _ StateStore = OfflineStore{}

func NewOfflineStore() OfflineStore {
	logger.Log.Warn("remote state store unavailable, shipwrecks will not sync across clients")
	return OfflineStore{}
}

func (OfflineStore) CreateShipwreck(rec ShipwreckRecord) error {
	return nil
}

func (OfflineStore) SubscribeShipwrecks(onSnapshot func([]ShipwreckRecord), onChanged func(ShipwreckRecord)) {
}

// Offline loot always validates; there is no server to reject it.
func (OfflineStore) ValidateLoot(wreckId string, onResult func(LootValidation)) {
	if onResult != nil {
		onResult(LootValidation{Success: true})
	}
}

func (OfflineStore) UpdatePlayerPosition(pos Vec3) error {
	return nil
}

func (OfflineStore) Close() error {
	return nil
}
