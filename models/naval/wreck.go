package naval

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Loot struct {
	Gold  int      `json:"gold"`
	Items []string `json:"items"`
}

// EmptyLoot is what idempotent re-loots and failed loot attempts
// return: nothing, but never nil slices.
func EmptyLoot() Loot {
	return Loot{Gold: 0, Items: []string{}}
}

// ShipwreckRecord is the replicated unit of multiplayer state. Its
// position and loot are frozen at creation; only the looted/sinking
// fields ever mutate, and both are monotonic.
type ShipwreckRecord struct {
	Id       string
	ShipType string
	Position Vec3
	Loot     Loot

	Looted   bool
	LootedBy string
	LootedAt time.Time

	Sinking       bool
	SinkStartedAt time.Time

	CreatedAt time.Time

	// LocallyCreated marks records this client authored, as opposed to
	// ones materialized from the remote store. Used to suppress
	// duplicate creation when our own write echoes back.
	LocallyCreated bool
}

func newWreckId(now time.Time) string {
	return fmt.Sprintf("wreck-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
