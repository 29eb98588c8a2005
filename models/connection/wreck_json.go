package connection

import (
	"time"

	"github.com/corsairgame/corsair-core/models/naval"
)

// WreckData is the wire form of a shipwreck record. Timestamps travel
// as epoch milliseconds; a zero LootedAtMs means never looted.
type WreckData struct {
	Id          string  `json:"id"`
	ShipType    string  `json:"ship_type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Gold        int     `json:"gold"`
	Looted      bool    `json:"looted"`
	LootedBy    string  `json:"looted_by,omitempty"`
	LootedAtMs  int64   `json:"looted_at_ms,omitempty"`
	CreatedAtMs int64   `json:"created_at_ms"`
}

func WreckDataFromRecord(rec naval.ShipwreckRecord) WreckData {
	wd := WreckData{
		Id:          rec.Id,
		ShipType:    rec.ShipType,
		X:           rec.Position.X,
		Y:           rec.Position.Y,
		Z:           rec.Position.Z,
		Gold:        rec.Loot.Gold,
		Looted:      rec.Looted,
		LootedBy:    rec.LootedBy,
		CreatedAtMs: rec.CreatedAt.UnixMilli(),
	}
	if rec.Looted {
		wd.LootedAtMs = rec.LootedAt.UnixMilli()
	}
	return wd
}

func (wd WreckData) ToRecord() naval.ShipwreckRecord {
	rec := naval.ShipwreckRecord{
		Id:       wd.Id,
		ShipType: wd.ShipType,
		Position: naval.NewVec3(wd.X, wd.Y, wd.Z).OnWater(),
		Loot:     naval.Loot{Gold: wd.Gold, Items: []string{}},
		Looted:   wd.Looted,
		LootedBy: wd.LootedBy,

		CreatedAt: time.UnixMilli(wd.CreatedAtMs),
	}
	if wd.Looted && wd.LootedAtMs > 0 {
		rec.LootedAt = time.UnixMilli(wd.LootedAtMs)
	}
	return rec
}
