package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/corsairgame/corsair-core/db/sqlc"
	cerr "github.com/corsairgame/corsair-core/internal/error"
	mc "github.com/corsairgame/corsair-core/models/connection"
	"github.com/corsairgame/corsair-core/models/naval"
)

type RequestHandler interface {
	HandleCreateShipwreck(q sqlc.Querier) (mc.WreckData, mc.Message[mc.RespCreateShipwreck])
	HandleLootShipwreck(q sqlc.Querier) (mc.WreckData, mc.Message[mc.RespLootShipwreck])
	HandleShipwreckSnapshot(q sqlc.Querier, lifetime time.Duration) mc.Message[mc.RespShipwreckSnapshot]
	HandlePlayerPosition() (naval.Vec3, bool)
}

// Every incoming valid request has this structure. The handler methods
// are the server-side truth for each signal code; reconciliation on
// the clients works off whatever these commit to the database.
type Request struct {
	payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload ...[]byte) Request {
	var req Request
	if len(payload) > 1 {
		log.Println("cannot accept more than one payload")
		return req
	}

	if len(payload) != 0 {
		req.payload = payload[0]
	}
	return req
}

// HandleCreateShipwreck persists a wreck a client just authored. The
// insert is idempotent on the wreck id, so the same wreck published
// twice (e.g. after a reconnect) is not an error.
func (r Request) HandleCreateShipwreck(q sqlc.Querier) (mc.WreckData, mc.Message[mc.RespCreateShipwreck]) {
	resp := mc.NewMessage[mc.RespCreateShipwreck](mc.CodeCreateShipwreck)

	if r.payload == nil {
		resp.AddError(cerr.ErrNilPayload().Error(), "invalid create shipwreck payload")
		return mc.WreckData{}, resp
	}

	var reqCreate mc.Message[mc.ReqCreateShipwreck]
	if err := json.Unmarshal(r.payload, &reqCreate); err != nil {
		resp.AddError(err.Error(), "invalid create shipwreck payload")
		return mc.WreckData{}, resp
	}

	wreck := reqCreate.Payload.Wreck
	if wreck.Id == "" {
		resp.AddError("empty wreck id", "invalid create shipwreck payload")
		return mc.WreckData{}, resp
	}
	if !isFinite(wreck.X) || !isFinite(wreck.Y) || !isFinite(wreck.Z) {
		resp.AddError(cerr.ErrInvalidPosition(wreck.X, wreck.Y, wreck.Z).Error(), "invalid create shipwreck payload")
		return mc.WreckData{}, resp
	}

	createdAt := time.UnixMilli(wreck.CreatedAtMs)
	if wreck.CreatedAtMs <= 0 {
		createdAt = time.Now()
		wreck.CreatedAtMs = createdAt.UnixMilli()
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	_, err := q.InsertShipwreck(ctx, sqlc.InsertShipwreckParams{
		ID:        wreck.Id,
		ShipType:  wreck.ShipType,
		X:         wreck.X,
		Y:         naval.WaterLevelY,
		Z:         wreck.Z,
		Gold:      int32(wreck.Gold),
		Looted:    wreck.Looted,
		LootedBy:  sql.NullString{String: wreck.LootedBy, Valid: wreck.LootedBy != ""},
		LootedAt:  sql.NullTime{Time: time.UnixMilli(wreck.LootedAtMs), Valid: wreck.LootedAtMs > 0},
		CreatedAt: createdAt,
	})
	if err != nil {
		resp.AddError(err.Error(), "failed to persist shipwreck")
		return mc.WreckData{}, resp
	}

	resp.AddPayload(mc.RespCreateShipwreck{WreckId: wreck.Id})
	return wreck, resp
}

// HandleLootShipwreck arbitrates a loot claim: the first client whose
// UPDATE lands wins; everyone else gets a rejection they can surface
// as a transient notice (their optimistic local loot stays as is).
func (r Request) HandleLootShipwreck(q sqlc.Querier) (mc.WreckData, mc.Message[mc.RespLootShipwreck]) {
	resp := mc.NewMessage[mc.RespLootShipwreck](mc.CodeLootShipwreck)

	if r.payload == nil {
		resp.AddError(cerr.ErrNilPayload().Error(), "invalid loot shipwreck payload")
		return mc.WreckData{}, resp
	}

	var reqLoot mc.Message[mc.ReqLootShipwreck]
	if err := json.Unmarshal(r.payload, &reqLoot); err != nil {
		resp.AddError(err.Error(), "invalid loot shipwreck payload")
		return mc.WreckData{}, resp
	}

	wreckId := reqLoot.Payload.WreckId
	playerId := reqLoot.Payload.PlayerId
	resp.AddPayload(mc.RespLootShipwreck{WreckId: wreckId, LootedBy: playerId})

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	lootedAt := time.Now()
	rows, err := q.LootShipwreck(ctx, sqlc.LootShipwreckParams{
		ID:       wreckId,
		LootedBy: sql.NullString{String: playerId, Valid: playerId != ""},
		LootedAt: sql.NullTime{Time: lootedAt, Valid: true},
	})
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrLootFailed)
		return mc.WreckData{}, resp
	}

	wreck, getErr := q.GetShipwreck(ctx, wreckId)
	if rows == 0 {
		if getErr != nil {
			resp.AddError(cerr.ErrShipwreckNotExist(wreckId).Error(), cerr.ConstErrLootFailed)
			return mc.WreckData{}, resp
		}
		resp.AddError(cerr.ErrShipwreckAlreadyLooted(wreckId, wreck.LootedBy.String).Error(), cerr.ConstErrLootFailed)
		return mc.WreckData{}, resp
	}
	if getErr != nil {
		resp.AddError(getErr.Error(), cerr.ConstErrLootFailed)
		return mc.WreckData{}, resp
	}

	resp.AddPayload(mc.RespLootShipwreck{
		WreckId:  wreckId,
		Gold:     int(wreck.Gold),
		LootedBy: playerId,
	})
	return wreckDataFromRow(wreck), resp
}

// HandleShipwreckSnapshot lists every wreck younger than the lifetime
// cap; anything older is invisible to clients and purged separately.
func (r Request) HandleShipwreckSnapshot(q sqlc.Querier, lifetime time.Duration) mc.Message[mc.RespShipwreckSnapshot] {
	resp := mc.NewMessage[mc.RespShipwreckSnapshot](mc.CodeShipwreckSnapshot)

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	rows, err := q.ListActiveShipwrecks(ctx, time.Now().Add(-lifetime))
	if err != nil {
		resp.AddError(err.Error(), "failed to list shipwrecks")
		return resp
	}

	wrecks := make([]mc.WreckData, 0, len(rows))
	for _, row := range rows {
		wrecks = append(wrecks, wreckDataFromRow(row))
	}

	resp.AddPayload(mc.RespShipwreckSnapshot{Wrecks: wrecks})
	return resp
}

// HandlePlayerPosition is best-effort: a malformed or non-finite
// position is simply dropped.
func (r Request) HandlePlayerPosition() (naval.Vec3, bool) {
	var reqPos mc.Message[mc.ReqPlayerPosition]
	if err := json.Unmarshal(r.payload, &reqPos); err != nil {
		return naval.Vec3{}, false
	}

	pos := naval.NewVec3(reqPos.Payload.X, reqPos.Payload.Y, reqPos.Payload.Z)
	if !pos.IsFinite() {
		return naval.Vec3{}, false
	}
	return pos.OnWater(), true
}

func wreckDataFromRow(row sqlc.Shipwreck) mc.WreckData {
	wd := mc.WreckData{
		Id:          row.ID,
		ShipType:    row.ShipType,
		X:           row.X,
		Y:           row.Y,
		Z:           row.Z,
		Gold:        int(row.Gold),
		Looted:      row.Looted,
		CreatedAtMs: row.CreatedAt.UnixMilli(),
	}
	if row.LootedBy.Valid {
		wd.LootedBy = row.LootedBy.String
	}
	if row.LootedAt.Valid {
		wd.LootedAtMs = row.LootedAt.Time.UnixMilli()
	}
	return wd
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
