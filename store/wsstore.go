// Package store implements the Remote State Store collaborator of the
// simulation core over the corsair sync protocol. All network delivery
// is decoupled from the game tick: a reader goroutine queues incoming
// events and the fleet manager drains them at the top of each frame,
// so ledger state never mutates concurrently with the simulation.
package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	cerr "github.com/corsairgame/corsair-core/internal/error"
	mc "github.com/corsairgame/corsair-core/models/connection"
	"github.com/corsairgame/corsair-core/models/naval"
	"github.com/corsairgame/corsair-core/pkg/logger"
)

var dialer = websocket.Dialer{
	HandshakeTimeout: 10 * time.Second,
}

type eventKind uint8

const (
	eventSnapshot eventKind = iota
	eventChanged
	eventLootResult
)

type storeEvent struct {
	kind     eventKind
	snapshot []naval.ShipwreckRecord
	changed  naval.ShipwreckRecord
	wreckId  string
	loot     naval.LootValidation
}

// WsStore is the websocket-backed StateStore. Every mutating call
// returns immediately after handing the frame to the connection; no
// caller ever blocks on a server response.
type WsStore struct {
	conn     *websocket.Conn
	playerId string

	mu        sync.Mutex
	sessionId string
	events    []storeEvent
	pending   map[string][]func(naval.LootValidation)
	closed    bool

	onSnapshot func([]naval.ShipwreckRecord)
	onChanged  func(naval.ShipwreckRecord)
}

var _ naval.StateStore = (*WsStore)(nil)

// Dial connects to the sync backend and starts the reader goroutine.
// The server's session id and initial snapshot arrive asynchronously
// and are applied on the first Drain after SubscribeShipwrecks.
func Dial(wsUrl, playerId string) (*WsStore, error) {
	if wsUrl == "" {
		return nil, cerr.ErrMissingCollaborator("sync server url")
	}

	conn, _, err := dialer.Dial(wsUrl, nil)
	if err != nil {
		return nil, cerr.ErrStoreUnavailable(err.Error())
	}

	ws := &WsStore{
		conn:     conn,
		playerId: playerId,
		events:   make([]storeEvent, 0, 10),
		pending:  make(map[string][]func(naval.LootValidation)),
	}

	go ws.readLoop()
	return ws, nil
}

func (ws *WsStore) SessionId() string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.sessionId
}

func (ws *WsStore) SubscribeShipwrecks(onSnapshot func([]naval.ShipwreckRecord), onChanged func(naval.ShipwreckRecord)) {
	ws.mu.Lock()
	ws.onSnapshot = onSnapshot
	ws.onChanged = onChanged
	ws.mu.Unlock()
}

// CreateShipwreck publishes an authored wreck, fire-and-forget. The
// server ack is consumed by the read loop and only logged on error.
func (ws *WsStore) CreateShipwreck(rec naval.ShipwreckRecord) error {
	req := mc.NewMessage[mc.ReqCreateShipwreck](mc.CodeCreateShipwreck)
	req.AddPayload(mc.ReqCreateShipwreck{Wreck: mc.WreckDataFromRecord(rec)})
	return ws.writeJSON(req)
}

// ValidateLoot asks the server to confirm a loot already granted
// locally. The result callback runs on a later Drain, never inline.
func (ws *WsStore) ValidateLoot(wreckId string, onResult func(naval.LootValidation)) {
	if onResult != nil {
		ws.mu.Lock()
		ws.pending[wreckId] = append(ws.pending[wreckId], onResult)
		ws.mu.Unlock()
	}

	req := mc.NewMessage[mc.ReqLootShipwreck](mc.CodeLootShipwreck)
	req.AddPayload(mc.ReqLootShipwreck{WreckId: wreckId, PlayerId: ws.playerId})
	if err := ws.writeJSON(req); err != nil {
		logger.Log.WithError(err).Warnf("loot validation request for %s never left", wreckId)
	}
}

func (ws *WsStore) UpdatePlayerPosition(pos naval.Vec3) error {
	req := mc.NewMessage[mc.ReqPlayerPosition](mc.CodePlayerPosition)
	req.AddPayload(mc.ReqPlayerPosition{X: pos.X, Y: pos.Y, Z: pos.Z})
	return ws.writeJSON(req)
}

// RequestSnapshot asks for a fresh full wreck list, e.g. after the
// client suspects it drifted.
func (ws *WsStore) RequestSnapshot() error {
	return ws.writeJSON(mc.NewSignal(mc.CodeShipwreckSnapshot))
}

// Drain applies every event queued by the reader since the last call.
// The fleet manager calls this at the top of each tick; it is the only
// place subscriber callbacks and loot-result callbacks run.
func (ws *WsStore) Drain() {
	ws.mu.Lock()
	events := ws.events
	ws.events = ws.events[len(ws.events):]
	onSnapshot := ws.onSnapshot
	onChanged := ws.onChanged
	ws.mu.Unlock()

	for _, ev := range events {
		switch ev.kind {
		case eventSnapshot:
			if onSnapshot != nil {
				onSnapshot(ev.snapshot)
			}

		case eventChanged:
			if onChanged != nil {
				onChanged(ev.changed)
			}

		case eventLootResult:
			ws.mu.Lock()
			callbacks := ws.pending[ev.wreckId]
			delete(ws.pending, ev.wreckId)
			ws.mu.Unlock()

			for _, cb := range callbacks {
				cb(ev.loot)
			}
		}
	}
}

func (ws *WsStore) Close() error {
	ws.mu.Lock()
	ws.closed = true
	ws.mu.Unlock()
	return ws.conn.Close()
}

func (ws *WsStore) writeJSON(msg interface{}) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return cerr.ErrStoreUnavailable("connection closed")
	}
	return ws.conn.WriteJSON(msg)
}

func (ws *WsStore) enqueue(ev storeEvent) {
	ws.mu.Lock()
	ws.events = append(ws.events, ev)
	ws.mu.Unlock()
}

// readLoop is the single reader of the connection. It never touches
// ledger state directly; everything goes through the event queue.
func (ws *WsStore) readLoop() {
	for {
		_, payload, err := ws.conn.ReadMessage()
		if err != nil {
			ws.mu.Lock()
			closed := ws.closed
			ws.mu.Unlock()
			if !closed {
				logger.Log.WithError(err).Warn("sync connection lost, continuing offline")
			}
			return
		}

		ws.dispatch(payload)
	}
}

func (ws *WsStore) dispatch(payload []byte) {
	var signal mc.Signal
	if err := json.Unmarshal(payload, &signal); err != nil {
		logger.Log.Debug("dropping frame without 'code' field")
		return
	}

	switch signal.Code {

	case mc.CodeSessionID:
		var msg mc.Message[mc.RespSessionId]
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		ws.mu.Lock()
		ws.sessionId = msg.Payload.SessionID
		ws.mu.Unlock()

	case mc.CodeShipwreckSnapshot:
		var msg mc.Message[mc.RespShipwreckSnapshot]
		if err := json.Unmarshal(payload, &msg); err != nil || msg.Error != nil {
			return
		}
		records := make([]naval.ShipwreckRecord, 0, len(msg.Payload.Wrecks))
		for _, wd := range msg.Payload.Wrecks {
			records = append(records, wd.ToRecord())
		}
		ws.enqueue(storeEvent{kind: eventSnapshot, snapshot: records})

	case mc.CodeShipwreckChanged:
		var msg mc.Message[mc.WreckData]
		if err := json.Unmarshal(payload, &msg); err != nil || msg.Error != nil {
			return
		}
		ws.enqueue(storeEvent{kind: eventChanged, changed: msg.Payload.ToRecord()})

	case mc.CodeLootShipwreck:
		var msg mc.Message[mc.RespLootShipwreck]
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		result := naval.LootValidation{Success: msg.Error == nil}
		if msg.Error != nil {
			result.Error = msg.Error.ErrorDetails
		}
		ws.enqueue(storeEvent{kind: eventLootResult, wreckId: msg.Payload.WreckId, loot: result})

	case mc.CodeCreateShipwreck:
		var msg mc.Message[mc.RespCreateShipwreck]
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if msg.Error != nil {
			logger.Log.Warnf("server refused shipwreck create: %s", msg.Error.ErrorDetails)
		}

	case mc.CodeReceivedInvalidSessionID:
		logger.Log.Warn("server rejected our session id")

	default:
		logger.Log.Debugf("unhandled signal code from server: %d", signal.Code)
	}
}
