package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"

	"github.com/corsairgame/corsair-core/db/sqlc"
	mc "github.com/corsairgame/corsair-core/models/connection"
	"github.com/corsairgame/corsair-core/models/naval"
	"github.com/corsairgame/corsair-core/pkg/logger"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"

	purgeInterval = time.Minute
)

var (
	upgrader = websocket.Upgrader{

		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// probably more that enough but this is a good average size
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// RequestProcessor runs one session loop per connected client. Wreck
// creation and loot claims go through the database, and every accepted
// change fans out to the other sessions so their ledgers reconcile.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	q              sqlc.Querier
	wreckLifetime  time.Duration
	ipnet          net.IPNet
}

func NewRequestProcessor(sessionManager mc.SessionManager, q sqlc.Querier) RequestProcessor {
	rp := RequestProcessor{
		sessionManager: sessionManager,
		q:              q,
		wreckLifetime:  naval.DefaultShipwreckLifetime,
	}

	rp = rp.mustGetServerIpNet()
	return rp
}

func (rp RequestProcessor) mustGetServerIpNet() RequestProcessor {
	ifaces, err := net.Interfaces()
	if err != nil {
		panic(err)
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			panic(err)
		}

		for _, addr := range addrs {
			var ipnet *net.IPNet
			var ip net.IP

			switch v := addr.(type) {
			case *net.IPNet:
				ipnet = v
				ip = v.IP

			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				rp.ipnet = *ipnet
				return rp
			}
		}
	}

	panic("ipnet could not be found!")
}

// Expose this method to use it in testing
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		http.Error(w, "could not open websocket connection", http.StatusBadRequest)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Println("a new connection established\tRemote Addr: ", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		rp.sessionManager.ReconnectSession(sessionIdQuery, conn)
	}
}

// PurgeExpiredPeriodically deletes wrecks past the lifetime cap so
// snapshots stay small. Run it on its own goroutine.
func (rp RequestProcessor) PurgeExpiredPeriodically() {
	for {
		time.Sleep(purgeInterval)

		ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
		deleted, err := rp.q.DeleteExpiredShipwrecks(ctx, time.Now().Add(-rp.wreckLifetime))
		cancel()
		if err != nil {
			logger.Log.WithError(err).Warn("failed to purge expired shipwrecks")
			continue
		}
		if deleted > 0 {
			logger.Log.Debugf("purged %d expired shipwrecks", deleted)
		}
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()

	defer func() {
		if session != nil && session.Conn() != nil {
			session.Conn().Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	// New clients start from the current wreck state of the world
	snapshotMsg := NewRequest().HandleShipwreckSnapshot(rp.q, rp.wreckLifetime)
	if err := rp.sessionManager.WriteToSessionConn(session, snapshotMsg, mc.MessageTypeJSON); err != nil {
		return
	}

	serverPqtypeInet := pqtype.Inet{IPNet: rp.ipnet, Valid: true}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		var signal mc.Signal

		if err := json.Unmarshal(payload, &signal); err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch signal.Code {

		// A client sank an enemy and publishes the wreck. Persist it
		// and let every other client materialize it.
		case mc.CodeCreateShipwreck:
			ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
			if err := rp.q.AnalyticsIncrementWrecksCreatedCount(ctx, serverPqtypeInet); err != nil {
				// for now not killing the session for it
				log.Println(err)
			}
			cancel()

			wreck, respMsg := NewRequest(payload).HandleCreateShipwreck(rp.q)

			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			if respMsg.Error != nil {
				continue sessionLoop
			}

			rp.broadcastWreckChange(sessionId, wreck)

		// First claim wins; the losing client keeps its optimistic
		// loot and shows a transient notice instead.
		case mc.CodeLootShipwreck:
			ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
			if err := rp.q.AnalyticsIncrementLootsValidatedCount(ctx, serverPqtypeInet); err != nil {
				// for now not killing the session for it
				log.Println(err)
			}
			cancel()

			wreck, respMsg := NewRequest(payload).HandleLootShipwreck(rp.q)

			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			if respMsg.Error != nil {
				continue sessionLoop
			}

			rp.broadcastWreckChange(sessionId, wreck)

		case mc.CodeShipwreckSnapshot:
			respMsg := NewRequest(payload).HandleShipwreckSnapshot(rp.q, rp.wreckLifetime)
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}

		// Fire-and-forget from the client; no response at all
		case mc.CodePlayerPosition:
			if pos, ok := NewRequest(payload).HandlePlayerPosition(); ok {
				rp.sessionManager.SetSessionPosition(session, pos)
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
		}
	}
}

func (rp *RequestProcessor) broadcastWreckChange(senderSessionId string, wreck mc.WreckData) {
	changeMsg := mc.NewMessage[mc.WreckData](mc.CodeShipwreckChanged)
	changeMsg.AddPayload(wreck)
	rp.sessionManager.Broadcast(senderSessionId, changeMsg, mc.MessageTypeJSON)
}
