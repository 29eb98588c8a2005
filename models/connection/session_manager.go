package connection

import (
	"encoding/base64"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	cerr "github.com/corsairgame/corsair-core/internal/error"
	"github.com/corsairgame/corsair-core/models/naval"
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically()

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn)

	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)

	// Broadcast delivers msg to every session except the sender.
	Broadcast(senderSessionId string, msg interface{}, msgType uint8)

	SetSessionPosition(session *Session, pos naval.Vec3)
}

// CorsairSessionManager keeps every connected client of one world.
// Unlike a match-based game there is no pairing: wreck events fan out
// to everyone sailing the same ocean.
type CorsairSessionManager struct {
	cleanupInterval time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

func NewCorsairSessionManager() *CorsairSessionManager {
	initMapSize := 10

	return &CorsairSessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		cleanupInterval: time.Minute * 20,
	}
}

var _ SessionManager = (*CorsairSessionManager)(nil)

func (csm *CorsairSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))

	csm.mu.Lock()
	csm.sessions[sessionId] = NewSession(sessionId, conn)
	csm.mu.Unlock()

	return csm.sessions[sessionId]
}

func (csm *CorsairSessionManager) FindSession(sessionId string) (*Session, error) {
	csm.mu.RLock()
	defer csm.mu.RUnlock()

	session, prs := csm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (csm *CorsairSessionManager) TerminateSession(sessionId string) {
	csm.mu.Lock()
	delete(csm.sessions, sessionId)
	csm.mu.Unlock()
}

func (csm *CorsairSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) {
	session, err := csm.FindSession(sessionId)
	if err != nil {
		// This either means an expired session or an invalid session id
		_ = conn.WriteJSON(NewMessage[NoPayload](CodeReceivedInvalidSessionID))
		conn.Close()
		return
	}

	session.reconnectionAfterAbnormalClosure(conn)
}

func (csm *CorsairSessionManager) SetSessionPosition(session *Session, pos naval.Vec3) {
	session.lastPosition = pos.OnWater()
}

func (csm *CorsairSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	if connErr, ok := err.(ConnErr); ok && connErr.Code() == ConnLoopAbnormalClosureRetry {
		if waitErr := csm.waitForReconnection(session); waitErr == nil {
			return session.writeToConnWithRetry(msg, msgType)
		}
	}

	return err
}

// ReadFromSessionConn reads one frame, absorbing transient errors and
// waiting out abnormal closures within the grace period. A returned
// error means the session loop should end.
func (csm *CorsairSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

readLoop:
	for {
		msgType, payload, err := session.conn.ReadMessage()
		if err == nil {
			return msgType, payload, nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue readLoop

		case ConnLoopAbnormalClosureRetry:
			if waitErr := csm.waitForReconnection(session); waitErr != nil {
				return 0, nil, waitErr
			}
			retries = 0
			continue readLoop

		default:
			return 0, nil, NewConnErr(ConnLoopBreak).AddDesc(err.Error())
		}
	}
}

// Broadcast fans a message out to every other session. Write failures
// are logged, not fatal; the cleanup loop reaps dead sessions later.
func (csm *CorsairSessionManager) Broadcast(senderSessionId string, msg interface{}, msgType uint8) {
	csm.mu.RLock()
	receivers := make([]*Session, 0, len(csm.sessions))
	for id, session := range csm.sessions {
		if id == senderSessionId || session == nil {
			continue
		}
		receivers = append(receivers, session)
	}
	csm.mu.RUnlock()

	for _, session := range receivers {
		if err := session.writeToConnWithRetry(msg, msgType); err != nil {
			log.Printf("broadcast to session %s failed: %s", session.id, err)
		}
	}
}

// The client is given a grace period to dial back in after an
// abnormal closure before the session is written off.
func (csm *CorsairSessionManager) waitForReconnection(session *Session) error {
	select {
	case <-session.reconnectionSignalChan:
		return nil

	case <-time.After(gracePeriod):
		return NewConnErr(ConnLoopBreak).AddDesc("grace period for reconnection passed")
	}
}

// To ensure that there are no dangling connections, sessions older
// than the cleanup interval are marked stale and deleted.
func (csm *CorsairSessionManager) CleanupPeriodically() {
	assumedClosedConns := 10

	for {
		time.Sleep(csm.cleanupInterval)

		csm.mu.Lock()
		toDelete := make([]string, 0, assumedClosedConns)

		for ID, session := range csm.sessions {
			if time.Since(session.createdAt) > csm.cleanupInterval {
				toDelete = append(toDelete, ID)
			}
		}

		for _, ID := range toDelete {
			delete(csm.sessions, ID)
			log.Printf("removed stale session: %s", ID)
		}
		csm.mu.Unlock()
	}
}
