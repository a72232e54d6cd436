package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/mockprep-backend/internal/service"
	"github.com/stemsi/mockprep-backend/internal/session"
	ws "github.com/stemsi/mockprep-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live mock session.
type WSHandler struct {
	sessionService *service.MockSessionService
	pushInterval   time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. Snapshots are pushed every pushInterval.
func NewWSHandler(sessionService *service.MockSessionService, pushInterval time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	if pushInterval <= 0 {
		pushInterval = session.DefaultTickInterval
	}
	return &WSHandler{
		sessionService: sessionService,
		pushInterval:   pushInterval,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream
// Pushes a snapshot every tick and after every action. Sends a finished
// event and closes once the session ends.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sess, ok := (&SessionHandler{sessionService: h.sessionService}).load(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("session_id", sess.ID()).
		Str("user_id", sess.UserID()).
		Logger()
	wsLog.Info().Msg("Stream connected")

	// Reads happen on their own goroutine; every write stays on this one.
	actions := make(chan ws.RequestPayload)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestPayload
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case actions <- msg:
			case <-sess.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	if err := h.pushSnapshot(conn, sess); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return

		case <-sess.Done():
			h.pushEnd(conn, sess)
			return

		case <-ticker.C:
			if err := h.pushSnapshot(conn, sess); err != nil {
				return
			}

		case msg := <-actions:
			if err := h.handleAction(conn, sess, msg); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

func (h *WSHandler) handleAction(conn *websocket.Conn, sess *session.Session, msg ws.RequestPayload) error {
	var err error
	switch msg.Action {
	case ws.ActionPing:
		return ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
	case ws.ActionSelect:
		err = sess.SelectAnswer(msg.Choice)
	case ws.ActionGoTo:
		if msg.Index == nil {
			return ws.WriteError(conn, "index is required")
		}
		_, err = sess.GoTo(*msg.Index)
	case ws.ActionNext:
		_, err = sess.Next()
	case ws.ActionPrevious:
		_, err = sess.Previous()
	case ws.ActionFinish:
		// The Done branch of the stream loop sends the finished event.
		_, err = sess.Finish()
		if err == nil {
			return nil
		}
	default:
		h.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.WriteError(conn, "unknown action: "+string(msg.Action))
	}

	if err != nil {
		return ws.WriteError(conn, err.Error())
	}
	return h.pushSnapshot(conn, sess)
}

func (h *WSHandler) pushSnapshot(conn *websocket.Conn, sess *session.Session) error {
	return ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Snapshot: sess.Snapshot()})
}

func (h *WSHandler) pushEnd(conn *websocket.Conn, sess *session.Session) {
	snap := sess.Snapshot()
	if res, ok := sess.Result(); ok {
		_ = ws.WriteTyped(conn, ws.FinishedResponse{
			Event:    ws.EventFinished,
			Result:   res,
			Snapshot: snap,
			Warnings: snap.Warnings,
		})
	} else {
		_ = ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Snapshot: snap})
	}
	_ = ws.CloseNormal(conn, string(snap.Status))
}
