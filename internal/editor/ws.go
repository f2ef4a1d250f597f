package editor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/deploy"
	"github.com/ziadkadry99/instasite/internal/sandbox"
	"github.com/ziadkadry99/instasite/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stateEvent is the outgoing WebSocket message. It carries the session state
// without page source; clients fetch what they need after a change.
type stateEvent struct {
	Type     string `json:"type"` // "state" or "error"
	Revision uint64 `json:"revision,omitempty"`
	// Layout fingerprints everything a screen renders except the sandbox
	// error. Clients reload only when it changes.
	Layout       string               `json:"layout,omitempty"`
	Screen       session.Screen       `json:"screen,omitempty"`
	Step         session.Step         `json:"step,omitempty"`
	StepLabel    string               `json:"step_label,omitempty"`
	CurrentPage  string               `json:"current_page,omitempty"`
	Generated    []string             `json:"generated,omitempty"`
	InFlight     []string             `json:"in_flight,omitempty"`
	Notice       *session.Notice      `json:"notice,omitempty"`
	SandboxError *sandbox.RenderError `json:"sandbox_error,omitempty"`
	Deploy       *deploy.Status       `json:"deploy,omitempty"`
	Message      string               `json:"message,omitempty"`
}

func newStateEvent(s session.Snapshot) stateEvent {
	ev := stateEvent{
		Type:         "state",
		Revision:     s.Revision,
		Screen:       s.Screen,
		Step:         s.Step,
		StepLabel:    s.StepLabel,
		CurrentPage:  s.CurrentPage,
		InFlight:     s.InFlight,
		Notice:       s.Notice,
		SandboxError: s.SandboxError,
		Deploy:       &s.Deploy,
	}
	if s.Blueprint != nil {
		for _, p := range s.Blueprint.Pages {
			if p.Generated() {
				ev.Generated = append(ev.Generated, p.Slug)
			}
		}
	}
	ev.Layout = layoutOf(ev)
	return ev
}

// layoutKey is the Layout of the state event for s.
func layoutKey(s session.Snapshot) string {
	return newStateEvent(s).Layout
}

func layoutOf(ev stateEvent) string {
	ev.Revision = 0
	ev.SandboxError = nil
	b, err := json.Marshal(ev)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

func (e *Editor) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := c.Subscribe()
	defer cancel()

	// The client never sends anything meaningful; reading only detects close
	// and processes pongs.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					e.logger.Debug("websocket read", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newStateEvent(snap)); err != nil {
				e.logger.Debug("websocket write", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
