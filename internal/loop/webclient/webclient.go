// Package webclient plays sessions over WebSocket: browsers send JSON
// commands and receive msgpack frames.
package webclient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/loop/config"
	"github.com/tomz197/containment/internal/loop/server"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// Options configures a Handler.
type Options struct {
	Logger     *log.Logger
	RewardCode string
	RewardURL  string
	// CheckOrigin overrides the upgrader's same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests to WebSocket and runs one session per connection.
type Handler struct {
	server     server.GameServer
	upgrader   websocket.Upgrader
	logger     *log.Logger
	rewardCode string
	rewardURL  string
}

// NewHandler creates a handler serving sessions from gs.
func NewHandler(gs server.GameServer, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		server:     gs,
		logger:     logger,
		rewardCode: opts.RewardCode,
		rewardURL:  opts.RewardURL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
	if h.rewardCode == "" {
		h.rewardCode = config.DefaultRewardCode
	}
	if h.rewardURL == "" {
		h.rewardURL = config.DefaultRewardURL
	}
	return h
}

// fieldFromQuery reads the initial field size from ?w=&h=, falling back to
// the portrait default.
func fieldFromQuery(r *http.Request) game.Field {
	field := game.Field{Width: config.WebFieldWidth, Height: config.WebFieldHeight}
	q := r.URL.Query()
	w, errW := strconv.ParseFloat(q.Get("w"), 64)
	h, errH := strconv.ParseFloat(q.Get("h"), 64)
	if errW == nil && errH == nil && w > 0 && h > 0 && w < 1e5 && h < 1e5 {
		field = game.Field{Width: w, Height: h}
	}
	return field
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	username := r.URL.Query().Get("name")
	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}

	handle, err := h.server.RegisterClient(username, fieldFromQuery(r))
	if err != nil {
		h.logger.Error("Register failed", "remote", r.RemoteAddr, "err", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "register failed"),
			time.Now().Add(config.WebWriteTimeout))
		return
	}
	h.logger.Info("WebSocket session", "client", handle.ID, "remote", r.RemoteAddr, "user", username)

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, handle, done)
	}()

	h.readLoop(conn, handle)
	close(done)
	h.server.UnregisterClient(handle.ID)
	<-writerDone
	h.logger.Info("WebSocket session ended", "client", handle.ID)
}

// readLoop forwards commands until the connection fails or closes.
func (h *Handler) readLoop(conn *websocket.Conn, handle *server.ClientHandle) {
	conn.SetReadLimit(config.WebReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Read failed", "client", handle.ID, "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if msgType != websocket.TextMessage {
			continue
		}

		cmd, err := DecodeCommand(data)
		if err != nil {
			if !errors.Is(err, ErrUnknownMessage) {
				h.logger.Debug("Bad command", "client", handle.ID, "err", err)
			}
			continue
		}
		h.server.SendCommand(handle.ID, cmd)
	}
}

// writeLoop is the connection's only writer: state frames at the broadcast
// rate, event frames as they arrive, and pings.
func (h *Handler) writeLoop(conn *websocket.Conn, handle *server.ClientHandle, done <-chan struct{}) {
	ticker := time.NewTicker(config.WebBroadcastTime)
	defer ticker.Stop()
	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	if err := h.write(conn, &Frame{Type: FrameResults, Results: resultViews(h.server.TopResults())}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := h.server.GetSnapshot(handle.ID)
			if snap == nil {
				snap = handle.Snapshot()
			}
			if err := h.write(conn, &Frame{Type: FrameState, State: snap}); err != nil {
				return
			}
		case ev, ok := <-handle.EventsCh:
			if !ok {
				return
			}
			for _, f := range h.framesFor(ev) {
				if err := h.write(conn, f); err != nil {
					return
				}
			}
		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(config.WebWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// framesFor translates a server event into outbound frames.
func (h *Handler) framesFor(ev server.ClientEvent) []*Frame {
	if ev.Type == server.EventServerShutdown {
		return []*Frame{{Type: FrameEvent, Kind: "shutdown"}}
	}

	gev := ev.Game
	f := &Frame{Type: FrameEvent, Event: &gev, Kind: gev.Type.String()}
	if gev.Type == game.EventWon {
		f.Reward = &Reward{Code: h.rewardCode, URL: h.rewardURL}
	}
	frames := []*Frame{f}
	if gev.Type == game.EventWon || gev.Type == game.EventLost {
		frames = append(frames, &Frame{Type: FrameResults, Results: resultViews(h.server.TopResults())})
	}
	return frames
}

func (h *Handler) write(conn *websocket.Conn, f *Frame) error {
	data, err := EncodeFrame(f)
	if err != nil {
		h.logger.Error("Encode frame", "err", err)
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(config.WebWriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
