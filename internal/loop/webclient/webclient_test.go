package webclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/loop/config"
	"github.com/tomz197/containment/internal/loop/server"
)

func TestFieldFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  game.Field
	}{
		{"w=390&h=844", game.Field{Width: 390, Height: 844}},
		{"", game.Field{Width: config.WebFieldWidth, Height: config.WebFieldHeight}},
		{"w=0&h=844", game.Field{Width: config.WebFieldWidth, Height: config.WebFieldHeight}},
		{"w=abc&h=1", game.Field{Width: config.WebFieldWidth, Height: config.WebFieldHeight}},
		{"w=1e9&h=1", game.Field{Width: config.WebFieldWidth, Height: config.WebFieldHeight}},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws?"+tt.query, nil)
		if got := fieldFromQuery(r); got != tt.want {
			t.Errorf("fieldFromQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestFramesFor(t *testing.T) {
	h := NewHandler(nil, Options{Logger: log.New(io.Discard)})
	h.server = stubServer{}

	frames := h.framesFor(server.ClientEvent{Type: server.EventGame, Game: game.Event{Type: game.EventWon, Level: 5, Lives: 2}})
	if len(frames) != 2 {
		t.Fatalf("won produced %d frames, want event and results", len(frames))
	}
	if frames[0].Kind != "won" || frames[0].Reward == nil || frames[0].Reward.Code != config.DefaultRewardCode {
		t.Errorf("won frame = %+v", frames[0])
	}
	if frames[1].Type != FrameResults || len(frames[1].Results) != 1 {
		t.Errorf("results frame = %+v", frames[1])
	}

	frames = h.framesFor(server.ClientEvent{Type: server.EventGame, Game: game.Event{Type: game.EventBreach, Lives: 3}})
	if len(frames) != 1 || frames[0].Kind != "breach" || frames[0].Reward != nil {
		t.Errorf("breach frames = %+v", frames)
	}

	frames = h.framesFor(server.ClientEvent{Type: server.EventServerShutdown})
	if len(frames) != 1 || frames[0].Kind != "shutdown" {
		t.Errorf("shutdown frames = %+v", frames)
	}
}

type stubServer struct{ server.GameServer }

func (stubServer) TopResults() []server.Result {
	return []server.Result{{Username: "a", Won: true, Level: 5}}
}

func readFrame(t *testing.T, conn *websocket.Conn) *Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", msgType)
	}
	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	return f
}

func TestWebSocketSession(t *testing.T) {
	logger := log.New(io.Discard)
	srv, err := server.NewServer(game.DefaultConfig(), server.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	ts := httptest.NewServer(NewHandler(srv, Options{Logger: logger}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/?w=390&h=844&name=frank"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if f := readFrame(t, conn); f.Type != FrameResults {
		t.Fatalf("first frame = %+v, want results", f)
	}

	f := readFrame(t, conn)
	if f.Type != FrameState || f.State.Field.Width != 390 || f.State.State.Phase != game.PhaseNotStarted {
		t.Fatalf("state frame = %+v", f)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"start"}`)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	var sawStarted, sawPlaying bool
	for i := 0; i < 100 && !(sawStarted && sawPlaying); i++ {
		f := readFrame(t, conn)
		switch f.Type {
		case FrameEvent:
			if f.Kind == "started" {
				sawStarted = true
			}
		case FrameState:
			if f.State.State.Phase == game.PhasePlaying {
				sawPlaying = true
			}
		}
	}
	if !sawStarted || !sawPlaying {
		t.Errorf("started event %v, playing state %v", sawStarted, sawPlaying)
	}
}
