package webclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/loop/server"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownMessage is returned for inbound messages with an unrecognized type.
var ErrUnknownMessage = errors.New("unknown message type")

// inMessage is the JSON shape browsers send.
type inMessage struct {
	Type string  `json:"type"`
	ID   *int    `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

var commandKinds = map[string]server.CommandKind{
	"start":   server.CmdStart,
	"restart": server.CmdRestart,
	"grab":    server.CmdGrab,
	"move":    server.CmdMove,
	"release": server.CmdRelease,
	"down":    server.CmdPointerDown,
	"drag":    server.CmdPointerMove,
	"up":      server.CmdPointerUp,
	"resize":  server.CmdResize,
}

// DecodeCommand parses one inbound text message.
func DecodeCommand(data []byte) (server.Command, error) {
	var msg inMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return server.Command{}, fmt.Errorf("decode command: %w", err)
	}
	kind, ok := commandKinds[msg.Type]
	if !ok {
		return server.Command{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	cmd := server.Command{Kind: kind, X: msg.X, Y: msg.Y, W: msg.W, H: msg.H}
	switch kind {
	case server.CmdGrab, server.CmdMove, server.CmdRelease:
		if msg.ID == nil {
			return server.Command{}, fmt.Errorf("decode command: %s needs an id", msg.Type)
		}
		cmd.HazardID = *msg.ID
	}
	return cmd, nil
}

// Frame types.
const (
	FrameState   = "state"
	FrameEvent   = "event"
	FrameResults = "results"
)

// Reward is revealed to the browser on a win.
type Reward struct {
	Code string `msgpack:"code"`
	URL  string `msgpack:"url"`
}

// ResultView is one results board row.
type ResultView struct {
	Username string  `msgpack:"user"`
	Won      bool    `msgpack:"won"`
	Level    int     `msgpack:"level"`
	Lives    int     `msgpack:"lives"`
	Seconds  float64 `msgpack:"secs"`
}

// Frame is one outbound binary message.
type Frame struct {
	Type    string         `msgpack:"type"`
	State   *game.Snapshot `msgpack:"state,omitempty"`
	Event   *game.Event    `msgpack:"event,omitempty"`
	Kind    string         `msgpack:"kind,omitempty"` // Event type name
	Reward  *Reward        `msgpack:"reward,omitempty"`
	Results []ResultView   `msgpack:"results,omitempty"`
}

// EncodeFrame serializes a frame with msgpack.
func EncodeFrame(f *Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func resultViews(results []server.Result) []ResultView {
	views := make([]ResultView, len(results))
	for i, r := range results {
		views[i] = ResultView{
			Username: r.Username,
			Won:      r.Won,
			Level:    r.Level,
			Lives:    r.Lives,
			Seconds:  r.Duration.Round(time.Second).Seconds(),
		}
	}
	return views
}
