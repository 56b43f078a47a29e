package server

import (
	"sync/atomic"
	"time"

	"github.com/tomz197/containment/internal/clock"
	"github.com/tomz197/containment/internal/game"
)

// CommandKind identifies a client request.
type CommandKind int

const (
	CmdStart CommandKind = iota + 1
	CmdRestart
	CmdGrab    // Hold hazard HazardID
	CmdMove    // Move hazard HazardID to (X, Y)
	CmdRelease // Release hazard HazardID
	CmdPointerDown
	CmdPointerMove
	CmdPointerUp
	CmdResize // New field W x H
)

// Command is one input from a client. Pointer commands carry field
// coordinates and resolve to hazard ids on the server.
type Command struct {
	Kind     CommandKind
	HazardID int
	X, Y     float64
	W, H     float64
}

// ClientInput represents a command from a specific client.
type ClientInput struct {
	ClientID int
	Command  Command
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventGame ClientEventType = iota
	EventServerShutdown
)

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
	Game game.Event // For EventGame
}

// ClientHandle represents a client's connection to the server.
// The session and countdown belong to the server goroutine.
type ClientHandle struct {
	ID       int
	Username string
	EventsCh chan ClientEvent

	session    *game.Session
	countdown  *clock.Countdown
	cfgVersion uint64
	runStart   time.Time
	snapshot   atomic.Pointer[game.Snapshot]
}

// Snapshot returns the latest published state of this client's session.
func (h *ClientHandle) Snapshot() *game.Snapshot {
	return h.snapshot.Load()
}

func (h *ClientHandle) publish() {
	snap := h.session.Snapshot()
	h.snapshot.Store(&snap)
}

// versionedConfig pairs rules with a counter so handles can tell when to reconfigure.
type versionedConfig struct {
	cfg     game.Config
	version uint64
}
