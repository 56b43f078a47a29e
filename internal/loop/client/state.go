package client

import (
	"time"

	"github.com/tomz197/containment/internal/draw"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/input"
)

// screenID identifies what the client is showing. It follows the session
// phase except while the server shuts down.
type screenID int

const (
	screenStart    screenID = iota // Intro and results board
	screenPlaying                  // Playing or transitioning
	screenWon                      // Reward revealed
	screenLost                     // Restart prompt
	screenShutdown                 // Server is shutting down
)

func screenFor(p game.Phase) screenID {
	switch p {
	case game.PhasePlaying, game.PhaseTransitioning:
		return screenPlaying
	case game.PhaseWon:
		return screenWon
	case game.PhaseLost:
		return screenLost
	default:
		return screenStart
	}
}

// ClientState holds per-connection presentation state.
// Each client has their own instance, managed by the Client.
type ClientState struct {
	Input         input.Input
	Snapshot      *game.Snapshot    // Latest snapshot from the server
	Screen        screenID          // What is shown this frame
	prevScreen    screenID          // Screen drawn last frame
	pointerDown   bool              // Left button held
	termSizeFunc  draw.TermSizeFunc // Function to get terminal size
	Running       bool              // Client loop running
	delta         time.Duration     // Frame delta time (client-side)
	shutdownTimer float64           // Countdown before auto-disconnect on shutdown
	isInactive    bool              // Whether the client is in inactive warning state
	wasInactive   bool              // Inactivity state drawn last frame
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:     screenStart,
		prevScreen: screenStart,
		Running:    true,
	}
}
