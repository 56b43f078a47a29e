// Package config centralizes runtime parameters shared by server and clients.
package config

import "time"

// View resolution - the terminal client's logical field.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Web field - portrait layout matching a phone screen.
const (
	WebFieldWidth  = 360
	WebFieldHeight = 640
)

// Max render resolution (terminal cells). Larger terminals get a centered, bordered area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Reward revealed after clearing every level.
const (
	DefaultRewardCode = "ARCH20"
	DefaultRewardURL  = "https://slurm.io/architect"
)

// Messages
const (
	BreachNoticeSeconds = 1.2 // Transient "hazard escaped" notice
	LostNoticeSeconds   = 2.0
	ClearanceWarnRatio  = 0.15 // Warn when the outermost hazard is this close to the edge (fraction of radius)
)

// Results board
const (
	TopResultsCount   = 5
	MaxUsernameLength = 16
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
	MaxFrameDelta  = 100 * time.Millisecond // Clamp after stalls so hazards do not teleport
)

// Web transport
const (
	WebBroadcastRate = 30
	WebBroadcastTime = time.Second / WebBroadcastRate
	WebWriteTimeout  = 2 * time.Second
	WebReadLimit     = 4096
)
