package client

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/tomz197/containment/internal/draw"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/input"
	"github.com/tomz197/containment/internal/loop/config"
	"github.com/tomz197/containment/internal/loop/server"
	"github.com/tomz197/containment/internal/object"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	styles       styles
	logger       *log.Logger
	rewardCode   string
	rewardURL    string

	effects *object.Effects // Canvas effects: bursts, rings
	notices *object.Effects // Text drawn over the rendered canvas
	sprites *object.HazardSprites
	cursor  object.Cursor
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Renderer     *lipgloss.Renderer // Defaults to a renderer on the client writer
	Logger       *log.Logger
	RewardCode   string
	RewardURL    string
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) (*Client, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rewardCode := opts.RewardCode
	if rewardCode == "" {
		rewardCode = config.DefaultRewardCode
	}
	rewardURL := opts.RewardURL
	if rewardURL == "" {
		rewardURL = config.DefaultRewardURL
	}

	handle, err := gs.RegisterClient(opts.Username, game.Field{
		Width:  config.ViewWidth,
		Height: config.ViewHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("register client: %w", err)
	}

	state := NewClientState()
	state.termSizeFunc = termSizeFunc
	state.Snapshot = handle.Snapshot()

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)
	chunkWriter.SetArea(renderWidth, renderHeight)
	chunkWriter.OnOverlay(canvas.MarkTextDirty)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        state,
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		styles:       newStyles(renderer),
		logger:       logger,
		rewardCode:   rewardCode,
		rewardURL:    rewardURL,
		effects:      object.NewEffects(nil),
		notices:      object.NewEffects(nil),
		sprites:      object.NewHazardSprites(),
		cursor:       object.Cursor{Size: 3},
	}, nil
}

// ID returns the server-assigned client id.
func (c *Client) ID() int {
	return c.handle.ID
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.EnterScreen(c.writer)
	input.EnableMouse(c.writer)
	defer func() {
		input.DisableMouse(c.writer)
		draw.LeaveScreen(c.writer)
	}()

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Check for server events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		if c.state.Screen == screenShutdown {
			c.updateShutdownState()
		}

		// Draw frame
		if err := c.drawFrame(frameStart); err != nil {
			c.server.UnregisterClient(c.handle.ID)
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	// Unregister from server
	c.server.UnregisterClient(c.handle.ID)
	return nil
}

// processInput reads input and sends commands to the server.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	if len(c.state.Input.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.logger.Info("Disconnecting inactive client", "client", c.handle.ID)
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Quit {
		c.state.Running = false
		return
	}

	switch c.state.Screen {
	case screenStart:
		if c.state.Input.Confirm() {
			c.sendStart(server.CmdStart)
		}
	case screenWon, screenLost:
		if c.state.Input.Confirm() {
			c.sendStart(server.CmdRestart)
		}
	case screenPlaying:
		c.processPointer(c.state.Input.Mouse)
	}
}

// sendStart asks the server to begin a run.
func (c *Client) sendStart(kind server.CommandKind) {
	input.ResetKeyInput(c.inputStream)
	c.effects.Reset()
	c.notices.Reset()
	c.server.SendCommand(c.handle.ID, server.Command{Kind: kind})
}

// processPointer turns mouse reports into pointer commands in field coordinates.
func (c *Client) processPointer(events []input.MouseEvent) {
	for _, ev := range events {
		x, y, ok := c.canvas.TerminalToLogical(ev.Col, ev.Row)
		if !ok {
			// Outside the canvas only a release still counts.
			if ev.Action != input.MouseRelease || !c.state.pointerDown {
				continue
			}
		}

		var kind server.CommandKind
		switch ev.Action {
		case input.MousePress:
			kind = server.CmdPointerDown
			c.state.pointerDown = true
		case input.MouseDrag:
			if !c.state.pointerDown {
				continue
			}
			kind = server.CmdPointerMove
		case input.MouseRelease:
			if !c.state.pointerDown {
				continue
			}
			kind = server.CmdPointerUp
			c.state.pointerDown = false
		}
		if ok {
			c.cursor.MoveTo(x, y)
		}
		c.server.SendCommand(c.handle.ID, server.Command{Kind: kind, X: x, Y: y})
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventGame:
				c.onGameEvent(event.Game)
			case server.EventServerShutdown:
				c.state.Screen = screenShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// onGameEvent spawns the effects and notices for a session event.
func (c *Client) onGameEvent(ev game.Event) {
	snap := c.state.Snapshot
	if snap == nil {
		return
	}
	arena := snap.Arena
	centerCol := c.canvas.TerminalWidth() / 2
	noticeRow := c.canvas.TerminalHeight() - 2

	switch ev.Type {
	case game.EventStarted:
		c.state.pointerDown = false
	case game.EventLevelAdvanced:
		c.effects.Spawn(object.NewRing(arena.CenterX, arena.CenterY, arena.Radius*0.2, arena.Radius, 0.6))
		c.notices.Spawn(object.NewNotice(centerCol, noticeRow, fmt.Sprintf("Level %d", ev.Level), config.BreachNoticeSeconds))
	case game.EventBreach:
		c.state.pointerDown = false
		dx, dy := ev.X-arena.CenterX, ev.Y-arena.CenterY
		if d := math.Hypot(dx, dy); d > 0 {
			dx, dy = dx/d, dy/d
		}
		object.SpawnBurst(ev.X, ev.Y, dx, dy, 16, arena.Radius*0.5, 0.6, c.effects)
		c.notices.Spawn(c.breachMarker(ev.X, ev.Y))
		if ev.Lives > 0 {
			msg := fmt.Sprintf("Hazard escaped! %d %s left", ev.Lives, plural(ev.Lives, "life", "lives"))
			c.notices.Spawn(object.NewNotice(centerCol, noticeRow, msg, config.BreachNoticeSeconds))
		}
	case game.EventLost:
		c.notices.Spawn(object.NewNotice(centerCol, noticeRow, "No lives left", config.LostNoticeSeconds))
	}
}

// breachMarker flags the cell where a hazard escaped.
func (c *Client) breachMarker(x, y float64) *object.Notice {
	col, row := c.canvas.LogicalToTerminal(x, y)
	col = max(1, min(col, c.canvas.TerminalWidth()))
	row = max(2, min(row, c.canvas.TerminalHeight()-1))
	return &object.Notice{Text: object.Text{X: col, Y: row, Value: "✕"}, Lifetime: config.BreachNoticeSeconds}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetArea(renderWidth, renderHeight)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
