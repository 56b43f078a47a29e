package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/containment/internal/draw"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/loop/config"
	"github.com/tomz197/containment/internal/loop/server"
	"github.com/tomz197/containment/internal/object"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame(now time.Time) error {
	if snap := c.server.GetSnapshot(c.handle.ID); snap != nil {
		c.state.Snapshot = snap
	}
	snapshot := c.state.Snapshot
	if c.state.Screen != screenShutdown && snapshot != nil {
		c.state.Screen = screenFor(snapshot.State.Phase)
	}

	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist on screen.
	stateChanged := c.state.Screen != c.state.prevScreen
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.ClearAll()
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
		Now:    now,
	}

	if err := c.effects.Update(c.state.delta); err != nil {
		return err
	}
	if err := c.notices.Update(c.state.delta); err != nil {
		return err
	}

	showField := snapshot != nil && c.state.Screen != screenShutdown && !c.state.isInactive
	if showField {
		arena := snapshot.Arena
		c.canvas.DrawCircle(arena.CenterX, arena.CenterY, arena.Radius)
		c.sprites.Sync(snapshot.Hazards, arena.Radius*0.06, c.state.delta.Seconds())
		if err := c.sprites.Draw(ctx); err != nil {
			return err
		}
		if err := c.effects.Draw(ctx); err != nil {
			return err
		}
		if c.state.Screen == screenPlaying {
			if err := c.cursor.Draw(ctx); err != nil {
				return err
			}
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	// Draw UI overlay
	c.drawUI(snapshot)
	if showField {
		if err := c.notices.Draw(ctx); err != nil {
			return err
		}
	}

	return c.chunkWriter.Flush()
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI(snapshot *game.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.Screen == screenShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	if snapshot == nil {
		return
	}

	switch c.state.Screen {
	case screenPlaying:
		c.drawPlayingHUD(termWidth, termHeight, snapshot)
	case screenStart:
		c.drawStartScreen(centerX, centerY, snapshot)
	case screenWon:
		c.drawWonScreen(centerX, centerY, snapshot)
	case screenLost:
		c.drawLostScreen(centerX, centerY, snapshot)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.chunkWriter.WriteCentered(centerX, centerY-2, c.styles.warn.Render("INACTIVITY WARNING"))

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.chunkWriter.WriteCentered(centerX, centerY, msg)
	c.chunkWriter.WriteCentered(centerX, centerY+2, c.styles.hint.Render("Press any key to continue"))
}

// titleArt is the start screen banner (figlet "small" font).
var titleArt = []string{
	`  ___ ___  _  _ _____ _   ___ _  _ __  __ ___ _  _ _____ `,
	` / __/ _ \| \| |_   _/_\ |_ _| \| |  \/  | __| \| |_   _|`,
	`| (_| (_) | .' | | |/ _ \ | || .' | |\/| | _|| .' | | |  `,
	` \___\___/|_|\_| |_/_/ \_\___|_|\_|_|  |_|___|_|\_| |_|  `,
}

// drawStartScreen draws the title screen over the idle arena.
func (c *Client) drawStartScreen(centerX, centerY int, snapshot *game.Snapshot) {
	row := centerY - 10
	if row < 1 {
		row = 1
	}
	c.chunkWriter.WriteBlock(centerX, row, c.styles.title.Render(strings.Join(titleArt, "\n")))
	row += len(titleArt) + 1

	subtitle := fmt.Sprintf("Keep every hazard inside the ring for %d levels.", snapshot.Levels)
	c.chunkWriter.WriteCentered(centerX, row, subtitle)
	row += 2

	controls := strings.Join([]string{
		"Mouse drag  . . . Pull a hazard back",
		"SPACE / ENTER . . . . . . . . . Start",
		"Q . . . . . . . . . . . . . . .  Quit",
	}, "\n")
	c.chunkWriter.WriteBlock(centerX, row, c.styles.panel.Render(controls))
	row += 6

	if board := c.resultsBoard(); board != "" {
		row += c.chunkWriter.WriteBlock(centerX, row, board) + 1
	}

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		c.chunkWriter.WriteCentered(centerX, row, c.styles.prompt.Render(">>  Press SPACE to Start  <<"))
	}
}

// resultsBoard renders the best finished runs, or "" when there are none.
func (c *Client) resultsBoard() string {
	results := c.server.TopResults()
	if len(results) == 0 {
		return ""
	}

	lines := []string{c.styles.header.Render("Best runs")}
	for i, r := range results {
		outcome := fmt.Sprintf("level %d", r.Level)
		if r.Won {
			outcome = "cleared"
		}
		lines = append(lines, fmt.Sprintf("%d. %-*s %-8s %s", i+1, config.MaxUsernameLength, displayName(r), outcome, r.Duration.Round(time.Second)))
	}
	return c.styles.panel.Render(strings.Join(lines, "\n"))
}

func displayName(r server.Result) string {
	if r.Username == "" {
		return "anonymous"
	}
	return r.Username
}

const edgeWarning = "EDGE!"

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snapshot *game.Snapshot) {
	st := snapshot.State

	levelText := fmt.Sprintf("Level %d/%d", st.Level, snapshot.Levels)
	c.chunkWriter.WriteAt(2, 1, c.styles.header.Render(fmt.Sprintf("%-12s", levelText)))

	timeText := fmt.Sprintf("Time %3ds", st.TimeRemaining)
	c.chunkWriter.WriteCentered(termWidth/2, 1, timeText)

	livesText := fmt.Sprintf("Lives %-2d %s", st.LivesRemaining, strings.Repeat("♥", st.LivesRemaining))
	c.chunkWriter.WriteAt(termWidth-lipgloss.Width(livesText)-1, 1, c.styles.lives.Render(livesText))

	if st.Phase == game.PhaseTransitioning {
		c.chunkWriter.WriteCentered(termWidth/2, 3, c.styles.prompt.Render("Get ready"))
	}

	// Margin meter (bottom left): how far the outermost hazard is from the edge.
	r := snapshot.Arena.Radius
	if r > 0 {
		ratio := snapshot.Clearance / r
		n := c.chunkWriter.WriteAt(2, termHeight, "Margin "+draw.Meter(12, ratio))
		if ratio < config.ClearanceWarnRatio {
			c.chunkWriter.WriteAt(2+n+1, termHeight, c.styles.warn.Render(edgeWarning))
		} else {
			c.chunkWriter.Erase(2+n+1, termHeight, len(edgeWarning))
		}
	}
}

// drawWonScreen reveals the reward after clearing every level.
func (c *Client) drawWonScreen(centerX, centerY int, snapshot *game.Snapshot) {
	link := draw.Hyperlink(c.rewardURL, c.rewardURL)
	body := strings.Join([]string{
		c.styles.title.Render("CONTAINED"),
		"",
		fmt.Sprintf("All %d levels cleared with %d %s to spare.",
			snapshot.Levels, snapshot.State.LivesRemaining, plural(snapshot.State.LivesRemaining, "life", "lives")),
		"",
		"Your reward code: " + c.styles.reward.Render(c.rewardCode),
		link,
	}, "\n")
	panel := c.styles.panel.Render(body)
	c.chunkWriter.WriteBlock(centerX, centerY-lipgloss.Height(panel)/2-1, panel)

	if time.Now().UnixMilli()/600%2 == 0 {
		c.chunkWriter.WriteCentered(centerX, centerY+lipgloss.Height(panel)/2+1, c.styles.prompt.Render(">>  Press SPACE to Play Again  <<"))
	}
}

// drawLostScreen shows how far the run got and the restart prompt.
func (c *Client) drawLostScreen(centerX, centerY int, snapshot *game.Snapshot) {
	body := strings.Join([]string{
		c.styles.warn.Render("BREACH"),
		"",
		fmt.Sprintf("The ring failed on level %d of %d.", snapshot.State.Level, snapshot.Levels),
	}, "\n")
	panel := c.styles.panel.Render(body)
	c.chunkWriter.WriteBlock(centerX, centerY-lipgloss.Height(panel)/2-1, panel)

	if time.Now().UnixMilli()/600%2 == 0 {
		c.chunkWriter.WriteCentered(centerX, centerY+lipgloss.Height(panel)/2+1, c.styles.prompt.Render(">>  Press SPACE to Restart  <<"))
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.chunkWriter.WriteCentered(centerX, centerY-3, c.styles.warn.Render("SERVER SHUTTING DOWN"))
	c.chunkWriter.WriteCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.chunkWriter.WriteCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.chunkWriter.WriteCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.chunkWriter.WriteCentered(centerX, centerY+4, c.styles.hint.Render("Press Q to disconnect now"))
}
