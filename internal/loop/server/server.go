package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/containment/internal/clock"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/loop/config"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples clients from the concrete Server implementation, enabling
// testing and alternative transports (terminal, websocket).
type GameServer interface {
	RegisterClient(username string, field game.Field) (*ClientHandle, error)
	UnregisterClient(clientID int)
	SendCommand(clientID int, cmd Command)
	GetSnapshot(clientID int) *game.Snapshot
	TopResults() []Result
}

// Server hosts one independent game session per client and advances all of
// them on a single goroutine, so no session is ever touched concurrently.
type Server struct {
	cfg          atomic.Pointer[versionedConfig]
	clock        clock.Provider
	logger       *log.Logger
	sessionOpts  []game.Option
	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex

	results  []Result // Guarded by mu
	lastTick time.Time
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the system clock (tests use clock.Mock).
func WithClock(p clock.Provider) Option {
	return func(s *Server) {
		s.clock = p
	}
}

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithSessionOptions passes options to every session the server creates.
func WithSessionOptions(opts ...game.Option) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// NewServer creates a game server with the given rules.
func NewServer(cfg game.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		clock:        clock.Real{},
		logger:       log.Default(),
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg.Store(&versionedConfig{cfg: cfg.Clone(), version: 1})
	s.lastTick = s.clock.Now()
	return s, nil
}

// SetConfig swaps the rules. Running sessions pick them up on their next
// start or restart.
func (s *Server) SetConfig(cfg game.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	prev := s.cfg.Load()
	s.cfg.Store(&versionedConfig{cfg: cfg.Clone(), version: prev.version + 1})
	s.logger.Info("Tuning updated", "version", prev.version+1)
	return nil
}

// Config returns the current rules.
func (s *Server) Config() game.Config {
	return s.cfg.Load().cfg.Clone()
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.lastTick = s.clock.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()
		s.step(s.clock.Now())

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ServerTickTime {
			time.Sleep(config.ServerTickTime - elapsed)
		}
	}
}

// step runs one server tick: drag input, countdowns, movement and boundary
// checks, then snapshot publication.
func (s *Server) step(now time.Time) {
	dt := now.Sub(s.lastTick)
	if dt > config.MaxFrameDelta {
		dt = config.MaxFrameDelta
	}
	s.lastTick = now

	s.processRegistrations()
	s.collectInputs(now)
	s.updateSessions(now, dt)
	s.publishSnapshots()
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient creates a session laid out in field and returns its handle.
func (s *Server) RegisterClient(username string, field game.Field) (*ClientHandle, error) {
	vc := s.cfg.Load()
	session, err := game.NewSession(vc.cfg, field, s.sessionOpts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:         id,
		Username:   username,
		EventsCh:   make(chan ClientEvent, 16),
		session:    session,
		countdown:  clock.NewCountdown(time.Second),
		cfgVersion: vc.version,
	}
	handle.publish()

	s.registerCh <- handle
	return handle, nil
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// SendCommand queues a command from a client.
func (s *Server) SendCommand(clientID int, cmd Command) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Command: cmd}:
	default:
		// Input channel full, drop input
	}
}

// GetSnapshot returns the latest snapshot of a client's session.
func (s *Server) GetSnapshot(clientID int) *game.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if handle, ok := s.clients[clientID]; ok {
		return handle.Snapshot()
	}
	return nil
}

// TopResults returns a copy of the results board.
func (s *Server) TopResults() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Result(nil), s.results...)
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("Client registered", "client", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				handle.countdown.Stop()
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			s.mu.Unlock()
			s.logger.Debug("Client unregistered", "client", clientID)
		default:
			return
		}
	}
}

// collectInputs applies all pending commands in arrival order.
func (s *Server) collectInputs(now time.Time) {
	for {
		select {
		case ci := <-s.inputChan:
			s.mu.RLock()
			handle, ok := s.clients[ci.ClientID]
			s.mu.RUnlock()
			if ok {
				s.applyCommand(handle, ci.Command, now)
			}
		default:
			return
		}
	}
}

// applyCommand maps a client command onto session operations.
func (s *Server) applyCommand(h *ClientHandle, cmd Command, now time.Time) {
	sess := h.session
	switch cmd.Kind {
	case CmdStart:
		s.refreshConfig(h)
		s.dispatch(h, sess.Start(), now)
	case CmdRestart:
		s.refreshConfig(h)
		s.dispatch(h, sess.Restart(), now)
	case CmdGrab:
		sess.DragStart(cmd.HazardID)
	case CmdMove:
		sess.DragMove(cmd.HazardID, cmd.X, cmd.Y)
	case CmdRelease:
		sess.DragEnd(cmd.HazardID)
	case CmdPointerDown:
		if id, ok := sess.HazardAt(cmd.X, cmd.Y); ok {
			sess.DragStart(id)
		}
	case CmdPointerMove:
		if id, ok := sess.HeldID(); ok {
			sess.DragMove(id, cmd.X, cmd.Y)
		}
	case CmdPointerUp:
		if id, ok := sess.HeldID(); ok {
			sess.DragEnd(id)
		}
	case CmdResize:
		if err := sess.Resize(game.Field{Width: cmd.W, Height: cmd.H}); err != nil {
			s.logger.Debug("Resize ignored", "client", h.ID, "err", err)
		}
	}
}

// refreshConfig applies newer rules to an idle session.
func (s *Server) refreshConfig(h *ClientHandle) {
	vc := s.cfg.Load()
	if vc.version == h.cfgVersion {
		return
	}
	if err := h.session.Reconfigure(vc.cfg); err != nil {
		if !errors.Is(err, game.ErrSessionActive) {
			s.logger.Warn("Reconfigure failed", "client", h.ID, "err", err)
		}
		return
	}
	h.cfgVersion = vc.version
}

// updateSessions fires due countdown seconds, then advances each session by dt.
func (s *Server) updateSessions(now time.Time, dt time.Duration) {
	s.mu.RLock()
	handles := make([]*ClientHandle, 0, len(s.clients))
	for _, h := range s.clients {
		handles = append(handles, h)
	}
	s.mu.RUnlock()

	for _, h := range handles {
		gen := h.countdown.Generation()
		for due := h.countdown.Due(now); due > 0; due-- {
			if h.session.State().Phase != game.PhasePlaying {
				break
			}
			s.dispatch(h, h.session.SecondTick(), now)
			// A new round re-armed the countdown; seconds owed to the old
			// schedule are dropped.
			if h.countdown.Generation() != gen {
				break
			}
		}
		s.dispatch(h, h.session.FrameTick(dt.Seconds()), now)
	}
}

// dispatch reacts to session events: owns the countdown lifecycle, records
// finished runs and forwards events to the client.
func (s *Server) dispatch(h *ClientHandle, events []game.Event, now time.Time) {
	for _, ev := range events {
		switch ev.Type {
		case game.EventStarted:
			h.countdown.Restart(now)
			h.runStart = now
			s.logger.Info("Run started", "client", h.ID, "user", h.Username)
		case game.EventLevelAdvanced:
			// Each round gets whole seconds from its own start.
			h.countdown.Restart(now)
			s.logger.Debug("Level advanced", "client", h.ID, "level", ev.Level)
		case game.EventBreach:
			if ev.Lives > 0 {
				h.countdown.Restart(now)
			}
			s.logger.Debug("Breach", "client", h.ID, "hazard", ev.HazardID, "lives", ev.Lives)
		case game.EventWon, game.EventLost:
			h.countdown.Stop()
			s.recordResult(h, ev, now)
			s.logger.Info("Run finished", "client", h.ID, "event", ev.Type, "level", ev.Level, "lives", ev.Lives)
		}

		select {
		case h.EventsCh <- ClientEvent{Type: EventGame, Game: ev}:
		default:
		}
	}
}

func (s *Server) recordResult(h *ClientHandle, ev game.Event, now time.Time) {
	name := h.Username
	if len(name) > config.MaxUsernameLength {
		name = name[:config.MaxUsernameLength]
	}
	r := Result{
		Username: name,
		Won:      ev.Type == game.EventWon,
		Level:    ev.Level,
		Lives:    ev.Lives,
		Duration: now.Sub(h.runStart),
	}
	s.mu.Lock()
	s.results = insertResult(s.results, r, config.TopResultsCount)
	s.mu.Unlock()
}

// publishSnapshots stores a fresh snapshot for every client.
func (s *Server) publishSnapshots() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.clients {
		h.publish()
	}
}
