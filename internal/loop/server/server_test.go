package server

import (
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/containment/internal/clock"
	"github.com/tomz197/containment/internal/game"
)

var (
	epoch     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testField = game.Field{Width: 120, Height: 80}
)

type testServer struct {
	*Server
	clock *clock.Mock
}

func newTestServer(t *testing.T, cfg game.Config) *testServer {
	t.Helper()
	mock := clock.NewMock(epoch)
	s, err := NewServer(cfg,
		WithClock(mock),
		WithLogger(log.New(io.Discard)),
		WithSessionOptions(game.WithSeed(7)),
	)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testServer{Server: s, clock: mock}
}

// advance moves the clock and runs one server step.
func (ts *testServer) advance(d time.Duration) {
	ts.clock.Advance(d)
	ts.step(ts.clock.Now())
}

func (ts *testServer) register(t *testing.T, name string) *ClientHandle {
	t.Helper()
	h, err := ts.RegisterClient(name, testField)
	if err != nil {
		t.Fatalf("RegisterClient: %v", err)
	}
	ts.advance(0)
	return h
}

func drainEvents(h *ClientHandle) []game.EventType {
	var out []game.EventType
	for {
		select {
		case ev, ok := <-h.EventsCh:
			if !ok {
				return out
			}
			if ev.Type == EventGame {
				out = append(out, ev.Game.Type)
			}
		default:
			return out
		}
	}
}

func shortLevels() game.Config {
	cfg := game.DefaultConfig()
	cfg.LevelTimeSec = 2
	return cfg
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.LivesTotal = 0
	if _, err := NewServer(cfg); err == nil {
		t.Fatal("NewServer accepted an invalid config")
	}
}

func TestRegisterPublishesSnapshot(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())
	h, err := ts.RegisterClient("alice", testField)
	if err != nil {
		t.Fatalf("RegisterClient: %v", err)
	}
	if snap := h.Snapshot(); snap == nil || snap.State.Phase != game.PhaseNotStarted {
		t.Fatalf("initial snapshot = %+v", snap)
	}
	if ts.GetSnapshot(h.ID) != nil {
		t.Error("GetSnapshot found the client before the server processed it")
	}

	ts.advance(0)
	if snap := ts.GetSnapshot(h.ID); snap == nil || len(snap.Hazards) != 5 {
		t.Fatalf("GetSnapshot = %+v", snap)
	}

	if _, err := ts.RegisterClient("bob", game.Field{}); err == nil {
		t.Error("RegisterClient accepted an empty field")
	}
}

func TestCountdownDrivesRunToWin(t *testing.T) {
	ts := newTestServer(t, shortLevels())
	h := ts.register(t, "averyveryverylongusername")

	ts.SendCommand(h.ID, Command{Kind: CmdStart})
	ts.advance(10 * time.Millisecond)
	if got := drainEvents(h); !slices.Equal(got, []game.EventType{game.EventStarted}) {
		t.Fatalf("events after start = %v", got)
	}
	if !h.countdown.Active() {
		t.Fatal("countdown not armed on start")
	}

	var events []game.EventType
	for i := 0; i < 10; i++ {
		ts.advance(time.Second)
		events = append(events, drainEvents(h)...)
	}
	want := []game.EventType{
		game.EventLevelAdvanced, game.EventLevelAdvanced, game.EventLevelAdvanced,
		game.EventLevelAdvanced, game.EventWon,
	}
	if !slices.Equal(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	if h.countdown.Active() {
		t.Error("countdown still armed after the win")
	}

	snap := ts.GetSnapshot(h.ID)
	if snap.State.Phase != game.PhaseWon || snap.State.TimeRemaining != 0 {
		t.Errorf("final state = %+v", snap.State)
	}

	results := ts.TopResults()
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	r := results[0]
	if !r.Won || r.Level != 5 || r.Lives != 5 || r.Duration != 10*time.Second {
		t.Errorf("result = %+v", r)
	}
	if r.Username != "averyveryverylon" {
		t.Errorf("username = %q, want it truncated", r.Username)
	}

	// Further time does nothing once the run is over.
	ts.advance(5 * time.Second)
	if got := drainEvents(h); len(got) != 0 {
		t.Errorf("events after win = %v", got)
	}
}

func TestStallDoesNotCarrySecondsIntoNextLevel(t *testing.T) {
	ts := newTestServer(t, shortLevels())
	h := ts.register(t, "carol")

	ts.SendCommand(h.ID, Command{Kind: CmdStart})
	ts.advance(0)
	ts.advance(time.Second)
	drainEvents(h)

	// One late step covering three seconds: the first finishes level 1,
	// the rest belonged to the replaced countdown.
	ts.advance(3 * time.Second)
	if got := drainEvents(h); !slices.Equal(got, []game.EventType{game.EventLevelAdvanced}) {
		t.Fatalf("events after stall = %v, want one level advance", got)
	}
	st := ts.GetSnapshot(h.ID).State
	if st.Level != 2 || st.TimeRemaining != 2 || st.Phase != game.PhasePlaying {
		t.Fatalf("state after stall = %+v, want level 2 with a full timer", st)
	}

	ts.advance(time.Second)
	if st := ts.GetSnapshot(h.ID).State; st.Level != 2 || st.TimeRemaining != 1 {
		t.Errorf("state one second into level 2 = %+v", st)
	}
	ts.advance(time.Second)
	if got := drainEvents(h); !slices.Equal(got, []game.EventType{game.EventLevelAdvanced}) {
		t.Errorf("events at the end of level 2 = %v", got)
	}
}

func TestPointerCommandsDragNearestHazard(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())
	h := ts.register(t, "")
	ts.SendCommand(h.ID, Command{Kind: CmdStart})
	ts.advance(10 * time.Millisecond)

	target := ts.GetSnapshot(h.ID).Hazards[3]
	ts.SendCommand(h.ID, Command{Kind: CmdPointerDown, X: target.X, Y: target.Y})
	ts.advance(10 * time.Millisecond)
	snap := ts.GetSnapshot(h.ID)
	if snap.HeldID != target.ID {
		t.Fatalf("HeldID = %d, want %d", snap.HeldID, target.ID)
	}

	arena := snap.Arena
	ts.SendCommand(h.ID, Command{Kind: CmdPointerMove, X: arena.CenterX, Y: arena.CenterY})
	ts.advance(10 * time.Millisecond)
	held := ts.GetSnapshot(h.ID).Hazards[target.ID]
	if held.X != arena.CenterX || held.Y != arena.CenterY || !held.Held {
		t.Errorf("held hazard = %+v, want at the center", held)
	}

	ts.SendCommand(h.ID, Command{Kind: CmdPointerUp, X: arena.CenterX, Y: arena.CenterY})
	ts.advance(10 * time.Millisecond)
	if got := ts.GetSnapshot(h.ID).HeldID; got != -1 {
		t.Errorf("HeldID after release = %d", got)
	}

	// A press on empty space grabs nothing.
	ts.SendCommand(h.ID, Command{Kind: CmdPointerDown, X: 0, Y: 0})
	ts.advance(10 * time.Millisecond)
	if got := ts.GetSnapshot(h.ID).HeldID; got != -1 {
		t.Errorf("HeldID after empty press = %d", got)
	}
}

func TestBreachRestartsCountdown(t *testing.T) {
	ts := newTestServer(t, shortLevels())
	h := ts.register(t, "carol")
	ts.SendCommand(h.ID, Command{Kind: CmdStart})
	ts.advance(10 * time.Millisecond)
	drainEvents(h)

	ts.advance(time.Second)
	gen := h.countdown.Generation()
	if got := ts.GetSnapshot(h.ID).State.TimeRemaining; got != 1 {
		t.Fatalf("TimeRemaining = %d, want 1", got)
	}

	arena := ts.GetSnapshot(h.ID).Arena
	ts.SendCommand(h.ID, Command{Kind: CmdGrab, HazardID: 0})
	ts.SendCommand(h.ID, Command{Kind: CmdMove, HazardID: 0, X: arena.CenterX + arena.Radius*1.5, Y: arena.CenterY})
	ts.SendCommand(h.ID, Command{Kind: CmdRelease, HazardID: 0})
	ts.advance(10 * time.Millisecond)

	if got := drainEvents(h); !slices.Equal(got, []game.EventType{game.EventBreach}) {
		t.Fatalf("events = %v, want [breach]", got)
	}
	if h.countdown.Generation() != gen+1 {
		t.Error("countdown not restarted for the retry")
	}
	st := ts.GetSnapshot(h.ID).State
	if st.LivesRemaining != 4 || st.TimeRemaining != 2 || st.Level != 1 {
		t.Errorf("state = %+v", st)
	}

	// The retry gets a full second before its first tick.
	ts.advance(990 * time.Millisecond)
	if got := ts.GetSnapshot(h.ID).State.TimeRemaining; got != 2 {
		t.Errorf("TimeRemaining = %d before the retry's first second", got)
	}
}

func TestSetConfigAppliesOnNextStart(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())
	h := ts.register(t, "dave")

	cfg := game.DefaultConfig()
	cfg.HazardCount = 2
	if err := ts.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if got := len(ts.GetSnapshot(h.ID).Hazards); got != 5 {
		t.Errorf("hazards before start = %d, want 5", got)
	}

	ts.SendCommand(h.ID, Command{Kind: CmdStart})
	ts.advance(10 * time.Millisecond)
	if got := len(ts.GetSnapshot(h.ID).Hazards); got != 2 {
		t.Errorf("hazards after start = %d, want 2", got)
	}
	if got := ts.Config().HazardCount; got != 2 {
		t.Errorf("Config().HazardCount = %d", got)
	}

	bad := game.DefaultConfig()
	bad.Kinds = nil
	if err := ts.SetConfig(bad); err == nil {
		t.Error("SetConfig accepted an invalid config")
	}
}

func TestResizeCommand(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())
	h := ts.register(t, "")
	ts.SendCommand(h.ID, Command{Kind: CmdResize, W: 240, H: 160})
	ts.SendCommand(h.ID, Command{Kind: CmdResize, W: -1, H: 160})
	ts.advance(10 * time.Millisecond)
	snap := ts.GetSnapshot(h.ID)
	if snap.Field.Width != 240 || snap.Arena.Radius != 64 {
		t.Errorf("field = %+v, arena = %+v", snap.Field, snap.Arena)
	}
}

func TestUnregisterClosesEvents(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())
	h := ts.register(t, "")
	ts.UnregisterClient(h.ID)
	ts.advance(10 * time.Millisecond)

	if ts.GetSnapshot(h.ID) != nil {
		t.Error("snapshot still available")
	}
	select {
	case _, ok := <-h.EventsCh:
		if ok {
			t.Error("unexpected event")
		}
	default:
		t.Error("EventsCh not closed")
	}

	// Commands for departed clients are dropped.
	ts.SendCommand(h.ID, Command{Kind: CmdStart})
	ts.advance(10 * time.Millisecond)
}

func TestShutdownNotifiesClients(t *testing.T) {
	ts := newTestServer(t, game.DefaultConfig())
	h := ts.register(t, "")
	ts.Shutdown(20 * time.Millisecond)

	select {
	case ev := <-h.EventsCh:
		if ev.Type != EventServerShutdown {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("no shutdown event")
	}
}

func TestInsertResultOrdering(t *testing.T) {
	var board []Result
	board = insertResult(board, Result{Username: "lost-3", Level: 3, Lives: 0}, 3)
	board = insertResult(board, Result{Username: "won-slow", Won: true, Level: 5, Lives: 2, Duration: 200 * time.Second}, 3)
	board = insertResult(board, Result{Username: "won-fast", Won: true, Level: 5, Lives: 2, Duration: 150 * time.Second}, 3)
	board = insertResult(board, Result{Username: "lost-1", Level: 1, Lives: 0}, 3)

	var names []string
	for _, r := range board {
		names = append(names, r.Username)
	}
	want := []string{"won-fast", "won-slow", "lost-3"}
	if !slices.Equal(names, want) {
		t.Errorf("board = %v, want %v", names, want)
	}
}
