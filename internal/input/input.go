package input

import (
	"bufio"
	"io"
	"strconv"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// maxMouseSeq bounds an SGR mouse report; "ESC [ < 35;9999;9999M" is 17 bytes.
// Longer runs are dropped as malformed instead of buffered.
const maxMouseSeq = 32

// Mouse reporting modes: button-event tracking (1002) with SGR coordinates (1006).
const (
	mouseEnable  = "\033[?1002h\033[?1006h"
	mouseDisable = "\033[?1006l\033[?1002l"
)

// EnableMouse asks the terminal to report presses, drags and releases.
func EnableMouse(w io.Writer) {
	io.WriteString(w, mouseEnable)
}

// DisableMouse turns mouse reporting off again.
func DisableMouse(w io.Writer) {
	io.WriteString(w, mouseDisable)
}

// MouseAction is the kind of a mouse report.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseDrag
	MouseRelease
)

// MouseEvent is one left-button report. Col and Row are 1-based terminal cells.
type MouseEvent struct {
	Action MouseAction
	Col    int
	Row    int
}

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Space   bool
	Enter   bool
	Escape  bool
	Mouse   []MouseEvent // In arrival order
	Pressed []byte
}

// Confirm reports whether a start/continue key was pressed.
func (in Input) Confirm() bool {
	return in.Space || in.Enter
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit   time.Time
	space  time.Time
	enter  time.Time
	escape time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch      chan byte
	state   keyState
	pending []byte // Incomplete mouse sequence carried to the next read
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ResetKeyInput forgets recently pressed keys so a held Space does not
// immediately trigger the next screen.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for mouse reports and accumulates all pressed keys.
func ReadInput(s *Stream) Input {
	return readAt(s, time.Now())
}

func readAt(s *Stream, now time.Time) Input {
	buf := append([]byte(nil), s.pending...)
	s.pending = s.pending[:0]

	// Drain all available bytes
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	var mouse []MouseEvent
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 < len(buf) && buf[i+1] == '[' {
			if i+2 < len(buf) && buf[i+2] == '<' {
				ev, n, complete := parseSGRMouse(buf[i:])
				if !complete {
					s.pending = append(s.pending, buf[i:]...)
					buf = buf[:i]
					break
				}
				if ev != nil {
					mouse = append(mouse, *ev)
				}
				i += n - 1
				continue
			}
			// Other CSI sequences (arrows, focus) are skipped whole.
			if n := skipCSI(buf[i:]); n > 0 {
				i += n - 1
				continue
			}
		}

		applyByteToState(&s.state, b, now)
	}

	return Input{
		Quit:    now.Sub(s.state.quit) < keyHoldDuration,
		Space:   now.Sub(s.state.space) < keyHoldDuration,
		Enter:   now.Sub(s.state.enter) < keyHoldDuration,
		Escape:  now.Sub(s.state.escape) < keyHoldDuration,
		Mouse:   mouse,
		Pressed: buf,
	}
}

// parseSGRMouse parses "ESC [ < b ; col ; row (M|m)". It returns the event
// (nil for buttons other than left), the number of bytes consumed and
// whether the sequence was complete.
func parseSGRMouse(seq []byte) (*MouseEvent, int, bool) {
	var fields [3]int
	field := 0
	start := 3
	for i := 3; i < len(seq) && i < maxMouseSeq; i++ {
		c := seq[i]
		switch {
		case c >= '0' && c <= '9':
			continue
		case c == ';':
			if field >= 2 {
				return nil, i + 1, true
			}
			v, err := strconv.Atoi(string(seq[start:i]))
			if err != nil {
				return nil, i + 1, true
			}
			fields[field] = v
			field++
			start = i + 1
		case c == 'M' || c == 'm':
			if field != 2 {
				return nil, i + 1, true
			}
			v, err := strconv.Atoi(string(seq[start:i]))
			if err != nil {
				return nil, i + 1, true
			}
			fields[2] = v
			return mouseEvent(fields[0], fields[1], fields[2], c == 'm'), i + 1, true
		default:
			// Malformed; drop what we have.
			return nil, i + 1, true
		}
	}
	if len(seq) >= maxMouseSeq {
		return nil, maxMouseSeq, true
	}
	return nil, len(seq), false
}

func mouseEvent(button, col, row int, release bool) *MouseEvent {
	// Low two bits select the button; 32 flags motion, 64 the wheel.
	if button&64 != 0 || button&3 != 0 {
		return nil
	}
	ev := &MouseEvent{Col: col, Row: row}
	switch {
	case release:
		ev.Action = MouseRelease
	case button&32 != 0:
		ev.Action = MouseDrag
	default:
		ev.Action = MousePress
	}
	return ev
}

// skipCSI returns the length of a complete CSI sequence at the start of seq,
// or 0 when there is none.
func skipCSI(seq []byte) int {
	for i := 2; i < len(seq); i++ {
		if seq[i] >= 0x40 && seq[i] <= 0x7e {
			return i + 1
		}
	}
	return 0
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03':
		state.quit = now
	case ' ':
		state.space = now
	case '\n', '\r':
		state.enter = now
	case '\x1b':
		state.escape = now
	}
}
