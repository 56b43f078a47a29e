package input

import (
	"bufio"
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"
)

func newTestStream(data string) *Stream {
	s := &Stream{ch: make(chan byte, 256)}
	feed(s, data)
	return s
}

func feed(s *Stream, data string) {
	for i := 0; i < len(data); i++ {
		s.ch <- data[i]
	}
}

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestReadKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Input
	}{
		{"space", " ", Input{Space: true}},
		{"enter", "\r", Input{Enter: true}},
		{"quit", "q", Input{Quit: true}},
		{"ctrl-c", "\x03", Input{Quit: true}},
		{"escape", "\x1b", Input{Escape: true}},
		{"arrow is not escape", "\x1b[A", Input{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := readAt(newTestStream(tt.data), now)
			if in.Quit != tt.want.Quit || in.Space != tt.want.Space || in.Enter != tt.want.Enter || in.Escape != tt.want.Escape {
				t.Errorf("readAt(%q) = %+v, want %+v", tt.data, in, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	if !(Input{Space: true}).Confirm() || !(Input{Enter: true}).Confirm() {
		t.Error("Space or Enter does not confirm")
	}
	if (Input{Escape: true}).Confirm() {
		t.Error("Escape confirms")
	}
}

func TestKeyHoldExpires(t *testing.T) {
	s := newTestStream(" ")
	if !readAt(s, now).Space {
		t.Fatal("space not seen")
	}
	if !readAt(s, now.Add(10*time.Millisecond)).Space {
		t.Error("space released within the hold window")
	}
	if readAt(s, now.Add(keyHoldDuration)).Space {
		t.Error("space still held after the hold window")
	}

	s = newTestStream(" ")
	readAt(s, now)
	ResetKeyInput(s)
	if readAt(s, now).Space {
		t.Error("space survived ResetKeyInput")
	}
}

func TestReadMouseSequences(t *testing.T) {
	s := newTestStream("\x1b[<0;10;5M\x1b[<32;12;6M\x1b[<0;14;7m")
	in := readAt(s, now)
	want := []MouseEvent{
		{Action: MousePress, Col: 10, Row: 5},
		{Action: MouseDrag, Col: 12, Row: 6},
		{Action: MouseRelease, Col: 14, Row: 7},
	}
	if !slices.Equal(in.Mouse, want) {
		t.Errorf("Mouse = %+v, want %+v", in.Mouse, want)
	}
	if in.Escape || in.Quit {
		t.Errorf("mouse bytes leaked into key state: %+v", in)
	}
}

func TestIgnoresOtherButtons(t *testing.T) {
	// Right button, middle drag, wheel up.
	s := newTestStream("\x1b[<2;1;1M\x1b[<33;1;1M\x1b[<64;1;1M")
	if in := readAt(s, now); len(in.Mouse) != 0 {
		t.Errorf("Mouse = %+v, want none", in.Mouse)
	}
}

func TestSplitMouseSequence(t *testing.T) {
	s := newTestStream(" \x1b[<0;4")
	in := readAt(s, now)
	if len(in.Mouse) != 0 {
		t.Fatalf("partial sequence produced %+v", in.Mouse)
	}
	if !in.Space || in.Escape {
		t.Errorf("keys before the partial sequence = %+v", in)
	}

	feed(s, "0;20Mq")
	in = readAt(s, now.Add(time.Millisecond))
	want := []MouseEvent{{Action: MousePress, Col: 40, Row: 20}}
	if !slices.Equal(in.Mouse, want) {
		t.Errorf("Mouse = %+v, want %+v", in.Mouse, want)
	}
	if !in.Quit {
		t.Error("key after the sequence lost")
	}
}

func TestMalformedMouseSequence(t *testing.T) {
	s := newTestStream("\x1b[<0;x;1M ")
	in := readAt(s, now)
	if len(in.Mouse) != 0 {
		t.Errorf("Mouse = %+v, want none", in.Mouse)
	}
}

func TestUnterminatedMouseSequenceIsBounded(t *testing.T) {
	s := newTestStream("\x1b[<0;1")
	readAt(s, now)
	if len(s.pending) == 0 {
		t.Fatal("short partial sequence not carried over")
	}

	for i := 0; i < 10; i++ {
		feed(s, strings.Repeat("7", 50))
		in := readAt(s, now)
		if len(in.Mouse) != 0 {
			t.Fatalf("read %d: Mouse = %+v, want none", i, in.Mouse)
		}
		if len(s.pending) > maxMouseSeq {
			t.Fatalf("read %d: pending grew to %d bytes", i, len(s.pending))
		}
	}

	feed(s, "\x1b[<0;3;4M")
	in := readAt(s, now)
	want := []MouseEvent{{Action: MousePress, Col: 3, Row: 4}}
	if !slices.Equal(in.Mouse, want) {
		t.Errorf("Mouse after recovery = %+v, want %+v", in.Mouse, want)
	}
}

func TestStartStream(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("q")))
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if in := ReadInput(s); in.Quit {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("quit key never arrived")
}

func TestEnableDisableMouse(t *testing.T) {
	var buf bytes.Buffer
	EnableMouse(&buf)
	DisableMouse(&buf)
	if got := buf.String(); got != mouseEnable+mouseDisable {
		t.Errorf("wrote %q", got)
	}
}
