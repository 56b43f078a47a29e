package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
)

// ChunkWriter collects one frame of terminal output: the canvas diff plus
// text overlays (HUD, panels, prompts). Flush sends it in network-sized
// chunks. Overlay text is placed in 1-based canvas cells; the render offset
// is applied on write.
type ChunkWriter struct {
	buf    strings.Builder
	out    *bufio.Writer
	num    [20]byte
	offCol int
	offRow int

	// Overlay area in cells. Zero height leaves rows unbounded.
	width  int
	height int

	overlay func(col, row, n int)
}

var _ io.Writer = (*ChunkWriter)(nil)

// NewChunkWriter creates a ChunkWriter that flushes to w.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the render offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// SetArea bounds overlay text to a width x height cell area.
func (cw *ChunkWriter) SetArea(width, height int) {
	cw.width = width
	cw.height = height
}

// OnOverlay registers fn to receive every cell run covered by overlay text,
// typically Canvas.MarkTextDirty.
func (cw *ChunkWriter) OnOverlay(fn func(col, row, n int)) {
	cw.overlay = fn
}

func (cw *ChunkWriter) moveTo(col, row int) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.num[:0], int64(row+cw.offRow), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.num[:0], int64(col+cw.offCol), 10))
	cw.buf.WriteByte('H')
}

// WriteAt places overlay text at (col, row) and returns its width in cells.
// Rows outside the area are dropped; columns left of it clamp to 1.
func (cw *ChunkWriter) WriteAt(col, row int, s string) int {
	if row < 1 || (cw.height > 0 && row > cw.height) {
		return 0
	}
	col = max(col, 1)
	n := ansi.StringWidth(s)
	cw.moveTo(col, row)
	cw.buf.WriteString(s)
	if cw.overlay != nil {
		cw.overlay(col, row, n)
	}
	return n
}

// WriteCentered places a single line centered on column centerX.
func (cw *ChunkWriter) WriteCentered(centerX, row int, s string) int {
	return cw.WriteAt(centerX-ansi.StringWidth(s)/2, row, s)
}

// WriteBlock places a multi-line block (a styled panel) centered on centerX
// with its first line at row. It returns the number of lines.
func (cw *ChunkWriter) WriteBlock(centerX, row int, block string) int {
	lines := strings.Split(block, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, ansi.StringWidth(line))
	}
	col := centerX - width/2
	for i, line := range lines {
		cw.WriteAt(col, row+i, line)
	}
	return len(lines)
}

// Erase blanks n cells starting at (col, row).
func (cw *ChunkWriter) Erase(col, row, n int) {
	if n > 0 {
		cw.WriteAt(col, row, strings.Repeat(" ", n))
	}
}

// ClearAll queues a full terminal clear ahead of the rest of the frame.
func (cw *ChunkWriter) ClearAll() {
	cw.buf.WriteString(seqClear)
}

// Write appends raw output; Canvas.Render writes through it.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

// WriteString appends raw output.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

// Flush sends the frame in chunks of maxChunkSize and resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.out.WriteString(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return cw.out.Flush()
}

// TermSizeFunc reports the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

// EnterScreen prepares a terminal for play: cursor hidden, screen cleared.
func EnterScreen(w io.Writer) {
	io.WriteString(w, seqHideCursor+seqClear)
}

// LeaveScreen clears what the game drew and gives the cursor back.
func LeaveScreen(w io.Writer) {
	io.WriteString(w, seqClear+seqShowCursor)
}

// Hyperlink wraps label in an OSC 8 sequence pointing at url.
func Hyperlink(url, label string) string {
	return "\033]8;;" + url + "\033\\" + label + "\033]8;;\033\\"
}
