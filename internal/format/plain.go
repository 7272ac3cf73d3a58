package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"

	"pkt.systems/charcat/schema"
)

// Sink receives rendered output lines.
type Sink interface {
	Render(lines ...string)
}

// Header marks a line as a section header.
func Header(text string) string {
	return schema.HeaderMarker + text
}

// Summary renders the one-line list form of a record.
func Summary(c schema.Character) string {
	indicator := schema.RemoteImageIndicator
	if c.HasLocalImage() {
		indicator = schema.LocalImageIndicator
	}
	return fmt.Sprintf("%s %d. %s (%s) - HP: %d, ATK: %d", indicator, c.ID, c.Name, c.Type, c.Health, c.Attack)
}

// QRLines renders text as a half-block QR code, one string per terminal row.
func QRLines(text string) []string {
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(text, qrterminal.L, &buf)
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

// ConsoleRenderer writes lines to a terminal or pipe.
type ConsoleRenderer struct {
	w      io.Writer
	color  bool
	header lipgloss.Style
}

// NewConsoleRenderer returns a renderer writing to w. Headers are styled when color is true.
func NewConsoleRenderer(w io.Writer, color bool) *ConsoleRenderer {
	r := lipgloss.NewRenderer(w)
	return &ConsoleRenderer{
		w:      w,
		color:  color,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	}
}

// Render writes each line followed by a newline.
func (c *ConsoleRenderer) Render(lines ...string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(c.w, c.style(line))
	}
}

func (c *ConsoleRenderer) style(line string) string {
	text, ok := strings.CutPrefix(line, schema.HeaderMarker)
	if !ok {
		return line
	}
	if !c.color {
		return text
	}
	return c.header.Render(text)
}

// Buffer collects rendered lines in memory.
type Buffer struct {
	mu    sync.Mutex
	lines []string
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Render appends lines with header markers stripped.
func (b *Buffer) Render(lines ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range lines {
		b.lines = append(b.lines, strings.TrimPrefix(line, schema.HeaderMarker))
	}
}

// Lines returns a copy of the collected lines.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// String joins the collected lines with newlines.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}

// Reset drops the collected lines.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
