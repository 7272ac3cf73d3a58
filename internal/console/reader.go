package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned by Prompt when the user presses Ctrl-C.
var ErrAborted = errors.New("input aborted")

// LineReader reads one line of user input per prompt.
type LineReader interface {
	Prompt(label string) (string, error)
	Close() error
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// LinerReader is a LineReader with line editing and persistent history.
type LinerReader struct {
	state       *liner.State
	historyFile string
}

// NewLinerReader takes over the terminal for line editing. History is loaded
// from historyFile when it is set and exists.
func NewLinerReader(historyFile string) *LinerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	r := &LinerReader{state: state, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}
	return r
}

// Prompt shows label and returns the entered line.
func (r *LinerReader) Prompt(label string) (string, error) {
	line, err := r.state.Prompt(label)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}
	return line, err
}

// AppendHistory records a command line for arrow-key recall.
func (r *LinerReader) AppendHistory(line string) {
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
}

// Close writes history (mode 0600) and restores the terminal.
func (r *LinerReader) Close() error {
	var saveErr error
	if r.historyFile != "" {
		saveErr = r.saveHistory()
	}
	if err := r.state.Close(); err != nil {
		return err
	}
	return saveErr
}

func (r *LinerReader) saveHistory() error {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o700); err != nil {
		return fmt.Errorf("history dir: %w", err)
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("history file: %w", err)
	}
	if _, err := r.state.WriteHistory(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write history: %w", err)
	}
	return f.Close()
}

// PlainReader reads newline-terminated input without line editing. Used when
// stdin is a pipe or file.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader reads from in and writes prompt labels to out.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	if out == nil {
		out = io.Discard
	}
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

// Prompt writes label and reads up to the next newline. A final unterminated
// line is returned before io.EOF.
func (r *PlainReader) Prompt(label string) (string, error) {
	if label != "" {
		if _, err := io.WriteString(r.out, label); err != nil {
			return "", err
		}
	}
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op.
func (r *PlainReader) Close() error { return nil }
