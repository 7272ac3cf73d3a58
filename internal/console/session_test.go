package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"pkt.systems/charcat/internal/format"
)

type recordingDispatcher struct {
	lines  []string
	exitOn string
	panics string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, line string) bool {
	d.lines = append(d.lines, line)
	if d.panics != "" && line == d.panics {
		panic("handler blew up")
	}
	return line != d.exitOn
}

func runSession(t *testing.T, ctx context.Context, input string, d Dispatcher) (*format.Buffer, *bytes.Buffer, error) {
	t.Helper()
	prompts := &bytes.Buffer{}
	out := format.NewBuffer()
	s, err := NewSession(SessionConfig{
		Reader:     NewPlainReader(strings.NewReader(input), prompts),
		Dispatcher: d,
		Out:        out,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return out, prompts, s.Run(ctx)
}

func TestSessionStopsOnExit(t *testing.T) {
	d := &recordingDispatcher{exitOn: "quit"}
	out, prompts, err := runSession(t, context.Background(), "list\nshow 1\nquit\nlist\n", d)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"list", "show 1", "quit"}
	if strings.Join(d.lines, "|") != strings.Join(want, "|") {
		t.Fatalf("dispatched %q, want %q", d.lines, want)
	}
	if got := strings.Count(prompts.String(), Prompt); got != 3 {
		t.Fatalf("expected 3 prompts, got %d", got)
	}
	lines := out.Lines()
	if lines[len(lines)-1] != "goodbye!" {
		t.Fatalf("expected goodbye, got %q", lines)
	}
	if !strings.Contains(out.String(), "type 'help'") {
		t.Fatalf("expected banner, got %q", out.String())
	}
}

func TestSessionEndsOnEOF(t *testing.T) {
	d := &recordingDispatcher{}
	out, _, err := runSession(t, context.Background(), "list\nls", d)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(d.lines) != 2 || d.lines[1] != "ls" {
		t.Fatalf("expected unterminated final line to dispatch, got %q", d.lines)
	}
	if !strings.HasSuffix(out.String(), "goodbye!") {
		t.Fatalf("expected goodbye on EOF, got %q", out.String())
	}
}

func TestSessionRecoversPanics(t *testing.T) {
	d := &recordingDispatcher{panics: "boom", exitOn: "exit"}
	out, _, err := runSession(t, context.Background(), "boom\nlist\nexit\n", d)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(d.lines) != 3 {
		t.Fatalf("expected loop to continue after panic, got %q", d.lines)
	}
	if !strings.Contains(out.String(), "error: handler blew up") {
		t.Fatalf("expected panic to be reported, got %q", out.String())
	}
}

func TestSessionStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &recordingDispatcher{}
	_, _, err := runSession(t, ctx, "list\n", d)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(d.lines) != 0 {
		t.Fatalf("expected no dispatch after cancellation, got %q", d.lines)
	}
}

type failingReader struct{ err error }

func (r failingReader) Prompt(string) (string, error) { return "", r.err }
func (r failingReader) Close() error                  { return nil }

func TestSessionReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"aborted", ErrAborted, false},
		{"eof", io.EOF, false},
		{"broken", errors.New("tty gone"), true},
	}
	for _, tc := range tests {
		s, err := NewSession(SessionConfig{Reader: failingReader{err: tc.err}, Dispatcher: &recordingDispatcher{}, Out: format.NewBuffer()})
		if err != nil {
			t.Fatalf("%s: new session: %v", tc.name, err)
		}
		err = s.Run(context.Background())
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: run err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestNewSessionRequiresDeps(t *testing.T) {
	if _, err := NewSession(SessionConfig{}); err == nil {
		t.Fatalf("expected error for missing reader")
	}
	if _, err := NewSession(SessionConfig{Reader: NewPlainReader(strings.NewReader(""), nil)}); err == nil {
		t.Fatalf("expected error for missing dispatcher")
	}
}

func TestPlainReaderTrimsLineEndings(t *testing.T) {
	r := NewPlainReader(strings.NewReader("Diluc\r\nМаг\n"), nil)
	for _, want := range []string{"Diluc", "Маг"} {
		got, err := r.Prompt("Name: ")
		if err != nil {
			t.Fatalf("prompt: %v", err)
		}
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
	if _, err := r.Prompt("Name: "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
