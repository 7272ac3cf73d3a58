package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pkt.systems/charcat/internal/format"
	"pkt.systems/pslog"
)

// Prompt is the label shown while waiting for a command line.
const Prompt = "> "

// Dispatcher executes one command line and reports whether the session continues.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) bool
}

type historyRecorder interface {
	AppendHistory(line string)
}

// SessionConfig wires a Session.
type SessionConfig struct {
	Reader     LineReader
	Dispatcher Dispatcher
	Out        format.Sink
	Logger     pslog.Logger
}

// Session is the interactive read-dispatch loop.
type Session struct {
	reader   LineReader
	dispatch Dispatcher
	out      format.Sink
	log      pslog.Logger
}

// NewSession validates cfg and returns a session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Reader == nil {
		return nil, errors.New("session reader is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("session dispatcher is required")
	}
	if cfg.Out == nil {
		return nil, errors.New("session output is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Session{reader: cfg.Reader, dispatch: cfg.Dispatcher, out: cfg.Out, log: logger}, nil
}

// Run prints the banner and dispatches lines until an exit command, end of
// input, Ctrl-C or context cancellation.
func (s *Session) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.out.Render(
		"",
		format.Header("=== Character catalog ==="),
		"type 'help' for a list of commands",
		"",
	)
	s.log.Info("session start")
	for {
		if ctx.Err() != nil {
			s.goodbye("cancelled")
			return nil
		}
		line, err := s.reader.Prompt(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrAborted) {
				s.goodbye("input closed")
				return nil
			}
			s.log.Error("session read failed", "err", err)
			return fmt.Errorf("read command: %w", err)
		}
		if rec, ok := s.reader.(historyRecorder); ok {
			rec.AppendHistory(line)
		}
		if !s.step(ctx, line) {
			s.goodbye("exit")
			return nil
		}
	}
}

func (s *Session) step(ctx context.Context, line string) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("session command panicked", "input", line, "panic", r)
			s.out.Render(fmt.Sprintf("error: %v", r))
			cont = true
		}
	}()
	return s.dispatch.Dispatch(ctx, line)
}

func (s *Session) goodbye(reason string) {
	s.log.Info("session end", "reason", reason)
	s.out.Render("goodbye!")
}
