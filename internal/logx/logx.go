package logx

import (
	"context"

	"pkt.systems/charcat/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	commandKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return pslog.Ctx(ctx)
}

// WithCommand annotates the logger with the command token if present.
func WithCommand(ctx context.Context, command string) pslog.Logger {
	log := Ctx(ctx)
	if ctx == nil || command == "" {
		return log
	}
	if current, ok := ctx.Value(commandKey).(string); ok && current == command {
		return log
	}
	return log.With("command", command)
}

// WithCharacter annotates the logger with record identity when available.
func WithCharacter(log pslog.Logger, c schema.Character) pslog.Logger {
	if c.ID != 0 {
		log = log.With("character_id", c.ID)
	}
	if c.Name != "" {
		log = log.With("character", c.Name)
	}
	return log
}

// ContextWithCommand stores the command marker on the context for log de-duplication.
func ContextWithCommand(ctx context.Context, command string) context.Context {
	if ctx == nil || command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// ContextWithCommandLogger attaches the logger and command marker to the context.
func ContextWithCommandLogger(ctx context.Context, log pslog.Logger, command string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithCommand(ctx, command)
}
