package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"pkt.systems/charcat/internal/catalog"
	"pkt.systems/charcat/internal/format"
	"pkt.systems/charcat/internal/imagecache"
	"pkt.systems/charcat/internal/logx"
	"pkt.systems/charcat/schema"
)

// DefaultExitTokens end the session.
var DefaultExitTokens = []string{"exit", "quit"}

// Store is the record store handlers operate on.
type Store interface {
	Add(c schema.Character) error
	All() []schema.Character
	ByID(id schema.CharacterID) (schema.Character, error)
	RemoveByID(id schema.CharacterID) (schema.Character, error)
	Len() int
	MaxID() schema.CharacterID
	NextManualID() schema.CharacterID
}

// Prompter reads one answer from the user.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Catalog is the remote source of character data.
type Catalog interface {
	ListNames(ctx context.Context) ([]string, error)
	Details(ctx context.Context, name string) (catalog.Details, error)
	ToCharacter(d catalog.Details, id schema.CharacterID) schema.Character
}

// ImageCache stores character images on disk.
type ImageCache interface {
	Download(ctx context.Context, rawURL, name string) (imagecache.Result, error)
	Count() int
	Clear() (int, error)
	Dir() string
}

// Invocation carries everything a handler needs for one execution.
type Invocation struct {
	Command string
	Args    []string
	Store   Store
	Out     format.Sink
	In      Prompter
}

// Handler executes a command. Aliases are matched case-sensitively.
type Handler interface {
	Aliases() []string
	Execute(ctx context.Context, inv Invocation) error
}

// Registry is a fixed, ordered set of handlers.
type Registry struct {
	handlers []Handler
}

// NewRegistry builds a registry; resolution follows argument order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: slices.Clone(handlers)}
}

// Resolve returns the first handler answering to token.
func (r *Registry) Resolve(token string) (Handler, bool) {
	if token == "" {
		return nil, false
	}
	for _, h := range r.handlers {
		if slices.Contains(h.Aliases(), token) {
			return h, true
		}
	}
	return nil, false
}

// Validate reports aliases claimed by more than one handler, or colliding with exit tokens.
func (r *Registry) Validate(exitTokens ...string) error {
	owners := make(map[string]int)
	for _, token := range exitTokens {
		owners[token] = -1
	}
	var errs []error
	for i, h := range r.handlers {
		for _, alias := range h.Aliases() {
			if strings.TrimSpace(alias) == "" || strings.ContainsAny(alias, " \t\r\n") {
				errs = append(errs, fmt.Errorf("invalid alias %q on handler %d", alias, i))
				continue
			}
			if prev, ok := owners[alias]; ok && prev != i {
				if prev < 0 {
					errs = append(errs, fmt.Errorf("%w: %q is an exit token", schema.ErrDuplicateAlias, alias))
				} else {
					errs = append(errs, fmt.Errorf("%w: %q on handlers %d and %d", schema.ErrDuplicateAlias, alias, prev, i))
				}
				continue
			}
			owners[alias] = i
		}
	}
	return errors.Join(errs...)
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Registry   *Registry
	Store      Store
	Out        format.Sink
	In         Prompter
	ExitTokens []string
}

// Dispatcher resolves input lines against a registry and runs the handler.
type Dispatcher struct {
	registry   *Registry
	store      Store
	out        format.Sink
	in         Prompter
	exitTokens []string
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("command registry is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Out == nil {
		return nil, errors.New("output sink is required")
	}
	exitTokens := cfg.ExitTokens
	if len(exitTokens) == 0 {
		exitTokens = DefaultExitTokens
	}
	return &Dispatcher{
		registry:   cfg.Registry,
		store:      cfg.Store,
		out:        cfg.Out,
		in:         cfg.In,
		exitTokens: slices.Clone(exitTokens),
	}, nil
}

// IsExit reports whether token ends the session.
func (d *Dispatcher) IsExit(token string) bool {
	return slices.Contains(d.exitTokens, token)
}

// Dispatch handles one input line. It returns false when the line asked to exit.
// Handler errors are rendered and never end the session.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) bool {
	cont, _ := d.Execute(ctx, line)
	return cont
}

// Execute behaves like Dispatch and also returns the failure it rendered:
// an unknown command wraps schema.ErrUnknownCommand, otherwise the handler error.
func (d *Dispatcher) Execute(ctx context.Context, line string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := Parse(line)
	if cmd.Empty() {
		return true, nil
	}
	if d.IsExit(cmd.Name) {
		return false, nil
	}
	log := logx.WithCommand(ctx, cmd.Name).With("args", len(cmd.Args))
	ctx = logx.ContextWithCommandLogger(ctx, log, cmd.Name)
	handler, ok := d.registry.Resolve(cmd.Name)
	if !ok {
		log.Info("command rejected", "reason", "unknown")
		err := fmt.Errorf("%w: %s", schema.ErrUnknownCommand, cmd.Name)
		d.out.Render(err.Error())
		return true, err
	}
	log.Debug("command dispatch")
	err := handler.Execute(ctx, Invocation{
		Command: cmd.Name,
		Args:    cmd.Args,
		Store:   d.store,
		Out:     d.out,
		In:      d.in,
	})
	if err != nil {
		log.Info("command failed", "err", err)
		d.out.Render(ErrorLine(err))
		return true, err
	}
	log.Debug("command completed")
	return true, nil
}

// ErrorLine renders err for the user. Storage failures are labelled distinctly.
func ErrorLine(err error) string {
	if errors.Is(err, schema.ErrPersist) {
		return fmt.Sprintf("storage error: %v", err)
	}
	return fmt.Sprintf("error: %v", err)
}
