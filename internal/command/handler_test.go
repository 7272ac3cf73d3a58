package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"

	"pkt.systems/charcat/internal/catalog"
	"pkt.systems/charcat/internal/format"
	"pkt.systems/charcat/internal/imagecache"
	"pkt.systems/charcat/schema"
)

func TestRegistryFirstMatchWins(t *testing.T) {
	first := &stubHandler{aliases: []string{"list", "ls"}}
	second := &stubHandler{aliases: []string{"ls", "dir"}}
	reg := NewRegistry(first, second)

	got, ok := reg.Resolve("ls")
	if !ok || got != first {
		t.Fatalf("expected earlier handler to win for overlapping alias")
	}
	got, ok = reg.Resolve("dir")
	if !ok || got != second {
		t.Fatalf("expected second handler for its own alias")
	}
	if _, ok := reg.Resolve("LS"); ok {
		t.Fatalf("expected case-sensitive resolution")
	}
	if _, ok := reg.Resolve(""); ok {
		t.Fatalf("expected empty token to resolve nothing")
	}
}

func TestRegistryValidate(t *testing.T) {
	overlap := NewRegistry(&stubHandler{aliases: []string{"list"}}, &stubHandler{aliases: []string{"list"}})
	if err := overlap.Validate(); !errors.Is(err, schema.ErrDuplicateAlias) {
		t.Fatalf("expected ErrDuplicateAlias, got %v", err)
	}
	exitClash := NewRegistry(&stubHandler{aliases: []string{"quit"}})
	if err := exitClash.Validate(DefaultExitTokens...); !errors.Is(err, schema.ErrDuplicateAlias) {
		t.Fatalf("expected exit token clash, got %v", err)
	}
	blank := NewRegistry(&stubHandler{aliases: []string{"two words"}})
	if err := blank.Validate(); err == nil {
		t.Fatalf("expected invalid alias error")
	}
	builtins := NewBuiltinRegistry(Deps{})
	if err := builtins.Validate(DefaultExitTokens...); err != nil {
		t.Fatalf("builtin registry should be disjoint: %v", err)
	}
}

func TestDispatchExitStopsBeforeResolution(t *testing.T) {
	quitter := &stubHandler{aliases: []string{"quit"}}
	d, out := newTestDispatcher(t, NewRegistry(quitter), newMemStore(), nil)
	for _, token := range []string{"exit", "quit", "  quit  now"} {
		if d.Dispatch(context.Background(), token) {
			t.Fatalf("expected %q to end the session", token)
		}
	}
	if quitter.calls != 0 {
		t.Fatalf("exit token must not reach a handler")
	}
	if len(out.Lines()) != 0 {
		t.Fatalf("expected no output, got %v", out.Lines())
	}
	if !d.Dispatch(context.Background(), "EXIT") {
		t.Fatalf("exit tokens are case-sensitive")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, out := newTestDispatcher(t, NewRegistry(), newMemStore(), nil)
	if !d.Dispatch(context.Background(), "frobnicate now") {
		t.Fatalf("unknown command must not end the session")
	}
	lines := out.Lines()
	if len(lines) != 1 || lines[0] != "unknown command: frobnicate" {
		t.Fatalf("unexpected output %q", lines)
	}
}

func TestDispatchEmptyLine(t *testing.T) {
	d, out := newTestDispatcher(t, NewRegistry(), newMemStore(), nil)
	if !d.Dispatch(context.Background(), "   ") {
		t.Fatalf("empty line must not end the session")
	}
	if len(out.Lines()) != 0 {
		t.Fatalf("expected no output for empty line, got %v", out.Lines())
	}
}

func TestDispatchPassesInvocation(t *testing.T) {
	h := &stubHandler{aliases: []string{"show", "view"}}
	store := newMemStore()
	d, out := newTestDispatcher(t, NewRegistry(h), store, nil)
	d.Dispatch(context.Background(), "view 3 extra")
	if h.calls != 1 {
		t.Fatalf("expected one call, got %d", h.calls)
	}
	if h.last.Command != "view" {
		t.Fatalf("command = %q, want view", h.last.Command)
	}
	if !slices.Equal(h.last.Args, []string{"3", "extra"}) {
		t.Fatalf("args = %q", h.last.Args)
	}
	if h.last.Store != Store(store) || h.last.Out != format.Sink(out) {
		t.Fatalf("expected store and sink to be passed through")
	}
}

func TestDispatchRendersHandlerErrors(t *testing.T) {
	failing := &stubHandler{aliases: []string{"boom"}, err: errors.New("bad input")}
	persisting := &stubHandler{aliases: []string{"save"}, err: fmt.Errorf("%w: disk full", schema.ErrPersist)}
	d, out := newTestDispatcher(t, NewRegistry(failing, persisting), newMemStore(), nil)
	if !d.Dispatch(context.Background(), "boom") {
		t.Fatalf("handler error must not end the session")
	}
	d.Dispatch(context.Background(), "save")
	lines := out.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", lines)
	}
	if lines[0] != "error: bad input" {
		t.Fatalf("unexpected error line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "storage error: ") {
		t.Fatalf("expected storage error line, got %q", lines[1])
	}
}

func TestExecuteReturnsRenderedFailure(t *testing.T) {
	failing := &stubHandler{aliases: []string{"save"}, err: fmt.Errorf("%w: disk full", schema.ErrPersist)}
	ok := &stubHandler{aliases: []string{"list"}}
	d, out := newTestDispatcher(t, NewRegistry(failing, ok), newMemStore(), nil)

	cont, err := d.Execute(context.Background(), "save")
	if !cont || !errors.Is(err, schema.ErrPersist) {
		t.Fatalf("expected persist error and continue, got cont=%v err=%v", cont, err)
	}
	cont, err = d.Execute(context.Background(), "nope")
	if !cont || !errors.Is(err, schema.ErrUnknownCommand) {
		t.Fatalf("expected unknown command error, got cont=%v err=%v", cont, err)
	}
	if cont, err := d.Execute(context.Background(), "list"); !cont || err != nil {
		t.Fatalf("expected success, got cont=%v err=%v", cont, err)
	}
	if cont, err := d.Execute(context.Background(), "exit"); cont || err != nil {
		t.Fatalf("expected clean exit, got cont=%v err=%v", cont, err)
	}
	lines := out.Lines()
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "storage error: ") || lines[1] != "unknown command: nope" {
		t.Fatalf("unexpected output %q", lines)
	}
}

func TestNewDispatcherRequiresDeps(t *testing.T) {
	if _, err := NewDispatcher(DispatcherConfig{}); err == nil {
		t.Fatalf("expected error for missing registry")
	}
	if _, err := NewDispatcher(DispatcherConfig{Registry: NewRegistry()}); err == nil {
		t.Fatalf("expected error for missing store")
	}
	if _, err := NewDispatcher(DispatcherConfig{Registry: NewRegistry(), Store: newMemStore()}); err == nil {
		t.Fatalf("expected error for missing sink")
	}
}

// helpers and fakes

func newTestDispatcher(t *testing.T, reg *Registry, store Store, in Prompter) (*Dispatcher, *format.Buffer) {
	t.Helper()
	out := format.NewBuffer()
	d, err := NewDispatcher(DispatcherConfig{Registry: reg, Store: store, Out: out, In: in})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d, out
}

type stubHandler struct {
	aliases []string
	err     error
	calls   int
	last    Invocation
}

func (s *stubHandler) Aliases() []string { return s.aliases }

func (s *stubHandler) Execute(_ context.Context, inv Invocation) error {
	s.calls++
	s.last = inv
	return s.err
}

type scriptedPrompter struct {
	answers []string
	prompts []string
}

func prompter(answers ...string) *scriptedPrompter {
	return &scriptedPrompter{answers: answers}
}

func (p *scriptedPrompter) Prompt(label string) (string, error) {
	p.prompts = append(p.prompts, label)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

type memStore struct {
	records []schema.Character
	saveErr error
	reads   int
}

func newMemStore(records ...schema.Character) *memStore {
	return &memStore{records: records}
}

func (m *memStore) Add(c schema.Character) error {
	if m.saveErr != nil {
		return fmt.Errorf("%w: %v", schema.ErrPersist, m.saveErr)
	}
	m.records = append(m.records, c)
	return nil
}

func (m *memStore) All() []schema.Character {
	m.reads++
	return slices.Clone(m.records)
}

func (m *memStore) ByID(id schema.CharacterID) (schema.Character, error) {
	for _, c := range m.records {
		if c.ID == id {
			return c, nil
		}
	}
	return schema.Character{}, schema.ErrCharacterNotFound
}

func (m *memStore) RemoveByID(id schema.CharacterID) (schema.Character, error) {
	for i, c := range m.records {
		if c.ID == id {
			m.records = slices.Delete(m.records, i, i+1)
			return c, nil
		}
	}
	return schema.Character{}, schema.ErrCharacterNotFound
}

func (m *memStore) Len() int { return len(m.records) }

func (m *memStore) MaxID() schema.CharacterID {
	var highest schema.CharacterID
	for _, c := range m.records {
		highest = max(highest, c.ID)
	}
	return highest
}

func (m *memStore) NextManualID() schema.CharacterID {
	return schema.CharacterID(len(m.records) + 1)
}

type fakeImages struct {
	count      int
	countCalls int
	cleared    int
	clearCalls int
	downloads  []string
	downloadFn func(rawURL, name string) (imagecache.Result, error)
}

func (f *fakeImages) Download(_ context.Context, rawURL, name string) (imagecache.Result, error) {
	f.downloads = append(f.downloads, name)
	if f.downloadFn != nil {
		return f.downloadFn(rawURL, name)
	}
	return imagecache.Result{Path: "imgs/" + imagecache.SanitizeName(name) + ".png", Fetched: true}, nil
}

func (f *fakeImages) Count() int {
	f.countCalls++
	return f.count
}

func (f *fakeImages) Clear() (int, error) {
	f.clearCalls++
	removed := f.count
	f.cleared += removed
	f.count = 0
	return removed, nil
}

func (f *fakeImages) Dir() string { return "imgs" }

type fakeCatalog struct {
	names   []string
	listErr error
	details map[string]catalog.Details
	mapper  *catalog.Client
}

func newFakeCatalog(names []string, details map[string]catalog.Details) *fakeCatalog {
	return &fakeCatalog{
		names:   names,
		details: details,
		mapper:  catalog.NewClient(catalog.Config{BaseURL: "https://catalog.test"}),
	}
}

func (f *fakeCatalog) ListNames(context.Context) ([]string, error) {
	if f.listErr != nil {
		return []string{}, f.listErr
	}
	return f.names, nil
}

func (f *fakeCatalog) Details(_ context.Context, name string) (catalog.Details, error) {
	d, ok := f.details[name]
	if !ok {
		return catalog.Details{}, schema.ErrDetailsNotFound
	}
	return d, nil
}

func (f *fakeCatalog) ToCharacter(d catalog.Details, id schema.CharacterID) schema.Character {
	return f.mapper.ToCharacter(d, id)
}
