package command

import (
	"errors"
	"strings"

	"pkt.systems/charcat/schema"
)

// Deps are the collaborators shared by the built-in handlers.
type Deps struct {
	Catalog Catalog
	Images  ImageCache
}

// Builtins returns the built-in handlers in resolution order.
func Builtins(deps Deps) []Handler {
	return []Handler{
		&listHandler{images: deps.Images},
		&addHandler{},
		&showHandler{},
		&helpHandler{},
		&importHandler{catalog: deps.Catalog, images: deps.Images},
		&cacheStatsHandler{images: deps.Images},
		&clearCacheHandler{images: deps.Images},
		&deleteHandler{},
		&qrHandler{},
	}
}

// NewBuiltinRegistry returns a registry holding Builtins(deps).
func NewBuiltinRegistry(deps Deps) *Registry {
	return NewRegistry(Builtins(deps)...)
}

var errNoInput = errors.New("no interactive input available")

func ask(inv Invocation, label string) (string, error) {
	if inv.In == nil {
		return "", errNoInput
	}
	answer, err := inv.In.Prompt(label)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func confirm(inv Invocation, label string) (bool, error) {
	answer, err := ask(inv, label)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func singleID(inv Invocation, usage string) (schema.CharacterID, error) {
	if len(inv.Args) != 1 {
		return 0, errors.New(usage)
	}
	return schema.ParseCharacterID(inv.Args[0])
}
