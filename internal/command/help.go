package command

import (
	"context"
	"strings"

	"pkt.systems/charcat/internal/format"
	"pkt.systems/charcat/schema"
)

var helpLines = []string{
	"list, ls              - show all characters",
	"add, create           - add a character",
	"show, view <id>       - show character details",
	"delete, rm <id>       - delete a character",
	"qr <id>               - show the image URL as a QR code",
	"import, fetch         - import characters from the API (downloads images)",
	"cache, cache-stats    - show image cache statistics",
	"clear-cache, clean    - delete every cached image",
	"help, ?               - show this help",
	"exit, quit            - leave",
	"",
	"Legend:",
	schema.LocalImageIndicator + " - image stored locally",
	schema.RemoteImageIndicator + " - image only available online",
}

type helpHandler struct{}

func (h *helpHandler) Aliases() []string { return []string{"help", "?"} }

func (h *helpHandler) Execute(_ context.Context, inv Invocation) error {
	inv.Out.Render(HelpText()...)
	return nil
}

// HelpText returns the static usage summary.
func HelpText() []string {
	lines := make([]string, 0, len(helpLines)+2)
	lines = append(lines, "", format.Header("=== Commands ==="))
	return append(lines, helpLines...)
}

// Usage returns the help text as a plain block.
func Usage() string {
	text := strings.Join(HelpText(), "\n")
	return strings.TrimPrefix(strings.ReplaceAll(text, schema.HeaderMarker, ""), "\n")
}
