package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"pkt.systems/charcat/schema"
	"pkt.systems/pslog"
)

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

func TestWithCharacterAddsFields(t *testing.T) {
	capture := &logCapture{}
	log := WithCharacter(newCaptureLogger(capture), schema.Character{ID: 3, Name: "Diluc"})
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["character"] != "Diluc" {
		t.Fatalf("expected character field, got %+v", entry)
	}
	if _, ok := entry["character_id"]; !ok {
		t.Fatalf("expected character_id field, got %+v", entry)
	}
}

func TestWithCharacterSkipsEmpty(t *testing.T) {
	capture := &logCapture{}
	log := WithCharacter(newCaptureLogger(capture), schema.Character{})
	log.Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["character"]; ok {
		t.Fatalf("did not expect character field for empty record")
	}
	if _, ok := entry["character_id"]; ok {
		t.Fatalf("did not expect character_id field for empty record")
	}
}

func TestWithCommandAddsField(t *testing.T) {
	capture := &logCapture{}
	ctx := pslog.ContextWithLogger(context.Background(), newCaptureLogger(capture))
	WithCommand(ctx, "list").Info("hello")

	entry := capture.firstEntry(t)
	if entry["command"] != "list" {
		t.Fatalf("expected command field, got %+v", entry)
	}
}

func TestWithCommandDeduplicates(t *testing.T) {
	capture := &logCapture{}
	base := newCaptureLogger(capture).With("command", "list")
	ctx := ContextWithCommandLogger(context.Background(), base, "list")
	WithCommand(ctx, "list").Info("hello")

	line := bytes.TrimSpace(capture.buf.Bytes())
	if n := bytes.Count(line, []byte(`"command"`)); n != 1 {
		t.Fatalf("expected a single command field, got %d in %s", n, line)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
