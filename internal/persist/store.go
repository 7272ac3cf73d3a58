package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/charcat/schema"
	"pkt.systems/pslog"
)

// Document reads and writes the JSON array backing the record store.
type Document struct {
	path string
	log  pslog.Logger
}

// NewDocument constructs a document at the given path.
func NewDocument(path string) (*Document, error) {
	return NewDocumentWithLogger(path, nil)
}

// NewDocumentWithLogger constructs a document with logging.
func NewDocumentWithLogger(path string, logger pslog.Logger) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("data file is required")
	}
	if logger != nil {
		logger = logger.With("data_file", path)
	}
	return &Document{path: path, log: logger}, nil
}

// Path returns the backing file path.
func (d *Document) Path() string {
	return d.path
}

// Load reads all records in file order. The bool is false when the file does not exist.
func (d *Document) Load() ([]schema.Character, bool, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if d.log != nil {
				d.log.Debug("document load miss")
			}
			return nil, false, nil
		}
		if d.log != nil {
			d.log.Warn("document load failed", "err", err)
		}
		return nil, false, err
	}
	records, err := decode(data)
	if err != nil {
		if d.log != nil {
			d.log.Warn("document load failed", "err", err)
		}
		return nil, false, err
	}
	if d.log != nil {
		d.log.Debug("document load ok", "records", len(records))
	}
	return records, true, nil
}

// Save overwrites the document with the full record sequence.
func (d *Document) Save(records []schema.Character) error {
	if records == nil {
		records = []schema.Character{}
	}
	data, err := encode(records)
	if err != nil {
		d.saveFailed(err)
		return err
	}
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.saveFailed(err)
		return err
	}
	tmp, err := os.CreateTemp(dir, ".characters-*.json")
	if err != nil {
		d.saveFailed(err)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		d.saveFailed(err)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		d.saveFailed(err)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		d.saveFailed(err)
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		d.saveFailed(err)
		return err
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		d.saveFailed(err)
		return err
	}
	if d.log != nil {
		d.log.Trace("document save ok", "records", len(records))
	}
	return nil
}

func (d *Document) saveFailed(err error) {
	if d.log != nil {
		d.log.Warn("document save failed", "err", err)
	}
}

// decode rejects fields outside the record shape and trailing data.
func decode(data []byte) ([]schema.Character, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var records []schema.Character
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after record array")
	}
	return records, nil
}

// encode keeps non-ASCII text and <>& literal.
func encode(records []schema.Character) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
