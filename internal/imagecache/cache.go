// Package imagecache stores downloaded character images on disk, keyed by name.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pkt.systems/charcat/schema"
	"pkt.systems/pslog"
)

// DefaultTimeout bounds a single image download.
const DefaultTimeout = 10 * time.Second

// DefaultExtension is appended to sanitized names.
const DefaultExtension = ".png"

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Config configures a Cache.
type Config struct {
	Dir        string
	Extension  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     pslog.Logger
}

// Result describes a successful Download.
type Result struct {
	Path string
	// Fetched is false when the file already existed and no request was made.
	Fetched bool
}

// Cache is a directory of images named after characters.
type Cache struct {
	dir  string
	ext  string
	http *http.Client
	log  pslog.Logger
}

// New constructs a cache rooted at cfg.Dir. The directory is created on first download.
func New(cfg Config) (*Cache, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("image directory is required")
	}
	ext := strings.TrimSpace(cfg.Extension)
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Cache{
		dir:  cfg.Dir,
		ext:  ext,
		http: httpClient,
		log:  logger.With("image_dir", cfg.Dir),
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the file a character's image is cached under.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, SanitizeName(name)+c.ext)
}

// Exists reports whether the image for name is already cached.
func (c *Cache) Exists(name string) bool {
	info, err := os.Stat(c.Path(name))
	return err == nil && !info.IsDir()
}

// Download fetches rawURL into the cache unless the image is already present.
// Failures are returned wrapped in schema.ErrImageUnavailable; nothing is written on failure.
func (c *Cache) Download(ctx context.Context, rawURL, name string) (Result, error) {
	path := c.Path(name)
	log := c.log.With("name", name)
	if c.Exists(name) {
		log.Debug("image cache hit", "path", path)
		return Result{Path: path}, nil
	}
	if strings.TrimSpace(rawURL) == "" {
		return Result{}, fmt.Errorf("%w: no image url for %s", schema.ErrImageUnavailable, name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.Warn("image download failed", "url", rawURL, "err", err)
		return Result{}, fmt.Errorf("%w: %v", schema.ErrImageUnavailable, err)
	}
	log.Debug("image download start", "url", rawURL)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("image download failed", "url", rawURL, "err", err)
		return Result{}, fmt.Errorf("%w: %v", schema.ErrImageUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		log.Warn("image download failed", "url", rawURL, "status", resp.StatusCode)
		return Result{}, fmt.Errorf("%w: HTTP %d", schema.ErrImageUnavailable, resp.StatusCode)
	}
	if err := c.write(path, resp.Body); err != nil {
		log.Warn("image write failed", "path", path, "err", err)
		return Result{}, fmt.Errorf("%w: %v", schema.ErrImageUnavailable, err)
	}
	log.Info("image cached", "path", path)
	return Result{Path: path, Fetched: true}, nil
}

func (c *Cache) write(path string, body io.Reader) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Count returns the number of cached image files. A missing directory counts as zero.
func (c *Cache) Count() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn("image count failed", "err", err)
		}
		return 0
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			n++
		}
	}
	return n
}

// Clear deletes every file in the cache directory and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.log.Warn("image cache clear failed", "file", entry.Name(), "err", err)
			return removed, err
		}
		removed++
	}
	c.log.Info("image cache cleared", "removed", removed)
	return removed, nil
}

// SanitizeName lowercases name and maps spaces, path separators and leading
// dots to underscores so the key always names a file inside the cache dir.
func SanitizeName(name string) string {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, cases.Lower(language.Und).String(name))
	trimmed := strings.TrimLeft(key, ".")
	key = strings.Repeat("_", len(key)-len(trimmed)) + trimmed
	if key == "" {
		return "_"
	}
	return key
}
