// Package catalog talks to the public character API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pkt.systems/charcat/schema"
	"pkt.systems/pslog"
)

// DefaultBaseURL is the public character API.
const DefaultBaseURL = "https://genshin.jmp.blue"

// DefaultTimeout bounds each catalog request.
const DefaultTimeout = 30 * time.Second

const (
	defaultName   = "Unknown"
	defaultVision = "None"
	defaultWeapon = "Unknown"
	defaultRarity = 3
)

// Details is the subset of the detail payload the catalog maps into records.
type Details struct {
	Name   string `json:"name"`
	Vision string `json:"vision"`
	Weapon string `json:"weapon"`
	Rarity *int   `json:"rarity"`
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     pslog.Logger
}

// Client fetches character names and details.
type Client struct {
	baseURL string
	http    *http.Client
	log     pslog.Logger
}

// NewClient constructs a catalog client.
func NewClient(cfg Config) *Client {
	base := normalizeBaseURL(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
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
	return &Client{
		baseURL: base,
		http:    httpClient,
		log:     logger.With("catalog", base),
	}
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListNames returns every character name the API knows about.
// Any failure yields an empty list and an error wrapping schema.ErrCatalogUnavailable.
func (c *Client) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	status, err := c.getJSON(ctx, c.baseURL+"/characters", &names)
	if err != nil {
		c.log.Warn("catalog list failed", "status", status, "err", err)
		return []string{}, fmt.Errorf("%w: %v", schema.ErrCatalogUnavailable, err)
	}
	c.log.Debug("catalog list ok", "names", len(names))
	return names, nil
}

// Details fetches the detail payload for one character name.
func (c *Client) Details(ctx context.Context, name string) (Details, error) {
	target := c.baseURL + "/characters/" + url.PathEscape(name)
	var details Details
	status, err := c.getJSON(ctx, target, &details)
	if err != nil {
		c.log.Warn("catalog details failed", "name", name, "status", status, "err", err)
		if status == http.StatusNotFound {
			return Details{}, fmt.Errorf("%w: %s", schema.ErrDetailsNotFound, name)
		}
		return Details{}, fmt.Errorf("%w: %v", schema.ErrCatalogUnavailable, err)
	}
	return details, nil
}

// ToCharacter maps a detail payload to a record with the given id.
func (c *Client) ToCharacter(d Details, id schema.CharacterID) schema.Character {
	name := d.Name
	if name == "" {
		name = defaultName
	}
	vision := d.Vision
	if vision == "" {
		vision = defaultVision
	}
	weapon := d.Weapon
	if weapon == "" {
		weapon = defaultWeapon
	}
	rarity := defaultRarity
	if d.Rarity != nil {
		rarity = *d.Rarity
	}
	return schema.Character{
		ID:       id,
		Name:     name,
		Type:     fmt.Sprintf("%s (%s)", vision, weapon),
		Health:   rarity * 20,
		Attack:   rarity * 10,
		ImageURL: c.IconURL(name),
	}
}

// IconURL returns the icon location for a display name.
func (c *Client) IconURL(name string) string {
	return c.baseURL + "/characters/" + url.PathEscape(lower(name)) + "/icon"
}

func (c *Client) getJSON(ctx context.Context, target string, out any) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return resp.StatusCode, fmt.Errorf("request %s failed: %s", target, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// lower applies Unicode lowercasing independent of locale.
func lower(value string) string {
	return cases.Lower(language.Und).String(value)
}

func normalizeBaseURL(baseURL string) string {
	base := strings.TrimSpace(baseURL)
	for strings.HasSuffix(base, "/") {
		base = strings.TrimSuffix(base, "/")
	}
	return base
}
