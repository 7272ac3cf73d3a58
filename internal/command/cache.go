package command

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/charcat/internal/format"
)

var errNoImageCache = errors.New("image cache is not configured")

type cacheStatsHandler struct {
	images ImageCache
}

func (h *cacheStatsHandler) Aliases() []string { return []string{"cache", "cache-stats"} }

func (h *cacheStatsHandler) Execute(_ context.Context, inv Invocation) error {
	if h.images == nil {
		return errNoImageCache
	}
	inv.Out.Render(
		"",
		format.Header("=== Image cache ==="),
		fmt.Sprintf("characters: %d", inv.Store.Len()),
		fmt.Sprintf("images cached: %d", h.images.Count()),
		fmt.Sprintf("cache dir: %s/", h.images.Dir()),
	)
	return nil
}

type clearCacheHandler struct {
	images ImageCache
}

func (h *clearCacheHandler) Aliases() []string { return []string{"clear-cache", "clean"} }

func (h *clearCacheHandler) Execute(_ context.Context, inv Invocation) error {
	if h.images == nil {
		return errNoImageCache
	}
	ok, err := confirm(inv, "Are you sure? This deletes every cached image (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		inv.Out.Render(msgCancelled)
		return nil
	}
	removed, err := h.images.Clear()
	if err != nil {
		return fmt.Errorf("clear image cache: %w", err)
	}
	inv.Out.Render(fmt.Sprintf("✓ cache cleared, %d files removed", removed))
	return nil
}
