package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pkt.systems/charcat/internal/format"
	"pkt.systems/charcat/internal/logx"
	"pkt.systems/charcat/schema"
)

const defaultImportCount = 5

type importHandler struct {
	catalog Catalog
	images  ImageCache
}

func (h *importHandler) Aliases() []string { return []string{"import", "fetch"} }

func (h *importHandler) Execute(ctx context.Context, inv Invocation) error {
	if h.catalog == nil {
		return errors.New("catalog is not configured")
	}
	log := logx.Ctx(ctx)
	inv.Out.Render(format.Header("=== Import characters from API ==="), "loading character list...")
	names, err := h.catalog.ListNames(ctx)
	if len(names) == 0 {
		if err != nil {
			inv.Out.Render(fmt.Sprintf("❌ could not load characters: %v", err))
		} else {
			inv.Out.Render("❌ could not load characters: catalog returned no names")
		}
		return nil
	}
	inv.Out.Render(fmt.Sprintf("found %d characters", len(names)))

	answer, err := ask(inv, fmt.Sprintf("How many to import? (1-%d): ", len(names)))
	if err != nil {
		return err
	}
	count := clampImportCount(answer, len(names))
	inv.Out.Render(fmt.Sprintf("importing %d characters...", count))

	imported := 0
	downloaded := 0
	baseID := inv.Store.MaxID()
	for i, name := range names[:count] {
		inv.Out.Render("", fmt.Sprintf("[%d/%d] importing %s...", i+1, count, name))
		details, err := h.catalog.Details(ctx, name)
		if err != nil {
			inv.Out.Render(fmt.Sprintf("  ✗ no data for %s", name))
			continue
		}
		c := h.catalog.ToCharacter(details, baseID+schema.CharacterID(i)+1)
		if h.images != nil {
			res, err := h.images.Download(ctx, c.ImageURL, c.Name)
			switch {
			case err != nil:
				inv.Out.Render(fmt.Sprintf("  ✗ image not cached: %v", err))
			case res.Fetched:
				c.LocalImagePath = res.Path
				downloaded++
				inv.Out.Render(fmt.Sprintf("  ✓ image saved: %s", res.Path))
			default:
				c.LocalImagePath = res.Path
				inv.Out.Render(fmt.Sprintf("  ℹ image already cached: %s", res.Path))
			}
		}
		if err := inv.Store.Add(c); err != nil {
			return err
		}
		imported++
	}
	log.Info("import completed", "requested", count, "imported", imported, "images_downloaded", downloaded)
	inv.Out.Render(
		"",
		fmt.Sprintf("✓ imported %d characters", imported),
		fmt.Sprintf("✓ downloaded %d new images", downloaded),
	)
	return nil
}

// clampImportCount parses the requested count, defaulting to 5 and clamping to [1, available].
func clampImportCount(answer string, available int) int {
	n, err := strconv.Atoi(answer)
	if err != nil {
		n = defaultImportCount
	}
	if n > available {
		n = available
	}
	if n < 1 {
		n = 1
	}
	return n
}
