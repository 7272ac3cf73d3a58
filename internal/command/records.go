package command

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/charcat/internal/format"
	"pkt.systems/charcat/internal/logx"
	"pkt.systems/charcat/schema"
)

const (
	msgEmptyList = "character list is empty"
	msgNotFound  = "character not found"
	msgCancelled = "cancelled"
)

type listHandler struct {
	images ImageCache
}

func (h *listHandler) Aliases() []string { return []string{"list", "ls"} }

func (h *listHandler) Execute(_ context.Context, inv Invocation) error {
	records := inv.Store.All()
	if len(records) == 0 {
		inv.Out.Render(msgEmptyList)
		return nil
	}
	lines := make([]string, 0, len(records)+3)
	lines = append(lines, format.Header("=== Characters ==="))
	for _, c := range records {
		lines = append(lines, format.Summary(c))
	}
	if h.images != nil {
		lines = append(lines, "", fmt.Sprintf("📊 images cached locally: %d", h.images.Count()))
	}
	inv.Out.Render(lines...)
	return nil
}

type addHandler struct{}

func (h *addHandler) Aliases() []string { return []string{"add", "create"} }

func (h *addHandler) Execute(ctx context.Context, inv Invocation) error {
	inv.Out.Render(format.Header("=== Create character ==="))
	name, err := ask(inv, "Name: ")
	if err != nil {
		return err
	}
	kind, err := ask(inv, "Type (warrior/mage/archer): ")
	if err != nil {
		return err
	}
	healthRaw, err := ask(inv, "Health: ")
	if err != nil {
		return err
	}
	health, err := schema.ParseStat("health", healthRaw)
	if err != nil {
		return err
	}
	attackRaw, err := ask(inv, "Attack: ")
	if err != nil {
		return err
	}
	attack, err := schema.ParseStat("attack", attackRaw)
	if err != nil {
		return err
	}
	imageURL, err := ask(inv, "Image URL (optional): ")
	if err != nil {
		return err
	}
	c := schema.Character{
		ID:       inv.Store.NextManualID(),
		Name:     name,
		Type:     kind,
		Health:   health,
		Attack:   attack,
		ImageURL: imageURL,
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := inv.Store.Add(c); err != nil {
		return err
	}
	logx.WithCharacter(logx.Ctx(ctx), c).Info("character created")
	inv.Out.Render(fmt.Sprintf("✓ character '%s' created (id %d)", c.Name, c.ID))
	return nil
}

type showHandler struct{}

func (h *showHandler) Aliases() []string { return []string{"show", "view"} }

func (h *showHandler) Execute(_ context.Context, inv Invocation) error {
	id, err := singleID(inv, "usage: show <id>")
	if err != nil {
		return err
	}
	c, err := inv.Store.ByID(id)
	if errors.Is(err, schema.ErrCharacterNotFound) {
		inv.Out.Render(msgNotFound)
		return nil
	}
	if err != nil {
		return err
	}
	lines := []string{
		format.Header(fmt.Sprintf("=== %s ===", c.Name)),
		fmt.Sprintf("ID: %d", c.ID),
		fmt.Sprintf("Type: %s", c.Type),
		fmt.Sprintf("Health: %d", c.Health),
		fmt.Sprintf("Attack: %d", c.Attack),
	}
	if c.ImageURL != "" {
		lines = append(lines, fmt.Sprintf("Image URL: %s", c.ImageURL))
	}
	if c.HasLocalImage() {
		lines = append(lines, fmt.Sprintf("✓ local image: %s", c.LocalImagePath))
	} else {
		lines = append(lines, "✗ local image absent")
	}
	inv.Out.Render(lines...)
	return nil
}

type deleteHandler struct{}

func (h *deleteHandler) Aliases() []string { return []string{"delete", "rm"} }

func (h *deleteHandler) Execute(ctx context.Context, inv Invocation) error {
	id, err := singleID(inv, "usage: delete <id>")
	if err != nil {
		return err
	}
	c, err := inv.Store.ByID(id)
	if errors.Is(err, schema.ErrCharacterNotFound) {
		inv.Out.Render(msgNotFound)
		return nil
	}
	if err != nil {
		return err
	}
	ok, err := confirm(inv, fmt.Sprintf("Delete '%s'? This cannot be undone (y/n): ", c.Name))
	if err != nil {
		return err
	}
	if !ok {
		inv.Out.Render(msgCancelled)
		return nil
	}
	if _, err := inv.Store.RemoveByID(id); err != nil {
		return err
	}
	logx.WithCharacter(logx.Ctx(ctx), c).Info("character deleted")
	inv.Out.Render(fmt.Sprintf("✓ character '%s' deleted", c.Name))
	return nil
}

type qrHandler struct{}

func (h *qrHandler) Aliases() []string { return []string{"qr"} }

func (h *qrHandler) Execute(_ context.Context, inv Invocation) error {
	id, err := singleID(inv, "usage: qr <id>")
	if err != nil {
		return err
	}
	c, err := inv.Store.ByID(id)
	if errors.Is(err, schema.ErrCharacterNotFound) {
		inv.Out.Render(msgNotFound)
		return nil
	}
	if err != nil {
		return err
	}
	if c.ImageURL == "" {
		return fmt.Errorf("character %d has no image url", c.ID)
	}
	inv.Out.Render(format.Header(fmt.Sprintf("=== %s ===", c.Name)))
	inv.Out.Render(format.QRLines(c.ImageURL)...)
	inv.Out.Render(c.ImageURL)
	return nil
}
