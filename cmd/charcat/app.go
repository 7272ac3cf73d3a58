package main

import (
	"context"
	"io"
	"os"

	"pkt.systems/charcat/core"
	"pkt.systems/charcat/internal/appconfig"
	"pkt.systems/charcat/internal/catalog"
	"pkt.systems/charcat/internal/command"
	"pkt.systems/charcat/internal/format"
	"pkt.systems/charcat/internal/imagecache"
	"pkt.systems/charcat/internal/persist"
	"pkt.systems/pslog"
)

// app holds the long-lived components shared by every command of a session.
type app struct {
	cfg      appconfig.Config
	store    *core.Store
	images   *imagecache.Cache
	catalog  *catalog.Client
	registry *command.Registry
}

func newApp(ctx context.Context, cfg appconfig.Config) (*app, error) {
	logger := pslog.Ctx(ctx)
	doc, err := persist.NewDocumentWithLogger(cfg.DataFile, logger)
	if err != nil {
		return nil, err
	}
	store, err := core.NewStore(doc, logger)
	if err != nil {
		return nil, err
	}
	images, err := imagecache.New(imagecache.Config{
		Dir:       cfg.ImageDir,
		Extension: cfg.Images.Extension,
		Timeout:   cfg.ImageTimeout(),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	client := catalog.NewClient(catalog.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.APITimeout(),
		Logger:  logger,
	})
	registry := command.NewBuiltinRegistry(command.Deps{Catalog: client, Images: images})
	if err := registry.Validate(cfg.Console.ExitTokens...); err != nil {
		return nil, err
	}
	logger.Debug("app ready",
		"data_file", cfg.DataFile,
		"image_dir", cfg.ImageDir,
		"api", client.BaseURL(),
		"records", store.Len(),
	)
	return &app{cfg: cfg, store: store, images: images, catalog: client, registry: registry}, nil
}

func (a *app) dispatcher(out format.Sink, in command.Prompter) (*command.Dispatcher, error) {
	return command.NewDispatcher(command.DispatcherConfig{
		Registry:   a.registry,
		Store:      a.store,
		Out:        out,
		In:         in,
		ExitTokens: a.cfg.Console.ExitTokens,
	})
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}

// useColor resolves the console.color mode against the output writer.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case appconfig.ColorAlways:
		return true
	case appconfig.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
