package app

import (
	"context"
	"errors"
	"log/slog"

	"jk80-print/internal/config"
	"jk80-print/internal/printer"
)

// App bundles the printer components for the GUI and CLI.
type App struct {
	Config    config.Config
	Log       *slog.Logger
	Platform  *printer.Platform
	Access    printer.Access
	Directory *printer.Directory
	Manager   *printer.Manager
}

// Options tweak how the dependency graph is built
type Options struct {
	// AssumeGranted skips the host permission checks
	AssumeGranted bool
	// AllDevices disables the printer name filter
	AllDevices bool
}

// New constructs the dependency graph from cfg.
func New(cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	platOpts := cfg.PlatformOptions()
	platOpts.Logger = log
	platform, err := printer.OpenPlatform(platOpts)
	if err != nil {
		return nil, err
	}

	var access printer.Access = platform.Access
	if opts.AssumeGranted {
		access = printer.StaticAccess(true)
	}

	target := cfg.TargetName
	if opts.AllDevices {
		target = ""
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Platform:  platform,
		Access:    access,
		Directory: printer.NewDirectory(platform.Source, access, target, log.With("component", "directory")),
		Manager: printer.NewManager(platform.Dialer, access,
			printer.WithLogger(log.With("component", "connection")),
			printer.WithQueueSize(cfg.QueueSize),
			printer.WithModel(cfg.Model()),
		),
	}, nil
}

// Start requests the Bluetooth grants. A denial is logged and not fatal:
// listing and connecting degrade to empty results.
func (a *App) Start(ctx context.Context) {
	if err := a.Access.Request(ctx); err != nil {
		a.Log.Warn("continuing without bluetooth access", "error", err)
	}
}

// Close stops the connection manager and releases the platform
func (a *App) Close() error {
	return errors.Join(a.Manager.Close(), a.Platform.Close())
}
