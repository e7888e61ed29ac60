package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/iksnae/iris-session/internal"
	"github.com/iksnae/iris-session/internal/client"
	"github.com/iksnae/iris-session/internal/export"
)

// app bundles what the commands need: configuration and the local stores
type app struct {
	paths    internal.Paths
	cfgPath  string
	cfg      *internal.Config
	storage  internal.Storage
	keys     *internal.KeyStore
	sessions *internal.SessionStore
}

// openApp loads the configuration, applies the global flags and opens the
// local storage. The caller must Close the app.
func openApp() (*app, error) {
	a, err := loadApp()
	if err != nil {
		return nil, err
	}

	storage, err := internal.NewStorage(a.cfg.Storage.Backend, a.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	internal.LogDebug("Using %s storage at %s", a.cfg.Storage.Backend, a.cfg.Storage.Path)
	a.useStorage(storage)
	return a, nil
}

// loadApp loads the configuration and applies the global flags. The storage
// is left unopened.
func loadApp() (*app, error) {
	paths, err := internal.DetectPaths()
	if err != nil {
		return nil, err
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = paths.ConfigFile
	}
	cfg, err := internal.LoadConfig(cfgPath, configPath != "", paths)
	if err != nil {
		return nil, err
	}

	if apiRoot != "" {
		cfg.APIRoot = apiRoot
	}
	if backend != "" {
		cfg.Storage.Backend = backend
		if storagePath == "" {
			cfg.Storage.Path = paths.StoragePathFor(backend)
		}
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}

	return &app{
		paths:   paths,
		cfgPath: cfgPath,
		cfg:     cfg,
	}, nil
}

func (a *app) useStorage(storage internal.Storage) {
	a.storage = storage
	a.keys = internal.NewKeyStore(storage)
	a.sessions = internal.NewSessionStore(storage)
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		internal.LogWarn("Failed to close storage: %v", err)
	}
}

func (a *app) client() (*client.Client, error) {
	c, err := client.NewClient(a.cfg, a.keys)
	if err != nil {
		return nil, fmt.Errorf("%w (set it with `iris-session config set-api <url>` or --api)", err)
	}
	return c, nil
}

func (a *app) synchronizer() (*client.Synchronizer, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return client.NewSynchronizer(c, a.sessions), nil
}

func (a *app) settings() (*client.Settings, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return client.NewSettings(c), nil
}

// withApp opens the app for the duration of fn
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// render writes v to w in the format selected by --format
func render(w io.Writer, v any) error {
	exporter, err := export.NewExporter(outputFormat)
	if err != nil {
		return err
	}
	return exporter.Export(v, w)
}

// progress runs fn behind a spinner and returns its result
func progress[T any](ctx context.Context, message string, fn func() (T, error)) (T, error) {
	return runProgress(ctx, internal.ShowProgress, message, fn)
}

// runProgress hands the result of fn over a channel. On cancellation run
// returns while fn may still be running, and the zero T is returned.
func runProgress[T any](ctx context.Context, run func(context.Context, string, func() error) error, message string, fn func() (T, error)) (T, error) {
	results := make(chan T, 1)
	err := run(ctx, message, func() error {
		result, err := fn()
		results <- result
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-results, nil
}
