package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/pflag"

	"github.com/JamesPrial/atlantis-todos/internal/config"
	"github.com/JamesPrial/atlantis-todos/internal/storage"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

const logPrefix = "[atlantis-todos] "

// options holds the global flags.
type options struct {
	configFile string
	projectDir string
	backend    string
	debug      bool
}

func addGlobalFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.configFile, "config", "", "YAML config file")
	fs.StringVar(&opts.projectDir, "project-dir", "", "project directory for local storage (default: working directory)")
	fs.StringVar(&opts.backend, "backend", "", "storage backend: json, sqlite, postgres, neo4j or memory")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")
}

// env is everything a command needs once configuration is resolved.
type env struct {
	cfg    *config.Config
	store  *todo.Store
	logger *log.Logger
	close  func()
}

// loadConfig reads configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	if opts.projectDir != "" {
		cfg.ProjectDir = opts.projectDir
	}
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.debug {
		cfg.Debug = true
	}

	return cfg, nil
}

// openEnv resolves configuration, opens the storage backend and returns an
// initialized store. The caller must call env.close.
func openEnv(ctx context.Context, opts *options, errOut io.Writer) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := log.New(errOut, logPrefix, log.LstdFlags)

	backend, err := storage.GetStorageBackend(ctx, cfg.ProjectDir, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	closeFn := func() {}
	if c, ok := backend.(io.Closer); ok {
		closeFn = func() {
			if err := c.Close(); err != nil {
				logger.Printf("Failed to close storage: %v", err)
			}
		}
	}

	store := todo.NewStore(storage.NewAdapter(backend), todo.WithLogger(logger))
	if err := store.Initialize(ctx); err != nil {
		closeFn()
		return nil, err
	}

	if cfg.Debug {
		logger.Printf("Using %s backend (project %s)", cfg.Storage.Backend, cfg.ProjectDir)
	}

	return &env{
		cfg:    cfg,
		store:  store,
		logger: logger,
		close:  closeFn,
	}, nil
}
