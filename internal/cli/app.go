package cli

import (
	"io"
	"log/slog"

	"github.com/roach88/bucketbook/internal/config"
	"github.com/roach88/bucketbook/internal/ingest"
	"github.com/roach88/bucketbook/internal/journal"
)

// app is the wired engine shared by the commands.
type app struct {
	cfg     config.Config
	proc    *ingest.Processor
	journal *journal.Store
}

// setupLogging installs the default slog handler on w.
func setupLogging(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads the config named by the global flag.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newApp wires config into a processor. The caller must Close it.
func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	builder, err := cfg.Builder()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid identifier schema", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to prepare directories", err)
	}

	a := &app{cfg: cfg}

	var locks *ingest.KeyLocks
	if cfg.LockBuckets {
		locks = ingest.NewKeyLocks()
	}
	opts := ingest.Options{Policy: cfg.Policy(), Logger: logger}
	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		a.journal = j
		opts.Journal = j
	}

	merger := ingest.NewMerger(cfg.OutputDir, cfg.Templates(), locks)
	a.proc = ingest.NewProcessor(builder.Key, merger, opts)
	return a, nil
}

// Close releases the journal, if one is open.
func (a *app) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}
