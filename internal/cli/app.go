// Package cli implements the gomata command tree.
package cli

import (
	"context"
	"errors"
	"gomata/internal/backup"
	"gomata/internal/blob"
	"gomata/internal/config"
	"gomata/internal/core"
	"gomata/internal/logging"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
)

// App holds the lazily opened resources shared by the subcommands of one
// invocation.
type App struct {
	configFile string
	trace      bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
	store  core.PersistentStore
	svc    *core.Service

	// newPrompter builds the menu input source; replaced in tests.
	newPrompter func(in io.Reader, out io.Writer) Prompter
}

func (a *App) load(flags *pflag.FlagSet) error {
	cfg, err := config.Load(a.configFile, flags)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.LoggingConfig(), a.stderr)
	return nil
}

// service opens the configured store on first use. extra options are only
// honoured by the call that opens it.
func (a *App) service(ctx context.Context, extra ...core.Option) (*core.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	logger := core.NewSlogLogger(a.logger)
	store, err := core.OpenPersistentStore(ctx, a.cfg.StorageOptions(), logger)
	if err != nil {
		return nil, err
	}
	opts := []core.Option{core.WithLogger(logger)}
	if a.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(a.stderr)))
	}
	opts = append(opts, extra...)
	a.store = store
	a.svc = core.NewService(store, opts...)
	return a.svc, nil
}

func (a *App) backups(ctx context.Context) (*backup.Manager, error) {
	svc, err := a.service(ctx)
	if err != nil {
		return nil, err
	}
	blobs, err := blob.Open(ctx, a.cfg.BlobConfig())
	if err != nil {
		return nil, err
	}
	return backup.NewManager(svc.Store(), blobs, backup.WithLogger(core.NewSlogLogger(a.logger))), nil
}

// Close releases the store opened by this invocation.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.svc = nil, nil
	return err
}

// Execute runs the command tree against args and closes any opened store.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := &App{stdin: stdin, stdout: stdout, stderr: stderr, newPrompter: defaultPrompter}
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, app.Close())
}
