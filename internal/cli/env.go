package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazuruo/aoss-console/internal/catalog"
	"github.com/chazuruo/aoss-console/internal/comments"
	"github.com/chazuruo/aoss-console/internal/config"
	"github.com/chazuruo/aoss-console/internal/graphql"
	"github.com/chazuruo/aoss-console/internal/kv"
	"github.com/chazuruo/aoss-console/internal/logging"
	"github.com/chazuruo/aoss-console/internal/runner"
	"github.com/chazuruo/aoss-console/internal/tui"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// env is everything a command needs, built from the loaded config.
type env struct {
	cfg        *config.Config
	catalog    *catalog.Catalog
	blueprints *workflows.Set
	local      kv.Store
	remote     comments.Remote
	logger     *slog.Logger
	logFile    io.Closer

	// saveCatalog is false when the stored catalog could not be read, so
	// Close leaves it for the user to repair instead of overwriting it.
	saveCatalog bool
}

// loadEnv loads the config and opens the stores. With logToFile the logger
// writes to [log].file so the TUI owns the terminal.
func loadEnv(ctx context.Context, logToFile bool) (*env, error) {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	e := &env{cfg: cfg}
	level := cfg.Log.Level
	if l := logLevel(); l != "" {
		level = l
	}
	if logToFile {
		if e.logFile, err = logging.ConfigureFile(level, cfg.Log.File); err != nil {
			return nil, err
		}
	} else if err := logging.Configure(level, os.Stderr); err != nil {
		return nil, err
	}
	e.logger = slog.Default()

	local, err := kv.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		e.logger.Warn("local store unavailable, comments will not persist", "path", cfg.Storage.Path, "error", err)
		e.local = kv.NewMemory()
	} else {
		e.local = local
	}

	if cfg.RemoteEnabled() {
		auth, err := graphql.NewAuthorizer(ctx, cfg.Remote.AuthMode, cfg.Remote.APIKey, cfg.Remote.Region)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to configure remote auth: %w", err)
		}
		client := graphql.NewClient(cfg.Remote.Endpoint,
			graphql.WithAuthorizer(auth),
			graphql.WithTimeout(cfg.Remote.Timeout.Duration),
			graphql.WithMaxRetries(cfg.Remote.MaxRetries),
			graphql.WithLogger(e.logger),
		)
		e.remote = graphql.NewCommentStore(client)
	}

	if e.blueprints, err = workflows.LoadWithOverrides(cfg.Provisioning.Blueprints); err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to load blueprints: %w", err)
	}

	if e.catalog, err = catalog.Load(ctx, e.local); err != nil {
		e.logger.Warn("stored catalog unreadable, using seed data; new resources will not be saved", "key", catalog.CreatedKey, "error", err)
		e.catalog = catalog.Seeded()
	} else {
		e.saveCatalog = true
	}
	return e, nil
}

// Close saves created resources and releases the stores.
func (e *env) Close() {
	if e.catalog != nil && e.saveCatalog {
		if err := e.catalog.Save(context.Background(), e.local); err != nil {
			e.logger.Warn("catalog not saved", "error", err)
		}
	}
	if e.local != nil {
		_ = e.local.Close()
	}
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

func (e *env) deps() *tui.Deps {
	return &tui.Deps{
		Config:     e.cfg,
		Catalog:    e.catalog,
		Blueprints: e.blueprints,
		Local:      e.local,
		Remote:     e.remote,
		Logger:     e.logger,
	}
}

func (e *env) controller(screen string) *comments.Controller {
	return comments.NewController(screen, e.remote, e.local,
		comments.WithAuthor(e.cfg.Comments.Author),
		comments.WithLogger(e.logger),
	)
}

func (e *env) orchestrator(failFirst bool) *runner.Orchestrator {
	p := e.cfg.Provisioning
	return runner.New(
		runner.WithStepDelay(p.StepDelay.Duration),
		runner.WithCompletionDelay(p.CompletionDelay.Duration),
		runner.WithFailurePolicy(runner.PolicyFor(failFirst, p.FailStep)),
		runner.WithLogger(e.logger),
	)
}
