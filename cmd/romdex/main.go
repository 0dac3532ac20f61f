package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hello7893/romdex/internal/catalog"
	"github.com/hello7893/romdex/internal/config"
	"github.com/hello7893/romdex/internal/logging"
	"github.com/hello7893/romdex/internal/rdb"
	"github.com/hello7893/romdex/internal/runner"
	"github.com/hello7893/romdex/internal/scan"
	"github.com/hello7893/romdex/internal/status"
	"github.com/hello7893/romdex/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("RD_CONFIG_PATH"), "path to config.yaml")
	query := flag.String("query", "", "catalog filter, e.g. 'users = 2 && name = \"Foo\"'")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logManager, logger := logging.NewManager(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	logger.Info("romdex starting", "version", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the record database.
	store, err := rdb.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening record database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing record database", "error", err)
		}
	}()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("record database ready", slog.String("path", cfg.Database.Path))

	// Status messages go to stdout.
	msgs := status.NewQueue(logger, 256)
	msgs.Subscribe(func(m status.Message) {
		fmt.Println(m.Text)
	})
	go msgs.Start()
	defer msgs.Stop()

	// Scan the content directory.
	ident := scan.NewIdentifier(cfg.Content.Extensions, nil, nil, logger)
	factory := func(ctx context.Context) (*scan.Session, error) {
		return scan.NewSession(cfg.Content.Dir, cfg.Content.Extensions, scan.TaskBuildCatalog, ident, msgs, logger)
	}
	r := runner.New(factory, cfg.Scan.StepsPerSecond, logger)

	sess, err := r.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("scanning content directory: %w", err)
	}
	p := sess.Progress()
	logger.Info("scan complete", "session", p.ID, "files", p.Scanned)

	// Materialize the catalog.
	list, err := catalog.Build(ctx, store, *query, logger)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}
	logger.Info("catalog built", "entries", list.Count(), "query", *query)

	if cfg.Scan.Watch {
		return r.Watch(ctx, cfg.Content.Dir)
	}
	return nil
}
