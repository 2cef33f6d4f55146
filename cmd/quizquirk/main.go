package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/letsssgooo/quizquirk/internal/catalog"
	"github.com/letsssgooo/quizquirk/internal/config"
	"github.com/letsssgooo/quizquirk/internal/lib/slogcustom"
	"github.com/letsssgooo/quizquirk/internal/stats"
	"github.com/letsssgooo/quizquirk/internal/storage"
	"github.com/letsssgooo/quizquirk/internal/storage/file"
	"github.com/letsssgooo/quizquirk/internal/storage/postgres"
	"github.com/letsssgooo/quizquirk/internal/storage/redis"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const usage = `Usage: quizquirk [flags] <command> [args]

Commands:
  list                 show available quizzes
  play <number|id>     take a quiz
  results [category]   show history, most recent first
  stats                show aggregate statistics
  export [file]        write history as CSV (stdout if no file)
  rebuild              recompute statistics from history
  reset                delete all history

Flags:
`

func main() {
	fs := pflag.NewFlagSet("quizquirk", pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := setupLogger(cfg)
	slog.SetDefault(log)

	if err = run(cfg, fs.Args(), log); err != nil {
		log.Error("quizquirk failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("can not open %s storage: %w", cfg.Storage.Driver, err)
	}

	store := stats.NewStore(st, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("can not close storage", "err", err)
		}
	}()

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("can not load catalog: %w", err)
	}

	log.Debug("catalog loaded", "quizzes", len(cat.ListQuizzes()), "storage", cfg.Storage.Driver)

	return newApp(cat, store, os.Stdin, os.Stdout, log).run(ctx, args)
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return file.NewStorage(afero.NewOsFs(), cfg.File.Dir)
	case config.DriverPostgres:
		return postgres.NewStorage(ctx, cfg.Postgres.DSN, cfg.Storage.Prefix)
	case config.DriverRedis:
		return redis.NewStorage(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Storage.Prefix,
		})
	default:
		return storage.NewMemoryStorage(), nil
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slogcustom.NewCustomHandler(os.Stderr, cfg.Log.SlogLevel()))
}
