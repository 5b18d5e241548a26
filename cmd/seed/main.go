package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"promo-dispenser/internal/config"
	"promo-dispenser/internal/seed"
	"promo-dispenser/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	paramsFile string
	codeFiles  []string
}

func parseArgs(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.StringVar(&opts.paramsFile, "params", "", "JSON file whose numeric values are imported as parameters")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seed [-params params.json] [codes.txt[.gz] ...]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.codeFiles = fs.Args()
	if len(opts.codeFiles) == 0 && opts.paramsFile == "" {
		fs.Usage()
		return options{}, fmt.Errorf("nothing to seed: pass code files and/or -params")
	}

	return opts, nil
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadOffline()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.Backend == config.BackendFile {
		if err := storage.EnsureFiles(cfg.Storage); err != nil {
			return err
		}
	}

	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer stores.Close()

	seeder := seed.NewSeeder(newLoader(ctx, cfg.S3, logger), stores.Promos, stores.Counters, logger)

	if len(opts.codeFiles) > 0 {
		added, err := seeder.SeedCodes(ctx, opts.codeFiles...)
		if err != nil {
			return err
		}
		fmt.Printf("queued %d promo codes\n", added)
	}

	if opts.paramsFile != "" {
		imported, err := seeder.ImportParams(ctx, opts.paramsFile)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d parameters\n", imported)
	}

	remaining, err := stores.Promos.Len(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("remaining", remaining).Str("backend", stores.Backend).Msg("seeding complete")

	return nil
}

// newLoader tries S3 first when enabled and always falls back to local files.
func newLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) seed.Loader {
	fileLoader := seed.NewFileLoader(logger)
	if !cfg.Enabled {
		logger.Info().Msg("using local file system for seed files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := seed.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return seed.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, logger)
}
