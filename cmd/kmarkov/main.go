// Command kmarkov stores training texts and generates pseudo-random text
// from fixed-order character Markov models built over them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CTAG07/kmarkov/pkg/corpus"
	"github.com/CTAG07/kmarkov/pkg/markov"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const usage = `usage: kmarkov [-config path] <command> [arguments]

commands:
  corpus add [-sanitize] <name> <file|->   store a training text
  corpus list                              list stored texts
  corpus rm <name>                         remove a text
  corpus export <name> <file>              write a text as JSON
  corpus import <file|->                   read JSON texts
  freq [-k n] <corpus> <kgram> [symbol]    frequency queries
  sample [-k n] [-seed s] [-count c] <corpus> <kgram>
  generate [-k n] [-n length] [-seed s] [-from kgram] [-stream] [-o file] <corpus>
  generate-all [-k n] [-n length] [-seed s] -o <dir>
  stats [-k n] <corpus>
  version
`

// app holds the dependencies shared by every command.
type app struct {
	config *Config
	logger *slog.Logger
	db     *sql.DB
	store  *corpus.Store
	stdin  io.Reader
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "kmarkov:", err)
		}
		os.Exit(1)
	}
}

// run parses the global flags, wires the configuration, logger and corpus
// store, and dispatches to the requested command.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("kmarkov", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "./kmarkov.json", "path to the JSON or YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}
	if fs.Arg(0) == "version" {
		_, err := fmt.Fprintf(stdout, "kmarkov %s (%s, %s)\n", Version, Commit, BuildDate)
		return err
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel, _ := parseLogLevel(config.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	db, err := initDB(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if err = corpus.SetupSchema(db); err != nil {
		return fmt.Errorf("failed to setup corpus schema: %w", err)
	}
	store, err := corpus.NewStore(db)
	if err != nil {
		return fmt.Errorf("error creating corpus store: %w", err)
	}
	defer store.Close()
	store.SetLogger(logger)

	a := &app{
		config: config,
		logger: logger,
		db:     db,
		store:  store,
		stdin:  stdin,
		stdout: stdout,
	}

	cmdArgs := fs.Args()[1:]
	switch fs.Arg(0) {
	case "corpus":
		return a.runCorpus(ctx, cmdArgs)
	case "freq":
		return a.runFreq(ctx, cmdArgs)
	case "sample":
		return a.runSample(ctx, cmdArgs)
	case "generate":
		return a.runGenerate(ctx, cmdArgs)
	case "generate-all":
		return a.runGenerateAll(ctx, cmdArgs)
	case "stats":
		return a.runStats(ctx, cmdArgs)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
}

// modelOptions returns the options shared by every model the tool builds.
// A non-zero seed makes the run reproducible.
func (a *app) modelOptions(seed uint64) []markov.Option {
	opts := []markov.Option{markov.WithLogger(a.logger)}
	if seed != 0 {
		opts = append(opts, markov.WithSeed(seed))
	}
	return opts
}
