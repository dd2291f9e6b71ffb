package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/CTAG07/kmarkov/pkg/markov"
	"github.com/natefinch/atomic"
)

var errUsage = errors.New("invalid arguments, run kmarkov without arguments for usage")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// readInput reads a whole file, or stdin when path is "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to stdout when path is "-" or empty, and
// atomically replaces the file at path otherwise.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *app) runCorpus(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "add":
		fs := newFlagSet("corpus add")
		sanitize := fs.Bool("sanitize", false, "replace symbols outside ASCII with '?'")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 2 {
			return errUsage
		}
		data, err := a.readInput(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("failed to read corpus: %w", err)
		}
		text := string(data)
		if *sanitize {
			if text, err = markov.Sanitize(text, '?'); err != nil {
				return err
			}
		}
		return a.store.InsertCorpus(ctx, fs.Arg(0), text)

	case "list":
		infos, err := a.store.GetCorpusInfos(ctx)
		if err != nil {
			return fmt.Errorf("failed to list corpora: %w", err)
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLENGTH\tCREATED")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Name, info.Length, info.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()

	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		return a.store.RemoveCorpus(ctx, args[1])

	case "export":
		if len(args) != 3 {
			return errUsage
		}
		var buf bytes.Buffer
		if err := a.store.ExportCorpus(ctx, args[1], &buf); err != nil {
			return err
		}
		return a.writeOutput(args[2], buf.Bytes())

	case "import":
		if len(args) != 2 {
			return errUsage
		}
		data, err := a.readInput(args[1])
		if err != nil {
			return fmt.Errorf("failed to read import: %w", err)
		}
		return a.store.ImportCorpus(ctx, bytes.NewReader(data))

	default:
		return fmt.Errorf("unknown corpus command %q", args[0])
	}
}

func (a *app) runFreq(ctx context.Context, args []string) error {
	fs := newFlagSet("freq")
	order := fs.Int("k", a.config.DefaultOrder, "model order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 || fs.NArg() > 3 {
		return errUsage
	}

	m, err := a.store.BuildModel(ctx, fs.Arg(0), *order, a.modelOptions(0)...)
	if err != nil {
		return err
	}
	kgram := fs.Arg(1)

	if fs.NArg() == 3 {
		symbol := fs.Arg(2)
		if len(symbol) != 1 {
			return fmt.Errorf("%w: symbol %q must be a single byte", markov.ErrInvalidArgument, symbol)
		}
		n, err := m.SymbolFrequency(kgram, symbol[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, n)
		return err
	}

	freqs, err := m.Frequencies(kgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "total\t%d\n", freqs.Total())
	for symbol, n := range freqs {
		if n > 0 {
			fmt.Fprintf(a.stdout, "%q\t%d\n", rune(symbol), n)
		}
	}
	return nil
}

func (a *app) runSample(ctx context.Context, args []string) error {
	fs := newFlagSet("sample")
	order := fs.Int("k", a.config.DefaultOrder, "model order")
	seed := fs.Uint64("seed", a.config.Seed, "random seed, 0 for a fresh one")
	count := fs.Int("count", 1, "number of draws")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	m, err := a.store.BuildModel(ctx, fs.Arg(0), *order, a.modelOptions(*seed)...)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for i := 0; i < *count; i++ {
		symbol, err := m.SampleSuccessor(fs.Arg(1))
		if err != nil {
			return err
		}
		sb.WriteByte(symbol)
	}
	sb.WriteByte('\n')
	_, err = io.WriteString(a.stdout, sb.String())
	return err
}

func (a *app) runGenerate(ctx context.Context, args []string) error {
	fs := newFlagSet("generate")
	order := fs.Int("k", a.config.DefaultOrder, "model order")
	length := fs.Int("n", a.config.DefaultLength, "length of the generated text")
	seed := fs.Uint64("seed", a.config.Seed, "random seed, 0 for a fresh one")
	from := fs.String("from", "", "seed k-gram, defaults to the first k symbols of the corpus")
	stream := fs.Bool("stream", false, "write symbols as they are generated")
	output := fs.String("o", "", "output file, defaults to stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	if *stream && *output != "" {
		return fmt.Errorf("%w: -stream writes to stdout and cannot be combined with -o", errUsage)
	}

	text, err := a.store.GetCorpus(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	m, err := markov.New(text, *order, a.modelOptions(*seed)...)
	if err != nil {
		return err
	}
	start := *from
	if start == "" {
		start = text[:*order]
	}

	if *stream {
		symbols, err := m.GenerateStream(ctx, start, *length)
		if err != nil {
			return err
		}
		buf := make([]byte, 1)
		for symbol := range symbols {
			buf[0] = symbol
			if _, err := a.stdout.Write(buf); err != nil {
				return err
			}
		}
		_, err = io.WriteString(a.stdout, "\n")
		return err
	}

	out, genErr := m.Generate(start, *length)
	if out != "" {
		if err := a.writeOutput(*output, []byte(out+"\n")); err != nil {
			return err
		}
	}
	return genErr
}

func (a *app) runStats(ctx context.Context, args []string) error {
	fs := newFlagSet("stats")
	order := fs.Int("k", a.config.DefaultOrder, "model order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	m, err := a.store.BuildModel(ctx, fs.Arg(0), *order, a.modelOptions(0)...)
	if err != nil {
		return err
	}
	stats := m.Stats()
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "order\t%d\n", stats.Order)
	fmt.Fprintf(tw, "text_length\t%d\n", stats.TextLength)
	fmt.Fprintf(tw, "distinct_kgrams\t%d\n", stats.DistinctKGrams)
	fmt.Fprintf(tw, "transitions\t%d\n", stats.Transitions)
	fmt.Fprintf(tw, "symbols\t%d\n", stats.Symbols)
	fmt.Fprintf(tw, "max_branching\t%d\n", stats.MaxBranching)
	return tw.Flush()
}
