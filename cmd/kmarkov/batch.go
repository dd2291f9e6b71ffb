package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CTAG07/kmarkov/pkg/markov"
	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"
)

// runGenerateAll builds a model for every stored corpus and writes one
// generated text per corpus into the output directory. Corpora are
// processed concurrently, each with its own model and random source.
func (a *app) runGenerateAll(ctx context.Context, args []string) error {
	fs := newFlagSet("generate-all")
	order := fs.Int("k", a.config.DefaultOrder, "model order")
	length := fs.Int("n", a.config.DefaultLength, "length of each generated text")
	seed := fs.Uint64("seed", a.config.Seed, "random seed, 0 for a fresh one")
	outDir := fs.String("o", "", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outDir == "" || fs.NArg() != 0 {
		return errUsage
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	corpora, err := a.store.GetCorpora(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpora: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.BatchConcurrency)
	for i, c := range corpora {
		// Distinct but reproducible seeds per corpus.
		corpusSeed := *seed
		if corpusSeed != 0 {
			corpusSeed += uint64(i)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := markov.New(c.Text, *order, a.modelOptions(corpusSeed)...)
			if err != nil {
				return fmt.Errorf("corpus '%s': %w", c.Name, err)
			}
			out, err := m.Generate(c.Text[:*order], *length)
			if err != nil {
				return fmt.Errorf("corpus '%s': %w", c.Name, err)
			}
			path := filepath.Join(*outDir, c.Name+".txt")
			if err = atomic.WriteFile(path, bytes.NewReader([]byte(out))); err != nil {
				return fmt.Errorf("corpus '%s': failed to write %s: %w", c.Name, path, err)
			}
			a.logger.InfoContext(ctx, "Generated text written",
				slog.String("corpus_name", c.Name),
				slog.String("path", path),
				slog.Int("length", len(out)),
			)
			return nil
		})
	}
	return g.Wait()
}
