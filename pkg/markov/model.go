package markov

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
)

// Model answers frequency queries over an Index and samples from it. The
// index is shared and read-only; the random source belongs to the Model,
// so a single Model must not be sampled from concurrently. Use Fork to give
// each goroutine its own.
type Model struct {
	index  *Index
	rng    *rand.Rand
	logger *slog.Logger
}

// modelOptions is used by New, NewFromIndex and Fork to collect options.
type modelOptions struct {
	source rand.Source
	logger *slog.Logger
}

// Option is a function that configures a Model.
type Option func(*modelOptions)

// WithSeed makes sampling and generation reproducible by seeding the
// model's random source.
func WithSeed(seed uint64) Option {
	return func(o *modelOptions) { o.source = rand.NewPCG(seed, seed) }
}

// WithSource sets the random source used for sampling.
func WithSource(src rand.Source) Option {
	return func(o *modelOptions) { o.source = src }
}

// WithLogger sets the logger for the model. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *modelOptions) { o.logger = logger }
}

// New builds the circular k-gram index of text with the given order and
// returns a Model over it.
func New(text string, order int, opts ...Option) (*Model, error) {
	idx, err := NewIndex(text, order)
	if err != nil {
		return nil, err
	}
	m := NewFromIndex(idx, opts...)
	m.logger.Debug("Model built",
		slog.Int("order", order),
		slog.Int("text_length", idx.Windows()),
		slog.Int("distinct_kgrams", idx.Len()),
	)
	return m, nil
}

// NewFromIndex returns a Model over an already built index.
func NewFromIndex(idx *Index, opts ...Option) *Model {
	options := &modelOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return newModel(idx, options)
}

func newModel(idx *Index, options *modelOptions) *Model {
	if options.source == nil {
		options.source = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if options.logger == nil {
		options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Model{
		index:  idx,
		rng:    rand.New(options.source),
		logger: options.logger,
	}
}

// Fork returns a Model sharing this model's index but owning a separate
// random source. The logger is inherited unless overridden.
func (m *Model) Fork(opts ...Option) *Model {
	options := &modelOptions{logger: m.logger}
	for _, opt := range opts {
		opt(options)
	}
	return newModel(m.index, options)
}

// SetLogger sets the logger for the Model. A nil logger is ignored.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Index returns the read-only index the model queries.
func (m *Model) Index() *Index {
	return m.index
}

// Order returns the k-gram length of the model.
func (m *Model) Order() int {
	return m.index.order
}

func (m *Model) checkKGram(kgram string) error {
	if len(kgram) != m.index.order {
		return kgramLengthError(kgram, m.index.order)
	}
	return nil
}

// TotalFrequency returns how many times kgram occurs in the circular text.
// A k-gram that was never observed has frequency 0.
func (m *Model) TotalFrequency(kgram string) (int, error) {
	if err := m.checkKGram(kgram); err != nil {
		return 0, err
	}
	freqs := m.index.lookup(kgram)
	if freqs == nil {
		return 0, nil
	}
	return freqs.Total(), nil
}

// SymbolFrequency returns how many times symbol immediately follows kgram.
// If kgram was never observed, every symbol has frequency 0.
func (m *Model) SymbolFrequency(kgram string, symbol byte) (int, error) {
	if err := m.checkKGram(kgram); err != nil {
		return 0, err
	}
	if !InAlphabet(symbol) {
		return 0, fmt.Errorf("%w: %w: 0x%02x", ErrInvalidArgument, ErrSymbolOutOfRange, symbol)
	}
	freqs := m.index.lookup(kgram)
	if freqs == nil {
		return 0, nil
	}
	return freqs[symbol], nil
}

// Frequencies returns a copy of the successor frequencies of kgram. An
// unobserved k-gram yields the zero vector.
func (m *Model) Frequencies(kgram string) (Frequencies, error) {
	if err := m.checkKGram(kgram); err != nil {
		return Frequencies{}, err
	}
	freqs, _ := m.index.Lookup(kgram)
	return freqs, nil
}
