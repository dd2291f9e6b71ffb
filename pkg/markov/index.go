package markov

import (
	"fmt"
	"sort"
)

// Index maps every k-gram observed in a circular text to the frequencies of
// the symbols following it. It is built once by NewIndex and is read-only
// afterwards.
type Index struct {
	order   int
	windows int
	counts  map[string]*Frequencies
}

// NewIndex scans text as a circular sequence and counts, for each of its
// len(text) windows of length order, the symbol that follows the window.
// The text must be non-empty, contain only alphabet symbols and be at least
// order symbols long.
func NewIndex(text string, order int) (*Index, error) {
	if order < 1 {
		return nil, constructionError("order must be positive, got %d", order)
	}
	if len(text) == 0 {
		return nil, constructionError("text is empty")
	}
	if len(text) < order {
		return nil, constructionError("text length %d is shorter than order %d", len(text), order)
	}
	if err := ValidateText(text); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrConstruction, ErrInvalidArgument, err)
	}

	// The appended prefix only supplies successors; windows start in text.
	circular := text + text[:order]

	idx := &Index{
		order:   order,
		windows: len(text),
		counts:  make(map[string]*Frequencies),
	}
	for i := 0; i < len(text); i++ {
		kgram := circular[i : i+order]
		freqs, ok := idx.counts[kgram]
		if !ok {
			freqs = new(Frequencies)
			idx.counts[kgram] = freqs
		}
		freqs[circular[i+order]]++
	}
	return idx, nil
}

// Order returns the k-gram length of the index.
func (idx *Index) Order() int {
	return idx.order
}

// Windows returns the number of window positions scanned, which equals the
// length of the training text.
func (idx *Index) Windows() int {
	return idx.windows
}

// Len returns the number of distinct k-grams observed.
func (idx *Index) Len() int {
	return len(idx.counts)
}

// Lookup returns a copy of the successor frequencies of kgram and true, or
// a zero value and false if kgram was never observed.
func (idx *Index) Lookup(kgram string) (Frequencies, bool) {
	freqs, ok := idx.counts[kgram]
	if !ok {
		return Frequencies{}, false
	}
	return *freqs, true
}

// KGrams returns every observed k-gram in lexical order.
func (idx *Index) KGrams() []string {
	kgrams := make([]string, 0, len(idx.counts))
	for kgram := range idx.counts {
		kgrams = append(kgrams, kgram)
	}
	sort.Strings(kgrams)
	return kgrams
}

// lookup returns the live vector; callers must not modify it.
func (idx *Index) lookup(kgram string) *Frequencies {
	return idx.counts[kgram]
}
