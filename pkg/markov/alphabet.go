package markov

import (
	"fmt"
	"strings"
)

// AlphabetSize is the number of symbols a model can observe and emit: the
// 128 standard ASCII code points.
const AlphabetSize = 128

// Frequencies holds, for a single k-gram, the number of times each symbol
// of the alphabet was observed immediately after it. It is an array, so
// every value handed out by this package is a copy.
type Frequencies [AlphabetSize]int

// Total returns the sum of all counts, i.e. the number of times the k-gram
// itself was observed.
func (f Frequencies) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// Distinct returns the number of symbols with a non-zero count.
func (f Frequencies) Distinct() int {
	distinct := 0
	for _, n := range f {
		if n > 0 {
			distinct++
		}
	}
	return distinct
}

// InAlphabet reports whether b is a symbol the model can represent.
func InAlphabet(b byte) bool {
	return b < AlphabetSize
}

// ValidateText returns an error wrapping ErrSymbolOutOfRange for the first
// byte of text outside the alphabet.
func ValidateText(text string) error {
	for i := 0; i < len(text); i++ {
		if !InAlphabet(text[i]) {
			return fmt.Errorf("%w: byte 0x%02x at offset %d", ErrSymbolOutOfRange, text[i], i)
		}
	}
	return nil
}

// Sanitize returns text with every byte outside the alphabet replaced by
// replacement. Multi-byte UTF-8 sequences become a single replacement.
// The replacement itself must be in the alphabet.
func Sanitize(text string, replacement byte) (string, error) {
	if !InAlphabet(replacement) {
		return "", fmt.Errorf("%w: replacement 0x%02x", ErrSymbolOutOfRange, replacement)
	}
	if ValidateText(text) == nil {
		return text, nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if r < AlphabetSize {
			builder.WriteByte(byte(r))
		} else {
			builder.WriteByte(replacement)
		}
	}
	return builder.String(), nil
}
