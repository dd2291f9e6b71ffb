package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller passes a k-gram whose
	// length differs from the model order, a symbol outside the alphabet,
	// or an impossible generation length.
	ErrInvalidArgument = errors.New("markov: invalid argument")

	// ErrConstruction is returned when a model cannot be built from the
	// given text and order. Construction errors also match ErrInvalidArgument.
	ErrConstruction = errors.New("markov: cannot build model")

	// ErrNoSuccessor is returned when sampling is requested for a k-gram
	// that was never observed, so no successor has any weight.
	ErrNoSuccessor = errors.New("markov: k-gram has no observed successor")

	// ErrSymbolOutOfRange is wrapped whenever a byte outside the alphabet
	// is encountered.
	ErrSymbolOutOfRange = errors.New("markov: symbol outside alphabet")
)

// GenerationError is returned by Generate when the generation loop reaches
// a k-gram without observed successors. Produced holds the text generated
// up to that point, which always starts with the seed.
type GenerationError struct {
	Produced string
	KGram    string
	Step     int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation stopped at step %d on k-gram %q after %d symbols: %v", e.Step, e.KGram, len(e.Produced), e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func constructionError(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrConstruction, ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func kgramLengthError(kgram string, order int) error {
	return fmt.Errorf("%w: k-gram %q has length %d, model order is %d", ErrInvalidArgument, kgram, len(kgram), order)
}
