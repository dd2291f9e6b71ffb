/*
Package markov provides a fixed-order, character-level Markov model over
ASCII text.

A model of order k counts, for every k-gram of the training text, how often
each symbol follows it. The text is treated as circular, so the last k-gram
is followed by the first symbol. Once built, a model answers frequency
queries, samples successors with probability proportional to their observed
counts, and generates new text by repeatedly sampling and sliding the k-gram
window forward.

The index is built once and never mutated afterwards, which makes it safe to
share between goroutines. Each goroutine should use its own random source,
see Model.Fork.
*/
package markov
