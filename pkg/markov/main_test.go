package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const (
	bananaText = "banana"
	fishText   = "one fish two fish red fish blue fish"
	dnaText    = "gagggagaggcgagaaa"
)

// newTestModel builds a seeded model and fails the test on error.
func newTestModel(t testing.TB, text string, order int) *Model {
	t.Helper()
	m, err := New(text, order, WithSeed(42))
	if err != nil {
		t.Fatalf("New(%q, %d) error = %v", text, order, err)
	}
	return m
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		// Source comments may carry non-ASCII runes.
		benchmarkCorpus, _ = Sanitize(sb.String(), '?')
	})
	return benchmarkCorpus
}
