package corpus

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/kmarkov/pkg/markov"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fishText = "one fish two fish red fish blue fish"

// setupTestStore creates a new SQLite database in a temp dir and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SetupSchema(db))
	// Setting up twice must be harmless.
	require.NoError(t, SetupSchema(db))

	s, err := NewStore(db)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return db, s
}

func TestInsertAndGetCorpus(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCorpus(ctx, "fish", fishText))

	text, err := s.GetCorpus(ctx, "fish")
	require.NoError(t, err)
	assert.Equal(t, fishText, text)

	info, err := s.GetCorpusInfo(ctx, "fish")
	require.NoError(t, err)
	assert.Equal(t, "fish", info.Name)
	assert.Equal(t, len(fishText), info.Length)
	assert.False(t, info.CreatedAt.IsZero())

	_, err = s.GetCorpus(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetCorpusInfo(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.InsertCorpus(ctx, "fish", "duplicate"), "duplicate names must be rejected")
}

func TestInsertCorpusValidation(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name       string
		corpusName string
		text       string
	}{
		{name: "Empty name", corpusName: "", text: "abc"},
		{name: "Empty text", corpusName: "empty", text: ""},
		{name: "Non-ASCII text", corpusName: "utf8", text: "crème brûlée"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.InsertCorpus(ctx, tc.corpusName, tc.text)
			assert.ErrorIs(t, err, markov.ErrInvalidArgument)
		})
	}

	infos, err := s.GetCorpusInfos(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestGetCorpusInfos(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCorpus(ctx, "zeta", "zzz"))
	require.NoError(t, s.InsertCorpus(ctx, "alpha", "banana"))

	infos, err := s.GetCorpusInfos(ctx)
	require.NoError(t, err)

	want := []Info{
		{Name: "alpha", Length: 6},
		{Name: "zeta", Length: 3},
	}
	if diff := cmp.Diff(want, infos, cmpopts.IgnoreFields(Info{}, "Id", "CreatedAt")); diff != "" {
		t.Errorf("GetCorpusInfos() mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveCorpus(t *testing.T) {
	db, s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCorpus(ctx, "to_delete", "delete this data."))
	require.NoError(t, s.InsertCorpus(ctx, "to_keep", "keep this data."))

	require.NoError(t, s.RemoveCorpus(ctx, "to_delete"))
	assert.ErrorIs(t, s.RemoveCorpus(ctx, "to_delete"), ErrNotFound)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM markov_corpora").Scan(&count))
	assert.Equal(t, 1, count)

	_, err := s.GetCorpus(ctx, "to_keep")
	assert.NoError(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertCorpus(ctx, "fish", fishText))

	var buf bytes.Buffer
	require.NoError(t, s.ExportCorpus(ctx, "fish", &buf))
	assert.ErrorIs(t, s.ExportCorpus(ctx, "missing", &bytes.Buffer{}), ErrNotFound)

	_, s2 := setupTestStore(t)
	require.NoError(t, s2.ImportCorpus(ctx, &buf))

	text, err := s2.GetCorpus(ctx, "fish")
	require.NoError(t, err)
	assert.Equal(t, fishText, text)

	// Models built from the original and the imported corpus agree.
	a, err := s.BuildModel(ctx, "fish", 4)
	require.NoError(t, err)
	b, err := s2.BuildModel(ctx, "fish", 4)
	require.NoError(t, err)
	assert.Equal(t, a.Stats(), b.Stats())
}

func TestImportCorpusReplacesAndStreams(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertCorpus(ctx, "a", "old text"))

	input := `{"name": "a", "text": "new text"}
{"name": "b", "text": "banana"}`
	require.NoError(t, s.ImportCorpus(ctx, strings.NewReader(input)))

	text, err := s.GetCorpus(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "new text", text)

	corpora, err := s.GetCorpora(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Exported{{Name: "a", Text: "new text"}, {Name: "b", Text: "banana"}}, corpora)
}

func TestImportCorpusErrors(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.ImportCorpus(ctx, strings.NewReader("")))
	assert.Error(t, s.ImportCorpus(ctx, strings.NewReader("{not json")))

	// A single invalid corpus aborts the whole import.
	input := `{"name": "good", "text": "fine"}
{"name": "bad", "text": "naïve"}`
	assert.ErrorIs(t, s.ImportCorpus(ctx, strings.NewReader(input)), markov.ErrInvalidArgument)
	_, err := s.GetCorpus(ctx, "good")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildModel(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertCorpus(ctx, "banana", "banana"))

	m, err := s.BuildModel(ctx, "banana", 2, markov.WithSeed(3))
	require.NoError(t, err)
	n, err := m.SymbolFrequency("na", 'b')
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.BuildModel(ctx, "banana", 7)
	assert.ErrorIs(t, err, markov.ErrConstruction)

	_, err = s.BuildModel(ctx, "missing", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
