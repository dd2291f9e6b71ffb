package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/CTAG07/kmarkov/pkg/markov"
)

// ErrNotFound is returned when a corpus name does not exist in the store.
var ErrNotFound = errors.New("corpus not found")

// Info holds the metadata of a stored corpus.
type Info struct {
	Id        int
	Name      string
	Length    int
	CreatedAt time.Time
}

// Exported is the serializable representation of a corpus, used for
// JSON-based import and export.
type Exported struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// SetupSchema initializes the corpus table in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaCorpora = `
CREATE TABLE IF NOT EXISTS markov_corpora (
    corpus_id INTEGER PRIMARY KEY,
    corpus_name TEXT NOT NULL UNIQUE,
    corpus_text TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaCorpora); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store holds the database connection and prepared statements for corpus
// storage.
type Store struct {
	db             *sql.DB
	stmtInsert     *sql.Stmt
	stmtUpsert     *sql.Stmt
	stmtGetText    *sql.Stmt
	stmtGetInfo    *sql.Stmt
	stmtGetInfos   *sql.Stmt
	stmtRemove     *sql.Stmt
	stmtGetCorpora *sql.Stmt
	logger         *slog.Logger
}

// NewStore creates a Store over db, whose schema must already be set up.
// It pre-compiles all SQL statements, returning an error if any preparation
// fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsert, err := db.Prepare(`INSERT INTO markov_corpora (corpus_name, corpus_text, created_at) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtUpsert, err := db.Prepare(`INSERT INTO markov_corpora (corpus_name, corpus_text, created_at) VALUES (?, ?, ?)
ON CONFLICT(corpus_name) DO UPDATE SET corpus_text = excluded.corpus_text, created_at = excluded.created_at;`)
	if err != nil {
		return nil, err
	}

	stmtGetText, err := db.Prepare(`SELECT corpus_text FROM markov_corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetInfo, err := db.Prepare(`SELECT corpus_id, length(corpus_text), created_at FROM markov_corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetInfos, err := db.Prepare(`SELECT corpus_id, corpus_name, length(corpus_text), created_at FROM markov_corpora ORDER BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	stmtRemove, err := db.Prepare(`DELETE FROM markov_corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetCorpora, err := db.Prepare(`SELECT corpus_name, corpus_text FROM markov_corpora ORDER BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:             db,
		stmtInsert:     stmtInsert,
		stmtUpsert:     stmtUpsert,
		stmtGetText:    stmtGetText,
		stmtGetInfo:    stmtGetInfo,
		stmtGetInfos:   stmtGetInfos,
		stmtRemove:     stmtRemove,
		stmtGetCorpora: stmtGetCorpora,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtInsert.Close()
	_ = s.stmtUpsert.Close()
	_ = s.stmtGetText.Close()
	_ = s.stmtGetInfo.Close()
	_ = s.stmtGetInfos.Close()
	_ = s.stmtRemove.Close()
	_ = s.stmtGetCorpora.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// InsertCorpus stores a new corpus. The text must be non-empty and made of
// alphabet symbols only; inserting an existing name fails.
func (s *Store) InsertCorpus(ctx context.Context, name, text string) error {
	if err := validate(name, text); err != nil {
		return err
	}
	if _, err := s.stmtInsert.ExecContext(ctx, name, text, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to insert corpus '%s': %w", name, err)
	}
	s.logger.InfoContext(ctx, "Corpus stored",
		slog.String("corpus_name", name),
		slog.Int("length", len(text)),
	)
	return nil
}

// GetCorpus returns the text of the named corpus.
func (s *Store) GetCorpus(ctx context.Context, name string) (string, error) {
	var text string
	err := s.stmtGetText.QueryRowContext(ctx, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get corpus '%s': %w", name, err)
	}
	return text, nil
}

// GetCorpusInfo returns the metadata of the named corpus.
func (s *Store) GetCorpusInfo(ctx context.Context, name string) (Info, error) {
	info := Info{Name: name}
	var created int64
	err := s.stmtGetInfo.QueryRowContext(ctx, name).Scan(&info.Id, &info.Length, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	if err != nil {
		return Info{}, err
	}
	info.CreatedAt = time.Unix(created, 0)
	return info, nil
}

// GetCorpusInfos returns the metadata of every stored corpus, ordered by name.
func (s *Store) GetCorpusInfos(ctx context.Context) ([]Info, error) {
	rows, err := s.stmtGetInfos.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	infos := make([]Info, 0)
	for rows.Next() {
		var info Info
		var created int64
		if err = rows.Scan(&info.Id, &info.Name, &info.Length, &created); err != nil {
			return nil, err
		}
		info.CreatedAt = time.Unix(created, 0)
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// GetCorpora returns every stored corpus with its text, ordered by name.
func (s *Store) GetCorpora(ctx context.Context) ([]Exported, error) {
	rows, err := s.stmtGetCorpora.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var corpora []Exported
	for rows.Next() {
		var c Exported
		if err = rows.Scan(&c.Name, &c.Text); err != nil {
			return nil, err
		}
		corpora = append(corpora, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return corpora, nil
}

// RemoveCorpus deletes the named corpus.
func (s *Store) RemoveCorpus(ctx context.Context, name string) error {
	res, err := s.stmtRemove.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to remove corpus '%s': %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	s.logger.InfoContext(ctx, "Corpus removed", slog.String("corpus_name", name))
	return nil
}

// ExportCorpus writes the named corpus as JSON to w.
func (s *Store) ExportCorpus(ctx context.Context, name string, w io.Writer) error {
	text, err := s.GetCorpus(ctx, name)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Corpus exported",
		slog.String("corpus_name", name),
		slog.Int("length", len(text)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Exported{Name: name, Text: text})
}

// ImportCorpus reads one or more JSON corpora from r and stores them. A
// corpus whose name already exists has its text replaced. The whole import
// runs in a single transaction.
func (s *Store) ImportCorpus(ctx context.Context, r io.Reader) error {
	var imported []Exported
	decoder := json.NewDecoder(r)
	for {
		var c Exported
		err := decoder.Decode(&c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to decode json corpus: %w", err)
		}
		if err = validate(c.Name, c.Text); err != nil {
			return err
		}
		imported = append(imported, c)
	}
	if len(imported) == 0 {
		return fmt.Errorf("failed to decode json corpus: %w", io.ErrUnexpectedEOF)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtUpsert := tx.StmtContext(ctx, s.stmtUpsert)
	now := time.Now().Unix()
	for _, c := range imported {
		if _, err = stmtUpsert.ExecContext(ctx, c.Name, c.Text, now); err != nil {
			return fmt.Errorf("failed to import corpus '%s': %w", c.Name, err)
		}
	}

	s.logger.InfoContext(ctx, "Corpora imported successfully", slog.Int("corpora_merged", len(imported)))

	return tx.Commit()
}

// BuildModel loads the named corpus and builds a model of the given order
// from it.
func (s *Store) BuildModel(ctx context.Context, name string, order int, opts ...markov.Option) (*markov.Model, error) {
	text, err := s.GetCorpus(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := markov.New(text, order, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build model from corpus '%s': %w", name, err)
	}
	return m, nil
}

func validate(name, text string) error {
	if name == "" {
		return fmt.Errorf("%w: corpus name is empty", markov.ErrInvalidArgument)
	}
	if text == "" {
		return fmt.Errorf("%w: corpus '%s' is empty", markov.ErrInvalidArgument, name)
	}
	if err := markov.ValidateText(text); err != nil {
		return fmt.Errorf("%w: corpus '%s': %w", markov.ErrInvalidArgument, name, err)
	}
	return nil
}
