// Package pgstore persists lexicon entries in PostgreSQL so deployments can
// manage their recognition vocabulary centrally instead of shipping YAML
// files to every node.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"

	"github.com/ieum-ai/ieum/internal/lexicon"
)

// DB is the subset of pgx pool operations the store needs. *pgxpool.Pool and
// *pgx.Conn both satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema holds the DDL for the lexicon tables. Migrate applies it; it is
// exported so operators can run it through their own migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS lexicon_entries (
    word      TEXT PRIMARY KEY,
    frequency DOUBLE PRECISION NOT NULL,
    category  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lexicon_endings (
    ending TEXT PRIMARY KEY
);
`

// ErrNotFound is returned when a looked-up word has no row.
var ErrNotFound = errors.New("pgstore: word not found")

// Store reads and writes lexicon rows.
type Store struct {
	db DB
}

// New returns a store backed by db. The caller owns the connection lifecycle.
func New(db DB) *Store {
	return &Store{db: db}
}

// Migrate creates the lexicon tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	return nil
}

// Put inserts or updates a single entry.
func (s *Store) Put(ctx context.Context, e lexicon.Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("pgstore: put %q: %w", e.Word, err)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO lexicon_entries (word, frequency, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (word) DO UPDATE
		SET frequency = EXCLUDED.frequency, category = EXCLUDED.category`,
		e.Word, e.Frequency, string(e.Category))
	if err != nil {
		return fmt.Errorf("pgstore: put %q: %w", e.Word, err)
	}
	return nil
}

// PutEnding inserts a morphological ending if it is not already present.
func (s *Store) PutEnding(ctx context.Context, ending string) error {
	if ending == "" {
		return errors.New("pgstore: empty ending")
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO lexicon_endings (ending) VALUES ($1)
		ON CONFLICT (ending) DO NOTHING`, ending)
	if err != nil {
		return fmt.Errorf("pgstore: put ending %q: %w", ending, err)
	}
	return nil
}

// Get returns the entry for word, or ErrNotFound.
func (s *Store) Get(ctx context.Context, word string) (lexicon.Entry, error) {
	var (
		e   lexicon.Entry
		cat string
	)
	row := s.db.QueryRow(ctx,
		`SELECT word, frequency, category FROM lexicon_entries WHERE word = $1`, word)
	if err := row.Scan(&e.Word, &e.Frequency, &cat); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lexicon.Entry{}, ErrNotFound
		}
		return lexicon.Entry{}, fmt.Errorf("pgstore: get %q: %w", word, err)
	}
	e.Category = lexicon.Category(cat)
	return e, nil
}

// Delete removes a word. Deleting an absent word is not an error.
func (s *Store) Delete(ctx context.Context, word string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM lexicon_entries WHERE word = $1`, word); err != nil {
		return fmt.Errorf("pgstore: delete %q: %w", word, err)
	}
	return nil
}

// Load reads every entry and ending, ordered for deterministic merges. The
// two tables are queried concurrently, so the DB must be safe for parallel
// use; *pgxpool.Pool is.
func (s *Store) Load(ctx context.Context) ([]lexicon.Entry, []string, error) {
	var (
		entries []lexicon.Entry
		endings []string
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.loadEntries(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		endings, err = s.loadEndings(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return entries, endings, nil
}

func (s *Store) loadEntries(ctx context.Context) ([]lexicon.Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT word, frequency, category FROM lexicon_entries ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load entries: %w", err)
	}
	defer rows.Close()

	var entries []lexicon.Entry
	for rows.Next() {
		var (
			e   lexicon.Entry
			cat string
		)
		if err := rows.Scan(&e.Word, &e.Frequency, &cat); err != nil {
			return nil, fmt.Errorf("pgstore: scan entry: %w", err)
		}
		e.Category = lexicon.Category(cat)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: load entries: %w", err)
	}
	return entries, nil
}

func (s *Store) loadEndings(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT ending FROM lexicon_endings ORDER BY ending`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load endings: %w", err)
	}
	defer rows.Close()

	var endings []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("pgstore: scan ending: %w", err)
		}
		endings = append(endings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: load endings: %w", err)
	}
	return endings, nil
}
