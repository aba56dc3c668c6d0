package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const metaModelName = "model_name"

// anonymousIDPrefix marks rows saved without verse ids; such sets load with no IDs.
const anonymousIDPrefix = "#"

// SQLiteStore keeps embeddings in SQLite: a meta key/value table and one blob row per verse.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS verse_embeddings (
		row INTEGER PRIMARY KEY,
		verse_id TEXT NOT NULL,
		vector BLOB NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_verse_embeddings_verse_id ON verse_embeddings(verse_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored matrix with set in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, set *EmbeddingSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verse_embeddings`); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaModelName, set.ModelName,
	); err != nil {
		return fmt.Errorf("write model name: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO verse_embeddings (row, verse_id, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, vec := range set.Vectors {
		id := fmt.Sprintf("%s%d", anonymousIDPrefix, i)
		if len(set.IDs) > 0 {
			id = set.IDs[i]
		}
		if _, err := stmt.ExecContext(ctx, i, id, float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load reads the matrix in row order.
func (s *SQLiteStore) Load(ctx context.Context) (*EmbeddingSet, error) {
	set := &EmbeddingSet{}
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaModelName).Scan(&set.ModelName)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("read model name: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT verse_id, vector FROM verse_embeddings ORDER BY row`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	anonymous := false
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if strings.HasPrefix(id, anonymousIDPrefix) {
			anonymous = true
		}
		set.IDs = append(set.IDs, id)
		set.Vectors = append(set.Vectors, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if anonymous {
		set.IDs = nil
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func float32SliceToBytes(v []float32) []byte {
	const size = 4
	out := make([]byte, len(v)*size)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(f))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
