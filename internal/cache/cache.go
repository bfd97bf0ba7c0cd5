// Package cache persists file upload results keyed by content hash, so
// re-importing an unchanged document does not re-upload its attachments.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// keepNewest bounds the number of entries retained by Cleanup.
const keepNewest = 1000

// Entry is one cached upload.
type Entry struct {
	FileID     string
	Name       string
	Size       int64
	UploadedAt time.Time
}

// Stats describes the cache contents.
type Stats struct {
	Entries   int
	TotalSize int64
	Oldest    time.Time
	Newest    time.Time
}

// Store is a sqlite-backed upload cache with TTL expiry.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the cache database at path.
func Open(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS uploads (
		hash        TEXT PRIMARY KEY,
		file_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		size        INTEGER NOT NULL,
		uploaded_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising cache schema: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached entry for a hash, or nil on a miss. Entries past
// the TTL are removed and reported as misses.
func (s *Store) Get(hash string) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT file_id, name, size, uploaded_at FROM uploads WHERE hash = ?`, hash)

	var e Entry
	var uploadedAt int64
	err := row.Scan(&e.FileID, &e.Name, &e.Size, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	e.UploadedAt = time.Unix(uploadedAt, 0)
	if s.ttl > 0 && time.Since(e.UploadedAt) > s.ttl {
		if _, err := s.db.Exec(`DELETE FROM uploads WHERE hash = ?`, hash); err != nil {
			return nil, fmt.Errorf("evicting expired entry: %w", err)
		}
		return nil, nil
	}

	return &e, nil
}

// Put stores or refreshes an entry.
func (s *Store) Put(hash string, e *Entry) error {
	uploadedAt := e.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO uploads (hash, file_id, name, size, uploaded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET
		   file_id = excluded.file_id,
		   name = excluded.name,
		   size = excluded.size,
		   uploaded_at = excluded.uploaded_at`,
		hash, e.FileID, e.Name, e.Size, uploadedAt.Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Cleanup drops expired entries and trims the cache to the newest
// keepNewest rows. It returns the number of rows removed.
func (s *Store) Cleanup() (int, error) {
	removed := 0

	if s.ttl > 0 {
		cutoff := time.Now().Add(-s.ttl).Unix()
		res, err := s.db.Exec(`DELETE FROM uploads WHERE uploaded_at < ?`, cutoff)
		if err != nil {
			return 0, fmt.Errorf("removing expired entries: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}

	res, err := s.db.Exec(
		`DELETE FROM uploads WHERE hash NOT IN (
			SELECT hash FROM uploads ORDER BY uploaded_at DESC LIMIT ?
		)`, keepNewest)
	if err != nil {
		return removed, fmt.Errorf("trimming cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += int(n)
	}

	return removed, nil
}

// Stats reports entry count, total bytes and the age range.
func (s *Store) Stats() (*Stats, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(size), 0),
		        COALESCE(MIN(uploaded_at), 0), COALESCE(MAX(uploaded_at), 0)
		 FROM uploads`)

	var st Stats
	var oldest, newest int64
	if err := row.Scan(&st.Entries, &st.TotalSize, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("reading cache stats: %w", err)
	}
	if st.Entries > 0 {
		st.Oldest = time.Unix(oldest, 0)
		st.Newest = time.Unix(newest, 0)
	}
	return &st, nil
}

// FileHash returns the hex SHA-256 of a file's contents.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
