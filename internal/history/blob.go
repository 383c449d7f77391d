package history

import (
	"database/sql"
	"errors"
	"sync"

	_ "github.com/glebarez/go-sqlite"

	"chartchat/internal/logger"
)

// Blob is the durable backing for the serialized session list: one value
// under one key, read whole and written whole. If independent processes
// write the same blob, the last writer wins.
type Blob interface {
	Get() ([]byte, error)
	Set(value []byte) error
	Delete() error
}

const blobKey = "chart-history"

// SQLiteBlob keeps the blob in a single-row key-value table. The database is
// opened lazily; if opening fails every Set reports the error (the store
// logs it and keeps running on memory).
type SQLiteBlob struct {
	path string

	once    sync.Once
	db      *sql.DB
	initErr error
}

// NewSQLiteBlob creates a blob backed by the sqlite file at path.
func NewSQLiteBlob(path string) *SQLiteBlob {
	return &SQLiteBlob{path: path}
}

func (b *SQLiteBlob) init() {
	b.db, b.initErr = sql.Open("sqlite", "file:"+b.path+"?_busy_timeout=10000")
	if b.initErr != nil {
		logger.L.Warn("sqlite open failed, history will not be durable", "path", b.path, "error", b.initErr)
		return
	}
	if _, err := b.db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT
	);`); err != nil {
		b.initErr = err
		logger.L.Warn("sqlite table creation failed, history will not be durable", "error", err)
	}
}

func (b *SQLiteBlob) Get() ([]byte, error) {
	b.once.Do(b.init)
	if b.initErr != nil {
		return nil, b.initErr
	}
	var value []byte
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?;`, blobKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *SQLiteBlob) Set(value []byte) error {
	b.once.Do(b.init)
	if b.initErr != nil {
		return b.initErr
	}
	_, err := b.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, blobKey, value)
	return err
}

func (b *SQLiteBlob) Delete() error {
	b.once.Do(b.init)
	if b.initErr != nil {
		return b.initErr
	}
	_, err := b.db.Exec(`DELETE FROM kv WHERE key = ?;`, blobKey)
	return err
}

// MemoryBlob is an in-process Blob for tests and ephemeral runs.
type MemoryBlob struct {
	mu    sync.Mutex
	value []byte
	set   bool
}

func NewMemoryBlob() *MemoryBlob { return &MemoryBlob{} }

func (b *MemoryBlob) Get() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return nil, nil
	}
	out := make([]byte, len(b.value))
	copy(out, b.value)
	return out, nil
}

func (b *MemoryBlob) Set(value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = append([]byte(nil), value...)
	b.set = true
	return nil
}

func (b *MemoryBlob) Delete() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = nil
	b.set = false
	return nil
}
