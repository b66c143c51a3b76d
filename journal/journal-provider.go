package journal

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Provider is an interface for a journal of served responses.
// The journal is written after each response and never consulted when serving,
// so a slow or failing provider cannot change what clients receive.
//
// Implementations must be thread-safe!
type Provider interface {
	// Record stores an entry.
	Record(Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(limit int) ([]Entry, error)
	// Summary returns totals over all recorded entries.
	Summary() (Summary, error)
	// Close releases the resources held by the provider.
	Close() error
}

// Entry describes one response sent for the media endpoint.
type Entry struct {
	ID           string        `json:"id"`
	ServedAt     time.Time     `json:"servedAt"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	RemoteAddr   string        `json:"remoteAddr"`
	Range        string        `json:"range,omitempty"`
	Status       int           `json:"status"`
	ContentRange string        `json:"contentRange,omitempty"`
	Bytes        int64         `json:"bytes"`
	Duration     time.Duration `json:"duration"`
	// Aborted is set when the connection was cut before the response completed.
	Aborted bool `json:"aborted"`
}

// Summary holds totals over a journal.
type Summary struct {
	Requests      int64 `json:"requests"`
	Partial       int64 `json:"partial"`
	Unsatisfiable int64 `json:"unsatisfiable"`
	Aborted       int64 `json:"aborted"`
	Bytes         int64 `json:"bytes"`
}

func (s *Summary) add(e Entry) {
	s.Requests++
	switch e.Status {
	case 206:
		s.Partial++
	case 416:
		s.Unsatisfiable++
	}
	if e.Aborted {
		s.Aborted++
	}
	s.Bytes += e.Bytes
}

type SQLiteJournal struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteJournal opens a journal with the given filename as the db.
// If file name is empty or "memory", a shared in-memory db is opened.
func NewSQLiteJournal(filename string) (SQLiteJournal, error) {
	if filename == "" || filename == "memory" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteJournal{}, err
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			served_at INTEGER,
			method TEXT,
			path TEXT,
			remote_addr TEXT,
			range_header TEXT,
			status INTEGER,
			content_range TEXT,
			bytes INTEGER,
			duration INTEGER,
			aborted INTEGER
		)`,
		"CREATE INDEX IF NOT EXISTS served_at_idx ON journal (served_at)",
		"PRAGMA journal_mode=WAL",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return SQLiteJournal{}, err
		}
	}
	return SQLiteJournal{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteJournal) Record(e Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT INTO journal
		(id, served_at, method, path, remote_addr, range_header, status, content_range, bytes, duration, aborted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ServedAt.UnixNano(), e.Method, e.Path, e.RemoteAddr, e.Range,
		e.Status, e.ContentRange, e.Bytes, int64(e.Duration), e.Aborted)
	return err
}

func (s SQLiteJournal) Recent(limit int) ([]Entry, error) {
	entries := make([]Entry, 0)
	rows, err := s.db.Query(`SELECT
		id, served_at, method, path, remote_addr, range_header, status, content_range, bytes, duration, aborted
		FROM journal ORDER BY served_at DESC LIMIT ?`, limit)
	if err != nil {
		return entries, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		var servedAt, duration int64
		if err := rows.Scan(&e.ID, &servedAt, &e.Method, &e.Path, &e.RemoteAddr, &e.Range,
			&e.Status, &e.ContentRange, &e.Bytes, &duration, &e.Aborted); err != nil {
			return entries, err
		}
		e.ServedAt = time.Unix(0, servedAt)
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s SQLiteJournal) Summary() (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 206 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 416 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(aborted), 0),
		COALESCE(SUM(bytes), 0)
		FROM journal`).Scan(&sum.Requests, &sum.Partial, &sum.Unsatisfiable, &sum.Aborted, &sum.Bytes)
	return sum, err
}

func (s SQLiteJournal) Close() error {
	return s.db.Close()
}
