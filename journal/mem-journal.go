package journal

import "sync"

// MemJournal keeps entries in memory. It is meant for tests and short-lived servers.
type MemJournal struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemJournal() *MemJournal {
	return &MemJournal{}
}

func (m *MemJournal) Record(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemJournal) Recent(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, m.entries[i])
	}
	return entries, nil
}

func (m *MemJournal) Summary() (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum Summary
	for _, e := range m.entries {
		sum.add(e)
	}
	return sum, nil
}

func (m *MemJournal) Close() error {
	return nil
}
