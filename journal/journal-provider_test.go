package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func testEntries() []Entry {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []Entry{
		{ID: "a", ServedAt: at, Method: "GET", Path: "/watch", Status: 200, ContentRange: "bytes 0-99/100", Bytes: 100},
		{ID: "b", ServedAt: at.Add(time.Millisecond), Method: "GET", Path: "/watch", Range: "bytes=10-", Status: 206, ContentRange: "bytes 10-99/100", Bytes: 90},
		{ID: "c", ServedAt: at.Add(2 * time.Millisecond), Method: "GET", Path: "/watch", Range: "bytes=500-", Status: 416},
		{ID: "d", ServedAt: at.Add(3 * time.Millisecond), Method: "GET", Path: "/watch", Range: "bytes=0-", Status: 206, Bytes: 40, Aborted: true},
	}
}

func testProvider(t *testing.T, p Provider) {
	for _, e := range testEntries() {
		if err := p.Record(e); err != nil {
			t.Fatalf("Could not record %s: %v", e.ID, err)
		}
	}

	sum, err := p.Summary()
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{Requests: 4, Partial: 2, Unsatisfiable: 1, Aborted: 1, Bytes: 230}
	if sum != want {
		t.Fatalf("Summary is %+v, expected %+v", sum, want)
	}

	recent, err := p.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "d" || recent[1].ID != "c" {
		t.Fatalf("Recent entries are %+v", recent)
	}
	if !recent[0].Aborted || recent[1].Range != "bytes=500-" {
		t.Fatalf("Entries not stored intact: %+v", recent)
	}
}

func TestMemJournal(t *testing.T) {
	testProvider(t, NewMemJournal())
}

func TestSQLiteJournal(t *testing.T) {
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	testProvider(t, j)
}

func TestSQLiteJournalEmptySummary(t *testing.T) {
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	if sum, err := j.Summary(); err != nil || sum != (Summary{}) {
		t.Fatalf("Summary is %+v, %v", sum, err)
	}
	if recent, err := j.Recent(10); err != nil || len(recent) != 0 {
		t.Fatalf("Recent is %+v, %v", recent, err)
	}
}
