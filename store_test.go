package herbrand

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := OpenResultStore(filepath.Join(t.TempDir(), "results.db"), StoreOptions{})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	a := AnalyzeSource(t, `
A = 5
B = A
`)
	rec := RecordOf(a, "copy-chain")
	if rec.ID == "" || rec.ProgramHash == "" {
		t.Fatalf("record not fully populated: %+v", rec)
	}
	if rec.FinalPartition == "" || rec.Classes == 0 {
		t.Fatalf("final partition missing from record: %+v", rec)
	}

	if err := store.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != rec.Name || got.ProgramHash != rec.ProgramHash || got.Iterations != rec.Iterations {
		t.Errorf("round trip mismatch: %+v vs %+v", got, rec)
	}
}

func TestStoreIndexes(t *testing.T) {
	store := openTestStore(t)

	a := AnalyzeSource(t, `
A = 1
`)
	first := RecordOf(a, "tiny")
	second := RecordOf(a, "tiny")
	for _, rec := range []AnalysisRecord{first, second} {
		if err := store.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	byHash, err := store.FindByHash(first.ProgramHash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if len(byHash) != 2 {
		t.Errorf("hash index found %d records, want 2", len(byHash))
	}
	byName, err := store.FindByName("tiny")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(byName) != 2 {
		t.Errorf("name index found %d records, want 2", len(byName))
	}
	if none, _ := store.FindByName("tin"); len(none) != 0 {
		t.Errorf("prefix of a name matched %d records", len(none))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	progA := AnalyzeSource(t, `
A = 1
`)
	progB := AnalyzeSource(t, `
B = 2
C = B
`)
	for i, a := range []*Analysis{progA, progA, progB} {
		if err := store.Put(RecordOf(a, "rec")); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Records != 3 {
		t.Errorf("records %d, want 3", stats.Records)
	}
	if stats.Programs != 2 {
		t.Errorf("programs %d, want 2", stats.Programs)
	}
	if stats.AvgIterations <= 0 {
		t.Errorf("average iterations not aggregated: %v", stats.AvgIterations)
	}
}

func TestStoreReadOnlyRequiresExisting(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.db")
	if _, err := OpenResultStore(missing, StoreOptions{ReadOnly: true}); err == nil {
		t.Errorf("read-only open of a missing store succeeded")
	}
}
