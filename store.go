package herbrand

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/cockroachdb/pebble"
)

// Key prefixes simulate logical buckets in Pebble's flat key space.
// Format: prefix:key -> value.
var (
	prefixResults = []byte("res:")  // Master storage: res:ID -> JSON blob
	prefixIdxHash = []byte("hash:") // Index: hash:ProgramHash:ID -> ID
	prefixIdxName = []byte("name:") // Index: name:Name:ID -> ID
)

// AnalysisRecord is the persisted summary of one analysis run.
type AnalysisRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ProgramHash    string    `json:"program_hash"`
	UniverseSize   int       `json:"universe_size"`
	Nodes          int       `json:"nodes"`
	Iterations     int       `json:"iterations"`
	Classes        int       `json:"classes"`
	FinalPartition string    `json:"final_partition"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordOf summarises a finished analysis for storage under the given
// name. The program hash ties the record back to the exact input text.
func RecordOf(a *Analysis, name string) AnalysisRecord {
	rec := AnalysisRecord{
		ID:           randomRecordID(),
		Name:         name,
		ProgramHash:  HashProgram(a.Prog),
		UniverseSize: a.Univ.Size(),
		Nodes:        len(a.Graph.Nodes),
		Iterations:   a.Iterations,
		CreatedAt:    time.Now().UTC(),
	}
	if final := a.FinalNode(); final >= 0 && !a.IsTopAt(final) {
		p := a.PartitionAt(final)
		rec.FinalPartition = p.Render(a.Univ)
		seen := make(map[ClassID]bool)
		for _, id := range p {
			seen[id] = true
		}
		rec.Classes = len(seen)
	}
	return rec
}

// HashProgram returns the sha256 of the program listing, hex encoded.
func HashProgram(p *Program) string {
	sum := sha256.Sum256([]byte(p.String()))
	return hex.EncodeToString(sum[:])
}

// ResultStore keeps analysis records in a Pebble database. Pebble's LSM
// tree needs no CGO and handles the read-heavy stats/lookup pattern well.
type ResultStore struct {
	db *pebble.DB
}

// StoreOptions configures store opening.
type StoreOptions struct {
	ReadOnly  bool
	CacheSize int64 // block cache bytes, default 8MB
}

// OpenResultStore opens or creates the database directory.
func OpenResultStore(path string, opts StoreOptions) (*ResultStore, error) {
	if opts.CacheSize == 0 {
		opts.CacheSize = 8 << 20
	}
	if opts.ReadOnly {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("result store does not exist: %s", path)
		}
	}
	pebbleOpts := &pebble.Options{
		Cache:    pebble.NewCache(opts.CacheSize),
		ReadOnly: opts.ReadOnly,
	}
	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store %q: %w", path, err)
	}
	return &ResultStore{db: db}, nil
}

// Close flushes pending writes and closes the database.
func (s *ResultStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores a record and its hash and name index entries in one batch.
func (s *ResultStore) Put(rec AnalysisRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record has no id")
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", rec.ID, err)
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(buildResultKey(rec.ID), blob, nil); err != nil {
		return err
	}
	if err := batch.Set(buildIndexKey(prefixIdxHash, rec.ProgramHash, rec.ID), []byte(rec.ID), nil); err != nil {
		return err
	}
	if err := batch.Set(buildIndexKey(prefixIdxName, rec.Name, rec.ID), []byte(rec.ID), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// Get loads a record by id.
func (s *ResultStore) Get(id string) (AnalysisRecord, error) {
	var rec AnalysisRecord
	blob, closer, err := s.db.Get(buildResultKey(id))
	if err != nil {
		return rec, fmt.Errorf("record %q: %w", id, err)
	}
	defer closer.Close()
	if err := json.Unmarshal(blob, &rec); err != nil {
		return rec, fmt.Errorf("decode record %q: %w", id, err)
	}
	return rec, nil
}

// FindByHash returns every record stored for a program hash.
func (s *ResultStore) FindByHash(hash string) ([]AnalysisRecord, error) {
	ids, err := s.scanIndex(buildIndexKey(prefixIdxHash, hash, ""))
	if err != nil {
		return nil, err
	}
	return s.loadAll(ids)
}

// FindByName returns every record stored under a name.
func (s *ResultStore) FindByName(name string) ([]AnalysisRecord, error) {
	ids, err := s.scanIndex(buildIndexKey(prefixIdxName, name, ""))
	if err != nil {
		return nil, err
	}
	return s.loadAll(ids)
}

// StoreStats aggregates the database contents.
type StoreStats struct {
	Records        int     `json:"records"`
	Programs       int     `json:"programs"`
	AvgIterations  float64 `json:"avg_iterations"`
	MaxUniverse    int     `json:"max_universe"`
	LatestRecordAt string  `json:"latest_record_at,omitempty"`
}

// Stats walks the result records and aggregates them.
func (s *ResultStore) Stats() (StoreStats, error) {
	var stats StoreStats
	iter, err := s.newIter(prefixResults)
	if err != nil {
		return stats, err
	}
	defer iter.Close()

	hashes := make(map[string]bool)
	var iterSum int
	var latest time.Time
	for iter.First(); iter.Valid(); iter.Next() {
		var rec AnalysisRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		stats.Records++
		hashes[rec.ProgramHash] = true
		iterSum += rec.Iterations
		if rec.UniverseSize > stats.MaxUniverse {
			stats.MaxUniverse = rec.UniverseSize
		}
		if rec.CreatedAt.After(latest) {
			latest = rec.CreatedAt
		}
	}
	stats.Programs = len(hashes)
	if stats.Records > 0 {
		stats.AvgIterations = float64(iterSum) / float64(stats.Records)
		stats.LatestRecordAt = latest.Format(time.RFC3339)
	}
	return stats, nil
}

func (s *ResultStore) loadAll(ids []string) ([]AnalysisRecord, error) {
	recs := make([]AnalysisRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

func (s *ResultStore) scanIndex(prefix []byte) ([]string, error) {
	iter, err := s.newIter(prefix)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var ids []string
	for iter.First(); iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Value()))
	}
	return ids, nil
}

func (s *ResultStore) newIter(prefix []byte) (*pebble.Iterator, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("pebble iterator creation failed: %w", err)
	}
	return iter, nil
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func buildResultKey(id string) []byte {
	return append(append([]byte(nil), prefixResults...), []byte(id)...)
}

// buildIndexKey forms prefix + field + ":" + id. With an empty id the
// result is the exact scan prefix for that field, trailing separator
// included, so "name:foo:" never matches records filed under "foobar".
func buildIndexKey(prefix []byte, field, id string) []byte {
	key := append([]byte(nil), prefix...)
	key = append(key, []byte(field)...)
	key = append(key, ':')
	key = append(key, []byte(id)...)
	return key
}

func randomRecordID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
