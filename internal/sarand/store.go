package sarand

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store records extraction runs and their per-seed outcomes in a
// sqlite database so runs can be compared and queried afterward.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	created_at        TEXT NOT NULL,
	graph_path        TEXT NOT NULL,
	target_length     INTEGER NOT NULL,
	node_threshold    INTEGER NOT NULL,
	percent_threshold REAL NOT NULL,
	min_identity      REAL NOT NULL,
	min_coverage      REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS extractions (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id    TEXT NOT NULL REFERENCES runs(id),
	gene      TEXT NOT NULL,
	node      TEXT NOT NULL,
	strand    TEXT NOT NULL,
	hit_start INTEGER NOT NULL,
	hit_end   INTEGER NOT NULL,
	outcome   TEXT NOT NULL,
	sequences INTEGER NOT NULL,
	max_len   INTEGER NOT NULL,
	error     TEXT NOT NULL DEFAULT ''
);
`

// OpenStore opens (creating if needed) the outcome database at path.
// Use ":memory:" for an in-memory database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outcome db %s: %w", path, err)
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init outcome db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun registers a new extraction run and returns its id.
func (s *Store) CreateRun(graphPath string, ex *Extractor) (string, error) {
	runID := "run-" + uuid.New().String()

	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, graph_path, target_length, node_threshold,
			percent_threshold, min_identity, min_coverage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), graphPath,
		ex.Target, ex.NodeThreshold, ex.PercentThreshold, ex.MinIdentity, ex.MinCoverage,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	return runID, nil
}

// SaveResult records one seed's outcome under a run.
func (s *Store) SaveResult(runID string, r Result) error {
	maxLen := 0
	for _, seq := range r.Sequences {
		if len(seq.Seq) > maxLen {
			maxLen = len(seq.Seq)
		}
	}

	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}

	_, err := s.db.Exec(
		`INSERT INTO extractions (run_id, gene, node, strand, hit_start, hit_end,
			outcome, sequences, max_len, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Gene, r.Seed.Node, r.Seed.Strand.String(), r.Seed.Start, r.Seed.End,
		r.Kind.String(), len(r.Sequences), maxLen, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record extraction for %s: %w", r.Gene, err)
	}
	return nil
}

// OutcomeCounts returns, for a run, how many extractions ended in each
// outcome.
func (s *Store) OutcomeCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT outcome, COUNT(*) FROM extractions WHERE run_id = ? GROUP BY outcome`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		counts[outcome] = count
	}
	return counts, rows.Err()
}
