package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"roomsizes/models"
)

// DigestStore keeps scheduled stats digests in a local sqlite file.
// Operational history only; nothing user-facing is ever served from here
// that Postgres could not recompute.
type DigestStore struct {
	db *sql.DB
}

func NewDigestStore(dbPath string) (*DigestStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &DigestStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *DigestStore) Close() error {
	return s.db.Close()
}

func (s *DigestStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stats_digests (
		id INTEGER PRIMARY KEY,
		period TEXT NOT NULL,
		computed_at DATETIME NOT NULL,
		payload JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_stats_digests_computed_at
		ON stats_digests(computed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *DigestStore) InsertDigest(d *models.StatsDigest) error {
	res, err := s.db.Exec(
		`INSERT INTO stats_digests (period, computed_at, payload) VALUES (?, ?, ?)`,
		d.Period, d.ComputedAt, d.Payload,
	)
	if err != nil {
		return err
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

func (s *DigestStore) GetRecentDigests(limit int) ([]models.StatsDigest, error) {
	rows, err := s.db.Query(
		`SELECT id, period, computed_at, payload
		 FROM stats_digests
		 ORDER BY computed_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []models.StatsDigest
	for rows.Next() {
		var d models.StatsDigest
		var computedAt time.Time
		if err := rows.Scan(&d.ID, &d.Period, &computedAt, &d.Payload); err != nil {
			return nil, err
		}
		d.ComputedAt = computedAt
		digests = append(digests, d)
	}
	return digests, rows.Err()
}
