package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/minwon/pkg/minwon/internalerr"
	"github.com/cognicore/minwon/pkg/minwon/store"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS complaints (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	address TEXT,
	category TEXT,
	title TEXT NOT NULL,
	summary TEXT,
	tier TEXT,
	short_address TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints(created_at);

CREATE TABLE IF NOT EXISTS complaint_verdicts (
	complaint_id TEXT PRIMARY KEY,
	agency_name TEXT,
	agency_code TEXT,
	confidence REAL,
	reasoning TEXT,
	sources TEXT,
	FOREIGN KEY(complaint_id) REFERENCES complaints(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveComplaint inserts or replaces a complaint and its verdict
func (s *sqliteStore) SaveComplaint(ctx context.Context, c store.Complaint) error {
	if c.ID == "" {
		return internalerr.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO complaints (id, text, address, category, title, summary, tier, short_address, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	text=excluded.text,
	address=excluded.address,
	category=excluded.category,
	title=excluded.title,
	summary=excluded.summary,
	tier=excluded.tier,
	short_address=excluded.short_address,
	created_at=excluded.created_at;
`
	if _, err := tx.ExecContext(ctx, stmt,
		c.ID, c.Text, c.Address, c.Category, c.Title, c.Summary, c.Tier, c.ShortAddress,
		c.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("upsert complaint: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM complaint_verdicts WHERE complaint_id = ?`, c.ID); err != nil {
		return err
	}
	if v := c.Verdict; v != nil {
		sources, err := json.Marshal(v.Sources)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO complaint_verdicts (complaint_id, agency_name, agency_code, confidence, reasoning, sources)
VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, v.AgencyName, v.AgencyCode, v.Confidence, v.Reasoning, string(sources),
		); err != nil {
			return fmt.Errorf("insert verdict: %w", err)
		}
	}

	return tx.Commit()
}

const selectComplaint = `
SELECT c.id, c.text, c.address, c.category, c.title, c.summary, c.tier, c.short_address, c.created_at,
	v.agency_name, v.agency_code, v.confidence, v.reasoning, v.sources
FROM complaints c
LEFT JOIN complaint_verdicts v ON v.complaint_id = c.id
`

// GetComplaint retrieves a complaint by ID
func (s *sqliteStore) GetComplaint(ctx context.Context, id string) (store.Complaint, error) {
	row := s.db.QueryRowContext(ctx, selectComplaint+`WHERE c.id = ?`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Complaint{}, internalerr.ErrNotFound
	}
	return c, err
}

// RecentComplaints returns complaints newest first
func (s *sqliteStore) RecentComplaints(ctx context.Context, limit int) ([]store.Complaint, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx, selectComplaint+`ORDER BY c.created_at DESC, c.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByTier groups stored complaints by summary tier
func (s *sqliteStore) CountByTier(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(tier, ''), COUNT(*) FROM complaints GROUP BY tier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var tier string
		var n int64
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[tier] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(row rowScanner) (store.Complaint, error) {
	var (
		c                                 store.Complaint
		address, category, summary, tier  sql.NullString
		shortAddr                         sql.NullString
		createdAt                         string
		agencyName, agencyCode, reasoning sql.NullString
		sources                           sql.NullString
		confidence                        sql.NullFloat64
	)
	if err := row.Scan(
		&c.ID, &c.Text, &address, &category, &c.Title, &summary, &tier, &shortAddr, &createdAt,
		&agencyName, &agencyCode, &confidence, &reasoning, &sources,
	); err != nil {
		return store.Complaint{}, err
	}

	c.Address = address.String
	c.Category = category.String
	c.Summary = summary.String
	c.Tier = tier.String
	c.ShortAddress = shortAddr.String
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return store.Complaint{}, fmt.Errorf("decode created_at %q: %w", createdAt, err)
	}
	c.CreatedAt = t

	if agencyName.Valid || agencyCode.Valid {
		v := &store.Verdict{
			AgencyName: agencyName.String,
			AgencyCode: agencyCode.String,
			Confidence: confidence.Float64,
			Reasoning:  reasoning.String,
		}
		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &v.Sources); err != nil {
				return store.Complaint{}, fmt.Errorf("decode verdict sources: %w", err)
			}
		}
		c.Verdict = v
	}
	return c, nil
}
