package simulate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/simulate/migrate"
)

// CriticalThreshold is the score above which an alert counts as critical.
const CriticalThreshold = 85

const defaultQueryTimeout = 5 * time.Second

// Incident is a stored alert with the details served by the incident page.
type Incident struct {
	model.AlertRecord
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Status  string  `json:"status"`
	Summary string  `json:"summary"`
	Detail  string  `json:"detail"`
}

// Store keeps the most recent incidents in a DuckDB table trimmed to
// capacity, plus all-time per-type and per-source counters. It is safe for
// concurrent use.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	capacity     int
	QueryTimeout time.Duration
}

// NewStore opens or creates the alert database. An empty dbPath uses an
// in-memory database. At most capacity incidents are retained.
func NewStore(dbPath string, capacity int) (*Store, error) {
	if capacity < 1 {
		capacity = 1
	}
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("simulate: open store: %w", err)
	}
	if err := migrate.NewRunner(db).Run(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:           db,
		capacity:     capacity,
		QueryTimeout: defaultQueryTimeout,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// History returns how many alerts ip has raised so far.
func (s *Store) History(ip string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT alerts FROM source_history WHERE ip = ?`, ip).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("simulate: history %s: %w", ip, err)
	}
	return n, nil
}

// Add assigns the next ID to inc, stores it, evicts incidents beyond
// capacity and returns the stored copy.
func (s *Store) Add(inc Incident) (Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	if inc.Status == "" {
		inc.Status = "New"
	}
	critical := 0
	if inc.Risk > CriticalThreshold {
		critical = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Incident{}, fmt.Errorf("simulate: add: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM alerts`).Scan(&inc.ID); err != nil {
		return Incident{}, fmt.Errorf("simulate: add: next id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO alerts (id, timestamp, ip, country, attack_type, risk, lat, lon, status, summary, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inc.ID, inc.Timestamp, inc.IP, inc.Country, inc.Type, inc.Risk,
		inc.Lat, inc.Lon, inc.Status, inc.Summary, inc.Detail,
	); err != nil {
		return Incident{}, fmt.Errorf("simulate: add: insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO attack_counts (attack_type, total, critical) VALUES (?, 1, ?)
		ON CONFLICT (attack_type) DO UPDATE SET
			total = attack_counts.total + 1,
			critical = attack_counts.critical + excluded.critical`,
		inc.Type, critical,
	); err != nil {
		return Incident{}, fmt.Errorf("simulate: add: count type: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO source_history (ip, alerts) VALUES (?, 1)
		ON CONFLICT (ip) DO UPDATE SET alerts = source_history.alerts + 1`,
		inc.IP,
	); err != nil {
		return Incident{}, fmt.Errorf("simulate: add: count source: %w", err)
	}
	// IDs are dense, so everything at or below id-capacity is outside the window.
	if _, err := tx.ExecContext(ctx, `DELETE FROM alerts WHERE id <= ?`, inc.ID-int64(s.capacity)); err != nil {
		return Incident{}, fmt.Errorf("simulate: add: trim: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Incident{}, fmt.Errorf("simulate: add: commit: %w", err)
	}
	return inc, nil
}

// Recent returns up to n alert records, newest first.
func (s *Store) Recent(n int) ([]model.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, ip, country, attack_type, risk
		FROM alerts
		ORDER BY id DESC
		LIMIT ?`, max(n, 0))
	if err != nil {
		return nil, fmt.Errorf("simulate: recent: %w", err)
	}
	defer rows.Close()

	out := []model.AlertRecord{}
	for rows.Next() {
		var r model.AlertRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.IP, &r.Country, &r.Type, &r.Risk); err != nil {
			return nil, fmt.Errorf("simulate: recent: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats returns the all-time aggregates.
func (s *Store) Stats() (model.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT attack_type, SUM(total), SUM(critical)
		FROM attack_counts
		GROUP BY attack_type`)
	if err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("simulate: stats: %w", err)
	}
	defer rows.Close()

	st := model.StatsSnapshot{AttackTypes: map[string]int64{}}
	for rows.Next() {
		var typ string
		var total, critical int64
		if err := rows.Scan(&typ, &total, &critical); err != nil {
			return model.StatsSnapshot{}, fmt.Errorf("simulate: stats: %w", err)
		}
		st.AttackTypes[typ] = total
		st.Total += total
		st.Critical += critical
	}
	return st, rows.Err()
}

// Incident looks up a retained incident by ID. ok is false when the ID is
// unknown or already evicted.
func (s *Store) Incident(id int64) (inc Incident, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	err = s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, ip, country, attack_type, risk, lat, lon, status, summary, detail
		FROM alerts WHERE id = ?`, id).Scan(
		&inc.ID, &inc.Timestamp, &inc.IP, &inc.Country, &inc.Type, &inc.Risk,
		&inc.Lat, &inc.Lon, &inc.Status, &inc.Summary, &inc.Detail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Incident{}, false, nil
	}
	if err != nil {
		return Incident{}, false, fmt.Errorf("simulate: incident %d: %w", id, err)
	}
	return inc, true, nil
}

// MapPoints returns a point for every retained incident with a known
// location, oldest first.
func (s *Store) MapPoints() ([]model.MapPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT ip, lat, lon, risk
		FROM alerts
		WHERE NOT (lat = 0 AND lon = 0)
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("simulate: map points: %w", err)
	}
	defer rows.Close()

	points := []model.MapPoint{}
	for rows.Next() {
		var p model.MapPoint
		if err := rows.Scan(&p.IP, &p.Lat, &p.Lon, &p.Risk); err != nil {
			return nil, fmt.Errorf("simulate: map points: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Len reports how many incidents are retained.
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("simulate: len: %w", err)
	}
	return n, nil
}
