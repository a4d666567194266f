package sources

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/randalmurphal/drivealert/pkg/drivealert/markers"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// SQLiteStore is the local speed camera database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a camera database.
// The path should be a file path (e.g., "./cameras.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cameras (
			key TEXT PRIMARY KEY,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			name TEXT,
			direction TEXT,
			maxspeed TEXT,
			maxspeed_conditional TEXT,
			description TEXT
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_cameras_position
		ON cameras(lat, lon)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert adds or replaces cameras in one transaction.
func (s *SQLiteStore) Insert(ctx context.Context, cams ...Camera) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cameras (key, lat, lon, name, direction, maxspeed, maxspeed_conditional, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			lat = excluded.lat,
			lon = excluded.lon,
			name = excluded.name,
			direction = excluded.direction,
			maxspeed = excluded.maxspeed,
			maxspeed_conditional = excluded.maxspeed_conditional,
			description = excluded.description
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cams {
		if _, err := stmt.ExecContext(ctx, c.Key, c.Lat, c.Lon,
			nullString(c.Name), nullString(c.Direction), nullString(c.MaxSpeed),
			nullString(c.MaxSpeedConditional), nullString(c.Description),
		); err != nil {
			return fmt.Errorf("insert camera %s: %w", c.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// InBounds returns every camera inside b, ordered by key.
func (s *SQLiteStore) InBounds(ctx context.Context, b Bounds) ([]Camera, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, lat, lon, name, direction, maxspeed, maxspeed_conditional, description
		FROM cameras
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
		ORDER BY key
	`, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("query cameras: %w", err)
	}
	defer rows.Close()

	var cams []Camera
	for rows.Next() {
		var c Camera
		var name, direction, maxspeed, conditional, description sql.NullString
		if err := rows.Scan(&c.Key, &c.Lat, &c.Lon, &name, &direction, &maxspeed, &conditional, &description); err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		c.Name = name.String
		c.Direction = direction.String
		c.MaxSpeed = maxspeed.String
		c.MaxSpeedConditional = conditional.String
		c.Description = description.String
		cams = append(cams, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cameras: %w", err)
	}
	return cams, nil
}

// Delete removes a camera by key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM cameras WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete camera: %w", err)
	}
	return nil
}

// Publish produces the cameras inside b as one batch on q. Nothing is
// produced when the box is empty. Returns the number of cameras published.
func (s *SQLiteStore) Publish(ctx context.Context, q *queue.Queue[markers.AttributeMap], b Bounds) (int, error) {
	cams, err := s.InBounds(ctx, b)
	if err != nil {
		return 0, err
	}
	if len(cams) == 0 {
		return 0, nil
	}
	q.Produce(toAttributeMap(cams))
	return len(cams), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
