package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// SQLiteStore keeps raw markers, tracker events and bucket metadata.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) newID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS markers (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL UNIQUE,
		activity  TEXT NOT NULL,
		date_ms   REAL NOT NULL,
		goal_id   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_markers_date ON markers(date_ms);

	CREATE TABLE IF NOT EXISTS events (
		id           TEXT PRIMARY KEY,
		bucket_id    TEXT NOT NULL,
		bucket_type  TEXT NOT NULL,
		ts_ms        REAL NOT NULL,
		duration_s   REAL NOT NULL,
		display_name TEXT,
		event_data   TEXT,
		color        TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_ms);

	CREATE TABLE IF NOT EXISTS buckets (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		is_visible INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddMarker records that activity started at the given instant. The marker
// id is a ULID so ids sort by creation.
func (s *SQLiteStore) AddMarker(ctx context.Context, activity string, at time.Time, goalID string) (*model.RawManualMarker, error) {
	if activity == "" {
		return nil, fmt.Errorf("activity is required")
	}
	m := model.RawManualMarker{
		ID:               s.newID(time.Now()),
		Activity:         activity,
		Timestamp:        model.EpochMillis(at.UnixMilli()),
		ClassificationID: goalID,
	}
	if _, err := s.ImportMarkers(ctx, []model.RawManualMarker{m}); err != nil {
		return nil, err
	}
	return &m, nil
}

// ImportMarkers appends markers in the given order. Markers without an id get
// one; markers whose id already exists are skipped so imports can be re-run.
func (s *SQLiteStore) ImportMarkers(ctx context.Context, markers []model.RawManualMarker) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, m := range markers {
		id := m.ID
		if id == "" {
			id = s.newID(time.UnixMilli(m.Timestamp.Millis()))
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO markers (id, activity, date_ms, goal_id) VALUES (?, ?, ?, ?)`,
			id, m.Activity, float64(m.Timestamp), nullable(m.ClassificationID))
		if err != nil {
			return 0, fmt.Errorf("insert marker: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListMarkers returns every marker in authored (insertion) order.
func (s *SQLiteStore) ListMarkers(ctx context.Context) ([]model.RawManualMarker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, activity, date_ms, goal_id FROM markers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	var markers []model.RawManualMarker
	for rows.Next() {
		var m model.RawManualMarker
		var date float64
		var goal sql.NullString
		if err := rows.Scan(&m.ID, &m.Activity, &date, &goal); err != nil {
			return nil, err
		}
		m.Timestamp = model.EpochMillis(date)
		m.ClassificationID = goal.String
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// DeleteMarker removes a marker by id and reports whether it existed.
func (s *SQLiteStore) DeleteMarker(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete marker: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ImportEvents upserts tracker events by id.
func (s *SQLiteStore) ImportEvents(ctx context.Context, events []model.RawPassiveEvent) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, bucket_id, bucket_type, ts_ms, duration_s, display_name, event_data, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   bucket_id = excluded.bucket_id, bucket_type = excluded.bucket_type,
		   ts_ms = excluded.ts_ms, duration_s = excluded.duration_s,
		   display_name = excluded.display_name, event_data = excluded.event_data,
		   color = excluded.color`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, ev := range events {
		if ev.ID == "" {
			return 0, fmt.Errorf("event without id in bucket %q", ev.SourceID)
		}
		var payload *string
		if len(ev.Payload) > 0 {
			data, err := sonic.ConfigStd.MarshalToString(ev.Payload)
			if err != nil {
				return 0, fmt.Errorf("encode event %s data: %w", ev.ID, err)
			}
			payload = &data
		}
		if _, err := stmt.ExecContext(ctx, ev.ID, ev.SourceID, ev.SourceClassification,
			float64(ev.Timestamp), ev.DurationSeconds, nullable(ev.DisplayName), payload, nullable(ev.Color)); err != nil {
			return 0, fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(events), nil
}

// ListEvents returns the events overlapping [fromMs, toMs), ordered by
// timestamp then id. A zero toMs means no upper bound.
func (s *SQLiteStore) ListEvents(ctx context.Context, fromMs, toMs int64) ([]model.RawPassiveEvent, error) {
	query := `SELECT id, bucket_id, bucket_type, ts_ms, duration_s, display_name, event_data, color
		FROM events WHERE ts_ms + duration_s * 1000 >= ?`
	args := []interface{}{fromMs}
	if toMs > 0 {
		query += ` AND ts_ms < ?`
		args = append(args, toMs)
	}
	query += ` ORDER BY ts_ms, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.RawPassiveEvent
	for rows.Next() {
		var ev model.RawPassiveEvent
		var ts float64
		var name, data, color sql.NullString
		if err := rows.Scan(&ev.ID, &ev.SourceID, &ev.SourceClassification, &ts,
			&ev.DurationSeconds, &name, &data, &color); err != nil {
			return nil, err
		}
		ev.Timestamp = model.EpochMillis(ts)
		ev.DisplayName = name.String
		ev.Color = color.String
		if data.Valid && data.String != "" {
			if err := sonic.UnmarshalString(data.String, &ev.Payload); err != nil {
				return nil, fmt.Errorf("decode event %s data: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// UpsertBucket stores bucket metadata.
func (s *SQLiteStore) UpsertBucket(ctx context.Context, b model.Bucket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO buckets (id, type, is_visible) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET type = excluded.type, is_visible = excluded.is_visible`,
		b.ID, b.Type, b.IsVisible)
	if err != nil {
		return fmt.Errorf("upsert bucket %s: %w", b.ID, err)
	}
	return nil
}

// ListBuckets returns all buckets ordered by id.
func (s *SQLiteStore) ListBuckets(ctx context.Context) ([]model.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, is_visible FROM buckets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	var buckets []model.Bucket
	for rows.Next() {
		var b model.Bucket
		if err := rows.Scan(&b.ID, &b.Type, &b.IsVisible); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Counts returns the number of stored markers, events and buckets.
func (s *SQLiteStore) Counts(ctx context.Context) (markers, events, buckets int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM markers), (SELECT COUNT(*) FROM events), (SELECT COUNT(*) FROM buckets)`).
		Scan(&markers, &events, &buckets)
	return
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
