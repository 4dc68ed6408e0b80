// Package store persists runs, phase artifacts, timeline events, and niche
// profiles in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/copyforge/copyforge/internal/immersion"
)

// Store provides persistence for runs and their artifacts.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// RunRecord is one generation run as persisted.
type RunRecord struct {
	ID         int64
	CreatedAt  string
	Channel    string
	Topic      string
	Audience   string
	Goal       string
	Status     string
	Score      int
	BestEffort bool
	Attempts   int
}

// ArtifactRecord is one persisted phase artifact, payload kept as raw JSON.
type ArtifactRecord struct {
	RunID     int64
	Phase     string
	Payload   json.RawMessage
	CreatedAt string
}

// EventRecord is one timeline entry for a run.
type EventRecord struct {
	RunID   int64
	Seq     int
	TS      string
	Kind    string
	Message string
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateRun inserts the run record and a run_started event, returning the new
// run id.
func (s *Store) CreateRun(ctx context.Context, channel, topic, audience, goal string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin create run: %w", err)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO runs(created_at, channel, topic, audience, goal, status)
		VALUES(?, ?, ?, ?, ?, ?)`,
		now(), channel, topic, audience, goal, "running")
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read run id: %w", err)
	}
	if err := insertEvent(ctx, tx, id, "run_started", "run started"); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create run: %w", err)
	}
	return id, nil
}

// FinishRun records the terminal status and scoring of a run.
func (s *Store) FinishRun(ctx context.Context, id int64, status string, score, attempts int, bestEffort bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE runs SET status=?, score=?, attempts=?, best_effort=? WHERE id=?`,
		status, score, attempts, boolInt(bestEffort), id); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SaveArtifact upserts one phase artifact as JSON.
func (s *Store) SaveArtifact(ctx context.Context, runID int64, phase string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s artifact: %w", phase, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO artifacts(run_id, phase, payload_json, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(run_id, phase) DO UPDATE SET payload_json=excluded.payload_json, created_at=excluded.created_at`,
		runID, phase, string(data), now()); err != nil {
		return fmt.Errorf("save %s artifact: %w", phase, err)
	}
	return nil
}

// AddEvent appends a timeline event for a run.
func (s *Store) AddEvent(ctx context.Context, runID int64, kind, message string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin add event: %w", err)
	}
	if err := insertEvent(ctx, tx, runID, kind, message); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add event: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, runID int64, kind, message string) error {
	var seq int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events WHERE run_id=?`, runID)
	if err := row.Scan(&seq); err != nil {
		return fmt.Errorf("read event seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO events(run_id, seq, ts, kind, message) VALUES(?, ?, ?, ?, ?)`,
		runID, seq+1, now(), kind, message); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetRun returns one run, or sql.ErrNoRows when missing.
func (s *Store) GetRun(ctx context.Context, id int64) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at, channel, topic, audience, goal, status, score, best_effort, attempts
		FROM runs WHERE id=?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, channel, topic, audience, goal, status, score, best_effort, attempts
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		rec        RunRecord
		bestEffort int
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.Channel, &rec.Topic, &rec.Audience,
		&rec.Goal, &rec.Status, &rec.Score, &bestEffort, &rec.Attempts); err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	rec.BestEffort = bestEffort != 0
	return rec, nil
}

// GetArtifact returns one phase artifact for a run, or sql.ErrNoRows.
func (s *Store) GetArtifact(ctx context.Context, runID int64, phase string) (ArtifactRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, phase, payload_json, created_at
		FROM artifacts WHERE run_id=? AND phase=?`, runID, phase)
	var (
		rec     ArtifactRecord
		payload string
	)
	if err := row.Scan(&rec.RunID, &rec.Phase, &payload, &rec.CreatedAt); err != nil {
		return ArtifactRecord{}, fmt.Errorf("get artifact: %w", err)
	}
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

// ListArtifacts returns all artifacts for a run in phase insertion order.
func (s *Store) ListArtifacts(ctx context.Context, runID int64) ([]ArtifactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, phase, payload_json, created_at
		FROM artifacts WHERE run_id=? ORDER BY created_at, phase`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactRecord
	for rows.Next() {
		var (
			rec     ArtifactRecord
			payload string
		)
		if err := rows.Scan(&rec.RunID, &rec.Phase, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEvents returns a run's timeline in sequence order.
func (s *Store) ListEvents(ctx context.Context, runID int64) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, seq, ts, kind, message
		FROM events WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.TS, &rec.Kind, &rec.Message); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveProfile upserts a niche profile keyed by its source URL.
func (s *Store) SaveProfile(ctx context.Context, profile *immersion.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO profiles(source_url, payload_json, created_at)
		VALUES(?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET payload_json=excluded.payload_json, created_at=excluded.created_at`,
		profile.SourceURL, string(data), now()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile stored for sourceURL, or sql.ErrNoRows.
func (s *Store) GetProfile(ctx context.Context, sourceURL string) (*immersion.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload_json FROM profiles WHERE source_url=?`, sourceURL)
	var payload string
	if err := row.Scan(&payload); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var profile immersion.Profile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

// ListProfiles returns every stored profile's source URL, newest first.
func (s *Store) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_url FROM profiles ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, url)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
