package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
)

// InsertSchedule persists a new schedule record.
func (db *DB) InsertSchedule(s *models.Schedule) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := db.conn.Exec(`
		INSERT INTO schedules (id, title, date, time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Title, s.Date, s.Time, now, now)
	if err != nil {
		return fmt.Errorf("store: insert schedule: %w", err)
	}
	return nil
}

// ListSchedules returns all schedule records, newest first.
func (db *DB) ListSchedules() ([]models.Schedule, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, date, time, created_at, updated_at
		FROM schedules ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list schedules: %w", err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.Title, &s.Date, &s.Time, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSchedule loads one schedule record by id.
func (db *DB) GetSchedule(id string) (*models.Schedule, error) {
	var s models.Schedule
	err := db.conn.QueryRow(`
		SELECT id, title, date, time, created_at, updated_at
		FROM schedules WHERE id = ?`, id).
		Scan(&s.ID, &s.Title, &s.Date, &s.Time, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get schedule %s: %w", id, err)
	}
	return &s, nil
}

// DeleteSchedule removes a schedule record.
func (db *DB) DeleteSchedule(id string) error {
	res, err := db.conn.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
