package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/infra/storage"
)

// NoteRepo implements storage.NoteRepository using PostgreSQL.
type NoteRepo struct {
	db *DB
}

// NewNoteRepo creates a new PostgreSQL note repository.
func NewNoteRepo(db *DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// Upsert creates or replaces the note for its day.
func (r *NoteRepo) Upsert(ctx context.Context, note *domain.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	note.UpdatedAt = time.Now()

	const query = `
		INSERT INTO notes (id, day, text, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day) DO UPDATE
		SET text = EXCLUDED.text, updated_at = EXCLUDED.updated_at
		RETURNING id`
	var id string
	if err := r.db.QueryRowxContext(ctx, query, note.ID, note.Day, note.Text, note.UpdatedAt).Scan(&id); err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	note.ID = id
	return nil
}

// GetByDay retrieves the note for a day.
func (r *NoteRepo) GetByDay(ctx context.Context, day string) (*domain.Note, error) {
	var note domain.Note
	err := r.db.GetContext(ctx, &note,
		`SELECT id, day, text, updated_at FROM notes WHERE day = $1`, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

// ListMonth retrieves all notes within a month, ordered by day.
func (r *NoteRepo) ListMonth(ctx context.Context, year int, month int) ([]*domain.Note, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var notes []*domain.Note
	err := r.db.SelectContext(ctx, &notes,
		`SELECT id, day, text, updated_at FROM notes
		 WHERE day >= $1 AND day < $2
		 ORDER BY day`,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Delete removes the note for a day.
func (r *NoteRepo) Delete(ctx context.Context, day string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE day = $1`, day)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNoteNotFound
	}
	return nil
}
