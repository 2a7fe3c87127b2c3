package storage

import (
	"context"
	"errors"

	"github.com/wlp-app/wlp/internal/core/domain"
)

var (
	// ErrNoteNotFound is returned when a note doesn't exist.
	ErrNoteNotFound = errors.New("note not found")
)

// NoteRepository handles calendar note storage operations. Implementations
// exist for PostgreSQL (local mode), the remote planner backend, and memory.
type NoteRepository interface {
	// Upsert creates or replaces the note for its day.
	Upsert(ctx context.Context, note *domain.Note) error

	// GetByDay retrieves the note for a day (YYYY-MM-DD).
	GetByDay(ctx context.Context, day string) (*domain.Note, error)

	// ListMonth retrieves all notes within a month, ordered by day.
	ListMonth(ctx context.Context, year int, month int) ([]*domain.Note, error)

	// Delete removes the note for a day.
	Delete(ctx context.Context, day string) error
}
