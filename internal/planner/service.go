// Package planner owns calendar notes: saving, reading, and the deduplicated
// month refresh that rapid month navigation would otherwise race.
package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/fetch"
	"github.com/wlp-app/wlp/internal/infra/storage"
	"github.com/wlp-app/wlp/internal/validate"
)

// Service manages calendar notes on top of a note repository.
type Service struct {
	repo  storage.NoteRepository
	group *fetch.Group
	log   *slog.Logger

	mu     sync.RWMutex
	months map[string][]*domain.Note
}

// NewService creates a planner service.
func NewService(repo storage.NoteRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		group:  fetch.NewGroup("notes_month"),
		log:    log,
		months: make(map[string][]*domain.Note),
	}
}

// SaveNote validates and upserts the note for a day. Validation failures
// come back as SCHEMA errors listing the offending fields.
func (s *Service) SaveNote(ctx context.Context, day, text string) (*domain.Note, error) {
	note := &domain.Note{Day: day, Text: text}
	if err := validate.Struct(note); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, note); err != nil {
		return nil, err
	}
	s.invalidate(day)
	return note, nil
}

// Note returns the note for a day, or storage.ErrNoteNotFound.
func (s *Service) Note(ctx context.Context, day string) (*domain.Note, error) {
	return s.repo.GetByDay(ctx, day)
}

// DeleteNote removes the note for a day.
func (s *Service) DeleteNote(ctx context.Context, day string) error {
	if err := s.repo.Delete(ctx, day); err != nil {
		return err
	}
	s.invalidate(day)
	return nil
}

// Month returns the cached view for a month. Empty until RefreshMonth has
// completed for that month.
func (s *Service) Month(year int, month int) []*domain.Note {
	key := domain.MonthKey(year, time.Month(month))
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.months[key]
}

// RefreshMonth loads a month's notes from the repository. Concurrent calls
// for the same month collapse into one: while a "{year}-{month}" key is in
// flight, further refreshes for it return immediately without starting a
// second fetch. The repository error propagates to the caller unclassified.
func (s *Service) RefreshMonth(ctx context.Context, year int, month int) (bool, error) {
	key := domain.MonthKey(year, time.Month(month))
	return s.group.Do(key, func() error {
		notes, err := s.repo.ListMonth(ctx, year, month)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.months[key] = notes
		s.mu.Unlock()
		s.log.Debug("month refreshed", "month", key, "notes", len(notes))
		return nil
	})
}

// invalidate drops the cached view containing day so the next refresh
// rebuilds it.
func (s *Service) invalidate(day string) {
	if len(day) < 7 {
		return
	}
	key := day[:7]
	s.mu.Lock()
	delete(s.months, key)
	s.mu.Unlock()
}
