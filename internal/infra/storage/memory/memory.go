package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/infra/storage"
)

// NoteRepo implements storage.NoteRepository with an in-memory map, keyed by
// day. Used when neither a database nor a backend is configured, and in tests.
type NoteRepo struct {
	notes map[string]*domain.Note
	mu    sync.RWMutex
}

// NewNoteRepo creates an empty in-memory note repository.
func NewNoteRepo() *NoteRepo {
	return &NoteRepo{notes: make(map[string]*domain.Note)}
}

func (r *NoteRepo) Upsert(ctx context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *note
	if stored.ID == "" {
		if existing, ok := r.notes[stored.Day]; ok {
			stored.ID = existing.ID
		} else {
			stored.ID = uuid.New().String()
		}
	}
	stored.UpdatedAt = time.Now()
	r.notes[stored.Day] = &stored
	*note = stored
	return nil
}

func (r *NoteRepo) GetByDay(ctx context.Context, day string) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	note, ok := r.notes[day]
	if !ok {
		return nil, storage.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (r *NoteRepo) ListMonth(ctx context.Context, year int, month int) ([]*domain.Note, error) {
	prefix := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")

	r.mu.RLock()
	defer r.mu.RUnlock()

	var notes []*domain.Note
	for day, note := range r.notes {
		if strings.HasPrefix(day, prefix+"-") {
			copied := *note
			notes = append(notes, &copied)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Day < notes[j].Day })
	return notes, nil
}

func (r *NoteRepo) Delete(ctx context.Context, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[day]; !ok {
		return storage.ErrNoteNotFound
	}
	delete(r.notes, day)
	return nil
}
