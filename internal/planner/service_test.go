package planner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/infra/storage"
	"github.com/wlp-app/wlp/internal/infra/storage/memory"
	"github.com/wlp-app/wlp/internal/notify"
)

func TestSaveNoteRoundTrip(t *testing.T) {
	s := NewService(memory.NewNoteRepo(), nil)

	note, err := s.SaveNote(context.Background(), "2026-08-30", "dentist at nine")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if note.ID == "" {
		t.Error("saved note has no ID")
	}

	got, err := s.Note(context.Background(), "2026-08-30")
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if got.Text != "dentist at nine" {
		t.Errorf("unexpected text %q", got.Text)
	}

	// Saving the same day again replaces the text and keeps the ID.
	updated, err := s.SaveNote(context.Background(), "2026-08-30", "moved to ten")
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if updated.ID != note.ID {
		t.Errorf("upsert changed the ID: %q -> %q", note.ID, updated.ID)
	}
}

func TestSaveNoteValidation(t *testing.T) {
	s := NewService(memory.NewNoteRepo(), nil)

	cases := []struct {
		name string
		day  string
		text string
	}{
		{"empty text", "2026-08-30", ""},
		{"bad day format", "30/08/2026", "hello"},
		{"missing day", "", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SaveNote(context.Background(), tc.day, tc.text)
			var app *notify.AppError
			if !errors.As(err, &app) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if app.Kind != notify.KindSchema {
				t.Errorf("expected SCHEMA, got %s", app.Kind)
			}
		})
	}
}

func TestDeleteNote(t *testing.T) {
	s := NewService(memory.NewNoteRepo(), nil)

	if _, err := s.SaveNote(context.Background(), "2026-08-30", "x"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.DeleteNote(context.Background(), "2026-08-30"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Note(context.Background(), "2026-08-30"); !errors.Is(err, storage.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound after delete, got %v", err)
	}
	if err := s.DeleteNote(context.Background(), "2026-08-30"); !errors.Is(err, storage.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on second delete, got %v", err)
	}
}

func TestRefreshMonthPopulatesView(t *testing.T) {
	s := NewService(memory.NewNoteRepo(), nil)

	for _, day := range []string{"2026-08-02", "2026-08-15", "2026-09-01"} {
		if _, err := s.SaveNote(context.Background(), day, "note for "+day); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	started, err := s.RefreshMonth(context.Background(), 2026, 8)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !started {
		t.Fatal("refresh should have started")
	}

	notes := s.Month(2026, 8)
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes for 2026-08, got %d", len(notes))
	}
	if notes[0].Day != "2026-08-02" || notes[1].Day != "2026-08-15" {
		t.Errorf("notes not sorted by day: %+v", notes)
	}
	if s.Month(2026, 9) != nil {
		t.Error("unrefreshed month should be empty")
	}
}

// blockingRepo wraps the memory repo and parks ListMonth until released.
type blockingRepo struct {
	storage.NoteRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   int32
	mu      sync.Mutex
}

func (b *blockingRepo) ListMonth(ctx context.Context, year int, month int) ([]*domain.Note, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.NoteRepository.ListMonth(ctx, year, month)
}

func TestRefreshMonthDeduplicates(t *testing.T) {
	repo := &blockingRepo{
		NoteRepository: memory.NewNoteRepo(),
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	s := NewService(repo, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RefreshMonth(context.Background(), 2026, 8)
	}()

	<-repo.entered
	started, err := s.RefreshMonth(context.Background(), 2026, 8)
	if started || err != nil {
		t.Errorf("duplicate refresh should be skipped, got started=%v err=%v", started, err)
	}

	close(repo.release)
	<-done

	repo.mu.Lock()
	calls := repo.calls
	repo.mu.Unlock()
	if calls != 1 {
		t.Errorf("repository hit %d times for one month, expected 1", calls)
	}
}

func TestSaveInvalidatesMonthView(t *testing.T) {
	s := NewService(memory.NewNoteRepo(), nil)

	if _, err := s.SaveNote(context.Background(), "2026-08-02", "first"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := s.RefreshMonth(context.Background(), 2026, 8); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(s.Month(2026, 8)) != 1 {
		t.Fatal("view not populated")
	}

	if _, err := s.SaveNote(context.Background(), "2026-08-03", "second"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if s.Month(2026, 8) != nil {
		t.Error("write should invalidate the cached month view")
	}

	if _, err := s.RefreshMonth(context.Background(), 2026, 8); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(s.Month(2026, 8)) != 2 {
		t.Errorf("expected rebuilt view with 2 notes, got %d", len(s.Month(2026, 8)))
	}
}
