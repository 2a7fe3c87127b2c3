package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/infra/storage"
	"github.com/wlp-app/wlp/internal/notify"
)

// NoteRepo implements storage.NoteRepository against the remote backend.
type NoteRepo struct {
	client *Client
}

// NewNoteRepo creates a backend-backed note repository.
func NewNoteRepo(client *Client) *NoteRepo {
	return &NoteRepo{client: client}
}

func (r *NoteRepo) Upsert(ctx context.Context, note *domain.Note) error {
	var stored domain.Note
	err := r.client.do(ctx, http.MethodPut, "/notes/"+note.Day, note, &stored)
	r.client.record("note_upsert", err)
	if err != nil {
		return err
	}
	*note = stored
	return nil
}

func (r *NoteRepo) GetByDay(ctx context.Context, day string) (*domain.Note, error) {
	var note domain.Note
	err := r.client.do(ctx, http.MethodGet, "/notes/"+day, nil, &note)
	r.client.record("note_get", err)
	if isNotFound(err) {
		return nil, storage.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepo) ListMonth(ctx context.Context, year int, month int) ([]*domain.Note, error) {
	path := fmt.Sprintf("/notes?month=%s",
		time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))

	var notes []*domain.Note
	err := r.client.do(ctx, http.MethodGet, path, nil, &notes)
	r.client.record("note_list", err)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteRepo) Delete(ctx context.Context, day string) error {
	err := r.client.do(ctx, http.MethodDelete, "/notes/"+day, nil, nil)
	r.client.record("note_delete", err)
	if isNotFound(err) {
		return storage.ErrNoteNotFound
	}
	return err
}

func isNotFound(err error) bool {
	var st *notify.StatusError
	return errors.As(err, &st) && st.Status == http.StatusNotFound
}
