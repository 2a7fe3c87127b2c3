package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/infra/storage"
	"github.com/wlp-app/wlp/internal/notify"
	"github.com/wlp-app/wlp/internal/validate"
)

// Server is the status HTTP surface the rendering layer reads. It exposes
// the notification state (poll or SSE), the weather snapshot, note access,
// and the dismiss/retry actions. There is deliberately no endpoint that
// closes the offline notification: only restored connectivity does that.
type Server struct {
	app    *App
	server *http.Server
}

// NewServer creates the status server.
func NewServer(app *App, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		app: app,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /dismiss", s.handleDismiss)
	mux.HandleFunc("POST /retry", s.handleRetry)
	mux.HandleFunc("PUT /city", s.handleSetCity)
	mux.HandleFunc("GET /weather", s.handleWeather)
	mux.HandleFunc("POST /weather/refresh", s.handleWeatherRefresh)
	mux.HandleFunc("GET /notes", s.handleListNotes)
	mux.HandleFunc("PUT /notes/{day}", s.handleSaveNote)
	mux.HandleFunc("DELETE /notes/{day}", s.handleDeleteNote)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type stateResponse struct {
	Notifications notify.State            `json:"notifications"`
	Online        bool                    `json:"online"`
	City          domain.City             `json:"city"`
	Weather       *domain.WeatherSnapshot `json:"weather,omitempty"`
}

func (s *Server) snapshot() stateResponse {
	return stateResponse{
		Notifications: s.app.Center().Snapshot(),
		Online:        s.app.Monitor().Online(),
		City:          s.app.City(),
		Weather:       s.app.Weather().Latest(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleEvents streams notification state changes as server-sent events.
// Each event carries the full state, so a reconnecting client never has to
// replay history.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.app.Center().Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			raw, err := json.Marshal(s.snapshot())
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.app.Center().Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

// handleRetry runs the pending retry action, if any, plus the best-effort
// connectivity probe. Neither closes anything by itself.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	s.app.Monitor().Probe(ctx)
	s.app.Center().Retry(ctx)
	w.WriteHeader(http.StatusNoContent)
}

type cityRequest struct {
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"required,latitude"`
	Lon  float64 `json:"lon" validate:"required,longitude"`
}

func (s *Server) handleSetCity(w http.ResponseWriter, r *http.Request) {
	var req cityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, notify.NewAppError(notify.KindSchema, "city payload is not valid JSON", err), nil)
		return
	}
	if err := validate.Struct(&req); err != nil {
		s.fail(w, err, &notify.Options{Title: "Invalid city"})
		return
	}

	s.app.Weather().SetCity(domain.City{Name: req.Name, Lat: req.Lat, Lon: req.Lon})
	go s.app.RefreshWeather(context.Background())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	snap := s.app.Weather().Latest()
	if snap == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWeatherRefresh(w http.ResponseWriter, r *http.Request) {
	go s.app.RefreshWeather(context.Background())
	w.WriteHeader(http.StatusAccepted)
}

// handleListNotes refreshes and returns one month of notes. A refresh that
// finds the month already in flight just serves the current view.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		s.fail(w, notify.NewAppError(notify.KindSchema, "month must be YYYY-MM", err), nil)
		return
	}

	if _, err := s.app.Planner().RefreshMonth(r.Context(), year, month); err != nil {
		s.fail(w, err, &notify.Options{
			Retry: func(ctx context.Context) error {
				_, err := s.app.Planner().RefreshMonth(ctx, year, month)
				return err
			},
		})
		return
	}

	notes := s.app.Planner().Month(year, month)
	if notes == nil {
		notes = []*domain.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, notify.NewAppError(notify.KindSchema, "note payload is not valid JSON", err), nil)
		return
	}

	day := r.PathValue("day")
	note, err := s.app.Planner().SaveNote(r.Context(), day, req.Text)
	if err != nil {
		// A storage-level status failure means the note could not be created,
		// which has its own kind and error code; validation failures keep
		// their SCHEMA classification.
		var st *notify.StatusError
		if errors.As(err, &st) {
			s.fail(w, notify.NewAppError(notify.KindCreateFail,
				fmt.Sprintf("creation failed (%d)", st.Status), err), &notify.Options{
				Retry: func(ctx context.Context) error {
					_, err := s.app.Planner().SaveNote(ctx, day, req.Text)
					return err
				},
			})
			return
		}
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	err := s.app.Planner().DeleteNote(r.Context(), r.PathValue("day"))
	if errors.Is(err, storage.ErrNoteNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"online": s.app.Monitor().Online(),
	})
}

// fail routes a handler failure through the notification pipeline. The HTTP
// response itself stays terse: user-facing text lives on the notification
// surfaces, never in raw error bodies.
func (s *Server) fail(w http.ResponseWriter, err error, opts *notify.Options) {
	s.app.Center().ShowError(err, opts)
	var app *notify.AppError
	if errors.As(err, &app) && app.Kind == notify.KindSchema {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func parseMonth(value string) (int, int, error) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month %q", value)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", value)
	}
	return year, month, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
