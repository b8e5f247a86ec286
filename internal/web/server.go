// Package web serves the calendar shell and the JSON API behind it.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/gesture"
	"github.com/xolan/hourcal/internal/service"
	"github.com/xolan/hourcal/internal/storage"
	"github.com/xolan/hourcal/internal/timeutil"
)

// maxBodySize bounds every JSON request body
const maxBodySize = 4096

//go:embed all:static
var embeddedStatic embed.FS

// Server exposes a CalendarService over HTTP.
type Server struct {
	cal *service.CalendarService
	log logrus.FieldLogger
	mux *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cal *service.CalendarService, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	s := &Server{
		cal: cal,
		log: log,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/month", s.handleMonth)
	s.mux.HandleFunc("GET /api/entries", s.handleEntries)
	s.mux.HandleFunc("GET /api/entries/{date}", s.handleGetEntry)
	s.mux.HandleFunc("PUT /api/entries/{date}", s.handlePutEntry)
	s.mux.HandleFunc("DELETE /api/entries/{date}", s.handleDeleteEntry)
	s.mux.HandleFunc("POST /api/days/{date}/press", s.handlePress)
	s.mux.HandleFunc("GET /api/prompt", s.handleGetPrompt)
	s.mux.HandleFunc("POST /api/prompt", s.handlePrompt)

	// Everything that is not the API is the embedded shell.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleMonth returns the grid of one month.
//
// GET /api/month?month=2025-03
//   - month: YYYY-MM or MM/YYYY, defaults to the month being viewed
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	m := s.cal.Month()
	if q := r.URL.Query().Get("month"); q != "" {
		parsed, err := timeutil.ParseMonth(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		m = parsed
	}
	writeJSON(w, http.StatusOK, s.cal.View(m))
}

func (s *Server) handleEntries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cal.Snapshot())
}

// entryResponse is the JSON shape of a single day.
type entryResponse struct {
	Date  string       `json:"date"`
	Entry *entry.Entry `json:"entry"`
	Label string       `json:"label,omitempty"`
}

func newEntryResponse(date string, e *entry.Entry) entryResponse {
	resp := entryResponse{Date: date, Entry: e}
	if e != nil {
		resp.Label = e.String()
	}
	return resp
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := timeutil.ParseKey(date); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, ok := s.cal.Get(date)
	if !ok {
		writeJSON(w, http.StatusOK, newEntryResponse(date, nil))
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(date, &e))
}

type putEntryRequest struct {
	Input string `json:"input"`
}

func (s *Server) handlePutEntry(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	var req putEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := s.cal.SetInput(date, req.Input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(date, e))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := s.cal.Set(date, nil); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pressRequest struct {
	Long bool `json:"long"`
}

// promptDTO is the JSON shape of the open hours prompt.
type promptDTO struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// dayResponse answers a gesture: the day after the change and the prompt, if one opened.
type dayResponse struct {
	entryResponse
	Prompt *promptDTO `json:"prompt,omitempty"`
}

func (s *Server) dayResponse(date string) dayResponse {
	resp := dayResponse{entryResponse: newEntryResponse(date, nil)}
	if e, ok := s.cal.Get(date); ok {
		resp.entryResponse = newEntryResponse(date, &e)
	}
	resp.Prompt = s.openPrompt()
	return resp
}

func (s *Server) openPrompt() *promptDTO {
	p, ok := s.cal.Prompt()
	if !ok {
		return nil
	}
	return &promptDTO{Date: p.Date, Value: p.Value}
}

// handlePress applies a completed gesture to a day.
//
// POST /api/days/2025-03-14/press {"long": false}
func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	var req pressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.cal.Press(date, req.Long); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.dayResponse(date))
}

type promptRequest struct {
	Action service.PromptAction `json:"action"`
	Value  int                  `json:"value"`
}

type promptResponse struct {
	Prompt *promptDTO `json:"prompt"`
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, promptResponse{Prompt: s.openPrompt()})
}

// handlePrompt drives the hours prompt.
//
// POST /api/prompt {"action": "increment"|"decrement"|"set"|"confirm"|"cancel", "value": 6}
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Action {
	case service.PromptIncrement, service.PromptDecrement, service.PromptSet,
		service.PromptConfirm, service.PromptCancel:
	default:
		writeError(w, http.StatusBadRequest, "unknown prompt action")
		return
	}
	if err := s.cal.ApplyPrompt(req.Action, req.Value); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: s.openPrompt()})
}

// writeServiceError maps calendar errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidDate), errors.Is(err, service.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gesture.ErrNoPrompt):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.WithError(err).Error("calendar update failed")
		writeError(w, http.StatusInternalServerError, "failed to save entry")
	}
}

// staticFileServer serves the embedded shell from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		s.log.WithError(err).Error("failed to initialize embedded static filesystem")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		// FileServer redirects /index.html to /, but the offline cache precaches both.
		if path == "/index.html" {
			serveIndex(w, r, sub)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, root fs.FS) {
	data, err := fs.ReadFile(root, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(data))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
