// Package http wires the REST surface of readaloud.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"readaloud/internal/documents"
)

const maxUploadBytes = 64 << 20

// Server routes HTTP requests to the document service.
type Server struct {
	logger   *slog.Logger
	docs     *documents.Service
	voice    string
	mediaDir string
}

// NewServer constructs a chi router implementing http.Handler.
func NewServer(logger *slog.Logger, service *documents.Service, voice, mediaDir string) http.Handler {
	srv := &Server{
		logger:   logger,
		docs:     service,
		voice:    voice,
		mediaDir: mediaDir,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(srv.mediaDir))))

	r.Post("/documents", srv.handleCreateDocument)
	r.Get("/documents", srv.handleListDocuments)
	r.Get("/documents/{id}", srv.handleGetDocument)
	r.Delete("/documents/{id}", srv.handleDeleteDocument)
	r.Post("/documents/{id}/synthesize", srv.handleSynthesize)
	r.Post("/documents/{id}/align", srv.handleAlign)

	return r
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.clientError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.serverError(w, err)
		return
	}

	doc, err := s.docs.CreateDocument(r.Context(), documents.CreateDocumentInput{
		Title: r.FormValue("title"),
		Type:  documents.Type(r.FormValue("type")),
		Data:  data,
	})
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, documentView(doc))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter := documents.Filter{
		Limit:  intQuery(r, "limit"),
		Offset: intQuery(r, "offset"),
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ, err := documents.ParseType(raw)
		if err != nil {
			s.clientError(w, http.StatusBadRequest, "unknown document type")
			return
		}
		filter.Type = &typ
	}

	docs, err := s.docs.ListDocuments(r.Context(), filter)
	if err != nil {
		s.serverError(w, err)
		return
	}

	views := make([]documentJSON, 0, len(docs))
	for _, doc := range docs {
		views = append(views, documentView(doc))
	}
	s.respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.documentID(w, r)
	if !ok {
		return
	}

	doc, err := s.docs.GetDocument(r.Context(), id)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, documentView(doc))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.documentID(w, r)
	if !ok {
		return
	}

	if err := s.docs.DeleteDocument(r.Context(), id); err != nil {
		s.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	id, ok := s.documentID(w, r)
	if !ok {
		return
	}

	voice := r.FormValue("voice")
	if voice == "" {
		voice = s.voice
	}

	report, err := s.docs.SynthesizeDocument(r.Context(), id, voice)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, synthesisView(report))
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.documentID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.clientError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "audio field is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.serverError(w, err)
		return
	}

	input := documents.AlignInput{
		Audio:         audio,
		TotalDuration: secondsForm(r, "duration_seconds"),
		SegmentCount:  intForm(r, "segment_count"),
		SegmentLength: secondsForm(r, "segment_seconds"),
	}

	report, err := s.docs.AlignDocument(r.Context(), id, input)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, alignView(report))
}

func (s *Server) documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "invalid document id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, documents.ErrNotFound):
		s.clientError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, documents.ErrUnsupportedType):
		s.clientError(w, http.StatusUnsupportedMediaType, "unsupported document type")
	case errors.Is(err, documents.ErrInvalidInput):
		s.clientError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, documents.ErrParse):
		s.clientError(w, http.StatusUnprocessableEntity, "could not parse document")
	default:
		s.serverError(w, err)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", slog.String("error", err.Error()))
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request error", slog.String("error", err.Error()))
	s.respondJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
}

func (s *Server) clientError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorJSON{Error: msg})
}

func intQuery(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func intForm(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.FormValue(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func secondsForm(r *http.Request, key string) time.Duration {
	v, err := strconv.ParseFloat(r.FormValue(key), 64)
	if err != nil || v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}
