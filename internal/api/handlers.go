// Package api exposes the lifecycle commands over a thin REST surface. Each
// endpoint maps 1:1 to a transition; all business rules live in the lifecycle
// service.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/newsdesk/newsroom/internal/auth"
	"github.com/newsdesk/newsroom/internal/domain"
	"github.com/newsdesk/newsroom/internal/importer"
	"github.com/newsdesk/newsroom/internal/lifecycle"

	"github.com/google/uuid"
)

const maxUploadBytes = 20 << 20

// Server bundles the HTTP handlers.
type Server struct {
	lifecycle *lifecycle.Service
	importer  *importer.Service
}

// NewServer creates the handler set.
func NewServer(lc *lifecycle.Service, imp *importer.Service) *Server {
	return &Server{lifecycle: lc, importer: imp}
}

// Routes builds the request mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/news", s.handleCreate)
	mux.HandleFunc("GET /api/news", s.handleList)
	mux.HandleFunc("GET /api/news/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/news/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/news/{id}", s.handleDelete)
	mux.HandleFunc("PATCH /api/news/{id}/submit", s.handleSubmit)
	mux.HandleFunc("PATCH /api/news/{id}/approve", s.handleApprove)
	mux.HandleFunc("PATCH /api/news/{id}/reject", s.handleReject)
	mux.HandleFunc("GET /api/news/{id}/versions", s.handleVersions)
	mux.HandleFunc("PATCH /api/news/{id}/rollback/{versionId}", s.handleRollback)
	mux.HandleFunc("POST /api/news/import", s.handleImport)

	return mux
}

func requirePrincipal(r *http.Request) (domain.Principal, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return domain.Principal{}, fmt.Errorf("%w: credential required", domain.ErrUnauthenticated)
	}
	return p, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return id, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := decodeCreateRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	article, err := s.lifecycle.Create(r.Context(), p, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func decodeCreateRequest(r *http.Request) (lifecycle.CreateRequest, error) {
	if mediaType(r) == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return lifecycle.CreateRequest{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		req := lifecycle.CreateRequest{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Tags:    r.FormValue("tags"),
		}
		file, header, err := r.FormFile("document")
		if err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
			if readErr != nil {
				return lifecycle.CreateRequest{}, fmt.Errorf("%w: read attachment: %v", domain.ErrValidation, readErr)
			}
			req.Document = data
			req.ContentType = header.Header.Get("Content-Type")
		}
		return req, nil
	}

	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Tags    string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return lifecycle.CreateRequest{}, fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}
	return lifecycle.CreateRequest{Title: body.Title, Content: body.Content, Tags: body.Tags}, nil
}

func mediaType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	for i := 0; i < len(contentType); i++ {
		if contentType[i] == ';' {
			return contentType[:i]
		}
	}
	return contentType
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var viewer *domain.Principal
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		viewer = &p
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	articles, total, err := s.lifecycle.List(r.Context(), viewer, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":        articles,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var viewer *domain.Principal
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		viewer = &p
	}

	article, err := s.lifecycle.Get(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Tags    *string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body", domain.ErrValidation))
		return
	}

	article, err := s.lifecycle.Update(r.Context(), p, id, lifecycle.UpdateRequest{
		Title:   body.Title,
		Content: body.Content,
		Tags:    body.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.lifecycle.Delete(r.Context(), p, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "news deleted successfully"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(p domain.Principal, id uuid.UUID) (domain.Article, error) {
		return s.lifecycle.Submit(r.Context(), p, id)
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PublishedAt *time.Time `json:"publishedAt"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, fmt.Errorf("%w: invalid JSON body", domain.ErrValidation))
			return
		}
	}

	s.transition(w, r, func(p domain.Principal, id uuid.UUID) (domain.Article, error) {
		return s.lifecycle.Approve(r.Context(), p, id, body.PublishedAt)
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(p domain.Principal, id uuid.UUID) (domain.Article, error) {
		return s.lifecycle.Reject(r.Context(), p, id)
	})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, apply func(domain.Principal, uuid.UUID) (domain.Article, error)) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	article, err := apply(p, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	versions, err := s.lifecycle.Versions(r.Context(), p, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	versionID, err := pathID(r, "versionId")
	if err != nil {
		writeError(w, err)
		return
	}

	article, err := s.lifecycle.Rollback(r.Context(), p, id, versionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	p, err := requirePrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: file is required", domain.ErrValidation))
		return
	}
	defer file.Close()

	summary, err := s.importer.Import(r.Context(), p, importer.Request{
		FileName: header.Filename,
		Data:     io.LimitReader(file, maxUploadBytes),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
