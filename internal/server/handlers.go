package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/pipeline"
	"github.com/jonathan/resume-extractor/internal/types"
)

// maxBodyBytes caps the size of an analyze request.
const maxBodyBytes = 5 << 20

// AnalyzeRequest represents the request body for /analyze
type AnalyzeRequest struct {
	ID    string `json:"id,omitempty" validate:"omitempty,max=128"`
	Text  string `json:"text" validate:"required"`
	Store bool   `json:"store,omitempty"`
}

// SkillsResponse represents the response for /skills
type SkillsResponse struct {
	Skills []string `json:"skills"`
}

// decodeAnalyzeRequest reads and validates the request body. A missing id is replaced
// with a random one.
func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, error) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Store && s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return &req, nil
}

// handleAnalyze analyzes the posted text. With store set the analysis is persisted and
// the stored row is returned instead of the bare record.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyzeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	record, err := s.analyzer.Analyze(r.Context(), req.ID, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !req.Store {
		w.Header().Set("X-Resume-ID", req.ID)
		s.jsonResponse(w, http.StatusOK, record)
		return
	}

	analysis, err := s.save(r, req.ID, record)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, analysis)
}

// handleAnalyzeStream analyzes the posted text and streams stage progress via SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyzeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := pipeline.ContextWithProgress(r.Context(), func(event pipeline.ProgressEvent) {
		if err := sse.WriteStage(event); err != nil {
			s.logger.Warn().Err(err).Msg("error writing SSE event")
		}
	})

	record, err := s.analyzer.Analyze(ctx, req.ID, req.Text)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	if req.Store {
		if _, err := s.save(r, req.ID, record); err != nil {
			s.logger.Error().Err(err).Str("resume_id", req.ID).Msg("failed to store streamed analysis")
			sse.WriteError("failed to store analysis")
			return
		}
	}

	if err := sse.WriteResult(record); err != nil {
		s.logger.Warn().Err(err).Msg("error writing SSE result")
		return
	}
	sse.WriteComplete(req.ID, "completed")
}

func (s *Server) save(r *http.Request, resumeID string, record *types.ResumeRecord) (*db.Analysis, error) {
	id, err := s.store.SaveAnalysis(r.Context(), resumeID, record)
	if err != nil {
		return nil, err
	}
	return &db.Analysis{
		ID:          id,
		ResumeID:    resumeID,
		Record:      *record,
		Tags:        record.Tags,
		ProcessedAt: record.ProcessedAt,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// handleGetAnalysis returns the most recent stored analysis of a resume
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}
	resumeID := r.PathValue("id")

	analysis, err := s.store.GetLatestAnalysis(r.Context(), resumeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if analysis == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("no analysis for %s", resumeID))
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

// handleListAnalyses returns the stored analyses of a resume, newest first
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	analyses, err := s.store.ListAnalyses(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if analyses == nil {
		analyses = []db.Analysis{}
	}
	s.jsonResponse(w, http.StatusOK, analyses)
}

// handleSkills returns every skill tracked so far
func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, SkillsResponse{Skills: s.analyzer.Registry().Global()})
}

// handleSkillDocuments returns the tracked skills of every analyzed document
func (s *Server) handleSkillDocuments(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.analyzer.Registry().Documents())
}

// handleFilterSkills returns the documents holding all requested skills.
// Skills may be repeated (?skill=a&skill=b) or comma separated (?skill=a,b).
func (s *Server) handleFilterSkills(w http.ResponseWriter, r *http.Request) {
	var required []string
	for _, v := range r.URL.Query()["skill"] {
		required = append(required, strings.Split(v, ",")...)
	}
	s.jsonResponse(w, http.StatusOK, s.analyzer.Registry().MatchAll(required))
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: strings.ToLower(ve.Field()), Message: "failed " + ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}
