package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	smartrecruitErrors "smartrecruit/internal/errors"
	"smartrecruit/internal/observability"
	"smartrecruit/internal/scoring"
	"smartrecruit/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

// createJobHandler registers a job posting
func (s *Server) createJobHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("smartrecruit.api")
		ctx, span := tracer.Start(ctx, "api.create_job")
		defer span.End()

		var req JobInput
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeErrorResponse(w, "Missing title", "title field is required", http.StatusBadRequest)
			return
		}

		job := &store.Job{
			Title:               req.Title,
			Description:         req.Description,
			OfferDescription:    req.OfferDescription,
			Skills:              req.Skills,
			Missions:            req.Missions,
			ProfileRequirements: req.ProfileRequirements,
		}
		if err := s.Store.CreateJob(ctx, job); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to create job", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(attribute.String("job.id", job.ID))
		writeJSON(w, http.StatusCreated, job)
	}
}

// createCVHandler registers a candidate document
func (s *Server) createCVHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("smartrecruit.api")
		ctx, span := tracer.Start(ctx, "api.create_cv")
		defer span.End()

		var req CVInput
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeErrorResponse(w, "Missing text", "text field is required", http.StatusBadRequest)
			return
		}

		cv := &store.CV{CandidateName: req.CandidateName, Text: req.Text}
		if err := s.Store.CreateCV(ctx, cv); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to create cv", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(attribute.String("cv.id", cv.ID))
		writeJSON(w, http.StatusCreated, cv)
	}
}

// createApplicationHandler creates an application and launches background
// scoring for it
func (s *Server) createApplicationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("smartrecruit.api")
		ctx, span := tracer.Start(ctx, "api.create_application")
		defer span.End()

		var req ApplicationRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if req.CVID == "" || req.JobID == "" {
			writeErrorResponse(w, "Missing identifiers", "cvId and jobId fields are required", http.StatusBadRequest)
			return
		}

		app, err := s.Store.CreateApplication(ctx, req.CVID, req.JobID)
		if err != nil {
			span.RecordError(err)
			if store.IsNotFound(err) {
				writeErrorResponse(w, "Unknown cv or job", err.Error(), http.StatusNotFound)
				return
			}
			writeErrorResponse(w, "Failed to create application", err.Error(), http.StatusInternalServerError)
			return
		}

		// Scoring runs in its own goroutine; the response does not wait
		s.worker.Enqueue(app.ID)

		span.SetAttributes(
			attribute.String("application.id", app.ID),
			attribute.String("job.id", app.JobID),
		)
		writeJSON(w, http.StatusCreated, app)
	}
}

// getApplicationHandler returns an application with its score when available
func (s *Server) getApplicationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("smartrecruit.api")
		ctx, span := tracer.Start(ctx, "api.get_application")
		defer span.End()

		app, err := s.Store.GetApplication(ctx, r.PathValue("id"))
		if err != nil {
			span.RecordError(err)
			if store.IsNotFound(err) {
				writeErrorResponse(w, "Application not found", err.Error(), http.StatusNotFound)
				return
			}
			writeErrorResponse(w, "Failed to load application", err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, app)
	}
}

// createScoreHandler scores a raw cv text against an ad-hoc job synchronously
func (s *Server) createScoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("smartrecruit.api")
		ctx, span := tracer.Start(ctx, "api.score")
		defer span.End()

		var req ScoreRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.CVText) == "" {
			writeErrorResponse(w, "Missing cv text", "cvText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Job.Title) == "" {
			writeErrorResponse(w, "Missing job title", "job.title field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.cv_length", len(req.CVText)),
			attribute.String("operation", "score"),
		)

		job := &store.Job{
			Title:               req.Job.Title,
			Description:         req.Job.Description,
			OfferDescription:    req.Job.OfferDescription,
			Skills:              req.Job.Skills,
			Missions:            req.Job.Missions,
			ProfileRequirements: req.Job.ProfileRequirements,
		}

		var result *scoring.Result
		err := om.GetMetrics().TrackOracleOperation(ctx, "score", func(ctx context.Context) *observability.OracleOperationResult {
			var opErr error
			result, opErr = s.worker.ScoreJob(ctx, req.CVText, job)
			return &observability.OracleOperationResult{Error: opErr}
		}, om)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "oracle"))
			writeErrorResponse(w, "Failed to score", err.Error(), scoringStatus(err))
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("score.final", result.FinalScore),
		)
		writeJSON(w, http.StatusOK, result)
	}
}

// createDebugScoreHandler recomputes a score breakdown without persisting
func (s *Server) createDebugScoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("smartrecruit.api")
		ctx, span := tracer.Start(ctx, "api.debug_score")
		defer span.End()

		cvID := r.URL.Query().Get("cv_id")
		jobID := r.URL.Query().Get("job_id")
		if cvID == "" || jobID == "" {
			writeErrorResponse(w, "Missing identifiers", "cv_id and job_id query parameters are required", http.StatusBadRequest)
			return
		}

		inspection, err := s.worker.Inspect(ctx, cvID, jobID)
		if err != nil {
			span.RecordError(err)
			if store.IsNotFound(err) {
				writeErrorResponse(w, "Unknown cv or job", err.Error(), http.StatusNotFound)
				return
			}
			writeErrorResponse(w, "Failed to inspect score", err.Error(), scoringStatus(err))
			return
		}

		span.SetAttributes(
			attribute.Float64("score.final", inspection.FinalScore),
			attribute.String("score.penalty_tier", inspection.Derived.PenaltyTier),
		)
		writeJSON(w, http.StatusOK, inspection)
	}
}

// scoringStatus maps scoring errors to HTTP status codes
func scoringStatus(err error) int {
	var appErr *smartrecruitErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case smartrecruitErrors.ErrCodeOracleTimeout:
			return http.StatusGatewayTimeout
		case smartrecruitErrors.ErrCodeOracleFailed:
			return http.StatusBadGateway
		case smartrecruitErrors.ErrCodeInputUnavailable, smartrecruitErrors.ErrCodeNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
