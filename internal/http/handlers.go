package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
	"github.com/fyrsmithlabs/contentgate/internal/report"
	"github.com/fyrsmithlabs/contentgate/internal/telemetry"
)

// LifecycleRequest carries the per-request lifecycle options. Unset
// options fall back to the server defaults.
type LifecycleRequest struct {
	Phases  []string `json:"phases,omitempty" validate:"omitempty,dive,oneof=schema audit quality"`
	Mode    string   `json:"mode,omitempty" validate:"omitempty,oneof=basic enhanced research-grade audit"`
	AutoFix *bool    `json:"auto_fix,omitempty"`
}

// ValidateRequest is the request body for POST /api/v1/validate.
type ValidateRequest struct {
	Record map[string]any `json:"record" validate:"required"`
	LifecycleRequest
}

// ValidateResponse is the response body for POST /api/v1/validate.
type ValidateResponse struct {
	Grade    *content.QualityGrade `json:"grade"`
	ExitCode int                   `json:"exit_code"`
}

// BatchRequest is the request body for POST /api/v1/validate/batch.
type BatchRequest struct {
	Records []map[string]any `json:"records" validate:"required,min=1,dive,required"`
	Workers int              `json:"workers,omitempty" validate:"gte=0,lte=256"`
	LifecycleRequest
}

// BatchResponse is the response body for POST /api/v1/validate/batch.
type BatchResponse struct {
	RunID    string                    `json:"run_id"`
	Summary  orchestrator.BatchSummary `json:"summary"`
	Grades   []*content.QualityGrade   `json:"grades"`
	ExitCode int                       `json:"exit_code"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Telemetry *telemetry.HealthStatus `json:"telemetry,omitempty"`
}

// handleHealth reports ok, or degraded when telemetry export has failed.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if s.telemetry != nil {
		h := s.telemetry.Health()
		resp.Telemetry = &h
		if h.Degraded {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleValidate grades one record. Failing grades are still 200; the
// gate decision is in the body.
func (s *Server) handleValidate(c echo.Context) error {
	ctx := c.Request().Context()

	var req ValidateRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	phases, opts, err := s.lifecycle(req.LifecycleRequest)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := content.FromMap(req.Record)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("record: %v", err))
	}

	grade, err := s.pipeline.ValidateLifecycle(ctx, rec, phases, opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, ValidateResponse{
		Grade:    grade,
		ExitCode: report.ExitCode(grade),
	})
}

// handleValidateBatch grades every record of the request in parallel.
func (s *Server) handleValidateBatch(c echo.Context) error {
	ctx := c.Request().Context()

	var req BatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if limit := s.config.MaxBatchRecords; limit > 0 && len(req.Records) > limit {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d records exceeds the limit of %d", len(req.Records), limit))
	}
	phases, opts, err := s.lifecycle(req.LifecycleRequest)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	records := make([]*content.Record, len(req.Records))
	for i, doc := range req.Records {
		rec, err := content.FromMap(doc)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("records[%d]: %v", i, err))
		}
		records[i] = rec
	}
	s.metrics.RecordBatch(ctx, len(records))

	workers := req.Workers
	if workers == 0 {
		workers = s.defaults.Workers
	}
	res, err := s.pipeline.ValidateBatch(ctx, records, phases, opts, workers)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(ctx, "batch request interrupted", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "batch interrupted")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, BatchResponse{
		RunID:    res.RunID,
		Summary:  res.Summary(),
		Grades:   res.Grades,
		ExitCode: report.BatchExitCode(res),
	})
}

// bind decodes and validates a request body.
func (s *Server) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid request body", zap.Error(err))
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

// lifecycle merges request options over the server defaults.
func (s *Server) lifecycle(r LifecycleRequest) ([]content.Phase, orchestrator.LifecycleOptions, error) {
	phases := s.defaults.Phases
	if len(r.Phases) > 0 {
		parsed, err := orchestrator.ParsePhases(r.Phases)
		if err != nil {
			return nil, orchestrator.LifecycleOptions{}, err
		}
		phases = parsed
	}

	opts := s.defaults.Options
	if r.Mode != "" {
		opts.Mode = content.Mode(r.Mode)
	}
	if r.AutoFix != nil {
		opts.AutoFix = *r.AutoFix
	}
	return phases, opts, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
