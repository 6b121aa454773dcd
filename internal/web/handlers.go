package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/prevalidate/internal/core"
	"github.com/JonMunkholm/prevalidate/internal/logging"
	"github.com/JonMunkholm/prevalidate/internal/web/templates"
)

// handleValidate runs a validation described by a JSON request and returns
// the report. A FAILED report is still a 200: the request itself succeeded.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req core.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: decode request: %v", errBadRequest, err))
		return
	}

	report, err := s.run(r, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// handleValidateForm runs a validation submitted from the index page and
// renders the report as HTML.
func (s *Server) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: parse form: %v", errBadRequest, err))
		return
	}

	req := core.Request{
		InputPath:                r.PostForm.Get("input_path"),
		StreamFile:               formBool(r, "stream_file"),
		PublisherPCPreValidation: formBool(r, "publisher_pc_pre_validation"),
		PartnerPCPreValidation:   formBool(r, "partner_pc_pre_validation"),
		Role:                     r.PostForm.Get("role"),
		StartTimestamp:           r.PostForm.Get("start_timestamp"),
		EndTimestamp:             r.PostForm.Get("end_timestamp"),
	}

	report, err := s.run(r, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ReportPage(logging.RunID(r.Context()), report).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render report", "error", err)
	}
}

// run passes req to the service unless the server is draining.
func (s *Server) run(r *http.Request, req core.Request) (core.Report, error) {
	if s.draining.Load() {
		return core.Report{}, ErrShuttingDown
	}

	report, err := s.service.Validate(r.Context(), req)
	if errors.Is(err, core.ErrTooManyValidations) && s.metrics != nil {
		s.metrics.RecordRejected()
	}
	return report, err
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth reports liveness; it turns 503 once shutdown has begun so
// load balancers stop routing new validations here.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "draining"})
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// statusResponse is the body of /api/status.
type statusResponse struct {
	Draining bool                `json:"draining"`
	Limiter  *core.LimiterStatus `json:"limiter,omitempty"`
}

// handleStatus returns the validation slot occupancy.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Draining: s.draining.Load()}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Limiter = &st
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// formBool reads a checkbox value; a missing or unparsable value is false.
func formBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.PostForm.Get(name))
	return err == nil && v
}
