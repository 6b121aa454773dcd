package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/prevalidate/internal/schema"
	"github.com/JonMunkholm/prevalidate/internal/storage"
)

var (
	// ErrInputPathRequired is returned for a request without an input path.
	ErrInputPathRequired = errors.New("input path is required")

	// ErrUnknownRole is returned for a role other than PARTNER or PUBLISHER.
	ErrUnknownRole = errors.New("unknown role")
)

// Request describes one validation submitted to the Service.
type Request struct {
	InputPath                string `json:"input_path"`
	StreamFile               bool   `json:"stream_file"`
	PublisherPCPreValidation bool   `json:"publisher_pc_pre_validation"`
	PartnerPCPreValidation   bool   `json:"partner_pc_pre_validation"`
	Role                     string `json:"role"`
	StartTimestamp           string `json:"start_timestamp,omitempty"`
	EndTimestamp             string `json:"end_timestamp,omitempty"`
}

// ReportObserver is notified of every finished run.
type ReportObserver func(report Report, elapsed time.Duration)

// Service runs validations against one blob store with shared limits.
type Service struct {
	store     storage.BlobStore
	limits    Limits
	limiter   *ValidationLimiter
	observers []ReportObserver
	now       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLimiter bounds the number of concurrent validations.
func WithLimiter(l *ValidationLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithObserver registers fn to be called after every run.
func WithObserver(fn ReportObserver) ServiceOption {
	return func(s *Service) { s.observers = append(s.observers, fn) }
}

// WithClock replaces time.Now for the time budget and run durations.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service reading from store.
func NewService(store storage.BlobStore, limits Limits, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		limits: limits.withDefaults(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the concurrency limiter, or nil when unbounded.
func (s *Service) Limiter() *ValidationLimiter {
	return s.limiter
}

// Options converts a request into validator options.
func (s *Service) Options(req Request) (Options, error) {
	path := strings.TrimSpace(req.InputPath)
	if path == "" {
		return Options{}, ErrInputPathRequired
	}
	role, ok := schema.ParseRole(req.Role)
	if !ok {
		return Options{}, fmt.Errorf("%w %q", ErrUnknownRole, req.Role)
	}

	return Options{
		InputPath:                path,
		StreamFile:               req.StreamFile,
		PublisherPCPreValidation: req.PublisherPCPreValidation,
		PartnerPCPreValidation:   req.PartnerPCPreValidation,
		Role:                     role,
		StartTimestamp:           req.StartTimestamp,
		EndTimestamp:             req.EndTimestamp,
		Limits:                   s.limits,
		Now:                      s.now,
	}, nil
}

// Validate runs one validation. The error is non-nil when the request is
// malformed, no validation slot became free, or ctx ended before the file
// was fully checked. File problems are reported in the Report.
func (s *Service) Validate(ctx context.Context, req Request) (Report, error) {
	opts, err := s.Options(req)
	if err != nil {
		return Report{}, err
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return Report{}, err
		}
		defer s.limiter.Release()
	}

	start := s.now()
	report := NewInputDataValidator(s.store, opts).Validate(ctx)
	elapsed := s.now().Sub(start)

	for _, fn := range s.observers {
		fn(report, elapsed)
	}
	if report.Outcome == OutcomeCanceled {
		return Report{}, fmt.Errorf("validate %s: %w", opts.InputPath, ctx.Err())
	}
	return report, nil
}
