package core

// validator.go runs one validation pass over an input file.
//
// Flow:
//   1. Size lookup; files over the ceiling are skipped
//   2. Open a LineSource (local copy or chunked ranges)
//   3. Classify the header
//   4. Per row: parse, check fields, track cohorts, check the time budget
//   5. Compose the report
//
// Structural failures stop at the failing line. Cohort failures are kept
// until the end of the file. A cancelled context is a FAILED report, never a
// pass. Anything else unexpected, panics included, fails open to a SUCCESS
// report with a warning.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/prevalidate/internal/logging"
	"github.com/JonMunkholm/prevalidate/internal/schema"
	"github.com/JonMunkholm/prevalidate/internal/storage"
)

const tracerName = "github.com/JonMunkholm/prevalidate/internal/core"

// DefaultMaxFileSize is the largest file validated; bigger files are skipped.
const DefaultMaxFileSize int64 = 1610612736

// Limits bounds the work a validation run may do.
type Limits struct {
	MaxFileSize          int64         // Files above this size are skipped
	StreamChunks         int           // Byte ranges per streamed file
	CheckInterval        int64         // Rows between clock samples
	Budget               time.Duration // Time allowed for row iteration
	MaxCohorts           int           // Distinct cohort ids allowed
	OutOfRangeErrorRatio float64       // Out-of-range share that turns into an error
	TempDir              string        // Where local copies are written ("" = os.TempDir)
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:          DefaultMaxFileSize,
		StreamChunks:         DefaultStreamChunks,
		CheckInterval:        DefaultCheckInterval,
		Budget:               DefaultBudget,
		MaxCohorts:           DefaultMaxCohorts,
		OutOfRangeErrorRatio: DefaultOutOfRangeErrorRatio,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = d.MaxFileSize
	}
	if l.StreamChunks <= 0 {
		l.StreamChunks = d.StreamChunks
	}
	if l.CheckInterval <= 0 {
		l.CheckInterval = d.CheckInterval
	}
	if l.Budget <= 0 {
		l.Budget = d.Budget
	}
	if l.MaxCohorts <= 0 {
		l.MaxCohorts = d.MaxCohorts
	}
	if l.OutOfRangeErrorRatio <= 0 {
		l.OutOfRangeErrorRatio = d.OutOfRangeErrorRatio
	}
	return l
}

// Options configures an InputDataValidator.
type Options struct {
	InputPath  string
	StreamFile bool // Read byte ranges instead of copying the file locally

	// Pre-validation mode of the caller. Schema choice depends on Role
	// alone; the flags are recorded in logs.
	PublisherPCPreValidation bool
	PartnerPCPreValidation   bool
	Role                     schema.Role

	// Optional timestamp bounds, as integer strings.
	StartTimestamp string
	EndTimestamp   string

	Limits Limits

	// Now is the clock used by the time budget (default time.Now).
	Now func() time.Time
}

// InputDataValidator checks one input file against the known schemas.
type InputDataValidator struct {
	store  storage.BlobStore
	opts   Options
	rng    TimestampRange
	warns  []string
	tracer trace.Tracer
}

// NewInputDataValidator builds a validator reading from store. Timestamp
// bounds are parsed here; invalid bounds become report warnings.
func NewInputDataValidator(store storage.BlobStore, opts Options) *InputDataValidator {
	opts.Limits = opts.Limits.withDefaults()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rng, warns := ParseTimestampRange(opts.StartTimestamp, opts.EndTimestamp)

	return &InputDataValidator{
		store:  store,
		opts:   opts,
		rng:    rng,
		warns:  warns,
		tracer: otel.Tracer(tracerName),
	}
}

// TimestampRange returns the parsed timestamp bounds.
func (v *InputDataValidator) TimestampRange() TimestampRange {
	return v.rng
}

// ConfigWarnings returns the warnings produced while parsing the bounds.
func (v *InputDataValidator) ConfigWarnings() []string {
	return v.warns
}

// Validate runs the validation pass. It always returns a report; failures
// are expressed in the report, never as a Go error.
func (v *InputDataValidator) Validate(ctx context.Context) (report Report) {
	ctx, span := v.tracer.Start(ctx, "InputDataValidator.Validate", trace.WithAttributes(
		attribute.String("input.path", v.opts.InputPath),
		attribute.String("input.role", v.opts.Role.String()),
		attribute.Bool("input.stream", v.opts.StreamFile),
	))
	defer span.End()

	logger := logging.WithFields(ctx,
		"input_path", v.opts.InputPath,
		"role", v.opts.Role.String(),
		"stream", v.opts.StreamFile,
	)
	run := &validationRun{
		v:       v,
		logger:  logger,
		builder: ReportBuilder{Path: v.opts.InputPath, ConfigWarnings: v.warns},
		acc:     NewIssueAccumulator(),
		cohorts: NewCohortSequenceTracker(v.opts.Limits.MaxCohorts),
		fields:  FieldValidator{Range: v.rng},
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in validation", "panic", r, "rows", run.rows)
			report = run.fail(ctx, fmt.Errorf("%v", r))
		}

		span.SetAttributes(
			attribute.String("validation.result", string(report.Result)),
			attribute.String("validation.outcome", string(report.Outcome)),
			attribute.Int64("validation.rows", report.RowsProcessed()),
		)
		if report.Failed() {
			span.SetStatus(codes.Error, report.Message)
		} else {
			span.SetStatus(codes.Ok, "")
		}

		logger.Info("validation finished",
			"result", report.Result,
			"outcome", report.Outcome,
			"rows", report.RowsProcessed(),
			"duration", time.Since(start),
		)
	}()

	logger.Info("validation started",
		"publisher_pc_pre_validation", v.opts.PublisherPCPreValidation,
		"partner_pc_pre_validation", v.opts.PartnerPCPreValidation,
	)
	return run.execute(ctx)
}

// validationRun owns the state of one Validate call.
type validationRun struct {
	v       *InputDataValidator
	logger  *slog.Logger
	builder ReportBuilder

	acc     *IssueAccumulator
	cohorts *CohortSequenceTracker
	fields  FieldValidator
	rows    int64
}

func (r *validationRun) execute(ctx context.Context) Report {
	opts := r.v.opts
	if err := ctx.Err(); err != nil {
		return r.fail(ctx, err)
	}

	size, err := r.v.store.Size(ctx, opts.InputPath)
	if err != nil {
		return r.fail(ctx, collaborator(MsgSizeLookupFailed, err))
	}
	if size > opts.Limits.MaxFileSize {
		r.logger.Warn("input file too large, skipping",
			"size", size,
			"max_file_size", opts.Limits.MaxFileSize,
		)
		return r.builder.SizeSkip(opts.Limits.MaxFileSize)
	}

	src, err := openLineSource(ctx, r.v.store, opts.InputPath, opts.StreamFile, size, opts.Limits)
	if err != nil {
		return r.fail(ctx, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			r.logger.Warn("failed to close input source", "error", err)
		}
	}()

	layout, err := r.readHeader(ctx, src)
	if err != nil {
		return r.fail(ctx, err)
	}
	r.logger.Info("header classified",
		"schema", layout.Schema.Name,
		"columns", len(layout.Columns),
		"cohort", layout.CohortIndex >= 0,
	)

	guard := NewTimeoutGuard(opts.Now, opts.Limits.CheckInterval, opts.Limits.Budget)
	timedOut := false
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return r.fail(ctx, err)
		}

		cells, err := ParseRow(line, layout.Width())
		if err != nil {
			return r.fail(ctx, err)
		}
		r.rows++

		r.fields.ValidateRow(layout, cells, r.acc)
		if layout.CohortIndex >= 0 {
			r.cohorts.Observe(cells[layout.CohortIndex])
		}

		if guard.Expired(r.rows) {
			r.logger.Warn("time budget spent, stopping early",
				"rows", r.rows,
				"elapsed", guard.Elapsed(),
				"bytes_read", src.BytesRead(),
				"size", size,
			)
			timedOut = true
			break
		}
	}

	if f := r.cohorts.Failure(); f != nil {
		return r.builder.Failure(f, r.rows)
	}
	if timedOut {
		return r.builder.Timeout(r.rows)
	}

	errs, warns := r.acc.Classify(r.rows, opts.Limits.OutOfRangeErrorRatio)
	return r.builder.Fields(r.rows, errs, warns)
}

// readHeader reads and classifies the first line.
func (r *validationRun) readHeader(ctx context.Context, src LineSource) (*Layout, error) {
	line, err := src.Next(ctx)
	if errors.Is(err, io.EOF) {
		return nil, structural(MsgHeaderEmpty)
	}
	if err != nil {
		return nil, err
	}

	columns, err := splitLine(line)
	if err != nil {
		return nil, err
	}
	return ClassifyHeader(columns, r.v.opts.Role)
}

// fail classifies err and renders the matching report. Once ctx is done
// every failure is reported as a cancellation.
func (r *validationRun) fail(ctx context.Context, err error) Report {
	if ctxErr := ctx.Err(); ctxErr != nil {
		r.logger.Warn("validation canceled", "error", ctxErr, "rows", r.rows)
		return r.builder.Canceled(ctxErr, r.rows)
	}

	f := classify(err)
	if f.Kind == UnclassifiedFailure {
		r.logger.Error("unexpected validation error", "error", f.Err, "rows", r.rows)
	} else {
		r.logger.Info("validation failed", "kind", f.Kind, "message", f.Message, "rows", r.rows)
	}
	return r.builder.Failure(f, r.rows)
}
