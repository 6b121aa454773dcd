package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/prevalidate/internal/core"
	"github.com/JonMunkholm/prevalidate/internal/logging"
	"github.com/JonMunkholm/prevalidate/internal/storage"
)

var validateFlags struct {
	input          string
	stream         bool
	role           string
	publisherPC    bool
	partnerPC      bool
	startTimestamp string
	endTimestamp   string
	format         string
	provider       string
	region         string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate one input file and print the report",
	Long: `Validate one input file and print the report on stdout.

Logs go to stderr. The exit status is 0 for a SUCCESS report, 1 for a FAILED
report and 2 when the validation could not be run at all.

Examples:
  # Validate a partner file copied locally
  prevalidate validate --input s3://bucket/input.csv --role partner --partner-pc

  # Validate a publisher file in byte ranges, bounded to a time window
  prevalidate validate --input gs://bucket/pub.csv --provider gcp --role publisher \
    --stream --start-timestamp 1645000000 --end-timestamp 1646000000

  # Machine-readable output
  prevalidate validate --input ./input.csv --provider local --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	f := validateCmd.Flags()
	f.StringVarP(&validateFlags.input, "input", "i", "", "input file address (s3://, gs:// or a local path)")
	f.BoolVar(&validateFlags.stream, "stream", false, "read the file in byte ranges instead of copying it")
	f.StringVar(&validateFlags.role, "role", "partner", "caller role: partner or publisher")
	f.BoolVar(&validateFlags.publisherPC, "publisher-pc", false, "publisher private computation pre-validation")
	f.BoolVar(&validateFlags.partnerPC, "partner-pc", false, "partner private computation pre-validation")
	f.StringVar(&validateFlags.startTimestamp, "start-timestamp", "", "earliest accepted timestamp (unix seconds)")
	f.StringVar(&validateFlags.endTimestamp, "end-timestamp", "", "latest accepted timestamp (unix seconds)")
	f.StringVarP(&validateFlags.format, "format", "o", "text", "output format: text, json, yaml")
	f.StringVar(&validateFlags.provider, "provider", "", "storage provider: aws, gcp, local (overrides STORAGE_PROVIDER)")
	f.StringVar(&validateFlags.region, "region", "", "storage region (overrides STORAGE_REGION)")
	validateCmd.MarkFlagRequired("input")
}

func runValidate(cmd *cobra.Command, args []string) error {
	switch validateFlags.format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (want text, json or yaml)", validateFlags.format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if validateFlags.provider != "" {
		cfg.Storage.Provider = validateFlags.provider
	}
	if validateFlags.region != "" {
		cfg.Storage.Region = validateFlags.region
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, uuid.NewString())

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer storage.Close(store)

	svc := core.NewService(store, limitsFrom(cfg.Validation))
	report, err := svc.Validate(ctx, core.Request{
		InputPath:                validateFlags.input,
		StreamFile:               validateFlags.stream,
		PublisherPCPreValidation: validateFlags.publisherPC,
		PartnerPCPreValidation:   validateFlags.partnerPC,
		Role:                     validateFlags.role,
		StartTimestamp:           validateFlags.startTimestamp,
		EndTimestamp:             validateFlags.endTimestamp,
	})
	if err != nil {
		return fmt.Errorf("%s", core.FormatUserError(err))
	}

	if err := writeReport(cmd.OutOrStdout(), report, validateFlags.format); err != nil {
		return err
	}
	if report.Failed() {
		return errValidationFailed
	}
	return nil
}

// writeReport prints report in the requested format.
func writeReport(w io.Writer, report core.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, report)
	}
}

func writeText(w io.Writer, report core.Report) error {
	ew := &errWriter{w: w}
	ew.printf("Result:    %s\n", report.Result)
	ew.printf("Validator: %s\n", report.ValidatorName)
	ew.printf("Message:   %s\n", report.Message)
	if d := report.Details; d != nil {
		ew.printf("Rows:      %d\n", d.RowsProcessedCount)
		writeIssues(ew, "Errors", d.ValidationErrors)
		writeIssues(ew, "Warnings", d.ValidationWarnings)
	}
	return ew.err
}

func writeIssues(ew *errWriter, title string, issues map[string]core.FieldIssues) {
	if len(issues) == 0 {
		return
	}
	fields := make([]string, 0, len(issues))
	for f := range issues {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	ew.printf("%s:\n", title)
	for _, f := range fields {
		fi := issues[f]
		ew.printf("  %s: empty=%d bad_format=%d out_of_range=%d\n",
			f, fi.EmptyCount, fi.BadFormatCount, fi.OutOfRangeCount)
	}
}

// errWriter keeps the first write error so printing code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
