package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestReportBuilder_Failure(t *testing.T) {
	b := ReportBuilder{Path: "s3://bucket/file.csv"}

	tests := []struct {
		name       string
		failure    *Failure
		wantResult Result
		wantMsg    string
		wantNil    bool
	}{
		{
			name:       "structural",
			failure:    structural(MsgTooManyValues),
			wantResult: ResultFailed,
			wantMsg:    "File: s3://bucket/file.csv failed validation. Error: " + MsgTooManyValues,
		},
		{
			name:       "collaborator",
			failure:    collaborator(MsgDownloadFailed, errors.New("access denied")),
			wantResult: ResultFailed,
			wantMsg:    "File: s3://bucket/file.csv failed validation. Error: " + MsgDownloadFailed + "\n\taccess denied",
		},
		{
			name:       "unclassified fails open",
			failure:    unclassified(errors.New("nil map")),
			wantResult: ResultSuccess,
			wantMsg:    "WARNING: Input Data Validator threw an unexpected error: nil map",
			wantNil:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := b.Failure(tt.failure, 5)
			if r.Result != tt.wantResult {
				t.Errorf("Result = %s, want %s", r.Result, tt.wantResult)
			}
			if r.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", r.Message, tt.wantMsg)
			}
			if (r.Details == nil) != tt.wantNil {
				t.Errorf("Details = %+v, want nil=%v", r.Details, tt.wantNil)
			}
			if r.ValidatorName != ValidatorName {
				t.Errorf("ValidatorName = %q", r.ValidatorName)
			}
		})
	}
}

func TestReportBuilder_ConfigWarningsOnlyOnSuccess(t *testing.T) {
	b := ReportBuilder{Path: "f.csv", ConfigWarnings: []string{WarnStartTimestamp}}

	ok := b.Fields(1, nil, nil)
	if want := "File: f.csv completed validation successfully " + WarnStartTimestamp; ok.Message != want {
		t.Errorf("success message = %q, want %q", ok.Message, want)
	}

	warned := b.Fields(1, nil, map[string]FieldIssues{"value": {EmptyCount: 1}})
	if want := "File: f.csv completed validation successfully, with warnings on 'value'. " + WarnStartTimestamp; warned.Message != want {
		t.Errorf("warning message = %q, want %q", warned.Message, want)
	}

	bad := b.Fields(1, map[string]FieldIssues{"id_": {EmptyCount: 1}}, nil)
	if strings.Contains(bad.Message, WarnStartTimestamp) {
		t.Errorf("failed message carries config warning: %q", bad.Message)
	}

	timeout := b.Timeout(10)
	if strings.Contains(timeout.Message, WarnStartTimestamp) {
		t.Errorf("timeout message carries config warning: %q", timeout.Message)
	}
}

func TestReport_Encoding(t *testing.T) {
	r := ReportBuilder{Path: "f.csv"}.Fields(6,
		map[string]FieldIssues{"event_timestamp": {EmptyCount: 4}},
		map[string]FieldIssues{"value": {EmptyCount: 2}, "id_": {EmptyCount: 1}},
	)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	want := `{"validation_result":"FAILED","validator_name":"Input Data Validator",` +
		`"message":"File: f.csv failed validation, with errors on 'event_timestamp'.",` +
		`"details":{"rows_processed_count":6,` +
		`"validation_errors":{"event_timestamp":{"empty_count":4}},` +
		`"validation_warnings":{"id_":{"empty_count":1},"value":{"empty_count":2}}}}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}

	out, err := yaml.Marshal(r)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	for _, key := range []string{"validation_result: FAILED", "rows_processed_count: 6", "empty_count: 4"} {
		if !strings.Contains(string(out), key) {
			t.Errorf("yaml output missing %q:\n%s", key, out)
		}
	}
	if strings.Contains(string(out), "outcome") {
		t.Errorf("yaml output leaks outcome:\n%s", out)
	}
}

func TestReport_FailOpenOmitsDetails(t *testing.T) {
	r := ReportBuilder{Path: "f.csv"}.FailOpen(errors.New("boom"))
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if strings.Contains(string(data), "details") {
		t.Errorf("fail-open json has details: %s", data)
	}
	if r.RowsProcessed() != 0 {
		t.Errorf("RowsProcessed = %d, want 0", r.RowsProcessed())
	}
}

func TestReportBuilder_Canceled(t *testing.T) {
	r := ReportBuilder{Path: "f.csv", ConfigWarnings: []string{WarnStartTimestamp}}.Canceled(context.DeadlineExceeded, 4)

	want := "File: f.csv failed validation. Error: " + MsgCanceled + "\n\tcontext deadline exceeded"
	if r.Message != want {
		t.Errorf("Message = %q, want %q", r.Message, want)
	}
	if !r.Failed() || r.Outcome != OutcomeCanceled || r.RowsProcessed() != 4 {
		t.Errorf("report = %+v, want FAILED canceled with 4 rows", r)
	}
}

func TestReportBuilder_TimeoutMessage(t *testing.T) {
	r := ReportBuilder{Path: "f.csv"}.Timeout(7)

	want := "File: f.csv completed validation successfully, with some warnings. Warning: ran the validations on 7 total rows, the rest of the rows were skipped to avoid container timeout. "
	if r.Message != want {
		t.Errorf("Message = %q, want %q", r.Message, want)
	}
}
