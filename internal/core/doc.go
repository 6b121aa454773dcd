// Package core provides the pre-flight validation of privacy-computation
// input files.
//
// A file is checked for structure and data quality before a costly
// computation is started. The package is independent of any transport: the
// web server, the CLI and tests all drive it through [InputDataValidator].
//
// # Flow
//
//  1. The file size is looked up. Files above [Limits.MaxFileSize] are skipped
//     with a SUCCESS report.
//  2. Lines come from a [LineSource], either a downloaded temp copy or a
//     sequence of byte-range fetches stitched back into lines.
//  3. The header is matched against the schemas allowed for the caller role
//     by [ClassifyHeader].
//  4. Each row is split, checked for width, and its cells validated into an
//     [IssueAccumulator] and a [CohortSequenceTracker].
//  5. A [TimeoutGuard] bounds the row loop. A file that exhausts the budget
//     is accepted with a SUCCESS report.
//  6. The [ReportBuilder] turns the outcome into a [Report].
//
// # Failures
//
// Every failure is returned as a [Report], never an error. Structural and
// collaborator failures are FAILED reports, and so is a run whose context
// ends early. Anything unclassified fails open to SUCCESS so that a
// validator defect never blocks a computation.
//
// Errors around a validation (bad requests, a busy service) are mapped to
// user-friendly messages with [MapError].
package core
