package templates

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/prevalidate/internal/core"
)

// ReportPage renders a validation report for the run identified by runID.
func ReportPage(runID string, report core.Report) templ.Component {
	return layout("Validation report", ReportPartial(runID, report))
}

// ReportPartial renders the report body without the page shell.
func ReportPartial(runID string, report core.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		class := "success"
		if report.Failed() {
			class = "failed"
		}
		fmt.Fprintf(&b, `<h1 class="%s">%s</h1>`, class, templ.EscapeString(string(report.Result)))
		fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(report.Message))
		fmt.Fprintf(&b, `<p><small>%s · run %s</small></p>`,
			templ.EscapeString(report.ValidatorName), templ.EscapeString(runID))

		if d := report.Details; d != nil {
			fmt.Fprintf(&b, `<p>Rows processed: %d</p>`, d.RowsProcessedCount)
			writeIssues(&b, "Errors", d.ValidationErrors)
			writeIssues(&b, "Warnings", d.ValidationWarnings)
		}
		b.WriteString(`<p><a href="/">Validate another file</a></p>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeIssues(b *strings.Builder, title string, issues map[string]core.FieldIssues) {
	if len(issues) == 0 {
		return
	}

	fields := make([]string, 0, len(issues))
	for f := range issues {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	fmt.Fprintf(b, `<h2>%s</h2><table><tr><th>Field</th><th>Empty</th><th>Bad format</th><th>Out of range</th></tr>`, title)
	for _, f := range fields {
		fi := issues[f]
		fmt.Fprintf(b, `<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
			templ.EscapeString(f), fi.EmptyCount, fi.BadFormatCount, fi.OutOfRangeCount)
	}
	b.WriteString(`</table>`)
}
