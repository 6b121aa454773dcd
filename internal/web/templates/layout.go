// Package templates renders the HTML pages of the validation service.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:56rem;color:#1f2937}
h1{font-size:1.5rem}label{display:block;margin:.5rem 0}
input[type=text]{width:100%;padding:.4rem}
table{border-collapse:collapse;width:100%;margin-top:1rem}
th,td{border:1px solid #d1d5db;padding:.4rem;text-align:left}
.success{color:#047857}.failed{color:#b91c1c}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem}`

// layout wraps body in the shared page shell.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>",
			templ.EscapeString(title), styles); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert" role="alert"><strong>%s</strong><p>%s</p><small>Code: %s</small></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}

// ErrorPage renders ErrorAlert as a full page.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Validation error", ErrorAlert(message, action, code))
}
