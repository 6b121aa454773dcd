package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const indexForm = `<h1>Input data validation</h1>
<form method="post" action="/validate">
<label>Input path <input type="text" name="input_path" placeholder="s3://bucket/key.csv" required></label>
<label>Role <select name="role"><option value="PARTNER">PARTNER</option><option value="PUBLISHER">PUBLISHER</option></select></label>
<label><input type="checkbox" name="partner_pc_pre_validation" value="true"> Partner private computation</label>
<label><input type="checkbox" name="publisher_pc_pre_validation" value="true"> Publisher private computation</label>
<label><input type="checkbox" name="stream_file" value="true"> Stream the file in byte ranges</label>
<label>Start timestamp <input type="text" name="start_timestamp"></label>
<label>End timestamp <input type="text" name="end_timestamp"></label>
<button type="submit">Validate</button>
</form>`

// Index renders the validation form.
func Index() templ.Component {
	return layout("Input data validation", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, indexForm)
		return err
	}))
}
