package pages

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// StatusData is what the server status page shows.
type StatusData struct {
	Env         string
	Tables      []string
	Subscribers int
	SyncEnabled bool
	Now         time.Time
}

// Status renders the backend status page served at /.
func Status(data StatusData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sync := "disabled"
		if data.SyncEnabled {
			sync = "enabled"
		}

		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>OPS // Backend</title></head><body><main><h1>OPS // BACKEND ONLINE</h1><dl>`); err != nil {
			return err
		}

		rows := [][2]string{
			{"Environment", data.Env},
			{"Realtime subscribers", fmt.Sprint(data.Subscribers)},
			{"Calendar export", sync},
			{"Server time", data.Now.UTC().Format(time.RFC3339)},
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "<dt>%s</dt><dd>%s</dd>",
				templ.EscapeString(row[0]), templ.EscapeString(row[1])); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</dl><h2>Tables</h2><ul>`); err != nil {
			return err
		}
		for _, t := range data.Tables {
			if _, err := fmt.Fprintf(w, "<li><code>%s</code></li>", templ.EscapeString(t)); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</ul></main></body></html>`)
		return err
	})
}
