package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/mycloudbox/mycloudbox/internal/model"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#f5f5f7;color:#1d1d1f}
main{max-width:960px;margin:0 auto;padding:2rem 1rem}
h1{font-size:1.25rem;word-break:break-all}
.meta{color:#6e6e73;font-size:.875rem;margin-bottom:1.5rem}
.preview img,.preview video{max-width:100%;border-radius:8px;background:#fff}
.download{display:inline-block;padding:.75rem 1.25rem;border-radius:8px;background:#0071e3;color:#fff;text-decoration:none}`

// SharePage is the public view of a shared file.
func SharePage(appName string, file *model.PublicFile) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		name := file.DisplayName()
		url := string(templ.URL(file.URL))

		var preview string
		switch model.Classify(file.Format) {
		case model.ResourceImage:
			preview = fmt.Sprintf(`<img src="%s" alt="%s">`, templ.EscapeString(url), templ.EscapeString(name))
		case model.ResourceVideo:
			preview = fmt.Sprintf(`<video src="%s" controls preload="metadata"></video>`, templ.EscapeString(url))
		default:
			preview = fmt.Sprintf(`<a class="download" href="%s" download>Download %s</a>`,
				templ.EscapeString(url), templ.EscapeString(name))
		}

		meta := fmt.Sprintf("%s · shared %s", formatLabel(file.Format), file.CreatedAt.UTC().Format("2 Jan 2006"))

		return page(ctx, w, name+" · "+appName, fmt.Sprintf(
			`<h1>%s</h1><p class="meta">%s</p><div class="preview">%s</div>`,
			templ.EscapeString(name), templ.EscapeString(meta), preview,
		))
	})
}

// NotFoundPage is shown when a share link points at a deleted file.
func NotFoundPage(appName string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return page(ctx, w, "Not found · "+appName,
			`<h1>This file is no longer available</h1><p class="meta">The link may be wrong or the owner deleted the file.</p>`)
	})
}

func page(ctx context.Context, w io.Writer, title, body string) error {
	nonceAttr := ""
	if nonce := templ.GetNonce(ctx); nonce != "" {
		nonceAttr = fmt.Sprintf(` nonce="%s"`, templ.EscapeString(nonce))
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
		`<meta name="viewport" content="width=device-width, initial-scale=1">`+
		`<meta name="robots" content="noindex">`+
		`<title>%s</title><style%s>%s</style></head><body><main>%s</main></body></html>`,
		templ.EscapeString(title), nonceAttr, pageStyle, body)
	return err
}

func formatLabel(format string) string {
	if format == "" {
		return "File"
	}
	return fmt.Sprintf("%s file", format)
}
