package pdfgen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const chromeRenderTimeout = 60 * time.Second

var resumeHTML = template.Must(template.New("resume").Parse(`<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>{{.Meta.Title}}</title>
<style>
@page { size: A4; margin: 18mm; }
body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; font-size: 10pt; }
h1 { font-size: 18pt; color: #111; margin: 0 0 2pt; }
.headline { font-size: 11pt; color: #374151; }
.contact { font-size: 9pt; color: #4b5563; margin-bottom: 6pt; }
h2 { font-size: 11.5pt; text-transform: uppercase; border-bottom: 1px solid #d1d5db; margin: 10pt 0 4pt; }
.title { font-weight: bold; }
.meta { font-style: italic; font-size: 9pt; color: #4b5563; }
ul { margin: 2pt 0 4pt 12pt; padding: 0; }
p { margin: 1pt 0; }
</style></head><body>
{{with .Layout}}
{{if .Name}}<h1>{{.Name}}</h1>{{end}}
{{if .Headline}}<div class="headline">{{.Headline}}</div>{{end}}
{{if .Contact}}<div class="contact">{{range $i, $c := .Contact}}{{if $i}} | {{end}}{{$c}}{{end}}</div>{{end}}
{{range .Sections}}<section>{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
{{range .Entries}}<div class="entry">
{{if .Title}}<div class="title">{{.Title}}</div>{{end}}
{{if .Meta}}<div class="meta">{{.Meta}}</div>{{end}}
{{range .Lines}}<p>{{.}}</p>{{end}}
{{if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>{{end}}
</section>{{end}}
{{end}}
</body></html>`))

// ChromedpRenderer prints an HTML rendering of the layout through headless
// Chrome.
type ChromedpRenderer struct {
	execPath string
	timeout  time.Duration
}

// NewChromedpRenderer constructs a renderer. An empty execPath lets chromedp
// locate Chrome on its own.
func NewChromedpRenderer(execPath string) *ChromedpRenderer {
	return &ChromedpRenderer{execPath: execPath, timeout: chromeRenderTimeout}
}

// Name identifies the renderer in logs and metrics.
func (r *ChromedpRenderer) Name() string {
	return "chromedp"
}

// HTML renders the intermediate document printed by Chrome.
func (r *ChromedpRenderer) HTML(l Layout, meta Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := resumeHTML.Execute(&buf, struct {
		Layout Layout
		Meta   Meta
	}{Layout: l, Meta: meta}); err != nil {
		return nil, fmt.Errorf("%w: template: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Render prints the layout to A4 PDF.
func (r *ChromedpRenderer) Render(ctx context.Context, l Layout, meta Meta) ([]byte, error) {
	html, err := r.HTML(l, meta)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	runCtx, cancelRun := context.WithTimeout(cctx, r.timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-render-")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", ErrRender, err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write html: %v", ErrRender, err)
	}

	var out []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches.
			out, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: chrome: %v", ErrRender, err)
	}
	return pinVolatile(out, meta.createdAt(), html), nil
}

var (
	pdfDatePattern = regexp.MustCompile(`/(?:CreationDate|ModDate)\s*\(D:[^)]*\)`)
	pdfIDPattern   = regexp.MustCompile(`/ID\s*\[\s*<[0-9A-Fa-f]*>\s*<[0-9A-Fa-f]*>\s*\]`)
	pdfHexPattern  = regexp.MustCompile(`<[0-9A-Fa-f]*>`)
)

// pinVolatile replaces the print time and document ID Chrome stamps into
// every PDF with values derived from the input, so the same layout prints to
// the same bytes. Replacements keep each token's length and the xref offsets
// stay valid; a token too short for the pinned value is left alone.
func pinVolatile(pdf []byte, created time.Time, seed []byte) []byte {
	stamps := []string{
		"(D:" + created.UTC().Format("20060102150405") + "+00'00')",
		"(D:" + created.UTC().Format("20060102150405") + "Z)",
	}
	out := pdfDatePattern.ReplaceAllFunc(pdf, func(m []byte) []byte {
		i := bytes.IndexByte(m, '(')
		literal := m[i:]
		for _, stamp := range stamps {
			if len(stamp) <= len(literal) {
				pinned := append([]byte{}, m[:i]...)
				pinned = append(pinned, stamp...)
				return append(pinned, strings.Repeat(" ", len(literal)-len(stamp))...)
			}
		}
		return m
	})

	digest := sha256.Sum256(seed)
	id := strings.ToUpper(hex.EncodeToString(digest[:]))
	return pdfIDPattern.ReplaceAllFunc(out, func(m []byte) []byte {
		return pdfHexPattern.ReplaceAllFunc(m, func(h []byte) []byte {
			n := len(h) - 2
			return []byte("<" + strings.Repeat(id, n/len(id)+1)[:n] + ">")
		})
	})
}
