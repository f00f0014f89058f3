package pdfgen

import (
	"context"
	"fmt"
	"io"
	"time"

	"jobtracker-backend/internal/extract"
	"jobtracker-backend/internal/shared/metrics"
)

// DefaultMaxSourceBytes caps how much of an uploaded PDF is read.
const DefaultMaxSourceBytes = 20 << 20

// ObjectOpener reads uploaded resume files.
type ObjectOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Renderer turns a layout into PDF bytes.
type Renderer interface {
	Name() string
	Render(ctx context.Context, l Layout, meta Meta) ([]byte, error)
}

// Config configures a Generator.
type Config struct {
	MaxSourceBytes int64
}

// Generator converts a resume Source into canonical PDF bytes.
type Generator struct {
	objects        ObjectOpener
	renderer       Renderer
	maxSourceBytes int64
}

// NewGenerator constructs a Generator. A nil renderer selects FPDFRenderer.
func NewGenerator(objects ObjectOpener, renderer Renderer, cfg Config) *Generator {
	if renderer == nil {
		renderer = NewFPDFRenderer()
	}
	maxBytes := cfg.MaxSourceBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSourceBytes
	}
	return &Generator{objects: objects, renderer: renderer, maxSourceBytes: maxBytes}
}

// Generate produces PDF bytes for src. Uploaded PDFs are returned unchanged;
// structured and plain text sources are rendered with the fixed layout.
func (g *Generator) Generate(ctx context.Context, src Source, meta Meta) ([]byte, error) {
	start := time.Now()
	out, err := g.generate(ctx, src, meta)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.IncGeneration(src.Kind.String(), result)
	metrics.ObserveGeneration(src.Kind.String(), time.Since(start))
	return out, err
}

func (g *Generator) generate(ctx context.Context, src Source, meta Meta) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind {
	case SourceUploadedPDF:
		return g.readUploaded(ctx, src.PDFKey)
	case SourceStructuredJSON:
		doc, err := ParseDocument(src.Document)
		if err != nil {
			return nil, err
		}
		return g.render(ctx, doc.Layout(), meta)
	case SourcePlainText:
		return g.render(ctx, ParseText(src.Text), meta)
	default:
		return nil, ErrEmptySource
	}
}

func (g *Generator) readUploaded(ctx context.Context, key string) ([]byte, error) {
	if g.objects == nil {
		return nil, fmt.Errorf("%w: no object store for uploaded pdf", ErrInvalidSource)
	}
	rc, err := g.objects.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open uploaded pdf %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, g.maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded pdf %s: %w", key, err)
	}
	if int64(len(data)) > g.maxSourceBytes {
		return nil, fmt.Errorf("%w: uploaded pdf exceeds %d bytes", ErrInvalidSource, g.maxSourceBytes)
	}
	if !extract.IsPDF(data) {
		return nil, fmt.Errorf("%w: uploaded file %s is not a pdf", ErrInvalidSource, key)
	}
	return data, nil
}

func (g *Generator) render(ctx context.Context, l Layout, meta Meta) ([]byte, error) {
	if l.IsBlank() {
		return nil, ErrBlankDocument
	}
	out, err := g.renderer.Render(ctx, l, meta)
	if err != nil {
		return nil, err
	}
	info, err := extract.Inspect(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s output unreadable: %v", ErrRender, g.renderer.Name(), err)
	}
	if info.Pages < 1 {
		return nil, fmt.Errorf("%w: %s output has no pages", ErrRender, g.renderer.Name())
	}
	return out, nil
}
