package pdfgen

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMarginMM  = 18.0
	bulletIndent  = 4.0
	fontFamily    = "Helvetica"
	creatorString = "jobtracker resume renderer " + LayoutVersion
)

// FPDFRenderer draws layouts with core PDF fonts so no font files are
// needed. Catalog sorting and a fixed creation date make output
// byte-identical for identical input.
type FPDFRenderer struct{}

// NewFPDFRenderer constructs an FPDFRenderer.
func NewFPDFRenderer() *FPDFRenderer {
	return &FPDFRenderer{}
}

// Name identifies the renderer in logs and metrics.
func (r *FPDFRenderer) Name() string {
	return "fpdf"
}

// Render draws the layout onto A4 pages.
func (r *FPDFRenderer) Render(ctx context.Context, l Layout, meta Meta) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(meta.createdAt())
	pdf.SetCompression(true)
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(creatorString, false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	if l.Name != "" {
		pdf.SetFont(fontFamily, "B", 18)
		pdf.SetTextColor(17, 17, 17)
		pdf.MultiCell(width, 8, tr(l.Name), "", "L", false)
	}
	if l.Headline != "" {
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(55, 65, 81)
		pdf.MultiCell(width, 5.5, tr(l.Headline), "", "L", false)
	}
	if len(l.Contact) > 0 {
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(75, 85, 99)
		pdf.MultiCell(width, 4.5, tr(strings.Join(l.Contact, "  |  ")), "", "L", false)
	}

	for _, section := range l.Sections {
		pdf.Ln(3)
		if section.Heading != "" {
			pdf.SetFont(fontFamily, "B", 11.5)
			pdf.SetTextColor(31, 41, 55)
			pdf.CellFormat(width, 6, tr(strings.ToUpper(section.Heading)), "", 1, "L", false, 0, "")
			y := pdf.GetY()
			pdf.SetDrawColor(209, 213, 219)
			pdf.Line(left, y, left+width, y)
			pdf.Ln(1.5)
		}
		for _, entry := range section.Entries {
			drawEntry(pdf, tr, entry, left, width)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func drawEntry(pdf *fpdf.Fpdf, tr func(string) string, e Entry, left, width float64) {
	if e.Title != "" {
		pdf.SetFont(fontFamily, "B", 10.5)
		pdf.SetTextColor(17, 17, 17)
		pdf.MultiCell(width, 5, tr(e.Title), "", "L", false)
	}
	if e.Meta != "" {
		pdf.SetFont(fontFamily, "I", 9)
		pdf.SetTextColor(75, 85, 99)
		pdf.MultiCell(width, 4.5, tr(e.Meta), "", "L", false)
	}
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(31, 41, 55)
	for _, line := range e.Lines {
		pdf.MultiCell(width, 4.8, tr(line), "", "L", false)
	}
	for _, b := range e.Bullets {
		pdf.SetX(left + bulletIndent)
		pdf.CellFormat(bulletIndent, 4.8, tr("•"), "", 0, "L", false, 0, "")
		pdf.MultiCell(width-2*bulletIndent, 4.8, tr(b), "", "L", false)
	}
	pdf.Ln(1.5)
}
