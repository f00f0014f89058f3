package pdfgen

import "errors"

var (
	// ErrEmptySource indicates a saved resume with nothing to render.
	ErrEmptySource = errors.New("resume has no content")

	// ErrInvalidSource indicates malformed source content.
	ErrInvalidSource = errors.New("invalid resume source")

	// ErrBlankDocument indicates content that would produce an empty page.
	ErrBlankDocument = errors.New("resume renders to a blank document")

	// ErrRender indicates the renderer failed or produced an unreadable PDF.
	ErrRender = errors.New("render resume pdf")
)
