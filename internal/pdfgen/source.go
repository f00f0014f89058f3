package pdfgen

import "encoding/json"

// SourceKind tags the content a resume PDF is produced from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	// SourceUploadedPDF reuses a PDF the user uploaded, byte for byte.
	SourceUploadedPDF
	// SourceStructuredJSON renders a structured resume document.
	SourceStructuredJSON
	// SourcePlainText renders free-form resume text.
	SourcePlainText
)

func (k SourceKind) String() string {
	switch k {
	case SourceUploadedPDF:
		return "uploaded_pdf"
	case SourceStructuredJSON:
		return "structured_json"
	case SourcePlainText:
		return "plain_text"
	default:
		return "none"
	}
}

// Source is the tagged union consumed by Generator. Only the field matching
// Kind is meaningful.
type Source struct {
	Kind     SourceKind
	PDFKey   string
	Document json.RawMessage
	Text     string
}

// UploadedPDF builds a source backed by an object store key.
func UploadedPDF(key string) Source {
	return Source{Kind: SourceUploadedPDF, PDFKey: key}
}

// StructuredJSON builds a source from a structured resume document.
func StructuredJSON(doc json.RawMessage) Source {
	return Source{Kind: SourceStructuredJSON, Document: doc}
}

// PlainText builds a source from free-form text.
func PlainText(text string) Source {
	return Source{Kind: SourcePlainText, Text: text}
}
