package pdfgen

import (
	"strings"
	"time"
)

// LayoutVersion identifies the fonts, margins and section order used by the
// renderers. Bump it whenever rendered output changes for unchanged input.
const LayoutVersion = "classic-v1"

// Layout is the renderer-neutral view of a resume.
type Layout struct {
	Name     string
	Headline string
	Contact  []string
	Sections []Section
}

// Section is a titled block rendered in order.
type Section struct {
	Heading string
	Entries []Entry
}

// Entry is one item inside a section.
type Entry struct {
	Title   string
	Meta    string
	Lines   []string
	Bullets []string
}

// Meta carries document properties that must stay fixed across renders.
type Meta struct {
	Title     string
	Author    string
	CreatedAt time.Time
}

// fixedEpoch stamps documents whose source has no timestamp.
var fixedEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func (m Meta) createdAt() time.Time {
	if m.CreatedAt.IsZero() {
		return fixedEpoch
	}
	return m.CreatedAt.UTC().Truncate(time.Second)
}

// IsBlank reports whether the layout has no visible text.
func (l Layout) IsBlank() bool {
	if hasText(l.Name) || hasText(l.Headline) {
		return false
	}
	for _, c := range l.Contact {
		if hasText(c) {
			return false
		}
	}
	for _, s := range l.Sections {
		for _, e := range s.Entries {
			if !e.isBlank() {
				return false
			}
		}
	}
	return true
}

func (e Entry) isBlank() bool {
	if hasText(e.Title) || hasText(e.Meta) {
		return false
	}
	for _, l := range e.Lines {
		if hasText(l) {
			return false
		}
	}
	for _, b := range e.Bullets {
		if hasText(b) {
			return false
		}
	}
	return true
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

func compact(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
