package pdfgen

import (
	"regexp"
	"strings"
	"unicode"
)

var knownSections = map[string]string{
	"summary":                 "Summary",
	"professional summary":    "Summary",
	"profile":                 "Summary",
	"objective":               "Summary",
	"skills":                  "Skills",
	"technical skills":        "Skills",
	"experience":              "Experience",
	"work experience":         "Experience",
	"professional experience": "Experience",
	"employment history":      "Experience",
	"projects":                "Projects",
	"education":               "Education",
	"certifications":          "Certifications",
	"achievements":            "Achievements",
	"awards":                  "Achievements",
}

var phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)

// ParseText turns free-form resume text into a Layout. The first line is the
// name, contact-looking lines that follow form the contact row, headings
// start sections and blank lines separate entries.
func ParseText(text string) Layout {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		l        Layout
		cur      *Section
		entry    *Entry
		inHeader = true
	)
	flushEntry := func() {
		if entry != nil && !entry.isBlank() {
			if cur == nil {
				cur = &Section{}
			}
			cur.Entries = append(cur.Entries, *entry)
		}
		entry = nil
	}
	flushSection := func() {
		flushEntry()
		if cur != nil && len(cur.Entries) > 0 {
			l.Sections = append(l.Sections, *cur)
		}
		cur = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flushEntry()
			continue
		}
		nameSlot := inHeader && l.Name == ""
		if heading, ok := sectionHeading(line, !nameSlot); ok {
			flushSection()
			inHeader = false
			cur = &Section{Heading: heading}
			continue
		}
		if inHeader {
			switch {
			case l.Name == "":
				l.Name = line
				continue
			case looksLikeContact(line):
				l.Contact = append(l.Contact, splitContact(line)...)
				continue
			case l.Headline == "":
				l.Headline = line
				continue
			}
			inHeader = false
		}
		if entry == nil {
			entry = &Entry{}
		}
		if b, ok := bulletText(line); ok {
			entry.Bullets = append(entry.Bullets, b)
		} else {
			entry.Lines = append(entry.Lines, line)
		}
	}
	flushSection()
	return l
}

func sectionHeading(line string, allowShouted bool) (string, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(line, ":"))
	if name, ok := knownSections[strings.ToLower(trimmed)]; ok {
		return name, true
	}
	if !allowShouted || len(trimmed) > 40 || trimmed == "" {
		return "", false
	}
	if _, ok := bulletText(line); ok {
		return "", false
	}
	if strings.HasSuffix(line, ":") && !strings.ContainsAny(trimmed, ".,;") {
		return trimmed, true
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return "", false
			}
		}
	}
	if !hasLetter {
		return "", false
	}
	return titleCase(trimmed), true
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• ", "· ", "– ", "▪ "} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			rest = strings.TrimSpace(rest)
			return rest, rest != ""
		}
	}
	return "", false
}

func looksLikeContact(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(line, "@") ||
		strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://") ||
		strings.Contains(lower, "linkedin.com") ||
		strings.Contains(lower, "github.com") ||
		phonePattern.MatchString(line)
}

func splitContact(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == '|' || r == '•' || r == '·'
	})
	return compact(fields...)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
