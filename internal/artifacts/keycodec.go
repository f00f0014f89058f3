package artifacts

import (
	"strings"
	"time"
)

const (
	// KeyNamespace is the leading segment of every artifact name.
	KeyNamespace = "schedule"

	// MaxTitleLen bounds the sanitized meeting title segment.
	MaxTitleLen = 30
	// MaxCompanyLen bounds the sanitized company segment.
	MaxCompanyLen = 20
	// UnknownCompany replaces an empty company name.
	UnknownCompany = "Unknown"

	dateLayout = "2006-01-02"
)

// BuildPrefix derives the artifact key prefix for an interview:
// schedule_{YYYY-MM-DD}_{title}_{company}. The date is rendered in UTC so
// the prefix does not depend on the server's time zone.
//
// Inputs that sanitize to the same segments share a prefix.
func BuildPrefix(meetingDate time.Time, meetingTitle, company string) string {
	if strings.TrimSpace(company) == "" {
		company = UnknownCompany
	}
	var b strings.Builder
	b.WriteString(KeyNamespace)
	b.WriteByte('_')
	b.WriteString(meetingDate.UTC().Format(dateLayout))
	b.WriteByte('_')
	b.WriteString(SanitizeSegment(meetingTitle, MaxTitleLen))
	b.WriteByte('_')
	b.WriteString(SanitizeSegment(company, MaxCompanyLen))
	return b.String()
}

// SanitizeSegment replaces every rune outside [A-Za-z0-9.-] with '_' and
// keeps at most max runes.
func SanitizeSegment(s string, max int) string {
	if max <= 0 {
		return ""
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == max {
			break
		}
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	return b.String()
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-':
		return true
	default:
		return false
	}
}
