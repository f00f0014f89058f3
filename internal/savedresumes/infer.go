package savedresumes

import (
	"regexp"
	"strings"
)

var (
	companyLabel = regexp.MustCompile(`(?im)^\s*(?:company|employer|organization)\s*[:\-]\s*(.+?)\s*$`)
	titleLabel   = regexp.MustCompile(`(?im)^\s*(?:job\s+title|position|role|title)\s*[:\-]\s*(.+?)\s*$`)
	joinPhrase   = regexp.MustCompile(`\b(?i:join|at)\s+([A-Z][\w&.'-]*(?:\s+[A-Z][\w&.'-]*){0,4})`)
	hiringPhrase = regexp.MustCompile(`\b([A-Z][\w&.'-]*(?:\s+[A-Z][\w&.'-]*){0,4})\s+(?:is\s+hiring|is\s+looking|is\s+seeking)`)
)

var titleKeywords = []string{
	"engineer", "developer", "manager", "analyst", "designer", "scientist",
	"specialist", "consultant", "administrator", "architect", "coordinator",
	"representative", "associate", "technician", "lead",
}

// InferJobDetails guesses company and job title from free-form job
// description text. Results are best-effort and may be empty.
func InferJobDetails(description string) (company, title string) {
	if m := companyLabel.FindStringSubmatch(description); m != nil {
		company = cleanGuess(m[1])
	}
	if company == "" {
		if m := hiringPhrase.FindStringSubmatch(description); m != nil {
			company = cleanGuess(m[1])
		}
	}
	if company == "" {
		if m := joinPhrase.FindStringSubmatch(description); m != nil {
			company = cleanGuess(m[1])
		}
	}

	if m := titleLabel.FindStringSubmatch(description); m != nil {
		title = cleanGuess(m[1])
	}
	if title == "" {
		title = keywordTitle(description)
	}
	return company, title
}

func keywordTitle(description string) string {
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > 80 {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range titleKeywords {
			if strings.Contains(lower, kw) {
				return cleanGuess(line)
			}
		}
	}
	return ""
}

func cleanGuess(s string) string {
	s = strings.TrimSpace(strings.Trim(s, " .,;:!"))
	if len([]rune(s)) > 120 {
		s = string([]rune(s)[:120])
	}
	return s
}
