package pdfgen

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Document is the structured resume payload stored on a saved resume.
type Document struct {
	Header         Header          `json:"header"`
	Summary        []string        `json:"summary"`
	Skills         []SkillGroup    `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Achievements   []Achievement   `json:"achievements"`
}

// Header captures top-of-resume contact and identity details.
type Header struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Links    []string `json:"links"`
}

// SkillGroup is a named list of skills.
type SkillGroup struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Experience represents a work history entry.
type Experience struct {
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	Location   string   `json:"location"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Highlights []string `json:"highlights"`
}

// Project represents a notable project.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Highlights  []string `json:"highlights"`
}

// Education represents an education entry.
type Education struct {
	Institution string   `json:"institution"`
	Degree      string   `json:"degree"`
	Field       string   `json:"field"`
	Location    string   `json:"location"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Highlights  []string `json:"highlights"`
}

// Certification represents a certification entry.
type Certification struct {
	Name    string `json:"name"`
	Issuer  string `json:"issuer"`
	Date    string `json:"date"`
	Expires string `json:"expires"`
}

// Achievement represents a discrete achievement.
type Achievement struct {
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Highlights []string `json:"highlights"`
}

var resumeDatePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Validate enforces formatting rules the schema cannot express.
func (d Document) Validate() error {
	for i, link := range d.Header.Links {
		if !isFullURL(strings.TrimSpace(link)) {
			return fmt.Errorf("header.links[%d] must be a full URL", i)
		}
	}
	for i, exp := range d.Experience {
		if err := validateDateField(exp.Start, fmt.Sprintf("experience[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(exp.End, fmt.Sprintf("experience[%d].end", i)); err != nil {
			return err
		}
	}
	for i, p := range d.Projects {
		if err := validateDateField(p.Start, fmt.Sprintf("projects[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(p.End, fmt.Sprintf("projects[%d].end", i)); err != nil {
			return err
		}
	}
	for i, edu := range d.Education {
		if err := validateDateField(edu.Start, fmt.Sprintf("education[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(edu.End, fmt.Sprintf("education[%d].end", i)); err != nil {
			return err
		}
	}
	for i, cert := range d.Certifications {
		if err := validateDateField(cert.Date, fmt.Sprintf("certifications[%d].date", i)); err != nil {
			return err
		}
		if err := validateDateField(cert.Expires, fmt.Sprintf("certifications[%d].expires", i)); err != nil {
			return err
		}
	}
	if d.Layout().IsBlank() {
		return errors.New("document has no content")
	}
	return nil
}

// Layout maps the document onto the fixed section order: summary, skills,
// experience, projects, education, certifications, achievements.
func (d Document) Layout() Layout {
	l := Layout{
		Name:     strings.TrimSpace(d.Header.Name),
		Headline: strings.TrimSpace(d.Header.Title),
		Contact:  compact(append([]string{d.Header.Email, d.Header.Phone, d.Header.Location}, d.Header.Links...)...),
	}

	if lines := compact(d.Summary...); len(lines) > 0 {
		l.Sections = append(l.Sections, Section{Heading: "Summary", Entries: []Entry{{Lines: lines}}})
	}

	var skills []Entry
	for _, g := range d.Skills {
		items := compact(g.Items...)
		if len(items) == 0 {
			continue
		}
		line := strings.Join(items, ", ")
		if name := strings.TrimSpace(g.Name); name != "" {
			line = name + ": " + line
		}
		skills = append(skills, Entry{Lines: []string{line}})
	}
	if len(skills) > 0 {
		l.Sections = append(l.Sections, Section{Heading: "Skills", Entries: skills})
	}

	var experience []Entry
	for _, e := range d.Experience {
		experience = append(experience, Entry{
			Title:   joinNonEmpty(" - ", e.Role, e.Company),
			Meta:    joinNonEmpty(" | ", e.Location, dateRange(e.Start, e.End)),
			Bullets: compact(e.Highlights...),
		})
	}
	l.Sections = appendSection(l.Sections, "Experience", experience)

	var projects []Entry
	for _, p := range d.Projects {
		projects = append(projects, Entry{
			Title:   strings.TrimSpace(p.Name),
			Meta:    dateRange(p.Start, p.End),
			Lines:   compact(p.Description),
			Bullets: compact(p.Highlights...),
		})
	}
	l.Sections = appendSection(l.Sections, "Projects", projects)

	var education []Entry
	for _, e := range d.Education {
		education = append(education, Entry{
			Title:   joinNonEmpty(", ", e.Degree, e.Field),
			Meta:    joinNonEmpty(" | ", e.Institution, e.Location, dateRange(e.Start, e.End)),
			Bullets: compact(e.Highlights...),
		})
	}
	l.Sections = appendSection(l.Sections, "Education", education)

	var certs []Entry
	for _, c := range d.Certifications {
		meta := strings.TrimSpace(c.Date)
		if exp := strings.TrimSpace(c.Expires); exp != "" {
			meta = joinNonEmpty(" ", meta, "(expires "+exp+")")
		}
		certs = append(certs, Entry{
			Title: joinNonEmpty(" - ", c.Name, c.Issuer),
			Meta:  meta,
		})
	}
	l.Sections = appendSection(l.Sections, "Certifications", certs)

	var achievements []Entry
	for _, a := range d.Achievements {
		achievements = append(achievements, Entry{
			Title:   strings.TrimSpace(a.Title),
			Meta:    strings.TrimSpace(a.Date),
			Bullets: compact(a.Highlights...),
		})
	}
	l.Sections = appendSection(l.Sections, "Achievements", achievements)

	return l
}

func appendSection(sections []Section, heading string, entries []Entry) []Section {
	kept := entries[:0:0]
	for _, e := range entries {
		if !e.isBlank() {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return sections
	}
	return append(sections, Section{Heading: heading, Entries: kept})
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(compact(parts...), sep)
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start
	default:
		return start + " - " + end
	}
}

func isFullURL(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

func validateDateField(value, field string) error {
	if value == "" || value == "Present" {
		return nil
	}
	if !resumeDatePattern.MatchString(value) {
		return fmt.Errorf("%s must be YYYY-MM or Present", field)
	}
	return nil
}
