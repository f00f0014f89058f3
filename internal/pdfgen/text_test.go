package pdfgen

import (
	"reflect"
	"testing"
)

func TestParseTextHeaderAndSections(t *testing.T) {
	text := "Jane Candidate\n" +
		"jane@example.com | +1 555 010 2030 | https://github.com/jane\n" +
		"Support Engineer\n" +
		"\n" +
		"EXPERIENCE\n" +
		"Support Lead - Acme\n" +
		"- Ran the on-call rotation\n" +
		"- Cut ticket backlog by half\n" +
		"\n" +
		"Analyst - Initech\n" +
		"Handled escalations\n" +
		"\n" +
		"Education:\n" +
		"BSc Computer Science\n"

	l := ParseText(text)
	if l.Name != "Jane Candidate" {
		t.Fatalf("name = %q", l.Name)
	}
	if l.Headline != "Support Engineer" {
		t.Fatalf("headline = %q", l.Headline)
	}
	wantContact := []string{"jane@example.com", "+1 555 010 2030", "https://github.com/jane"}
	if !reflect.DeepEqual(l.Contact, wantContact) {
		t.Fatalf("contact = %#v", l.Contact)
	}
	if len(l.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %#v", l.Sections)
	}
	exp := l.Sections[0]
	if exp.Heading != "Experience" || len(exp.Entries) != 2 {
		t.Fatalf("unexpected experience section %#v", exp)
	}
	if got := exp.Entries[0].Bullets; len(got) != 2 || got[0] != "Ran the on-call rotation" {
		t.Fatalf("unexpected bullets %#v", got)
	}
	if got := exp.Entries[1].Lines; len(got) != 2 || got[1] != "Handled escalations" {
		t.Fatalf("unexpected lines %#v", got)
	}
	if l.Sections[1].Heading != "Education" {
		t.Fatalf("unexpected heading %q", l.Sections[1].Heading)
	}
}

func TestParseTextShoutedHeading(t *testing.T) {
	l := ParseText("Jane\n\nVOLUNTEER WORK\nFood bank driver\n")
	if len(l.Sections) != 1 || l.Sections[0].Heading != "Volunteer Work" {
		t.Fatalf("unexpected sections %#v", l.Sections)
	}
}

func TestParseTextShoutedFirstLineIsName(t *testing.T) {
	l := ParseText("JANE CANDIDATE\nSummary\nBuilds things.")
	if l.Name != "JANE CANDIDATE" {
		t.Fatalf("name = %q", l.Name)
	}
	if len(l.Sections) != 1 || l.Sections[0].Heading != "Summary" {
		t.Fatalf("unexpected sections %#v", l.Sections)
	}
}

func TestParseTextBlank(t *testing.T) {
	if !ParseText(" \n\r\n\t\n").IsBlank() {
		t.Fatalf("expected blank layout")
	}
}
