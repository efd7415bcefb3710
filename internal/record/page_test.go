package record

import (
	"reflect"
	"strings"
	"testing"
)

const samplePage = `---
num: 12
title: Use event sourcing for audit trails
status: Accepted
authors:
    - alice
    - bob
tags:
    - persistence
---
# Context

Some body text.

## Decision

More text with --- inline, which must not confuse the parser.
`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(samplePage)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}

	fm := page.FrontMatter
	if fm.Num != 12 {
		t.Errorf("Num = %d, want 12", fm.Num)
	}
	if fm.Title != "Use event sourcing for audit trails" {
		t.Errorf("Title = %q", fm.Title)
	}
	if fm.Status != StatusAccepted {
		t.Errorf("Status = %q, want %q", fm.Status, StatusAccepted)
	}
	if !reflect.DeepEqual(fm.Authors, []string{"alice", "bob"}) {
		t.Errorf("Authors = %v", fm.Authors)
	}
	if !reflect.DeepEqual(fm.Tags, []string{"persistence"}) {
		t.Errorf("Tags = %v", fm.Tags)
	}
	if fm.SupersededBy != nil {
		t.Errorf("SupersededBy = %v, want nil", *fm.SupersededBy)
	}
	if !strings.HasPrefix(page.Body, "# Context\n") {
		t.Errorf("Body does not start with heading: %q", page.Body[:20])
	}
	if !strings.Contains(page.Body, "--- inline") {
		t.Error("Body lost text containing an inline fence")
	}
}

// TestRoundTrip checks the round-trip law: parsing, serializing, and
// parsing again yields an identical page. For canonically formatted
// documents the serialized text is also byte-identical.
func TestRoundTrip(t *testing.T) {
	page, err := ParsePage(samplePage)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	out, err := page.ContentString()
	if err != nil {
		t.Fatalf("ContentString: %v", err)
	}
	if out != samplePage {
		t.Errorf("canonical document did not round-trip byte-exact:\ngot:\n%s\nwant:\n%s", out, samplePage)
	}

	again, err := ParsePage(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !reflect.DeepEqual(page, again) {
		t.Errorf("round-trip changed the page:\nfirst:  %+v\nsecond: %+v", page, again)
	}
}

func TestRoundTripSupersededBy(t *testing.T) {
	n := 9
	page := &Page{
		FrontMatter: FrontMatter{
			Num:          3,
			Title:        "Old decision",
			Status:       StatusSuperseded,
			Authors:      []string{"carol"},
			Tags:         []string{},
			SupersededBy: &n,
		},
		Body: "body\n",
	}
	out, err := page.ContentString()
	if err != nil {
		t.Fatalf("ContentString: %v", err)
	}
	if !strings.Contains(out, "superseded_by: 9\n") {
		t.Errorf("serialized page missing superseded_by: %s", out)
	}

	again, err := ParsePage(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.FrontMatter.SupersededBy == nil || *again.FrontMatter.SupersededBy != 9 {
		t.Errorf("SupersededBy = %v, want 9", again.FrontMatter.SupersededBy)
	}
}

func TestParsePageErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no front matter", "# Just a body\n"},
		{"unterminated fence", "---\nnum: 1\n"},
		{"bad yaml", "---\nnum: [\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePage(tt.content); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	page, err := ParsePage(samplePage)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	cp := page.Clone()
	cp.FrontMatter.Authors[0] = "mallory"
	cp.FrontMatter.Status = StatusSuperseded

	if page.FrontMatter.Authors[0] != "alice" {
		t.Error("mutating the clone's authors leaked into the original")
	}
	if page.FrontMatter.Status != StatusAccepted {
		t.Error("mutating the clone's status leaked into the original")
	}
}
