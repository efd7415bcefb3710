package record

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// FrontMatter is the structured header of a record page. Field order
// here is the canonical serialization order.
type FrontMatter struct {
	Num          int      `yaml:"num"`
	Title        string   `yaml:"title"`
	Status       string   `yaml:"status"`
	Authors      []string `yaml:"authors"`
	Tags         []string `yaml:"tags"`
	SupersededBy *int     `yaml:"superseded_by,omitempty"`
}

// Record statuses. The status field is an open string set; these are
// the values the bot itself writes or reads.
const (
	StatusDraft      = "Draft"
	StatusProposed   = "Proposed"
	StatusAccepted   = "Accepted"
	StatusSuperseded = "Superseded"
)

// Page is a record document: parsed front matter plus an opaque body.
// The body is preserved byte-exact across parse and serialize; the
// front matter is re-rendered canonically by ContentString.
type Page struct {
	FrontMatter FrontMatter
	Body        string
}

// ParsePage parses a record page from its raw repository content.
// The content must open with a `---` fence followed by YAML front
// matter and a closing `---` line; everything after the closing line
// is the body, kept verbatim.
func ParsePage(content string) (*Page, error) {
	rest, ok := strings.CutPrefix(content, fence)
	if !ok {
		return nil, fmt.Errorf("record page has no front matter fence")
	}
	idx := strings.Index(rest, "\n"+fence)
	if idx < 0 {
		return nil, fmt.Errorf("record page front matter is not terminated")
	}
	fmBlock := rest[:idx+1]
	body := rest[idx+1+len(fence):]

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(fmBlock), &fm); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}
	return &Page{FrontMatter: fm, Body: body}, nil
}

// ContentString serializes the page back to repository file content.
func (p *Page) ContentString() (string, error) {
	out, err := yaml.Marshal(p.FrontMatter)
	if err != nil {
		return "", fmt.Errorf("rendering front matter: %w", err)
	}
	return fence + string(out) + fence + p.Body, nil
}

// Clone returns a deep copy of the page. The workflow renders the new
// draft and the superseded record as independent values; Clone keeps
// the two from aliasing each other's slices.
func (p *Page) Clone() *Page {
	cp := *p
	cp.FrontMatter.Authors = append([]string(nil), p.FrontMatter.Authors...)
	cp.FrontMatter.Tags = append([]string(nil), p.FrontMatter.Tags...)
	if p.FrontMatter.SupersededBy != nil {
		n := *p.FrontMatter.SupersededBy
		cp.FrontMatter.SupersededBy = &n
	}
	return &cp
}
