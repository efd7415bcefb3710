// Package record models architecture records (ADR, PADR, AP): their
// identifiers, repository paths, and front-matter document pages.
package record

import (
	"fmt"
	"strings"
)

// RecordType identifies a kind of architecture record.
type RecordType string

const (
	ADR  RecordType = "ADR"
	PADR RecordType = "PADR"
	AP   RecordType = "AP"
)

// ParseRecordType parses a record type token case-insensitively.
func ParseRecordType(s string) (RecordType, error) {
	switch strings.ToUpper(s) {
	case "ADR":
		return ADR, nil
	case "PADR":
		return PADR, nil
	case "AP":
		return AP, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// Dir returns the repository directory holding records of this type.
func (t RecordType) Dir() string {
	return "_" + strings.ToLower(string(t))
}

// Path returns the repository path of the record with the given number.
// Record 0 is the type's template.
func (t RecordType) Path(num int) string {
	return fmt.Sprintf("%s/%d/index.md", t.Dir(), num)
}

// ID identifies a single record: its type plus its number, unique
// within the type. Immutable once constructed.
type ID struct {
	Type RecordType
	Num  int
}

// TemplateID returns the id of the type's template record (number 0).
func TemplateID(t RecordType) ID {
	return ID{Type: t, Num: 0}
}

func (id ID) String() string {
	return fmt.Sprintf("%s-%d", id.Type, id.Num)
}

// RepoPath returns the record's path within the repository.
func (id ID) RepoPath() string {
	return id.Type.Path(id.Num)
}

// BranchName returns the name of the branch used to land the record's
// creation commit.
func (id ID) BranchName() string {
	return fmt.Sprintf("refs/heads/create-%s", id)
}

// PublishedURL returns the record's URL on the published site.
func (id ID) PublishedURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.ToLower(id.String())
}
