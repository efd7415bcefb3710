// Package command recognizes the slash commands the bot accepts on
// tracking issues and turns them into typed intents. Pattern matching
// stays inside Parse; callers branch on the intent kind only.
package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/archbot/archbot/internal/record"
)

// Kind discriminates the intent union.
type Kind int

const (
	// None means the comment is not a command for the bot.
	None Kind = iota
	// Create requests a new draft record.
	Create
	// Supersede requests a new draft record that supersedes an
	// existing one.
	Supersede
)

// Intent is the parsed meaning of an issue comment.
type Intent struct {
	Kind   Kind
	Type   record.RecordType
	Target int // superseded record number, Supersede only
}

// Both grammars must match the whole trimmed comment body; leading or
// trailing extra text makes the comment an ordinary comment.
var (
	createRe    = regexp.MustCompile(`(?i)^/create +(p?adr|ap)$`)
	supersedeRe = regexp.MustCompile(`(?i)^/supersede +(p?adr|ap) +([0-9]+)$`)
)

// Parse extracts the intent from a comment body. Unrecognized text
// yields a None intent, never an error.
func Parse(body string) Intent {
	body = strings.TrimSpace(body)

	if m := createRe.FindStringSubmatch(body); m != nil {
		t, err := record.ParseRecordType(m[1])
		if err != nil {
			return Intent{}
		}
		return Intent{Kind: Create, Type: t}
	}

	if m := supersedeRe.FindStringSubmatch(body); m != nil {
		t, err := record.ParseRecordType(m[1])
		if err != nil {
			return Intent{}
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Intent{}
		}
		return Intent{Kind: Supersede, Type: t, Target: n}
	}

	return Intent{}
}
