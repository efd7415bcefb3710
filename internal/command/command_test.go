package command

import (
	"testing"

	"github.com/archbot/archbot/internal/record"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Intent
	}{
		{"create adr", "/create adr", Intent{Kind: Create, Type: record.ADR}},
		{"create padr upper", "/CREATE PADR", Intent{Kind: Create, Type: record.PADR}},
		{"create ap mixed case", "/Create Ap", Intent{Kind: Create, Type: record.AP}},
		{"create extra spacing", "/create   adr", Intent{Kind: Create, Type: record.ADR}},
		{"surrounding whitespace trimmed", "  /create adr\n", Intent{Kind: Create, Type: record.ADR}},
		{"supersede", "/supersede PADR 12", Intent{Kind: Supersede, Type: record.PADR, Target: 12}},
		{"supersede adr", "/supersede adr 3", Intent{Kind: Supersede, Type: record.ADR, Target: 3}},

		// Whole-string matching: extra text invalidates the command.
		{"trailing text", "/create adr extra text", Intent{}},
		{"leading text", "hello /create adr", Intent{}},
		{"supersede trailing text", "/supersede adr 3 please", Intent{}},

		{"unknown type", "/create rfc", Intent{}},
		{"supersede missing number", "/supersede adr", Intent{}},
		{"supersede non-numeric", "/supersede adr twelve", Intent{}},
		{"plain comment", "looks good to me", Intent{}},
		{"empty", "", Intent{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.body); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.body, got, tt.want)
			}
		})
	}
}
