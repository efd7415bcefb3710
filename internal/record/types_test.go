package record

import "testing"

func TestParseRecordType(t *testing.T) {
	tests := []struct {
		in      string
		want    RecordType
		wantErr bool
	}{
		{"adr", ADR, false},
		{"ADR", ADR, false},
		{"Padr", PADR, false},
		{"ap", AP, false},
		{"rfc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRecordType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRecordType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRecordType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIDPaths(t *testing.T) {
	id := ID{Type: ADR, Num: 13}

	if got := id.String(); got != "ADR-13" {
		t.Errorf("String() = %q, want %q", got, "ADR-13")
	}
	if got := id.RepoPath(); got != "_adr/13/index.md" {
		t.Errorf("RepoPath() = %q, want %q", got, "_adr/13/index.md")
	}
	if got := id.BranchName(); got != "refs/heads/create-ADR-13" {
		t.Errorf("BranchName() = %q, want %q", got, "refs/heads/create-ADR-13")
	}
}

func TestTemplateID(t *testing.T) {
	id := TemplateID(PADR)
	if id.Num != 0 {
		t.Errorf("template record number = %d, want 0", id.Num)
	}
	if got := id.RepoPath(); got != "_padr/0/index.md" {
		t.Errorf("template path = %q, want %q", got, "_padr/0/index.md")
	}
}

func TestPublishedURL(t *testing.T) {
	id := ID{Type: AP, Num: 7}

	// Trailing slash on the base must not double up.
	for _, base := range []string{"https://arch.example.com", "https://arch.example.com/"} {
		if got := id.PublishedURL(base); got != "https://arch.example.com/ap-7" {
			t.Errorf("PublishedURL(%q) = %q, want %q", base, got, "https://arch.example.com/ap-7")
		}
	}
}
