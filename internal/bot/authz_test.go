package bot

import "testing"

func TestAuthorized(t *testing.T) {
	approvers := []string{"alice", "bob", "carol"}

	tests := []struct {
		login string
		want  bool
	}{
		{"alice", true},
		{"carol", true},
		{"mallory", false},
		// Identity matching is case-sensitive, no normalization.
		{"Alice", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.login, func(t *testing.T) {
			if got := Authorized(tt.login, approvers); got != tt.want {
				t.Errorf("Authorized(%q) = %v, want %v", tt.login, got, tt.want)
			}
		})
	}

	if Authorized("alice", nil) {
		t.Error("empty approver set must authorize nobody")
	}
}
