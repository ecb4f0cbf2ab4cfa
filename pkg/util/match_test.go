package util

import "testing"

func TestWildcardMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		s       string
		want    bool
	}{
		{"exact", "server.lan", "server.lan", true},
		{"exact mismatch", "server.lan", "other.lan", false},
		{"star suffix", "server*", "server.lan", true},
		{"star prefix", "*.lan", "server.lan", true},
		{"star crosses dots", "*.example.com", "a.b.example.com", true},
		{"star middle", "srv*lan", "srv01.lan", true},
		{"star empty run", "server*.lan", "server.lan", true},
		{"bare star", "*", "anything", true},
		{"bare star empty", "*", "", true},
		{"question mark", "server?.lan", "server1.lan", true},
		{"question mark too short", "server?.lan", "server.lan", false},
		{"double star", "**.lan", "server.lan", true},
		{"trailing star unconsumed", "server.lan*", "server.lan", true},
		{"empty pattern", "", "x", false},
		{"empty both", "", "", true},
		{"ip prefix", "192.168.*", "192.168.1.10", true},
		{"ip mismatch", "192.168.*", "10.0.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WildcardMatch(tt.pattern, tt.s); got != tt.want {
				t.Errorf("WildcardMatch(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
			}
		})
	}
}
