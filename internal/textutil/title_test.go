package textutil

import "testing"

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "My Video", want: "My_Video"},
		{name: "punctuation dropped", input: "Hello, World! (v2)", want: "Hello_World_v2"},
		{name: "trailing space", input: "Trip  ", want: "Trip"},
		{name: "leading space kept", input: " Trip", want: "_Trip"},
		{name: "thai marks kept", input: "สวัสดี ครับ", want: "สวัสดี_ครับ"},
		{name: "decomposed accents composed", input: "Cafe\u0301 Tour", want: "Caf\u00e9_Tour"},
		{name: "slashes removed", input: "a/b\\c", want: "abc"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeTitle(tt.input); got != tt.want {
				t.Fatalf("SafeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
