package upstream

import "testing"

func TestNewAliasResolver(t *testing.T) {
	resolve := NewAliasResolver(map[string]string{
		"gpt-4o":      "gemini-2.0-flash",
		"gpt-4o-mini": "gemini-2.0-flash-lite",
	}, "gemini-default")

	cases := []struct {
		in, want string
	}{
		{"gpt-4o", "gemini-2.0-flash"},
		{"gpt-4o-mini", "gemini-2.0-flash-lite"},
		{"claude-3", "gemini-default"},
		{"", "gemini-default"},
	}
	for _, tc := range cases {
		if got := resolve(tc.in); got != tc.want {
			t.Errorf("resolve(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
