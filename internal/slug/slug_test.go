package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"UPPER case", "upper-case"},
		{"a---b", "a-b"},
		{"--- !!! ---", ""},
		{"", ""},
		{"français café", "fran-ais-caf"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tc := range cases {
		if got := Make(tc.title); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestMake_Charset(t *testing.T) {
	inputs := []string{
		"Hello, World! 2024",
		"100% organic && free",
		"__init__",
		"tabs\tand\nnewlines",
	}
	for _, in := range inputs {
		got := Make(in)
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Errorf("Make(%q) = %q has leading/trailing hyphen", in, got)
		}
		if strings.Contains(got, "--") {
			t.Errorf("Make(%q) = %q has a double hyphen", in, got)
		}
		for _, r := range got {
			if !(r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
				t.Errorf("Make(%q) = %q contains %q", in, got, r)
			}
		}
	}
}

func TestMake_Idempotent(t *testing.T) {
	inputs := []string{"Hello, World! 2024", "A B C", "x", ""}
	for _, in := range inputs {
		once := Make(in)
		if twice := Make(once); twice != once {
			t.Errorf("Make(Make(%q)) = %q, want %q", in, twice, once)
		}
	}
}
