package textutil

import "testing"

func TestSanitizePathSegment(t *testing.T) {
	tests := map[string]string{
		"polyp":         "polyp",
		" a/b ":         "a-b",
		"..":            "unknown",
		"":              "unknown",
		"what?":         "what",
		"class:erosion": "class-erosion",
	}
	for in, want := range tests {
		if got := SanitizePathSegment(in); got != want {
			t.Fatalf("SanitizePathSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := map[string]string{
		"z-line":                 "Z Line",
		"barretts_short_segment": "Barretts Short Segment",
		"polyp":                  "Polyp",
		"--":                     "Unknown",
	}
	for in, want := range tests {
		if got := DisplayLabel(in); got != want {
			t.Fatalf("DisplayLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
