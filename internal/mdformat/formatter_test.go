package mdformat

import (
	"strings"
	"testing"
)

func TestFormatText_Structure(t *testing.T) {
	in := strings.Join([]string{
		"PATIENT INFORMATION LEAFLET",
		"",
		"Introduction",
		"This medicine treats the common cold.",
		"",
		"• take one tablet daily",
		"1. with water",
		"2) before meals",
		"",
		"Note: do not exceed the stated dose",
	}, "\n")

	got := FormatText(in)
	lines := strings.Split(got, "\n")

	want := []string{
		"# Patient Information Leaflet",
		"",
		"## Introduction",
		"This medicine treats the common cold.",
		"",
		"- take one tablet daily",
		"1. with water",
		"2. before meals",
		"",
		"**Note: do not exceed the stated dose**",
	}
	if len(lines) != len(want) {
		t.Fatalf("line count = %d, want %d\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFormatText_PreservesBlankLines(t *testing.T) {
	got := FormatText("first paragraph line.\n\nsecond paragraph line.")
	if !strings.Contains(got, "\n\n") {
		t.Errorf("blank line not preserved: %q", got)
	}
}

// Re-running the formatter must not stack markers; already-marked lines are
// passed through as plain text.
func TestFormatText_SecondPassDoesNotStackMarkers(t *testing.T) {
	in := "SAFETY ADVICE\n\n• keep refrigerated"
	first := FormatText(in)
	second := FormatText(first)
	if strings.Contains(second, "##") || strings.Contains(second, "- -") || strings.Contains(second, "# #") {
		t.Errorf("second pass corrupted markers:\n%s", second)
	}
	if second != first {
		// Heading demotion to plain text is the documented limitation; marker
		// duplication is not acceptable.
		for _, line := range strings.Split(second, "\n") {
			if strings.HasPrefix(line, "##") || strings.HasPrefix(line, "**#") {
				t.Errorf("stacked marker in %q", line)
			}
		}
	}
}

func TestFormatText_EmptyInput(t *testing.T) {
	if got := FormatText(""); got != "" {
		t.Errorf("FormatText(\"\") = %q, want empty", got)
	}
}
