// Package mdformat turns raw recognized text into plausible Markdown
// structure. It is a best-effort line classifier, not a layout parser: rules
// overlap and the first match wins.
package mdformat

import (
	"regexp"
	"strings"
)

// alreadyStructuredRe matches lines that already carry Markdown markers.
// Such lines are passed through as plain text instead of being re-marked,
// so re-running the formatter cannot stack prefixes. The price is that a
// second pass demotes its own headings to paragraphs; a known limitation.
var alreadyStructuredRe = regexp.MustCompile(`^(#{1,6}\s|[-*+]\s|>\s?|\*\*|\d+\.\s)`)

// FormatText classifies each line of recognized text and emits Markdown.
// Blank lines are preserved as paragraph breaks. Running the formatter over
// text that already carries Markdown markers re-classifies those lines as
// plain text; it does not stack markers.
func FormatText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		ctx := Context{}
		if i > 0 {
			ctx.Prev = lines[i-1]
		}
		if i+1 < len(lines) {
			ctx.Next = lines[i+1]
		}
		out = append(out, classifyLine(line, ctx))
	}

	return strings.Join(out, "\n")
}

func classifyLine(line string, ctx Context) string {
	if alreadyStructuredRe.MatchString(strings.TrimSpace(line)) {
		return strings.TrimSpace(line)
	}
	for _, rule := range Rules {
		if formatted, ok := rule.Apply(line, ctx); ok {
			return formatted
		}
	}
	return strings.TrimSpace(line)
}
