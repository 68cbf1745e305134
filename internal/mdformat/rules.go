package mdformat

import (
	"regexp"
	"strings"
	"unicode"
)

// Context carries the neighbouring raw lines a rule may consult.
type Context struct {
	Prev string
	Next string
}

// Rule classifies a single non-empty line. Apply returns the formatted line
// and whether the rule matched. Rules are evaluated in priority order; the
// first match wins.
type Rule struct {
	Name  string
	Apply func(line string, ctx Context) (string, bool)
}

// Rules is the prioritized rule list used by the formatter.
var Rules = []Rule{
	{Name: "h1", Apply: mainHeading},
	{Name: "h2", Apply: subHeading},
	{Name: "h3", Apply: sectionHeading},
	{Name: "emphasis", Apply: emphasis},
	{Name: "bullet", Apply: bulletItem},
	{Name: "numbered", Apply: numberedItem},
}

var sectionKeywords = []string{
	"introduction", "summary", "conclusion", "abstract", "overview",
	"chapter", "appendix", "references", "contents", "acknowledgements",
	"background", "discussion", "results", "methods",
}

var calloutPrefixes = []string{
	"note:", "warning:", "caution:", "important:", "attention:", "tip:",
}

var (
	// Numbered section prefixes require a capitalized title after the number
	// so enumerated list items ("2) before meals") stay list items.
	numberedSectionRe = regexp.MustCompile(`^(\d+(\.\d+)*)[.)]?\s+[A-Z]`)
	letteredSectionRe = regexp.MustCompile(`^[A-Z][.)]\s+\S`)
	bulletGlyphRe     = regexp.MustCompile(`^[•‣▪◦·]\s+`)
	letterItemRe      = regexp.MustCompile(`^[a-z][.)]\s+`)
	decimalItemRe     = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	parenItemRe       = regexp.MustCompile(`^\((\d+)\)\s+(.*)$`)
	romanItemRe       = regexp.MustCompile(`^(x{0,3})(ix|iv|v?i{0,3})[.)]\s+(.*)$`)
)

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// isAllUpper reports whether the line contains letters and none of them are
// lowercase. Digits and punctuation are ignored.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func hasSectionKeyword(s string) bool {
	low := strings.ToLower(s)
	for _, kw := range sectionKeywords {
		if strings.HasPrefix(low, kw) || strings.HasPrefix(low, "the "+kw) {
			return true
		}
	}
	return false
}

// mainHeading matches short shouted lines and classic chapter openers.
func mainHeading(line string, _ Context) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if isAllUpper(trimmed) && len(trimmed) <= 60 && wordCount(trimmed) <= 6 {
		return "# " + titleCase(trimmed), true
	}
	low := strings.ToLower(trimmed)
	if strings.HasPrefix(low, "chapter ") || strings.HasPrefix(low, "part ") {
		if wordCount(trimmed) <= 8 {
			return "# " + trimmed, true
		}
	}
	return "", false
}

// subHeading matches keyword-led section titles and numbered/lettered
// section prefixes such as "2.1 Dosage" or "B. Storage".
func subHeading(line string, _ Context) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if wordCount(trimmed) > 10 {
		return "", false
	}
	if hasSectionKeyword(trimmed) && !strings.HasSuffix(trimmed, ".") {
		return "## " + trimmed, true
	}
	if numberedSectionRe.MatchString(trimmed) && wordCount(trimmed) <= 8 && !strings.HasSuffix(trimmed, ".") {
		return "## " + trimmed, true
	}
	if letteredSectionRe.MatchString(trimmed) && wordCount(trimmed) <= 8 {
		return "## " + trimmed, true
	}
	return "", false
}

// sectionHeading matches the heading-then-blank-line visual pattern: a short
// capitalized line without terminal punctuation, followed by an empty line.
func sectionHeading(line string, ctx Context) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.TrimSpace(ctx.Next) != "" {
		return "", false
	}
	if len(trimmed) > 48 || wordCount(trimmed) > 6 {
		return "", false
	}
	runes := []rune(trimmed)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return "", false
	}
	if strings.ContainsAny(trimmed, ".!?;:") {
		return "", false
	}
	return "### " + trimmed, true
}

// emphasis matches callout lines and uppercase phrases too long for a heading.
func emphasis(line string, _ Context) (string, bool) {
	trimmed := strings.TrimSpace(line)
	low := strings.ToLower(trimmed)
	for _, p := range calloutPrefixes {
		if strings.HasPrefix(low, p) {
			return "**" + trimmed + "**", true
		}
	}
	if isAllUpper(trimmed) && wordCount(trimmed) <= 12 {
		return "**" + trimmed + "**", true
	}
	return "", false
}

// bulletItem matches bullet glyphs, lowercase-letter enumerations and
// two-space indentation. Four-space indentation is left alone so code-like
// blocks survive.
func bulletItem(line string, _ Context) (string, bool) {
	if strings.HasPrefix(line, "    ") {
		return "", false
	}
	trimmed := strings.TrimSpace(line)
	if loc := bulletGlyphRe.FindStringIndex(trimmed); loc != nil {
		return "- " + strings.TrimSpace(trimmed[loc[1]:]), true
	}
	if letterItemRe.MatchString(trimmed) {
		return "- " + trimmed, true
	}
	if strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "   ") {
		return "- " + trimmed, true
	}
	return "", false
}

// numberedItem matches decimal, parenthesised and lowercase Roman-numeral
// enumeration prefixes.
func numberedItem(line string, _ Context) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if m := decimalItemRe.FindStringSubmatch(trimmed); m != nil {
		return m[1] + ". " + m[2], true
	}
	if m := parenItemRe.FindStringSubmatch(trimmed); m != nil {
		return m[1] + ". " + m[2], true
	}
	if m := romanItemRe.FindStringSubmatch(trimmed); m != nil && m[1]+m[2] != "" {
		return "1. " + m[3], true
	}
	return "", false
}

// titleCase lowers an all-caps heading into title case so H1 output reads
// like a heading rather than shouting.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
