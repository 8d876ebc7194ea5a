package document

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"|", `\|`,
		"[", `\[`,
		"]", `\]`,
		"#", `\#`,
	)
	multiBlankLines = regexp.MustCompile(`(\r?\n\s*){3,}`)
)

// EscapeMarkdown escapes characters which change markdown rendering
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// StripUnprintable removes control characters except newline and tab
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, s)
}

// CleanMarkdown collapses blank line runs and trailing spaces
func CleanMarkdown(content string) string {
	content = multiBlankLines.ReplaceAllString(content, "\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
