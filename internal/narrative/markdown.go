package narrative

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown trims the response and strips an outer code fence, which
// models sometimes wrap around the whole answer.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}

	cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	// Drop an info string such as "markdown" on the opening fence line.
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 && !strings.ContainsAny(cleaned[:nl], " \t") {
		cleaned = cleaned[nl+1:]
	}
	return strings.TrimSpace(cleaned)
}

// HasContent reports whether input parses to a Markdown document with at
// least one block.
func HasContent(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	return doc != nil && doc.HasChildren()
}
