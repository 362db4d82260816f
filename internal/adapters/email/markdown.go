package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// md renders message bodies. Raw HTML in the source is escaped.
var md = goldmark.New()

// MarkdownToHTML converts a Markdown message body to HTML for sending.
func MarkdownToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return buf.String(), nil
}
