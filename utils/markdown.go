package utils

import "gitlab.com/golang-commonmark/markdown"

// Raw HTML in user text is escaped; links are still detected.
var markdownRenderer = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// RenderMarkdown renders CommonMark source to an HTML fragment.
func RenderMarkdown(src string) string {
	return markdownRenderer.RenderToString([]byte(src))
}
