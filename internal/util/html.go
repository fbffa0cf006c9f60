package util

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches the block and inline tags a legacy post body is likely to use.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|img|ul|ol|li|h[1-6]|blockquote|pre|code|figure)[\s>/]`)

// ContainsHTML reports whether s looks like HTML markup rather than markdown.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// HTMLToMarkdown converts an HTML post body to markdown.
// Input without HTML markup is returned unchanged.
func HTMLToMarkdown(s string) (string, error) {
	if s == "" || !ContainsHTML(s) {
		return s, nil
	}

	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
