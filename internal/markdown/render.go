// Package markdown converts a small Markdown dialect to HTML with a
// line-oriented block pass and a fixed sequence of inline regexp transforms.
// Fenced code blocks tagged python get token-level syntax highlighting.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reRefDef  = regexp.MustCompile(`^\s*\[([^\]]+)\]:\s*(\S+)`)
	reFence   = regexp.MustCompile("^```" + `(\w+)?`)
	reHRule   = regexp.MustCompile(`^\s*[*\-_]{3,}\s*$`)
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.*)`)

	// Inline transforms, applied in this order. Compound forms go first so
	// the simpler patterns cannot eat their brackets.
	reCode      = regexp.MustCompile("`(.+?)`")
	reImageLink = regexp.MustCompile(`\[\s*!\[([^\]]*?)\]\(([^)]+)\)\s*\]\(([^)]+)\)`)
	reRefImage  = regexp.MustCompile(`!\[([^\]]*?)\]\[([^\]]+)\]`)
	reRefLink   = regexp.MustCompile(`\[([^\]]+)\]\[([^\]]+)\]`)
	reImage     = regexp.MustCompile(`!\[([^\]]*?)\]\(([^)]+)\)`)
	reLink      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic    = regexp.MustCompile(`\*(.+?)\*`)
)

// splitLines splits on line boundaries without producing a trailing empty
// element for a final newline.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Render converts markdown source to an HTML fragment.
//
// A pre-pass collects reference definitions ([id]: url) and removes those
// lines. Block forms are recognized per line in fixed order: code fences,
// horizontal rules, headings, list items, blockquotes, then paragraphs.
// List items and blockquotes keep their content verbatim; only paragraph
// lines go through the inline transforms.
func Render(source string) string {
	refLinks := make(map[string]string)
	var lines []string
	for _, line := range splitLines(source) {
		if m := reRefDef.FindStringSubmatch(line); m != nil {
			refLinks[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
			continue
		}
		lines = append(lines, line)
	}

	var htmlLines []string
	inCodeBlock := false
	inList := false
	var codeBlock []string
	var listBuffer []string
	codeLang := ""

	flushList := func() {
		if inList {
			htmlLines = append(htmlLines, "<ul>"+strings.Join(listBuffer, "")+"</ul>")
			inList = false
			listBuffer = nil
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			lang := ""
			if m := reFence.FindStringSubmatch(line); m != nil && m[1] != "" {
				lang = strings.ToLower(m[1])
			}
			if !inCodeBlock {
				inCodeBlock = true
				codeBlock = nil
				codeLang = lang
			} else {
				inCodeBlock = false
				content := strings.Join(codeBlock, "\n")
				if codeLang == "python" {
					content = HighlightPython(content)
				}
				htmlLines = append(htmlLines,
					fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, codeLang, content))
			}
			continue
		}
		if inCodeBlock {
			codeBlock = append(codeBlock, line)
			continue
		}

		// A pending list is only flushed when a line falls through to the
		// list-handling stage below; rules and headings interleave without
		// closing it.
		if reHRule.MatchString(line) {
			htmlLines = append(htmlLines, "<hr/>")
			continue
		}

		if m := reHeading.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			htmlLines = append(htmlLines, fmt.Sprintf("<h%d>%s</h%d>", level, m[2], level))
			continue
		}

		if strings.HasPrefix(line, "- ") {
			if !inList {
				inList = true
				listBuffer = nil
			}
			listBuffer = append(listBuffer, "<li>"+strings.TrimSpace(line[2:])+"</li>")
			continue
		}
		flushList()

		if strings.HasPrefix(line, "> ") {
			htmlLines = append(htmlLines, "<blockquote>"+strings.TrimSpace(line[2:])+"</blockquote>")
			continue
		}

		line = applyInline(line, refLinks)
		if strings.TrimSpace(line) != "" {
			htmlLines = append(htmlLines, "<p>"+line+"</p>")
		} else {
			htmlLines = append(htmlLines, "")
		}
	}
	flushList()

	return strings.Join(htmlLines, "\n")
}

func applyInline(line string, refLinks map[string]string) string {
	line = reCode.ReplaceAllString(line, "<code>${1}</code>")
	line = reImageLink.ReplaceAllString(line, `<a href="${3}"><img alt="${1}" src="${2}" /></a>`)
	line = reRefImage.ReplaceAllStringFunc(line, func(match string) string {
		m := reRefImage.FindStringSubmatch(match)
		return fmt.Sprintf(`<img alt="%s" src="%s" />`, m[1], resolveRef(refLinks, m[2]))
	})
	line = reRefLink.ReplaceAllStringFunc(line, func(match string) string {
		m := reRefLink.FindStringSubmatch(match)
		return fmt.Sprintf(`<a href="%s">%s</a>`, resolveRef(refLinks, m[2]), m[1])
	})
	line = reImage.ReplaceAllString(line, `<img alt="${1}" src="${2}" />`)
	line = reLink.ReplaceAllString(line, `<a href="${2}">${1}</a>`)
	line = reBold.ReplaceAllString(line, "<strong>${1}</strong>")
	line = reItalic.ReplaceAllString(line, "<em>${1}</em>")
	return line
}

// resolveRef falls back to the id itself when no definition exists, so a
// dangling reference still produces a usable link target.
func resolveRef(refLinks map[string]string, id string) string {
	if url, ok := refLinks[id]; ok {
		return url
	}
	return id
}
