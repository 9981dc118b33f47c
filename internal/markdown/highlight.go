package markdown

import (
	"strings"
	"unicode"
)

// pyTokenKind classifies the tokens the highlighter distinguishes. Anything
// not worth a span (operators, plain names, newlines) passes through raw.
type pyTokenKind int

const (
	tokName pyTokenKind = iota
	tokNumber
	tokString
	tokComment
	tokOp
	tokNewline
)

// pyToken carries source positions so the original layout can be
// reconstructed around the emitted tokens. Lines are 1-based, columns
// 0-based; a newline token ends at column 0 of the following line.
type pyToken struct {
	kind      pyTokenKind
	text      string
	startLine int
	startCol  int
	endLine   int
	endCol    int
}

// pythonKeywords mirrors Python 3's keyword list. Soft keywords (match,
// case, type) are deliberately absent; Python itself tokenizes them as
// plain names.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "while": true, "with": true,
	"yield": true,
}

// HighlightPython wraps strings, numbers, comments and keywords of Python
// source in class-bearing spans while reproducing the original whitespace
// exactly. Stripping the spans from the output yields the input byte for
// byte. Source that cannot be tokenized (an unterminated string) is returned
// unchanged.
func HighlightPython(code string) string {
	tokens, ok := tokenizePython(code)
	if !ok {
		return code
	}

	var out strings.Builder
	prevRow, prevCol := 1, 0
	for _, t := range tokens {
		for prevRow < t.startLine {
			out.WriteByte('\n')
			prevRow++
			prevCol = 0
		}
		for prevCol < t.startCol {
			out.WriteByte(' ')
			prevCol++
		}

		switch {
		case t.kind == tokString:
			out.WriteString(`<span class="string">` + t.text + `</span>`)
		case t.kind == tokNumber:
			out.WriteString(`<span class="number">` + t.text + `</span>`)
		case t.kind == tokComment:
			out.WriteString(`<span class="comment">` + t.text + `</span>`)
		case t.kind == tokName && pythonKeywords[t.text]:
			out.WriteString(`<span class="keyword">` + t.text + `</span>`)
		default:
			out.WriteString(t.text)
		}

		prevRow, prevCol = t.endLine, t.endCol
	}
	return out.String()
}

// pyScanner walks the source as lines of runes with a (line, col) cursor.
// Lines index is 0-based internally; emitted positions are 1-based lines.
type pyScanner struct {
	lines  [][]rune
	hasEOL []bool // line i is followed by a newline in the source
	li     int
	col    int
	tokens []pyToken
}

func tokenizePython(code string) ([]pyToken, bool) {
	rawLines := strings.Split(code, "\n")
	s := &pyScanner{
		lines:  make([][]rune, len(rawLines)),
		hasEOL: make([]bool, len(rawLines)),
	}
	for i, l := range rawLines {
		s.lines[i] = []rune(l)
		s.hasEOL[i] = i < len(rawLines)-1
	}

	for s.li < len(s.lines) {
		line := s.lines[s.li]
		if s.col >= len(line) {
			if s.hasEOL[s.li] {
				s.emit(tokNewline, "\n", s.li+1, s.col, s.li+2, 0)
			}
			s.li++
			s.col = 0
			continue
		}

		r := line[s.col]
		switch {
		case r == ' ':
			s.col++
		case r == '\t':
			// Tabs pass through as tokens; the reconstruction gap-filler only
			// knows how to synthesize spaces.
			s.emit(tokOp, "\t", s.li+1, s.col, s.li+1, s.col+1)
			s.col++
		case r == '#':
			s.scanComment()
		case isStringStart(line, s.col):
			if !s.scanString() {
				return nil, false
			}
		case unicode.IsDigit(r) || (r == '.' && s.col+1 < len(line) && unicode.IsDigit(line[s.col+1])):
			s.scanNumber()
		case r == '_' || unicode.IsLetter(r):
			s.scanName()
		default:
			s.emit(tokOp, string(r), s.li+1, s.col, s.li+1, s.col+1)
			s.col++
		}
	}

	// Zero-width marker at the very end of the source. Without it, spaces
	// skipped after the last token on a final line with no end-of-line have
	// no following token to anchor the gap-filler, and reconstruction would
	// drop them.
	last := len(s.lines) - 1
	end := len(s.lines[last])
	s.emit(tokOp, "", last+1, end, last+1, end)
	return s.tokens, true
}

func (s *pyScanner) emit(kind pyTokenKind, text string, startLine, startCol, endLine, endCol int) {
	s.tokens = append(s.tokens, pyToken{
		kind: kind, text: text,
		startLine: startLine, startCol: startCol,
		endLine: endLine, endCol: endCol,
	})
}

func (s *pyScanner) scanComment() {
	line := s.lines[s.li]
	start := s.col
	s.emit(tokComment, string(line[start:]), s.li+1, start, s.li+1, len(line))
	s.col = len(line)
}

func (s *pyScanner) scanName() {
	line := s.lines[s.li]
	start := s.col
	for s.col < len(line) && isNameRune(line[s.col]) {
		s.col++
	}
	s.emit(tokName, string(line[start:s.col]), s.li+1, start, s.li+1, s.col)
}

func (s *pyScanner) scanNumber() {
	line := s.lines[s.li]
	start := s.col
	for s.col < len(line) {
		r := line[s.col]
		if isNameRune(r) || r == '.' {
			s.col++
			continue
		}
		// Exponent sign: 1e-5, 2E+3.
		if (r == '+' || r == '-') && s.col > start {
			prev := line[s.col-1]
			if prev == 'e' || prev == 'E' {
				s.col++
				continue
			}
		}
		break
	}
	s.emit(tokNumber, string(line[start:s.col]), s.li+1, start, s.li+1, s.col)
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isStringStart reports whether the rune at col opens a string literal,
// allowing the r/b/u/f prefixes in any order and case.
func isStringStart(line []rune, col int) bool {
	i := col
	for i < len(line) && i-col < 3 && isPrefixRune(line[i]) {
		i++
	}
	return i < len(line) && (line[i] == '\'' || line[i] == '"')
}

func isPrefixRune(r rune) bool {
	switch r {
	case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		return true
	}
	return false
}

// scanString consumes one string literal, including triple-quoted forms that
// span lines. Returns false on an unterminated literal, which fails the
// whole tokenize pass.
func (s *pyScanner) scanString() bool {
	startLi, startCol := s.li, s.col
	line := s.lines[s.li]

	i := s.col
	for i < len(line) && isPrefixRune(line[i]) && line[i] != '\'' && line[i] != '"' {
		i++
	}
	quote := line[i]
	raw := false
	for _, p := range line[s.col:i] {
		if p == 'r' || p == 'R' {
			raw = true
		}
	}

	triple := i+2 < len(line) && line[i+1] == quote && line[i+2] == quote
	var text strings.Builder
	text.WriteString(string(line[s.col : i+1]))
	pos := i + 1
	if triple {
		text.WriteString(string(quote) + string(quote))
		pos = i + 3
	}

	for {
		line = s.lines[s.li]
		for pos < len(line) {
			r := line[pos]
			if r == '\\' && !raw && pos+1 < len(line) {
				text.WriteRune(r)
				text.WriteRune(line[pos+1])
				pos += 2
				continue
			}
			if r == quote {
				if !triple {
					text.WriteRune(r)
					s.emitString(&text, startLi, startCol, s.li, pos+1)
					s.col = pos + 1
					return true
				}
				if pos+2 < len(line) && line[pos+1] == quote && line[pos+2] == quote {
					text.WriteString(string(quote) + string(quote) + string(quote))
					s.emitString(&text, startLi, startCol, s.li, pos+3)
					s.col = pos + 3
					return true
				}
			}
			text.WriteRune(r)
			pos++
		}
		if !triple {
			// Single-quoted string hit end of line without closing.
			return false
		}
		if !s.hasEOL[s.li] {
			// Triple-quoted string hit end of source.
			return false
		}
		text.WriteByte('\n')
		s.li++
		pos = 0
	}
}

func (s *pyScanner) emitString(text *strings.Builder, startLi, startCol, endLi, endCol int) {
	s.emit(tokString, text.String(), startLi+1, startCol, endLi+1, endCol)
}
