package languages

import (
	"strings"
)

// DecodeStringLiteral returns the value of a Python string literal token.
// Formatted and bytes literals are rejected.
func DecodeStringLiteral(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	i := strings.IndexAny(raw, `"'`)
	if i < 0 {
		return "", false
	}
	prefix := strings.ToLower(raw[:i])
	if strings.ContainsAny(prefix, "fb") {
		return "", false
	}
	body := raw[i:]

	quote := body[:1]
	if strings.HasPrefix(body, `"""`) || strings.HasPrefix(body, `'''`) {
		quote = body[:3]
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}
	text := body[len(quote) : len(body)-len(quote)]
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.Contains(prefix, "r") {
		return text, true
	}
	return unescape(text), true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 >= len(s) {
			b.WriteByte(ch)
			continue
		}
		next := s[i+1]
		switch next {
		case '\\', '"', '\'':
			b.WriteByte(next)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\n':
			// line continuation
		default:
			b.WriteByte(ch)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// CleanDoc normalizes docstring indentation the way Python's inspect.cleandoc
// does: tabs expanded, first line stripped, common margin of the remaining
// lines removed, leading and trailing blank lines dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(expandTabs(doc, 8), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := len(strings.TrimLeft(line, " \t\f\v\r"))
		if content == 0 {
			continue
		}
		indent := len(line) - content
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " \t\f\v\r")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) > margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = ""
			}
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			spaces := size - col%size
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
