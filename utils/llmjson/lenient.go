package llmjson

import (
	"fmt"
	"strings"
	"unicode"
)

// lenientToStrict rewrites near-JSON into strict JSON. Tolerated deviations:
// trailing commas, single-quoted strings, and unquoted object keys. Anything
// else still fails downstream in the strict decoder. No ecosystem package
// covers exactly this trio, so the rewrite is done by hand with a small
// character scanner.
func lenientToStrict(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == '"':
			end, err := scanString(s, i, '"')
			if err != nil {
				return "", err
			}
			b.WriteString(s[i:end])
			i = end

		case c == '\'':
			end, err := scanString(s, i, '\'')
			if err != nil {
				return "", err
			}
			// re-quote: swap delimiters, escape inner double quotes,
			// unescape inner single quotes
			inner := s[i+1 : end-1]
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			inner = strings.ReplaceAll(inner, `"`, `\"`)
			b.WriteByte('"')
			b.WriteString(inner)
			b.WriteByte('"')
			i = end

		case c == ',':
			// trailing comma: drop when the next significant byte closes
			j := i + 1
			for j < n && isSpace(s[j]) {
				j++
			}
			if j < n && (s[j] == '}' || s[j] == ']') {
				i++
				continue
			}
			b.WriteByte(c)
			i++

		case isBareKeyStart(rune(c)) && expectsKey(&b):
			// unquoted key: consume up to the delimiting colon
			j := i
			for j < n && isBareKeyChar(rune(s[j])) {
				j++
			}
			k := j
			for k < n && isSpace(s[k]) {
				k++
			}
			if k < n && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
				i = j
				continue
			}
			// not a key position after all (e.g. literal true/null)
			b.WriteString(s[i:j])
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// scanString returns the index just past the closing delimiter.
func scanString(s string, start int, delim byte) (int, error) {
	i := start + 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case delim:
			return i + 1, nil
		default:
			i++
		}
	}
	return 0, fmt.Errorf("unterminated string starting at offset %d", start)
}

// expectsKey reports whether the output written so far ends in a position
// where an object key may start ({ or ,).
func expectsKey(b *strings.Builder) bool {
	out := b.String()
	for i := len(out) - 1; i >= 0; i-- {
		c := out[i]
		if isSpace(c) {
			continue
		}
		return c == '{' || c == ','
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isBareKeyStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isBareKeyChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '-'
}
