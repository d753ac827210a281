package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PreviewLimit bounds the diagnostic preview carried by FormatError so a
// runaway model response never floods the logs.
const PreviewLimit = 600

// FormatError is returned when no JSON object can be recovered from a model
// response after every parsing strategy has been tried.
type FormatError struct {
	Attempts []string // strategy names, in the order they were tried
	Preview  string   // at most PreviewLimit bytes of the cleaned text
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("no JSON object recoverable from model output (tried %s); preview: %s",
		strings.Join(e.Attempts, ", "), e.Preview)
}

// strategy is one named attempt at turning cleaned text into a JSON object.
// Strategies run in order; the first success wins.
type strategy struct {
	name  string
	parse func(s string) (map[string]any, error)
}

var strategies = []strategy{
	{"strict", parseStrict},
	{"strict-sliced", slicedThen(parseStrict)},
	{"lenient-sliced", slicedThen(parseLenient)},
	{"lenient", parseLenient},
}

// Normalize coerces free-form model text into a JSON object. The text is
// cleaned first (BOM, zero-width spaces, markdown fences, curly quotes,
// trailing commas), then the strategy chain runs. Structurally broken JSON
// beyond those tolerances (e.g. a truncated array) is not repaired.
func Normalize(text string) (map[string]any, error) {
	cleaned := Clean(text)

	attempts := make([]string, 0, len(strategies))
	for _, st := range strategies {
		attempts = append(attempts, st.name)
		if obj, err := st.parse(cleaned); err == nil {
			return obj, nil
		}
	}

	return nil, &FormatError{Attempts: attempts, Preview: preview(cleaned)}
}

// NormalizeWith runs a single named strategy against already-cleaned text.
// Exposed so tests can target each strategy independently of the chain.
func NormalizeWith(name, cleaned string) (map[string]any, error) {
	for _, st := range strategies {
		if st.name == name {
			return st.parse(cleaned)
		}
	}
	return nil, fmt.Errorf("unknown parse strategy %q", name)
}

// Clean applies the textual cleanup pass: strips BOM and zero-width spaces,
// removes markdown code fences, normalizes curly quotes, and drops trailing
// commas immediately before a closing } or ].
func Clean(s string) string {
	s = strings.TrimSpace(s)

	// BOM and zero-width characters the model occasionally emits
	replacer := strings.NewReplacer(
		"\uFEFF", "",
		"​", "",
		"‌", "",
		"‍", "",
		// curly quotes to straight quotes
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
	s = replacer.Replace(s)

	s = stripFences(s)
	s = stripTrailingCommas(s)
	return strings.TrimSpace(s)
}

// stripFences removes markdown code-fence delimiters (```json ... ```)
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	// fences in the middle of prose
	if i := strings.Index(s, "```json"); i >= 0 {
		s = strings.Replace(s, "```json", "", 1)
		s = strings.Replace(s, "```", "", 1)
	}
	return strings.TrimSpace(s)
}

// stripTrailingCommas removes a comma that directly precedes a closing
// bracket, ignoring commas inside string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			b.WriteByte(c)
			escaped = true
		case c == '"':
			b.WriteByte(c)
			inString = !inString
		case c == ',' && !inString:
			// look ahead past whitespace for } or ]
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the comma
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func parseStrict(s string) (map[string]any, error) {
	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("decoded to null, not an object")
	}
	return obj, nil
}

func parseLenient(s string) (map[string]any, error) {
	fixed, err := lenientToStrict(s)
	if err != nil {
		return nil, err
	}
	return parseStrict(fixed)
}

// slicedThen narrows the text to the span between the first { and the last }
// before handing it to the wrapped parser. Defends against leading/trailing
// commentary around an otherwise-usable object.
func slicedThen(parse func(string) (map[string]any, error)) func(string) (map[string]any, error) {
	return func(s string) (map[string]any, error) {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("no {...} span found")
		}
		return parse(s[start : end+1])
	}
}

func preview(s string) string {
	if len(s) <= PreviewLimit {
		return s
	}
	// Back off to a rune boundary so the diagnostic stays valid UTF-8.
	cut := PreviewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
