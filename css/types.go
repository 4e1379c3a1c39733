package css

import (
	"regexp"
	"strings"
)

// FontFace represents an @font-face declaration.
type FontFace struct {
	Family       string   // font-family value, unquoted
	Style        string   // font-style: normal, italic
	Weight       string   // font-weight: 400, 700
	Src          []string // all src values in source order
	UnicodeRange string   // unicode-range value if present
	Label        string   // text of the comment immediately preceding the rule
}

// Source is a single entry of the src list: either local font reference or
// url with optional format hint.
type Source struct {
	Local  string
	URL    string
	Format string
}

// IsLocal returns true for local() references.
func (s Source) IsLocal() bool {
	return s.Local != ""
}

var (
	urlPattern    = regexp.MustCompile(`url\s*\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'|([^)"']*))\s*\)`)
	localPattern  = regexp.MustCompile(`^local\s*\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'|([^)"']*))\s*\)`)
	formatPattern = regexp.MustCompile(`format\s*\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'|([^)"']*))\s*\)`)
)

// firstGroup returns first non-empty capture of the quoted/unquoted
// alternatives.
func firstGroup(sub []string) string {
	for _, g := range sub[1:] {
		if g != "" {
			return unescape(strings.TrimSpace(g))
		}
	}
	return ""
}

// Sources returns entries of all src declarations in source order.
func (ff FontFace) Sources() []Source {
	var out []Source
	for _, src := range ff.Src {
		for _, item := range splitList(src) {
			if sub := localPattern.FindStringSubmatch(item); sub != nil {
				out = append(out, Source{Local: firstGroup(sub)})
				continue
			}
			sub := urlPattern.FindStringSubmatch(item)
			if sub == nil {
				continue
			}
			s := Source{URL: firstGroup(sub)}
			if sub := formatPattern.FindStringSubmatch(item); sub != nil {
				s.Format = firstGroup(sub)
			}
			out = append(out, s)
		}
	}
	return out
}

// URLs returns all referenced urls in source order.
func (ff FontFace) URLs() []string {
	var out []string
	for _, s := range ff.Sources() {
		if !s.IsLocal() {
			out = append(out, s.URL)
		}
	}
	return out
}

// Stylesheet represents a parsed CSS stylesheet. Only @font-face rules are
// kept, everything else is skipped.
type Stylesheet struct {
	FontFaces []FontFace
	Warnings  []string // unexpected content encountered
}

// Families returns distinct font families in order of appearance.
func (s *Stylesheet) Families() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, ff := range s.FontFaces {
		if _, ok := seen[ff.Family]; ok {
			continue
		}
		seen[ff.Family] = struct{}{}
		out = append(out, ff.Family)
	}
	return out
}

// splitList splits comma separated list ignoring commas inside quotes and
// parentheses.
func splitList(s string) []string {
	var (
		out   []string
		depth int
		quote rune
		start int
		esc   bool
	)
	for i, r := range s {
		switch {
		case esc:
			esc = false
		case r == '\\':
			esc = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			out = appendTrimmed(out, s[start:i])
			start = i + 1
		}
	}
	return appendTrimmed(out, s[start:])
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// unquote removes surrounding quotes from a string and resolves escapes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		return unescape(s[1 : len(s)-1])
	}
	return s
}

// unescape drops escaping backslashes. Hexadecimal escapes are not used in
// font related declarations and not supported.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	esc := false
	for _, r := range s {
		if !esc && r == '\\' {
			esc = true
			continue
		}
		esc = false
		b.WriteRune(r)
	}
	return b.String()
}
