package fontface

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"wfc/common"
)

// ErrNotRetrieved is returned when stylesheet is requested for records which
// were not stored locally yet.
var ErrNotRetrieved = errors.New("font resource has not been retrieved")

// Serializer produces consolidated stylesheet referencing locally stored
// font files.
type Serializer struct {
	family string
	prefix string
}

// NewSerializer returns serializer for family. When prefix is empty font
// files are referenced by server root relative path built from record local
// file path, otherwise as prefix followed by file base name.
func NewSerializer(family, prefix string) *Serializer {
	return &Serializer{family: family, prefix: prefix}
}

// Href returns reference to locally stored copy of record as it will appear
// in the stylesheet.
func (s *Serializer) Href(r *Record) string {
	p := filepath.ToSlash(r.LocalFile)
	if s.prefix != "" {
		return strings.TrimSuffix(s.prefix, "/") + "/" + path.Base(p)
	}
	return "/" + strings.TrimLeft(path.Clean(p), "/")
}

// Serialize emits a rule per bucket in bucket insertion order, rules are
// separated by a single new line.
func (s *Serializer) Serialize(b *Buckets) (string, error) {
	for rec := range b.Records() {
		if !rec.Retrieved() {
			return "", fmt.Errorf("%s (%s): %w", rec.Name, rec.Source, ErrNotRetrieved)
		}
	}

	blocks := make([]string, 0, b.Len())
	for rule := range b.All() {
		blocks = append(blocks, s.rule(rule))
	}
	return strings.Join(blocks, "\n"), nil
}

func (s *Serializer) rule(rule *Rule) string {
	var sb strings.Builder
	if rule.RangeSplit() {
		fmt.Fprintf(&sb, "/* %s */\n", rule.Segment)
	}
	sb.WriteString("@font-face {\n")
	fmt.Fprintf(&sb, "\tfont-family: '%s';\n", escapeQuoted(s.family))
	fmt.Fprintf(&sb, "\tfont-style: %s;\n", rule.Style)
	fmt.Fprintf(&sb, "\tfont-weight: %s;\n", rule.Weight)
	if rule.RangeSplit() {
		s.rangeSplitSources(&sb, rule)
	} else {
		s.standardSources(&sb, rule)
	}
	sb.WriteString("}")
	return sb.String()
}

// rangeSplitSources writes single src list (local hints, then members) and
// unicode-range for the subset.
func (s *Serializer) rangeSplitSources(sb *strings.Builder, rule *Rule) {
	entries := make([]string, 0, len(rule.LocalNames)+len(rule.Members))
	for _, name := range rule.LocalNames {
		entries = append(entries, local(name))
	}
	for _, m := range rule.Members {
		entries = append(entries, source(s.Href(m), m.Format))
	}
	fmt.Fprintf(sb, "\tsrc: %s;\n", strings.Join(entries, ", "))
	fmt.Fprintf(sb, "\tunicode-range: %s;\n", rule.UnicodeRange)
}

// standardSources writes legacy fallback chain: bare legacy url first, then
// second src with legacy "iefix" url, local hints, woff, truetype and svg
// entries in that order. When bucket has no legacy member both legacy
// declarations are omitted and single src lists the rest.
func (s *Serializer) standardSources(sb *strings.Builder, rule *Rule) {
	legacy := rule.MembersOf(common.FontFormatEot)
	if len(legacy) > 0 {
		fmt.Fprintf(sb, "\tsrc: url('%s');\n", escapeQuoted(s.Href(legacy[0])))
	}

	var entries []string
	for _, m := range legacy {
		entries = append(entries, source(s.Href(m)+"?#iefix", common.FontFormatEot.Tag()))
	}
	for _, name := range rule.LocalNames {
		entries = append(entries, local(name))
	}
	for _, f := range []common.FontFormat{common.FontFormatWoff, common.FontFormatTtf} {
		for _, m := range rule.MembersOf(f) {
			entries = append(entries, source(s.Href(m), m.Format))
		}
	}
	for _, m := range rule.MembersOf(common.FontFormatSvg) {
		entries = append(entries, source(s.Href(m)+"#"+s.family, m.Format))
	}
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(sb, "\tsrc: %s;\n", strings.Join(entries, ",\n\t"))
}

func local(name string) string {
	return "local('" + escapeQuoted(name) + "')"
}

func source(href, format string) string {
	return "url('" + escapeQuoted(href) + "') format('" + escapeQuoted(format) + "')"
}

// escapeQuoted escapes a string for use inside css single quotes.
func escapeQuoted(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
