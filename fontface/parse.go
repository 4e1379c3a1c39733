package fontface

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wfc/common"
)

// Parser extracts records from provider stylesheet generated for a single
// format.
type Parser interface {
	Format() common.FontFormat
	Parse(text string) ([]*Record, error)
}

// ShapeError reports stylesheet block which does not have expected marker.
type ShapeError struct {
	Format common.FontFormat
	Block  int
	Marker string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s stylesheet block %d: missing %q", e.Format, e.Block, e.Marker)
}

type fieldSet uint8

const (
	fieldSegment fieldSet = 1 << iota
	fieldLocalNames
	fieldFormat
	fieldUnicodeRange
)

// maximum number of local() hints provider puts in a single rule
const maxLocalNames = 2

// grammar describes how stylesheet for a particular format is shaped: what
// separates rule blocks and which fields (besides style, weight and url which
// are always present) could be found in a block.
type grammar struct {
	delim  string
	fields fieldSet
}

// Provider stylesheet shapes, one per supported format. Legacy format has no
// local names and no format hint, range-split format starts every block with
// a comment holding subset label.
var grammars = map[common.FontFormat]grammar{
	common.FontFormatEot:   {delim: "@font-face"},
	common.FontFormatWoff:  {delim: "@font-face", fields: fieldLocalNames | fieldFormat},
	common.FontFormatWoff2: {delim: "/*", fields: fieldSegment | fieldLocalNames | fieldFormat | fieldUnicodeRange},
	common.FontFormatSvg:   {delim: "@font-face", fields: fieldLocalNames | fieldFormat},
	common.FontFormatTtf:   {delim: "@font-face", fields: fieldLocalNames | fieldFormat},
}

type blockParser struct {
	format  common.FontFormat
	grammar grammar
	family  string
	log     *zap.Logger
}

// NewParser returns parser for stylesheets provider generates for requested
// format. Family is the requested family name, it is not taken from the text.
func NewParser(format common.FontFormat, family string, log *zap.Logger) (Parser, error) {
	g, ok := grammars[format]
	if !ok {
		return nil, fmt.Errorf("no stylesheet grammar for format %s", format)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &blockParser{
		format:  format,
		grammar: g,
		family:  family,
		log:     log.Named("fontface"),
	}, nil
}

func (p *blockParser) Format() common.FontFormat {
	return p.format
}

// Parse splits text into blocks and extracts a record from every non-empty
// one, preserving source order.
func (p *blockParser) Parse(text string) ([]*Record, error) {
	var recs []*Record
	for i, block := range strings.Split(text, p.grammar.delim) {
		block = strings.TrimSpace(block)
		if len(block) == 0 {
			continue
		}
		rec, err := p.parseBlock(i, block)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	p.log.Debug("Parsed provider stylesheet", zap.Stringer("format", p.format), zap.Int("records", len(recs)))
	return recs, nil
}

func (p *blockParser) parseBlock(idx int, block string) (*Record, error) {
	c := &cursor{rest: block}
	missing := func(marker string) error {
		return &ShapeError{Format: p.format, Block: idx, Marker: marker}
	}

	rec := &Record{Family: p.family, Source: p.format}

	if p.has(fieldSegment) {
		// segment is the first word of the comment
		label, ok := c.upTo("*/")
		words := strings.Fields(label)
		if !ok || len(words) == 0 {
			return nil, missing("*/")
		}
		rec.Segment = words[0]
	}

	style, ok := c.declaration("font-style:")
	if !ok {
		return nil, missing("font-style:")
	}
	rec.Style = strings.ToLower(style)

	weight, ok := c.declaration("font-weight:")
	if !ok {
		return nil, missing("font-weight:")
	}
	rec.Weight = weight

	name, err := DisplayName(p.family, rec.Weight, rec.Style)
	if err != nil {
		return nil, fmt.Errorf("%s stylesheet block %d: %w", p.format, idx, err)
	}
	rec.Name = name

	if p.has(fieldLocalNames) {
		rec.LocalNames = c.locals(maxLocalNames, "url(")
	}

	if rec.URL, ok = c.function("url("); !ok {
		return nil, missing("url(")
	}

	if p.has(fieldFormat) {
		if rec.Format, ok = c.function("format("); !ok {
			return nil, missing("format(")
		}
	} else {
		rec.Format = p.format.Tag()
	}

	if p.has(fieldUnicodeRange) {
		if rec.UnicodeRange, ok = c.declaration("unicode-range:"); !ok {
			return nil, missing("unicode-range:")
		}
	}
	return rec, nil
}

func (p *blockParser) has(f fieldSet) bool {
	return p.grammar.fields&f != 0
}

// cursor consumes block text left to right, every successful lookup moves it
// past the consumed value.
type cursor struct {
	rest string
}

// upTo returns trimmed text before marker and moves past it.
func (c *cursor) upTo(marker string) (string, bool) {
	before, after, ok := strings.Cut(c.rest, marker)
	if !ok {
		return "", false
	}
	c.rest = after
	return strings.TrimSpace(before), true
}

// declaration finds marker and returns trimmed value up to the closing ";".
func (c *cursor) declaration(marker string) (string, bool) {
	_, after, ok := strings.Cut(c.rest, marker)
	if !ok {
		return "", false
	}
	value, after, ok := strings.Cut(after, ";")
	if !ok {
		return "", false
	}
	c.rest = after
	return strings.TrimSpace(value), true
}

// function finds marker (function name with opening parenthesis) and returns
// its unquoted argument.
func (c *cursor) function(marker string) (string, bool) {
	_, after, ok := strings.Cut(c.rest, marker)
	if !ok {
		return "", false
	}
	arg, rest, ok := functionArg(after)
	if !ok {
		return "", false
	}
	c.rest = rest
	return arg, true
}

// locals collects up to limit local() hints located before stop marker.
func (c *cursor) locals(limit int, stop string) []string {
	var names []string
	for len(names) < limit {
		end := strings.Index(c.rest, stop)
		if end < 0 {
			end = len(c.rest)
		}
		i := strings.Index(c.rest[:end], "local(")
		if i < 0 {
			break
		}
		arg, rest, ok := functionArg(c.rest[i+len("local("):])
		if !ok {
			break
		}
		c.rest = rest
		names = append(names, arg)
	}
	return names
}

// functionArg reads single (possibly quoted) argument up to closing
// parenthesis. It returns argument and text following the parenthesis.
func functionArg(s string) (string, string, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	if len(s) > 0 && (s[0] == '\'' || s[0] == '"') {
		q := s[0]
		end := strings.IndexByte(s[1:], q)
		if end < 0 {
			return "", "", false
		}
		arg := s[1 : end+1]
		rest := strings.TrimLeft(s[end+2:], " \t\r\n")
		if !strings.HasPrefix(rest, ")") {
			return "", "", false
		}
		return arg, rest[1:], true
	}
	arg, rest, ok := strings.Cut(s, ")")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(arg), rest, true
}
