package css

import (
	"bytes"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser reads @font-face rules from CSS stylesheets.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)

	// comment preceding rule becomes its label
	var label string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err != io.EOF {
				p.log.Debug("CSS parse error", zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
			}
			return sheet

		case css.CommentGrammar:
			label = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(string(data), "/*"), "*/"))
			continue

		case css.BeginAtRuleGrammar:
			if atRule := string(data); strings.EqualFold(atRule, "@font-face") {
				ff := p.parseFontFace(parser)
				ff.Label = label
				if ff.Family == "" {
					sheet.Warnings = append(sheet.Warnings, "@font-face without font-family")
				} else {
					sheet.FontFaces = append(sheet.FontFaces, ff)
				}
			} else {
				p.skipBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
				sheet.Warnings = append(sheet.Warnings, "unexpected @-rule: "+atRule)
			}

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))
			sheet.Warnings = append(sheet.Warnings, "unexpected @-rule: "+string(data))

		case css.BeginRulesetGrammar:
			p.skipBlock(parser)
			sheet.Warnings = append(sheet.Warnings, "unexpected ruleset")
		}
		label = ""
	}
}

// skipBlock skips tokens until the end of the current block.
func (p *Parser) skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseFontFace parses an @font-face block.
func (p *Parser) parseFontFace(parser *css.Parser) FontFace {
	ff := FontFace{}

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return ff

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			val := joinTokens(values)

			switch strings.ToLower(string(data)) {
			case "font-family":
				ff.Family = unquote(val)
			case "src":
				ff.Src = append(ff.Src, val)
			case "font-style":
				ff.Style = strings.ToLower(val)
			case "font-weight":
				ff.Weight = val
			case "unicode-range":
				ff.UnicodeRange = val
			default:
				p.log.Debug("Ignoring @font-face descriptor", zap.ByteString("name", data))
			}
		}
	}
}

// joinTokens restores declaration value text. Values come without
// whitespace, so separators are put back: ", " after commas and a single
// space between adjacent components.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	prev := css.CommaToken
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.CommaToken:
			sb.WriteString(", ")
			prev = t.TokenType
			continue
		}
		if sb.Len() > 0 && separated(prev, t.TokenType) {
			sb.WriteByte(' ')
		}
		sb.Write(t.Data)
		prev = t.TokenType
	}
	return strings.TrimSuffix(sb.String(), ", ")
}

// separated reports whether adjacent value components need a space between
// them.
func separated(prev, cur css.TokenType) bool {
	switch prev {
	case css.CommaToken, css.FunctionToken, css.LeftParenthesisToken:
		return false
	}
	return cur != css.RightParenthesisToken
}
