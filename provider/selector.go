package provider

import (
	"fmt"
	"strings"

	"wfc/fontface"
)

const italicSuffix = "italic"

// Variant is a single weight/style combination requested from provider.
type Variant struct {
	Weight string
	Italic bool
}

func (v Variant) String() string {
	if v.Italic {
		return v.Weight + italicSuffix
	}
	return v.Weight
}

// Selector is ordered list of requested variants as it appears in the
// stylesheet request.
type Selector []Variant

func (s Selector) String() string {
	parts := make([]string, 0, len(s))
	for _, v := range s {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

// SelectorError reports malformed weight selector token.
type SelectorError struct {
	Token string
	Err   error
}

func (e *SelectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad weight selector %q: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("bad weight selector %q", e.Token)
}

func (e *SelectorError) Unwrap() error {
	return e.Err
}

// DefaultSelector requests every known weight, regular ones first, then
// italics.
func DefaultSelector() Selector {
	weights := fontface.Weights()
	s := make(Selector, 0, 2*len(weights))
	for _, italic := range []bool{false, true} {
		for _, w := range weights {
			s = append(s, Variant{Weight: w, Italic: italic})
		}
	}
	return s
}

// ParseSelector parses comma separated list of "NNN" or "NNNitalic" tokens.
// Empty input selects everything. Duplicates are dropped keeping first
// occurrence.
func ParseSelector(in string) (Selector, error) {
	if strings.TrimSpace(in) == "" {
		return DefaultSelector(), nil
	}

	var s Selector
	seen := make(map[Variant]bool)
	for token := range strings.SplitSeq(in, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, &SelectorError{Token: in}
		}
		v := Variant{Weight: token}
		if w, ok := strings.CutSuffix(strings.ToLower(token), italicSuffix); ok {
			v = Variant{Weight: w, Italic: true}
		}
		if _, err := fontface.WeightName(v.Weight); err != nil {
			return nil, &SelectorError{Token: token, Err: err}
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		s = append(s, v)
	}
	return s, nil
}
