// Package fontface turns provider generated stylesheets into font face
// records, groups them into rules and writes consolidated stylesheet.
package fontface

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownWeight is matched by any error caused by weight value outside of
// the nine canonical css weights.
var ErrUnknownWeight = errors.New("unknown font weight")

// WeightError reports weight value which could not be resolved to its name.
type WeightError struct {
	Weight string
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("unknown font weight %q", e.Weight)
}

func (e *WeightError) Is(target error) bool {
	return target == ErrUnknownWeight
}

// canonical weights in ascending order, names are used to build file names
var weights = [...]struct{ value, name string }{
	{"100", "Thin"},
	{"200", "ExtraLight"},
	{"300", "Light"},
	{"400", "Regular"},
	{"500", "Medium"},
	{"600", "SemiBold"},
	{"700", "Bold"},
	{"800", "ExtraBold"},
	{"900", "Black"},
}

// Weights returns all canonical numeric weights in ascending order.
func Weights() []string {
	out := make([]string, 0, len(weights))
	for _, w := range weights {
		out = append(out, w.value)
	}
	return out
}

// WeightName maps numeric weight to its canonical label (400 -> Regular).
func WeightName(weight string) (string, error) {
	for _, w := range weights {
		if w.value == weight {
			return w.name, nil
		}
	}
	return "", &WeightError{Weight: weight}
}

// IsItalic reports whether style value denotes italic face.
func IsItalic(style string) bool {
	return strings.EqualFold(strings.TrimSpace(style), "italic")
}

// DisplayName builds human readable face name: family, dash, weight label and
// "Italic" suffix for italic faces, e.g. "Roboto-BoldItalic".
func DisplayName(family, weight, style string) (string, error) {
	name, err := WeightName(weight)
	if err != nil {
		return "", err
	}
	if IsItalic(style) {
		name += "Italic"
	}
	return family + "-" + name, nil
}
