// Package common keeps enums shared by configuration and the font face core,
// so neither has to import the other.
package common

//go:generate go tool go-enum --marshal --names --nocase

// Binary font format requested from the provider. Order matters: it is the
// order in which provider stylesheets are fetched and parsed.
// ENUM(eot, woff, woff2, svg, ttf)
type FontFormat int

// Ext returns file extension (without dot) for locally stored copy.
func (f FontFormat) Ext() string {
	return f.String()
}

// Tag returns value used in css format() hint for this format.
func (f FontFormat) Tag() string {
	switch f {
	case FontFormatEot:
		return "embedded-opentype"
	case FontFormatTtf:
		return "truetype"
	case FontFormatWoff, FontFormatWoff2, FontFormatSvg:
		return f.String()
	default:
		// this should never happen
		panic("unsupported font format requested")
	}
}

// RangeSplit reports whether provider splits stylesheet for this format into
// per unicode-range subsets.
func (f FontFormat) RangeSplit() bool {
	return f == FontFormatWoff2
}
