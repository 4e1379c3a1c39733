package fontface

import (
	"wfc/common"
)

// Record is a single font resource discovered in provider stylesheet for one
// of the formats.
type Record struct {
	Family string
	Weight string
	// Style is lower-cased as parsed: "normal" or "italic".
	Style string
	// Segment and UnicodeRange are only set for range-split format, where
	// segment is the label of the comment preceding the rule.
	Segment      string
	UnicodeRange string
	LocalNames   []string
	URL          string
	// Format is css format() hint, inferred for the legacy format.
	Format string
	// Source is the format whose stylesheet produced the record.
	Source common.FontFormat
	// Name is display name, see DisplayName.
	Name string
	// LocalFile is path the resource was stored at, empty until retrieved.
	LocalFile string
}

// Ext returns file extension (without dot) for locally stored copy.
func (r *Record) Ext() string {
	return r.Source.Ext()
}

// Italic reports whether record describes italic face.
func (r *Record) Italic() bool {
	return IsItalic(r.Style)
}

// FileName returns default local file name for the record:
// Name + "." + [Segment + "."] + ext.
func (r *Record) FileName() string {
	name := r.Name + "."
	if r.Segment != "" {
		name += r.Segment + "."
	}
	return name + r.Ext()
}

// Retrieved reports whether record has been stored locally.
func (r *Record) Retrieved() bool {
	return r.LocalFile != ""
}
