package fontface

import (
	"iter"
	"slices"

	"wfc/common"
)

// Key identifies consolidation bucket. Segment is empty for all formats but
// the range-split one, so records of the other four formats sharing weight
// and style end up in the same bucket.
type Key struct {
	Weight  string
	Style   string
	Segment string
}

// KeyOf returns bucket key for record.
func KeyOf(r *Record) Key {
	return Key{Weight: r.Weight, Style: r.Style, Segment: r.Segment}
}

func (k Key) String() string {
	s := k.Weight + k.Style
	if k.Segment != "" {
		s += k.Segment
	}
	return s
}

// Rule is consolidation bucket: all records for the same weight, style and
// (for range-split format) subset, which will become a single rule in the
// resulting stylesheet.
type Rule struct {
	Key
	UnicodeRange string
	// LocalNames is union of members local names in order of first
	// appearance.
	LocalNames []string
	Members    []*Record
}

// RangeSplit reports whether rule was produced from range-split format.
func (r *Rule) RangeSplit() bool {
	return r.Segment != ""
}

// MembersOf returns members produced by stylesheet of the given format, in
// member order.
func (r *Rule) MembersOf(f common.FontFormat) []*Record {
	var out []*Record
	for _, m := range r.Members {
		if m.Source == f {
			out = append(out, m)
		}
	}
	return out
}

// Buckets is insertion ordered collection of rules. Order of keys is order in
// which they were first seen and it determines order of rules in resulting
// stylesheet.
type Buckets struct {
	keys  []Key
	rules map[Key]*Rule
}

// Consolidate groups records from all per-format sequences into buckets.
// Sequences are processed in order given, records in each sequence in their
// source order.
func Consolidate(sets ...[]*Record) *Buckets {
	b := &Buckets{rules: make(map[Key]*Rule)}
	for _, set := range sets {
		for _, rec := range set {
			b.add(rec)
		}
	}
	for _, k := range b.keys {
		rule := b.rules[k]
		for _, m := range rule.Members {
			for _, name := range m.LocalNames {
				if !slices.Contains(rule.LocalNames, name) {
					rule.LocalNames = append(rule.LocalNames, name)
				}
			}
		}
	}
	return b
}

func (b *Buckets) add(rec *Record) {
	k := KeyOf(rec)
	rule, ok := b.rules[k]
	if !ok {
		rule = &Rule{Key: k}
		if rec.Segment != "" {
			rule.UnicodeRange = rec.UnicodeRange
		}
		b.rules[k] = rule
		b.keys = append(b.keys, k)
	}
	rule.Members = append(rule.Members, rec)
}

// Len returns number of buckets.
func (b *Buckets) Len() int {
	return len(b.keys)
}

// Keys returns bucket keys in insertion order.
func (b *Buckets) Keys() []Key {
	return slices.Clone(b.keys)
}

// Get returns rule for key.
func (b *Buckets) Get(k Key) (*Rule, bool) {
	r, ok := b.rules[k]
	return r, ok
}

// All iterates over rules in insertion order.
func (b *Buckets) All() iter.Seq[*Rule] {
	return func(yield func(*Rule) bool) {
		for _, k := range b.keys {
			if !yield(b.rules[k]) {
				return
			}
		}
	}
}

// Records iterates over all records: buckets in insertion order, then members
// of each bucket in insertion order.
func (b *Buckets) Records() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for rule := range b.All() {
			for _, m := range rule.Members {
				if !yield(m) {
					return
				}
			}
		}
	}
}
