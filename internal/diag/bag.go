package diag

import (
	"sort"
)

// Bag collects diagnostics across files up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1 << 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add appends d unless the limit is reached. It returns false when d was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddResult adds warnings and errors of r, optionally skipping warnings.
func (b *Bag) AddResult(r Result, ignoreWarnings bool) {
	if !ignoreWarnings {
		for _, d := range r.Warnings {
			b.Add(d)
		}
	}
	for _, d := range r.Errors {
		b.Add(d)
	}
}

// HasErrors returns true if any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// PromoteWarnings turns every warning into an error.
func (b *Bag) PromoteWarnings() {
	for i := range b.items {
		if b.items[i].Severity == SevWarning {
			b.items[i].Severity = SevError
		}
	}
}

// Sort orders diagnostics by file, first highlighted line, severity (desc) and code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		li, lj := firstLine(di), firstLine(dj)
		if li != lj {
			return li < lj
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

func firstLine(d Diagnostic) uint32 {
	if len(d.Highlights) == 0 {
		return 0
	}
	return d.Highlights[0].Line
}
