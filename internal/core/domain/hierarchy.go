package domain

import (
	"errors"
	"sort"
	"strings"
)

// Entry is one dated, labeled comment filed under a hierarchy path.
type Entry struct {
	Date          string `json:"date"`
	Comment       string `json:"comment"`
	StandardLabel string `json:"standard_label"`
}

// Hierarchy is the source → curve → grouping_var → entries document that
// is the authoritative store of categorized comments over time. It is
// append-only: entries are added at the tail of their leaf list and never
// reordered, updated, or deleted in place. Corrections happen by editing
// the serialized document out of band.
type Hierarchy map[string]map[string]map[string][]Entry

// ErrMissingCurve rejects records that cannot be filed because they carry
// no curve identity.
var ErrMissingCurve = errors.New("missing curve identifier")

// NewHierarchy returns an empty document. An absent backing file and an
// empty document are equivalent on load.
func NewHierarchy() Hierarchy {
	return Hierarchy{}
}

// Append files an entry under (source, curve, groupingVar), creating the
// intermediate levels on demand. A blank curve is rejected rather than
// silently filed under an empty key.
func (h Hierarchy) Append(source, curve, groupingVar string, entry Entry) error {
	if strings.TrimSpace(curve) == "" {
		return ErrMissingCurve
	}
	leaf := h.getOrCreatePath(source, curve, groupingVar)
	h[source][curve][groupingVar] = append(leaf, entry)
	return nil
}

func (h Hierarchy) getOrCreatePath(source, curve, groupingVar string) []Entry {
	curves, ok := h[source]
	if !ok {
		curves = map[string]map[string][]Entry{}
		h[source] = curves
	}
	groups, ok := curves[curve]
	if !ok {
		groups = map[string][]Entry{}
		curves[curve] = groups
	}
	return groups[groupingVar]
}

// EntryCount returns the total number of filed entries.
func (h Hierarchy) EntryCount() int {
	total := 0
	for _, curves := range h {
		for _, groups := range curves {
			for _, entries := range groups {
				total += len(entries)
			}
		}
	}
	return total
}

// Sources returns the source keys in ascending order.
func (h Hierarchy) Sources() []string {
	return sortedKeys(h)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Walk visits every leaf in deterministic (sorted-key) order, preserving
// each leaf's entry order exactly as appended.
func (h Hierarchy) Walk(fn func(source, curve, groupingVar string, entries []Entry)) {
	for _, source := range sortedKeys(h) {
		curves := h[source]
		for _, curve := range sortedKeys(curves) {
			groups := curves[curve]
			for _, groupingVar := range sortedKeys(groups) {
				fn(source, curve, groupingVar, groups[groupingVar])
			}
		}
	}
}
