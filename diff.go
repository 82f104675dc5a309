package gotlres

import (
	"slices"
)

// BundleDiff describes how a locale's bundle differs from the reference
// locale's bundle for the same module. Keys are dotted paths, sorted.
type BundleDiff struct {
	// Missing keys exist in the reference but not in the candidate.
	Missing []string `json:"missing,omitempty"`

	// Extra keys exist only in the candidate.
	Extra []string `json:"extra,omitempty"`

	// Mismatched keys hold a string on one side and a non-string on the other.
	Mismatched []string `json:"mismatched,omitempty"`

	// PlaceholderDrift keys are strings on both sides whose {placeholder}
	// sets differ.
	PlaceholderDrift []string `json:"placeholder_drift,omitempty"`
}

// DiffStats contains summary counts for a diff.
type DiffStats struct {
	Missing          int
	Extra            int
	Mismatched       int
	PlaceholderDrift int
}

// Stats returns summary counts for the diff.
func (d *BundleDiff) Stats() DiffStats {
	return DiffStats{
		Missing:          len(d.Missing),
		Extra:            len(d.Extra),
		Mismatched:       len(d.Mismatched),
		PlaceholderDrift: len(d.PlaceholderDrift),
	}
}

// HasProblems reports whether the candidate would produce missing or broken
// messages. Extra keys are not a problem.
func (d *BundleDiff) HasProblems() bool {
	return len(d.Missing) > 0 || len(d.Mismatched) > 0 || len(d.PlaceholderDrift) > 0
}

// DiffBundles compares candidate against reference leaf by leaf.
func DiffBundles(reference, candidate Bundle) *BundleDiff {
	ref := Flatten(reference)
	cand := Flatten(candidate)
	d := &BundleDiff{}

	for key, rv := range ref {
		cv, ok := cand[key]
		if !ok {
			d.Missing = append(d.Missing, key)
			continue
		}
		rs, rIsString := rv.(string)
		cs, cIsString := cv.(string)
		if rIsString != cIsString {
			d.Mismatched = append(d.Mismatched, key)
			continue
		}
		if rIsString && !slices.Equal(Placeholders(rs), Placeholders(cs)) {
			d.PlaceholderDrift = append(d.PlaceholderDrift, key)
		}
	}
	for key := range cand {
		if _, ok := ref[key]; !ok {
			d.Extra = append(d.Extra, key)
		}
	}

	slices.Sort(d.Missing)
	slices.Sort(d.Extra)
	slices.Sort(d.Mismatched)
	slices.Sort(d.PlaceholderDrift)
	return d
}

// MissingKeys returns the keys that do not resolve to a string in bundle,
// sorted and without duplicates.
func MissingKeys(bundle Bundle, keys []string) []string {
	var missing []string
	for _, key := range keys {
		v, ok := Lookup(bundle, key)
		if _, isString := v.(string); ok && isString {
			continue
		}
		missing = append(missing, key)
	}
	slices.Sort(missing)
	return slices.Compact(missing)
}
