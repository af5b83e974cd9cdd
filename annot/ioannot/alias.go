package ioannot

import (
	"strings"

	farm "github.com/dgryski/go-farm"

	"github.com/remnrem/luna-core/internal/errs"
)

// aliasEntry is one canonical<-original binding.
type aliasEntry struct {
	canonical string
	original  string // case as first seen
}

// AliasTable implements the one-to-one canonical<-original remap of
// SPEC_FULL.md §4.2: case-insensitive on the original, case-preserving on
// the canonical's first-seen form. Lookups are hashed with go-farm
// (SPEC_FULL.md "DOMAIN STACK") so that resolving a class label against a
// large remap table stays O(1) per row on the tabular-reader hot path
// instead of repeatedly lowercasing and map-probing with strings.
type AliasTable struct {
	// bucket maps a farm hash of the lowercased original to the (small)
	// list of entries that hash there, to absorb collisions.
	bucket map[uint64][]aliasEntry
	// canonicals tracks every canonical name ever assigned, to reject an
	// alias that is itself a canonical (rule a).
	canonicals map[string]bool
	// originalToCanonical guards rule (b): two distinct originals may not
	// map to the same canonical if both exist in the input. Keyed by
	// lowercased original.
	originalToCanonical map[string]string
}

// NewAliasTable returns an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{
		bucket:              map[uint64][]aliasEntry{},
		canonicals:          map[string]bool{},
		originalToCanonical: map[string]string{},
	}
}

func hashLower(s string) uint64 {
	return farm.Hash64([]byte(strings.ToLower(s)))
}

// Add binds original to canonical, enforcing rules (a)-(c) of
// SPEC_FULL.md §4.2:
//
//	(a) an alias may not itself already be a canonical
//	(b) two distinct originals may not map to the same canonical
//	    if both exist in the input
//	(c) circular maps are rejected
func (a *AliasTable) Add(canonical, original string) error {
	lowerOrig := strings.ToLower(original)
	lowerCanon := strings.ToLower(canonical)

	if a.canonicals[lowerOrig] && lowerOrig != lowerCanon {
		return errs.New(errs.ConstraintViolation, "ioannot: alias", original, "is itself a canonical class")
	}
	if existing, ok := a.originalToCanonical[lowerOrig]; ok && existing != lowerCanon {
		return errs.New(errs.ConstraintViolation, "ioannot: original", original, "already maps to", existing)
	}
	if lowerCanon == lowerOrig {
		// identity alias: harmless, but guards against a later real
		// circularity through a third name.
	}
	if canon2, ok := a.originalToCanonical[lowerCanon]; ok && canon2 != lowerCanon {
		return errs.New(errs.ConstraintViolation, "ioannot: circular alias through", canonical)
	}

	h := hashLower(original)
	a.bucket[h] = append(a.bucket[h], aliasEntry{canonical: canonical, original: original})
	a.canonicals[lowerCanon] = true
	a.originalToCanonical[lowerOrig] = lowerCanon
	return nil
}

// Resolve returns the canonical name for name (applying the alias table),
// or name unchanged if no alias matches.
func (a *AliasTable) Resolve(name string) string {
	h := hashLower(name)
	lower := strings.ToLower(name)
	for _, e := range a.bucket[h] {
		if strings.ToLower(e.original) == lower {
			return e.canonical
		}
	}
	return name
}

// LoadDefaults seeds the table with a caller-supplied default remap list
// (SPEC_FULL.md "Supplemented features": Luna bundles a default NSRR remap
// table in addition to any user file; the core exposes the mechanism
// without hardcoding a specific clinical vocabulary).
func (a *AliasTable) LoadDefaults(defaults map[string][]string) error {
	for canonical, originals := range defaults {
		for _, orig := range originals {
			if err := a.Add(canonical, orig); err != nil {
				return err
			}
		}
	}
	return nil
}
