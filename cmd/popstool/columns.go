package main

import (
	"sort"

	"github.com/remnrem/luna-core/feature"
	fspec "github.com/remnrem/luna-core/feature/spec"
)

// level1Names returns sp's raw (level-1) column names, in declaration
// order: the subset corpus.WriteBlock/Read actually persist, since
// level-2 columns are derived at load time rather than stored (spec.md
// §6, grounded on original_source/pops/pops.cpp's level2()'s
// "X1.conservativeResize" step that appends empty level-2 columns to a
// level-1-only matrix read back from disk).
func level1Names(sp *fspec.Spec) []string {
	var out []string
	for _, c := range sp.Columns {
		if sp.Blocks[c.Block].Kind.Level() == 1 {
			out = append(out, c.Name)
		}
	}
	return out
}

// fullNames returns every compiled column sp declares, level-1 and
// level-2 combined, in declaration order.
func fullNames(sp *fspec.Spec) []string {
	out := make([]string, len(sp.Columns))
	for i, c := range sp.Columns {
		out[i] = c.Name
	}
	return out
}

// expandToFull widens a level-1-only matrix to sp's full column layout,
// copying over the columns level1 already holds by name and leaving
// newly-added level-2 slots zeroed, ready for applyLevel2 to fill in.
func expandToFull(level1 *feature.Matrix, sp *fspec.Spec) *feature.Matrix {
	full := feature.NewMatrix(level1.NRows(), fullNames(sp))
	full.E = append([]int(nil), level1.E...)
	for _, name := range level1.Columns {
		full.SetColumn(name, level1.Column(name))
	}
	return full
}

// columnsOfBlock returns sp.Columns entries belonging to block index bi,
// sorted by SubIndex (the block's own output column order).
func columnsOfBlock(sp *fspec.Spec, bi int) []fspec.Column {
	var out []fspec.Column
	for _, c := range sp.Columns {
		if c.Block == bi {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubIndex < out[j].SubIndex })
	return out
}

// columnsOfBlockName returns sp.Columns entries whose originating block
// is named name, sorted by SubIndex.
func columnsOfBlockName(sp *fspec.Spec, name string) []fspec.Column {
	var out []fspec.Column
	for _, c := range sp.Columns {
		if sp.Blocks[c.Block].Name == name {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubIndex < out[j].SubIndex })
	return out
}

// stringKeys returns the keys of a set built by config.Params.set,
// for feeding fspec.Spec.Select's keep/drop arguments.
func stringKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
