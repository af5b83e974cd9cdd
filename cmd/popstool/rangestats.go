package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/remnrem/luna-core/feature"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/pops/refine"
)

// computeRangeStats computes each named column's training-cohort mean
// and SD from m, for later use as a refine.RangeGate at prediction time.
func computeRangeStats(m *feature.Matrix, columns []string) map[string]refine.RangeStat {
	stats := make(map[string]refine.RangeStat, len(columns))
	for _, name := range columns {
		vals := m.Column(name)
		if vals == nil {
			continue
		}
		var sum float64
		n := 0
		for _, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n < 2 {
			continue
		}
		mean := sum / float64(n)
		var ss float64
		for _, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			d := v - mean
			ss += d * d
		}
		stats[name] = refine.RangeStat{Mean: mean, SD: math.Sqrt(ss / float64(n-1))}
	}
	return stats
}

// saveRangeStats writes stats as "name mean sd" lines, one per column.
func saveRangeStats(path string, stats map[string]refine.RangeStat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for name, st := range stats {
		if _, err := fmt.Fprintf(w, "%s\t%g\t%g\n", name, st.Mean, st.SD); err != nil {
			return err
		}
	}
	return w.Flush()
}

// loadRangeStats reads the format saveRangeStats writes.
func loadRangeStats(path string) (map[string]refine.RangeStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stats := map[string]refine.RangeStat{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errs.New(errs.MalformedInput, "popstool: bad range-stats line", line)
		}
		mean, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		sd, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, err
		}
		stats[fields[0]] = refine.RangeStat{Mean: mean, SD: sd}
	}
	return stats, sc.Err()
}
