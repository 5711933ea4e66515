// Package iospecies extracts GBIF taxon keys from a species checklist
// CSV. Each row may carry an acceptedUsageKey and a usageKey; the
// accepted key wins when both parse as integers.
package iospecies

import (
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
)

const (
	acceptedKeyColumn = "acceptedUsageKey"
	usageKeyColumn    = "usageKey"
)

// TaxonKeys reads the checklist at path and returns the sorted,
// deduplicated taxon keys. Rows where neither key column holds an
// integer are skipped. A checklist that yields no keys at all is a
// configuration error.
func TaxonKeys(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, SpeciesFileError(path, err)
	}
	defer f.Close()

	keys, err := readKeys(f)
	if err != nil {
		return nil, SpeciesFileError(path, err)
	}
	if len(keys) == 0 {
		return nil, SpeciesNoKeysError(path)
	}
	return keys, nil
}

func readKeys(r io.Reader) ([]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	acceptedIdx, usageIdx := -1, -1
	for i, col := range header {
		switch col {
		case acceptedKeyColumn:
			acceptedIdx = i
		case usageKeyColumn:
			usageIdx = i
		}
	}

	seen := make(map[int]struct{})
	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		key, ok := rowKey(row, acceptedIdx, usageIdx)
		if !ok {
			skipped++
			continue
		}
		seen[key] = struct{}{}
	}

	if skipped > 0 {
		slog.Warn("Skipped checklist rows without a numeric taxon key",
			"rows", skipped)
	}

	keys := make([]int, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys, nil
}

func rowKey(row []string, acceptedIdx, usageIdx int) (int, bool) {
	if key, ok := cellKey(row, acceptedIdx); ok {
		return key, true
	}
	return cellKey(row, usageIdx)
}

// cellKey parses a key cell. Checklists exported by dataframe tools
// often render integer keys as floats ("2498252.0"), so a float form
// with no fractional part is accepted too.
func cellKey(row []string, idx int) (int, bool) {
	if idx < 0 || idx >= len(row) {
		return 0, false
	}
	if key, err := strconv.Atoi(row[idx]); err == nil {
		return key, true
	}
	f, err := strconv.ParseFloat(row[idx], 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
