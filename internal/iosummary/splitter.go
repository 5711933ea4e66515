// Package iosummary splits the filtered occurrence table into four
// group-by-count summary tables: species, country, year and basis of
// record. Each table is an independent artifact; a grouping column
// absent from the input skips that table and nothing else.
package iosummary

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/filter"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/gnames/gnparser"
)

// Artifact describes the outcome of one summary table.
type Artifact struct {
	// Kind is the summary kind: "species", "country", "year" or
	// "basis".
	Kind string
	// Path is where the table was (or would have been) written.
	Path string
	// Written reports whether the table was produced.
	Written bool
	// Reason explains a skipped table.
	Reason string
}

// Splitter runs the summary stage for the filtered table.
type Splitter struct {
	cfg *config.Config
	prs gnparser.GNparser
}

// New creates a Splitter for the given configuration.
func New(cfg *config.Config) *Splitter {
	return &Splitter{
		cfg: cfg,
		prs: gnparser.New(gnparser.NewConfig()),
	}
}

// Run reads the filtered table and writes one summary per grouping
// column found in it. It returns one Artifact per summary kind.
func (s *Splitter) Run() ([]Artifact, error) {
	file, err := os.Open(s.cfg.FilteredFile())
	if err != nil {
		return nil, SummaryInputError(s.cfg.FilteredFile(), err)
	}
	defer file.Close()

	counts, err := readCounts(file)
	if err != nil {
		return nil, SummaryInputError(s.cfg.FilteredFile(), err)
	}

	artifacts := []Artifact{
		s.writeRanked("species", occurrence.ColScientificName,
			counts.species),
		s.writeRanked("country", occurrence.ColCountryCode,
			counts.countries),
		s.writeYears(counts.years, counts.hasYear),
		s.writeRanked("basis", occurrence.ColBasisOfRecord, counts.basis),
	}
	for _, a := range artifacts {
		if !a.Written {
			slog.Warn("Skipped summary table",
				"kind", a.Kind, "reason", a.Reason)
		}
	}
	return artifacts, nil
}

type groupCounts struct {
	species   map[string]int
	countries map[string]int
	basis     map[string]int
	years     map[int]int
	hasYear   bool
}

func readCounts(r io.Reader) (*groupCounts, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	table := occurrence.NewTable(header)

	res := &groupCounts{hasYear: table.Has(occurrence.ColYear)}
	if table.Has(occurrence.ColScientificName) {
		res.species = make(map[string]int)
	}
	if table.Has(occurrence.ColCountryCode) {
		res.countries = make(map[string]int)
	}
	if table.Has(occurrence.ColBasisOfRecord) {
		res.basis = make(map[string]int)
	}
	if res.hasYear {
		res.years = make(map[int]int)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		countField(res.species, table.Field(row, occurrence.ColScientificName))
		countField(res.countries, table.Field(row, occurrence.ColCountryCode))
		countField(res.basis, table.Field(row, occurrence.ColBasisOfRecord))
		if res.years != nil {
			if y := occurrence.ParseYear(
				table.Field(row, occurrence.ColYear),
			); y.Valid {
				res.years[y.Value]++
			}
		}
	}
	return res, nil
}

func countField(m map[string]int, v string) {
	if m == nil || v == "" {
		return
	}
	m[v]++
}

// writeRanked writes one summary sorted by descending count. The
// species table additionally carries the canonical form of each name.
func (s *Splitter) writeRanked(
	kind, column string,
	counts map[string]int,
) Artifact {
	res := Artifact{Kind: kind, Path: s.cfg.SummaryFile(kind)}
	if counts == nil {
		res.Reason = "column " + column + " is absent"
		return res
	}

	header := []string{column, "count"}
	withCanonical := kind == "species"
	if withCanonical {
		header = append(header, "canonicalForm")
	}

	rows := [][]string{header}
	for _, rc := range filter.RankedCounts(counts) {
		row := []string{rc.Key, strconv.Itoa(rc.Count)}
		if withCanonical {
			row = append(row, s.canonical(rc.Key))
		}
		rows = append(rows, row)
	}
	return s.persist(res, rows)
}

func (s *Splitter) writeYears(counts map[int]int, hasYear bool) Artifact {
	res := Artifact{Kind: "year", Path: s.cfg.SummaryFile("year")}
	if !hasYear {
		res.Reason = "column " + occurrence.ColYear + " is absent"
		return res
	}

	rows := [][]string{{occurrence.ColYear, "count"}}
	for _, yc := range filter.YearDistribution(counts) {
		rows = append(rows, []string{
			strconv.Itoa(yc.Year), strconv.Itoa(yc.Count),
		})
	}
	return s.persist(res, rows)
}

func (s *Splitter) persist(res Artifact, rows [][]string) Artifact {
	if err := writeCSV(res.Path, rows); err != nil {
		res.Reason = err.Error()
		return res
	}
	res.Written = true
	slog.Info("Wrote summary table",
		"kind", res.Kind, "file", res.Path, "groups", len(rows)-1)
	return res
}

func (s *Splitter) canonical(name string) string {
	parsed := s.prs.ParseName(name)
	if !parsed.Parsed {
		return ""
	}
	return parsed.Canonical.Simple
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return SummaryWriteError(path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return SummaryWriteError(path, err)
	}
	w := csv.NewWriter(file)
	if err = w.WriteAll(rows); err != nil {
		file.Close()
		return SummaryWriteError(path, err)
	}
	if err = file.Close(); err != nil {
		return SummaryWriteError(path, err)
	}
	return nil
}
