// Package iometrics runs the metrics stage: it loads the spatially
// enriched layer, keeps the occurrences that matched a protected site
// and writes the aggregate metric tables computed by pkg/metrics.
package iometrics

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/internal/iogpkg"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/metrics"
	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Artifact describes the outcome of one metrics table.
type Artifact struct {
	// Kind is the table kind: "sites", "ms", "species", "sitetype" or
	// "sites_temporal_gaps".
	Kind string
	// Path is where the table was (or would have been) written.
	Path string
	// Written reports whether the table was produced.
	Written bool
	// Reason explains a skipped table.
	Reason string
}

// Engine runs the metrics stage.
type Engine struct {
	cfg *config.Config
}

// New creates an Engine for the given configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run computes and writes all metric tables. Zero matched occurrences
// is a valid empty outcome: every table is skipped and the run
// succeeds.
func (e *Engine) Run() ([]Artifact, error) {
	rows, err := e.loadRows()
	if err != nil {
		return nil, err
	}

	matched := metrics.InSites(rows)
	if len(matched) == 0 {
		gn.Info("No occurrences matched a protected site; " +
			"no metrics were produced")
		return e.skipAll("no occurrences matched a protected site"), nil
	}

	artifacts := []Artifact{
		e.writeSites(matched),
		e.writeMemberStates(matched),
		e.writeSpecies(matched),
		e.writeSiteTypes(matched),
		e.writeGaps(matched),
	}
	for _, a := range artifacts {
		if !a.Written {
			slog.Warn("Skipped metrics table",
				"kind", a.Kind, "reason", a.Reason)
		}
	}
	return artifacts, nil
}

// loadRows reads the enriched layer into metric rows.
func (e *Engine) loadRows() ([]metrics.Row, error) {
	path := e.cfg.EnrichedFile()
	layer, err := iogpkg.ReadLayer(path, e.cfg.EnrichedLayer())
	if err != nil {
		return nil, MetricsInputError(path, err)
	}

	col := func(name string) int {
		for i, c := range layer.Columns {
			if c == name {
				return i
			}
		}
		return -1
	}
	taxon := col(occurrence.ColTaxonKey)
	name := col(occurrence.ColScientificName)
	year := col(occurrence.ColYear)
	code := col(e.cfg.Sites.SiteCodeColumn)
	siteName := col(e.cfg.Sites.SiteNameColumn)
	ms := col(e.cfg.Sites.MemberStateColumn)
	siteType := col(e.cfg.Sites.SiteTypeColumn)

	value := func(values []string, i int) string {
		if i < 0 || i >= len(values) {
			return ""
		}
		return values[i]
	}

	rows := make([]metrics.Row, 0, len(layer.Features))
	for _, ft := range layer.Features {
		row := metrics.Row{
			SiteCode:       value(ft.Values, code),
			SiteName:       value(ft.Values, siteName),
			MemberState:    value(ft.Values, ms),
			SiteType:       value(ft.Values, siteType),
			TaxonKey:       value(ft.Values, taxon),
			ScientificName: value(ft.Values, name),
		}
		if year >= 0 {
			row.Year = occurrence.ParseYear(value(ft.Values, year))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (e *Engine) skipAll(reason string) []Artifact {
	kinds := []string{
		"sites", "ms", "species", "sitetype", "sites_temporal_gaps",
	}
	res := make([]Artifact, len(kinds))
	for i, kind := range kinds {
		res[i] = Artifact{
			Kind:   kind,
			Path:   e.cfg.MetricsFile(kind),
			Reason: reason,
		}
	}
	return res
}

func (e *Engine) writeSites(rows []metrics.Row) Artifact {
	table := [][]string{{
		"site_code", "site_name", "ms", "site_type",
		"n_occurrences", "n_species", "year_min", "year_max", "n_years",
	}}
	for _, r := range metrics.Sites(rows) {
		table = append(table, []string{
			r.SiteCode, r.SiteName, r.MemberState, r.SiteType,
			strconv.Itoa(r.NOccurrences), strconv.Itoa(r.NSpecies),
			occurrence.FormatInt(r.YearMin),
			occurrence.FormatInt(r.YearMax),
			strconv.Itoa(r.NYears),
		})
	}
	return e.persist("sites", table)
}

func (e *Engine) writeMemberStates(rows []metrics.Row) Artifact {
	table := [][]string{{
		"ms", "n_occurrences", "n_sites", "n_species",
		"year_min", "year_max", "n_years",
	}}
	for _, r := range metrics.MemberStates(rows) {
		table = append(table, []string{
			r.MemberState,
			strconv.Itoa(r.NOccurrences), strconv.Itoa(r.NSites),
			strconv.Itoa(r.NSpecies),
			occurrence.FormatInt(r.YearMin),
			occurrence.FormatInt(r.YearMax),
			strconv.Itoa(r.NYears),
		})
	}
	return e.persist("ms", table)
}

func (e *Engine) writeSpecies(rows []metrics.Row) Artifact {
	table := [][]string{{
		"taxonKey", "scientificName", "n_occurrences_natura", "n_sites",
		"n_ms", "year_min", "year_max", "n_years",
		"temporal_span", "temporal_completeness",
	}}
	for _, r := range metrics.Species(rows) {
		completeness := ""
		if r.TemporalCompleteness.Valid {
			completeness = metrics.FormatFraction(
				r.TemporalCompleteness.Value,
			)
		}
		table = append(table, []string{
			r.TaxonKey, r.ScientificName,
			strconv.Itoa(r.NOccurrences), strconv.Itoa(r.NSites),
			strconv.Itoa(r.NMemberStates),
			occurrence.FormatInt(r.YearMin),
			occurrence.FormatInt(r.YearMax),
			strconv.Itoa(r.NYears),
			occurrence.FormatInt(r.TemporalSpan),
			completeness,
		})
	}
	return e.persist("species", table)
}

func (e *Engine) writeSiteTypes(rows []metrics.Row) Artifact {
	table := [][]string{{
		"site_type", "n_sites", "n_occurrences", "n_species",
		"year_min", "year_max", "n_years",
	}}
	for _, r := range metrics.SiteTypes(rows) {
		table = append(table, []string{
			r.SiteType,
			strconv.Itoa(r.NSites), strconv.Itoa(r.NOccurrences),
			strconv.Itoa(r.NSpecies),
			occurrence.FormatInt(r.YearMin),
			occurrence.FormatInt(r.YearMax),
			strconv.Itoa(r.NYears),
		})
	}
	return e.persist("sitetype", table)
}

func (e *Engine) writeGaps(rows []metrics.Row) Artifact {
	gaps := metrics.TemporalGaps(rows)
	if len(gaps) == 0 {
		return Artifact{
			Kind:   "sites_temporal_gaps",
			Path:   e.cfg.MetricsFile("sites_temporal_gaps"),
			Reason: "no year data in matched occurrences",
		}
	}

	table := [][]string{{
		"site_code", "site_name", "ms", "site_type",
		"year_min", "year_max", "n_years", "n_occurrences",
		"expected_years", "missing_years", "gap_fraction",
	}}
	for _, r := range gaps {
		table = append(table, []string{
			r.SiteCode, r.SiteName, r.MemberState, r.SiteType,
			strconv.Itoa(r.YearMin), strconv.Itoa(r.YearMax),
			strconv.Itoa(r.NYears), strconv.Itoa(r.NOccurrences),
			strconv.Itoa(r.ExpectedYears), strconv.Itoa(r.MissingYears),
			metrics.FormatFraction(r.GapFraction),
		})
	}
	return e.persist("sites_temporal_gaps", table)
}

func (e *Engine) persist(kind string, table [][]string) Artifact {
	res := Artifact{Kind: kind, Path: e.cfg.MetricsFile(kind)}
	if err := writeCSV(res.Path, table); err != nil {
		res.Reason = err.Error()
		return res
	}
	res.Written = true
	slog.Info("Wrote metrics table",
		"kind", kind, "file", res.Path, "rows", len(table)-1)
	return res
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return MetricsWriteError(path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return MetricsWriteError(path, err)
	}
	w := csv.NewWriter(file)
	if err = w.WriteAll(rows); err != nil {
		file.Close()
		return MetricsWriteError(path, err)
	}
	if err = file.Close(); err != nil {
		return MetricsWriteError(path, err)
	}
	return nil
}
