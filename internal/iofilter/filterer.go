// Package iofilter runs the quality-filter stage: it streams the
// occurrence table out of a Darwin Core archive in fixed-size batches,
// applies the filtering rules, writes survivors to the filtered CSV,
// and renders the filtering report.
package iofilter

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/filter"
	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Filterer runs the filter stage for one raw archive.
type Filterer struct {
	cfg *config.Config
}

// New creates a Filterer for the given configuration.
func New(cfg *config.Config) *Filterer {
	return &Filterer{cfg: cfg}
}

// Run filters the occurrence table of the archive at archivePath.
// Survivors stream to the filtered CSV as they are found; the file is
// only created when at least one record survives. The filtering report
// is written next to the other result tables.
func (f *Filterer) Run(
	ctx context.Context,
	archivePath string,
) (*filter.Stats, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, OpenArchiveError(archivePath, err)
	}
	defer zr.Close()

	member, err := findMember(zr, archivePath)
	if err != nil {
		return nil, err
	}

	rc, err := member.Open()
	if err != nil {
		return nil, ArchiveMemberError(archivePath, err)
	}
	defer rc.Close()

	stats, err := f.filterTable(ctx, rc)
	if err != nil {
		return nil, err
	}

	if stats.FilteredRecords == 0 {
		gn.Info("No records survived filtering; " +
			"no filtered table was written")
	}

	if err = f.writeReport(archivePath, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func findMember(zr *zip.ReadCloser, archivePath string) (*zip.File, error) {
	for _, zf := range zr.File {
		if zf.Name == config.OccurrenceMember {
			return zf, nil
		}
	}
	return nil, ArchiveMemberError(archivePath, nil)
}

// sink creates the filtered CSV lazily, on the first surviving record.
type sink struct {
	path string
	file *os.File
	w    *csv.Writer
}

func (s *sink) write(rec occurrence.Record) error {
	if s.w == nil {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return err
		}
		file, err := os.Create(s.path)
		if err != nil {
			return err
		}
		s.file = file
		s.w = csv.NewWriter(file)
		if err = s.w.Write(occurrence.Columns()); err != nil {
			return err
		}
	}
	return s.w.Write(rec.CSVRow())
}

func (s *sink) close() error {
	if s.w == nil {
		return nil
	}
	s.w.Flush()
	err := s.w.Error()
	s.w = nil
	if err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (f *Filterer) filterTable(
	ctx context.Context,
	r io.Reader,
) (*filter.Stats, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, ReadOccurrenceError(err)
	}
	if check := occurrence.CheckHeader(
		header, occurrence.RequiredColumns(),
	); !check.OK() {
		return nil, MissingColumnsError(check.Missing)
	}
	table := occurrence.NewTable(header)

	rules := filter.NewRules(f.cfg.Filter)
	stats := filter.NewStats()
	out := &sink{path: f.cfg.FilteredFile()}
	defer out.close()

	batchSize := f.cfg.Filter.BatchSize
	var batchRows int
	for {
		if err = ctx.Err(); err != nil {
			return nil, ReadOccurrenceError(err)
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ReadOccurrenceError(err)
		}

		stats.AddRaw(1)
		batchRows++
		rec := table.Record(row)
		if rules.Keep(rec) {
			stats.AddKept(rec)
			if err = out.write(rec); err != nil {
				return nil, WriteFilteredError(out.path, err)
			}
		}

		if batchRows == batchSize {
			batchRows = 0
			slog.Info("Filtered occurrence batch",
				"raw", humanize.Comma(int64(stats.TotalRecords)),
				"kept", humanize.Comma(int64(stats.FilteredRecords)))
		}
	}

	if err = out.close(); err != nil {
		return nil, WriteFilteredError(out.path, err)
	}
	slog.Info("Finished filtering",
		"raw", humanize.Comma(int64(stats.TotalRecords)),
		"kept", humanize.Comma(int64(stats.FilteredRecords)))
	return stats, nil
}

func (f *Filterer) writeReport(archivePath string, stats *filter.Stats) error {
	path := f.cfg.ReportFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return WriteReportError(path, err)
	}
	report := filter.Report(f.cfg.Filter, filepath.Base(archivePath), stats)
	if !strings.HasSuffix(report, "\n") {
		report += "\n"
	}
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return WriteReportError(path, err)
	}
	slog.Info("Wrote filtering report", "file", path)
	return nil
}
