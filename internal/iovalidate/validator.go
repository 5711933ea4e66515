// Package iovalidate checks the spatial sanity of the filtered table:
// null coordinate counts and coordinates outside the valid latitude and
// longitude ranges. Every run appends its verdict to an audit log so
// repeated validations of a dataset stay traceable.
package iovalidate

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/google/uuid"
)

// Result is the outcome of one validation run.
type Result struct {
	RunID         string
	CheckedAt     time.Time
	TotalRecords  int
	NullLat       int
	NullLon       int
	LatOutOfRange int
	LonOutOfRange int
}

// Passed reports whether the table is spatially sound.
func (r Result) Passed() bool {
	return r.NullLat == 0 && r.NullLon == 0 &&
		r.LatOutOfRange == 0 && r.LonOutOfRange == 0
}

// Verdict renders the one-word outcome used in logs and on screen.
func (r Result) Verdict() string {
	if r.Passed() {
		return "PASSED"
	}
	return "FAILED"
}

// Validator runs the validation stage.
type Validator struct {
	cfg *config.Config
}

// New creates a Validator for the given configuration.
func New(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Run validates the filtered table and appends the verdict to the
// audit log. A failed validation is a result, not an error; errors
// mean the stage itself could not run.
func (v *Validator) Run() (Result, error) {
	var res Result
	file, err := os.Open(v.cfg.FilteredFile())
	if err != nil {
		return res, ValidationInputError(v.cfg.FilteredFile(), err)
	}
	defer file.Close()

	res, err = validate(file)
	if err != nil {
		return res, ValidationInputError(v.cfg.FilteredFile(), err)
	}
	res.RunID = uuid.New().String()
	res.CheckedAt = time.Now()

	if err = v.appendAudit(res); err != nil {
		return res, err
	}

	slog.Info("Validated filtered table",
		"verdict", res.Verdict(),
		"records", res.TotalRecords,
		"null_lat", res.NullLat,
		"null_lon", res.NullLon,
		"lat_out_of_range", res.LatOutOfRange,
		"lon_out_of_range", res.LonOutOfRange)
	if res.Passed() {
		gn.Info("Spatial validation passed")
	} else {
		gn.Warn("Spatial validation failed; see %s", v.cfg.AuditLogFile())
	}
	return res, nil
}

func validate(r io.Reader) (Result, error) {
	var res Result
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return res, err
	}
	table := occurrence.NewTable(header)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		res.TotalRecords++

		lat := occurrence.ParseFloat(table.Field(row, occurrence.ColLatitude))
		lon := occurrence.ParseFloat(table.Field(row, occurrence.ColLongitude))

		if !lat.Valid {
			res.NullLat++
		} else if lat.Value < -90 || lat.Value > 90 {
			res.LatOutOfRange++
		}
		if !lon.Valid {
			res.NullLon++
		} else if lon.Value < -180 || lon.Value > 180 {
			res.LonOutOfRange++
		}
	}
	return res, nil
}

// appendAudit appends one line per run; the log is never truncated.
func (v *Validator) appendAudit(res Result) error {
	path := v.cfg.AuditLogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return AuditLogError(path, err)
	}
	file, err := os.OpenFile(
		path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644,
	)
	if err != nil {
		return AuditLogError(path, err)
	}
	defer file.Close()

	line := fmt.Sprintf(
		"%s run=%s dataset=%s records=%d null_lat=%d null_lon=%d "+
			"lat_out_of_range=%d lon_out_of_range=%d verdict=%s\n",
		res.CheckedAt.Format(time.RFC3339), res.RunID, v.cfg.Dataset,
		res.TotalRecords, res.NullLat, res.NullLon,
		res.LatOutOfRange, res.LonOutOfRange, res.Verdict(),
	)
	if _, err = file.WriteString(line); err != nil {
		return AuditLogError(path, err)
	}
	return nil
}
