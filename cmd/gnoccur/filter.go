/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnoccur/internal/iofilter"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/spf13/cobra"
)

// getFilterCmd returns the filter command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getFilterCmd() *cobra.Command {
	var archive string

	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Apply quality filters to a downloaded archive",
		Long: `Filter the occurrence table of a downloaded Darwin Core Archive.

This command:
  1. Opens the newest downloaded archive (or the one given with
     --archive)
  2. Streams the occurrence table row by row, applying the quality
     filters: required fields, coordinate uncertainty, basis of record
     and the optional bounding box and year range
  3. Writes survivors to the filtered CSV table
  4. Writes a human-readable summary report with retention statistics
     and top-10 breakdowns

Examples:
  # Filter the newest archive of the configured dataset
  gnoccur filter

  # Filter a specific archive
  gnoccur filter -a data/raw/GBIF_IAS_20250910_120000.zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runFilter(cmd, archive)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	filterCmd.Flags().StringVarP(
		&archive, "archive", "a", "",
		"archive to filter (default: newest download)",
	)

	return filterCmd
}

func runFilter(cmd *cobra.Command, archive string) error {
	ctx := context.Background()

	var err error
	if archive == "" {
		archive, err = latestArchive(cfg)
		if err != nil {
			return err
		}
	}

	gn.Info("Filtering <em>%s</em>", archive)

	start := time.Now()
	flt := iofilter.New(cfg)
	stats, err := flt.Run(ctx, archive)
	if err != nil {
		return err
	}

	gn.Info(
		"Kept %s of %s records (%.1f%%) in %s",
		humanize.Comma(int64(stats.FilteredRecords)),
		humanize.Comma(int64(stats.TotalRecords)),
		stats.Retention(),
		gnfmt.TimeString(time.Since(start).Seconds()),
	)
	gn.Info("Report: <em>%s</em>", cfg.ReportFile())
	return nil
}

// latestArchive finds the newest downloaded archive of the configured
// dataset. Archive names embed the download timestamp, so the
// lexicographically last name is the newest.
func latestArchive(cfg *config.Config) (string, error) {
	pattern := filepath.Join(
		cfg.RawDir(),
		fmt.Sprintf("GBIF_%s_*.zip", cfg.Dataset),
	)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf(
			"no downloaded archives for dataset %s in %s",
			cfg.Dataset, cfg.RawDir(),
		)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
