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
	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/internal/iosummary"
	"github.com/spf13/cobra"
)

// getSummaryCmd returns the summary command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getSummaryCmd() *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Write group-by-count summary tables",
		Long: `Derive summary tables from the filtered occurrence table.

Four tables are written, one per grouping column:
  - species: occurrence counts per scientific name, with the canonical
    name form as an extra column
  - country: occurrence counts per country code
  - year:    occurrence counts per year, in chronological order
  - basis:   occurrence counts per basis of record

Count tables are sorted by descending count; groupings whose column is
absent from the filtered table are skipped with a warning.

Example:
  gnoccur summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSummary(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return summaryCmd
}

func runSummary(cmd *cobra.Command) error {
	spl := iosummary.New(cfg)
	artifacts, err := spl.Run()
	if err != nil {
		return err
	}

	reportArtifacts(artifacts)
	return nil
}

func reportArtifacts(artifacts []iosummary.Artifact) {
	for _, a := range artifacts {
		if a.Written {
			gn.Info("Wrote <em>%s</em>", a.Path)
		} else {
			gn.Warn("Skipped <em>%s</em>: %s", a.Kind, a.Reason)
		}
	}
}
