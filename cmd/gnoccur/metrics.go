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
	"github.com/gnames/gnoccur/internal/iometrics"
	"github.com/spf13/cobra"
)

// getMetricsCmd returns the metrics command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getMetricsCmd() *cobra.Command {
	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Write aggregate metrics tables",
		Long: `Derive aggregate metrics from the enriched occurrence layer.

Only occurrences inside a protected site participate. Five tables are
written:
  - sites:    occurrence, species and year statistics per site
  - ms:       the same statistics per member state, plus site counts
  - species:  per-species statistics with temporal span and completeness
  - sitetype: statistics per site-type code
  - sites_temporal_gaps: expected vs observed years and the gap
    fraction per site

Requires the output of the join stage.

Example:
  gnoccur metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMetrics(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return metricsCmd
}

func runMetrics(cmd *cobra.Command) error {
	eng := iometrics.New(cfg)
	artifacts, err := eng.Run()
	if err != nil {
		return err
	}

	for _, a := range artifacts {
		if a.Written {
			gn.Info("Wrote <em>%s</em>", a.Path)
		} else {
			gn.Warn("Skipped <em>%s</em>: %s", a.Kind, a.Reason)
		}
	}
	return nil
}
