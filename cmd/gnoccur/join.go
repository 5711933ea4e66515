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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnoccur/internal/iojoin"
	"github.com/spf13/cobra"
)

// getJoinCmd returns the join command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getJoinCmd() *cobra.Command {
	joinCmd := &cobra.Command{
		Use:   "join",
		Short: "Join filtered occurrences with protected sites",
		Long: `Spatially join filtered occurrences with protected-site polygons.

Each occurrence point is tested against the prepared site polygons. A
point inside several overlapping sites yields one output row per site;
points outside every site keep empty site attributes. The enriched
layer is written as a GeoPackage to data/processed.

Requires the outputs of the filter and sites stages.

Example:
  gnoccur join`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runJoin(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return joinCmd
}

func runJoin(cmd *cobra.Command) error {
	start := time.Now()
	jnr := iojoin.New(cfg)
	stats, err := jnr.Run()
	if err != nil {
		return err
	}

	gn.Info(
		"Wrote %s enriched rows in %s: <em>%s</em>",
		humanize.Comma(int64(stats.Rows)),
		gnfmt.TimeString(time.Since(start).Seconds()),
		cfg.EnrichedFile(),
	)
	return nil
}
