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
	"github.com/gnames/gnoccur/internal/iosites"
	"github.com/spf13/cobra"
)

// getSitesCmd returns the sites command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getSitesCmd() *cobra.Command {
	sitesCmd := &cobra.Command{
		Use:   "sites",
		Short: "Prepare protected-site polygons for the spatial join",
		Long: `Prepare the protected-site polygon layer for the spatial join.

This command:
  1. Reads the source GeoPackage layer (sites.source_file in the
     config, e.g. a Natura 2000 download)
  2. Reprojects Web-Mercator geometries to WGS84; layers already in
     WGS84 pass through unchanged
  3. Reduces the attribute table to the four configured site columns
  4. Writes the cleaned layer to data/external/sites

Example:
  gnoccur sites`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSites(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return sitesCmd
}

func runSites(cmd *cobra.Command) error {
	start := time.Now()
	prep := iosites.New(cfg)
	n, err := prep.Run()
	if err != nil {
		return err
	}

	gn.Info(
		"Prepared %s protected sites in %s: <em>%s</em>",
		humanize.Comma(int64(n)),
		gnfmt.TimeString(time.Since(start).Seconds()),
		cfg.PreparedSitesFile(),
	)
	return nil
}
