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
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/internal/iovalidate"
	"github.com/spf13/cobra"
)

// getValidateCmd returns the validate command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check coordinates of the filtered table",
		Long: `Validate the coordinates of the filtered occurrence table.

Every record is checked for null latitude/longitude and for coordinates
outside the valid WGS84 ranges (latitude -90..90, longitude -180..180).
The outcome is appended to the dataset's audit log, so repeated runs
build a validation history.

The filter stage already drops records without coordinates, so a failed
validation points at a pipeline defect rather than bad source data. A
failed validation is recorded, not treated as a command error.

Example:
  gnoccur validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runValidate(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return validateCmd
}

func runValidate(cmd *cobra.Command) error {
	val := iovalidate.New(cfg)
	res, err := val.Run()
	if err != nil {
		return err
	}

	gn.Info(
		"Checked %s records: <em>%s</em>",
		humanize.Comma(int64(res.TotalRecords)), res.Verdict(),
	)
	if !res.Passed() {
		gn.Warn(
			"null lat: %d, null lon: %d, lat out of range: %d, "+
				"lon out of range: %d",
			res.NullLat, res.NullLon,
			res.LatOutOfRange, res.LonOutOfRange,
		)
	}
	gn.Info("Audit log: <em>%s</em>", cfg.AuditLogFile())
	return nil
}
