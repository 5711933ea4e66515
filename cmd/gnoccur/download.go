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
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnoccur/internal/iodownload"
	"github.com/gnames/gnoccur/internal/iospecies"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/datasets"
	"github.com/spf13/cobra"
)

// getDownloadCmd returns the download command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Request and fetch a GBIF occurrence archive",
		Long: `Request a Darwin Core Archive download from GBIF and save it
to the workspace.

This command:
  1. Reads datasets.yaml to find the configured dataset variant
  2. Extracts GBIF taxon keys from the dataset's species checklist
  3. Submits a download request with the taxon, country, uncertainty
     and basis-of-record predicate
  4. Polls the job status until GBIF finishes preparing the archive
  5. Streams the archive to data/raw with a timestamped name

GBIF credentials are required (GNOCCUR_GBIF_USER, GNOCCUR_GBIF_PASSWORD,
GNOCCUR_GBIF_EMAIL or the matching config.yaml fields). Large requests
can take GBIF a long time to prepare; by default polling waits
indefinitely, gbif.poll_timeout bounds it.

Examples:
  # Download occurrences for the configured dataset
  gnoccur download

  # Download the BIRDS variant
  gnoccur download -d BIRDS`,
		Aliases: []string{"dl"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDownload(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return downloadCmd
}

func runDownload(cmd *cobra.Command) error {
	ctx := context.Background()

	registry, err := datasets.Load(config.DatasetsFilePath(homeDir))
	if err != nil {
		return err
	}

	ds, err := registry.Get(cfg.Dataset)
	if err != nil {
		return err
	}

	speciesPath := ds.SpeciesFile
	if !filepath.IsAbs(speciesPath) {
		speciesPath = filepath.Join(cfg.Workspace, speciesPath)
	}

	keys, err := iospecies.TaxonKeys(speciesPath)
	if err != nil {
		return err
	}

	gn.Info(
		"Dataset <em>%s</em>: %s taxon keys from <em>%s</em>",
		ds.Name, humanize.Comma(int64(len(keys))), speciesPath,
	)

	start := time.Now()
	dl := iodownload.New(cfg)
	path, err := dl.Run(ctx, keys)
	if err != nil {
		return err
	}

	gn.Info(
		"Saved archive to <em>%s</em> in %s",
		path, gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return nil
}
