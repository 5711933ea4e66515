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
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/internal/iofs"
	"github.com/gnames/gnoccur/internal/iologger"
	app "github.com/gnames/gnoccur/pkg"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir   string
	cfg       *config.Config
	dataset   string
	workspace string
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnoccur",
		Short:   "GNoccur manages GBIF occurrence datasets for protected areas",
		Long: `GNoccur is a CLI tool for managing the lifecycle of a GBIF
species-occurrence dataset, from the download request through quality
filtering and spatial enrichment with protected-site polygons to
aggregate metrics tables.

The pipeline stages, in order:
  - download: request and fetch an occurrence archive from GBIF
  - filter:   apply quality filters, write report and filtered table
  - summary:  write group-by-count summary tables
  - validate: check coordinates, append to the audit log
  - sites:    prepare protected-site polygons (WGS84, reduced columns)
  - join:     point-in-polygon join of occurrences with sites
  - metrics:  per-site, per-country, per-species and temporal-gap tables

Each stage reads the previous stage's output from the workspace and can
be re-run independently.

Configuration precedence (highest to lowest):
  1. CLI flags (--dataset, --workspace)
  2. Environment variables (GNOCCUR_*)
  3. Config file (~/.config/gnoccur/config.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (gbif.user → GNOCCUR_GBIF_USER).

  Examples:
    GNOCCUR_DATASET                 Dataset variant (BIRDS/HABITATS/IAS)
    GNOCCUR_WORKSPACE               Root directory for data and results
    GNOCCUR_GBIF_USER               GBIF account name
    GNOCCUR_GBIF_PASSWORD           GBIF account password
    GNOCCUR_GBIF_EMAIL              Notification address for downloads
    GNOCCUR_LOG_LEVEL               Log level (debug/info/warn/error)

  See 'go doc github.com/gnames/gnoccur/pkg/config' for complete list.`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "gnoccur version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gnoccur")

	rootCmd.PersistentFlags().StringVarP(
		&dataset, "dataset", "d", "",
		"dataset variant to process (BIRDS/HABITATS/IAS)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&workspace, "workspace", "w", "",
		"root directory for data, results and logs",
	)

	rootCmd.AddCommand(getDownloadCmd())
	rootCmd.AddCommand(getFilterCmd())
	rootCmd.AddCommand(getSummaryCmd())
	rootCmd.AddCommand(getValidateCmd())
	rootCmd.AddCommand(getSitesCmd())
	rootCmd.AddCommand(getJoinCmd())
	rootCmd.AddCommand(getMetricsCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults.
	// Will be reconfigured later with user's config settings.
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDatasetsFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// CLI flags win over config file and environment
	var flagOpts []config.Option
	if dataset != "" {
		flagOpts = append(flagOpts, config.OptDataset(dataset))
	}
	if workspace != "" {
		flagOpts = append(flagOpts, config.OptWorkspace(workspace))
	}
	if len(flagOpts) > 0 {
		cfg.Update(flagOpts)
	}

	// Reconfigure logging with user's settings, appending so the
	// bootstrap lines are not lost.
	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"dataset", cfg.Dataset,
	)

	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are
	// allowed. These match the fields included in config.ToOptions().
	v.SetEnvPrefix("GNOCCUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// General configuration
	v.BindEnv("dataset", "DATASET")
	v.BindEnv("workspace", "WORKSPACE")

	// GBIF configuration
	v.BindEnv("gbif.api_url", "GBIF_API_URL")
	v.BindEnv("gbif.user", "GBIF_USER")
	v.BindEnv("gbif.password", "GBIF_PASSWORD")
	v.BindEnv("gbif.email", "GBIF_EMAIL")
	v.BindEnv("gbif.poll_interval", "GBIF_POLL_INTERVAL")
	v.BindEnv("gbif.poll_timeout", "GBIF_POLL_TIMEOUT")

	// Filter configuration
	v.BindEnv("filter.batch_size", "FILTER_BATCH_SIZE")
	v.BindEnv("filter.max_uncertainty_meters", "FILTER_MAX_UNCERTAINTY_METERS")

	// Sites configuration
	v.BindEnv("sites.source_file", "SITES_SOURCE_FILE")
	v.BindEnv("sites.source_layer", "SITES_SOURCE_LAYER")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	v.AutomaticEnv()
}
