package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gnames/gnoccur/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gnoccur"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(
				tempHome, ".local", "share", "gnoccur", "logs",
			),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(
				tempHome, ".config", "gnoccur", "config.yaml",
			),
		},
		{
			msg: "datasets file",
			fn:  config.DatasetsFilePath,
			res: filepath.Join(
				tempHome, ".config", "gnoccur", "datasets.yaml",
			),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		assert.Equal(t, "IAS", cfg.Dataset)
		assert.Equal(t, ".", cfg.Workspace)

		// GBIF defaults
		assert.Equal(t, "https://api.gbif.org/v1", cfg.GBIF.APIURL)
		assert.Empty(t, cfg.GBIF.User)
		assert.Equal(t, 20*time.Second, cfg.GBIF.PollInterval)
		assert.Zero(t, cfg.GBIF.PollTimeout)
		assert.Contains(t, cfg.GBIF.Countries, "NL")

		// Filter defaults
		assert.Equal(t, 100_000, cfg.Filter.BatchSize)
		assert.Equal(t, 1000.0, cfg.Filter.MaxUncertaintyMeters)
		assert.Equal(t, []string{
			"HUMAN_OBSERVATION",
			"MACHINE_OBSERVATION",
			"PRESERVED_SPECIMEN",
		}, cfg.Filter.AllowedBasis)
		assert.Nil(t, cfg.Filter.LatMin)
		assert.Nil(t, cfg.Filter.YearMin)

		// Sites defaults
		assert.Equal(t, "SITECODE", cfg.Sites.SiteCodeColumn)
		assert.Equal(t, "MS", cfg.Sites.MemberStateColumn)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)
	})
}

func TestOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDataset(" birds "),
		config.OptWorkspace("/data/pipelines"),
		config.OptGBIFAPIURL("https://api.example.org/v1/"),
		config.OptGBIFUser("jdoe"),
		config.OptGBIFCountries([]string{" nl", "be "}),
		config.OptGBIFPollInterval(5 * time.Second),
		config.OptFilterBatchSize(500),
		config.OptFilterMaxUncertainty(250),
		config.OptFilterLatMin(35),
		config.OptFilterYearMax(2020),
	})

	assert.Equal(t, "BIRDS", cfg.Dataset, "dataset is normalized")
	assert.Equal(t, "/data/pipelines", cfg.Workspace)
	assert.Equal(t, "https://api.example.org/v1", cfg.GBIF.APIURL,
		"trailing slash is trimmed")
	assert.Equal(t, "jdoe", cfg.GBIF.User)
	assert.Equal(t, []string{"NL", "BE"}, cfg.GBIF.Countries)
	assert.Equal(t, 5*time.Second, cfg.GBIF.PollInterval)
	assert.Equal(t, 500, cfg.Filter.BatchSize)
	assert.Equal(t, 250.0, cfg.Filter.MaxUncertaintyMeters)
	require.NotNil(t, cfg.Filter.LatMin)
	assert.Equal(t, 35.0, *cfg.Filter.LatMin)
	require.NotNil(t, cfg.Filter.YearMax)
	assert.Equal(t, 2020, *cfg.Filter.YearMax)
}

func TestOptionsRejectInvalid(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDataset(""),
		config.OptWorkspace("  "),
		config.OptFilterBatchSize(-1),
		config.OptFilterMaxUncertainty(0),
		config.OptGBIFPollInterval(-time.Second),
		config.OptLogLevel("verbose"),
		config.OptLogFormat("xml"),
	})

	// invalid values leave the defaults untouched
	assert.Equal(t, "IAS", cfg.Dataset)
	assert.Equal(t, ".", cfg.Workspace)
	assert.Equal(t, 100_000, cfg.Filter.BatchSize)
	assert.Equal(t, 1000.0, cfg.Filter.MaxUncertaintyMeters)
	assert.Equal(t, 20*time.Second, cfg.GBIF.PollInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptDataset("HABITATS"),
		config.OptWorkspace("/srv/gnoccur"),
		config.OptGBIFUser("jdoe"),
		config.OptGBIFEmail("jdoe@example.org"),
		config.OptGBIFPollTimeout(time.Hour),
		config.OptFilterLatMin(35),
		config.OptFilterLatMax(72),
		config.OptFilterYearMin(1990),
		config.OptSitesSourceFile("sites.gpkg"),
		config.OptSitesSourceLayer("NaturaSite_polySite"),
		config.OptLogDestination("stderr"),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, src, dst)
}

func TestToOptionsSkipsHomeDir(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{config.OptHomeDir("/home/jdoe")})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Empty(t, dst.HomeDir, "HomeDir is runtime-only")
}

func TestPaths(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptWorkspace("/ws"),
		config.OptDataset("IAS"),
	})

	tests := []struct {
		msg, path, want string
	}{
		{
			"raw archive",
			cfg.RawArchiveFile("20250910_120000"),
			"/ws/data/raw/GBIF_IAS_20250910_120000.zip",
		},
		{
			"filtered table",
			cfg.FilteredFile(),
			"/ws/data/filtered/IAS/GBIF_IAS_filtered_occurrences.csv",
		},
		{
			"report",
			cfg.ReportFile(),
			"/ws/results/filtering/IAS/GBIF_IAS_summary_report.txt",
		},
		{
			"species summary",
			cfg.SummaryFile("species"),
			"/ws/results/summary/IAS/GBIF_IAS_species_summary.csv",
		},
		{
			"audit log",
			cfg.AuditLogFile(),
			"/ws/logs/IAS/IAS_spatial_validation.log",
		},
		{
			"prepared sites",
			cfg.PreparedSitesFile(),
			"/ws/data/external/sites/sites_prepared.gpkg",
		},
		{
			"enriched layer file",
			cfg.EnrichedFile(),
			"/ws/data/processed/IAS/GBIF_IAS_with_sites.gpkg",
		},
		{
			"sites metrics",
			cfg.MetricsFile("sites"),
			"/ws/results/metrics/IAS/sites_metrics_IAS.csv",
		},
		{
			"temporal gaps",
			cfg.MetricsFile("sites_temporal_gaps"),
			"/ws/results/metrics/IAS/sites_temporal_gaps_IAS.csv",
		},
	}

	for _, v := range tests {
		assert.Equal(t, filepath.FromSlash(v.want), v.path, v.msg)
	}

	assert.Equal(t, "gbif_ias_with_sites", cfg.EnrichedLayer())
}
