package iosites

import (
	"path/filepath"
	"testing"

	"github.com/gnames/gnoccur/internal/iogpkg"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceLayer(srsID int, columns []string, values []string) *iogpkg.Layer {
	poly := orb.Polygon{orb.Ring{
		{8, 45}, {9, 45}, {9, 46}, {8, 46}, {8, 45},
	}}
	return &iogpkg.Layer{
		Name:           "NaturaSite_polySite",
		GeometryColumn: "geom",
		SRSID:          srsID,
		Columns:        columns,
		Features:       []iogpkg.Feature{{Geometry: poly, Values: values}},
	}
}

func testPreparer(t *testing.T, layer *iogpkg.Layer) *Preparer {
	t.Helper()
	ws := t.TempDir()
	source := filepath.Join(ws, "natura2000.gpkg")
	err := iogpkg.WriteLayer(source, layer, layer.Name)
	require.NoError(t, err)

	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptWorkspace(ws),
		config.OptSitesSourceFile(source),
		config.OptSitesSourceLayer(layer.Name),
	})
	return New(cfg)
}

func TestRun(t *testing.T) {
	layer := sourceLayer(4326,
		[]string{"SITECODE", "SITENAME", "MS", "SITETYPE", "AREA_HA"},
		[]string{"IT123", "Test site", "IT", "A", "42.5"})
	p := testPreparer(t, layer)

	n, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := iogpkg.ReadLayer(
		p.cfg.PreparedSitesFile(), config.PreparedSitesLayer,
	)
	require.NoError(t, err)
	assert.Equal(t, 4326, got.SRSID)
	// extra columns are dropped, key columns kept in order
	assert.Equal(t,
		[]string{"SITECODE", "SITENAME", "MS", "SITETYPE"}, got.Columns)
	assert.Equal(t,
		[]string{"IT123", "Test site", "IT", "A"},
		got.Features[0].Values)
}

func TestRunReprojects(t *testing.T) {
	// Web-Mercator coordinates of roughly (8.0E, 45.0N).
	merc := orb.Polygon{orb.Ring{
		{890555, 5621521}, {1001875, 5621521},
		{1001875, 5780349}, {890555, 5621521},
	}}
	layer := &iogpkg.Layer{
		Name:           "NaturaSite_polySite",
		GeometryColumn: "geom",
		SRSID:          3857,
		Columns:        []string{"SITECODE", "SITENAME", "MS", "SITETYPE"},
		Features: []iogpkg.Feature{
			{Geometry: merc, Values: []string{"S1", "n", "IT", "A"}},
		},
	}
	p := testPreparer(t, layer)

	_, err := p.Run()
	require.NoError(t, err)

	got, err := iogpkg.ReadLayer(
		p.cfg.PreparedSitesFile(), config.PreparedSitesLayer,
	)
	require.NoError(t, err)
	poly := got.Features[0].Geometry.(orb.Polygon)
	assert.InDelta(t, 8.0, poly[0][0][0], 0.01)
	assert.InDelta(t, 45.0, poly[0][0][1], 0.01)
}

func TestRunNoCRS(t *testing.T) {
	layer := sourceLayer(0,
		[]string{"SITECODE", "SITENAME", "MS", "SITETYPE"},
		[]string{"S1", "n", "IT", "A"})
	p := testPreparer(t, layer)

	_, err := p.Run()
	assert.Error(t, err)
}

func TestRunMissingColumnKeepsAll(t *testing.T) {
	layer := sourceLayer(4326,
		[]string{"SITECODE", "MS"},
		[]string{"S1", "IT"})
	p := testPreparer(t, layer)

	n, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := iogpkg.ReadLayer(
		p.cfg.PreparedSitesFile(), config.PreparedSitesLayer,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"SITECODE", "MS"}, got.Columns)
}

func TestRunMissingSource(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptWorkspace(t.TempDir()),
		config.OptSitesSourceFile("/no/such/file.gpkg"),
	})
	p := New(cfg)

	_, err := p.Run()
	assert.Error(t, err)
}
