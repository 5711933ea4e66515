// Package iogpkg reads and writes GeoPackage feature layers over the
// embedded SQLite driver. It covers only what the pipeline needs: one
// geometry column per layer and text-valued attributes, plus the
// metadata tables a compliant reader expects.
package iogpkg

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"

	_ "modernc.org/sqlite"
)

// geoPackageAppID is the value of the SQLite application_id pragma in
// a GeoPackage file ("GPKG").
const geoPackageAppID = 0x47504B47

// Layer is one feature layer: a geometry column plus text attributes.
type Layer struct {
	Name           string
	GeometryColumn string
	SRSID          int
	Columns        []string
	Features       []Feature
}

// Feature is one row of a layer; Values align with Layer.Columns. A
// nil geometry round-trips as SQL NULL.
type Feature struct {
	Geometry orb.Geometry
	Values   []string
}

// ReadLayer loads the named layer from a GeoPackage file. An empty
// name selects the file's first feature layer in table-name order.
func ReadLayer(path, name string) (*Layer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, GpkgOpenError(path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, GpkgOpenError(path, err)
	}
	defer db.Close()

	if name == "" {
		err = db.QueryRow(
			`SELECT table_name FROM gpkg_geometry_columns
				ORDER BY table_name LIMIT 1`,
		).Scan(&name)
		if err == sql.ErrNoRows {
			return nil, GpkgLayerError(path, name, nil)
		}
		if err != nil {
			return nil, GpkgLayerError(path, name, err)
		}
	}

	layer := &Layer{Name: name}
	err = db.QueryRow(
		`SELECT column_name, srs_id FROM gpkg_geometry_columns
			WHERE table_name = ?`, name,
	).Scan(&layer.GeometryColumn, &layer.SRSID)
	if err == sql.ErrNoRows {
		return nil, GpkgLayerError(path, name, nil)
	}
	if err != nil {
		return nil, GpkgLayerError(path, name, err)
	}

	if layer.Columns, err = attributeColumns(db, layer); err != nil {
		return nil, GpkgLayerError(path, name, err)
	}
	if err = readFeatures(db, layer); err != nil {
		return nil, err
	}
	return layer, nil
}

// attributeColumns lists the layer's non-geometry, non-key columns in
// table order.
func attributeColumns(db *sql.DB, layer *Layer) ([]string, error) {
	rows, err := db.Query(
		fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(layer.Name)),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err = rows.Scan(
			&cid, &name, &colType, &notNull, &dflt, &pk,
		); err != nil {
			return nil, err
		}
		if pk > 0 || name == layer.GeometryColumn {
			continue
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

func readFeatures(db *sql.DB, layer *Layer) error {
	cols := make([]string, 0, len(layer.Columns)+1)
	cols = append(cols, quoteIdent(layer.GeometryColumn))
	for _, c := range layer.Columns {
		cols = append(cols, quoteIdent(c))
	}
	rows, err := db.Query(fmt.Sprintf(
		"SELECT %s FROM %s",
		strings.Join(cols, ", "), quoteIdent(layer.Name),
	))
	if err != nil {
		return GpkgLayerError("", layer.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var blob []byte
		values := make([]sql.NullString, len(layer.Columns))
		dest := make([]any, 0, len(values)+1)
		dest = append(dest, &blob)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err = rows.Scan(dest...); err != nil {
			return GpkgLayerError("", layer.Name, err)
		}

		var ft Feature
		if blob != nil {
			if ft.Geometry, err = decodeGeometry(blob); err != nil {
				return GpkgGeometryError(layer.Name, err)
			}
		}
		ft.Values = make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				ft.Values[i] = v.String
			}
		}
		layer.Features = append(layer.Features, ft)
	}
	return rows.Err()
}

// WriteLayer writes the layer into a fresh GeoPackage file, replacing
// any file already at path. The identifier ends up in gpkg_contents.
func WriteLayer(path string, layer *Layer, identifier string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return GpkgWriteError(path, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return GpkgWriteError(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return GpkgWriteError(path, err)
	}
	defer db.Close()

	if err = initMetadata(db); err != nil {
		return GpkgWriteError(path, err)
	}
	if err = createFeatureTable(db, layer, identifier); err != nil {
		return GpkgWriteError(path, err)
	}
	if err = insertFeatures(db, layer); err != nil {
		return GpkgWriteError(path, err)
	}
	return nil
}

func initMetadata(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf("PRAGMA application_id = %d", geoPackageAppID),
		"PRAGMA user_version = 10300",
		`CREATE TABLE gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL,
			srs_id INTEGER PRIMARY KEY,
			organization TEXT NOT NULL,
			organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL,
			description TEXT
		)`,
		`INSERT INTO gpkg_spatial_ref_sys VALUES
			('WGS 84', 4326, 'EPSG', 4326,
				'GEOGCS["WGS 84",DATUM["WGS_1984",' ||
				'SPHEROID["WGS 84",6378137,298.257223563]],' ||
				'PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]',
				'longitude/latitude coordinates in decimal degrees'),
			('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined',
				'undefined cartesian coordinate reference system'),
			('Undefined geographic SRS', 0, 'NONE', 0, 'undefined',
				'undefined geographic coordinate reference system')`,
		`CREATE TABLE gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL,
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER
		)`,
		`CREATE TABLE gpkg_geometry_columns (
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL,
			m TINYINT NOT NULL,
			PRIMARY KEY (table_name, column_name)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func createFeatureTable(db *sql.DB, layer *Layer, identifier string) error {
	cols := []string{"fid INTEGER PRIMARY KEY AUTOINCREMENT"}
	cols = append(cols, quoteIdent(layer.GeometryColumn)+" BLOB")
	for _, c := range layer.Columns {
		cols = append(cols, quoteIdent(c)+" TEXT")
	}
	_, err := db.Exec(fmt.Sprintf(
		"CREATE TABLE %s (%s)",
		quoteIdent(layer.Name), strings.Join(cols, ", "),
	))
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO gpkg_contents
			(table_name, data_type, identifier, last_change, srs_id)
			VALUES (?, 'features', ?, ?, ?)`,
		layer.Name, identifier,
		time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		layer.SRSID,
	)
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO gpkg_geometry_columns VALUES (?, ?, 'GEOMETRY', ?, 0, 0)`,
		layer.Name, layer.GeometryColumn, layer.SRSID,
	)
	return err
}

func insertFeatures(db *sql.DB, layer *Layer) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cols := []string{quoteIdent(layer.GeometryColumn)}
	marks := []string{"?"}
	for _, c := range layer.Columns {
		cols = append(cols, quoteIdent(c))
		marks = append(marks, "?")
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(layer.Name),
		strings.Join(cols, ", "), strings.Join(marks, ", "),
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ft := range layer.Features {
		args := make([]any, 0, len(ft.Values)+1)
		if ft.Geometry == nil {
			args = append(args, nil)
		} else {
			blob, err := encodeGeometry(ft.Geometry, int32(layer.SRSID))
			if err != nil {
				return GpkgGeometryError(layer.Name, err)
			}
			args = append(args, blob)
		}
		for _, v := range ft.Values {
			args = append(args, v)
		}
		if _, err = stmt.Exec(args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
