/*
Copyright © 2026 the fv3net authors.
This file is part of fv3net.

fv3net is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fv3net is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fv3net.  If not, see <http://www.gnu.org/licenses/>.
*/

package synthutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"

	"github.com/oelbert/fv3net/cloud"
	"github.com/oelbert/fv3net/dataset"
	"github.com/oelbert/fv3net/synth"
	"github.com/oelbert/fv3net/synth/fixtures"
	"github.com/oelbert/fv3net/zarr"
)

// Save extracts the schema of the zarr dataset at store and writes it,
// JSON-encoded, to dest. Both locations may be local paths or blob
// storage URLs. coords names the arrays that are coordinates of the
// dataset.
func Save(ctx context.Context, store, dest string, coords []string) error {
	bucket, prefix, err := cloud.OpenLocation(ctx, store)
	if err != nil {
		return err
	}
	defer bucket.Close()
	g, err := zarr.OpenGroup(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	schema, err := synth.ReadSchemaFromZarr(ctx, g, coords)
	if err != nil {
		return err
	}
	b, err := synth.Marshal(schema)
	if err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"store":     store,
		"coords":    len(schema.Coords),
		"variables": len(schema.Variables),
	}).Info("extracted schema")
	if IsBlob(dest) {
		return uploadBytes(ctx, dest, b)
	}
	return os.WriteFile(dest, b, 0644)
}

// Generate reads the schema document at schemaPath, which may be a
// local path or a URL, and writes a randomly-filled dataset with the
// structure it describes to out. An out path ending in .nc is written
// as a NetCDF file; any other path becomes a zarr store. A seed less
// than zero seeds generation from the current time. rangesPath, if not
// empty, locates a YAML file of per-variable value ranges.
func Generate(ctx context.Context, schemaPath, out string, seed int64, rangesPath string) error {
	schema, err := readSchema(ctx, schemaPath)
	if err != nil {
		return err
	}
	var opts []synth.GenerateOption
	if seed >= 0 {
		opts = append(opts, synth.WithSeed(uint64(seed)))
	}
	if rangesPath != "" {
		ranges, err := readRangesFile(ctx, rangesPath)
		if err != nil {
			return err
		}
		opts = append(opts, synth.WithRanges(ranges))
	}
	ds, err := synth.Generate(schema, opts...)
	if err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"schema": schemaPath,
		"out":    out,
	}).Info("generated dataset")
	if strings.HasSuffix(out, ".nc") {
		return writeNetCDF(ctx, out, ds)
	}
	bucket, prefix, err := cloud.OpenLocation(ctx, out)
	if err != nil {
		return err
	}
	defer bucket.Close()
	return zarr.Save(ctx, zarr.NewGroup(bucket, prefix), ds)
}

// Verify checks that the zarr dataset at store has the structure the
// schema document at schemaPath describes. A structural mismatch is
// returned as an error listing the differences.
func Verify(ctx context.Context, schemaPath, store string) error {
	want, err := readSchema(ctx, schemaPath)
	if err != nil {
		return err
	}
	bucket, prefix, err := cloud.OpenLocation(ctx, store)
	if err != nil {
		return err
	}
	defer bucket.Close()
	g, err := zarr.OpenGroup(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	got, err := synth.ReadSchemaFromZarr(ctx, g, want.CoordNames())
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("synthutil: %s does not match %s:\n%s",
			store, schemaPath, strings.Join(diffSchemas(want, got), "\n"))
	}
	Log.WithFields(logrus.Fields{
		"schema": schemaPath,
		"store":  store,
	}).Info("store matches schema")
	return nil
}

// Fixture generates the named reference dataset and writes it as a
// zarr store under dir, using a temporary directory when dir is empty.
// The path of the resulting store is printed to standard output.
func Fixture(ctx context.Context, name, dir string) error {
	p, err := fixtures.Path(ctx, name, dir)
	if err != nil {
		return err
	}
	fmt.Println(p)
	return nil
}

// readSchema fetches and decodes a schema document.
func readSchema(ctx context.Context, path string) (*synth.DatasetSchema, error) {
	local, err := maybeDownload(ctx, path, Log)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(local)
	if err != nil {
		return nil, fmt.Errorf("synthutil: reading schema: %v", err)
	}
	return synth.Unmarshal(b)
}

// readRangesFile fetches and parses a ranges file.
func readRangesFile(ctx context.Context, path string) (map[string]synth.Range, error) {
	local, err := maybeDownload(ctx, path, Log)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(local)
	if err != nil {
		return nil, fmt.Errorf("synthutil: reading ranges file: %v", err)
	}
	return ReadRanges(b)
}

// writeNetCDF writes ds as a NetCDF file at out, uploading it when out
// is a blob storage URL.
func writeNetCDF(ctx context.Context, out string, ds *dataset.Dataset) error {
	path := out
	if IsBlob(out) {
		dir, err := os.MkdirTemp("", "synth")
		if err != nil {
			return fmt.Errorf("synthutil: creating temporary directory: %v", err)
		}
		path = filepath.Join(dir, filepath.Base(out))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("synthutil: creating '%s': %v", path, err)
	}
	if err := dataset.WriteNetCDF(f, ds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if IsBlob(out) {
		return uploadFile(ctx, path, out)
	}
	return nil
}

// diffSchemas reports the differences between two schemas, leaving out
// the fields that take no part in schema equality.
func diffSchemas(want, got *synth.DatasetSchema) []string {
	return pretty.Diff(normalize(want), normalize(got))
}

func normalize(s *synth.DatasetSchema) *synth.DatasetSchema {
	n := &synth.DatasetSchema{
		Coords:    make(map[string]synth.CoordinateSchema),
		Variables: make(map[string]synth.VariableSchema),
	}
	for name, c := range s.Coords {
		c.Length = 0
		c.Attrs = nil
		n.Coords[name] = c
	}
	for name, v := range s.Variables {
		v.Attrs = nil
		n.Variables[name] = v
	}
	return n
}
