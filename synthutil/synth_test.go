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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oelbert/fv3net/cloud"
	"github.com/oelbert/fv3net/dataset"
	"github.com/oelbert/fv3net/synth"
	"github.com/oelbert/fv3net/zarr"
)

// pipelineSchema describes a small dataset used throughout the
// command tests.
func pipelineSchema() *synth.DatasetSchema {
	s := synth.NewDatasetSchema()
	s.Coords["time"] = synth.CoordinateSchema{
		Name: "time", DType: dataset.Int64, Chunk: 1, Length: 3,
	}
	s.Coords["x"] = synth.CoordinateSchema{
		Name: "x", DType: dataset.Int32, Chunk: 4, Length: 4,
	}
	s.Variables["a"] = synth.VariableSchema{
		Name:  "a",
		Dims:  []string{"time", "x"},
		DType: dataset.Float32,
		Array: synth.ChunkedArray{Shape: []int{3, 4}, Chunks: []int{1, 4}},
	}
	return s
}

// loadStore reads the zarr store at a local path back into memory.
func loadStore(ctx context.Context, t *testing.T, store string) (*dataset.Dataset, error) {
	t.Helper()
	bucket, prefix, err := cloud.OpenLocation(ctx, store)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { bucket.Close() })
	g, err := zarr.OpenGroup(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	return zarr.Load(ctx, g)
}

func writeSchema(t *testing.T, dir, name string, s *synth.DatasetSchema) string {
	t.Helper()
	b, err := synth.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSaveGenerateVerify(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	want := pipelineSchema()
	schemaPath := writeSchema(t, dir, "schema.json", want)
	store := filepath.Join(dir, "data.zarr")

	if err := Generate(ctx, schemaPath, store, 12, ""); err != nil {
		t.Fatal(err)
	}
	if err := Verify(ctx, schemaPath, store); err != nil {
		t.Fatal(err)
	}

	saved := filepath.Join(dir, "roundtrip.json")
	if err := Save(ctx, store, saved, []string{"time", "x"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(saved)
	if err != nil {
		t.Fatal(err)
	}
	got, err := synth.Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("schema extracted from the generated store differs from the original")
	}
}

func TestVerifyMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", pipelineSchema())
	store := filepath.Join(dir, "data.zarr")
	if err := Generate(ctx, schemaPath, store, 12, ""); err != nil {
		t.Fatal(err)
	}

	drifted := pipelineSchema()
	drifted.Variables["a"] = synth.VariableSchema{
		Name:  "a",
		Dims:  []string{"time", "x"},
		DType: dataset.Float32,
		Array: synth.ChunkedArray{Shape: []int{3, 4}, Chunks: []int{1, 2}},
	}
	driftedPath := writeSchema(t, dir, "drifted.json", drifted)

	err := Verify(ctx, driftedPath, store)
	if err == nil {
		t.Fatal("expected a mismatch error")
	}
	if !strings.Contains(err.Error(), "does not match") {
		t.Errorf("error %q does not describe the mismatch", err)
	}
	if !strings.Contains(err.Error(), "Chunks") {
		t.Errorf("error %q does not point at the drifted chunks", err)
	}
}

func TestGenerateWithRanges(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", pipelineSchema())
	rangesPath := filepath.Join(dir, "ranges.yaml")
	ranges := "a:\n  min: 5\n  max: 6\n"
	if err := os.WriteFile(rangesPath, []byte(ranges), 0644); err != nil {
		t.Fatal(err)
	}
	store := filepath.Join(dir, "data.zarr")
	if err := Generate(ctx, schemaPath, store, 12, rangesPath); err != nil {
		t.Fatal(err)
	}

	ds, err := loadStore(ctx, t, store)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range ds.Vars["a"].Data.([]float32) {
		if v < 5 || v > 6 {
			t.Fatalf("value %v outside the configured range [5, 6]", v)
		}
	}
}

func TestGenerateNetCDF(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := synth.NewDatasetSchema()
	s.Coords["x"] = synth.CoordinateSchema{
		Name: "x", DType: dataset.Int32, Chunk: 4, Length: 4,
	}
	s.Variables["a"] = synth.VariableSchema{
		Name:  "a",
		Dims:  []string{"x"},
		DType: dataset.Float32,
		Array: synth.ChunkedArray{Shape: []int{4}, Chunks: []int{4}},
	}
	schemaPath := writeSchema(t, dir, "schema.json", s)
	out := filepath.Join(dir, "data.nc")
	if err := Generate(ctx, schemaPath, out, 3, ""); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ds, err := dataset.ReadNetCDF(f)
	if err != nil {
		t.Fatal(err)
	}
	got, err := synth.ReadSchemaFromDataset(ds)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(s) {
		t.Errorf("schema read back from the NetCDF file differs from the original")
	}
}
