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

package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gocloud.dev/blob/fileblob"

	"github.com/oelbert/fv3net/synth"
	"github.com/oelbert/fv3net/zarr"
)

func TestNames(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"fine_res_apparent_sources", "nudging_tendencies"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}

// TestManifestConsistency checks every fixture without naming the
// datasets explicitly: the schema document must decode, each declared
// coordinate must exist in it, and every range override must name a
// variable it holds.
func TestManifestConsistency(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		f, err := Get(name)
		if err != nil {
			t.Fatal(err)
		}
		s, err := Schema(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range f.Coords {
			if _, ok := s.Coords[c]; !ok {
				t.Errorf("%s: manifest coordinate %s is not in the schema", name, c)
			}
		}
		if len(s.Coords) != len(f.Coords) {
			t.Errorf("%s: schema has %d coordinates, manifest lists %d", name, len(s.Coords), len(f.Coords))
		}
		for v := range f.Ranges {
			if _, ok := s.Variables[v]; !ok {
				t.Errorf("%s: manifest range for %s names no schema variable", name, v)
			}
		}
	}
}

func TestNudgingSchema(t *testing.T) {
	s, err := Schema("nudging_tendencies")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Coords["time"].Length; got != 4 {
		t.Errorf("time length = %d, want 4", got)
	}
	at, ok := s.Variables["air_temperature"]
	if !ok {
		t.Fatal("air_temperature missing")
	}
	if !reflect.DeepEqual(at.Array.Shape, []int{4, 6, 79, 8, 8}) {
		t.Errorf("air_temperature shape = %v", at.Array.Shape)
	}
	if !reflect.DeepEqual(at.Array.Chunks, []int{1, 6, 79, 8, 8}) {
		t.Errorf("air_temperature chunks = %v", at.Array.Chunks)
	}
}

func TestGeneratedValuesInRange(t *testing.T) {
	f, err := Get("nudging_tendencies")
	if err != nil {
		t.Fatal(err)
	}
	s, err := Schema("nudging_tendencies")
	if err != nil {
		t.Fatal(err)
	}
	ds, err := synth.Generate(s, f.GenerateOptions()...)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range ds.Vars["air_temperature"].Data.([]float32) {
		if v < 180 || v > 320 {
			t.Fatalf("air_temperature %v outside the manifest range [180, 320]", v)
		}
	}
}

func TestPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := Path(ctx, "fine_res_apparent_sources", dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(p, ".zmetadata")); err != nil {
		t.Fatalf("store metadata missing: %v", err)
	}

	// The store must hold exactly the structure the schema describes.
	bucket, err := fileblob.OpenBucket(p, &fileblob.Options{Metadata: fileblob.MetadataDontWrite})
	if err != nil {
		t.Fatal(err)
	}
	defer bucket.Close()
	g, err := zarr.OpenGroup(ctx, bucket, "")
	if err != nil {
		t.Fatal(err)
	}
	f, err := Get("fine_res_apparent_sources")
	if err != nil {
		t.Fatal(err)
	}
	got, err := synth.ReadSchemaFromZarr(ctx, g, f.Coords)
	if err != nil {
		t.Fatal(err)
	}
	want, err := Schema("fine_res_apparent_sources")
	if err != nil {
		t.Fatal(err)
	}
	if !want.Equal(got) {
		t.Error("materialized store does not match its schema")
	}

	// Generation happens once per process; later calls return the
	// same path regardless of the directory they pass.
	p2, err := Path(ctx, "fine_res_apparent_sources", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if p2 != p {
		t.Errorf("second Path call returned %s, want %s", p2, p)
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("one_step"); err == nil {
		t.Error("expected an error for an unregistered fixture")
	}
}
