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

package zarr

import (
	"reflect"
	"testing"

	"github.com/oelbert/fv3net/dataset"
)

func TestChunkCodec(t *testing.T) {
	meta := &ArrayMeta{Compressor: &CompressorConfig{ID: "zlib", Level: zlibLevel}}
	tests := []struct {
		dtype dataset.DType
		data  interface{}
	}{
		{dataset.Bool, []bool{true, false, true}},
		{dataset.Int8, []int8{-1, 0, 127}},
		{dataset.Int16, []int16{-300, 0, 300}},
		{dataset.Int32, []int32{-70000, 0, 70000}},
		{dataset.Int64, []int64{-1 << 40, 0, 1 << 40}},
		{dataset.Uint8, []uint8{0, 128, 255}},
		{dataset.Float32, []float32{-1.5, 0, 2.25}},
		{dataset.Float64, []float64{-1.5, 0, 2.25}},
		{dataset.String, []string{"a", "", "tile"}},
	}
	for _, test := range tests {
		enc, err := encodeChunk(test.data, meta)
		if err != nil {
			t.Fatalf("%s: %v", test.dtype, err)
		}
		dec, err := decodeChunk(enc, test.dtype, 3, meta)
		if err != nil {
			t.Fatalf("%s: %v", test.dtype, err)
		}
		if !reflect.DeepEqual(dec, test.data) {
			t.Errorf("%s: got %v, want %v", test.dtype, dec, test.data)
		}
	}
}

func TestChunkCodecUncompressed(t *testing.T) {
	meta := &ArrayMeta{}
	data := []float32{1, 2, 3, 4}
	enc, err := encodeChunk(data, meta)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) != 16 {
		t.Errorf("uncompressed float32 chunk is %d bytes, want 16", len(enc))
	}
	dec, err := decodeChunk(enc, dataset.Float32, 4, meta)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dec, data) {
		t.Errorf("got %v, want %v", dec, data)
	}
}

func TestDecodeChunkSizeMismatch(t *testing.T) {
	if _, err := decodeChunk([]byte{1, 2, 3}, dataset.Float32, 1, &ArrayMeta{}); err == nil {
		t.Error("expected an error for a truncated chunk")
	}
}

func TestUnsupportedCompressor(t *testing.T) {
	meta := &ArrayMeta{Compressor: &CompressorConfig{ID: "blosc"}}
	if _, err := encodeChunk([]float64{1}, meta); err == nil {
		t.Error("expected an error for an unsupported compressor")
	}
	if err := meta.check(); err == nil {
		t.Error("expected metadata check to reject an unsupported compressor")
	}
}

func TestGridShape(t *testing.T) {
	got := gridShape([]int{4, 6, 5}, []int{1, 6, 2})
	if want := []int{4, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChunkKey(t *testing.T) {
	if got := chunkKey([]int{0, 2, 1}); got != "0.2.1" {
		t.Errorf("got %q, want 0.2.1", got)
	}
	if got := chunkKey([]int{7}); got != "7" {
		t.Errorf("got %q, want 7", got)
	}
}

func TestCopyRegionRagged(t *testing.T) {
	// A 5x5 array in 2x3 chunks has ragged chunks along both axes.
	shape := []int{5, 5}
	chunks := []int{2, 3}
	array := make([]int32, 25)
	for i := range array {
		array[i] = int32(i)
	}

	out := make([]int32, 25)
	grid := gridShape(shape, chunks)
	ci := make([]int, len(grid))
	for {
		buf := make([]int32, 6)
		copyRegion(buf, array, ci, shape, chunks, true)
		copyRegion(buf, out, ci, shape, chunks, false)
		if !next(ci, grid) {
			break
		}
	}
	if !reflect.DeepEqual(out, array) {
		t.Errorf("chunk round trip altered data:\ngot  %v\nwant %v", out, array)
	}
}

func TestArrayMetaCheck(t *testing.T) {
	meta := func() *ArrayMeta {
		return &ArrayMeta{
			Chunks:     []int{1, 6},
			Compressor: &CompressorConfig{ID: "zlib"},
			DType:      "<f4",
			Order:      "C",
			Shape:      []int{4, 6},
			ZarrFormat: 2,
		}
	}
	if err := meta().check(); err != nil {
		t.Fatal(err)
	}

	m := meta()
	m.Order = "F"
	if err := m.check(); err == nil {
		t.Error("expected an error for Fortran order")
	}
	m = meta()
	m.Chunks = []int{1}
	if err := m.check(); err == nil {
		t.Error("expected an error for mismatched chunk rank")
	}
	m = meta()
	m.Chunks = []int{0, 6}
	if err := m.check(); err == nil {
		t.Error("expected an error for a non-positive chunk")
	}
	m = meta()
	m.DType = "<c8"
	if err := m.check(); err == nil {
		t.Error("expected an error for an unsupported dtype")
	}
	m = meta()
	m.ZarrFormat = 3
	if err := m.check(); err == nil {
		t.Error("expected an error for an unsupported format version")
	}
}
