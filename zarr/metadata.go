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
	"encoding/json"
	"fmt"

	"github.com/oelbert/fv3net/dataset"
)

// Store layout constants from the zarr version 2 specification.
const (
	arrayMetaKey        = ".zarray"
	groupMetaKey        = ".zgroup"
	attrsKey            = ".zattrs"
	consolidatedMetaKey = ".zmetadata"

	// Format identifiers written into the metadata documents.
	zarrFormat         = 2
	consolidatedFormat = 1
)

// DimensionsAttr is the attribute xarray uses to record the dimension
// names of an array.
const DimensionsAttr = "_ARRAY_DIMENSIONS"

// ArrayMeta is the contents of an array's .zarray metadata document.
type ArrayMeta struct {
	Chunks     []int             `json:"chunks"`
	Compressor *CompressorConfig `json:"compressor"`
	DType      string            `json:"dtype"`
	FillValue  interface{}       `json:"fill_value"`
	Filters    []FilterConfig    `json:"filters"`
	Order      string            `json:"order"`
	Shape      []int             `json:"shape"`
	ZarrFormat int               `json:"zarr_format"`
}

// CompressorConfig identifies the compression codec applied to each
// stored chunk, using the numcodecs configuration form.
type CompressorConfig struct {
	ID    string `json:"id"`
	Level int    `json:"level,omitempty"`
}

// FilterConfig identifies one element of an array's filter pipeline.
type FilterConfig struct {
	ID string `json:"id"`
}

// GroupMeta is the contents of a group's .zgroup document.
type GroupMeta struct {
	ZarrFormat int `json:"zarr_format"`
}

// ConsolidatedMeta is the contents of a .zmetadata document, which
// collects every metadata document in the group so that remote readers
// can avoid listing the store.
type ConsolidatedMeta struct {
	Metadata map[string]json.RawMessage `json:"metadata"`
	Format   int                        `json:"zarr_consolidated_format"`
}

// newArrayMeta builds the metadata document for storing a with the
// default codec configuration: zlib-compressed chunks, and the
// vlen-utf8 filter for string arrays.
func newArrayMeta(a *dataset.Array) *ArrayMeta {
	m := &ArrayMeta{
		Chunks:     a.Chunks,
		Compressor: &CompressorConfig{ID: "zlib", Level: zlibLevel},
		DType:      a.DType.NumpyString(),
		Order:      "C",
		Shape:      a.Shape,
		ZarrFormat: zarrFormat,
	}
	switch a.DType {
	case dataset.String:
		m.Filters = []FilterConfig{{ID: "vlen-utf8"}}
	case dataset.Bool:
		m.FillValue = false
	default:
		m.FillValue = 0
	}
	return m
}

// check validates the parts of the metadata this package can interpret.
func (m *ArrayMeta) check() error {
	if m.ZarrFormat != zarrFormat {
		return fmt.Errorf("zarr: unsupported format version %d", m.ZarrFormat)
	}
	if m.Order != "C" {
		return fmt.Errorf("zarr: unsupported array order %q", m.Order)
	}
	if len(m.Shape) != len(m.Chunks) {
		return fmt.Errorf("zarr: shape %v and chunks %v have different lengths", m.Shape, m.Chunks)
	}
	if len(m.Shape) == 0 {
		return fmt.Errorf("zarr: zero-dimensional arrays are not supported")
	}
	for i, c := range m.Chunks {
		if c <= 0 {
			return fmt.Errorf("zarr: chunk size %d along axis %d is not positive", c, i)
		}
	}
	if _, err := dataset.ParseDType(m.DType); err != nil {
		return err
	}
	for _, f := range m.Filters {
		if f.ID != "vlen-utf8" {
			return fmt.Errorf("zarr: unsupported filter %q", f.ID)
		}
	}
	if m.Compressor != nil {
		switch m.Compressor.ID {
		case "zlib", "gzip":
		default:
			return fmt.Errorf("zarr: unsupported compressor %q", m.Compressor.ID)
		}
	}
	return nil
}

// Dimensions returns an array's dimension names from its attributes,
// following the xarray convention of an _ARRAY_DIMENSIONS list. rank
// is the expected number of dimensions.
func Dimensions(attrs map[string]interface{}, rank int) ([]string, error) {
	v, ok := attrs[DimensionsAttr]
	if !ok {
		return nil, fmt.Errorf("zarr: array attributes carry no %s entry", DimensionsAttr)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("zarr: %s is %T, not a list", DimensionsAttr, v)
	}
	if len(raw) != rank {
		return nil, fmt.Errorf("zarr: %s lists %d dimensions for an array of rank %d", DimensionsAttr, len(raw), rank)
	}
	dims := make([]string, len(raw))
	for i, d := range raw {
		s, ok := d.(string)
		if !ok {
			return nil, fmt.Errorf("zarr: %s entry %v is not a string", DimensionsAttr, d)
		}
		dims[i] = s
	}
	return dims, nil
}
