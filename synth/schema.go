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

// Package synth describes the structure of labeled, chunked datasets
// compactly enough to store alongside test code, and regenerates
// randomly-filled datasets from such descriptions.
//
// A DatasetSchema records, for every coordinate and variable of a
// dataset, its dimension names, data type, shape and chunk layout, and
// nothing else: no data values and no coordinate extents beyond the
// declared lengths. Schemas are extracted from real datasets
// (ReadSchemaFromZarr, ReadSchemaFromDataset), serialized to a stable
// JSON form (Marshal, Unmarshal), and used either to generate
// structurally equivalent random datasets (Generate) or to validate
// another dataset's structure through schema equality.
package synth

import (
	"sort"

	"github.com/oelbert/fv3net/dataset"
)

// Version gives the version number of this software.
const Version = "0.1.0"

// ChunkedArray describes the shape and nominal chunk layout of one
// array. The final chunk along an axis may cover less than the nominal
// chunk size; Shape and Chunks always have the same length.
type ChunkedArray struct {
	Shape  []int
	Chunks []int
}

// Equal reports exact component-wise equality of shape and chunks.
func (c ChunkedArray) Equal(o ChunkedArray) bool {
	return intsEqual(c.Shape, o.Shape) && intsEqual(c.Chunks, o.Chunks)
}

// VariableSchema describes one data variable: its name, the names of
// its dimensions in axis order, its element type, and its chunked
// shape. Attrs carries attribute metadata captured during extraction;
// it takes no part in equality or in the serialized form.
type VariableSchema struct {
	Name  string
	Dims  []string
	DType dataset.DType
	Array ChunkedArray
	Attrs map[string]interface{}
}

// Equal reports structural equality: name, dimension order, data type,
// and the full shape and chunk sequences. Attributes are ignored.
func (v VariableSchema) Equal(o VariableSchema) bool {
	return v.Name == o.Name &&
		stringsEqual(v.Dims, o.Dims) &&
		v.DType == o.DType &&
		v.Array.Equal(o.Array)
}

// CoordinateSchema describes one coordinate: a one-dimensional array
// whose name equals its dimension name. Length is the size along that
// dimension and Chunk its nominal chunk size.
type CoordinateSchema struct {
	Name   string
	DType  dataset.DType
	Chunk  int
	Length int
	Attrs  map[string]interface{}
}

// Equal reports structural equality of name, data type and chunk size.
// Length is deliberately excluded: a schema written against one
// dataset must validate a similar dataset whose coordinate extent
// differs, for example a different range of dates.
func (c CoordinateSchema) Equal(o CoordinateSchema) bool {
	return c.Name == o.Name && c.DType == o.DType && c.Chunk == o.Chunk
}

// DatasetSchema is the structural fingerprint of a whole dataset: its
// coordinates and variables keyed by name, plus the serialization
// format version it was read from or will be written as.
type DatasetSchema struct {
	Version   int
	Coords    map[string]CoordinateSchema
	Variables map[string]VariableSchema
}

// NewDatasetSchema returns an empty schema tagged with the current
// format version.
func NewDatasetSchema() *DatasetSchema {
	return &DatasetSchema{
		Version:   FormatVersion,
		Coords:    make(map[string]CoordinateSchema),
		Variables: make(map[string]VariableSchema),
	}
}

// Equal reports whether the two schemas describe the same structure:
// equal coordinate and variable name sets, with every shared entry
// equal under its own contract. The format version is not compared, so
// a schema decoded from an older encoding can equal a freshly
// extracted one.
func (s *DatasetSchema) Equal(o *DatasetSchema) bool {
	if len(s.Coords) != len(o.Coords) || len(s.Variables) != len(o.Variables) {
		return false
	}
	for name, c := range s.Coords {
		oc, ok := o.Coords[name]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	for name, v := range s.Variables {
		ov, ok := o.Variables[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// CoordNames returns the coordinate names in lexical order.
func (s *DatasetSchema) CoordNames() []string {
	names := make([]string, 0, len(s.Coords))
	for name := range s.Coords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VariableNames returns the variable names in lexical order.
func (s *DatasetSchema) VariableNames() []string {
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
