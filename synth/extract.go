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

package synth

import (
	"context"
	"fmt"

	"github.com/oelbert/fv3net/dataset"
	"github.com/oelbert/fv3net/zarr"
)

// ReadSchemaFromZarr derives a schema from an existing zarr store,
// reading metadata only, never chunk payloads. Because a zarr store
// does not distinguish coordinate arrays from data variables, coords
// lists the array names to describe as coordinates; a coords entry
// that is absent from the store, or names an array that is not
// one-dimensional and aligned to its own dimension, fails with an
// error wrapping ErrAmbiguousCoordinate.
//
// Extraction has no partial-success mode: any array with an
// unsupported data type or inconsistent structure fails the whole
// call, because silently omitting it would corrupt later structural
// comparisons.
func ReadSchemaFromZarr(ctx context.Context, g *zarr.Group, coords []string) (*DatasetSchema, error) {
	names, err := g.Arrays(ctx)
	if err != nil {
		return nil, err
	}
	isCoord := make(map[string]bool, len(coords))
	for _, c := range coords {
		isCoord[c] = true
	}

	s := NewDatasetSchema()
	found := make(map[string]bool, len(coords))
	for _, name := range names {
		m, err := g.ArrayMeta(ctx, name)
		if err != nil {
			return nil, err
		}
		attrs, err := g.Attrs(ctx, name)
		if err != nil {
			return nil, err
		}
		dims, err := zarr.Dimensions(attrs, len(m.Shape))
		if err != nil {
			return nil, fmt.Errorf("synth: array %s: %w", name, err)
		}
		dtype, err := dataset.ParseDType(m.DType)
		if err != nil {
			return nil, fmt.Errorf("synth: array %s: %w", name, err)
		}
		delete(attrs, zarr.DimensionsAttr)

		if isCoord[name] {
			if len(m.Shape) != 1 || dims[0] != name {
				return nil, fmt.Errorf("%w: %s has dimensions %v, not a one-dimensional array over its own dimension",
					ErrAmbiguousCoordinate, name, dims)
			}
			found[name] = true
			s.Coords[name] = CoordinateSchema{
				Name:   name,
				DType:  dtype,
				Chunk:  m.Chunks[0],
				Length: m.Shape[0],
				Attrs:  attrs,
			}
			continue
		}
		s.Variables[name] = VariableSchema{
			Name:  name,
			Dims:  dims,
			DType: dtype,
			Array: ChunkedArray{Shape: m.Shape, Chunks: m.Chunks},
			Attrs: attrs,
		}
	}
	for _, c := range coords {
		if !found[c] {
			return nil, fmt.Errorf("%w: %s is not in the store", ErrAmbiguousCoordinate, c)
		}
	}
	return s, nil
}

// ReadSchemaFromDataset derives a schema from an in-memory dataset.
// The dataset's own coordinate set determines which arrays become
// coordinate schemas, so no explicit coordinate list is needed.
func ReadSchemaFromDataset(ds *dataset.Dataset) (*DatasetSchema, error) {
	s := NewDatasetSchema()
	for _, name := range ds.CoordNames() {
		a := ds.Coords[name]
		if err := checkArray(name, a); err != nil {
			return nil, err
		}
		if len(a.Dims) != 1 || a.Dims[0] != name {
			return nil, fmt.Errorf("%w: %s has dimensions %v, not a one-dimensional array over its own dimension",
				ErrAmbiguousCoordinate, name, a.Dims)
		}
		s.Coords[name] = CoordinateSchema{
			Name:   name,
			DType:  a.DType,
			Chunk:  a.Chunks[0],
			Length: a.Shape[0],
			Attrs:  a.Attrs,
		}
	}
	for _, name := range ds.VarNames() {
		a := ds.Vars[name]
		if err := checkArray(name, a); err != nil {
			return nil, err
		}
		s.Variables[name] = VariableSchema{
			Name:  name,
			Dims:  a.Dims,
			DType: a.DType,
			Array: ChunkedArray{Shape: a.Shape, Chunks: a.Chunks},
			Attrs: a.Attrs,
		}
	}
	return s, nil
}

func checkArray(name string, a *dataset.Array) error {
	if !a.DType.Valid() {
		return fmt.Errorf("synth: array %s: %w: %s", name, dataset.ErrUnsupportedDType, a.DType)
	}
	if len(a.Shape) == 0 {
		return fmt.Errorf("synth: array %s has no dimensions", name)
	}
	if len(a.Dims) != len(a.Shape) || len(a.Shape) != len(a.Chunks) {
		return fmt.Errorf("%w: array %s has %d dims, %d shape entries and %d chunk entries",
			ErrShapeMismatch, name, len(a.Dims), len(a.Shape), len(a.Chunks))
	}
	return nil
}
