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

// Package dataset provides an in-memory model of a labeled, chunked,
// multi-dimensional dataset: named coordinate and data arrays that
// share named dimensions, in the manner of NetCDF files and zarr
// stores.
package dataset

import (
	"fmt"
	"sort"
)

// Dataset is a collection of coordinate arrays and data variable
// arrays that share named dimensions. Coordinates are one-dimensional
// arrays aligned to the dimension of the same name; variables may span
// any of the dataset's dimensions.
type Dataset struct {
	Coords map[string]*Array
	Vars   map[string]*Array
	Attrs  map[string]interface{}
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{
		Coords: make(map[string]*Array),
		Vars:   make(map[string]*Array),
		Attrs:  make(map[string]interface{}),
	}
}

// AddCoord adds a coordinate array. The array must be one-dimensional
// and its dimension name must equal name.
func (d *Dataset) AddCoord(name string, a *Array) error {
	if len(a.Dims) != 1 || a.Dims[0] != name {
		return fmt.Errorf("dataset: coordinate %s must have the single dimension %q; got %v", name, name, a.Dims)
	}
	if err := a.Check(); err != nil {
		return fmt.Errorf("dataset: coordinate %s: %v", name, err)
	}
	d.Coords[name] = a
	return nil
}

// AddVar adds a data variable array.
func (d *Dataset) AddVar(name string, a *Array) error {
	if err := a.Check(); err != nil {
		return fmt.Errorf("dataset: variable %s: %v", name, err)
	}
	d.Vars[name] = a
	return nil
}

// CoordNames returns the coordinate names in lexical order.
func (d *Dataset) CoordNames() []string {
	return sortedKeys(d.Coords)
}

// VarNames returns the variable names in lexical order.
func (d *Dataset) VarNames() []string {
	return sortedKeys(d.Vars)
}

// Dims returns the size of every named dimension used by the dataset's
// coordinates and variables. It returns an error if two arrays
// disagree about a dimension's size.
func (d *Dataset) Dims() (map[string]int, error) {
	dims := make(map[string]int)
	add := func(name string, a *Array) error {
		for i, dim := range a.Dims {
			if n, ok := dims[dim]; ok && n != a.Shape[i] {
				return fmt.Errorf("dataset: dimension %s has conflicting sizes %d and %d (array %s)", dim, n, a.Shape[i], name)
			}
			dims[dim] = a.Shape[i]
		}
		return nil
	}
	for _, name := range d.CoordNames() {
		if err := add(name, d.Coords[name]); err != nil {
			return nil, err
		}
	}
	for _, name := range d.VarNames() {
		if err := add(name, d.Vars[name]); err != nil {
			return nil, err
		}
	}
	return dims, nil
}

func sortedKeys(m map[string]*Array) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
