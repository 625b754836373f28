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

package dataset

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// WriteNetCDF writes the dataset to f in NetCDF classic format. An
// *os.File satisfies the ReaderWriterAt interface.
//
// The classic format has no boolean, unsigned or 64-bit integer types
// and no chunking: Bool and Int8 data are stored as NetCDF BYTE
// (reading the file back yields Uint8 arrays), chunk layout is not
// recorded, and Int64 and String variables return an error wrapping
// ErrUnsupportedDType.
func WriteNetCDF(f cdf.ReaderWriterAt, ds *Dataset) error {
	dims, err := ds.Dims()
	if err != nil {
		return fmt.Errorf("dataset: writing netcdf: %v", err)
	}
	dimNames := make([]string, 0, len(dims))
	for name, length := range dims {
		if length == 0 {
			return fmt.Errorf("dataset: writing netcdf: zero-length dimension %s has no classic-format representation", name)
		}
		dimNames = append(dimNames, name)
	}
	sort.Strings(dimNames)
	lengths := make([]int, len(dimNames))
	for i, name := range dimNames {
		lengths[i] = dims[name]
	}

	names := ds.CoordNames()
	for _, name := range ds.VarNames() {
		if _, ok := ds.Coords[name]; ok {
			return fmt.Errorf("dataset: writing netcdf: name %s is both a coordinate and a variable", name)
		}
		names = append(names, name)
	}
	arr := func(name string) *Array {
		if a, ok := ds.Coords[name]; ok {
			return a
		}
		return ds.Vars[name]
	}
	vals := make(map[string]interface{}, len(names))
	for _, name := range names {
		val, err := ncValue(arr(name))
		if err != nil {
			return fmt.Errorf("dataset: writing netcdf variable %s: %w", name, err)
		}
		vals[name] = val
	}

	h := cdf.NewHeader(dimNames, lengths)
	for _, a := range sortedAttrKeys(ds.Attrs) {
		if val, ok := ncAttrValue(ds.Attrs[a]); ok {
			h.AddAttribute("", a, val)
		}
	}
	for _, name := range names {
		a := arr(name)
		h.AddVariable(name, a.Dims, vals[name])
		for _, attr := range sortedAttrKeys(a.Attrs) {
			if v, ok := ncAttrValue(a.Attrs[attr]); ok {
				h.AddAttribute(name, attr, v)
			}
		}
	}
	h.Define()

	ff, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("dataset: writing netcdf header: %v", err)
	}
	for _, name := range names {
		a := arr(name)
		w := ff.Writer(name, make([]int, len(a.Shape)), ff.Header.Lengths(name))
		if _, err := w.Write(vals[name]); err != nil {
			return fmt.Errorf("dataset: writing netcdf variable %s: %v", name, err)
		}
	}
	return nil
}

// ReadNetCDF reads a NetCDF classic file into a Dataset. Variables
// whose only dimension carries their own name become coordinates; all
// others become data variables. Chunk sizes are set to the full shape
// because the classic format stores arrays contiguously.
func ReadNetCDF(f cdf.ReaderWriterAt) (*Dataset, error) {
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading netcdf: %v", err)
	}
	ds := New()
	for _, a := range ff.Header.Attributes("") {
		ds.Attrs[a] = ff.Header.GetAttribute("", a)
	}
	recs := -1
	for _, name := range ff.Header.Variables() {
		shape := append([]int{}, ff.Header.Lengths(name)...)
		if len(shape) > 0 && shape[0] == 0 {
			// The record dimension is stored with length zero; its
			// real length follows from the file size.
			if recs < 0 {
				recs, err = numRecords(f, ff.Header)
				if err != nil {
					return nil, err
				}
			}
			shape[0] = recs
		}
		r := ff.Reader(name, make([]int, len(shape)), shape)
		buf := r.Zero(Size(shape))
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("dataset: reading netcdf variable %s: %v", name, err)
		}
		dtype, err := fromNCValue(buf)
		if err != nil {
			return nil, fmt.Errorf("dataset: reading netcdf variable %s: %w", name, err)
		}
		a := &Array{
			Dims:   ff.Header.Dimensions(name),
			Shape:  shape,
			Chunks: append([]int{}, shape...),
			DType:  dtype,
			Attrs:  make(map[string]interface{}),
			Data:   buf,
		}
		for _, attr := range ff.Header.Attributes(name) {
			a.Attrs[attr] = ff.Header.GetAttribute(name, attr)
		}
		if len(a.Dims) == 1 && a.Dims[0] == name {
			err = ds.AddCoord(name, a)
		} else {
			err = ds.AddVar(name, a)
		}
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// numRecords resolves the length of the record dimension from the file
// size, which requires the underlying storage to report it.
func numRecords(f cdf.ReaderWriterAt, h *cdf.Header) (int, error) {
	s, ok := f.(interface{ Stat() (os.FileInfo, error) })
	if !ok {
		return 0, fmt.Errorf("dataset: reading netcdf: the file has a record dimension but the storage does not report its size")
	}
	fi, err := s.Stat()
	if err != nil {
		return 0, fmt.Errorf("dataset: reading netcdf: %v", err)
	}
	n := h.NumRecs(fi.Size())
	if n < 0 {
		return 0, fmt.Errorf("dataset: reading netcdf: cannot determine the record dimension's length")
	}
	return int(n), nil
}

// ncValue converts array data to one of the value types the NetCDF
// classic format can store.
func ncValue(a *Array) (interface{}, error) {
	switch data := a.Data.(type) {
	case []bool:
		out := make([]uint8, len(data))
		for i, v := range data {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	case []int8:
		out := make([]uint8, len(data))
		for i, v := range data {
			out[i] = uint8(v)
		}
		return out, nil
	case []uint8:
		return data, nil
	case []int16:
		return data, nil
	case []int32:
		return data, nil
	case []float32:
		return data, nil
	case []float64:
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s has no netcdf classic representation", ErrUnsupportedDType, a.DType)
}

func fromNCValue(buf interface{}) (DType, error) {
	switch buf.(type) {
	case []uint8:
		return Uint8, nil
	case []int16:
		return Int16, nil
	case []int32:
		return Int32, nil
	case []float32:
		return Float32, nil
	case []float64:
		return Float64, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupportedDType, buf)
}

// ncAttrValue converts an attribute value to a type the cdf library
// can store, reporting false for values with no representation.
func ncAttrValue(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return []float64{val}, true
	case float32:
		return []float32{val}, true
	case int:
		return []int32{int32(val)}, true
	case int32:
		return []int32{val}, true
	case int64:
		return []int32{int32(val)}, true
	case []float64:
		return val, true
	case []float32:
		return val, true
	case []int32:
		return val, true
	case []interface{}:
		out := make([]float64, len(val))
		for i, e := range val {
			f, ok := e.(float64)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func sortedAttrKeys(attrs map[string]interface{}) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
