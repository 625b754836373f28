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

	"github.com/ctessum/sparse"
)

// Array is one labeled, dimensioned array within a Dataset. Data holds
// the elements as a flat slice in row-major (C) order, with the Go
// element type given by DType (see DType.Zero). Chunks records the
// nominal per-dimension chunk sizes used when the array is stored;
// the in-memory representation is always contiguous.
type Array struct {
	Dims   []string
	Shape  []int
	Chunks []int
	DType  DType
	Attrs  map[string]interface{}
	Data   interface{}
}

// NewArray allocates a zero-filled array with the given structure.
// Chunks may be nil, in which case each dimension is a single chunk.
func NewArray(dtype DType, dims []string, shape, chunks []int) *Array {
	if chunks == nil {
		chunks = append([]int{}, shape...)
	}
	return &Array{
		Dims:   dims,
		Shape:  shape,
		Chunks: chunks,
		DType:  dtype,
		Data:   dtype.Zero(Size(shape)),
	}
}

// Size returns the total number of elements implied by shape. The
// empty shape describes a scalar and has size 1.
func Size(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// Len returns the number of elements in the array's Data slice.
func (a *Array) Len() int {
	switch data := a.Data.(type) {
	case []bool:
		return len(data)
	case []int8:
		return len(data)
	case []int16:
		return len(data)
	case []int32:
		return len(data)
	case []int64:
		return len(data)
	case []uint8:
		return len(data)
	case []float32:
		return len(data)
	case []float64:
		return len(data)
	case []string:
		return len(data)
	}
	return 0
}

// Check verifies the structural invariants of the array: the dimension
// names, shape and chunk sequences have equal lengths, and Data holds
// exactly the number of elements the shape implies, with the Go type
// matching DType.
func (a *Array) Check() error {
	if len(a.Dims) != len(a.Shape) {
		return fmt.Errorf("dataset: array has %d dimension names but %d shape entries", len(a.Dims), len(a.Shape))
	}
	if len(a.Shape) != len(a.Chunks) {
		return fmt.Errorf("dataset: array has %d shape entries but %d chunk entries", len(a.Shape), len(a.Chunks))
	}
	if want, got := Size(a.Shape), a.Len(); want != got {
		return fmt.Errorf("dataset: array data holds %d elements but shape %v implies %d", got, a.Shape, want)
	}
	return nil
}

// Float64s returns the array elements converted to float64. String and
// Bool arrays cannot be converted and return an error wrapping
// ErrUnsupportedDType.
func (a *Array) Float64s() ([]float64, error) {
	switch data := a.Data.(type) {
	case []int8:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []uint8:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []float32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []float64:
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	}
	return nil, fmt.Errorf("dataset: converting %s array to float64: %w", a.DType, ErrUnsupportedDType)
}

// Dense returns the array as a sparse.DenseArray for use with numerical
// code that consumes that type. The element values are converted to
// float64 with the same restrictions as Float64s.
func (a *Array) Dense() (*sparse.DenseArray, error) {
	elems, err := a.Float64s()
	if err != nil {
		return nil, err
	}
	d := sparse.ZerosDense(a.Shape...)
	copy(d.Elements, elems)
	return d, nil
}
