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
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDType is returned when a data type tag is outside the
// enumeration supported by this package. Callers can test for it with
// errors.Is.
var ErrUnsupportedDType = errors.New("dataset: unsupported data type")

// DType identifies the element type of an Array. The zero value is not
// a valid type.
type DType int

const (
	_ DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Float32
	Float64
	String
)

var dtypeNames = map[DType]string{
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
}

func (d DType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// Valid reports whether d is one of the supported types.
func (d DType) Valid() bool {
	_, ok := dtypeNames[d]
	return ok
}

// NumpyString returns the numpy-style type string used by zarr array
// metadata, for example "<f4" for Float32. Multibyte types are
// little-endian.
func (d DType) NumpyString() string {
	switch d {
	case Bool:
		return "|b1"
	case Int8:
		return "|i1"
	case Int16:
		return "<i2"
	case Int32:
		return "<i4"
	case Int64:
		return "<i8"
	case Uint8:
		return "|u1"
	case Float32:
		return "<f4"
	case Float64:
		return "<f8"
	case String:
		return "|O"
	}
	panic("dataset: invalid dtype " + d.String())
}

// Size returns the number of bytes one element occupies when stored,
// or -1 for String, which has no fixed size.
func (d DType) Size() int {
	switch d {
	case Bool, Int8, Uint8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	case String:
		return -1
	}
	panic("dataset: invalid dtype " + d.String())
}

// Zero returns a slice of n zero elements with the Go element type
// corresponding to d: []bool, []int8, []int16, []int32, []int64,
// []uint8, []float32, []float64 or []string.
func (d DType) Zero(n int) interface{} {
	switch d {
	case Bool:
		return make([]bool, n)
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Uint8:
		return make([]uint8, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	case String:
		return make([]string, n)
	}
	panic("dataset: invalid dtype " + d.String())
}

// ParseDType converts a type name to a DType. It accepts the canonical
// lowercase names returned by DType.String as well as numpy-style
// strings as they appear in zarr metadata ("<f4", "|i1", "<U16" and so
// on); byte order is ignored because the stored layout is handled
// elsewhere. Types outside the supported set, such as complex or
// datetime types, return an error wrapping ErrUnsupportedDType.
func ParseDType(s string) (DType, error) {
	t := s
	if len(t) > 0 && strings.ContainsRune("<>|=", rune(t[0])) {
		t = t[1:]
	}
	switch t {
	case "b1", "bool":
		return Bool, nil
	case "i1", "int8":
		return Int8, nil
	case "i2", "int16":
		return Int16, nil
	case "i4", "int32":
		return Int32, nil
	case "i8", "int64":
		return Int64, nil
	case "u1", "uint8":
		return Uint8, nil
	case "f4", "float32":
		return Float32, nil
	case "f8", "float64":
		return Float64, nil
	case "O", "object", "str", "string":
		return String, nil
	}
	// Fixed-width unicode and bytes types ("<U16", "|S8") also map to
	// String; the width is not retained.
	if len(t) > 1 && (t[0] == 'U' || t[0] == 'S') && isDigits(t[1:]) {
		return String, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
