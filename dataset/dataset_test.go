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
	"reflect"
	"testing"
)

func TestParseDType(t *testing.T) {
	tests := []struct {
		in   string
		want DType
	}{
		{"bool", Bool},
		{"|b1", Bool},
		{"int8", Int8},
		{"|i1", Int8},
		{"int16", Int16},
		{"<i2", Int16},
		{">i2", Int16},
		{"int32", Int32},
		{"<i4", Int32},
		{"int64", Int64},
		{"<i8", Int64},
		{"uint8", Uint8},
		{"|u1", Uint8},
		{"float32", Float32},
		{"<f4", Float32},
		{"float64", Float64},
		{"<f8", Float64},
		{"=f8", Float64},
		{"string", String},
		{"object", String},
		{"|O", String},
		{"<U16", String},
		{"|S8", String},
	}
	for _, test := range tests {
		got, err := ParseDType(test.in)
		if err != nil {
			t.Fatalf("%s: %v", test.in, err)
		}
		if got != test.want {
			t.Errorf("%s: got %s, want %s", test.in, got, test.want)
		}
	}
}

func TestParseDType_unsupported(t *testing.T) {
	for _, s := range []string{"", "complex64", "<c8", "<u2", "uint16", "<f2", "<M8[ns]", "U", "Ux"} {
		if _, err := ParseDType(s); !errors.Is(err, ErrUnsupportedDType) {
			t.Errorf("%q: expected unsupported data type error, got %v", s, err)
		}
	}
}

func TestDTypeRoundTrip(t *testing.T) {
	for _, d := range []DType{Bool, Int8, Int16, Int32, Int64, Uint8, Float32, Float64, String} {
		got, err := ParseDType(d.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != d {
			t.Errorf("name round trip: got %s, want %s", got, d)
		}
		got, err = ParseDType(d.NumpyString())
		if err != nil {
			t.Fatal(err)
		}
		if got != d {
			t.Errorf("numpy round trip: got %s, want %s", got, d)
		}
	}
}

func TestZero(t *testing.T) {
	if _, ok := Float32.Zero(3).([]float32); !ok {
		t.Error("float32 zero has wrong type")
	}
	if _, ok := Bool.Zero(0).([]bool); !ok {
		t.Error("bool zero has wrong type")
	}
	if got := len(Int64.Zero(5).([]int64)); got != 5 {
		t.Errorf("int64 zero length: got %d, want 5", got)
	}
}

func TestArrayCheck(t *testing.T) {
	a := NewArray(Float32, []string{"x", "y"}, []int{2, 3}, []int{1, 3})
	if err := a.Check(); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 6 {
		t.Errorf("length: got %d, want 6", a.Len())
	}

	bad := &Array{
		Dims:   []string{"x"},
		Shape:  []int{2, 3},
		Chunks: []int{2, 3},
		DType:  Float32,
		Data:   Float32.Zero(6),
	}
	if err := bad.Check(); err == nil {
		t.Error("expected error for dims/shape length mismatch")
	}
	bad = &Array{
		Dims:   []string{"x"},
		Shape:  []int{2},
		Chunks: []int{2},
		DType:  Float32,
		Data:   Float32.Zero(5),
	}
	if err := bad.Check(); err == nil {
		t.Error("expected error for data length mismatch")
	}
}

func TestFloat64s(t *testing.T) {
	a := NewArray(Int16, []string{"x"}, []int{3}, nil)
	copy(a.Data.([]int16), []int16{1, -2, 3})
	got, err := a.Float64s()
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{1, -2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	s := NewArray(String, []string{"x"}, []int{1}, nil)
	if _, err := s.Float64s(); !errors.Is(err, ErrUnsupportedDType) {
		t.Errorf("expected unsupported data type error, got %v", err)
	}
}

func TestDense(t *testing.T) {
	a := NewArray(Float32, []string{"x", "y"}, []int{2, 2}, nil)
	copy(a.Data.([]float32), []float32{1, 2, 3, 4})
	d, err := a.Dense()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.Shape, []int{2, 2}) {
		t.Errorf("shape: got %v", d.Shape)
	}
	if got := d.Get(1, 0); got != 3 {
		t.Errorf("element (1,0): got %g, want 3", got)
	}
}

func TestDims(t *testing.T) {
	ds := New()
	time := NewArray(Int64, []string{"time"}, []int{4}, []int{1})
	if err := ds.AddCoord("time", time); err != nil {
		t.Fatal(err)
	}
	v := NewArray(Float32, []string{"time", "x"}, []int{4, 8}, []int{1, 8})
	if err := ds.AddVar("a", v); err != nil {
		t.Fatal(err)
	}
	dims, err := ds.Dims()
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]int{"time": 4, "x": 8}; !reflect.DeepEqual(dims, want) {
		t.Errorf("got %v, want %v", dims, want)
	}

	conflict := NewArray(Float32, []string{"x"}, []int{9}, []int{9})
	if err := ds.AddVar("b", conflict); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.Dims(); err == nil {
		t.Error("expected dimension size conflict error")
	}
}

func TestAddCoord(t *testing.T) {
	ds := New()
	bad := NewArray(Float64, []string{"x", "y"}, []int{2, 2}, nil)
	if err := ds.AddCoord("x", bad); err == nil {
		t.Error("expected error for multi-dimensional coordinate")
	}
	wrongDim := NewArray(Float64, []string{"y"}, []int{2}, nil)
	if err := ds.AddCoord("x", wrongDim); err == nil {
		t.Error("expected error for coordinate with mismatched dimension name")
	}
}
