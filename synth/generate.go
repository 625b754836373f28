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
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/oelbert/fv3net/dataset"
)

// Range bounds the values sampled for one variable: Min inclusive, Max
// exclusive. Integer variables draw whole numbers within the same
// bounds.
type Range struct {
	Min float64
	Max float64
}

// Sampling bounds used for variables no option names: floating point
// variables draw from [0, 1) and integer variables from [0, 100).
var (
	defaultFloatRange = Range{Min: 0, Max: 1}
	defaultIntRange   = Range{Min: 0, Max: 100}
)

// A GenerateOption adjusts how Generate fills a schema with values.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	ranges       map[string]Range
	defaultRange *Range
	seed         uint64
}

func defaultGenerateOptions() *generateOptions {
	return &generateOptions{
		ranges: make(map[string]Range),
		seed:   uint64(time.Now().UnixNano()),
	}
}

// WithRange bounds the values sampled for the named variable.
func WithRange(name string, r Range) GenerateOption {
	return func(o *generateOptions) {
		o.ranges[name] = r
	}
}

// WithRanges bounds several variables at once. Entries merge over
// ranges set by earlier options.
func WithRanges(ranges map[string]Range) GenerateOption {
	return func(o *generateOptions) {
		for name, r := range ranges {
			o.ranges[name] = r
		}
	}
}

// WithDefaultRange replaces the built-in bounds for every variable not
// named by a WithRange or WithRanges option.
func WithDefaultRange(r Range) GenerateOption {
	return func(o *generateOptions) {
		o.defaultRange = &r
	}
}

// WithSeed fixes the random stream so that repeated calls produce the
// same values. Without it each call seeds from the clock. A seed pins
// the values within one release only; the sequence of draws behind a
// seed may change between releases, and callers must not compare
// generated values across them.
func WithSeed(seed uint64) GenerateOption {
	return func(o *generateOptions) {
		o.seed = seed
	}
}

func (o *generateOptions) rangeFor(name string, dtype dataset.DType) Range {
	if r, ok := o.ranges[name]; ok {
		return r
	}
	if o.defaultRange != nil {
		return *o.defaultRange
	}
	switch dtype {
	case dataset.Float32, dataset.Float64:
		return defaultFloatRange
	default:
		return defaultIntRange
	}
}

// Generate materializes a random dataset with exactly the structure the
// schema describes: every coordinate and variable present with its
// declared dimension names, shape, chunk layout and data type.
//
// Coordinate values are synthetic but plausible: sequential integers
// for integer types, evenly spaced values for float types, zero-padded
// labels for strings. Variable values are drawn independently and
// uniformly within the variable's range; the chunk layout is recorded
// on the arrays but never influences the draw. Chunk sizes that are
// not positive or that exceed their dimension are rejected here even
// though the schema model tolerates holding them.
func Generate(s *DatasetSchema, opts ...GenerateOption) (*dataset.Dataset, error) {
	o := defaultGenerateOptions()
	for _, opt := range opts {
		opt(o)
	}
	src := rand.NewSource(o.seed)
	rng := rand.New(src)

	ds := dataset.New()
	for _, name := range s.CoordNames() {
		c := s.Coords[name]
		if _, ok := s.Variables[name]; ok {
			return nil, fmt.Errorf("synth: %s is declared both as a coordinate and as a variable", name)
		}
		if err := checkCoordinate(c); err != nil {
			return nil, err
		}
		a, err := coordValues(c)
		if err != nil {
			return nil, err
		}
		if err := ds.AddCoord(name, a); err != nil {
			return nil, err
		}
	}
	for _, name := range s.VariableNames() {
		v := s.Variables[name]
		if err := checkVariable(v); err != nil {
			return nil, err
		}
		a := dataset.NewArray(v.DType, append([]string{}, v.Dims...),
			append([]int{}, v.Array.Shape...), append([]int{}, v.Array.Chunks...))
		a.Attrs = copyAttrs(v.Attrs)
		if err := fillUniform(a, o.rangeFor(name, v.DType), src, rng); err != nil {
			return nil, fmt.Errorf("synth: variable %s: %w", name, err)
		}
		if err := ds.AddVar(name, a); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func checkCoordinate(c CoordinateSchema) error {
	if !c.DType.Valid() {
		return fmt.Errorf("synth: coordinate %s: data type tag %d: %w", c.Name, int(c.DType), dataset.ErrUnsupportedDType)
	}
	if c.Length < 0 {
		return fmt.Errorf("synth: coordinate %s has negative length %d", c.Name, c.Length)
	}
	if c.Chunk <= 0 {
		return fmt.Errorf("synth: coordinate %s has non-positive chunk size %d", c.Name, c.Chunk)
	}
	if c.Length > 0 && c.Chunk > c.Length {
		return fmt.Errorf("synth: coordinate %s chunk size %d exceeds its length %d", c.Name, c.Chunk, c.Length)
	}
	return nil
}

func checkVariable(v VariableSchema) error {
	if !v.DType.Valid() {
		return fmt.Errorf("synth: variable %s: data type tag %d: %w", v.Name, int(v.DType), dataset.ErrUnsupportedDType)
	}
	if len(v.Dims) == 0 {
		return fmt.Errorf("synth: variable %s has no dimensions", v.Name)
	}
	if len(v.Dims) != len(v.Array.Shape) || len(v.Array.Shape) != len(v.Array.Chunks) {
		return fmt.Errorf("synth: variable %s has %d dimension names, %d shape entries and %d chunk entries: %w",
			v.Name, len(v.Dims), len(v.Array.Shape), len(v.Array.Chunks), ErrShapeMismatch)
	}
	for i, size := range v.Array.Shape {
		if size < 0 {
			return fmt.Errorf("synth: variable %s has negative size %d along %s", v.Name, size, v.Dims[i])
		}
		chunk := v.Array.Chunks[i]
		if chunk <= 0 {
			return fmt.Errorf("synth: variable %s has non-positive chunk size %d along %s", v.Name, chunk, v.Dims[i])
		}
		if size > 0 && chunk > size {
			return fmt.Errorf("synth: variable %s chunk size %d exceeds size %d along %s", v.Name, chunk, size, v.Dims[i])
		}
	}
	return nil
}

// coordValues builds the coordinate's array with a monotonic value
// sequence where the type has an order.
func coordValues(c CoordinateSchema) (*dataset.Array, error) {
	a := dataset.NewArray(c.DType, []string{c.Name}, []int{c.Length}, []int{c.Chunk})
	a.Attrs = copyAttrs(c.Attrs)
	switch data := a.Data.(type) {
	case []int8:
		for i := range data {
			data[i] = int8(i)
		}
	case []int16:
		for i := range data {
			data[i] = int16(i)
		}
	case []int32:
		for i := range data {
			data[i] = int32(i)
		}
	case []int64:
		for i := range data {
			data[i] = int64(i)
		}
	case []uint8:
		for i := range data {
			data[i] = uint8(i)
		}
	case []float32:
		for i, v := range spanValues(c.Length) {
			data[i] = float32(v)
		}
	case []float64:
		copy(data, spanValues(c.Length))
	case []bool:
		for i := range data {
			data[i] = i%2 == 1
		}
	case []string:
		for i := range data {
			data[i] = fmt.Sprintf("%08d", i)
		}
	default:
		return nil, fmt.Errorf("synth: coordinate %s: %s values: %w", c.Name, c.DType, dataset.ErrUnsupportedDType)
	}
	return a, nil
}

// spanValues returns n evenly spaced values starting at zero with unit
// step. floats.Span needs at least two points, so the short sequences
// are built directly.
func spanValues(n int) []float64 {
	vals := make([]float64, n)
	if n >= 2 {
		floats.Span(vals, 0, float64(n-1))
	}
	return vals
}

// fillUniform overwrites the array's elements with independent draws
// bounded by r. All numeric types share one uniform distribution over
// the shared source; integer values are the floor of the draw, so Max
// stays exclusive. Bool and string elements come from the same source
// but ignore r, which has no meaning for them.
func fillUniform(a *dataset.Array, r Range, src rand.Source, rng *rand.Rand) error {
	u := distuv.Uniform{Min: r.Min, Max: r.Max, Src: src}
	switch data := a.Data.(type) {
	case []float64:
		for i := range data {
			data[i] = u.Rand()
		}
	case []float32:
		for i := range data {
			data[i] = float32(u.Rand())
		}
	case []int8:
		for i := range data {
			data[i] = int8(math.Floor(u.Rand()))
		}
	case []int16:
		for i := range data {
			data[i] = int16(math.Floor(u.Rand()))
		}
	case []int32:
		for i := range data {
			data[i] = int32(math.Floor(u.Rand()))
		}
	case []int64:
		for i := range data {
			data[i] = int64(math.Floor(u.Rand()))
		}
	case []uint8:
		for i := range data {
			data[i] = uint8(math.Floor(u.Rand()))
		}
	case []bool:
		for i := range data {
			data[i] = rng.Intn(2) == 1
		}
	case []string:
		for i := range data {
			data[i] = token(rng)
		}
	default:
		return fmt.Errorf("%s data: %w", a.DType, dataset.ErrUnsupportedDType)
	}
	return nil
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz"

// token returns a short random label, the string counterpart of a
// uniform numeric draw.
func token(rng *rand.Rand) string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = tokenAlphabet[rng.Intn(len(tokenAlphabet))]
	}
	return string(b)
}

func copyAttrs(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
