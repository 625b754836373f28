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
	"encoding/json"
	"fmt"
	"io"

	"github.com/oelbert/fv3net/dataset"
)

// FormatVersion is the version tag written into serialized schemas.
//
// Version history:
//
//	1: coordinate entries carried no "chunk" field; decoding defaults
//	   a version 1 coordinate's chunk size to its length.
//	2: coordinate entries record their chunk size explicitly.
const FormatVersion = 2

// The wire form of a schema document. Map keys are emitted in sorted
// order by encoding/json, which keeps the encoding stable across runs.
type schemaDoc struct {
	Version   int                    `json:"version"`
	Coords    map[string]coordDoc    `json:"coords"`
	Variables map[string]variableDoc `json:"variables"`
}

type coordDoc struct {
	Dim    string `json:"dim"`
	DType  string `json:"dtype"`
	Chunk  *int   `json:"chunk,omitempty"`
	Length *int   `json:"length"`
}

type variableDoc struct {
	Dims   []string `json:"dims"`
	DType  string   `json:"dtype"`
	Shape  []int    `json:"shape"`
	Chunks []int    `json:"chunks"`
}

// Marshal serializes the schema in the current format version. The
// output is deterministic: the same schema always yields the same
// bytes, with coordinate and variable names in sorted order.
func Marshal(s *DatasetSchema) ([]byte, error) {
	doc := schemaDoc{
		Version:   FormatVersion,
		Coords:    make(map[string]coordDoc, len(s.Coords)),
		Variables: make(map[string]variableDoc, len(s.Variables)),
	}
	for name, c := range s.Coords {
		if !c.DType.Valid() {
			return nil, fmt.Errorf("synth: coordinate %s: %w: %s", name, dataset.ErrUnsupportedDType, c.DType)
		}
		chunk, length := c.Chunk, c.Length
		doc.Coords[name] = coordDoc{
			Dim:    c.Name,
			DType:  c.DType.String(),
			Chunk:  &chunk,
			Length: &length,
		}
	}
	for name, v := range s.Variables {
		if !v.DType.Valid() {
			return nil, fmt.Errorf("synth: variable %s: %w: %s", name, dataset.ErrUnsupportedDType, v.DType)
		}
		if len(v.Dims) != len(v.Array.Shape) || len(v.Array.Shape) != len(v.Array.Chunks) {
			return nil, fmt.Errorf("%w: variable %s has %d dims, %d shape entries and %d chunk entries",
				ErrShapeMismatch, name, len(v.Dims), len(v.Array.Shape), len(v.Array.Chunks))
		}
		doc.Variables[name] = variableDoc{
			Dims:   v.Dims,
			DType:  v.DType.String(),
			Shape:  v.Array.Shape,
			Chunks: v.Array.Chunks,
		}
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("synth: encoding schema: %v", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal parses serialized schema text, dispatching on the version
// tag it carries. Schemas from older format versions decode into the
// current model with the documented defaults for fields the older
// format lacked. The error wraps ErrUnknownVersion when the version
// tag is missing or unrecognized, and ErrMalformedEncoding when the
// text cannot be parsed into the schema model.
func Unmarshal(data []byte) (*DatasetSchema, error) {
	var head struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if head.Version == nil {
		return nil, fmt.Errorf("%w: no version tag", ErrUnknownVersion)
	}
	switch *head.Version {
	case 1, 2:
		return decodeDoc(data, *head.Version)
	}
	return nil, fmt.Errorf("%w: version %d", ErrUnknownVersion, *head.Version)
}

// Encode writes the schema to w; see Marshal.
func Encode(w io.Writer, s *DatasetSchema) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("synth: writing schema: %v", err)
	}
	return nil
}

// Decode reads one schema document from r; see Unmarshal.
func Decode(r io.Reader) (*DatasetSchema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("synth: reading schema: %v", err)
	}
	return Unmarshal(data)
}

// decodeDoc parses the sections shared by format versions 1 and 2,
// applying the version 1 coordinate chunk default where it applies.
func decodeDoc(data []byte, version int) (*DatasetSchema, error) {
	var doc schemaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	s := &DatasetSchema{
		Version:   version,
		Coords:    make(map[string]CoordinateSchema, len(doc.Coords)),
		Variables: make(map[string]VariableSchema, len(doc.Variables)),
	}
	for name, c := range doc.Coords {
		if c.Dim != name {
			return nil, fmt.Errorf("%w: coordinate %q declares dimension %q", ErrMalformedEncoding, name, c.Dim)
		}
		if c.Length == nil {
			return nil, fmt.Errorf("%w: coordinate %q has no length", ErrMalformedEncoding, name)
		}
		dtype, err := dataset.ParseDType(c.DType)
		if err != nil {
			return nil, fmt.Errorf("synth: coordinate %s: %w", name, err)
		}
		chunk := 0
		switch {
		case c.Chunk != nil:
			chunk = *c.Chunk
		case version == 1:
			// Version 1 did not record coordinate chunk sizes;
			// coordinates were stored as a single chunk.
			chunk = *c.Length
		default:
			return nil, fmt.Errorf("%w: coordinate %q has no chunk size", ErrMalformedEncoding, name)
		}
		s.Coords[name] = CoordinateSchema{
			Name:   name,
			DType:  dtype,
			Chunk:  chunk,
			Length: *c.Length,
		}
	}
	for name, v := range doc.Variables {
		dtype, err := dataset.ParseDType(v.DType)
		if err != nil {
			return nil, fmt.Errorf("synth: variable %s: %w", name, err)
		}
		if v.Dims == nil || v.Shape == nil || v.Chunks == nil {
			return nil, fmt.Errorf("%w: variable %q is missing dims, shape or chunks", ErrMalformedEncoding, name)
		}
		if len(v.Dims) != len(v.Shape) || len(v.Shape) != len(v.Chunks) {
			return nil, fmt.Errorf("%w: variable %s has %d dims, %d shape entries and %d chunk entries",
				ErrShapeMismatch, name, len(v.Dims), len(v.Shape), len(v.Chunks))
		}
		s.Variables[name] = VariableSchema{
			Name:  name,
			Dims:  v.Dims,
			DType: dtype,
			Array: ChunkedArray{Shape: v.Shape, Chunks: v.Chunks},
		}
	}
	return s, nil
}
