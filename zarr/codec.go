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
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/oelbert/fv3net/dataset"
)

// zlibLevel is the compression level recorded in array metadata and
// used when writing chunks.
const zlibLevel = 5

// encodeChunk serializes one chunk buffer, a typed slice holding the
// full nominal chunk, into its stored byte form: elements marshaled
// little-endian (strings in the vlen-utf8 layout), then compressed
// according to m.Compressor.
func encodeChunk(buf interface{}, m *ArrayMeta) ([]byte, error) {
	raw, err := marshalElems(buf)
	if err != nil {
		return nil, err
	}
	return compress(raw, m.Compressor)
}

// decodeChunk reverses encodeChunk, producing a typed slice of n
// elements of the given type.
func decodeChunk(data []byte, dtype dataset.DType, n int, m *ArrayMeta) (interface{}, error) {
	raw, err := decompress(data, m.Compressor)
	if err != nil {
		return nil, err
	}
	return unmarshalElems(raw, dtype, n)
}

func marshalElems(buf interface{}) ([]byte, error) {
	switch data := buf.(type) {
	case []bool:
		out := make([]byte, len(data))
		for i, v := range data {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	case []int8:
		out := make([]byte, len(data))
		for i, v := range data {
			out[i] = byte(v)
		}
		return out, nil
	case []uint8:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case []int16:
		out := make([]byte, 2*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
		}
		return out, nil
	case []int32:
		out := make([]byte, 4*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint32(out[4*i:], uint32(v))
		}
		return out, nil
	case []int64:
		out := make([]byte, 8*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint64(out[8*i:], uint64(v))
		}
		return out, nil
	case []float32:
		out := make([]byte, 4*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
		}
		return out, nil
	case []float64:
		out := make([]byte, 8*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
		}
		return out, nil
	case []string:
		// The numcodecs vlen-utf8 layout: a little-endian uint32
		// item count, then one uint32 byte length before each item.
		size := 4
		for _, s := range data {
			size += 4 + len(s)
		}
		out := make([]byte, 0, size)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
		for _, s := range data {
			out = binary.LittleEndian.AppendUint32(out, uint32(len(s)))
			out = append(out, s...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("zarr: cannot marshal chunk buffer of type %T", buf)
}

func unmarshalElems(raw []byte, dtype dataset.DType, n int) (interface{}, error) {
	if size := dtype.Size(); size > 0 && len(raw) != n*size {
		return nil, fmt.Errorf("zarr: chunk holds %d bytes, want %d for %d %s elements", len(raw), n*size, n, dtype)
	}
	switch dtype {
	case dataset.Bool:
		out := make([]bool, n)
		for i := range out {
			out[i] = raw[i] != 0
		}
		return out, nil
	case dataset.Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out, nil
	case dataset.Uint8:
		out := make([]uint8, n)
		copy(out, raw)
		return out, nil
	case dataset.Int16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
		}
		return out, nil
	case dataset.Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		return out, nil
	case dataset.Int64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return out, nil
	case dataset.Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		return out, nil
	case dataset.Float64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return out, nil
	case dataset.String:
		if len(raw) < 4 {
			return nil, fmt.Errorf("zarr: string chunk is %d bytes, too short for a vlen-utf8 header", len(raw))
		}
		count := int(binary.LittleEndian.Uint32(raw))
		if count != n {
			return nil, fmt.Errorf("zarr: string chunk holds %d items, want %d", count, n)
		}
		out := make([]string, n)
		off := 4
		for i := range out {
			if off+4 > len(raw) {
				return nil, fmt.Errorf("zarr: string chunk truncated at item %d", i)
			}
			l := int(binary.LittleEndian.Uint32(raw[off:]))
			off += 4
			if off+l > len(raw) {
				return nil, fmt.Errorf("zarr: string chunk truncated at item %d", i)
			}
			out[i] = string(raw[off : off+l])
			off += l
		}
		return out, nil
	}
	return nil, fmt.Errorf("zarr: cannot unmarshal chunk elements: %w: %s", dataset.ErrUnsupportedDType, dtype)
}

func compress(b []byte, c *CompressorConfig) ([]byte, error) {
	if c == nil {
		return b, nil
	}
	level := c.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	var out bytes.Buffer
	var w io.WriteCloser
	var err error
	switch c.ID {
	case "zlib":
		w, err = zlib.NewWriterLevel(&out, level)
	case "gzip":
		w, err = gzip.NewWriterLevel(&out, level)
	default:
		return nil, fmt.Errorf("zarr: unsupported compressor %q", c.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("zarr: compressing chunk: %v", err)
	}
	if _, err := w.Write(b); err != nil {
		return nil, fmt.Errorf("zarr: compressing chunk: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zarr: compressing chunk: %v", err)
	}
	return out.Bytes(), nil
}

func decompress(b []byte, c *CompressorConfig) ([]byte, error) {
	if c == nil {
		return b, nil
	}
	var r io.ReadCloser
	var err error
	switch c.ID {
	case "zlib":
		r, err = zlib.NewReader(bytes.NewReader(b))
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("zarr: unsupported compressor %q", c.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("zarr: decompressing chunk: %v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zarr: decompressing chunk: %v", err)
	}
	return out, nil
}
