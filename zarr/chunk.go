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
	"strconv"
	"strings"
)

// gridShape returns the number of chunks along each axis: the shape
// divided by the chunk size, rounding up so that a ragged final chunk
// still counts.
func gridShape(shape, chunks []int) []int {
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunks[i] - 1) / chunks[i]
	}
	return grid
}

// chunkKey returns the store key suffix for the chunk at the given
// grid indices, for example "0.2.1".
func chunkKey(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// next advances idx through the index space bounded by extents,
// last axis fastest. It reports false after the final index.
func next(idx, extents []int) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < extents[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}

// strides returns the flat-index stride of each axis for a C-ordered
// array of the given shape.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}

// flatten converts an index vector to a flat C-order offset.
func flatten(idx, strides []int) int {
	off := 0
	for i, x := range idx {
		off += x * strides[i]
	}
	return off
}

// chunkExtent returns the origin of the chunk at grid position ci and
// the extent of its in-bounds region, which is smaller than the
// nominal chunk size for ragged final chunks.
func chunkExtent(ci, shape, chunks []int) (origin, extent []int) {
	origin = make([]int, len(ci))
	extent = make([]int, len(ci))
	for d := range ci {
		origin[d] = ci[d] * chunks[d]
		extent[d] = chunks[d]
		if rest := shape[d] - origin[d]; rest < extent[d] {
			extent[d] = rest
		}
	}
	return origin, extent
}

// copyRegion copies the in-bounds region of one chunk between the
// array's flat buffer and the chunk's flat buffer. If toChunk is true
// the copy runs from array to chunk, otherwise from chunk to array.
// Both buffers must have the element type implied by the array's data
// type.
func copyRegion(chunk, array interface{}, ci, shape, chunks []int, toChunk bool) {
	origin, extent := chunkExtent(ci, shape, chunks)
	arrayStrides := strides(shape)
	chunkStrides := strides(chunks)
	run := extent[len(extent)-1]
	if run == 0 {
		return
	}

	// Walk every row of the region: all in-bounds indices over the
	// leading axes, copying a contiguous run along the last axis.
	last := len(extent) - 1
	rowIdx := make([]int, last)
	arrayIdx := make([]int, len(extent))
	chunkIdx := make([]int, len(extent))
	for {
		for d := range rowIdx {
			arrayIdx[d] = rowIdx[d] + origin[d]
			chunkIdx[d] = rowIdx[d]
		}
		arrayIdx[last] = origin[last]
		chunkIdx[last] = 0
		arrayOff := flatten(arrayIdx, arrayStrides)
		chunkOff := flatten(chunkIdx, chunkStrides)
		if toChunk {
			copyElems(chunk, array, chunkOff, arrayOff, run)
		} else {
			copyElems(array, chunk, arrayOff, chunkOff, run)
		}
		if len(rowIdx) == 0 || !next(rowIdx, extent[:last]) {
			return
		}
	}
}

// copyElems copies n elements from src[srcOff:] to dst[dstOff:], where
// dst and src are slices of the same element type.
func copyElems(dst, src interface{}, dstOff, srcOff, n int) {
	switch d := dst.(type) {
	case []bool:
		copy(d[dstOff:dstOff+n], src.([]bool)[srcOff:srcOff+n])
	case []int8:
		copy(d[dstOff:dstOff+n], src.([]int8)[srcOff:srcOff+n])
	case []int16:
		copy(d[dstOff:dstOff+n], src.([]int16)[srcOff:srcOff+n])
	case []int32:
		copy(d[dstOff:dstOff+n], src.([]int32)[srcOff:srcOff+n])
	case []int64:
		copy(d[dstOff:dstOff+n], src.([]int64)[srcOff:srcOff+n])
	case []uint8:
		copy(d[dstOff:dstOff+n], src.([]uint8)[srcOff:srcOff+n])
	case []float32:
		copy(d[dstOff:dstOff+n], src.([]float32)[srcOff:srcOff+n])
	case []float64:
		copy(d[dstOff:dstOff+n], src.([]float64)[srcOff:srcOff+n])
	case []string:
		copy(d[dstOff:dstOff+n], src.([]string)[srcOff:srcOff+n])
	default:
		panic("zarr: unsupported buffer type")
	}
}
