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

import "errors"

// Sentinel errors for the failure classes of schema handling. Errors
// returned by this package wrap these where they apply, so callers can
// classify failures with errors.Is. Data type failures wrap
// dataset.ErrUnsupportedDType.
var (
	// ErrMalformedEncoding means serialized schema text could not be
	// parsed into the schema model.
	ErrMalformedEncoding = errors.New("synth: malformed schema encoding")

	// ErrUnknownVersion means a serialized schema carries no version
	// tag, or one this release does not understand.
	ErrUnknownVersion = errors.New("synth: unknown or missing schema version")

	// ErrShapeMismatch means a schema's dimension names, shape and
	// chunk sequences do not have matching lengths.
	ErrShapeMismatch = errors.New("synth: dimension, shape and chunk counts differ")

	// ErrAmbiguousCoordinate means a name declared as a coordinate
	// could not be resolved to a one-dimensional array of that name.
	ErrAmbiguousCoordinate = errors.New("synth: ambiguous coordinate")
)
