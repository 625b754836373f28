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

package synthutil

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/oelbert/fv3net/synth"
)

// ReadRanges parses a YAML document mapping variable names to the
// value range their generated data should fall in:
//
//	air_temperature:
//	  min: 180
//	  max: 320
//	specific_humidity:
//	  min: 0
//	  max: 0.02
func ReadRanges(b []byte) (map[string]synth.Range, error) {
	ranges := make(map[string]synth.Range)
	if err := yaml.Unmarshal(b, &ranges); err != nil {
		return nil, fmt.Errorf("synthutil: parsing ranges: %v", err)
	}
	for name, r := range ranges {
		if r.Max < r.Min {
			return nil, fmt.Errorf("synthutil: range for %s: max %g is less than min %g", name, r.Max, r.Min)
		}
	}
	return ranges, nil
}
