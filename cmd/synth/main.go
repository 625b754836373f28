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

// Command synth saves the schemas of labeled, chunked datasets and
// generates randomly-filled datasets from saved schemas.
package main

import (
	"fmt"
	"os"

	"github.com/oelbert/fv3net/synthutil"
)

func main() {
	if err := synthutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
