/*
Copyright © 2019 the Isen authors.
This file is part of Isen.

Isen is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Isen is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Isen.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash computes fingerprints of solver output, which identify a
// run independently of the archive format it was stored in.
package hash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spatialmodel/isen"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Output returns a hash key for the namelist, output times, and fields of o.
// Two outputs with the same key hold bit-identical data.
func Output(o *isen.Output) string {
	h := fnv.New128a()
	printer.Fprintf(h, "%#v", o.NameList())
	writeFloats(h, o.Times())
	for _, f := range o.Fields() {
		a, err := o.Field(f)
		if err != nil {
			panic(err) // Fields only lists present fields.
		}
		fmt.Fprintf(h, "%s%v", f, a.Shape)
		writeFloats(h, a.Elements)
	}
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

func writeFloats(w io.Writer, v []float64) {
	// Writes to a hash.Hash never fail.
	binary.Write(w, binary.LittleEndian, v)
}
