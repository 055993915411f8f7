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

package hash

import (
	"testing"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/isen"
)

func testOutput(t *testing.T, u00 float64) *isen.Output {
	nl := isen.DefaultNameList()
	nl.Nx, nl.Nz = 3, 2
	nl.Xl, nl.Dx = 3000, 1000
	nl.Imoist = false
	nl.U00 = u00
	z := sparse.ZerosDense(2, 3, 3)
	for i := range z.Elements {
		z.Elements[i] = float64(i)
	}
	o, err := isen.NewOutput(nl, []float64{0, 60}, map[isen.Field]*sparse.DenseArray{isen.FieldZ: z})
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestOutput(t *testing.T) {
	a := Output(testOutput(t, 10))
	if b := Output(testOutput(t, 10)); a != b {
		t.Errorf("identical outputs: %s != %s", a, b)
	}
	if c := Output(testOutput(t, 11)); a == c {
		t.Errorf("different namelists have the same key %s", a)
	}
	if len(a) != 32 {
		t.Errorf("key %s has length %d; want 32", a, len(a))
	}
}
