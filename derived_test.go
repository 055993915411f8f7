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

package isen

import (
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

func TestDerivedFields(t *testing.T) {
	const (
		nx, nz, nt = 8, 6, 4
		tolerance  = 1.0e-12
	)
	o, err := newTestOutput(nx, nz, nt, false)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDerivedFields(o)
	if err != nil {
		t.Fatal(err)
	}
	nl := o.NameList()
	z, _ := o.Field(FieldZ)

	t.Run("theta", func(t *testing.T) {
		theta, err := d.Grid(Theta, 0)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < nx; i++ {
			if len(theta[i]) != nz {
				t.Fatalf("want %d theta values, have %d", nz, len(theta[i]))
			}
			for k := 0; k < nz; k++ {
				want := nl.Th00 + (float64(k)+0.5)*nl.Thl/float64(nz)
				if !floats.EqualWithinAbs(theta[i][k], want, tolerance) {
					t.Errorf("theta[%d][%d]: want %g, have %g", i, k, want, theta[i][k])
				}
				if k > 0 && theta[i][k] <= theta[i][k-1] {
					t.Errorf("theta[%d] is not strictly increasing at %d", i, k)
				}
			}
		}
	})

	t.Run("destaggered height", func(t *testing.T) {
		for tt := 0; tt < nt; tt++ {
			h, err := d.Sample(Height, tt)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < nx; i++ {
				for k := 0; k < nz; k++ {
					want := 0.5 * (z.Get(tt, i, k) + z.Get(tt, i, k+1)) / 1000
					if have := h.Get(i, k); have != want {
						t.Errorf("height[%d,%d,%d]: want %g, have %g", tt, i, k, want, have)
					}
				}
			}
		}
	})

	t.Run("x invariance", func(t *testing.T) {
		x0, err := d.Grid(XCoordinate, 0)
		if err != nil {
			t.Fatal(err)
		}
		for tt := 0; tt < nt; tt++ {
			x, err := d.Grid(XCoordinate, tt)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(x, x0) {
				t.Errorf("x at time %d differs from time 0", tt)
			}
			for i := range x {
				want := float64(i) * float64(nl.Xl) / float64(nx) / 1000
				for k := range x[i] {
					if x[i][k] != x[i][0] {
						t.Errorf("x[%d][%d] differs from level 0", i, k)
					}
				}
				if !floats.EqualWithinAbs(x[i][0], want, tolerance) {
					t.Errorf("x[%d]: want %g, have %g", i, want, x[i][0])
				}
			}
		}
	})

	t.Run("topography", func(t *testing.T) {
		topo, err := d.Sample(Topography, nt-1)
		if err != nil {
			t.Fatal(err)
		}
		if want := []int{nx}; !reflect.DeepEqual(topo.Shape, want) {
			t.Fatalf("want shape %v, have %v", want, topo.Shape)
		}
		for i := 0; i < nx; i++ {
			if want := z.Get(nt-1, i, 0) / 1000; topo.Get(i) != want {
				t.Errorf("topography[%d]: want %g, have %g", i, want, topo.Get(i))
			}
		}
	})

	t.Run("moisture disabled", func(t *testing.T) {
		for _, tag := range []DerivedField{Vapor, Cloud, Rain, Precipitation, AccumulatedPrecipitation} {
			_, err := d.Sample(tag, 0)
			if !reflect.DeepEqual(err, MissingFieldError{Field: tag.String()}) {
				t.Errorf("%v: want MissingFieldError, have %v", tag, err)
			}
		}
	})

	t.Run("timestep range", func(t *testing.T) {
		_, err := d.Sample(Height, nt)
		if !reflect.DeepEqual(err, TimestepRangeError{Index: nt, Max: nt - 1}) {
			t.Errorf("want TimestepRangeError, have %v", err)
		}
		if _, err := d.Sample(Height, nt-1); err != nil {
			t.Error(err)
		}
	})

	t.Run("rebuild", func(t *testing.T) {
		d2, err := NewDerivedFields(o)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(d, d2) {
			t.Error("derived fields differ between builds")
		}
	})
}

func TestDerivedFieldsMoisture(t *testing.T) {
	o, err := newTestOutput(6, 5, 3, true)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDerivedFields(o)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		tag   DerivedField
		f     Field
		scale float64
	}{
		{Vapor, FieldQV, 1000},
		{Cloud, FieldQC, 1000},
		{Rain, FieldQR, 1000},
		{Precipitation, FieldPrec, 1},
		{AccumulatedPrecipitation, FieldTotPrec, 1},
	} {
		raw, _ := o.Field(c.f)
		for tt := 0; tt < o.NumTimes(); tt++ {
			have, err := d.Sample(c.tag, tt)
			if err != nil {
				t.Fatal(err)
			}
			n := len(have.Elements)
			want := sparse.ZerosDense(have.Shape...)
			for j := range want.Elements {
				want.Elements[j] = raw.Elements[tt*n+j] * c.scale
			}
			if !floats.EqualApprox(have.Elements, want.Elements, 1e-12) {
				t.Errorf("%v at time %d: want %v, have %v", c.tag, tt, want.Elements, have.Elements)
			}
		}
	}
}

func TestDerivedFieldsSampleIsCopy(t *testing.T) {
	o, err := newTestOutput(4, 3, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDerivedFields(o)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := d.Sample(Height, 1)
	before := h.Get(2, 1)
	h.Set(-1, 2, 1)
	h2, _ := d.Sample(Height, 1)
	if h2.Get(2, 1) != before {
		t.Error("modifying a sample changed the derived fields")
	}
}
