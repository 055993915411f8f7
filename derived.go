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
	"fmt"

	"github.com/ctessum/sparse"
)

// DerivedField identifies one of the arrays computed by NewDerivedFields.
type DerivedField int

// These are the derived plotting fields.
const (
	XCoordinate              DerivedField = iota // horizontal coordinate [km]
	Height                                       // destaggered height [km]
	Theta                                        // potential temperature of each layer [K]
	Topography                                   // surface height [km]
	Velocity                                     // horizontal velocity [m/s]
	Vapor                                        // specific humidity [g/kg]
	Cloud                                        // specific cloud liquid water content [g/kg]
	Rain                                         // specific rain water content [g/kg]
	Precipitation                                // precipitation rate [mm/h]
	AccumulatedPrecipitation                     // accumulated precipitation [mm]
)

var derivedFieldNames = []string{
	XCoordinate:              "x",
	Height:                   "height",
	Theta:                    "theta",
	Topography:               "topography",
	Velocity:                 "velocity",
	Vapor:                    "vapor",
	Cloud:                    "cloud",
	Rain:                     "rain",
	Precipitation:            "precipitation",
	AccumulatedPrecipitation: "accumulated_precipitation",
}

func (d DerivedField) String() string {
	if d < 0 || int(d) >= len(derivedFieldNames) {
		return fmt.Sprintf("DerivedField(%d)", int(d))
	}
	return derivedFieldNames[d]
}

// scale is the factor that has been applied to the solver's units.
func (d DerivedField) scale() float64 {
	switch d {
	case Vapor, Cloud, Rain:
		return 1000
	}
	return 1
}

// DerivedFields holds the arrays needed for plotting, computed once from
// an Output. Time-dependent arrays are indexed [t, i, k] or [t, i];
// time-invariant arrays are indexed [i, k]. DerivedFields must not be
// modified after construction.
type DerivedFields struct {
	nt, nx, nz int

	x, theta   *sparse.DenseArray // (nx, nz)
	height     *sparse.DenseArray // (nt, nx, nz)
	topography *sparse.DenseArray // (nt, nx)
	velocity   *sparse.DenseArray // (nt, nx, nz)

	// Only present when the moisture scheme is enabled.
	vapor, cloud, rain *sparse.DenseArray // (nt, nx, nz)
	prec, totPrec      *sparse.DenseArray // (nt, nx)
}

// NewDerivedFields computes the plotting fields from o.
func NewDerivedFields(o *Output) (*DerivedFields, error) {
	nl := o.NameList()
	nx, nz, nt := nl.Nx, nl.Nz, o.NumTimes()
	if nx < 1 || nz < 1 {
		return nil, ConfigurationInconsistencyError{
			Field: "grid",
			Want:  []int{1, 1},
			Got:   []int{nx, nz},
		}
	}
	z, err := o.Field(FieldZ)
	if err != nil {
		return nil, err
	}
	if want := []int{nt, nx, nz + 1}; !sameShape(want, z.Shape) {
		return nil, ConfigurationInconsistencyError{Field: FieldZ.String(), Want: want, Got: z.Shape}
	}

	d := &DerivedFields{nt: nt, nx: nx, nz: nz}

	dx := float64(nl.Xl) / float64(nx)
	d.x = sparse.ZerosDense(nx, nz)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			d.x.Set(float64(i)*dx/1000, i, k)
		}
	}

	// Heights are written at the layer interfaces; theta is defined at the
	// layer centers.
	d.height = sparse.ZerosDense(nt, nx, nz)
	d.topography = sparse.ZerosDense(nt, nx)
	for t := 0; t < nt; t++ {
		for i := 0; i < nx; i++ {
			for k := 0; k < nz; k++ {
				d.height.Set(0.5*(z.Get(t, i, k)+z.Get(t, i, k+1))/1000, t, i, k)
			}
			d.topography.Set(z.Get(t, i, 0)/1000, t, i)
		}
	}

	dth := nl.Dth()
	d.theta = sparse.ZerosDense(nx, nz)
	for k := 0; k < nz; k++ {
		th := nl.Th00 + (float64(k)+0.5)*dth
		for i := 0; i < nx; i++ {
			d.theta.Set(th, i, k)
		}
	}

	if u, err := o.Field(FieldU); err == nil {
		d.velocity = u.Copy()
	}

	if nl.Imoist {
		for _, m := range []struct {
			f     Field
			dst   **sparse.DenseArray
			scale float64
		}{
			{FieldQV, &d.vapor, Vapor.scale()},
			{FieldQC, &d.cloud, Cloud.scale()},
			{FieldQR, &d.rain, Rain.scale()},
			{FieldPrec, &d.prec, Precipitation.scale()},
			{FieldTotPrec, &d.totPrec, AccumulatedPrecipitation.scale()},
		} {
			a, err := o.Field(m.f)
			if err != nil {
				return nil, err
			}
			*m.dst = a.ScaleCopy(m.scale)
		}
	}
	return d, nil
}

// NumTimes returns the number of time steps.
func (d *DerivedFields) NumTimes() int { return d.nt }

// array returns the full array for tag, or a MissingFieldError if it was
// not computed.
func (d *DerivedFields) array(tag DerivedField) (*sparse.DenseArray, error) {
	var a *sparse.DenseArray
	switch tag {
	case XCoordinate:
		a = d.x
	case Height:
		a = d.height
	case Theta:
		a = d.theta
	case Topography:
		a = d.topography
	case Velocity:
		a = d.velocity
	case Vapor:
		a = d.vapor
	case Cloud:
		a = d.cloud
	case Rain:
		a = d.rain
	case Precipitation:
		a = d.prec
	case AccumulatedPrecipitation:
		a = d.totPrec
	default:
		return nil, fmt.Errorf("isen: invalid derived field %v", tag)
	}
	if a == nil {
		return nil, MissingFieldError{Field: tag.String()}
	}
	return a, nil
}

// timeInvariant reports whether tag has no time dimension.
func (tag DerivedField) timeInvariant() bool {
	return tag == XCoordinate || tag == Theta
}

// Sample returns a copy of derived field tag at time index t. Arrays without
// a time dimension are returned whole.
func (d *DerivedFields) Sample(tag DerivedField, t int) (*sparse.DenseArray, error) {
	a, err := d.array(tag)
	if err != nil {
		return nil, err
	}
	if tag.timeInvariant() {
		return a.Copy(), nil
	}
	if t < 0 || t >= d.nt {
		return nil, TimestepRangeError{Index: t, Max: d.nt - 1}
	}
	out := sparse.ZerosDense(a.Shape[1:]...)
	n := len(out.Elements)
	copy(out.Elements, a.Elements[t*n:(t+1)*n])
	return out, nil
}

// Grid returns the sample of tag at time t as a [i][k] slice, for
// two-dimensional fields.
func (d *DerivedFields) Grid(tag DerivedField, t int) ([][]float64, error) {
	a, err := d.Sample(tag, t)
	if err != nil {
		return nil, err
	}
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("isen: derived field %v is not two-dimensional", tag)
	}
	g := make([][]float64, a.Shape[0])
	for i := range g {
		g[i] = make([]float64, a.Shape[1])
		for k := range g[i] {
			g[i][k] = a.Get(i, k)
		}
	}
	return g, nil
}
