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
	"sort"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// Field identifies one of the raw arrays written by the solver.
type Field int

// These are the raw solver output fields.
const (
	FieldZ        Field = iota // height of the isentropic interfaces
	FieldU                     // horizontal velocity
	FieldS                     // isentropic density
	FieldPrec                  // precipitation rate
	FieldTotPrec               // accumulated precipitation
	FieldQV                    // specific humidity
	FieldQC                    // specific cloud liquid water content
	FieldQR                    // specific rain water content
	FieldNR                    // rain droplet number density
	FieldNC                    // cloud droplet number density
	FieldDThetaDt              // latent heating rate
)

// fieldLayout describes the dimensions of a field after the time dimension.
type fieldLayout int

const (
	staggeredLayers fieldLayout = iota // (nx, nz+1)
	layers                             // (nx, nz)
	surface                            // (nx)
)

type fieldInfo struct {
	name, description string
	units             unit.Dimensions // nil if not representable in SI base units
	unitsText         string          // used when units is nil
	layout            fieldLayout
	enabled           func(nl NameList) bool
}

func always(NameList) bool { return true }
func moisture(nl NameList) bool { return nl.Imoist }
func twoMomentMicrophys(nl NameList) bool { return nl.Imoist && nl.Imicrophys == 2 }
func coupledHeating(nl NameList) bool { return nl.Imoist && nl.Idthdt }

var (
	kgPerMeter2PerKelvin = unit.Dimensions{
		unit.MassDim:        1,
		unit.LengthDim:      -2,
		unit.TemperatureDim: -1,
	}
	perKilogram = unit.Dimensions{
		unit.MassDim: -1,
	}
	kelvinPerSecond = unit.Dimensions{
		unit.TemperatureDim: 1,
		unit.TimeDim:        -1,
	}
)

var fieldInfos = []fieldInfo{
	FieldZ:        {"z", "Height of the isentropic surfaces", unit.Meter, "", staggeredLayers, always},
	FieldU:        {"u", "Horizontal velocity", unit.MeterPerSecond, "", layers, always},
	FieldS:        {"s", "Isentropic density", kgPerMeter2PerKelvin, "", layers, always},
	FieldPrec:     {"prec", "Precipitation rate", nil, "mm h^-1", surface, moisture},
	FieldTotPrec:  {"tot_prec", "Accumulated precipitation", nil, "mm", surface, moisture},
	FieldQV:       {"qv", "Specific humidity", unit.Dimless, "", layers, moisture},
	FieldQC:       {"qc", "Specific cloud liquid water content", unit.Dimless, "", layers, moisture},
	FieldQR:       {"qr", "Specific rain water content", unit.Dimless, "", layers, moisture},
	FieldNR:       {"nr", "Rain droplet number density", perKilogram, "", layers, twoMomentMicrophys},
	FieldNC:       {"nc", "Cloud droplet number density", perKilogram, "", layers, twoMomentMicrophys},
	FieldDThetaDt: {"dthetadt", "Latent heating rate", kelvinPerSecond, "", layers, coupledHeating},
}

func (f Field) valid() bool { return f >= 0 && int(f) < len(fieldInfos) }

func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldInfos[f].name
}

// Description returns a human readable description of the field.
func (f Field) Description() string { return fieldInfos[f].description }

// Units returns the units of the field.
func (f Field) Units() string {
	info := fieldInfos[f]
	if info.units == nil {
		return info.unitsText
	}
	if s := info.units.String(); s != "" {
		return s
	}
	return "1"
}

// ParseField returns the Field with the given solver name.
func ParseField(name string) (Field, error) {
	for i, info := range fieldInfos {
		if info.name == name {
			return Field(i), nil
		}
	}
	return -1, fmt.Errorf("isen: unknown field name '%s'", name)
}

// shape returns the expected shape of the field for the given namelist and
// number of time steps.
func (f Field) shape(nl NameList, nt int) []int {
	switch fieldInfos[f].layout {
	case staggeredLayers:
		return []int{nt, nl.Nx, nl.Nz1()}
	case layers:
		return []int{nt, nl.Nx, nl.Nz}
	default:
		return []int{nt, nl.Nx}
	}
}

// Output holds the result of a solver run: the namelist the run was
// configured with, the output times, and the raw field arrays indexed
// [t, i, k]. An Output is read-only after construction.
type Output struct {
	nameList NameList
	times    []float64
	fields   map[Field]*sparse.DenseArray
}

// NewOutput checks that the shapes of fields agree with nl and the number
// of output times and returns a new Output. The height field is required;
// fields that the namelist does not enable may be omitted.
func NewOutput(nl NameList, times []float64, fields map[Field]*sparse.DenseArray) (*Output, error) {
	if err := nl.Validate(); err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("isen: output must have at least one time step")
	}
	if _, ok := fields[FieldZ]; !ok {
		return nil, MissingFieldError{Field: FieldZ.String()}
	}
	o := &Output{
		nameList: nl,
		times:    append([]float64(nil), times...),
		fields:   make(map[Field]*sparse.DenseArray, len(fields)),
	}
	for f, a := range fields {
		if !f.valid() {
			return nil, fmt.Errorf("isen: invalid field %v", f)
		}
		if a == nil {
			return nil, MissingFieldError{Field: f.String()}
		}
		want := f.shape(nl, len(times))
		if !sameShape(want, a.Shape) {
			return nil, ConfigurationInconsistencyError{
				Field: f.String(),
				Want:  want,
				Got:   append([]int(nil), a.Shape...),
			}
		}
		o.fields[f] = a
	}
	return o, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NameList returns the configuration of the run.
func (o *Output) NameList() NameList { return o.nameList }

// Times returns a copy of the output times [s].
func (o *Output) Times() []float64 { return append([]float64(nil), o.times...) }

// NumTimes returns the number of output time steps.
func (o *Output) NumTimes() int { return len(o.times) }

// Field returns the raw array for field f. The returned array must not be
// modified.
func (o *Output) Field(f Field) (*sparse.DenseArray, error) {
	a, ok := o.fields[f]
	if !ok {
		return nil, MissingFieldError{Field: f.String()}
	}
	return a, nil
}

// FieldByName returns the raw array with the given solver name.
func (o *Output) FieldByName(name string) (*sparse.DenseArray, error) {
	f, err := ParseField(name)
	if err != nil {
		return nil, err
	}
	return o.Field(f)
}

// Fields returns the fields present in the output, in order.
func (o *Output) Fields() []Field {
	fields := make([]Field, 0, len(o.fields))
	for f := range o.fields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// EnabledBy reports whether the solver writes field f when run with nl.
func (f Field) EnabledBy(nl NameList) bool { return fieldInfos[f].enabled(nl) }
