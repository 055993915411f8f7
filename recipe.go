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
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// PlotName is a quantity that can be plotted.
type PlotName int

// These are the available plots.
const (
	HorizontalVelocity PlotName = iota
	SpecificHumidity
	SpecificCloudLiquidWaterContent
	SpecificRainWaterContent
)

var plotNames = []string{
	HorizontalVelocity:              "horizontal_velocity",
	SpecificHumidity:                "specific_humidity",
	SpecificCloudLiquidWaterContent: "specific_cloud_liquid_water_content",
	SpecificRainWaterContent:        "specific_rain_water_content",
}

func (p PlotName) String() string {
	if p < 0 || int(p) >= len(plotNames) {
		return fmt.Sprintf("PlotName(%d)", int(p))
	}
	return plotNames[p]
}

// PlotNames returns the names of all available plots.
func PlotNames() []string { return append([]string(nil), plotNames...) }

// ParsePlotName returns the PlotName matching s, ignoring case.
func ParsePlotName(s string) (PlotName, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range plotNames {
		if n == name {
			return PlotName(i), nil
		}
	}
	return -1, UnknownPlotNameError{Name: s}
}

// maxLevels is the largest number of contour levels a recipe may have.
const maxLevels = 1000

// levelCount returns the number of values lo, lo+step, ... below hi.
func levelCount(lo, hi, step float64) (int, error) {
	for _, v := range []float64{lo, hi, step} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("isen: contour range [%g, %g) with interval %g must be finite", lo, hi, step)
		}
	}
	if !(step > 0) {
		return 0, fmt.Errorf("isen: contour interval %g must be positive", step)
	}
	if !(hi > lo) {
		return 0, fmt.Errorf("isen: invalid contour range [%g, %g)", lo, hi)
	}
	// The small offset keeps hi out of the range when (hi-lo)/step is
	// integral but rounds up.
	n := math.Ceil((hi-lo)/step - 1e-9)
	if n > maxLevels {
		return 0, fmt.Errorf("isen: contour range [%g, %g) with interval %g has more than %d levels",
			lo, hi, step, maxLevels)
	}
	if n < 1 {
		n = 1
	}
	return int(n), nil
}

// Range is a set of evenly spaced values in [Min, Max).
type Range struct {
	Min, Max, Step float64
}

// Values returns Min, Min+Step, Min+2·Step, ... for all values below Max.
func (r Range) Values() ([]float64, error) {
	n, err := levelCount(r.Min, r.Max, r.Step)
	if err != nil {
		return nil, err
	}
	v := make([]float64, n)
	if n == 1 {
		v[0] = r.Min
		return v, nil
	}
	floats.Span(v, r.Min, r.Min+float64(n-1)*r.Step)
	return v, nil
}

// Limits holds the contour settings used to build plot recipes.
type Limits struct {
	// VLim is the range of velocity contours [m/s] and VCI is the interval
	// between them.
	VLim [2]float64
	VCI  float64

	// Contour ranges for the moisture plots [g/kg].
	QV, QC, QR Range

	// Contour colors for velocity levels below, at, and above the
	// reference velocity.
	BelowColor, ReferenceColor, AboveColor color.Color

	// MoistureColor is the contour color for moisture plots.
	MoistureColor color.Color
}

// DefaultLimits returns the default contour settings.
func DefaultLimits() Limits {
	return Limits{
		VLim:           [2]float64{0, 60},
		VCI:            2,
		QV:             Range{Min: 0, Max: 15, Step: 1},
		QC:             Range{Min: 0.1, Max: 1.1, Step: 0.1},
		QR:             Range{Min: 0.001, Max: 0.02, Step: 0.002},
		BelowColor:     color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff},
		ReferenceColor: color.RGBA{R: 0xff, A: 0xff},
		AboveColor:     color.Black,
		MoistureColor:  color.RGBA{B: 0xcd, A: 0xff},
	}
}

// PlotRecipe describes how to contour one derived field.
type PlotRecipe struct {
	Format string        // formatting verb for contour labels
	Levels []float64     // strictly increasing contour levels
	Colors []color.Color // one color per level
	Scale  float64       // multiplier relative to the solver's units
	Field  DerivedField  // field to sample
}

// Recipe returns the recipe for plot name given the run configuration nl.
func (l Limits) Recipe(name PlotName, nl NameList) (PlotRecipe, error) {
	switch name {
	case HorizontalVelocity:
		return l.velocityRecipe(nl.U00)
	case SpecificHumidity:
		return l.moistureRecipe(l.QV, Vapor, "%.0f")
	case SpecificCloudLiquidWaterContent:
		return l.moistureRecipe(l.QC, Cloud, "%.1f")
	case SpecificRainWaterContent:
		return l.moistureRecipe(l.QR, Rain, "%.3f")
	}
	return PlotRecipe{}, UnknownPlotNameError{Name: name.String()}
}

// velocityRecipe places contours every VCI within VLim and always adds
// the reference velocity u00 exactly once, with its own color.
func (l Limits) velocityRecipe(u00 float64) (PlotRecipe, error) {
	if math.IsInf(u00, 0) || math.IsNaN(u00) {
		return PlotRecipe{}, fmt.Errorf("isen: reference velocity %g must be finite", u00)
	}
	lo, hi := l.VLim[0], l.VLim[1]
	nv, err := levelCount(lo, hi, l.VCI)
	if err != nil {
		return PlotRecipe{}, err
	}
	r := PlotRecipe{Format: "%.0f", Scale: 1, Field: Velocity}
	referenceAdded := false
	for n := 0; n <= nv; n++ {
		v := lo + float64(n)*l.VCI
		if v >= hi {
			break
		}
		if v < u00 {
			r.Levels = append(r.Levels, v)
			r.Colors = append(r.Colors, l.BelowColor)
			continue
		}
		if !referenceAdded {
			r.Levels = append(r.Levels, u00)
			r.Colors = append(r.Colors, l.ReferenceColor)
			referenceAdded = true
		}
		if v > u00 {
			r.Levels = append(r.Levels, v)
			r.Colors = append(r.Colors, l.AboveColor)
		}
	}
	if !referenceAdded {
		r.Levels = append(r.Levels, u00)
		r.Colors = append(r.Colors, l.ReferenceColor)
	}
	return r, nil
}

func (l Limits) moistureRecipe(rng Range, field DerivedField, format string) (PlotRecipe, error) {
	levels, err := rng.Values()
	if err != nil {
		return PlotRecipe{}, err
	}
	colors := make([]color.Color, len(levels))
	for i := range colors {
		colors[i] = l.MoistureColor
	}
	return PlotRecipe{
		Format: format,
		Levels: levels,
		Colors: colors,
		Scale:  1000,
		Field:  field,
	}, nil
}
