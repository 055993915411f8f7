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
	"io/ioutil"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Visualizer plots the output of a solver run. The exported fields
// control the appearance of the plots and may be changed before calling
// Plot. A Visualizer must not be used by more than one goroutine at a time.
type Visualizer struct {
	// XLim and ZLim are the horizontal and vertical axis limits [km].
	XLim, ZLim [2]float64

	// Title is shown above the time of the plotted step.
	Title string

	// TLim is the range of the potential temperature contours [K] and
	// TCI is the interval between them.
	TLim [2]float64
	TCI  float64

	// Limits holds the contour settings of the plotted quantities.
	Limits

	ThetaColor, TopographyColor, PrecipitationColor color.Color

	// Width and Height are the figure size. The rain water plot is
	// made taller by PrecipitationHeight to fit the precipitation panel.
	Width, Height, PrecipitationHeight vg.Length

	Log logrus.FieldLogger

	output  *Output
	derived *DerivedFields
	tempDir string // holds shown plots that have no file
}

// NewVisualizer computes the derived fields of o and returns a Visualizer
// with default settings.
func NewVisualizer(o *Output) (*Visualizer, error) {
	d, err := NewDerivedFields(o)
	if err != nil {
		return nil, err
	}
	nl := o.NameList()
	return &Visualizer{
		XLim:                [2]float64{0, float64(nl.Nx-1) * nl.Dx / 1000},
		ZLim:                [2]float64{0, 10},
		Title:               nl.RunName,
		TLim:                [2]float64{nl.Th00 + nl.Dth()/2, 400},
		TCI:                 2,
		Limits:              DefaultLimits(),
		ThetaColor:          color.Gray{Y: 0x80},
		TopographyColor:     color.Gray{Y: 0x40},
		PrecipitationColor:  color.RGBA{B: 0xcd, A: 0xff},
		Width:               6 * vg.Inch,
		Height:              5 * vg.Inch,
		PrecipitationHeight: 2 * vg.Inch,
		Log:                 logrus.StandardLogger(),
		output:              o,
		derived:             d,
	}, nil
}

// DerivedFields returns the fields that the plots are made from.
func (v *Visualizer) DerivedFields() *DerivedFields { return v.derived }

// Plot plots quantity name (one of PlotNames, ignoring case) at output
// step timestep. If file is not empty the figure is saved there in the
// format given by its extension. If show is true the figure is opened in
// the system's image viewer; without a file, it is first written to a
// temporary directory that is reused by later calls and not removed.
// The timestep is checked before the plot name.
func (v *Visualizer) Plot(name string, timestep int, file string, show bool) error {
	log := v.Log.WithFields(logrus.Fields{
		"plot":     name,
		"timestep": timestep,
		"file":     file,
	})

	if nt := v.derived.NumTimes(); timestep < 0 || timestep >= nt {
		return TimestepRangeError{Index: timestep, Max: nt - 1}
	}
	pn, err := ParsePlotName(name)
	if err != nil {
		return err
	}
	recipe, err := v.Limits.Recipe(pn, v.output.NameList())
	if err != nil {
		return err
	}
	values, err := v.derived.Grid(recipe.Field, timestep)
	if err != nil {
		return err
	}
	// The derived field may already have been converted from the solver's
	// units.
	if scale := recipe.Scale / recipe.Field.scale(); scale != 1 {
		for _, row := range values {
			floats.Scale(scale, row)
		}
	}
	format, err := imageFormat(file)
	if err != nil {
		return err
	}

	cross, err := v.contourPlot(recipe, values, timestep)
	if err != nil {
		return err
	}
	plots := []*plot.Plot{cross}
	height := v.Height
	var heights []float64
	if pn == SpecificRainWaterContent {
		precip, err := v.precipitationPlot(timestep)
		if err != nil {
			return err
		}
		plots = append(plots, precip)
		height += v.PrecipitationHeight
		heights = []float64{float64(v.Height / height)}
	}

	fig, err := newFigure(v.Width, height, format)
	if err != nil {
		return err
	}
	defer fig.release()
	fig.draw(plots, heights)

	path := file
	if path == "" {
		if !show {
			log.Warn("plot is neither saved nor shown")
			return nil
		}
		if path, err = v.tempPath(pn, timestep); err != nil {
			return err
		}
	}
	if err := fig.save(path); err != nil {
		return err
	}
	log.WithField("path", path).Info("saved plot")
	if show {
		if err := open.Run(path); err != nil {
			return fmt.Errorf("isen: showing plot: %v", err)
		}
	}
	return nil
}

// tempPath returns the location of a shown plot that is not saved
// elsewhere. All such plots of a Visualizer share one directory, which is
// created on first use and left in place so the image viewer can read it.
func (v *Visualizer) tempPath(pn PlotName, timestep int) (string, error) {
	if v.tempDir == "" {
		dir, err := ioutil.TempDir("", "isen")
		if err != nil {
			return "", fmt.Errorf("isen: creating temporary directory: %v", err)
		}
		v.tempDir = dir
	}
	return filepath.Join(v.tempDir, fmt.Sprintf("%s-%03d.png", pn, timestep)), nil
}

// Animate plots quantity name at every output step, saving each frame to
// fmt.Sprintf(pattern, step), for example "anim-%03d.png".
func (v *Visualizer) Animate(name, pattern string) error {
	for t := 0; t < v.derived.NumTimes(); t++ {
		if err := v.Plot(name, t, fmt.Sprintf(pattern, t), false); err != nil {
			return err
		}
	}
	return nil
}

// contourPlot creates the cross section plot: isentropes, topography,
// and labeled contours of values.
func (v *Visualizer) contourPlot(recipe PlotRecipe, values [][]float64, timestep int) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	t := v.output.times[timestep]
	p.Title.Text = fmt.Sprintf("Time = %g seconds", t)
	if v.Title != "" {
		p.Title.Text = v.Title + "\n" + p.Title.Text
	}
	p.X.Label.Text = "x [km]"
	p.Y.Label.Text = "Height [km]"

	x, err := v.derived.Grid(XCoordinate, timestep)
	if err != nil {
		return nil, err
	}
	z, err := v.derived.Grid(Height, timestep)
	if err != nil {
		return nil, err
	}
	theta, err := v.derived.Grid(Theta, timestep)
	if err != nil {
		return nil, err
	}

	thetaLevels, err := Range{Min: v.TLim[0], Max: v.TLim[1], Step: v.TCI}.Values()
	if err != nil {
		return nil, err
	}
	for _, level := range thetaLevels {
		if err := addLines(p, Isolines(x, z, theta, level), v.ThetaColor, vg.Points(0.5)); err != nil {
			return nil, err
		}
	}

	topo, err := v.topography(x, timestep)
	if err != nil {
		return nil, err
	}
	p.Add(topo)

	var labels plotter.XYLabels
	for i, level := range recipe.Levels {
		lines := Isolines(x, z, values, level)
		if err := addLines(p, lines, recipe.Colors[i], vg.Points(1)); err != nil {
			return nil, err
		}
		if pt, ok := labelPosition(lines); ok {
			labels.XYs = append(labels.XYs, pt)
			labels.Labels = append(labels.Labels, fmt.Sprintf(recipe.Format, level))
		}
	}
	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}

	p.X.Min, p.X.Max = v.XLim[0], v.XLim[1]
	p.Y.Min, p.Y.Max = v.ZLim[0], v.ZLim[1]+0.1
	p.Y.Tick.Marker = stepTicks{Step: 1, Format: "%.0f"}
	return p, nil
}

// topography returns the filled terrain profile.
func (v *Visualizer) topography(x [][]float64, timestep int) (*plotter.Polygon, error) {
	topo, err := v.derived.Sample(Topography, timestep)
	if err != nil {
		return nil, err
	}
	nx := len(topo.Elements)
	pts := make(plotter.XYs, 0, nx+2)
	for i := 0; i < nx; i++ {
		pts = append(pts, xy{X: x[i][0], Y: topo.Elements[i]})
	}
	pts = append(pts, xy{X: x[nx-1][0], Y: v.ZLim[0]}, xy{X: x[0][0], Y: v.ZLim[0]})
	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, err
	}
	poly.Color = v.TopographyColor
	poly.LineStyle.Color = v.TopographyColor
	return poly, nil
}

// precipitationPlot creates the accumulated precipitation panel, which
// shares the horizontal axis of the contour plot.
func (v *Visualizer) precipitationPlot(timestep int) (*plot.Plot, error) {
	totPrec, err := v.derived.Sample(AccumulatedPrecipitation, timestep)
	if err != nil {
		return nil, err
	}
	x, err := v.derived.Grid(XCoordinate, timestep)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.X.Label.Text = "x [km]"
	p.Y.Label.Text = fmt.Sprintf("Accumulated precipitation [%s]", FieldTotPrec.Units())
	pts := make(plotter.XYs, len(totPrec.Elements))
	for i, val := range totPrec.Elements {
		pts[i].X = x[i][0]
		pts[i].Y = val
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = v.PrecipitationColor
	l.LineStyle.Width = vg.Points(1)
	p.Add(l)
	p.X.Min, p.X.Max = v.XLim[0], v.XLim[1]
	p.Y.Min = 0
	return p, nil
}

func addLines(p *plot.Plot, lines []plotter.XYs, c color.Color, width vg.Length) error {
	for _, line := range lines {
		l, err := plotter.NewLine(line)
		if err != nil {
			return err
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = width
		p.Add(l)
	}
	return nil
}

// labelPosition returns the midpoint of the longest line.
func labelPosition(lines []plotter.XYs) (xy, bool) {
	longest := -1
	for i, l := range lines {
		if longest < 0 || len(l) > len(lines[longest]) {
			longest = i
		}
	}
	if longest < 0 || len(lines[longest]) == 0 {
		return xy{}, false
	}
	l := lines[longest]
	return l[len(l)/2], true
}
