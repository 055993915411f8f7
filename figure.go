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
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// imageFormats are the file extensions that figures can be saved as.
var imageFormats = map[string]bool{
	"eps": true, "jpg": true, "jpeg": true, "pdf": true,
	"png": true, "svg": true, "tif": true, "tiff": true,
}

// imageFormat returns the image format implied by the extension of file,
// or png if file is empty.
func imageFormat(file string) (string, error) {
	if file == "" {
		return "png", nil
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if !imageFormats[format] {
		return "", fmt.Errorf("isen: unsupported image format '%s' for file %s", format, file)
	}
	return format, nil
}

// figure is the rendering context of a single Plot call. It owns its
// canvas, so concurrent figures don't interfere with each other.
type figure struct {
	c  vg.CanvasWriterTo
	dc draw.Canvas
}

func newFigure(width, height vg.Length, format string) (*figure, error) {
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("isen: creating figure: %v", err)
	}
	return &figure{c: c, dc: draw.New(c)}, nil
}

// draw draws the given plots stacked from top to bottom. heights gives
// the fraction of the figure height used by each plot.
func (f *figure) draw(plots []*plot.Plot, heights []float64) {
	c := f.dc
	for i, p := range plots {
		if i == len(plots)-1 {
			p.Draw(c)
			break
		}
		var top draw.Canvas
		top, c = splitVertical(c, vg.Length(heights[i])*(f.dc.Max.Y-f.dc.Min.Y))
		p.Draw(top)
	}
}

// splitVertical splits c at distance y below its top.
func splitVertical(c draw.Canvas, y vg.Length) (top, bottom draw.Canvas) {
	return draw.Crop(c, 0, 0, c.Max.Y-c.Min.Y-y, 0), draw.Crop(c, 0, 0, 0, -y)
}

// save writes the figure to a new file at path.
func (f *figure) save(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("isen: saving figure: %v", err)
	}
	if _, err := f.c.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("isen: saving figure: %v", err)
	}
	return w.Close()
}

// release discards the canvas. The figure can't be used afterwards.
func (f *figure) release() {
	f.c = nil
	f.dc = draw.Canvas{}
}

// stepTicks places major ticks at every multiple of Step.
type stepTicks struct {
	Step   float64
	Format string
}

func (s stepTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for n := int(min / s.Step); float64(n)*s.Step <= max; n++ {
		v := float64(n) * s.Step
		if v < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(s.Format, v)})
	}
	return ticks
}
