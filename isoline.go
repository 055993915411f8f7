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
	"math"

	"gonum.org/v1/plot/plotter"
)

// gridEdge identifies the edge between grid points (i, k) and (i+1, k),
// or between (i, k) and (i, k+1) when vertical is true.
type gridEdge struct {
	i, k     int
	vertical bool
}

// xy is the element type of plotter.XYs.
type xy = struct{ X, Y float64 }

type isoSegment struct {
	a, b gridEdge
}

// Isolines returns the lines along which the field v equals level.
// v, x, and y are indexed [i][k] and must all have the same shape; x and y
// give the location of each grid point, so the grid may be curvilinear.
// Grid cells with a NaN corner are skipped.
func Isolines(x, y, v [][]float64, level float64) []plotter.XYs {
	if len(v) < 2 || len(v[0]) < 2 {
		return nil
	}
	var segs []isoSegment
	for i := 0; i < len(v)-1; i++ {
		for k := 0; k < len(v[i])-1; k++ {
			segs = cellSegments(v, i, k, level, segs)
		}
	}
	return joinSegments(segs, func(e gridEdge) xy {
		i2, k2 := e.i+1, e.k
		if e.vertical {
			i2, k2 = e.i, e.k+1
		}
		va, vb := v[e.i][e.k], v[i2][k2]
		f := (level - va) / (vb - va)
		return xy{
			X: x[e.i][e.k] + f*(x[i2][k2]-x[e.i][e.k]),
			Y: y[e.i][e.k] + f*(y[i2][k2]-y[e.i][e.k]),
		}
	})
}

// cellSegments appends the isoline segments crossing the cell whose lower
// left corner is (i, k).
func cellSegments(v [][]float64, i, k int, level float64, segs []isoSegment) []isoSegment {
	// Corners in counterclockwise order starting from (i, k).
	c := [4]float64{v[i][k], v[i+1][k], v[i+1][k+1], v[i][k+1]}
	var above [4]bool
	for j, cv := range c {
		if math.IsNaN(cv) {
			return segs
		}
		above[j] = cv > level
	}
	// Edge j joins corner j and corner j+1.
	edges := [4]gridEdge{
		{i, k, false},
		{i + 1, k, true},
		{i, k + 1, false},
		{i, k, true},
	}
	var crossed []gridEdge
	for j := 0; j < 4; j++ {
		if above[j] != above[(j+1)%4] {
			crossed = append(crossed, edges[j])
		}
	}
	switch len(crossed) {
	case 2:
		segs = append(segs, isoSegment{crossed[0], crossed[1]})
	case 4:
		// Saddle point: use the cell center to decide which pair of
		// opposite corners is connected, and cut off the other two.
		centerAbove := (c[0]+c[1]+c[2]+c[3])/4 > level
		for j := 0; j < 4; j++ {
			if above[j] != centerAbove {
				segs = append(segs, isoSegment{edges[(j+3)%4], edges[j]})
			}
		}
	}
	return segs
}

// joinSegments links segments that share an edge into polylines.
func joinSegments(segs []isoSegment, point func(gridEdge) xy) []plotter.XYs {
	byEdge := make(map[gridEdge][]int)
	for n, s := range segs {
		byEdge[s.a] = append(byEdge[s.a], n)
		byEdge[s.b] = append(byEdge[s.b], n)
	}
	used := make([]bool, len(segs))

	walk := func(start int, from gridEdge) plotter.XYs {
		line := plotter.XYs{point(from)}
		n, e := start, from
		for {
			used[n] = true
			s := segs[n]
			next := s.b
			if s.b == e {
				next = s.a
			}
			line = append(line, point(next))
			e = next
			n = -1
			for _, m := range byEdge[e] {
				if !used[m] {
					n = m
					break
				}
			}
			if n < 0 {
				return line
			}
		}
	}

	var lines []plotter.XYs
	// Open lines start at an edge used by only one segment.
	for n, s := range segs {
		if used[n] {
			continue
		}
		if len(byEdge[s.a]) == 1 {
			lines = append(lines, walk(n, s.a))
		} else if len(byEdge[s.b]) == 1 {
			lines = append(lines, walk(n, s.b))
		}
	}
	// Whatever is left forms closed loops.
	for n, s := range segs {
		if !used[n] {
			lines = append(lines, walk(n, s.a))
		}
	}
	return lines
}
