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

// Package isen reads the output of the isentropic atmospheric flow solver,
// computes the fields needed to visualize it, and plots vertical cross
// sections of the flow over topography.
//
// A typical use is:
//
//	o, err := isen.ReadOutputFile("DownSlope.nc")
//	...
//	v, err := isen.NewVisualizer(o)
//	...
//	err = v.Plot("horizontal_velocity", 6, "velocity.png", false)
package isen

// Version gives the version number.
const Version = "1.0.0"
