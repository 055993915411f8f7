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

import "fmt"

// ConfigurationInconsistencyError is returned when the shape of a raw output
// array disagrees with the dimensions declared in the NameList.
type ConfigurationInconsistencyError struct {
	Field string
	Want  []int
	Got   []int
}

func (err ConfigurationInconsistencyError) Error() string {
	return fmt.Sprintf("isen: field `%s` has shape %v but the namelist implies %v",
		err.Field, err.Got, err.Want)
}

// MissingFieldError is returned when a field is requested that is not
// present in the output, typically a moisture field when the moisture
// scheme was disabled.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("isen: field `%s` is not available in this output", err.Field)
}

// UnknownPlotNameError is returned when a plot is requested by a name that
// does not correspond to any PlotName.
type UnknownPlotNameError struct {
	Name string
}

func (err UnknownPlotNameError) Error() string {
	return fmt.Sprintf("isen: invalid plot name `%s`; valid names are %v", err.Name, PlotNames())
}

// TimestepRangeError is returned when a requested output time index is
// outside of [0, Max].
type TimestepRangeError struct {
	Index int
	Max   int // the last valid index
}

func (err TimestepRangeError) Error() string {
	return fmt.Sprintf("isen: timestep %d is out of range [0, %d]", err.Index, err.Max)
}
