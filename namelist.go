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
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NameList holds the configuration of a solver run. It is the configuration
// snapshot stored alongside each Output. A NameList is built once (from
// DefaultNameList, a namelist file, or an archive) and afterwards passed by value.
type NameList struct {
	// Output control
	RunName string `toml:"run_name"` // name of the run, used as the default plot title
	Iout    int    `toml:"iout"`     // write every iout-th time step
	Iiniout bool   `toml:"iiniout"`  // write the initial state

	// Domain size
	Xl   int     `toml:"xl"`   // domain length [m]
	Nx   int     `toml:"nx"`   // number of horizontal grid points
	Dx   float64 `toml:"dx"`   // horizontal resolution [m]
	Thl  float64 `toml:"thl"`  // domain depth [K]
	Nz   int     `toml:"nz"`   // number of isentropic levels
	Time float64 `toml:"time"` // simulation time [s]
	Dt   float64 `toml:"dt"`   // time step [s]
	Diff float64 `toml:"diff"` // diffusion coefficient

	// Topography
	Topomx  int `toml:"topomx"`  // mountain height [m]
	Topowd  int `toml:"topowd"`  // mountain half width [m]
	Topotim int `toml:"topotim"` // mountain growth time [s]

	// Initial atmosphere
	U00    float64 `toml:"u00"`    // initial (reference) velocity [m/s]
	Bv00   float64 `toml:"bv00"`   // Brunt-Vaisalla frequency [1/s]
	Th00   float64 `toml:"th00"`   // potential temperature at surface [K]
	Ishear bool    `toml:"ishear"` // wind shear simulation
	KShl   int     `toml:"k_shl"`  // bottom level of wind shear layer
	KSht   int     `toml:"k_sht"`  // top level of wind shear layer
	U00Sh  float64 `toml:"u00_sh"` // initial velocity below shear layer [m/s]

	// Boundaries
	Nab     int     `toml:"nab"`     // number of grid points in absorber
	Diffabs float64 `toml:"diffabs"` // maximum value of absorber
	Irelax  bool    `toml:"irelax"`  // lateral boundaries (false: periodic)
	Nb      int     `toml:"nb"`      // number of boundary points on each side

	// Print options
	Idbg    bool `toml:"idbg"`    // print debugging text
	Iprtcfl bool `toml:"iprtcfl"` // print Courant number
	Itime   bool `toml:"itime"`   // print computation time

	// Physics: Moisture
	Imoist     bool `toml:"imoist"`      // include moisture
	ImoistDiff bool `toml:"imoist_diff"` // apply diffusion to qv, qr, qc
	Imicrophys int  `toml:"imicrophys"`  // 0: none, 1: Kessler, 2: two moment
	Idthdt     bool `toml:"idthdt"`      // couple physics to dynamics
	Iern       bool `toml:"iern"`        // evaporation of rain droplets

	// Options for Kessler scheme
	VtMult       float64 `toml:"vt_mult"`       // multiplication factor for terminal fall velocity
	AutoconvTh   float64 `toml:"autoconv_th"`   // critical cloud water mixing ratio for autoconversion
	AutoconvMult float64 `toml:"autoconv_mult"` // multiplication factor for autoconversion
	SedimentOn   bool    `toml:"sediment_on"`   // include sedimentation of rain
}

// DefaultNameList returns the solver's default configuration.
func DefaultNameList() NameList {
	return NameList{
		RunName: "DownSlope",
		Iout:    360,
		Iiniout: true,

		Xl:   500000,
		Nx:   100,
		Dx:   500000 / 100,
		Thl:  60,
		Nz:   60,
		Time: 6 * 60 * 60,
		Dt:   10,
		Diff: 0.02,

		Topomx:  500,
		Topowd:  50000,
		Topotim: 1800,

		U00:   15,
		Bv00:  0.01,
		Th00:  300,
		KShl:  5,
		KSht:  8,
		U00Sh: 10,

		Diffabs: 1,
		Nb:      2,

		Iprtcfl: true,
		Itime:   true,

		VtMult:       1,
		AutoconvTh:   0.0001,
		AutoconvMult: 1,
		SedimentOn:   true,
	}
}

// Dth is the spacing between isentropic levels [K].
func (nl NameList) Dth() float64 { return nl.Thl / float64(nl.Nz) }

// Nts is the number of solver time steps.
func (nl NameList) Nts() int { return int(math.Round(nl.Time / nl.Dt)) }

// Nout is the number of output steps the solver writes.
func (nl NameList) Nout() int {
	n := nl.Nts() / nl.Iout
	if nl.Iiniout {
		n++
	}
	return n
}

// Nx1 is the number of staggered horizontal grid points.
func (nl NameList) Nx1() int { return nl.Nx + 1 }

// Nz1 is the number of staggered vertical levels.
func (nl NameList) Nz1() int { return nl.Nz + 1 }

// Nxb is the number of horizontal grid points including boundaries.
func (nl NameList) Nxb() int { return nl.Nx + 2*nl.Nb }

// Nxb1 is the number of staggered horizontal grid points including boundaries.
func (nl NameList) Nxb1() int { return nl.Nx1() + 2*nl.Nb }

// Validate checks that the namelist describes a usable grid.
func (nl NameList) Validate() error {
	ints := []int{nl.Nx, nl.Nz, nl.Iout}
	intNames := []string{"nx", "nz", "iout"}
	for i, v := range ints {
		if v < 1 {
			return fmt.Errorf("isen: namelist variable %s=%d but should be >= 1", intNames[i], v)
		}
	}
	floats := []float64{float64(nl.Xl), nl.Thl, nl.Dt}
	floatNames := []string{"xl", "thl", "dt"}
	for i, v := range floats {
		if !(v > 0) {
			return fmt.Errorf("isen: namelist variable %s=%g but should be > 0", floatNames[i], v)
		}
	}
	return nil
}

// nameListVar describes one namelist variable. ptr returns a pointer into
// the given NameList: one of *int, *float64, *bool, or *string.
type nameListVar struct {
	name, section string
	ptr           func(nl *NameList) interface{}
}

var nameListVars = []nameListVar{
	{"run_name", "Output control", func(nl *NameList) interface{} { return &nl.RunName }},
	{"iout", "Output control", func(nl *NameList) interface{} { return &nl.Iout }},
	{"iiniout", "Output control", func(nl *NameList) interface{} { return &nl.Iiniout }},
	{"xl", "Domain size", func(nl *NameList) interface{} { return &nl.Xl }},
	{"nx", "Domain size", func(nl *NameList) interface{} { return &nl.Nx }},
	{"dx", "Domain size", func(nl *NameList) interface{} { return &nl.Dx }},
	{"thl", "Domain size", func(nl *NameList) interface{} { return &nl.Thl }},
	{"nz", "Domain size", func(nl *NameList) interface{} { return &nl.Nz }},
	{"time", "Domain size", func(nl *NameList) interface{} { return &nl.Time }},
	{"dt", "Domain size", func(nl *NameList) interface{} { return &nl.Dt }},
	{"diff", "Domain size", func(nl *NameList) interface{} { return &nl.Diff }},
	{"topomx", "Topography", func(nl *NameList) interface{} { return &nl.Topomx }},
	{"topowd", "Topography", func(nl *NameList) interface{} { return &nl.Topowd }},
	{"topotim", "Topography", func(nl *NameList) interface{} { return &nl.Topotim }},
	{"u00", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.U00 }},
	{"bv00", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.Bv00 }},
	{"th00", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.Th00 }},
	{"ishear", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.Ishear }},
	{"k_shl", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.KShl }},
	{"k_sht", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.KSht }},
	{"u00_sh", "Initial atmosphere", func(nl *NameList) interface{} { return &nl.U00Sh }},
	{"nab", "Boundaries", func(nl *NameList) interface{} { return &nl.Nab }},
	{"diffabs", "Boundaries", func(nl *NameList) interface{} { return &nl.Diffabs }},
	{"irelax", "Boundaries", func(nl *NameList) interface{} { return &nl.Irelax }},
	{"nb", "Boundaries", func(nl *NameList) interface{} { return &nl.Nb }},
	{"idbg", "Print options", func(nl *NameList) interface{} { return &nl.Idbg }},
	{"iprtcfl", "Print options", func(nl *NameList) interface{} { return &nl.Iprtcfl }},
	{"itime", "Print options", func(nl *NameList) interface{} { return &nl.Itime }},
	{"imoist", "Physics: Moisture", func(nl *NameList) interface{} { return &nl.Imoist }},
	{"imoist_diff", "Physics: Moisture", func(nl *NameList) interface{} { return &nl.ImoistDiff }},
	{"imicrophys", "Physics: Moisture", func(nl *NameList) interface{} { return &nl.Imicrophys }},
	{"idthdt", "Physics: Moisture", func(nl *NameList) interface{} { return &nl.Idthdt }},
	{"iern", "Physics: Moisture", func(nl *NameList) interface{} { return &nl.Iern }},
	{"vt_mult", "Options for Kessler scheme", func(nl *NameList) interface{} { return &nl.VtMult }},
	{"autoconv_th", "Options for Kessler scheme", func(nl *NameList) interface{} { return &nl.AutoconvTh }},
	{"autoconv_mult", "Options for Kessler scheme", func(nl *NameList) interface{} { return &nl.AutoconvMult }},
	{"sediment_on", "Options for Kessler scheme", func(nl *NameList) interface{} { return &nl.SedimentOn }},
}

// derivedNameListVars are computed from the other variables and are
// therefore ignored when they appear in a namelist file.
var derivedNameListVars = map[string]bool{
	"dth": true, "nts": true, "nout": true, "nx1": true, "nz1": true, "nxb": true, "nxb1": true,
	"g": true, "cp": true, "r": true, "r_v": true, "rdcp": true, "cpdr": true, "pref": true,
	"z00": true, "prs00": true, "exn00": true,
}

func lookupNameListVar(name string) (nameListVar, bool) {
	for _, v := range nameListVars {
		if v.name == name {
			return v, true
		}
	}
	return nameListVar{}, false
}

// SetByName sets the namelist variable with the given name from its
// string representation.
func (nl *NameList) SetByName(name, value string) error {
	if name == "" {
		return nil
	}
	v, ok := lookupNameListVar(name)
	if !ok {
		return fmt.Errorf("isen: variable '%s' is not part of the namelist", name)
	}
	value = strings.TrimSpace(value)
	switch p := v.ptr(nl).(type) {
	case *string:
		*p = strings.Trim(value, `'"`)
	case *int:
		i, err := strconv.Atoi(value)
		if err != nil {
			f, ferr := strconv.ParseFloat(value, 64)
			if ferr != nil || f != math.Trunc(f) {
				return fmt.Errorf("isen: namelist variable '%s' needs an integer value but got '%s'", name, value)
			}
			i = int(f)
		}
		*p = i
	case *float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("isen: namelist variable '%s' needs a floating point value but got '%s'", name, value)
		}
		*p = f
	case *bool:
		b, err := parseNameListBool(value)
		if err != nil {
			return fmt.Errorf("isen: namelist variable '%s': %v", name, err)
		}
		*p = b
	}
	return nil
}

func parseNameListBool(s string) (bool, error) {
	switch s {
	case "1", "True", "true":
		return true, nil
	case "0", "False", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value '%s'", s)
}

// String returns a sectioned listing of all namelist variables, including
// the computed ones.
func (nl NameList) String() string {
	b := new(bytes.Buffer)
	section := ""
	for _, v := range nameListVars {
		if v.section != section {
			section = v.section
			header(b, section)
		}
		printNameListVar(b, v.name, v.ptr(&nl))
	}
	header(b, "Computed input parameters")
	printNameListVar(b, "dth", nl.Dth())
	printNameListVar(b, "nts", nl.Nts())
	printNameListVar(b, "nout", nl.Nout())
	printNameListVar(b, "nx1", nl.Nx1())
	printNameListVar(b, "nz1", nl.Nz1())
	printNameListVar(b, "nxb", nl.Nxb())
	printNameListVar(b, "nxb1", nl.Nxb1())
	return b.String()
}

func header(b *bytes.Buffer, s string) {
	const width = 48
	n := (width - len(s) - 2) / 2
	if n < 1 {
		n = 1
	}
	fmt.Fprintf(b, "%s %s %s\n", strings.Repeat("-", n), s, strings.Repeat("-", n))
}

func printNameListVar(b *bytes.Buffer, name string, val interface{}) {
	switch v := val.(type) {
	case *string:
		fmt.Fprintf(b, " %-13s = %s\n", name, *v)
	case *int:
		fmt.Fprintf(b, " %-13s = %d\n", name, *v)
	case *float64:
		fmt.Fprintf(b, " %-13s = %.4f\n", name, *v)
	case *bool:
		fmt.Fprintf(b, " %-13s = %t\n", name, *v)
	case int:
		fmt.Fprintf(b, " %-13s = %d\n", name, v)
	case float64:
		fmt.Fprintf(b, " %-13s = %.4f\n", name, v)
	}
}
