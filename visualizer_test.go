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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestVisualizer(t *testing.T, nx, nz, nt int, moist bool) *Visualizer {
	o, err := newTestOutput(nx, nz, nt, moist)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewVisualizer(o)
	if err != nil {
		t.Fatal(err)
	}
	v.Log = logrus.New()
	return v
}

func TestNewVisualizer(t *testing.T) {
	v := newTestVisualizer(t, 20, 10, 2, false)
	nl := v.output.NameList()
	if want := [2]float64{0, 19}; v.XLim != want {
		t.Errorf("XLim: want %v, have %v", want, v.XLim)
	}
	if want := [2]float64{0, 10}; v.ZLim != want {
		t.Errorf("ZLim: want %v, have %v", want, v.ZLim)
	}
	if want := [2]float64{nl.Th00 + nl.Dth()/2, 400}; v.TLim != want {
		t.Errorf("TLim: want %v, have %v", want, v.TLim)
	}
	if v.Title != "Test" || v.TCI != 2 || v.VCI != 2 || v.VLim != [2]float64{0, 60} {
		t.Errorf("wrong defaults: %+v", v)
	}
}

// TestPlotErrors checks the failures of a run with a 5×5 grid, no
// moisture, and 10 output steps.
func TestPlotErrors(t *testing.T) {
	v := newTestVisualizer(t, 5, 5, 10, false)
	dir, err := ioutil.TempDir("", "isen")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	before, err := NewDerivedFields(v.output)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []struct {
		name     string
		timestep int
		file     string
		want     error
	}{
		{"specific_humidity", 0, "", MissingFieldError{Field: "vapor"}},
		{"specific_rain_water_content", 3, "", MissingFieldError{Field: "rain"}},
		{"horizontal_velocity", 10, "", TimestepRangeError{Index: 10, Max: 9}},
		{"horizontal_velocity", -1, "", TimestepRangeError{Index: -1, Max: 9}},
		{"not_a_field", 0, "", UnknownPlotNameError{Name: "not_a_field"}},
		{"not_a_field", 99, "", TimestepRangeError{Index: 99, Max: 9}},
	} {
		err := v.Plot(c.name, c.timestep, c.file, false)
		if !reflect.DeepEqual(err, c.want) {
			t.Errorf("%s at %d: want %v, have %v", c.name, c.timestep, c.want, err)
		}
	}
	if err := v.Plot("horizontal_velocity", 0, filepath.Join(dir, "v.xyz"), false); err == nil ||
		!strings.Contains(err.Error(), "xyz") {
		t.Errorf("want an unsupported format error, have %v", err)
	}

	if !reflect.DeepEqual(before, v.derived) {
		t.Error("failed plots changed the derived fields")
	}

	path := filepath.Join(dir, "last.png")
	if err := v.Plot("horizontal_velocity", 9, path, false); err != nil {
		t.Fatal(err)
	}
	checkImage(t, path)
}

func checkImage(t *testing.T, path string) {
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestPlot(t *testing.T) {
	v := newTestVisualizer(t, 30, 12, 3, true)
	v.ZLim = [2]float64{0, 12}
	dir, err := ioutil.TempDir("", "isen")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	for _, c := range []struct {
		name, file string
	}{
		{"horizontal_velocity", "velocity.png"},
		{"Horizontal_Velocity", "velocity.svg"},
		{"specific_humidity", "qv.pdf"},
		{"specific_cloud_liquid_water_content", "qc.jpg"},
		{"specific_rain_water_content", "qr.png"},
		{"specific_rain_water_content", "qr.eps"},
	} {
		t.Run(c.file, func(t *testing.T) {
			path := filepath.Join(dir, c.file)
			if err := v.Plot(c.name, 2, path, false); err != nil {
				t.Fatal(err)
			}
			checkImage(t, path)
		})
	}
}

func TestAnimate(t *testing.T) {
	v := newTestVisualizer(t, 10, 5, 4, false)
	dir, err := ioutil.TempDir("", "isen")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if err := v.Animate("horizontal_velocity", filepath.Join(dir, "anim-%03d.png")); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"anim-000.png", "anim-001.png", "anim-002.png", "anim-003.png"} {
		checkImage(t, filepath.Join(dir, f))
	}
	if _, err := os.Stat(filepath.Join(dir, "anim-004.png")); !os.IsNotExist(err) {
		t.Errorf("want only 4 frames, have %v", err)
	}
}

func TestTempPath(t *testing.T) {
	v := newTestVisualizer(t, 5, 5, 2, false)
	p0, err := v.tempPath(HorizontalVelocity, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(filepath.Dir(p0))
	p1, err := v.tempPath(HorizontalVelocity, 1)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(p0) != filepath.Dir(p1) {
		t.Errorf("shown plots are in different directories: %s and %s", p0, p1)
	}
	if want := "horizontal_velocity-001.png"; filepath.Base(p1) != want {
		t.Errorf("want %s, have %s", want, filepath.Base(p1))
	}
	if fi, err := os.Stat(filepath.Dir(p0)); err != nil || !fi.IsDir() {
		t.Errorf("temporary directory: %v", err)
	}
}
