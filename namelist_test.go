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
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestDefaultNameList(t *testing.T) {
	nl := DefaultNameList()
	if err := nl.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		name       string
		have, want float64
	}{
		{"dx", nl.Dx, 5000},
		{"dth", nl.Dth(), 1},
		{"nts", float64(nl.Nts()), 2160},
		{"nout", float64(nl.Nout()), 7},
		{"nx1", float64(nl.Nx1()), 101},
		{"nz1", float64(nl.Nz1()), 61},
		{"nxb", float64(nl.Nxb()), 104},
		{"nxb1", float64(nl.Nxb1()), 105},
	} {
		if c.have != c.want {
			t.Errorf("%s: want %g, have %g", c.name, c.want, c.have)
		}
	}
}

func TestNameListValidate(t *testing.T) {
	for _, name := range []string{"nx", "nz", "xl", "thl"} {
		nl := DefaultNameList()
		if err := nl.SetByName(name, "0"); err != nil {
			t.Fatal(err)
		}
		err := nl.Validate()
		if err == nil || !strings.Contains(err.Error(), name) {
			t.Errorf("%s=0: want an error naming the variable, have %v", name, err)
		}
	}
}

func TestSetByName(t *testing.T) {
	nl := DefaultNameList()
	for name, val := range map[string]string{
		"run_name": "'Mountain'",
		"nx":       "50",
		"u00":      "12.5",
		"imoist":   "True",
		"iiniout":  "0",
		"topomx":   "750.0",
	} {
		if err := nl.SetByName(name, val); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	want := DefaultNameList()
	want.RunName = "Mountain"
	want.Nx = 50
	want.U00 = 12.5
	want.Imoist = true
	want.Iiniout = false
	want.Topomx = 750
	if nl != want {
		t.Errorf("namelist mismatch: %v", pretty.Diff(nl, want))
	}

	t.Run("unknown", func(t *testing.T) {
		err := nl.SetByName("not_a_variable", "1")
		if err == nil || !strings.Contains(err.Error(), "not_a_variable") {
			t.Errorf("want an error naming the variable, have %v", err)
		}
	})
	t.Run("bad values", func(t *testing.T) {
		for name, val := range map[string]string{
			"nx":     "1.5",
			"u00":    "fast",
			"imoist": "yes",
		} {
			if err := nl.SetByName(name, val); err == nil {
				t.Errorf("%s=%s: want an error", name, val)
			}
		}
	})
}

func TestNameListString(t *testing.T) {
	s := DefaultNameList().String()
	for _, want := range []string{
		"Output control", "Domain size", "Topography", "Initial atmosphere",
		"Boundaries", "Print options", "Physics: Moisture",
		"Options for Kessler scheme", "Computed input parameters",
		" run_name      = DownSlope\n",
		" nx            = 100\n",
		" u00           = 15.0000\n",
		" imoist        = false\n",
		" nout          = 7\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("namelist listing doesn't contain %q:\n%s", want, s)
		}
	}
}

const matlabNameList = `% Test namelist
run_name = 'Test';   % name of the run
iout = 10;
iiniout = 1;

% Domain size
xl = 100000;
nx = 20;
dx = xl/nx;
thl = 60.;
nz = 30;
time = 6*60*60;
dt = 10;
nts = 5;   % computed, so it is ignored
imoist = true;
u00 = 12.5;
`

const pythonNameList = `# Test namelist
run_name = "Test"
iout = 10
iiniout = True
xl = 100000
nx = 20
dx = xl / nx
thl = 60.
nz = 30
time = 6 * 60 * 60
dt = 10
imoist = 1 # moisture
u00 = 12.5
`

const tomlNameList = `run_name = "Test"
iout = 10
iiniout = true
xl = 100000
nx = 20
dx = 5000
thl = 60.0
nz = 30
time = 21600
dt = 10
imoist = true
u00 = 12.5
`

func testNameList() NameList {
	nl := DefaultNameList()
	nl.RunName = "Test"
	nl.Iout = 10
	nl.Xl = 100000
	nl.Nx = 20
	nl.Dx = 5000
	nl.Nz = 30
	nl.Imoist = true
	nl.U00 = 12.5
	return nl
}

func TestReadNameList(t *testing.T) {
	want := testNameList()
	for format, text := range map[string]string{
		"m":    matlabNameList,
		".py":  pythonNameList,
		"TOML": tomlNameList,
	} {
		t.Run(format, func(t *testing.T) {
			nl, err := ReadNameList(strings.NewReader(text), format)
			if err != nil {
				t.Fatal(err)
			}
			if nl != want {
				t.Errorf("namelist mismatch: %v", pretty.Diff(nl, want))
			}
		})
	}
}

func TestReadNameListErrors(t *testing.T) {
	for _, c := range []struct {
		name, format, text, want string
	}{
		{"unknown variable", "m", "foo = 1;", "unknown identifier 'foo'"},
		{"undeclared", "m", "dx = nope*2;", "'nope' was not declared"},
		{"missing value", "m", "nx = ;", "expected value after '='"},
		{"missing variable", "m", " = 3;", "expected variable before '='"},
		{"bad string", "m", `run_name = "Test";`, "invalid string"},
		{"bad bool", "py", "imoist = maybe", "invalid boolean value 'maybe'"},
		{"line number", "m", "nx = 10;\n\nnz = abc;", "line 3"},
		{"toml unknown", "toml", "foo = 1", "'foo' is not part of the namelist"},
		{"toml type", "toml", "nx = 1.5", "nx"},
		{"format", "xml", "", "can't deduce namelist format"},
		{"invalid", "m", "nx = 0;", "nx=0"},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := ReadNameList(strings.NewReader(c.text), c.format)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("want error containing %q, have %v", c.want, err)
			}
		})
	}
}

func TestReadNameListQuotedSeparators(t *testing.T) {
	for _, c := range []struct {
		format, text, want string
	}{
		{"m", "run_name = 'a;b'; % name", "a;b"},
		{"m", "run_name = '50% moist';", "50% moist"},
		{"py", `run_name = "x # y"  # comment`, "x # y"},
		{"py", "run_name = 'a;b' ; nx = 3", "a;b"},
		{"py", `run_name = "it's"`, "it's"},
	} {
		nl, err := ReadNameList(strings.NewReader(c.text), c.format)
		if err != nil {
			t.Errorf("%s: %v", c.text, err)
			continue
		}
		if nl.RunName != c.want {
			t.Errorf("%s: want run name %q, have %q", c.text, c.want, nl.RunName)
		}
	}
}

func TestWriteNameList(t *testing.T) {
	want := testNameList()
	want.Diff = 0.025
	buf := new(bytes.Buffer)
	if err := WriteNameList(buf, want); err != nil {
		t.Fatal(err)
	}
	have, err := ReadNameList(buf, "toml")
	if err != nil {
		t.Fatal(err)
	}
	if have != want {
		t.Errorf("namelist mismatch: %v", pretty.Diff(have, want))
	}
}
