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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func outputsEqual(t *testing.T, have, want *Output) {
	if have.NameList() != want.NameList() {
		t.Errorf("namelist mismatch: %v", pretty.Diff(have.NameList(), want.NameList()))
	}
	if !reflect.DeepEqual(have.Times(), want.Times()) {
		t.Errorf("times: want %v, have %v", want.Times(), have.Times())
	}
	if !reflect.DeepEqual(have.Fields(), want.Fields()) {
		t.Fatalf("fields: want %v, have %v", want.Fields(), have.Fields())
	}
	for _, f := range want.Fields() {
		h, _ := have.Field(f)
		w, _ := want.Field(f)
		if !reflect.DeepEqual(h.Shape, w.Shape) {
			t.Errorf("%v: want shape %v, have %v", f, w.Shape, h.Shape)
		}
		if !reflect.DeepEqual(h.Elements, w.Elements) {
			t.Errorf("%v: values differ", f)
		}
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "isen")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	for _, moist := range []bool{false, true} {
		want, err := newTestOutput(6, 4, 3, moist)
		if err != nil {
			t.Fatal(err)
		}
		for _, ext := range []string{".nc", ".ncf", ".gob"} {
			path := filepath.Join(dir, "output"+ext)
			if err := WriteOutputFile(path, want); err != nil {
				t.Fatalf("%s: %v", ext, err)
			}
			have, err := ReadOutputFile(path)
			if err != nil {
				t.Fatalf("%s: %v", ext, err)
			}
			outputsEqual(t, have, want)
		}
	}
}

func TestArchiveExtension(t *testing.T) {
	o, err := newTestOutput(3, 3, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	err = WriteOutputFile("output.xml", o)
	if err == nil || !strings.Contains(err.Error(), ".xml") {
		t.Errorf("want an unsupported extension error, have %v", err)
	}
	_, err = ReadOutputFile("output.txt")
	if err == nil {
		t.Error("want an error for a missing file")
	}
}

func TestSaveLoad(t *testing.T) {
	o, err := newTestOutput(3, 3, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := o.Save(buf); err != nil {
		t.Fatal(err)
	}
	have, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	outputsEqual(t, have, o)
}
