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
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// DataVersion is the version of the archive format written by this package.
// Archives with a different version can not be read.
const DataVersion = "1.0.0"

// ReadOutputFile reads an Output from the archive at path. The archive
// format is chosen by the file extension: ".nc" or ".ncf" for NetCDF and
// ".gob" for gob.
func ReadOutputFile(path string) (*Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("isen: opening output archive: %v", err)
	}
	defer f.Close()
	switch archiveType(path) {
	case "netcdf":
		return ReadNetCDF(f)
	case "gob":
		return Load(f)
	}
	return nil, fmt.Errorf("isen: unsupported archive extension '%s'; "+
		"valid extensions are .nc, .ncf, and .gob", filepath.Ext(path))
}

// WriteOutputFile writes o to a new archive at path, choosing the format
// by the file extension as in ReadOutputFile.
func WriteOutputFile(path string, o *Output) error {
	typ := archiveType(path)
	if typ == "" {
		return fmt.Errorf("isen: unsupported archive extension '%s'; "+
			"valid extensions are .nc, .ncf, and .gob", filepath.Ext(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("isen: creating output archive: %v", err)
	}
	if typ == "netcdf" {
		err = o.WriteNetCDF(f)
	} else {
		err = o.Save(f)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func archiveType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".ncf":
		return "netcdf"
	case ".gob":
		return "gob"
	}
	return ""
}

// archivedOutput is the gob representation of an Output.
type archivedOutput struct {
	DataVersion string
	NameList    NameList
	Times       []float64
	Fields      map[string]archivedArray
}

type archivedArray struct {
	Shape    []int
	Elements []float64
}

// Save writes o to w in gob format
// (format description at https://golang.org/pkg/encoding/gob/).
func (o *Output) Save(w io.Writer) error {
	a := archivedOutput{
		DataVersion: DataVersion,
		NameList:    o.nameList,
		Times:       o.times,
		Fields:      make(map[string]archivedArray, len(o.fields)),
	}
	for f, d := range o.fields {
		a.Fields[f.String()] = archivedArray{Shape: d.Shape, Elements: d.Elements}
	}
	if err := gob.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("isen.Output.Save: %v", err)
	}
	return nil
}

// Load reads an Output that was previously written by Save.
func Load(r io.Reader) (*Output, error) {
	var a archivedOutput
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("isen.Load: %v", err)
	}
	if a.DataVersion != DataVersion {
		return nil, fmt.Errorf("isen.Load: data version %s is incompatible "+
			"with the required version %s", a.DataVersion, DataVersion)
	}
	fields := make(map[Field]*sparse.DenseArray, len(a.Fields))
	for name, d := range a.Fields {
		f, err := ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("isen.Load: %v", err)
		}
		arr := sparse.ZerosDense(d.Shape...)
		if len(arr.Elements) != len(d.Elements) {
			return nil, fmt.Errorf("isen.Load: field %s: dims are %d but array length is %d",
				name, len(arr.Elements), len(d.Elements))
		}
		copy(arr.Elements, d.Elements)
		fields[f] = arr
	}
	return NewOutput(a.NameList, a.Times, fields)
}

// NetCDF dimension names. They differ from the field names because a
// variable named like a dimension would be taken for a coordinate variable.
const (
	timeDim     = "time"
	xDim        = "x"
	zDim        = "layer"
	zStaggerDim = "interface"
	timeVar     = "t"
)

func (f Field) netCDFDims() []string {
	switch fieldInfos[f].layout {
	case staggeredLayers:
		return []string{timeDim, xDim, zStaggerDim}
	case layers:
		return []string{timeDim, xDim, zDim}
	default:
		return []string{timeDim, xDim}
	}
}

// WriteNetCDF writes o to w in NetCDF format. The namelist is stored as
// global attributes.
func (o *Output) WriteNetCDF(w *os.File) error {
	nl := o.nameList
	h := cdf.NewHeader(
		[]string{timeDim, xDim, zDim, zStaggerDim},
		[]int{len(o.times), nl.Nx, nl.Nz, nl.Nz1()})
	h.AddAttribute("", "comment", "Isentropic model output")
	h.AddAttribute("", "data_version", DataVersion)
	for _, v := range nameListVars {
		switch p := v.ptr(&nl).(type) {
		case *string:
			h.AddAttribute("", v.name, *p)
		case *int:
			h.AddAttribute("", v.name, []int32{int32(*p)})
		case *float64:
			h.AddAttribute("", v.name, []float64{*p})
		case *bool:
			var b int32
			if *p {
				b = 1
			}
			h.AddAttribute("", v.name, []int32{b})
		}
	}

	h.AddVariable(timeVar, []string{timeDim}, []float64{0})
	h.AddAttribute(timeVar, "description", "Output time")
	h.AddAttribute(timeVar, "units", "s")
	fields := o.Fields()
	for _, f := range fields {
		h.AddVariable(f.String(), f.netCDFDims(), []float64{0})
		h.AddAttribute(f.String(), "description", f.Description())
		h.AddAttribute(f.String(), "units", f.Units())
	}
	h.Define()

	ff, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("isen: writing netcdf header: %v", err)
	}
	if err := writeNCF(ff, timeVar, o.times); err != nil {
		return fmt.Errorf("isen: writing variable %s to netcdf file: %v", timeVar, err)
	}
	for _, f := range fields {
		if err := writeNCF(ff, f.String(), o.fields[f].Elements); err != nil {
			return fmt.Errorf("isen: writing variable %s to netcdf file: %v", f, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	n := 1
	for _, v := range end {
		n *= v
	}
	if len(data) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data))
	}
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	return err
}

// ReadNetCDF reads an Output that was previously written by WriteNetCDF.
func ReadNetCDF(rw cdf.ReaderWriterAt) (*Output, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("isen.ReadNetCDF: %v", err)
	}
	dataVersion, _ := f.Header.GetAttribute("", "data_version").(string)
	if dataVersion != DataVersion {
		return nil, fmt.Errorf("isen.ReadNetCDF: data version %s is incompatible "+
			"with the required version %s", dataVersion, DataVersion)
	}

	nl := DefaultNameList()
	for _, v := range nameListVars {
		attr := f.Header.GetAttribute("", v.name)
		if attr == nil {
			continue
		}
		if err := setFromAttribute(&nl, v, attr); err != nil {
			return nil, fmt.Errorf("isen.ReadNetCDF: %v", err)
		}
	}

	times, err := readNCF(f, timeVar)
	if err != nil {
		return nil, fmt.Errorf("isen.ReadNetCDF: %v", err)
	}
	fields := make(map[Field]*sparse.DenseArray)
	for _, name := range f.Header.Variables() {
		if name == timeVar {
			continue
		}
		fld, err := ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("isen.ReadNetCDF: %v", err)
		}
		data, err := readNCF(f, name)
		if err != nil {
			return nil, fmt.Errorf("isen.ReadNetCDF: %v", err)
		}
		arr := sparse.ZerosDense(f.Header.Lengths(name)...)
		copy(arr.Elements, data)
		fields[fld] = arr
	}
	return NewOutput(nl, times, fields)
}

func readNCF(f *cdf.File, name string) ([]float64, error) {
	n := 1
	for _, v := range f.Header.Lengths(name) {
		n *= v
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", name, err)
	}
	data, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("variable %s has type %T; it should be float64", name, buf)
	}
	if len(data) != n {
		return nil, fmt.Errorf("variable %s: dims are %d but array length is %d", name, n, len(data))
	}
	return data, nil
}

func setFromAttribute(nl *NameList, v nameListVar, attr interface{}) error {
	switch a := attr.(type) {
	case string:
		return nl.assign(v.name, a)
	case []float64:
		if len(a) == 1 {
			return nl.assign(v.name, a[0])
		}
	case []int32:
		if len(a) == 1 {
			if _, isBool := v.ptr(nl).(*bool); isBool {
				return nl.assign(v.name, a[0] == 1)
			}
			return nl.assign(v.name, int64(a[0]))
		}
	}
	return fmt.Errorf("invalid value %v for namelist attribute %s", attr, v.name)
}
