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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Knetic/govaluate"
)

// ReadNameListFile reads a namelist from the file at path. The format is
// chosen by the file extension: ".toml" for TOML files, or ".m" and ".py"
// for the solver's MATLAB and Python style namelists.
func ReadNameListFile(path string) (NameList, error) {
	f, err := os.Open(path)
	if err != nil {
		return NameList{}, fmt.Errorf("isen: opening namelist file: %v", err)
	}
	defer f.Close()
	nl, err := ReadNameList(f, filepath.Ext(path))
	if err != nil {
		return NameList{}, fmt.Errorf("%v (file %s)", err, path)
	}
	return nl, nil
}

// ReadNameList reads a namelist in the given format ("toml", "m" or "py",
// with or without a leading dot) from r. Variables that are not present
// keep their default values.
func ReadNameList(r io.Reader, format string) (NameList, error) {
	nl := DefaultNameList()
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		err = nl.readTOML(r)
	case "m":
		err = nl.readSolverSyntax(r, matlabSyntax)
	case "py":
		err = nl.readSolverSyntax(r, pythonSyntax)
	default:
		return nl, fmt.Errorf("isen: can't deduce namelist format from '%s'; valid formats are toml, m and py", format)
	}
	if err != nil {
		return nl, err
	}
	if err := nl.Validate(); err != nil {
		return nl, err
	}
	return nl, nil
}

// WriteNameList writes nl to w in TOML format.
func WriteNameList(w io.Writer, nl NameList) error {
	if err := toml.NewEncoder(w).Encode(nl); err != nil {
		return fmt.Errorf("isen: writing namelist: %v", err)
	}
	return nil
}

func (nl *NameList) readTOML(r io.Reader) error {
	vals := make(map[string]interface{})
	if _, err := toml.DecodeReader(r, &vals); err != nil {
		return fmt.Errorf("isen: decoding TOML namelist: %v", err)
	}
	for name, val := range vals {
		if derivedNameListVars[name] {
			continue
		}
		if err := nl.assign(name, val); err != nil {
			return err
		}
	}
	return nil
}

// assign sets the named variable from a decoded value, which may be an
// int64, float64, bool, or string.
func (nl *NameList) assign(name string, val interface{}) error {
	v, ok := lookupNameListVar(name)
	if !ok {
		return fmt.Errorf("isen: variable '%s' is not part of the namelist", name)
	}
	mismatch := fmt.Errorf("isen: namelist variable '%s' can't be set to %v (%T)", name, val, val)
	switch p := v.ptr(nl).(type) {
	case *string:
		s, ok := val.(string)
		if !ok {
			return mismatch
		}
		*p = s
	case *int:
		switch x := val.(type) {
		case int64:
			*p = int(x)
		case float64:
			if x != math.Trunc(x) {
				return mismatch
			}
			*p = int(x)
		default:
			return mismatch
		}
	case *float64:
		switch x := val.(type) {
		case int64:
			*p = float64(x)
		case float64:
			*p = x
		default:
			return mismatch
		}
	case *bool:
		switch x := val.(type) {
		case bool:
			*p = x
		case int64:
			if x != 0 && x != 1 {
				return mismatch
			}
			*p = x == 1
		default:
			return mismatch
		}
	}
	return nil
}

// solverSyntax describes one flavor of the solver's namelist files.
type solverSyntax struct {
	lineEnd string         // characters that end the assignment
	quotes  string         // characters that delimit strings
	str     *regexp.Regexp // extracts the contents of a quoted string
}

var (
	matlabSyntax = solverSyntax{lineEnd: "%;", quotes: "'", str: regexp.MustCompile(`'(.*)'`)}
	pythonSyntax = solverSyntax{lineEnd: "#;", quotes: `'"`, str: regexp.MustCompile(`['"](.*)['"]`)}

	identifier = regexp.MustCompile(`^[_[:alpha:]]\w*$`)
)

// statement returns line up to the first terminator or comment character
// that is not inside a quoted string.
func (syn solverSyntax) statement(line string) string {
	var quote rune
	for i, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case strings.ContainsRune(syn.quotes, c):
			quote = c
		case strings.ContainsRune(syn.lineEnd, c):
			return line[:i]
		}
	}
	return line
}

// readSolverSyntax parses "name = value" assignments, one per line.
// Numeric right hand sides may be arithmetic expressions referring to
// variables assigned earlier in the file.
func (nl *NameList) readSolverSyntax(r io.Reader, syn solverSyntax) error {
	parsed := make(map[string]interface{})
	scanner := bufio.NewScanner(r)
	row := 0
	for scanner.Scan() {
		row++
		line := scanner.Text()
		line = syn.statement(line)
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		lineErr := func(format string, a ...interface{}) error {
			return fmt.Errorf("isen: namelist line %d: %s", row, fmt.Sprintf(format, a...))
		}
		name := strings.TrimSpace(line[:eq])
		rhs := strings.TrimSpace(line[eq+1:])
		if name == "" {
			return lineErr("expected variable before '='")
		}
		if !identifier.MatchString(name) {
			return lineErr("invalid token '%s' expected '='", name)
		}
		if derivedNameListVars[name] {
			continue
		}
		v, ok := lookupNameListVar(name)
		if !ok {
			return lineErr("unknown identifier '%s'", name)
		}
		if rhs == "" {
			return lineErr("expected value after '='")
		}
		var val interface{}
		switch v.ptr(nl).(type) {
		case *string:
			m := syn.str.FindStringSubmatch(rhs)
			if m == nil {
				return lineErr("invalid string '%s'", rhs)
			}
			val = m[1]
		case *bool:
			b, err := parseNameListBool(rhs)
			if err != nil {
				return lineErr("%v", err)
			}
			val = b
			if b {
				parsed[name] = 1.0
			} else {
				parsed[name] = 0.0
			}
		case *int, *float64:
			f, err := evalNumber(rhs, parsed)
			if err != nil {
				return lineErr("%v", err)
			}
			if _, isInt := v.ptr(nl).(*int); isInt {
				f = math.Trunc(f)
			}
			val = f
			parsed[name] = f
		}
		if err := nl.assign(name, val); err != nil {
			return lineErr("%v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("isen: reading namelist: %v", err)
	}
	return nil
}

// evalNumber evaluates a numeric literal or an arithmetic expression.
func evalNumber(s string, vars map[string]interface{}) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return math.NaN(), fmt.Errorf("invalid expression '%s': %v", s, err)
	}
	for _, name := range expr.Vars() {
		if _, ok := vars[name]; !ok {
			return math.NaN(), fmt.Errorf("'%s' was not declared in this scope", name)
		}
	}
	result, err := expr.Evaluate(vars)
	if err != nil {
		return math.NaN(), fmt.Errorf("evaluating '%s': %v", s, err)
	}
	f, ok := result.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("expression '%s' is not numeric", s)
	}
	return f, nil
}
