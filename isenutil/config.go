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

package isenutil

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/isen"
	"github.com/spatialmodel/isen/internal/hash"
	"github.com/spf13/cast"
)

// loadOutput reads the solver output archive at path.
func loadOutput(path string) (*isen.Output, error) {
	path = os.ExpandEnv(path)
	if path == "" {
		return nil, fmt.Errorf("isen: please specify the solver output archive using --output")
	}
	o, err := isen.ReadOutputFile(path)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"file":  path,
		"steps": o.NumTimes(),
	}).Debug("read output archive")
	return o, nil
}

// visualizer creates a Visualizer for the archive specified in cfg
// and applies the plot settings in cfg to it.
func visualizer(cfg *viper.Viper) (*isen.Visualizer, error) {
	o, err := loadOutput(cfg.GetString("output"))
	if err != nil {
		return nil, err
	}
	v, err := isen.NewVisualizer(o)
	if err != nil {
		return nil, err
	}
	v.Log = logrus.StandardLogger()

	if title := cfg.GetString("Plot.Title"); title != "" {
		v.Title = title
	}
	for _, lim := range []struct {
		name string
		dst  *[2]float64
	}{
		{name: "Plot.XLim", dst: &v.XLim},
		{name: "Plot.ZLim", dst: &v.ZLim},
		{name: "Plot.TLim", dst: &v.TLim},
		{name: "Plot.VLim", dst: &v.VLim},
	} {
		if err := limits(cfg, lim.name, lim.dst); err != nil {
			return nil, err
		}
	}
	if v.TCI, err = interval(cfg, "Plot.TCI"); err != nil {
		return nil, err
	}
	if v.VCI, err = interval(cfg, "Plot.VCI"); err != nil {
		return nil, err
	}
	return v, nil
}

// interval returns the positive, finite contour interval in configuration
// variable name.
func interval(cfg *viper.Viper, name string) (float64, error) {
	v, err := cast.ToFloat64E(cfg.Get(name))
	if err != nil {
		return 0, fmt.Errorf("isen: %s: %v", name, err)
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("isen: %s=%g but should be a positive, finite number", name, v)
	}
	return v, nil
}

// limits sets dst from the lower and upper limits in configuration
// variable name. dst is left unchanged if the variable is empty.
func limits(cfg *viper.Viper, name string, dst *[2]float64) error {
	s := cfg.GetStringSlice(name)
	switch len(s) {
	case 0:
		return nil
	case 2:
	default:
		return fmt.Errorf("isen: %s must have 2 values (lower and upper limit) but has %d", name, len(s))
	}
	var lim [2]float64
	for i, v := range s {
		var err error
		if lim[i], err = cast.ToFloat64E(v); err != nil {
			return fmt.Errorf("isen: %s: %v", name, err)
		}
		if math.IsInf(lim[i], 0) || math.IsNaN(lim[i]) {
			return fmt.Errorf("isen: %s limit %g must be finite", name, lim[i])
		}
	}
	if !(lim[0] < lim[1]) {
		return fmt.Errorf("isen: %s lower limit %g must be less than upper limit %g", name, lim[0], lim[1])
	}
	*dst = lim
	return nil
}

// describe summarizes the contents of o.
func describe(o *isen.Output) string {
	b := new(bytes.Buffer)
	b.WriteString(o.NameList().String())
	times := o.Times()
	fmt.Fprintf(b, "\n%d output steps from t = %g s to t = %g s\n", len(times), times[0], times[len(times)-1])
	fmt.Fprintf(b, "Fingerprint: %s\n\n", hash.Output(o))
	w := tabwriter.NewWriter(b, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Field\tUnits\tShape\tDescription")
	for _, f := range o.Fields() {
		a, _ := o.Field(f)
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", f, f.Units(), a.Shape, f.Description())
	}
	w.Flush()
	return b.String()
}
