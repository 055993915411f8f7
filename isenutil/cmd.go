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
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/isen"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Isen.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of the log messages
              that are printed: one of debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "output",
			usage: `
              output specifies the location of the solver output archive.
              The format is determined by the file extension: .nc or .ncf
              for NetCDF and .gob for gob.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags(), infoCmd.Flags(), convertCmd.Flags()},
		},
		{
			name: "plot",
			usage: `
              plot specifies the quantity to plot. Options are
              horizontal_velocity, specific_humidity,
              specific_cloud_liquid_water_content, and
              specific_rain_water_content. Case is ignored.`,
			shorthand:  "p",
			defaultVal: "horizontal_velocity",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "timestep",
			usage: `
              timestep specifies the index of the output step to plot.`,
			shorthand:  "t",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "file",
			usage: `
              file specifies where to save the plot. The image format is
              determined by the file extension: png, jpg, pdf, svg, eps,
              or tif.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "show",
			usage: `
              show specifies whether to open the plot in the system image
              viewer.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "pattern",
			usage: `
              pattern specifies the file names of the animation frames.
              It must contain one integer verb, which is replaced by the
              output step index.`,
			defaultVal: "anim-%03d.png",
			flagsets:   []*pflag.FlagSet{animCmd.Flags()},
		},
		{
			name: "dest",
			usage: `
              dest specifies the location of the converted archive. The
              format is determined by the file extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "namelist",
			usage: `
              namelist specifies the location of a namelist file in TOML
              (.toml) or solver (.m or .py) format. If empty, the default
              namelist is used.`,
			shorthand:  "n",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{namelistCmd.Flags()},
		},
		{
			name: "format",
			usage: `
              format specifies how the namelist is printed: "text" for a
              listing including the computed parameters or "toml".`,
			defaultVal: "text",
			flagsets:   []*pflag.FlagSet{namelistCmd.Flags()},
		},
		{
			name: "Plot.Title",
			usage: `
              Plot.Title specifies the plot title. If empty, the run name
              is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "Plot.XLim",
			usage: `
              Plot.XLim specifies the horizontal axis limits [km]. If empty,
              the whole domain is shown.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "Plot.ZLim",
			usage: `
              Plot.ZLim specifies the vertical axis limits [km].`,
			defaultVal: []string{"0", "10"},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "Plot.TLim",
			usage: `
              Plot.TLim specifies the range of the potential temperature
              contours [K]. If empty, contours start half a layer above
              th00 and end at 400 K.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "Plot.TCI",
			usage: `
              Plot.TCI specifies the interval between potential temperature
              contours [K].`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "Plot.VLim",
			usage: `
              Plot.VLim specifies the range of the velocity contours [m/s].`,
			defaultVal: []string{"0", "60"},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
		{
			name: "Plot.VCI",
			usage: `
              Plot.VCI specifies the interval between velocity contours [m/s].
              The reference velocity u00 is always contoured in addition.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), animCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ISEN")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(animCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(namelistCmd)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("isen: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("isen: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "isen",
	Short: "Plot the output of the isentropic model.",
	Long: `Isen plots vertical cross sections of the output of the isentropic
atmospheric flow model: isentropes over topography together with contours
of horizontal velocity or moisture.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ISEN_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Isen.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Isen v%s\n", isen.Version)
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot one output step.",
	Long: `plot plots a vertical cross section of one output step. The plot is
saved to the location given by --file and, if --show is set, opened in
the system image viewer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := visualizer(Cfg)
		if err != nil {
			return err
		}
		return v.Plot(Cfg.GetString("plot"), Cfg.GetInt("timestep"),
			os.ExpandEnv(Cfg.GetString("file")), Cfg.GetBool("show"))
	},
	DisableAutoGenTag: true,
}

var animCmd = &cobra.Command{
	Use:   "anim",
	Short: "Plot every output step.",
	Long: `anim plots every output step of a run, saving each frame to a file
named by --pattern, for example anim-000.png, anim-001.png, and so on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := visualizer(Cfg)
		if err != nil {
			return err
		}
		return v.Animate(Cfg.GetString("plot"), os.ExpandEnv(Cfg.GetString("pattern")))
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe a solver output archive.",
	Long: `info prints the namelist of the run stored in an output archive,
the output times, and the fields that are available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOutput(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		cmd.Print(describe(o))
		return nil
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a solver output archive to another format.",
	Long: `convert reads the archive given by --output and writes it to --dest,
in the format implied by the extension of --dest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOutput(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		dest := os.ExpandEnv(Cfg.GetString("dest"))
		if dest == "" {
			return fmt.Errorf("isen: please specify the converted archive location using --dest")
		}
		if err := isen.WriteOutputFile(dest, o); err != nil {
			return err
		}
		logrus.WithField("file", dest).Info("wrote archive")
		return nil
	},
	DisableAutoGenTag: true,
}

var namelistCmd = &cobra.Command{
	Use:   "namelist",
	Short: "Print a namelist.",
	Long: `namelist reads the namelist file given by --namelist, or uses the
default namelist, and prints it along with the computed parameters. Use
--format=toml to convert a solver namelist to TOML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		nl := isen.DefaultNameList()
		if path := os.ExpandEnv(Cfg.GetString("namelist")); path != "" {
			var err error
			if nl, err = isen.ReadNameListFile(path); err != nil {
				return err
			}
		}
		switch Cfg.GetString("format") {
		case "text":
			cmd.Print(nl.String())
			return nil
		case "toml":
			return isen.WriteNameList(cmd.OutOrStdout(), nl)
		}
		return fmt.Errorf("isen: invalid namelist format '%s'; valid formats are text and toml",
			Cfg.GetString("format"))
	},
	DisableAutoGenTag: true,
}
