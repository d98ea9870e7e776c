/*
Copyright © 2018 the AQMap authors.
This file is part of AQMap.

AQMap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AQMap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AQMap.  If not, see <http://www.gnu.org/licenses/>.
*/

package aqmaputil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/aqmap"
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
	// Options are the configuration options available to AQMap.
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
			name: "filelist",
			usage: `
              filelist is the path to a text file containing the granule
              file names to process, one per line. The path can include
              environment variables.`,
			defaultVal: aqmap.DefaultFileListName,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "slope",
			usage: `
              slope is the slope of the linear AOD-to-PM2.5 regression.`,
			defaultVal: aqmap.DefaultConversionParams.Slope,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "intercept",
			usage: `
              intercept is the intercept of the linear AOD-to-PM2.5
              regression.`,
			defaultVal: aqmap.DefaultConversionParams.Intercept,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "interactive",
			usage: `
              interactive asks the per-granule questions (process this
              file? custom coefficients? draw and save the map?) on the
              terminal instead of answering them from configuration.`,
			shorthand:  "i",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "drawmap",
			usage: `
              drawmap specifies whether an AQI category map is rendered
              for each granule.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "savemap",
			usage: `
              savemap specifies whether rendered maps are saved as PNG
              files. It has no effect when drawmap is false.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "maskmap",
			usage: `
              maskmap applies the valid-range mask to the mapped PM2.5
              grid, not only to the reported statistics. The reference
              procedure leaves fill-derived cells in the map; set
              maskmap to remove them.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "outputdir",
			usage: `
              outputdir is the directory that saved maps are written
              to. The path can include environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "boundaryfile",
			usage: `
              boundaryfile is the path to an optional shapefile of
              coastline or administrative borders to draw on each map.
              The path can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "mapwidth",
			usage: `
              mapwidth is the width of rendered maps in inches.`,
			defaultVal: 5.75,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("AQMAP")

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
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
	Root.AddCommand(runCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Print(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("aqmap: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "aqmap",
	Short: "Estimate and map PM2.5 air quality from satellite AOD retrievals.",
	Long: `AQMap reads gridded aerosol optical depth (AOD) granules, estimates
PM2.5 concentrations with a linear regression, classifies the results
into the six EPA AQI categories, and renders categorical maps.

Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the
format 'AQMAP_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of AQMap.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("AQMap v%s\n", aqmap.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd processes the granules in the configured file list.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the granules in the file list.",
	Long: `run reads the configured file list and, for each granule in it,
estimates PM2.5 from the AOD retrieval, reports summary statistics, and
optionally renders and saves an AQI category map.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runConfig(Cfg)
		if err != nil {
			return err
		}
		defaults := aqmap.ConversionParams{
			Slope:     Cfg.GetFloat64("slope"),
			Intercept: Cfg.GetFloat64("intercept"),
		}
		var decider aqmap.Decider = aqmap.BatchDecider{
			Defaults: defaults,
			ShowMaps: Cfg.GetBool("drawmap"),
			SaveMaps: Cfg.GetBool("savemap"),
		}
		if Cfg.GetBool("interactive") {
			decider = aqmap.NewConsoleDecider(os.Stdin, os.Stdout, defaults)
		}
		return aqmap.Run(cfg, decider, outChan())
	},
	DisableAutoGenTag: true,
}
