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
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
)

// runConfig builds the pipeline configuration from the given
// configuration information.
func runConfig(cfg *viper.Viper) (aqmap.RunConfig, error) {
	outputDir, err := checkOutputDir(cfg.GetString("outputdir"))
	if err != nil {
		return aqmap.RunConfig{}, err
	}
	width, err := cast.ToFloat64E(cfg.Get("mapwidth"))
	if err != nil {
		return aqmap.RunConfig{}, fmt.Errorf("aqmap: reading 'mapwidth': %v", err)
	}
	if width <= 0 {
		return aqmap.RunConfig{}, fmt.Errorf("aqmap: the mapwidth configuration variable must be positive but is %g", width)
	}
	return aqmap.RunConfig{
		FileList:         os.ExpandEnv(cfg.GetString("filelist")),
		MaskToValidRange: cfg.GetBool("maskmap"),
		OutputDir:        outputDir,
		Map: aqmap.MapOptions{
			Width:        vg.Length(width) * vg.Inch,
			BoundaryFile: os.ExpandEnv(cfg.GetString("boundaryfile")),
		},
	}, nil
}

// checkOutputDir makes sure that the output directory exists, and
// expands any environment variables.
func checkOutputDir(d string) (string, error) {
	if d == "" {
		d = "."
	}
	d = os.ExpandEnv(d)
	if _, err := os.Stat(d); err != nil {
		return d, fmt.Errorf("aqmap: the outputdir directory doesn't exist: %v", err)
	}
	return d, nil
}
