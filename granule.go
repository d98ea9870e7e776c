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

package aqmap

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Names of the variables read from each granule. Which AOD variable a
// granule carries depends on the retrieval product it came from, so the
// AOD variable name is resolved from the file name.
const (
	latitudeVar  = "Latitude"
	longitudeVar = "Longitude"

	// SDSLandOcean is the AOD variable in 3 km resolution granules,
	// and also the generic fallback for granules that don't carry the
	// variable their name suggests.
	SDSLandOcean = "Optical_Depth_Land_And_Ocean"

	// SDSDarkTargetDeepBlue is the AOD variable in 10 km resolution
	// granules.
	SDSDarkTargetDeepBlue = "AOD_550_Dark_Target_Deep_Blue_Combined"
)

// A Granule holds the contents of one gridded AOD granule file: the
// geolocation grids, the raw AOD retrieval, and the metadata needed to
// turn raw values into physical units.
type Granule struct {
	Path string

	// Resolution is a human-readable description of the granule
	// resolution ("3 km" or "10 km"), determined from the file name.
	Resolution string

	// SDSName is the name of the AOD variable that was actually read,
	// after any fallback.
	SDSName string

	// Latitude and Longitude are 2-D grids of cell center coordinates
	// in degrees.
	Latitude, Longitude *sparse.DenseArray

	// AOD is the raw (unscaled) AOD retrieval, in the same shape as
	// the geolocation grids. Values outside ValidRange are fill values,
	// not measurements.
	AOD *sparse.DenseArray

	// ScaleFactor converts raw AOD values to physical units.
	ScaleFactor float64

	// ValidRange gives the inclusive raw-value bounds outside of which
	// values are considered fill.
	ValidRange [2]float64
}

// ResolveSDSName chooses the AOD variable name matching the granule
// file name: names containing "3K" hold 3 km retrievals and names
// containing "L2" hold 10 km retrievals. Any other name is not a
// recognized granule and results in an error.
func ResolveSDSName(path string) (sdsName, resolution string, err error) {
	switch {
	case strings.Contains(path, "3K"):
		return SDSLandOcean, "3 km", nil
	case strings.Contains(path, "L2"):
		return SDSDarkTargetDeepBlue, "10 km", nil
	}
	return "", "", fmt.Errorf("aqmap: %s is not a recognized granule file (or is named incorrectly)", path)
}

// OpenGranule reads the granule file at path. The AOD variable is
// chosen by ResolveSDSName; if the file doesn't contain that variable,
// the generic land-and-ocean variable is tried before giving up.
func OpenGranule(path string) (*Granule, error) {
	sdsName, resolution, err := ResolveSDSName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aqmap: unable to open granule %s: %v", path, err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("aqmap: reading granule %s: %v", path, err)
	}

	g := &Granule{
		Path:       path,
		Resolution: resolution,
		SDSName:    sdsName,
	}
	if g.Latitude, err = readVar(ff, latitudeVar); err != nil {
		return nil, fmt.Errorf("aqmap: granule %s: %v", path, err)
	}
	if g.Longitude, err = readVar(ff, longitudeVar); err != nil {
		return nil, fmt.Errorf("aqmap: granule %s: %v", path, err)
	}

	if g.AOD, err = readVar(ff, sdsName); err != nil {
		// Some granules carry the generic variable regardless of what
		// their name suggests.
		if g.AOD, err = readVar(ff, SDSLandOcean); err != nil {
			return nil, fmt.Errorf("aqmap: granule %s does not contain the variable %s or %s",
				path, sdsName, SDSLandOcean)
		}
		g.SDSName = SDSLandOcean
	}

	sf, err := attrFloats(ff, g.SDSName, "scale_factor")
	if err != nil {
		return nil, fmt.Errorf("aqmap: granule %s: %v", path, err)
	}
	g.ScaleFactor = sf[0]

	vr, err := attrFloats(ff, g.SDSName, "valid_range")
	if err != nil {
		return nil, fmt.Errorf("aqmap: granule %s: %v", path, err)
	}
	if len(vr) < 2 {
		return nil, fmt.Errorf("aqmap: granule %s: variable %s valid_range has %d elements; need 2",
			path, g.SDSName, len(vr))
	}
	g.ValidRange = [2]float64{math.Min(vr[0], vr[1]), math.Max(vr[0], vr[1])}

	return g, nil
}

// LatRange returns the minimum and maximum latitude in the granule, in
// degrees.
func (g *Granule) LatRange() (min, max float64) {
	return floats.Min(g.Latitude.Elements), floats.Max(g.Latitude.Elements)
}

// LonRange returns the minimum and maximum longitude in the granule, in
// degrees.
func (g *Granule) LonRange() (min, max float64) {
	return floats.Min(g.Longitude.Elements), floats.Max(g.Longitude.Elements)
}

// readVar reads the whole of variable name from ff into a float64
// array, regardless of the stored element type.
func readVar(ff *cdf.File, name string) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("variable %v not in file", name)
	}
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", name, err)
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float64:
		copy(data.Elements, b)
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int8:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("variable %s has unsupported type %T", name, buf)
	}
	return data, nil
}

// attrFloats reads a numeric attribute of the given variable as
// float64s, regardless of the stored type.
func attrFloats(ff *cdf.File, varName, attr string) ([]float64, error) {
	v := ff.Header.GetAttribute(varName, attr)
	if v == nil {
		return nil, fmt.Errorf("variable %s is missing the %s attribute", varName, attr)
	}
	switch a := v.(type) {
	case []float64:
		return a, nil
	case []float32:
		out := make([]float64, len(a))
		for i, val := range a {
			out[i] = float64(val)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(a))
		for i, val := range a {
			out[i] = float64(val)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(a))
		for i, val := range a {
			out[i] = float64(val)
		}
		return out, nil
	}
	return nil, fmt.Errorf("variable %s attribute %s has unsupported type %T", varName, attr, v)
}
