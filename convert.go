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

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
)

// ConversionParams holds the coefficients of the linear AOD-to-PM2.5
// regression: PM2.5 [μg/m³] = Slope·AOD + Intercept.
type ConversionParams struct {
	Slope, Intercept float64
}

// DefaultConversionParams are the regression coefficients used when
// none are supplied.
var DefaultConversionParams = ConversionParams{Slope: 29.4, Intercept: 8.8}

// Stats summarizes the valid retrievals in one granule.
//
// Average and StdDev describe only the in-range scaled AOD values,
// while the PM2.5 grid returned by Convert covers the full raw array
// including fill values. The two populations intentionally differ; see
// the Convert documentation.
type Stats struct {
	// RangeMin and RangeMax are the valid-range bounds after scaling.
	RangeMin, RangeMax float64

	// Average and StdDev are the arithmetic mean and population
	// standard deviation of the in-range scaled AOD values.
	Average, StdDev float64

	// ValidCount is the number of in-range values.
	ValidCount int

	// Geographic extents of the granule, in degrees.
	MinLat, MaxLat, MinLon, MaxLon float64
}

// Convert filters the granule's raw AOD to its valid range, scales it,
// and summarizes it, then applies the linear regression p to produce a
// PM2.5 grid with the same shape as the raw array.
//
// The summary statistics describe only the in-range values, but the
// returned PM2.5 grid is computed over the full unfiltered array so
// that it keeps the granule's shape for mapping. This asymmetry
// reproduces the behavior of the NASA ARSET reference procedure; use
// Granule.MaskToValidRange to remove fill-derived cells from the grid
// before classification if desired.
//
// If no values fall within the valid range, Convert returns an error
// rather than computing statistics over an empty set.
func Convert(g *Granule, p ConversionParams) (Stats, *sparse.DenseArray, error) {
	lo, hi := g.ValidRange[0], g.ValidRange[1]
	var acc stats.Stats
	for _, v := range g.AOD.Elements {
		if v >= lo && v <= hi {
			acc.Update(v * g.ScaleFactor)
		}
	}
	if acc.Count() == 0 {
		return Stats{}, nil, fmt.Errorf("aqmap: granule %s has no AOD values within the valid range [%g, %g]",
			g.Path, lo, hi)
	}

	s := Stats{
		RangeMin:   lo * g.ScaleFactor,
		RangeMax:   hi * g.ScaleFactor,
		Average:    acc.Mean(),
		StdDev:     acc.PopulationStandardDeviation(),
		ValidCount: acc.Count(),
	}
	s.MinLat, s.MaxLat = g.LatRange()
	s.MinLon, s.MaxLon = g.LonRange()

	pm25 := sparse.ZerosDense(g.AOD.Shape...)
	for i, v := range g.AOD.Elements {
		pm25.Elements[i] = p.Slope*(v*g.ScaleFactor) + p.Intercept
	}
	return s, pm25, nil
}

// MaskToValidRange returns a copy of the given grid with the cells
// whose raw AOD value falls outside the granule's valid range set to
// NaN. The grid must have the same shape as the granule's raw array.
func (g *Granule) MaskToValidRange(grid *sparse.DenseArray) *sparse.DenseArray {
	lo, hi := g.ValidRange[0], g.ValidRange[1]
	out := grid.Copy()
	for i, v := range g.AOD.Elements {
		if v < lo || v > hi {
			out.Elements[i] = math.NaN()
		}
	}
	return out
}
