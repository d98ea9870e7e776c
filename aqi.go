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
	"image/color"
	"math"

	"github.com/ctessum/sparse"
)

// AQICategory is one of the six EPA Air Quality Index categories for
// 24-hour PM2.5 exposure.
type AQICategory int

const (
	Good AQICategory = iota
	Moderate
	UnhealthySensitive
	Unhealthy
	VeryUnhealthy
	Hazardous

	// NumAQICategories is the number of AQI categories.
	NumAQICategories = 6
)

var aqiNames = [NumAQICategories]string{
	"Good",
	"Moderate",
	"Unhealthy for Sensitive Groups",
	"Unhealthy",
	"Very Unhealthy",
	"Hazardous",
}

func (c AQICategory) String() string { return aqiNames[c] }

// Color gives the conventional AQI map color for this category:
// green, yellow, orange, red, purple, and brown, in category order.
func (c AQICategory) Color() color.NRGBA { return aqiColors[c] }

var aqiColors = [NumAQICategories]color.NRGBA{
	{R: 0, G: 128, B: 0, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 165, B: 0, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 128, G: 0, B: 128, A: 255},
	{R: 165, G: 42, B: 42, A: 255},
}

// aqiBreakpoints are the upper PM2.5 bounds [μg/m³] of each category
// except Hazardous, which is unbounded. Each boundary belongs to the
// category below it.
var aqiBreakpoints = [NumAQICategories - 1]float64{12, 35.4, 55.4, 150.4, 250.4}

// Category buckets a PM2.5 concentration [μg/m³] into an AQI category
// code between 0 and 5. Negative concentrations (which arise from fill values run
// through the regression) and NaN yield NaN.
func Category(pm25 float64) float64 {
	if math.IsNaN(pm25) || pm25 < 0 {
		return math.NaN()
	}
	for i, hi := range aqiBreakpoints {
		if pm25 <= hi {
			return float64(i)
		}
	}
	return float64(Hazardous)
}

// Classify buckets every cell of a PM2.5 grid into AQI category codes,
// preserving the grid shape. It is pure: the input grid is not
// modified, and identical inputs always produce identical outputs.
func Classify(pm25 *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(pm25.Shape...)
	for i, v := range pm25.Elements {
		out.Elements[i] = Category(v)
	}
	return out
}
