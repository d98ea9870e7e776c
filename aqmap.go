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

// Package aqmap estimates fine particulate matter (PM2.5) surface
// concentrations from satellite aerosol optical depth (AOD) retrievals
// and maps the results as EPA Air Quality Index (AQI) categories.
//
// The pipeline reads a list of granule file paths, and for each granule
// extracts the AOD variable, applies a linear AOD-to-PM2.5 regression,
// classifies the result into the six AQI categories, and optionally
// renders a categorical map to a PNG file.
package aqmap

// Version gives the version number of this version of AQMap.
const Version = "0.3.1"
