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
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/sparse"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// MapOptions control how category grids are rendered.
type MapOptions struct {
	// Width is the overall figure width. If zero, a default is used.
	Width vg.Length

	// BoundaryFile optionally gives the path to a shapefile of
	// coastline or administrative borders to overlay on the map.
	BoundaryFile string

	// Title is the figure title. If empty, it is derived from the
	// granule file name. Multiple lines are separated by '\n'.
	Title string
}

// DefaultMapWidth is the figure width used when MapOptions.Width is
// unset.
const DefaultMapWidth = 5.75 * vg.Inch

const (
	legendHeight = 0.55 * vg.Inch
	titleHeight  = 0.4 * vg.Inch
)

// A MapImage is a rendered category map ready to be encoded as a PNG.
type MapImage struct {
	canvas *vgimg.Canvas
}

// Save writes the map to path as a PNG file.
func (m *MapImage) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aqmap: creating map file: %v", err)
	}
	png := vgimg.PngCanvas{Canvas: m.canvas}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("aqmap: writing map file %s: %v", path, err)
	}
	return f.Close()
}

// DrawMap renders the AQI category grid of one granule as a colored
// cell mesh on a longitude/latitude canvas, with a categorical legend
// below the map. Cells whose category is NaN are left blank. The
// categories grid must have the same shape as the granule's
// geolocation grids.
func DrawMap(g *Granule, categories *sparse.DenseArray, o MapOptions) (*MapImage, error) {
	if o.Width <= 0 {
		o.Width = DefaultMapWidth
	}
	if o.Title == "" {
		o.Title = PlotTitle(g.Path) + "\nPM 2.5"
	}
	S, N := g.LatRange()
	W, E := g.LonRange()
	if !(E > W) || !(N > S) {
		return nil, fmt.Errorf("aqmap: granule %s has degenerate geographic bounds", g.Path)
	}

	mapHeight := o.Width * vg.Length((N-S)/(E-W))
	figHeight := mapHeight + legendHeight + titleHeight
	c := vgimg.New(o.Width, figHeight)
	dc := draw.New(c)
	titlec := draw.Crop(dc, 0, 0, figHeight-titleHeight, 0)
	mainc := draw.Crop(dc, 0, 0, legendHeight, -titleHeight)
	legendc := draw.Crop(dc, 0, 0, 0, -(figHeight - legendHeight))

	mc := carto.NewCanvas(N, S, E, W, mainc)

	// Cell corners are interpolated from the surrounding cell centers.
	latCorners := gridCorners(g.Latitude)
	lonCorners := gridCorners(g.Longitude)

	ny, nx := categories.Shape[0], categories.Shape[1]
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			v := categories.Get(i, j)
			if math.IsNaN(v) {
				continue
			}
			fill := AQICategory(int(v)).Color()
			cell := geom.Polygon{[]geom.Point{
				{X: lonCorners.Get(i, j), Y: latCorners.Get(i, j)},
				{X: lonCorners.Get(i, j+1), Y: latCorners.Get(i, j+1)},
				{X: lonCorners.Get(i+1, j+1), Y: latCorners.Get(i+1, j+1)},
				{X: lonCorners.Get(i+1, j), Y: latCorners.Get(i+1, j)},
				{X: lonCorners.Get(i, j), Y: latCorners.Get(i, j)},
			}}
			// The thin same-colored outline closes the seams between
			// adjacent cells.
			ls := draw.LineStyle{Color: fill, Width: 0.1}
			if err := mc.DrawVector(cell, fill, ls, draw.GlyphStyle{}); err != nil {
				return nil, fmt.Errorf("aqmap: drawing map cell: %v", err)
			}
		}
	}

	if o.BoundaryFile != "" {
		if err := drawBoundaries(mc, o.BoundaryFile, N, S, E, W); err != nil {
			return nil, err
		}
	}
	if err := drawLegend(legendc); err != nil {
		return nil, err
	}
	if err := drawTitle(titlec, o.Title); err != nil {
		return nil, err
	}
	return &MapImage{canvas: c}, nil
}

// gridCorners converts a 2-D grid of cell center coordinates into the
// (ny+1)×(nx+1) grid of cell corner coordinates, averaging the centers
// adjacent to each corner. Corners on the grid edge reuse the nearest
// centers, so edge cells render at half width.
func gridCorners(centers *sparse.DenseArray) *sparse.DenseArray {
	ny, nx := centers.Shape[0], centers.Shape[1]
	corners := sparse.ZerosDense(ny+1, nx+1)
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	for i := 0; i <= ny; i++ {
		for j := 0; j <= nx; j++ {
			sum := 0.
			for _, ci := range []int{clamp(i-1, ny-1), clamp(i, ny-1)} {
				for _, cj := range []int{clamp(j-1, nx-1), clamp(j, nx-1)} {
					sum += centers.Get(ci, cj)
				}
			}
			corners.Set(sum/4, i, j)
		}
	}
	return corners
}

// boundaryShape is a row decoded from the boundary shapefile; only the
// geometry is used.
type boundaryShape struct {
	geom.Geom
}

// drawBoundaries overlays border lines from a shapefile, clipped to the
// map view.
func drawBoundaries(mc *carto.Canvas, file string, N, S, E, W float64) error {
	d, err := shp.NewDecoder(file)
	if err != nil {
		return fmt.Errorf("aqmap: opening boundary file: %v", err)
	}
	defer d.Close()
	index := rtree.NewTree(25, 50)
	for {
		var rec boundaryShape
		if !d.DecodeRow(&rec) {
			break
		}
		index.Insert(&rec)
	}
	if err := d.Error(); err != nil {
		return fmt.Errorf("aqmap: reading boundary file %s: %v", file, err)
	}

	view := geom.Polygon{[]geom.Point{
		{X: W, Y: S}, {X: E, Y: S},
		{X: E, Y: N}, {X: W, Y: N},
		{X: W, Y: S}},
	}
	lineStyle := draw.LineStyle{
		Width: 0.25 * vg.Millimeter,
		Color: color.NRGBA{R: 100, G: 100, B: 100, A: 255},
	}
	clearFill := color.NRGBA{}
	for _, s := range index.SearchIntersect(view.Bounds()) {
		gg := s.(*boundaryShape).Geom
		if pg, ok := gg.(geom.Polygonal); ok {
			gg = pg.Intersection(view)
		}
		if gg == nil {
			continue
		}
		if err := mc.DrawVector(gg, clearFill, lineStyle, draw.GlyphStyle{}); err != nil {
			return fmt.Errorf("aqmap: drawing boundary: %v", err)
		}
	}
	return nil
}

// aqiLegendLabels are the legend labels for each category, split into
// lines that fit under a swatch.
var aqiLegendLabels = [NumAQICategories][]string{
	{"Good"},
	{"Moderate"},
	{"Unhealthy for", "Sensitive Groups"},
	{"Unhealthy"},
	{"Very Unhealthy"},
	{"Hazardous"},
}

// drawLegend draws the six fixed category swatches with their labels
// centered below each swatch.
func drawLegend(c draw.Canvas) error {
	font, err := vg.MakeFont("Helvetica", vg.Points(7))
	if err != nil {
		return err
	}
	ts := draw.TextStyle{Color: color.Black, Font: font, XAlign: -0.5, YAlign: -1}
	lineHeight := vg.Points(8)

	swatchW := (c.Max.X - c.Min.X) / NumAQICategories
	barTop := c.Max.Y - vg.Points(2)
	barBottom := c.Min.Y + 2*lineHeight + vg.Points(4)
	edge := draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}

	for i := 0; i < NumAQICategories; i++ {
		left := c.Min.X + vg.Length(i)*swatchW
		right := left + swatchW
		box := []vg.Point{
			{X: left, Y: barBottom}, {X: right, Y: barBottom},
			{X: right, Y: barTop}, {X: left, Y: barTop},
			{X: left, Y: barBottom},
		}
		c.FillPolygon(AQICategory(i).Color(), box)
		c.StrokeLines(edge, box)

		center := left + swatchW/2
		y := barBottom - vg.Points(2)
		for _, line := range aqiLegendLabels[i] {
			c.FillText(ts, vg.Point{X: center, Y: y}, line)
			y -= lineHeight
		}
	}
	return nil
}

// drawTitle draws a (possibly multi-line) centered title.
func drawTitle(c draw.Canvas, title string) error {
	font, err := vg.MakeFont("Helvetica", vg.Points(10))
	if err != nil {
		return err
	}
	ts := draw.TextStyle{Color: color.Black, Font: font, XAlign: -0.5, YAlign: -1}
	center := c.Min.X + (c.Max.X-c.Min.X)/2
	y := c.Max.Y - vg.Points(2)
	for _, line := range strings.Split(title, "\n") {
		c.FillText(ts, vg.Point{X: center, Y: y}, line)
		y -= vg.Points(11)
	}
	return nil
}

// PlotTitle strips the 4-character file extension from the granule
// file name, matching the naming convention for saved maps.
func PlotTitle(path string) string {
	base := filepath.Base(path)
	if len(base) > 4 {
		return base[:len(base)-4]
	}
	return base
}

// PNGName gives the name of the PNG file that a granule's map is saved
// as: the granule file name with its extension replaced by ".png".
func PNGName(path string) string {
	return PlotTitle(path) + ".png"
}
