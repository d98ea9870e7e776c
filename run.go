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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
)

// DefaultFileListName is the file that granule paths are read from
// when no other location is configured.
const DefaultFileListName = "fileList.txt"

// ReadFileList reads a newline-separated list of granule file paths.
// A missing or unreadable list file is fatal for the whole run; the
// listed paths themselves are not checked until each granule is
// opened.
func ReadFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aqmap: did not find a text file containing file names at %s: %v", path, err)
	}
	defer f.Close()
	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("aqmap: reading file list %s: %v", path, err)
	}
	return paths, nil
}

// A Decider answers the per-granule processing questions. SaveMap is
// only consulted when ShowMap answered true.
type Decider interface {
	// Process reports whether the granule at path should be processed
	// at all.
	Process(path string) bool

	// Params gives the regression coefficients to use for this granule.
	Params(path string) ConversionParams

	// ShowMap reports whether a map should be drawn for this granule.
	ShowMap(path string) bool

	// SaveMap reports whether the drawn map should be written to disk.
	SaveMap(path string) bool
}

// BatchDecider answers every question from configuration, making runs
// scriptable and repeatable with no console interaction.
type BatchDecider struct {
	// Defaults are the regression coefficients applied to every
	// granule.
	Defaults ConversionParams

	// ShowMaps and SaveMaps control map drawing and saving for every
	// granule.
	ShowMaps, SaveMaps bool
}

func (d BatchDecider) Process(string) bool            { return true }
func (d BatchDecider) Params(string) ConversionParams { return d.Defaults }
func (d BatchDecider) ShowMap(string) bool            { return d.ShowMaps }
func (d BatchDecider) SaveMap(string) bool            { return d.SaveMaps }

// ConsoleDecider asks the per-granule questions on the terminal,
// blocking until each is answered.
type ConsoleDecider struct {
	// Defaults are the coefficients offered when the user declines to
	// enter their own.
	Defaults ConversionParams

	r *bufio.Reader
	w io.Writer
}

// NewConsoleDecider returns a ConsoleDecider that reads answers from r
// and prompts on w.
func NewConsoleDecider(r io.Reader, w io.Writer, defaults ConversionParams) *ConsoleDecider {
	return &ConsoleDecider{
		Defaults: defaults,
		r:        bufio.NewReader(r),
		w:        w,
	}
}

func (d *ConsoleDecider) ask(question string) bool {
	fmt.Fprintf(d.w, "\n%s ", question)
	line, err := d.r.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.TrimSpace(line)
	return answer == "Y" || answer == "y"
}

func (d *ConsoleDecider) askFloat(prompt string, fallback float64) float64 {
	fmt.Fprint(d.w, prompt)
	line, err := d.r.ReadString('\n')
	if err != nil {
		return fallback
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintf(d.w, "That is not a number; using %g instead.\n", fallback)
		return fallback
	}
	return v
}

func (d *ConsoleDecider) Process(path string) bool {
	return d.ask(fmt.Sprintf("Would you like to process\n%s\n\n(Y/N)", path))
}

func (d *ConsoleDecider) Params(string) ConversionParams {
	if !d.ask("Would you like to enter a slope and intercept for PM 2.5 calculation? (Y/N)") {
		return d.Defaults
	}
	return ConversionParams{
		Slope:     d.askFloat("Please enter a slope: ", d.Defaults.Slope),
		Intercept: d.askFloat("Please enter an intercept: ", d.Defaults.Intercept),
	}
}

func (d *ConsoleDecider) ShowMap(string) bool {
	return d.ask("Would you like to create a map of this data? Please enter Y or N")
}

func (d *ConsoleDecider) SaveMap(string) bool {
	return d.ask("Would you like to save this map? Please enter Y or N")
}

// RunConfig holds the configuration of one pipeline run.
type RunConfig struct {
	// FileList is the path to the text file listing the granules to
	// process. If empty, DefaultFileListName is used.
	FileList string

	// MaskToValidRange applies the valid-range mask to the mapped grid
	// in addition to the reported statistics. The reference procedure
	// only masks the statistics; leave this false for compatible
	// output.
	MaskToValidRange bool

	// OutputDir is the directory that saved maps are written to.
	OutputDir string

	// Map configures the renderer.
	Map MapOptions
}

// Run processes every granule in the configured file list, strictly in
// order. A failure while processing one granule is reported and the
// run continues with the next granule; only a missing file list aborts
// the run. Progress messages are sent to msgChan if it is non-nil.
func Run(cfg RunConfig, decider Decider, msgChan chan string) error {
	if cfg.FileList == "" {
		cfg.FileList = DefaultFileListName
	}
	files, err := ReadFileList(cfg.FileList)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := processGranule(path, cfg, decider, msgChan); err != nil {
			report(msgChan, "%v\nSkipping...\n", err)
		}
	}
	report(msgChan, "\nAll valid files have been processed.\n")
	return nil
}

func processGranule(path string, cfg RunConfig, decider Decider, msgChan chan string) error {
	if !decider.Process(path) {
		return nil
	}
	g, err := OpenGranule(path)
	if err != nil {
		return err
	}
	report(msgChan, "This is a %s granule. Here is some information:\n", g.Resolution)

	params := decider.Params(path)
	stats, pm25, err := Convert(g, params)
	if err != nil {
		return err
	}
	report(msgChan, "The valid range of values is: %.3f to %.3f\nThe average is: %.3f\nThe standard deviation is: %.3f\n",
		stats.RangeMin, stats.RangeMax, stats.Average, stats.StdDev)
	report(msgChan, "The range of latitude in this file is: %g to %g degrees\nThe range of longitude in this file is: %g to %g degrees\n",
		stats.MinLat, stats.MaxLat, stats.MinLon, stats.MaxLon)

	if !decider.ShowMap(path) {
		return nil
	}
	if cfg.MaskToValidRange {
		pm25 = g.MaskToValidRange(pm25)
	}
	categories := Classify(pm25)
	m, err := DrawMap(g, categories, cfg.Map)
	if err != nil {
		return err
	}
	if !decider.SaveMap(path) {
		return nil
	}
	out := filepath.Join(cfg.OutputDir, PNGName(path))
	if err := m.Save(out); err != nil {
		return err
	}
	report(msgChan, "Saved map to %s\n", out)
	return nil
}

func report(msgChan chan string, format string, a ...interface{}) {
	if msgChan != nil {
		msgChan <- fmt.Sprintf(format, a...)
	}
}
