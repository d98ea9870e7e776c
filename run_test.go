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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/plot/vg"
)

func TestReadFileList(t *testing.T) {
	dir, err := ioutil.TempDir("", "aqmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	list := filepath.Join(dir, "fileList.txt")
	contents := "a_3K.hdf\n\n  b_L2.hdf  \nc_3K.hdf\n"
	if err := ioutil.WriteFile(list, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	paths, err := ReadFileList(list)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a_3K.hdf", "b_L2.hdf", "c_3K.hdf"}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths; want %d", len(paths), len(want))
	}
	for i, w := range want {
		if paths[i] != w {
			t.Errorf("paths[%d] = %q; want %q", i, paths[i], w)
		}
	}
}

func TestReadFileListMissing(t *testing.T) {
	if _, err := ReadFileList("nonexistentFileList.txt"); err == nil {
		t.Fatal("expected an error for a missing file list")
	}
}

// TestRun processes a file list mixing valid granules with broken
// entries and checks that the broken ones are skipped while the valid
// ones produce maps.
func TestRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "aqmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	good3K := filepath.Join(dir, "MOD04_3K.A2018010.1745.061.hdf")
	writeGranuleFile(t, good3K, SDSLandOcean)
	goodL2 := filepath.Join(dir, "MOD04_L2.A2018011.1845.061.hdf")
	writeGranuleFile(t, goodL2, SDSDarkTargetDeepBlue)
	noVar := filepath.Join(dir, "MOD04_3K.A2018012.1945.061.hdf")
	writeGranuleFile(t, noVar, "Some_Other_Variable")
	badName := filepath.Join(dir, "notagranule.hdf")
	writeGranuleFile(t, badName, SDSLandOcean)
	missing := filepath.Join(dir, "MOD04_3K.A2018013.missing.hdf")

	list := filepath.Join(dir, "fileList.txt")
	contents := strings.Join([]string{good3K, goodL2, noVar, badName, missing}, "\n")
	if err := ioutil.WriteFile(list, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := RunConfig{
		FileList:  list,
		OutputDir: dir,
		Map:       MapOptions{Width: 2 * vg.Inch},
	}
	decider := BatchDecider{
		Defaults: DefaultConversionParams,
		ShowMaps: true,
		SaveMaps: true,
	}

	msgChan := make(chan string)
	var msgs []string
	done := make(chan struct{})
	go func() {
		for msg := range msgChan {
			msgs = append(msgs, msg)
		}
		close(done)
	}()
	err = Run(cfg, decider, msgChan)
	close(msgChan)
	<-done
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{good3K, goodL2} {
		out := filepath.Join(dir, PNGName(path))
		if _, err := os.Stat(out); err != nil {
			t.Errorf("no map written for %s: %v", path, err)
		}
	}
	for _, path := range []string{noVar, badName, missing} {
		out := filepath.Join(dir, PNGName(path))
		if _, err := os.Stat(out); err == nil {
			t.Errorf("unexpected map written for %s", path)
		}
	}

	all := strings.Join(msgs, "")
	if n := strings.Count(all, "Skipping..."); n != 3 {
		t.Errorf("got %d skip messages; want 3:\n%s", n, all)
	}
	if !strings.Contains(all, "This is a 3 km granule") {
		t.Error("missing 3 km granule message")
	}
	if !strings.Contains(all, "This is a 10 km granule") {
		t.Error("missing 10 km granule message")
	}
	if !strings.Contains(all, "All valid files have been processed.") {
		t.Error("missing completion message")
	}
}

// A run with a missing file list aborts instead of skipping.
func TestRunMissingFileList(t *testing.T) {
	cfg := RunConfig{FileList: "nonexistentFileList.txt"}
	if err := Run(cfg, BatchDecider{}, nil); err == nil {
		t.Fatal("expected an error for a missing file list")
	}
}

func TestRunNoMaps(t *testing.T) {
	dir, err := ioutil.TempDir("", "aqmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "MOD04_3K.A2018010.1745.061.hdf")
	writeGranuleFile(t, path, SDSLandOcean)
	list := filepath.Join(dir, "fileList.txt")
	if err := ioutil.WriteFile(list, []byte(path+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := RunConfig{FileList: list, OutputDir: dir}
	decider := BatchDecider{Defaults: DefaultConversionParams}
	if err := Run(cfg, decider, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, PNGName(path))); err == nil {
		t.Error("map written although ShowMaps was false")
	}
}

func TestConsoleDeciderParams(t *testing.T) {
	// Decline the custom coefficients; the defaults apply.
	d := NewConsoleDecider(strings.NewReader("N\n"), ioutil.Discard, DefaultConversionParams)
	if p := d.Params("x"); p != DefaultConversionParams {
		t.Errorf("got %+v; want defaults %+v", p, DefaultConversionParams)
	}

	// Accept and enter both coefficients.
	d = NewConsoleDecider(strings.NewReader("Y\n12.5\n3\n"), ioutil.Discard, DefaultConversionParams)
	want := ConversionParams{Slope: 12.5, Intercept: 3}
	if p := d.Params("x"); p != want {
		t.Errorf("got %+v; want %+v", p, want)
	}

	// Unparseable numbers fall back to the defaults.
	d = NewConsoleDecider(strings.NewReader("y\nabc\n7\n"), ioutil.Discard, DefaultConversionParams)
	want = ConversionParams{Slope: DefaultConversionParams.Slope, Intercept: 7}
	if p := d.Params("x"); p != want {
		t.Errorf("got %+v; want %+v", p, want)
	}
}

func TestConsoleDeciderAnswers(t *testing.T) {
	d := NewConsoleDecider(strings.NewReader("Y\ny\nN\nmaybe\n"), ioutil.Discard, DefaultConversionParams)
	if !d.Process("x") {
		t.Error("Process: want true for Y")
	}
	if !d.ShowMap("x") {
		t.Error("ShowMap: want true for y")
	}
	if d.SaveMap("x") {
		t.Error("SaveMap: want false for N")
	}
	if d.Process("x") {
		t.Error("Process: want false for an unrecognized answer")
	}
}

// Exhausted input answers no rather than blocking.
func TestConsoleDeciderEOF(t *testing.T) {
	d := NewConsoleDecider(strings.NewReader(""), ioutil.Discard, DefaultConversionParams)
	if d.Process("x") {
		t.Error("Process: want false at EOF")
	}
}
