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
	"os"
	"testing"

	"github.com/spatialmodel/aqmap"
	"gonum.org/v1/plot/vg"
)

func TestRunConfigDefaults(t *testing.T) {
	cfg, err := runConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FileList != aqmap.DefaultFileListName {
		t.Errorf("FileList = %q; want %q", cfg.FileList, aqmap.DefaultFileListName)
	}
	if cfg.MaskToValidRange {
		t.Error("MaskToValidRange should default to false")
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q; want \".\"", cfg.OutputDir)
	}
	if want := vg.Length(5.75) * vg.Inch; cfg.Map.Width != want {
		t.Errorf("Map.Width = %v; want %v", cfg.Map.Width, want)
	}
	if cfg.Map.BoundaryFile != "" {
		t.Errorf("Map.BoundaryFile = %q; want empty", cfg.Map.BoundaryFile)
	}
}

func TestRunConfigExpandsEnv(t *testing.T) {
	os.Setenv("AQMAP_TEST_DIR", ".")
	defer os.Unsetenv("AQMAP_TEST_DIR")
	Cfg.Set("filelist", "${AQMAP_TEST_DIR}/fileList.txt")
	Cfg.Set("outputdir", "${AQMAP_TEST_DIR}")
	defer func() {
		Cfg.Set("filelist", aqmap.DefaultFileListName)
		Cfg.Set("outputdir", ".")
	}()

	cfg, err := runConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FileList != "./fileList.txt" {
		t.Errorf("FileList = %q; want \"./fileList.txt\"", cfg.FileList)
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q; want \".\"", cfg.OutputDir)
	}
}

func TestRunConfigBadMapWidth(t *testing.T) {
	Cfg.Set("mapwidth", -1.0)
	defer Cfg.Set("mapwidth", 5.75)
	if _, err := runConfig(Cfg); err == nil {
		t.Fatal("expected an error for a non-positive mapwidth")
	}
}

func TestRunConfigMissingOutputDir(t *testing.T) {
	Cfg.Set("outputdir", "nonexistent_output_dir")
	defer Cfg.Set("outputdir", ".")
	if _, err := runConfig(Cfg); err == nil {
		t.Fatal("expected an error for a missing output directory")
	}
}
