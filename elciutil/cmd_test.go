/*
Copyright © 2024 the ELCI authors.
This file is part of ELCI.

ELCI is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ELCI is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ELCI.  If not, see <http://www.gnu.org/licenses/>.
*/

package elciutil

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/elci"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

func TestVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), elci.Version) {
		t.Errorf("have %q, want the version %s", buf.String(), elci.Version)
	}
}

func TestRunCommandMissingModel(t *testing.T) {
	dir, err := ioutil.TempDir("", "elciutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	Root.SetOutput(ioutil.Discard)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"run", "nomodel", "--config-dir", dir})
	err = Root.Execute()
	if code := lcierr.ExitCode(err); code != lcierr.ExitConfiguration {
		t.Errorf("have exit code %d (%v), want %d", code, err, lcierr.ExitConfiguration)
	}
}

// TestRunUpload checks that the log of a failed run is still
// uploaded to blob storage.
func TestRunUpload(t *testing.T) {
	dir, err := ioutil.TempDir("", "elciutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "bucket")
	if err := os.Mkdir(out, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := &elci.Config{
		Year:                    2016,
		BulkFile:                filepath.Join(dir, "EBA.txt"),
		NetGenerationSource:     elci.NetGenerationBulk,
		FuelMixFile:             filepath.Join(dir, "fuelmix.csv"),
		GenerationInventoryFile: filepath.Join(dir, "inventory.csv"),
		TDWorkbookDir:           dir,
		Axes:                    []region.Axis{region.AxisBA},
		Trading:                 elci.TradingEIA,
		Aggregation:             elci.AggregationBA,
		Version:                 "1.0",
		OutputFile:              "file://" + filepath.ToSlash(out) + "/elci.zip",
	}
	ctx := context.Background()
	err = Run(ctx, cfg, checkLogFile("", cfg.OutputFile))
	if code := lcierr.ExitCode(err); code != lcierr.ExitDataMissing {
		t.Fatalf("have exit code %d (%v), want %d", code, err, lcierr.ExitDataMissing)
	}
	r, err := Fetch(ctx, "file://"+filepath.ToSlash(out)+"/elci.log")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	b, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "run failed") {
		t.Errorf("log does not record the failure:\n%s", b)
	}
	if _, err := Fetch(ctx, "file://"+filepath.ToSlash(out)+"/elci.zip"); err == nil {
		t.Error("output of a failed run was uploaded")
	}
}

func TestUploadError(t *testing.T) {
	dir, err := ioutil.TempDir("", "elciutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	up := new(uploader)
	defer up.cleanup()
	local := up.maybeUpload("file://" + filepath.ToSlash(dir) + "/missing/elci.log")
	if err := ioutil.WriteFile(local, []byte("log"), 0644); err != nil {
		t.Fatal(err)
	}
	err = up.upload(context.Background())
	if code := lcierr.ExitCode(err); code != lcierr.ExitDataMissing {
		t.Errorf("have exit code %d (%v), want %d", code, err, lcierr.ExitDataMissing)
	}
}
