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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

func writeModel(t *testing.T, dir, model string, cfg map[string]interface{}) {
	f, err := os.Create(filepath.Join(dir, model+".toml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		t.Fatal(err)
	}
}

func TestRunConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "elciutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	os.Setenv("ELCI_TEST_DATA", dir)
	defer os.Unsetenv("ELCI_TEST_DATA")

	writeModel(t, dir, "test", map[string]interface{}{
		"Year":                    2017,
		"BulkFile":                "${ELCI_TEST_DATA}/EBA.txt",
		"FuelMixFile":             "${ELCI_TEST_DATA}/fuelmix.csv",
		"CanadianMixFiles":        []string{"${ELCI_TEST_DATA}/canada.csv"},
		"GenerationInventoryFile": "${ELCI_TEST_DATA}/inventory.csv",
		"TDWorkbookDir":           "${ELCI_TEST_DATA}/td",
		"Axes":                    []string{"BA", "US", "BA"},
		"Version":                 "1.2.3",
		"OutputFile":              "${ELCI_TEST_DATA}/out/elci.zip",
		"Timeout":                 "30s",
	})
	Cfg.Set("ConfigDir", dir)
	if err := setConfig("test"); err != nil {
		t.Fatal(err)
	}
	c, err := RunConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Year != 2017 {
		t.Errorf("year: have %d, want 2017", c.Year)
	}
	if want := filepath.Join(dir, "EBA.txt"); c.BulkFile != want {
		t.Errorf("bulk file: have %s, want %s", c.BulkFile, want)
	}
	if want := []string{filepath.Join(dir, "canada.csv")}; !reflect.DeepEqual(c.CanadianMixFiles, want) {
		t.Errorf("canadian mix files: have %v, want %v", c.CanadianMixFiles, want)
	}
	if want := []region.Axis{region.AxisBA, region.AxisUS}; !reflect.DeepEqual(c.Axes, want) {
		t.Errorf("axes: have %v, want %v", c.Axes, want)
	}
	if c.CanadianScenario != "Current Measures" {
		t.Errorf("scenario: have %q, want the default", c.CanadianScenario)
	}
	if c.Timeout != 30*time.Second {
		t.Errorf("timeout: have %v, want 30s", c.Timeout)
	}
	if c.Fetch == nil {
		t.Error("fetcher is not set")
	}
}

func TestSetConfigMissing(t *testing.T) {
	dir, err := ioutil.TempDir("", "elciutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	Cfg.Set("ConfigDir", dir)
	err = setConfig("missing")
	if code := lcierr.ExitCode(err); code != lcierr.ExitConfiguration {
		t.Errorf("have exit code %d (%v), want %d", code, err, lcierr.ExitConfiguration)
	}
}

func TestParseAxes(t *testing.T) {
	for _, test := range []struct {
		names []string
		want  []region.Axis
		err   bool
	}{
		{names: []string{"BA", "FERC", "US"}, want: []region.Axis{region.AxisBA, region.AxisFERC, region.AxisUS}},
		{names: []string{"US", "US"}, want: []region.Axis{region.AxisUS}},
		{names: []string{"eGRID"}, err: true},
		{names: nil, err: true},
	} {
		have, err := parseAxes(test.names)
		if (err != nil) != test.err {
			t.Errorf("%v: error %v", test.names, err)
			continue
		}
		if !reflect.DeepEqual(have, test.want) {
			t.Errorf("%v: have %v, want %v", test.names, have, test.want)
		}
	}
}

func TestCheckLogFile(t *testing.T) {
	if have := checkLogFile("", "out/elci.zip"); have != "out/elci.log" {
		t.Errorf("have %s, want out/elci.log", have)
	}
	if have := checkLogFile("run.log", "out/elci.zip"); have != "run.log" {
		t.Errorf("have %s, want run.log", have)
	}
}
