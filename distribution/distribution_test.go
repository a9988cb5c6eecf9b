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

package distribution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/region"
	"github.com/tealeg/xlsx"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// writeProfile writes a state electricity profile workbook with the
// given losses, total disposition and direct use for 2015 and 2016.
func writeProfile(t *testing.T, path string, values [2][3]float64) {
	f := xlsx.NewFile()
	s, err := f.AddSheet("Table 10")
	if err != nil {
		t.Fatal(err)
	}
	s.AddRow().AddCell().SetString("Supply and disposition of electricity")
	header := s.AddRow()
	header.AddCell().SetString("Category")
	header.AddCell().SetInt(2015)
	header.AddCell().SetInt(2016)
	labels := []string{"Estimated losses", "Total disposition", "Direct use (megawatthours)"}
	for i, l := range labels {
		r := s.AddRow()
		r.AddCell().SetString(l)
		for y := 0; y < 2; y++ {
			r.AddCell().SetFloat(values[y][i])
		}
	}
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}
}

func TestStateLoss(t *testing.T) {
	dir, err := ioutil.TempDir("", "distribution")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	writeProfile(t, filepath.Join(dir, "NY.xlsx"), [2][3]float64{{60, 1100, 100}, {50, 1100, 100}})
	var remote bytes.Buffer
	{
		path := filepath.Join(dir, "remote.xlsx")
		writeProfile(t, path, [2][3]float64{{20, 1000, 0}, {30, 1000, 0}})
		b, err := ioutil.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		remote.Write(b)
	}
	var calls int
	w := &Workbooks{
		Dir: filepath.Join(dir, "profiles"),
		URL: "https://example.com/{state}.xlsx",
		Fetch: func(ctx context.Context, url string) (io.ReadCloser, error) {
			calls++
			if url == "https://example.com/VT.xlsx" {
				return ioutil.NopCloser(bytes.NewReader(remote.Bytes())), nil
			}
			return nil, fmt.Errorf("not found")
		},
	}
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		w2 := &Workbooks{Dir: dir, Sheet: "Table 10"}
		l, err := w2.StateLoss(ctx, "NY", 2016)
		if err != nil {
			t.Fatal(err)
		}
		if different(l, 0.05, testTolerance) {
			t.Errorf("have %g, want 0.05", l)
		}
		// 2018 is missing, so 2016 is used.
		l, err = w2.StateLoss(ctx, "ny", 2018)
		if err != nil {
			t.Fatal(err)
		}
		if different(l, 0.05, testTolerance) {
			t.Errorf("have %g, want 0.05", l)
		}
		l, err = w2.StateLoss(ctx, "NY", 2015)
		if err != nil {
			t.Fatal(err)
		}
		if different(l, 0.06, testTolerance) {
			t.Errorf("have %g, want 0.06", l)
		}
		if _, err := w2.StateLoss(ctx, "NY", 2010); err == nil {
			t.Error("should be an error")
		}
	})

	t.Run("download", func(t *testing.T) {
		l, err := w.StateLoss(ctx, "VT", 2016)
		if err != nil {
			t.Fatal(err)
		}
		if different(l, 0.03, testTolerance) {
			t.Errorf("have %g, want 0.03", l)
		}
		if _, err := os.Stat(w.Path("VT")); err != nil {
			t.Errorf("downloaded workbook should be saved: %v", err)
		}
		if calls != 1 {
			t.Errorf("have %d downloads, want 1", calls)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		_, err := w.StateLoss(ctx, "ME", 2016)
		var derr lcierr.DataUnavailableError
		if !errors.As(err, &derr) {
			t.Errorf("have error %v, want DataUnavailableError", err)
		}
	})
}

func TestLosses(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	var anomalies tally.Tally
	weights, err := ReadStateGeneration(strings.NewReader(`BA,State,Generation
ISNE,MA,300
ISNE,CT,100
NYIS,NY,400
NYIS,NY,x
`), reg, &anomalies)
	if err != nil {
		t.Fatal(err)
	}
	if anomalies.Total() != 1 {
		t.Errorf("have %d anomalies, want 1", anomalies.Total())
	}
	l := &Losses{
		Regions: reg,
		State:   map[string]float64{"MA": 0.04, "CT": 0.08, "NY": 0.05},
		Weights: weights,
	}
	tests := []struct {
		code string
		axis region.Axis
		want float64
	}{
		{code: "ISNE", axis: region.AxisBA, want: 0.05},
		{code: "ISO-NE", axis: region.AxisFERC, want: 0.05},
		{code: "NYIS", axis: region.AxisBA, want: 0.05},
		{code: "US", axis: region.AxisUS, want: (0.04*300 + 0.08*100 + 0.05*400) / 800},
		// CISO has no state data.
		{code: "CISO", axis: region.AxisBA, want: (0.04*300 + 0.08*100 + 0.05*400) / 800},
	}
	for _, test := range tests {
		t.Run(test.code, func(t *testing.T) {
			have, err := l.Loss(test.code, test.axis)
			if err != nil {
				t.Fatal(err)
			}
			if different(have, test.want, testTolerance) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
	if _, err := l.Loss("XXXX", region.AxisBA); err == nil {
		t.Error("should be an error")
	}
}

// The at-user mix scales the at-grid amounts up by the loss.
func TestAtUser(t *testing.T) {
	grid := &mix.Mix{
		Region: "NYIS",
		Axis:   region.AxisBA,
		Kind:   mix.Consumption,
		Shares: []mix.Share{
			{Source: "HQT", Fuel: mix.Hydro, Fraction: 0.25},
			{Source: "NYIS", Fuel: mix.Gas, Fraction: 0.75},
		},
	}
	u, err := AtUser(grid, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if different(u.Total(), 1/0.95, testTolerance) {
		t.Errorf("have total %g, want %g", u.Total(), 1/0.95)
	}
	if different(u.Amount(0), 0.25/0.95, testTolerance) {
		t.Errorf("have %g, want %g", u.Amount(0), 0.25/0.95)
	}
	if _, err := AtUser(grid, 1); err == nil {
		t.Error("should be an error")
	}
	grid.Kind = mix.Generation
	if _, err := AtUser(grid, 0.05); err == nil {
		t.Error("should be an error")
	}
}
