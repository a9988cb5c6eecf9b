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

package csvtable

import (
	"errors"
	"strings"
	"testing"

	"github.com/spatialmodel/elci/lcierr"
)

func TestRead(t *testing.T) {
	const data = "\uFEFFBA, FuelCategory,Generation_Ratio,Year\n" +
		"CISO,GAS,0.5,2016\n" +
		"CISO,SOLAR,\"1,250\",2016.0\n" +
		"CISO,WIND,x\n"
	tbl, err := Read(strings.NewReader(data), "mix.csv", "BA", "FuelCategory")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("have %d rows, want 3", tbl.Len())
	}
	if !tbl.HasAll("BA", "Year") || tbl.Has("Generation") {
		t.Errorf("have header %v", tbl.Header)
	}

	r := tbl.Row(0)
	if r.String("FuelCategory") != "GAS" {
		t.Errorf("have %q, want GAS", r.String("FuelCategory"))
	}
	if v, err := r.Float("Generation_Ratio"); err != nil || v != 0.5 {
		t.Errorf("have %g (%v), want 0.5", v, err)
	}

	r = tbl.Row(1)
	if v, err := r.Float("Generation_Ratio"); err != nil || v != 1250 {
		t.Errorf("have %g (%v), want 1250", v, err)
	}
	if y, err := r.Int("Year"); err != nil || y != 2016 {
		t.Errorf("have %d (%v), want 2016", y, err)
	}

	r = tbl.Row(2)
	_, err = r.Float("Generation_Ratio")
	var perr lcierr.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("have error %v, want ParseError", err)
	}
	if perr.Line != 4 || perr.Source != "mix.csv" {
		t.Errorf("have %+v", perr)
	}
	if r.String("Year") != "" {
		t.Error("short rows should give empty values")
	}
}

func TestReadMissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("A,B\n1,2\n"), "x.csv", "A", "C")
	if err == nil {
		t.Error("should be an error")
	}
}
