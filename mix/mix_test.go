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

package mix

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
	"github.com/spatialmodel/elci/trade"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestParseFuel(t *testing.T) {
	for _, f := range Fuels {
		have, err := ParseFuel(strings.ToLower(string(f)))
		if err != nil || have != f {
			t.Errorf("%s: have %s, %v", f, have, err)
		}
	}
	if f, _ := ParseFuel("Natural Gas"); f != Gas {
		t.Errorf("have %s, want GAS", f)
	}
	if _, err := ParseFuel("FUSION"); err == nil {
		t.Error("should be an error")
	}
	for i := 1; i < len(Fuels); i++ {
		if Fuels[i-1] >= Fuels[i] {
			t.Errorf("fuels are not in ascending order: %v", Fuels)
		}
	}
	if f, ok := EnergyFuturesFuel("Coal & Coke"); !ok || f != Coal {
		t.Errorf("have %s, %v", f, ok)
	}
	if _, ok := EnergyFuturesFuel("Total"); ok {
		t.Error("Total is not a fuel")
	}
}

func TestReadFuelMix(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	const data = `BA,FuelCategory,Generation_Ratio,Year,Generation
CISO,GAS,0.5,2016,300
CISO,SOLAR,0.5,2016,100
CISO,WIND,0.1,2015,100
CISO,FUSION,0.1,2016,100
BANC,HYDRO,1,2016,x
NYIS,NUCLEAR,1,2016,0
`
	var anomalies tally.Tally
	s, err := ReadFuelMix(strings.NewReader(data), 2016, reg, &anomalies)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 1 {
		t.Fatalf("have BAs %v, want [CISO]", s.BAs())
	}
	if s["CISO"][Gas] != 0.75 || s["CISO"][Solar] != 0.25 {
		t.Errorf("have %v", s["CISO"])
	}
	if anomalies.Count(MalformedRow) != 2 || anomalies.Count(EmptyMix) != 1 {
		t.Errorf("have anomalies %v", anomalies.Kinds())
	}

	_, err = ReadFuelMix(strings.NewReader("BA,FuelCategory,Generation_Ratio\nXXXX,GAS,1\n"), 2016, reg, &anomalies)
	var uerr lcierr.UnknownRegionError
	if !errors.As(err, &uerr) {
		t.Errorf("have error %v, want UnknownRegionError", err)
	}
}

func TestReadCanadianMix(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Run("legacy", func(t *testing.T) {
		const data = `Subregion,FuelCategory,Generation_Ratio,Year
Quebec,HYDRO,0.9,2016
HQT,WIND,0.1,2016
Ontario,NUCLEAR,0.6,2016
Ontario,HYDRO,0.4,2016
Atlantis,HYDRO,1,2016
`
		var anomalies tally.Tally
		s, schema, err := ReadCanadianMix(strings.NewReader(data), 2016, "", reg, &anomalies)
		if err != nil {
			t.Fatal(err)
		}
		if schema != Legacy {
			t.Errorf("have schema %v, want legacy", schema)
		}
		if different(s["HQT"][Hydro], 0.9, testTolerance) || different(s["IESO"][Nuclear], 0.6, testTolerance) {
			t.Errorf("have %v", s)
		}
		if anomalies.Count(UnknownSubregion) != 1 {
			t.Errorf("have anomalies %v", anomalies.Kinds())
		}
	})
	t.Run("energy futures", func(t *testing.T) {
		const data = `Scenario,Region,Variable,Type,Year,Value
Current Measures,Quebec,Hydro/Wave/Tidal,Electricity Generation,2016,180
Current Measures,Quebec,Wind,Electricity Generation,2016,20
Current Measures,Quebec,Total,Electricity Generation,2016,200
Current Measures,Quebec,Wind,Capacity,2016,5000
Evolving Policies,Quebec,Wind,Electricity Generation,2016,200
Current Measures,Quebec,Wind,Electricity Generation,2017,200
`
		var anomalies tally.Tally
		s, schema, err := ReadCanadianMix(strings.NewReader(data), 2016, DefaultScenario, reg, &anomalies)
		if err != nil {
			t.Fatal(err)
		}
		if schema != EnergyFutures {
			t.Errorf("have schema %v, want Energy Futures", schema)
		}
		if different(s["HQT"][Hydro], 0.9, testTolerance) || different(s["HQT"][Wind], 0.1, testTolerance) {
			t.Errorf("have %v", s["HQT"])
		}
	})
	t.Run("unknown schema", func(t *testing.T) {
		var anomalies tally.Tally
		if _, _, err := ReadCanadianMix(strings.NewReader("A,B\n"), 2016, "", reg, &anomalies); err == nil {
			t.Error("should be an error")
		}
	})
	t.Run("merge", func(t *testing.T) {
		log, hook := test.NewNullLogger()
		legacy := Shares{"HQT": {Hydro: 1}}
		ef := Shares{"HQT": {Wind: 1}, "IESO": {Nuclear: 1}}
		m := MergeCanadian(legacy, ef, log)
		if m["HQT"][Hydro] != 1 || m["IESO"][Nuclear] != 1 || len(m) != 2 {
			t.Errorf("have %v", m)
		}
		if len(hook.AllEntries()) != 1 {
			t.Errorf("have %d log entries, want 1", len(hook.AllEntries()))
		}
	})
}

func TestGenerationMix(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	b := &Builder{
		Regions: reg,
		Fuels: Shares{
			"CISO": {Gas: 0.5, Solar: 0.5 - 5e-6, Coal: 5e-6},
			"HQT":  {Hydro: 1},
		},
	}
	mixes, err := b.GenerationMixes()
	if err != nil {
		t.Fatal(err)
	}
	if len(mixes) != 1 || mixes[0].Region != "CISO" {
		t.Fatalf("have %d mixes, want only CISO", len(mixes))
	}
	m := mixes[0]
	if len(m.Shares) != 2 || m.Shares[0].Fuel != Gas || m.Shares[1].Fuel != Solar {
		t.Errorf("have shares %+v", m.Shares)
	}
	if err := m.Check(); err != nil {
		t.Error(err)
	}
	for _, sh := range m.Shares {
		if sh.Source != "CISO" {
			t.Errorf("generation mix share has source %s", sh.Source)
		}
	}

	bad := &Mix{Region: "X", Kind: Consumption, Shares: []Share{{Fraction: 0.5}}}
	var merr lcierr.MixNotNormalizedError
	if err := bad.Check(); !errors.As(err, &merr) {
		t.Errorf("have error %v, want MixNotNormalizedError", err)
	}
}

func TestConsumptionMix(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	tm := trade.NewMatrix(reg.BAs())
	if err := trade.AddBoundaryTrade(tm, []trade.Flow{{From: "HQT", To: "NYIS", MWh: 5000}}, reg); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("NYIS", "ISNE", 20000); err != nil {
		t.Fatal(err)
	}
	gen := map[string]float64{"NYIS": 100000, "ISNE": 80000}
	s, err := trade.Solve(tm, trade.BoundaryGeneration(tm, gen, reg), trade.InterconnectMask(tm.Index, reg))
	if err != nil {
		t.Fatal(err)
	}
	log, _ := test.NewNullLogger()
	b := &Builder{
		Regions: reg,
		Fuels: Shares{
			"NYIS": {Gas: 0.6, Nuclear: 0.4},
			"ISNE": {Gas: 1},
			"HQT":  {Hydro: 0.9, Wind: 0.1},
		},
		Generation: gen,
		Log:        log,
	}

	t.Run("canadian import", func(t *testing.T) {
		m, err := b.ConsumptionMix(s, "NYIS")
		if err != nil {
			t.Fatal(err)
		}
		const hq = 5000. / 105000
		if v := m.BySource()["HQT"]; different(v, hq, testTolerance) {
			t.Errorf("HQT share: have %g, want %g", v, hq)
		}
		if v := m.Fraction("HQT", Hydro); different(v, hq*0.9, testTolerance) {
			t.Errorf("HQT hydro: have %g, want %g", v, hq*0.9)
		}
		if v := m.Fraction("NYIS", Gas); different(v, (1-hq)*0.6, testTolerance) {
			t.Errorf("NYIS gas: have %g, want %g", v, (1-hq)*0.6)
		}
		if src := m.Sources(); len(src) != 2 || src[0] != "HQT" || src[1] != "NYIS" {
			t.Errorf("have sources %v", src)
		}
	})

	mixes, err := b.ConsumptionMixes(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := Check(mixes); err != nil {
		t.Fatal(err)
	}
	if len(mixes) != 2 {
		t.Fatalf("have %d consumption mixes, want 2", len(mixes))
	}

	t.Run("downstream", func(t *testing.T) {
		m := mixes[0]
		if m.Region != "ISNE" {
			t.Fatalf("have region %s, want ISNE", m.Region)
		}
		// ISNE consumes 20000/100000 imports from NYIS, which itself
		// carries 5000/105000 from HQT.
		nyisShare := 20000. / 100000
		hq := nyisShare * 5000 / 105000
		if v := m.BySource()["HQT"]; different(v, hq, testTolerance) {
			t.Errorf("HQT share: have %g, want %g", v, hq)
		}
		if v := m.BySource()["ISNE"]; different(v, 0.8, testTolerance) {
			t.Errorf("ISNE share: have %g, want 0.8", v)
		}
	})

	t.Run("rollup", func(t *testing.T) {
		ferc, err := b.Rollup(mixes, region.AxisFERC)
		if err != nil {
			t.Fatal(err)
		}
		if len(ferc) != 2 || ferc[0].Region != "ISO-NE" || ferc[1].Region != "NYISO" {
			t.Fatalf("have %d FERC mixes", len(ferc))
		}
		us, err := b.Rollup(mixes, region.AxisUS)
		if err != nil {
			t.Fatal(err)
		}
		if len(us) != 1 {
			t.Fatalf("have %d U.S. mixes", len(us))
		}
		want := (mixes[0].Fraction("ISNE", Gas)*80000 + mixes[1].Fraction("ISNE", Gas)*100000) / 180000
		if v := us[0].Fraction("ISNE", Gas); different(v, want, testTolerance) {
			t.Errorf("have %g, want %g", v, want)
		}
		if err := Check(us); err != nil {
			t.Error(err)
		}
		if _, err := b.Rollup(us, region.AxisUS); err == nil {
			t.Error("rolling up a non-BA mix should be an error")
		}
	})

	t.Run("generation rollup", func(t *testing.T) {
		g, err := b.GenerationMixes()
		if err != nil {
			t.Fatal(err)
		}
		us, err := b.Rollup(g, region.AxisUS)
		if err != nil {
			t.Fatal(err)
		}
		for _, sh := range us[0].Shares {
			if sh.Source != reg.US() {
				t.Errorf("have source %s, want %s", sh.Source, reg.US())
			}
		}
		want := (0.6*100000 + 80000) / 180000
		if v := us[0].Fraction(reg.US(), Gas); different(v, want, testTolerance) {
			t.Errorf("have %g, want %g", v, want)
		}
		fs, err := b.FuelShares(g, region.AxisUS)
		if err != nil {
			t.Fatal(err)
		}
		if v := fs[reg.US()]["GAS"]; different(v, want, testTolerance) {
			t.Errorf("have %g, want %g", v, want)
		}
	})

	t.Run("missing fuel mix", func(t *testing.T) {
		b2 := &Builder{Regions: reg, Fuels: Shares{"NYIS": {Gas: 1}}, Log: log}
		m, err := b2.ConsumptionMix(s, "NYIS")
		if err != nil {
			t.Fatal(err)
		}
		if len(m.Shares) != 1 || different(m.Shares[0].Fraction, 1, testTolerance) {
			t.Errorf("have %+v", m.Shares)
		}
		if b2.Anomalies.Count(NoFuelMix) != 1 {
			t.Errorf("have anomalies %v", b2.Anomalies.Kinds())
		}
	})
}
