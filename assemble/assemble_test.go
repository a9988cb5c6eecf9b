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

package assemble

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/elci/distribution"
	"github.com/spatialmodel/elci/inventory"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/olca"
	"github.com/spatialmodel/elci/region"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

const hq = 5000. / 105000

var co2 = inventory.Flow{
	UUID:        "b6f010fb-a764-3063-af2d-bcb8309a97b7",
	Name:        "Carbon dioxide",
	Compartment: "emission/air",
	Property:    inventory.Mass,
}

var water = inventory.Flow{
	UUID:        "e0b5b4f8-e5b1-4e63-8c8a-5c2e1a46c1b0",
	Name:        "Water, fresh",
	Compartment: "resource/water",
	Property:    inventory.Volume,
}

// testAssembler returns an assembler holding the processes of NYIS,
// ISNE and the Canadian BA HQT, which supplies NYIS.
func testAssembler(t *testing.T, proxy bool) *Assembler {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	log, _ := test.NewNullLogger()
	a := &Assembler{
		Regions: reg,
		Year:    2016,
		Version: "1.0.1",
		Inventories: inventory.Inventories{
			{Region: "NYIS", Fuel: mix.Gas}: &inventory.Inventory{
				Region: "NYIS", Fuel: mix.Gas, Construction: 1e-6,
				Entries: []inventory.Entry{
					{Flow: co2, Amount: unit.New(450, unit.Kilogram)},
					{Flow: water, Amount: unit.New(2, unit.Meter3)},
				},
			},
		},
		Log: log,
	}
	gen := []*mix.Mix{
		{Region: "ISNE", Axis: region.AxisBA, Kind: mix.Generation, Shares: []mix.Share{
			{Source: "ISNE", Fuel: mix.Gas, Fraction: 1},
		}},
		{Region: "NYIS", Axis: region.AxisBA, Kind: mix.Generation, Shares: []mix.Share{
			{Source: "NYIS", Fuel: mix.Gas, Fraction: 0.6},
			{Source: "NYIS", Fuel: mix.Nuclear, Fraction: 0.4},
		}},
	}
	grid := []*mix.Mix{
		{Region: "ISNE", Axis: region.AxisBA, Kind: mix.Consumption, Shares: []mix.Share{
			{Source: "ISNE", Fuel: mix.Gas, Fraction: 0.8},
			{Source: "NYIS", Fuel: mix.Gas, Fraction: 0.2},
		}},
		{Region: "NYIS", Axis: region.AxisBA, Kind: mix.Consumption, Shares: []mix.Share{
			{Source: "HQT", Fuel: mix.Hydro, Fraction: 0.9 * hq},
			{Source: "HQT", Fuel: mix.Wind, Fraction: 0.1 * hq},
			{Source: "NYIS", Fuel: mix.Gas, Fraction: 0.6 * (1 - hq)},
			{Source: "NYIS", Fuel: mix.Nuclear, Fraction: 0.4 * (1 - hq)},
		}},
		{Region: "US", Axis: region.AxisUS, Kind: mix.Consumption, Shares: []mix.Share{
			{Source: "ISNE", Fuel: mix.Gas, Fraction: 0.5},
			{Source: "NYIS", Fuel: mix.Nuclear, Fraction: 0.5},
		}},
	}
	for _, m := range gen {
		if err := a.AddGenerationMix(m); err != nil {
			t.Fatal(err)
		}
	}
	for _, m := range grid {
		if err := a.AddConsumptionMix(m); err != nil {
			t.Fatal(err)
		}
		u, err := distribution.AtUser(m, 0.05)
		if err != nil {
			t.Fatal(err)
		}
		if err := a.AddUserMix(u); err != nil {
			t.Fatal(err)
		}
	}
	if proxy {
		average := inventory.Inventories{
			{Region: "US", Fuel: mix.Hydro}: &inventory.Inventory{
				Region: "US", Fuel: mix.Hydro,
				Entries: []inventory.Entry{{Flow: co2, Amount: unit.New(10, unit.Kilogram)}},
			},
		}
		p, err := inventory.CanadianProxy("HQT", "US", map[mix.Fuel]float64{mix.Hydro: 0.9, mix.Wind: 0.1}, average, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := a.AddCanadianProxy(p); err != nil {
			t.Fatal(err)
		}
	}
	return a
}

func byName(records []*Record) map[string]*Record {
	o := make(map[string]*Record)
	for _, r := range records {
		o[r.Name()] = r
	}
	return o
}

func TestNames(t *testing.T) {
	for have, want := range map[string]string{
		GenerationName(mix.Coal, "CISO"):            "Electricity - COAL - CISO",
		GenerationMixName("CISO"):                   "Electricity; at grid; generation mix - CISO",
		ConsumptionMixName("CISO", region.AxisBA):   "Electricity; at grid; consumption mix - CISO - BA",
		ConsumptionMixName("WECC", region.AxisFERC): "Electricity; at grid; consumption mix - WECC - FERC",
		UserMixName("US", region.AxisUS):            "Electricity; at user; consumption mix - US - US",
		ConstructionName(mix.Wind):                  "power plant construction - WIND",
	} {
		if have != want {
			t.Errorf("have %q, want %q", have, want)
		}
	}
}

func TestBuild(t *testing.T) {
	a := testAssembler(t, true)
	pkg, records, err := a.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(pkg.Processes) != len(records) {
		t.Errorf("have %d processes and %d records", len(pkg.Processes), len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].Stage > records[i].Stage {
			t.Errorf("%s emitted before %s", records[i-1].Name(), records[i].Name())
		}
	}
	for _, r := range records {
		if r.State() != Final {
			t.Errorf("%s: have state %s, want final", r.Name(), r.State())
		}
	}
	p := byName(records)

	t.Run("generation", func(t *testing.T) {
		r := p["Electricity - GAS - NYIS"]
		if r == nil {
			t.Fatal("missing generation process")
		}
		var construction, water, co2 *olca.Exchange
		for _, e := range r.Process.Exchanges {
			switch e.Flow.Name {
			case ConstructionFlow:
				construction = e
			case "Water, fresh":
				water = e
			case "Carbon dioxide":
				co2 = e
			}
		}
		if construction == nil {
			t.Fatal("missing construction input")
		}
		if construction.DefaultProvider == nil ||
			construction.DefaultProvider.ID != p["power plant construction - GAS"].Process.ID {
			t.Errorf("construction input is not linked: %+v", construction)
		}
		if construction.Amount != 1e-6 {
			t.Errorf("have construction %g, want 1e-6", construction.Amount)
		}
		if co2 == nil || co2.Input || co2.Amount != 450 || co2.Unit.Name != "kg" {
			t.Errorf("bad emission exchange %+v", co2)
		}
		if water == nil || !water.Input || water.Unit.Name != "m3" {
			t.Errorf("bad resource exchange %+v", water)
		}
		if n := a.Anomalies.Count(NoInventory); n != 2 {
			t.Errorf("have %d generation processes without inventory, want 2", n)
		}
	})

	t.Run("canadian import", func(t *testing.T) {
		r := p[ConsumptionMixName("NYIS", region.AxisBA)]
		proxy := p[GenerationMixName("HQT")]
		if proxy.Stage != CanadianProxy {
			t.Fatalf("HQT process has stage %s", proxy.Stage)
		}
		if proxy.Process.DQEntry != inventory.ProxyDQI || proxy.Process.DQSystem == nil {
			t.Errorf("proxy has no data quality entry")
		}
		var found bool
		for _, e := range r.Process.Exchanges {
			if e.DefaultProvider != nil && e.DefaultProvider.ID == proxy.Process.ID {
				found = true
				if different(e.Amount, hq, testTolerance) {
					t.Errorf("HQT input: have %g, want %g", e.Amount, hq)
				}
			}
		}
		if !found {
			t.Errorf("NYIS consumption mix does not use the HQT proxy")
		}
	})

	t.Run("at user", func(t *testing.T) {
		r := p[UserMixName("NYIS", region.AxisBA)]
		grid := p[ConsumptionMixName("NYIS", region.AxisBA)]
		if len(r.Process.Exchanges) != 2 {
			t.Fatalf("have %d exchanges, want 2", len(r.Process.Exchanges))
		}
		in := r.Process.Exchanges[1]
		if different(in.Amount, 1/0.95, testTolerance) {
			t.Errorf("have %g, want %g", in.Amount, 1/0.95)
		}
		if in.DefaultProvider.ID != grid.Process.ID {
			t.Errorf("at-user mix is not provided by the at-grid mix")
		}
		ref := r.Process.Reference()
		if ref.Amount != 1 || ref.Unit.Name != "MWh" || ref.Flow.Name != ElectricityFlow {
			t.Errorf("bad reference %+v", ref)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		_, again, err := testAssembler(t, true).Build()
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range again {
			if r.Process.ID != records[i].Process.ID {
				t.Errorf("%s: id changed", r.Name())
			}
		}
	})

	t.Run("orphans", func(t *testing.T) {
		orphans, err := Validate(records, a.Regions)
		if err != nil {
			t.Fatal(err)
		}
		if len(orphans) != 0 {
			t.Errorf("have orphans %v", orphans)
		}
	})
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing proxy", func(t *testing.T) {
		_, _, err := testAssembler(t, false).Build()
		var perr lcierr.UnresolvedProviderError
		if !errors.As(err, &perr) {
			t.Fatalf("have %v, want UnresolvedProviderError", err)
		}
		if perr.Provider != GenerationMixName("HQT") {
			t.Errorf("have provider %s", perr.Provider)
		}
		if lcierr.ExitCode(err) != lcierr.ExitInvariant {
			t.Errorf("have exit code %d", lcierr.ExitCode(err))
		}
	})
	t.Run("version", func(t *testing.T) {
		a := testAssembler(t, true)
		a.Version = "v1.0"
		_, _, err := a.Build()
		var cerr lcierr.ConfigurationError
		if !errors.As(err, &cerr) {
			t.Errorf("have %v, want ConfigurationError", err)
		}
	})
	t.Run("not normalized", func(t *testing.T) {
		a := testAssembler(t, true)
		err := a.AddGenerationMix(&mix.Mix{Region: "CISO", Axis: region.AxisBA, Kind: mix.Generation,
			Shares: []mix.Share{{Source: "CISO", Fuel: mix.Gas, Fraction: 0.9}}})
		var merr lcierr.MixNotNormalizedError
		if !errors.As(err, &merr) {
			t.Errorf("have %v, want MixNotNormalizedError", err)
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		a := testAssembler(t, true)
		if err := a.AddGenerationMix(&mix.Mix{Region: "NYIS", Axis: region.AxisBA, Kind: mix.Generation,
			Shares: []mix.Share{{Source: "NYIS", Fuel: mix.Gas, Fraction: 1}}}); err == nil {
			t.Error("duplicate process should be an error")
		}
	})
}

func TestValidate(t *testing.T) {
	build := func(t *testing.T) (*Assembler, map[string]*Record, []*Record) {
		a := testAssembler(t, true)
		_, records, err := a.Build()
		if err != nil {
			t.Fatal(err)
		}
		return a, byName(records), records
	}
	invariant := func(t *testing.T, err error, check string) {
		var ierr lcierr.InvariantError
		if !errors.As(err, &ierr) {
			t.Fatalf("have %v, want InvariantError", err)
		}
		if ierr.Check != check {
			t.Errorf("have check %q, want %q", ierr.Check, check)
		}
	}

	t.Run("duplicate flow", func(t *testing.T) {
		a, p, records := build(t)
		r := p["Electricity - GAS - NYIS"]
		e := *r.Process.Exchanges[len(r.Process.Exchanges)-1]
		r.add(&e, "")
		_, err := Validate(records, a.Regions)
		invariant(t, err, "unique elementary flows")
	})
	t.Run("level", func(t *testing.T) {
		a, p, records := build(t)
		r := p[UserMixName("NYIS", region.AxisBA)]
		r.Process.Exchanges[1].DefaultProvider = p["Electricity - GAS - NYIS"].Process.Ref()
		_, err := Validate(records, a.Regions)
		invariant(t, err, "provider graph")
	})
	t.Run("construction", func(t *testing.T) {
		a, p, records := build(t)
		r := p["Electricity - NUCLEAR - NYIS"]
		r.Process.Exchanges[1].DefaultProvider = nil
		_, err := Validate(records, a.Regions)
		var perr lcierr.UnresolvedProviderError
		if !errors.As(err, &perr) {
			t.Errorf("have %v, want UnresolvedProviderError", err)
		}
	})
	t.Run("coverage", func(t *testing.T) {
		a, p, records := build(t)
		var o []*Record
		for _, r := range records {
			if r != p[UserMixName("US", region.AxisUS)] {
				o = append(o, r)
			}
		}
		_, err := Validate(o, a.Regions)
		invariant(t, err, "at-user coverage")
	})
	t.Run("orphan", func(t *testing.T) {
		a := testAssembler(t, true)
		if err := a.AddGeneration("ISNE", mix.Coal); err != nil {
			t.Fatal(err)
		}
		_, records, err := a.Build()
		if err != nil {
			t.Fatal(err)
		}
		orphans, err := Validate(records, a.Regions)
		if err != nil {
			t.Fatal(err)
		}
		if len(orphans) != 1 || orphans[0].Process != "Electricity - COAL - ISNE" {
			t.Errorf("have orphans %v", orphans)
		}
	})
}
