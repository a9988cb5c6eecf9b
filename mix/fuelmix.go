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
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/internal/csvtable"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/region"
)

// Anomaly kinds recorded while reading fuel mixes.
const (
	MalformedRow     = "malformed fuel mix row"
	EmptyMix         = "fuel mix without generation"
	UnknownSubregion = "unknown Canadian subregion"
)

// Shares holds the fuel fractions of the generation of each BA, in the
// format map[BA]map[fuel]fraction.
type Shares map[string]map[Fuel]float64

// BAs returns the BAs with fuel fractions, in ascending order.
func (s Shares) BAs() []string {
	o := make([]string, 0, len(s))
	for ba := range s {
		o = append(o, ba)
	}
	sort.Strings(o)
	return o
}

// normalize scales the fractions of each BA to sum to one and removes
// BAs without any generation.
func (s Shares) normalize(anomalies *tally.Tally) {
	for _, ba := range s.BAs() {
		var sum float64
		for _, v := range s[ba] {
			sum += v
		}
		if !(sum > 0) {
			anomalies.Add(EmptyMix, ba)
			delete(s, ba)
			continue
		}
		for f, v := range s[ba] {
			s[ba][f] = v / sum
		}
	}
}

func (s Shares) add(ba string, f Fuel, v float64) {
	if s[ba] == nil {
		s[ba] = make(map[Fuel]float64)
	}
	s[ba][f] += v
}

// ReadFuelMix reads the fuel fractions of U.S. BAs from a table with
// columns BA, FuelCategory and Generation_Ratio, and optionally Year
// and Generation. Rows for other years are ignored. When the table has
// a Generation column, the fractions are computed from it. Malformed
// rows are skipped and recorded in anomalies; a BA code that is not in
// reg causes an error.
func ReadFuelMix(r io.Reader, year int, reg *region.Registry, anomalies *tally.Tally) (Shares, error) {
	t, err := csvtable.Read(r, "fuel mix", "BA", "FuelCategory", "Generation_Ratio")
	if err != nil {
		return nil, fmt.Errorf("mix: %v", err)
	}
	hasYear, hasGen := t.Has("Year"), t.Has("Generation")
	s := make(Shares)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		if hasYear {
			y, err := row.Int("Year")
			if err != nil {
				anomalies.Add(MalformedRow, err.Error())
				continue
			}
			if y != year {
				continue
			}
		}
		ba := row.String("BA")
		if _, err := reg.Lookup(ba); err != nil {
			return nil, fmt.Errorf("mix: fuel mix line %d: %w", row.Line(), err)
		}
		f, err := ParseFuel(row.String("FuelCategory"))
		if err != nil {
			anomalies.Add(MalformedRow, row.Error(err).Error())
			continue
		}
		col := "Generation_Ratio"
		if hasGen {
			col = "Generation"
		}
		v, err := row.Float(col)
		if err != nil {
			anomalies.Add(MalformedRow, err.Error())
			continue
		}
		if v < 0 {
			anomalies.Add(MalformedRow, row.Error(fmt.Errorf("negative %s", col)).Error())
			continue
		}
		s.add(ba, f, v)
	}
	s.normalize(anomalies)
	return s, nil
}

// Schema is the layout of a Canadian fuel mix table.
type Schema int

const (
	// Legacy tables have columns Subregion, FuelCategory,
	// Generation_Ratio and Year.
	Legacy Schema = iota + 1

	// EnergyFutures tables hold the Canada Energy Regulator Energy
	// Futures data, with columns Scenario, Region, Variable, Type, Year
	// and Value.
	EnergyFutures
)

func (s Schema) String() string {
	switch s {
	case Legacy:
		return "legacy"
	case EnergyFutures:
		return "Energy Futures"
	default:
		return fmt.Sprintf("Schema(%d)", int(s))
	}
}

var (
	legacyColumns        = []string{"Subregion", "FuelCategory", "Generation_Ratio", "Year"}
	energyFuturesColumns = []string{"Scenario", "Region", "Variable", "Type", "Year", "Value"}
)

// DefaultScenario is the Energy Futures scenario used when none is
// specified.
const DefaultScenario = "Current Measures"

// ReadCanadianMix reads the fuel fractions of the Canadian BAs for the
// given year from a table in either Schema, which is detected from the
// header row. For EnergyFutures tables, only rows for the given
// scenario and a generation Type are used.
func ReadCanadianMix(r io.Reader, year int, scenario string, reg *region.Registry, anomalies *tally.Tally) (Shares, Schema, error) {
	t, err := csvtable.Read(r, "canadian mix")
	if err != nil {
		return nil, 0, fmt.Errorf("mix: %v", err)
	}
	var schema Schema
	switch {
	case t.HasAll(legacyColumns...):
		schema = Legacy
	case t.HasAll(energyFuturesColumns...):
		schema = EnergyFutures
	default:
		return nil, 0, fmt.Errorf("mix: canadian mix has unrecognized columns %v", t.Header)
	}
	if scenario == "" {
		scenario = DefaultScenario
	}
	canadianBA := func(s string) (string, bool) {
		if reg.IsCanadian(s) {
			return s, true
		}
		return reg.CanadianBAForProvince(s)
	}

	s := make(Shares)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		y, err := row.Int("Year")
		if err != nil {
			anomalies.Add(MalformedRow, err.Error())
			continue
		}
		if y != year {
			continue
		}
		var (
			place, col string
			f          Fuel
		)
		switch schema {
		case Legacy:
			place, col = row.String("Subregion"), "Generation_Ratio"
			if f, err = ParseFuel(row.String("FuelCategory")); err != nil {
				anomalies.Add(MalformedRow, row.Error(err).Error())
				continue
			}
		case EnergyFutures:
			if !strings.EqualFold(row.String("Scenario"), scenario) ||
				!strings.Contains(strings.ToLower(row.String("Type")), "generation") {
				continue
			}
			var ok bool
			if f, ok = EnergyFuturesFuel(row.String("Variable")); !ok {
				continue
			}
			place, col = row.String("Region"), "Value"
		}
		ba, ok := canadianBA(place)
		if !ok {
			anomalies.Add(UnknownSubregion, place)
			continue
		}
		v, err := row.Float(col)
		if err != nil {
			anomalies.Add(MalformedRow, err.Error())
			continue
		}
		if v < 0 {
			anomalies.Add(MalformedRow, row.Error(fmt.Errorf("negative %s", col)).Error())
			continue
		}
		s.add(ba, f, v)
	}
	s.normalize(anomalies)
	return s, schema, nil
}

// MergeCanadian combines Canadian fuel fractions read from tables of
// different schemas. Legacy fractions take precedence for any BA that
// is in both.
func MergeCanadian(legacy, energyFutures Shares, log logrus.FieldLogger) Shares {
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := make(Shares, len(legacy)+len(energyFutures))
	for _, ba := range energyFutures.BAs() {
		if _, ok := legacy[ba]; ok {
			log.WithField("ba", ba).Warn("mix: Canadian mix in both legacy and Energy Futures data; using legacy")
			continue
		}
		o[ba] = energyFutures[ba]
	}
	for ba, f := range legacy {
		o[ba] = f
	}
	return o
}
