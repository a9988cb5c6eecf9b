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

// Package inventory holds the per-MWh emission and resource inventories
// of electricity generation by region and fuel, and synthesizes
// inventories for Canadian generation from U.S. averages.
package inventory

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/elci/internal/csvtable"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/region"
)

// Construction is the name of the input flow for power plant
// construction.
const Construction = "power plant construction"

// Anomaly kinds recorded while reading inventories.
const (
	MalformedRow  = "malformed inventory row"
	DuplicateFlow = "duplicate flow"
)

// Flow is a flow that crosses the boundary of a process.
type Flow struct {
	UUID        string
	Name        string
	Compartment string
	Property    Property
}

// FlowKey identifies an elementary flow within a process.
type FlowKey struct {
	UUID, Compartment string
}

// Key returns the identity of the flow within a process.
func (f Flow) Key() FlowKey { return FlowKey{UUID: f.UUID, Compartment: f.Compartment} }

// Entry is the amount of a flow per MWh of generation.
type Entry struct {
	Flow   Flow
	Amount *unit.Unit
}

// Inventory is the per-MWh inventory of generating electricity from
// one fuel in one region.
type Inventory struct {
	Region string
	Fuel   mix.Fuel

	// Entries are sorted by flow name, compartment and UUID, and are
	// unique by flow key.
	Entries []Entry

	// Construction is the number of power plants per MWh.
	Construction float64
}

// Key identifies an inventory.
type Key struct {
	Region string
	Fuel   mix.Fuel
}

// Inventories holds inventories by region and fuel.
type Inventories map[Key]*Inventory

// Get returns the inventory for the given region and fuel.
func (inv Inventories) Get(region string, fuel mix.Fuel) (*Inventory, bool) {
	i, ok := inv[Key{Region: region, Fuel: fuel}]
	return i, ok
}

// Keys returns the keys of the inventories ordered by region and fuel.
func (inv Inventories) Keys() []Key {
	o := make([]Key, 0, len(inv))
	for k := range inv {
		o = append(o, k)
	}
	sort.Slice(o, func(i, j int) bool {
		if o[i].Region != o[j].Region {
			return o[i].Region < o[j].Region
		}
		return o[i].Fuel < o[j].Fuel
	})
	return o
}

// add adds amount of flow f to the receiver, summing the amounts of
// flows with the same key. It returns false if the flow was already
// present.
func (i *Inventory) add(f Flow, amount *unit.Unit) (bool, error) {
	for j, e := range i.Entries {
		if e.Flow.Key() == f.Key() {
			if !unit.DimensionsMatch(e.Amount, amount) {
				return false, fmt.Errorf("inventory: %s %s: flow %s has inconsistent units", i.Region, i.Fuel, f.Name)
			}
			i.Entries[j].Amount = unit.Add(e.Amount, amount)
			return false, nil
		}
	}
	i.Entries = append(i.Entries, Entry{Flow: f, Amount: amount.Clone()})
	return true, nil
}

func (i *Inventory) sort() {
	sort.Slice(i.Entries, func(a, b int) bool {
		fa, fb := i.Entries[a].Flow, i.Entries[b].Flow
		if fa.Name != fb.Name {
			return fa.Name < fb.Name
		}
		if fa.Compartment != fb.Compartment {
			return fa.Compartment < fb.Compartment
		}
		return fa.UUID < fb.UUID
	})
}

// Scaled returns a copy of the receiver with every amount multiplied
// by f.
func (i *Inventory) Scaled(f float64) *Inventory {
	o := &Inventory{Region: i.Region, Fuel: i.Fuel, Construction: i.Construction * f}
	for _, e := range i.Entries {
		o.Entries = append(o.Entries, Entry{Flow: e.Flow, Amount: unit.Mul(e.Amount, unit.New(f, unit.Dimless))})
	}
	return o
}

// ReadGeneration reads generation inventories from a table with
// columns Region, FuelCategory, FlowUUID, FlowName, Compartment, Unit
// and Amount, where Amount is per MWh generated. Rows for the
// power plant construction flow set the construction amount. Repeated
// flows are summed and recorded in anomalies. Region codes that are
// not in reg cause an error.
func ReadGeneration(r io.Reader, source string, reg *region.Registry, anomalies *tally.Tally) (Inventories, error) {
	t, err := csvtable.Read(r, source, "Region", "FuelCategory", "FlowUUID", "FlowName", "Compartment", "Unit", "Amount")
	if err != nil {
		return nil, fmt.Errorf("inventory: %v", err)
	}
	inv := make(Inventories)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		rg := row.String("Region")
		if _, err := reg.Lookup(rg); err != nil {
			return nil, fmt.Errorf("inventory: %s line %d: %w", source, row.Line(), err)
		}
		fuel, err := mix.ParseFuel(row.String("FuelCategory"))
		if err != nil {
			anomalies.Add(MalformedRow, row.Error(err).Error())
			continue
		}
		v, err := row.Float("Amount")
		if err != nil {
			anomalies.Add(MalformedRow, err.Error())
			continue
		}
		k := Key{Region: rg, Fuel: fuel}
		if inv[k] == nil {
			inv[k] = &Inventory{Region: rg, Fuel: fuel}
		}
		name := row.String("FlowName")
		if strings.EqualFold(name, Construction) {
			inv[k].Construction += v
			continue
		}
		amount, prop, err := ParseAmount(v, row.String("Unit"))
		if err != nil {
			anomalies.Add(MalformedRow, row.Error(err).Error())
			continue
		}
		f := Flow{
			UUID:        row.String("FlowUUID"),
			Name:        name,
			Compartment: row.String("Compartment"),
			Property:    prop,
		}
		if f.UUID == "" {
			anomalies.Add(MalformedRow, row.Error(fmt.Errorf("missing flow UUID")).Error())
			continue
		}
		added, err := inv[k].add(f, amount)
		if err != nil {
			return nil, err
		}
		if !added {
			anomalies.Add(DuplicateFlow, fmt.Sprintf("%s %s: %s (%s)", rg, fuel, f.Name, f.Compartment))
		}
	}
	for _, i := range inv {
		i.sort()
	}
	return inv, nil
}

// Average returns the weighted mean, by fuel, of the inventories of
// the given regions. weights holds the generation of each region from
// each fuel. The result is keyed by the given region code.
func Average(inv Inventories, weights map[string]map[mix.Fuel]float64, code string) (Inventories, error) {
	type acc struct {
		inv *Inventory
		w   float64
	}
	byFuel := make(map[mix.Fuel]*acc)
	for _, k := range inv.Keys() {
		w := weights[k.Region][k.Fuel]
		if !(w > 0) || k.Region == code {
			continue
		}
		a, ok := byFuel[k.Fuel]
		if !ok {
			a = &acc{inv: &Inventory{Region: code, Fuel: k.Fuel}}
			byFuel[k.Fuel] = a
		}
		a.w += w
		s := inv[k].Scaled(w)
		a.inv.Construction += s.Construction
		for _, e := range s.Entries {
			if _, err := a.inv.add(e.Flow, e.Amount); err != nil {
				return nil, err
			}
		}
	}
	o := make(Inventories, len(byFuel))
	for f, a := range byFuel {
		avg := a.inv.Scaled(1 / a.w)
		avg.sort()
		o[Key{Region: code, Fuel: f}] = avg
	}
	return o, nil
}
