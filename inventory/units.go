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

package inventory

import (
	"fmt"
	"strings"

	"github.com/ctessum/unit"
)

// Property is the physical property that a flow is measured in.
type Property string

// The supported flow properties.
const (
	Mass   Property = "Mass"
	Energy Property = "Energy"
	Volume Property = "Volume"
	Area   Property = "Area"
	Items  Property = "Number of items"
)

type unitDef struct {
	property Property
	dims     unit.Dimensions
	factor   float64 // SI value of one of the unit
}

var units = map[string]unitDef{
	"kg":      {Mass, unit.Kilogram, 1},
	"g":       {Mass, unit.Kilogram, 1e-3},
	"t":       {Mass, unit.Kilogram, 1e3},
	"lb":      {Mass, unit.Kilogram, 0.45359237},
	"J":       {Energy, unit.Joule, 1},
	"MJ":      {Energy, unit.Joule, 1e6},
	"GJ":      {Energy, unit.Joule, 1e9},
	"kWh":     {Energy, unit.Joule, 3.6e6},
	"MWh":     {Energy, unit.Joule, 3.6e9},
	"btu":     {Energy, unit.Joule, 1055.05585},
	"m3":      {Volume, unit.Meter3, 1},
	"l":       {Volume, unit.Meter3, 1e-3},
	"m2":      {Area, unit.Meter2, 1},
	"Item(s)": {Items, unit.Dimless, 1},
}

// ReferenceUnit is the unit that amounts of each property are
// reported in.
var ReferenceUnit = map[Property]string{
	Mass:   "kg",
	Energy: "MJ",
	Volume: "m3",
	Area:   "m2",
	Items:  "Item(s)",
}

// ParseAmount returns v in the unit named by u as a dimensioned value.
func ParseAmount(v float64, u string) (*unit.Unit, Property, error) {
	d, ok := lookupUnit(u)
	if !ok {
		return nil, "", fmt.Errorf("inventory: unsupported unit `%s`", u)
	}
	return unit.New(v*d.factor, d.dims), d.property, nil
}

func lookupUnit(u string) (unitDef, bool) {
	u = strings.TrimSpace(u)
	if d, ok := units[u]; ok {
		return d, true
	}
	for k, d := range units {
		if strings.EqualFold(k, u) {
			return d, true
		}
	}
	return unitDef{}, false
}

// In returns the value of u expressed in the reference unit of p.
func In(u *unit.Unit, p Property) (float64, error) {
	d := units[ReferenceUnit[p]]
	if err := u.Check(d.dims); err != nil {
		return 0, fmt.Errorf("inventory: %s: %v", p, err)
	}
	return u.Value() / d.factor, nil
}
