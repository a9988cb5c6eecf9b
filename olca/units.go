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

package olca

// Names of the supported flow properties.
const (
	Mass   = "Mass"
	Energy = "Energy"
	Volume = "Volume"
	Area   = "Area"
	Items  = "Number of items"
)

type unitDef struct {
	name   string
	factor float64
}

// units holds the units of each flow property, reference unit first.
var units = map[string][]unitDef{
	Mass:   {{"kg", 1}, {"g", 1e-3}, {"t", 1e3}, {"lb", 0.45359237}},
	Energy: {{"MJ", 1}, {"kWh", 3.6}, {"MWh", 3600}, {"GJ", 1e3}, {"J", 1e-6}},
	Volume: {{"m3", 1}, {"l", 1e-3}},
	Area:   {{"m2", 1}},
	Items:  {{"Item(s)", 1}},
}

var unitGroupNames = map[string]string{
	Mass:   "Units of mass",
	Energy: "Units of energy",
	Volume: "Units of volume",
	Area:   "Units of area",
	Items:  "Units of items",
}

// Quantity is a flow property together with its unit group.
type Quantity struct {
	Property  *FlowProperty
	UnitGroup *UnitGroup
}

// NewQuantity returns the flow property with the given name and its
// unit group. It returns false if the property is not supported.
func NewQuantity(property string) (Quantity, bool) {
	defs, ok := units[property]
	if !ok {
		return Quantity{}, false
	}
	gname := unitGroupNames[property]
	g := &UnitGroup{Context: Context, Type: "UnitGroup", ID: ID("UnitGroup", gname), Name: gname}
	for i, d := range defs {
		g.Units = append(g.Units, &Unit{
			Type:             "Unit",
			ID:               ID("Unit", gname+"/"+d.name),
			Name:             d.name,
			ConversionFactor: d.factor,
			ReferenceUnit:    i == 0,
		})
	}
	fp := &FlowProperty{
		Context:          Context,
		Type:             "FlowProperty",
		ID:               ID("FlowProperty", property),
		Name:             property,
		FlowPropertyType: "PHYSICAL_QUANTITY",
		UnitGroup:        g.Ref(),
	}
	g.DefaultFlowProperty = fp.Ref()
	return Quantity{Property: fp, UnitGroup: g}, true
}

// ReferenceUnit returns the reference unit of the quantity.
func (q Quantity) ReferenceUnit() *Unit { return q.UnitGroup.Units[0] }

// NewFlow returns a flow measured in quantity q. Elementary flows keep
// the given id; product flow ids are derived from their names.
func NewFlow(id, name, category, flowType string, q Quantity) *Flow {
	if id == "" {
		id = ID("Flow", name)
	}
	return &Flow{
		Context:  Context,
		Type:     "Flow",
		ID:       id,
		Name:     name,
		Category: category,
		FlowType: flowType,
		FlowProperties: []*FlowPropertyFactor{{
			Type:                  "FlowPropertyFactor",
			FlowProperty:          q.Property.Ref(),
			ConversionFactor:      1,
			ReferenceFlowProperty: true,
		}},
	}
}
