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

// Package olca holds the subset of the openLCA JSON-LD schema used to
// publish electricity inventories, and writes packages of those
// records as zip archives that openLCA can import.
package olca

import "github.com/spatialmodel/elci/internal/hash"

// Context is the JSON-LD context of every record.
const Context = "http://greendelta.github.io/olca-schema/context.jsonld"

// Process types.
const (
	UnitProcess = "UNIT_PROCESS"
	LCIResult   = "LCI_RESULT"
)

// Flow types.
const (
	ElementaryFlow = "ELEMENTARY_FLOW"
	ProductFlow    = "PRODUCT_FLOW"
)

// ID returns the deterministic identifier of a record of type typ with
// the given name, keyed by content.
func ID(typ, name string, content ...interface{}) string {
	return hash.UUID(typ, name, content...)
}

// Ref is a reference to another record.
type Ref struct {
	Type     string `json:"@type"`
	ID       string `json:"@id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

// Exchange is an input or output of a process.
type Exchange struct {
	Type                  string  `json:"@type"`
	InternalID            int     `json:"internalId"`
	Input                 bool    `json:"isInput"`
	QuantitativeReference bool    `json:"isQuantitativeReference"`
	Amount                float64 `json:"amount"`
	Flow                  *Ref    `json:"flow"`
	FlowProperty          *Ref    `json:"flowProperty,omitempty"`
	Unit                  *Ref    `json:"unit"`
	DefaultProvider       *Ref    `json:"defaultProvider,omitempty"`
	DQEntry               string  `json:"dqEntry,omitempty"`
	Description           string  `json:"description,omitempty"`
}

// ProcessDocumentation describes the scope and sources of a process.
type ProcessDocumentation struct {
	Type                     string `json:"@type"`
	ValidFrom                string `json:"validFrom,omitempty"`
	ValidUntil               string `json:"validUntil,omitempty"`
	TimeDescription          string `json:"timeDescription,omitempty"`
	GeographyDescription     string `json:"geographyDescription,omitempty"`
	TechnologyDescription    string `json:"technologyDescription,omitempty"`
	DataTreatmentDescription string `json:"dataTreatmentDescription,omitempty"`
	SamplingDescription      string `json:"samplingDescription,omitempty"`
	IntendedApplication      string `json:"intendedApplication,omitempty"`
	Copyright                bool   `json:"copyright"`
}

// Process is a unit of life-cycle inventory.
type Process struct {
	Context          string                `json:"@context,omitempty"`
	Type             string                `json:"@type"`
	ID               string                `json:"@id"`
	Name             string                `json:"name"`
	Description      string                `json:"description,omitempty"`
	Category         string                `json:"category,omitempty"`
	Version          string                `json:"version,omitempty"`
	ProcessType      string                `json:"processType"`
	Location         *Ref                  `json:"location,omitempty"`
	DQSystem         *Ref                  `json:"dqSystem,omitempty"`
	DQEntry          string                `json:"dqEntry,omitempty"`
	ExchangeDQSystem *Ref                  `json:"exchangeDqSystem,omitempty"`
	Documentation    *ProcessDocumentation `json:"processDocumentation,omitempty"`
	Exchanges        []*Exchange           `json:"exchanges"`
	LastInternalID   int                   `json:"lastInternalId"`
}

// Ref returns a reference to the receiver.
func (p *Process) Ref() *Ref {
	return &Ref{Type: "Process", ID: p.ID, Name: p.Name, Category: p.Category}
}

// Reference returns the quantitative reference exchange of the
// receiver, or nil if it has none.
func (p *Process) Reference() *Exchange {
	for _, e := range p.Exchanges {
		if e.QuantitativeReference {
			return e
		}
	}
	return nil
}

// AddExchange appends e to the receiver's exchanges, assigning it the
// next internal id.
func (p *Process) AddExchange(e *Exchange) {
	p.LastInternalID++
	e.Type = "Exchange"
	e.InternalID = p.LastInternalID
	p.Exchanges = append(p.Exchanges, e)
}

// FlowPropertyFactor relates a flow to one of its flow properties.
type FlowPropertyFactor struct {
	Type                  string  `json:"@type"`
	FlowProperty          *Ref    `json:"flowProperty"`
	ConversionFactor      float64 `json:"conversionFactor"`
	ReferenceFlowProperty bool    `json:"referenceFlowProperty"`
}

// Flow is an elementary or product flow.
type Flow struct {
	Context        string                `json:"@context,omitempty"`
	Type           string                `json:"@type"`
	ID             string                `json:"@id"`
	Name           string                `json:"name"`
	Category       string                `json:"category,omitempty"`
	FlowType       string                `json:"flowType"`
	FlowProperties []*FlowPropertyFactor `json:"flowProperties"`
}

// Ref returns a reference to the receiver.
func (f *Flow) Ref() *Ref {
	return &Ref{Type: "Flow", ID: f.ID, Name: f.Name, Category: f.Category}
}

// FlowProperty is a physical quantity that flows are measured in.
type FlowProperty struct {
	Context          string `json:"@context,omitempty"`
	Type             string `json:"@type"`
	ID               string `json:"@id"`
	Name             string `json:"name"`
	FlowPropertyType string `json:"flowPropertyType"`
	UnitGroup        *Ref   `json:"unitGroup"`
}

// Ref returns a reference to the receiver.
func (fp *FlowProperty) Ref() *Ref {
	return &Ref{Type: "FlowProperty", ID: fp.ID, Name: fp.Name}
}

// Unit is a unit of measure within a unit group.
type Unit struct {
	Type             string  `json:"@type"`
	ID               string  `json:"@id"`
	Name             string  `json:"name"`
	ConversionFactor float64 `json:"conversionFactor"`
	ReferenceUnit    bool    `json:"referenceUnit,omitempty"`
}

// Ref returns a reference to the receiver.
func (u *Unit) Ref() *Ref {
	return &Ref{Type: "Unit", ID: u.ID, Name: u.Name}
}

// UnitGroup is a set of interconvertible units.
type UnitGroup struct {
	Context             string  `json:"@context,omitempty"`
	Type                string  `json:"@type"`
	ID                  string  `json:"@id"`
	Name                string  `json:"name"`
	DefaultFlowProperty *Ref    `json:"defaultFlowProperty,omitempty"`
	Units               []*Unit `json:"units"`
}

// Ref returns a reference to the receiver.
func (g *UnitGroup) Ref() *Ref {
	return &Ref{Type: "UnitGroup", ID: g.ID, Name: g.Name}
}

// Unit returns the unit with the given name, or nil.
func (g *UnitGroup) Unit(name string) *Unit {
	for _, u := range g.Units {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Location is a geographic region.
type Location struct {
	Context string `json:"@context,omitempty"`
	Type    string `json:"@type"`
	ID      string `json:"@id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
}

// Ref returns a reference to the receiver.
func (l *Location) Ref() *Ref {
	return &Ref{Type: "Location", ID: l.ID, Name: l.Name}
}

// NewLocation returns the location with the given code.
func NewLocation(code, name string) *Location {
	return &Location{
		Context: Context,
		Type:    "Location",
		ID:      ID("Location", code),
		Name:    name,
		Code:    code,
	}
}

// DQIndicator is one dimension of a data quality system.
type DQIndicator struct {
	Type     string `json:"@type"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// DQSystem is a data quality system. Process and exchange data quality
// entries are strings of scores, one per indicator, such as
// "(3;3;2;4;3)".
type DQSystem struct {
	Context          string         `json:"@context,omitempty"`
	Type             string         `json:"@type"`
	ID               string         `json:"@id"`
	Name             string         `json:"name"`
	HasUncertainties bool           `json:"hasUncertainties"`
	Indicators       []*DQIndicator `json:"indicators"`
}

// Ref returns a reference to the receiver.
func (d *DQSystem) Ref() *Ref {
	return &Ref{Type: "DQSystem", ID: d.ID, Name: d.Name}
}

// PedigreeMatrix returns the process pedigree matrix data quality
// system, with indicators reliability, completeness, temporal
// correlation, geographical correlation and technological correlation.
func PedigreeMatrix() *DQSystem {
	const name = "US EPA - Process Pedigree Matrix"
	d := &DQSystem{Context: Context, Type: "DQSystem", ID: ID("DQSystem", name), Name: name}
	for i, n := range []string{"Process review", "Process completeness",
		"Temporal correlation", "Geographical correlation", "Technological correlation"} {
		d.Indicators = append(d.Indicators, &DQIndicator{Type: "DQIndicator", Name: n, Position: i + 1})
	}
	return d
}
