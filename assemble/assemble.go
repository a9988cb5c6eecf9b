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
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/distribution"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/inventory"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/olca"
	"github.com/spatialmodel/elci/region"
)

// Anomaly kinds recorded during assembly.
const (
	NoInventory = "generation without inventory"
	BadAmount   = "flow amount in wrong unit"
)

// Names of the product flows.
const (
	ElectricityFlow  = "Electricity"
	ConstructionFlow = inventory.Construction
)

const (
	productCategory      = "Technosphere Flows/22: Utilities/2211: Electric Power Generation, Transmission and Distribution"
	processCategory      = "22: Utilities/2211: Electric Power Generation, Transmission and Distribution"
	constructionCategory = "23: Construction/2371: Utility System Construction"
)

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Assembler builds the process records of an electricity inventory.
// Processes are added with the Add methods and linked by Build.
type Assembler struct {
	Regions *region.Registry

	// Year is the year that the inventory represents.
	Year int

	// Version is the version of every process, made of digits and dots.
	Version string

	// Inventories holds the per-MWh generation inventory of each BA
	// and fuel.
	Inventories inventory.Inventories

	Log logrus.FieldLogger

	Anomalies tally.Tally

	records []*Record
	byName  map[string]*Record

	pkg        olca.Package
	quantities map[string]olca.Quantity
	dq         *olca.DQSystem
}

func (a *Assembler) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

func (a *Assembler) quantity(property string) (olca.Quantity, error) {
	if q, ok := a.quantities[property]; ok {
		return q, nil
	}
	q, ok := olca.NewQuantity(property)
	if !ok {
		return olca.Quantity{}, fmt.Errorf("assemble: unsupported flow property `%s`", property)
	}
	if a.quantities == nil {
		a.quantities = make(map[string]olca.Quantity)
	}
	a.quantities[property] = q
	a.pkg.AddQuantity(q)
	return q, nil
}

// productExchange returns an exchange of amount of the named product
// flow in the given unit.
func (a *Assembler) productExchange(flow, property, unit string, amount float64, input bool) (*olca.Exchange, error) {
	q, err := a.quantity(property)
	if err != nil {
		return nil, err
	}
	u := q.UnitGroup.Unit(unit)
	if u == nil {
		return nil, fmt.Errorf("assemble: no unit %s in %s", unit, property)
	}
	f := olca.NewFlow("", flow, productCategory, olca.ProductFlow, q)
	a.pkg.AddFlow(f)
	return &olca.Exchange{
		Input:        input,
		Amount:       amount,
		Flow:         f.Ref(),
		FlowProperty: q.Property.Ref(),
		Unit:         u.Ref(),
	}, nil
}

// elementaryExchange returns an exchange of inventory entry e in the
// reference unit of its flow property. Flows in resource compartments
// are inputs.
func (a *Assembler) elementaryExchange(e inventory.Entry) (*olca.Exchange, error) {
	q, err := a.quantity(string(e.Flow.Property))
	if err != nil {
		return nil, err
	}
	v, err := inventory.In(e.Amount, e.Flow.Property)
	if err != nil {
		return nil, err
	}
	f := olca.NewFlow(e.Flow.UUID, e.Flow.Name, e.Flow.Compartment, olca.ElementaryFlow, q)
	a.pkg.AddFlow(f)
	return &olca.Exchange{
		Input:        strings.HasPrefix(strings.ToLower(e.Flow.Compartment), "resource"),
		Amount:       v,
		Flow:         f.Ref(),
		FlowProperty: q.Property.Ref(),
		Unit:         q.ReferenceUnit().Ref(),
	}, nil
}

func (a *Assembler) location(code string) *olca.Ref {
	l := olca.NewLocation(code, code)
	a.pkg.AddLocation(l)
	return l.Ref()
}

// newRecord creates a named record with a reference output of 1 unit of
// the named flow.
func (a *Assembler) newRecord(stage Stage, name, code string, axis region.Axis, flow, property, unit string) (*Record, error) {
	if _, ok := a.byName[name]; ok {
		return nil, fmt.Errorf("assemble: duplicate process `%s`", name)
	}
	category := processCategory
	if stage == Construction {
		category = constructionCategory
	}
	r := &Record{
		Process: &olca.Process{
			Context:     olca.Context,
			Type:        "Process",
			Name:        name,
			Category:    category,
			Version:     a.Version,
			ProcessType: olca.LCIResult,
			Documentation: &olca.ProcessDocumentation{
				Type:            "ProcessDocumentation",
				ValidFrom:       fmt.Sprintf("%d-01-01", a.Year),
				ValidUntil:      fmt.Sprintf("%d-12-31", a.Year),
				TimeDescription: fmt.Sprintf("Annual totals for %d.", a.Year),
			},
		},
		Stage:  stage,
		Region: code,
		Axis:   axis,
	}
	if code != "" {
		r.Process.Location = a.location(code)
	}
	ref, err := a.productExchange(flow, property, unit, 1, false)
	if err != nil {
		return nil, err
	}
	ref.QuantitativeReference = true
	r.add(ref, "")
	if err := r.advance(Named); err != nil {
		return nil, err
	}
	if a.byName == nil {
		a.byName = make(map[string]*Record)
	}
	a.byName[name] = r
	a.records = append(a.records, r)
	return r, nil
}

// addConstruction adds the construction process of the given fuel if
// it has not been added yet.
func (a *Assembler) addConstruction(fuel mix.Fuel) error {
	name := ConstructionName(fuel)
	if _, ok := a.byName[name]; ok {
		return nil
	}
	r, err := a.newRecord(Construction, name, "", "", ConstructionFlow, olca.Items, "Item(s)")
	if err != nil {
		return err
	}
	r.Process.Description = fmt.Sprintf("Construction of one %s power plant.", strings.ToLower(string(fuel)))
	return nil
}

// AddGeneration adds the process generating electricity from fuel in
// the given BA, with the BA's inventory for that fuel and an input of
// power plant construction. It does nothing if the process has already
// been added.
func (a *Assembler) AddGeneration(ba string, fuel mix.Fuel) error {
	name := GenerationName(fuel, ba)
	if _, ok := a.byName[name]; ok {
		return nil
	}
	if err := a.addConstruction(fuel); err != nil {
		return err
	}
	r, err := a.newRecord(Generation, name, ba, region.AxisBA, "Electricity - "+string(fuel), olca.Energy, "MWh")
	if err != nil {
		return err
	}
	r.Process.Description = fmt.Sprintf("Generation of 1 MWh of electricity from %s in %s.", fuel, ba)
	r.Process.Documentation.TechnologyDescription = fmt.Sprintf("Fuel category %s.", fuel)

	inv, ok := a.Inventories.Get(ba, fuel)
	if !ok {
		a.Anomalies.Add(NoInventory, name)
		inv = &inventory.Inventory{Region: ba, Fuel: fuel}
	}
	c, err := a.productExchange(ConstructionFlow, olca.Items, "Item(s)", inv.Construction, true)
	if err != nil {
		return err
	}
	r.add(c, ConstructionName(fuel))
	for _, e := range inv.Entries {
		x, err := a.elementaryExchange(e)
		if err != nil {
			a.Anomalies.Add(BadAmount, fmt.Sprintf("%s: %s: %v", name, e.Flow.Name, err))
			continue
		}
		r.add(x, "")
	}
	return nil
}

// AddGenerationMix adds the generation mix process of the BA of m,
// with one input per fuel provided by the BA's generation process for
// that fuel. The generation processes are added as needed.
func (a *Assembler) AddGenerationMix(m *mix.Mix) error {
	if m.Kind != mix.Generation || m.Axis != region.AxisBA {
		return fmt.Errorf("assemble: %s mix for %s on axis %s is not a BA generation mix", m.Kind, m.Region, m.Axis)
	}
	if err := m.Check(); err != nil {
		return err
	}
	r, err := a.newRecord(GenerationMix, GenerationMixName(m.Region), m.Region, m.Axis, ElectricityFlow, olca.Energy, "MWh")
	if err != nil {
		return err
	}
	r.Root = true
	r.Process.Description = fmt.Sprintf("Electricity generated in %s, by fuel.", m.Region)
	for _, sh := range m.Shares {
		if err := a.AddGeneration(sh.Source, sh.Fuel); err != nil {
			return err
		}
		e, err := a.productExchange("Electricity - "+string(sh.Fuel), olca.Energy, "MWh", sh.Fraction, true)
		if err != nil {
			return err
		}
		r.add(e, GenerationName(sh.Fuel, sh.Source))
	}
	return nil
}

// AddConsumptionMix adds the at-grid consumption mix process of the
// region of m. U.S. sources are provided by their generation process
// for each fuel; each Canadian source is a single input provided by
// its proxy process, which must be added with AddCanadianProxy.
func (a *Assembler) AddConsumptionMix(m *mix.Mix) error {
	if m.Kind != mix.Consumption {
		return fmt.Errorf("assemble: %s mix for %s is not a consumption mix", m.Kind, m.Region)
	}
	if err := m.Check(); err != nil {
		return err
	}
	r, err := a.newRecord(ConsumptionMix, ConsumptionMixName(m.Region, m.Axis), m.Region, m.Axis, ElectricityFlow, olca.Energy, "MWh")
	if err != nil {
		return err
	}
	r.Process.Description = fmt.Sprintf("Electricity consumed at the grid in %s, by source BA and fuel, after trade.", m.Region)
	for _, src := range m.Sources() {
		if a.Regions.IsCanadian(src) {
			var sum float64
			for _, sh := range m.Shares {
				if sh.Source == src {
					sum += sh.Fraction
				}
			}
			e, err := a.productExchange(ElectricityFlow, olca.Energy, "MWh", sum, true)
			if err != nil {
				return err
			}
			r.add(e, GenerationMixName(src))
			continue
		}
		for _, sh := range m.Shares {
			if sh.Source != src {
				continue
			}
			if err := a.AddGeneration(src, sh.Fuel); err != nil {
				return err
			}
			e, err := a.productExchange("Electricity - "+string(sh.Fuel), olca.Energy, "MWh", sh.Fraction, true)
			if err != nil {
				return err
			}
			r.add(e, GenerationName(sh.Fuel, src))
		}
	}
	return nil
}

// AddUserMix adds the at-user consumption mix process of the region of
// u, whose single input is the region's at-grid consumption mix scaled
// up by the T&D loss.
func (a *Assembler) AddUserMix(u *distribution.UserMix) error {
	m := u.Grid
	r, err := a.newRecord(UserMix, UserMixName(m.Region, m.Axis), m.Region, m.Axis, ElectricityFlow, olca.Energy, "MWh")
	if err != nil {
		return err
	}
	r.Root = true
	r.Loss = u.Loss
	r.Process.Description = fmt.Sprintf("Electricity delivered to the user in %s, with a transmission and distribution loss of %.4g.", m.Region, u.Loss)
	e, err := a.productExchange(ElectricityFlow, olca.Energy, "MWh", u.Total(), true)
	if err != nil {
		return err
	}
	e.Description = fmt.Sprintf("T&D loss %.4g", u.Loss)
	r.add(e, ConsumptionMixName(m.Region, m.Axis))
	return nil
}

// AddCanadianProxy adds the process standing in for the generation of
// a Canadian BA.
func (a *Assembler) AddCanadianProxy(p *inventory.Proxy) error {
	r, err := a.newRecord(CanadianProxy, GenerationMixName(p.BA), p.BA, region.AxisBA, ElectricityFlow, olca.Energy, "MWh")
	if err != nil {
		return err
	}
	if a.dq == nil {
		a.dq = olca.PedigreeMatrix()
		a.pkg.AddDQSystem(a.dq)
	}
	r.Process.DQSystem = a.dq.Ref()
	r.Process.DQEntry = p.DQI
	var fuels []string
	for _, f := range mix.Fuels {
		if v, ok := p.Fuels[f]; ok && v > 0 {
			fuels = append(fuels, fmt.Sprintf("%s %.3g", f, v))
		}
	}
	r.Process.Description = fmt.Sprintf("Electricity generated in %s, approximated by U.S. average inventories "+
		"weighted by its fuel mix (%s). Lifecycle stage: %s.", p.BA, strings.Join(fuels, ", "), p.Stage)
	r.Process.Documentation.GeographyDescription = "U.S. average data applied to a Canadian balancing authority."
	if len(p.Missing) > 0 {
		var missing []string
		for _, f := range p.Missing {
			missing = append(missing, string(f))
		}
		r.Process.Documentation.DataTreatmentDescription = "No U.S. average inventory for " + strings.Join(missing, ", ") + "."
	}
	for _, e := range p.Inventory.Entries {
		x, err := a.elementaryExchange(e)
		if err != nil {
			a.Anomalies.Add(BadAmount, fmt.Sprintf("%s: %s: %v", r.Name(), e.Flow.Name, err))
			continue
		}
		r.add(x, "")
	}
	return nil
}

// Records returns the records added so far, in emission order.
func (a *Assembler) Records() []*Record {
	o := append([]*Record(nil), a.records...)
	sort.SliceStable(o, func(i, j int) bool { return o[i].Stage < o[j].Stage })
	return o
}

// Build assigns ids to the processes, fills in their default
// providers, validates them and returns them as a package. Orphan
// processes are logged but are not an error.
func (a *Assembler) Build() (*olca.Package, []*Record, error) {
	if !versionPattern.MatchString(a.Version) {
		return nil, nil, lcierr.ConfigurationError{Field: "Version", Reason: fmt.Sprintf("`%s` is not made of digits and dots", a.Version)}
	}
	records := a.Records()
	for _, r := range records {
		r.Process.ID = olca.ID("Process", r.Name(), a.Year, a.Version, r.content())
		if err := r.advance(UUIDAssigned); err != nil {
			return nil, nil, err
		}
	}
	for _, r := range records {
		if err := a.fillProviders(r); err != nil {
			return nil, nil, err
		}
	}
	orphans, err := Validate(records, a.Regions)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range orphans {
		a.log().WithField("process", o.Process).Warn(o.Error())
	}
	pkg := &a.pkg
	for _, r := range records {
		if err := r.advance(Final); err != nil {
			return nil, nil, err
		}
		if err := pkg.AddProcess(r.Process); err != nil {
			return nil, nil, err
		}
	}
	a.Anomalies.Log(a.log(), "assemble")
	a.log().WithFields(logrus.Fields{
		"processes": len(pkg.Processes),
		"flows":     len(pkg.Flows),
		"orphans":   len(orphans),
	}).Info("assemble: built process package")
	return pkg, records, nil
}

// fillProviders sets the default provider of each exchange of r that
// names one.
func (a *Assembler) fillProviders(r *Record) error {
	for i, e := range r.Process.Exchanges {
		name := r.providers[i]
		if name == "" {
			continue
		}
		p, ok := a.byName[name]
		if !ok {
			return lcierr.UnresolvedProviderError{Process: r.Name(), Provider: name}
		}
		if p.state < UUIDAssigned {
			return lcierr.InvariantError{
				Check:  "provider state",
				Detail: fmt.Sprintf("provider `%s` of `%s` is in state %s", name, r.Name(), p.state),
			}
		}
		e.DefaultProvider = p.Process.Ref()
	}
	return r.advance(ProvidersFilled)
}
