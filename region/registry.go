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

// Package region holds the balancing-authority (BA) region taxonomy:
// the mapping from each BA to its FERC region, EIA region, country and
// interconnect, and helpers for aggregating BA-level data to coarser
// regions.
package region

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/elci/lcierr"
)

// Kind specifies the taxonomy a Region belongs to.
type Kind int

const (
	// BA is a balancing authority, the finest region granularity.
	BA Kind = iota + 1

	// FERC is a Federal Energy Regulatory Commission market region.
	FERC

	// EIARegion is an EIA-930 reporting region, e.g. "CAL".
	EIARegion

	// CountryBoundary is a foreign country that trades with U.S. BAs.
	CountryBoundary

	// USTotal is the contiguous United States.
	USTotal
)

func (k Kind) String() string {
	switch k {
	case BA:
		return "BA"
	case FERC:
		return "FERC"
	case EIARegion:
		return "EIA_REGION"
	case CountryBoundary:
		return "COUNTRY_BOUNDARY"
	case USTotal:
		return "US_TOTAL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Country codes used in the region table.
const (
	UnitedStates = "US"
	Canada       = "CAN"
	Mexico       = "MEX"
)

// Region is a node in the region taxonomy.
type Region struct {
	ID   string
	Kind Kind

	// Country is the country the region is in.
	Country string

	// Province is the Canadian province of a Canadian BA.
	Province string

	// Interconnect is the synchronous grid a BA belongs to.
	Interconnect string

	// States holds the two-letter codes of the U.S. states a BA serves.
	States []string

	parents map[Kind]*Region
}

// Parents returns the coarser regions the receiver belongs to, ordered
// by Kind.
func (r *Region) Parents() []*Region {
	o := make([]*Region, 0, len(r.parents))
	for _, p := range r.parents {
		o = append(o, p)
	}
	sort.Slice(o, func(i, j int) bool { return o[i].Kind < o[j].Kind })
	return o
}

func (r *Region) String() string { return r.ID }

// Registry is the authoritative lookup of region codes. It is immutable
// after creation and may be shared.
type Registry struct {
	// regions holds the regions of each kind by code. Codes are unique
	// within a kind; a BA and a FERC region may share a code.
	regions map[Kind]map[string]*Region

	// members holds the ordered BA codes belonging to each coarse region.
	members map[string][]string

	bas, usBAs, canadianBAs []string
	fercRegions, eiaRegions []string

	ties map[[2]string]struct{}

	us *Region
}

type tableBA struct {
	Code         string
	Country      string
	FERC         string `toml:"ferc"`
	EIA          string `toml:"eia"`
	Province     string
	Interconnect string
	States       []string
}

type table struct {
	US   string                  `toml:"us"`
	FERC []struct{ Code string } `toml:"ferc"`
	EIA  []struct{ Code string } `toml:"eia"`
	BA   []tableBA               `toml:"ba"`
	Tie  []struct{ A, B string } `toml:"tie"`
}

// New returns a Registry holding the bundled region table.
func New() (*Registry, error) {
	return Load(strings.NewReader(defaultTable))
}

// Load reads a Registry from a TOML region table in the format of the
// bundled table.
func Load(r io.Reader) (*Registry, error) {
	var t table
	if _, err := toml.DecodeReader(r, &t); err != nil {
		return nil, fmt.Errorf("region: decoding region table: %v", err)
	}
	if t.US == "" {
		t.US = UnitedStates
	}
	reg := &Registry{
		regions: make(map[Kind]map[string]*Region),
		members: make(map[string][]string),
		ties:    make(map[[2]string]struct{}),
	}
	add := func(r *Region) error {
		if reg.regions[r.Kind] == nil {
			reg.regions[r.Kind] = make(map[string]*Region)
		}
		if _, ok := reg.regions[r.Kind][r.ID]; ok {
			return fmt.Errorf("region: duplicate %v code %s", r.Kind, r.ID)
		}
		reg.regions[r.Kind][r.ID] = r
		return nil
	}
	reg.us = &Region{ID: t.US, Kind: USTotal, Country: UnitedStates}
	if err := add(reg.us); err != nil {
		return nil, err
	}
	for _, c := range []string{Canada, Mexico} {
		if err := add(&Region{ID: c, Kind: CountryBoundary, Country: c}); err != nil {
			return nil, err
		}
	}
	for _, f := range t.FERC {
		if err := add(&Region{ID: f.Code, Kind: FERC, Country: UnitedStates,
			parents: map[Kind]*Region{USTotal: reg.us}}); err != nil {
			return nil, err
		}
		reg.fercRegions = append(reg.fercRegions, f.Code)
	}
	for _, e := range t.EIA {
		if err := add(&Region{ID: e.Code, Kind: EIARegion, Country: UnitedStates,
			parents: map[Kind]*Region{USTotal: reg.us}}); err != nil {
			return nil, err
		}
		reg.eiaRegions = append(reg.eiaRegions, e.Code)
	}
	for _, b := range t.BA {
		r := &Region{
			ID:           b.Code,
			Kind:         BA,
			Country:      b.Country,
			Province:     b.Province,
			Interconnect: b.Interconnect,
			States:       b.States,
			parents:      make(map[Kind]*Region),
		}
		switch b.Country {
		case UnitedStates:
			ferc, ok := reg.regions[FERC][b.FERC]
			if !ok {
				return nil, fmt.Errorf("region: BA %s: invalid FERC region `%s`", b.Code, b.FERC)
			}
			eia, ok := reg.regions[EIARegion][b.EIA]
			if !ok {
				return nil, fmt.Errorf("region: BA %s: invalid EIA region `%s`", b.Code, b.EIA)
			}
			r.parents[FERC] = ferc
			r.parents[EIARegion] = eia
			r.parents[USTotal] = reg.us
			reg.members[ferc.ID] = append(reg.members[ferc.ID], r.ID)
			reg.members[eia.ID] = append(reg.members[eia.ID], r.ID)
			reg.members[reg.us.ID] = append(reg.members[reg.us.ID], r.ID)
			reg.usBAs = append(reg.usBAs, r.ID)
		case Canada, Mexico:
			if b.FERC != "" {
				return nil, fmt.Errorf("region: foreign BA %s cannot have a FERC region", b.Code)
			}
			r.parents[CountryBoundary] = reg.regions[CountryBoundary][b.Country]
			if b.Country == Canada {
				reg.canadianBAs = append(reg.canadianBAs, r.ID)
			}
		default:
			return nil, fmt.Errorf("region: BA %s: invalid country `%s`", b.Code, b.Country)
		}
		if err := add(r); err != nil {
			return nil, err
		}
		reg.bas = append(reg.bas, r.ID)
	}
	for _, tie := range t.Tie {
		for _, c := range []string{tie.A, tie.B} {
			if _, ok := reg.regions[BA][c]; !ok {
				return nil, fmt.Errorf("region: interconnect tie with invalid BA `%s`", c)
			}
		}
		reg.ties[tieKey(tie.A, tie.B)] = struct{}{}
	}
	for _, s := range [][]string{reg.bas, reg.usBAs, reg.canadianBAs} {
		sort.Strings(s)
	}
	for k := range reg.members {
		sort.Strings(reg.members[k])
	}
	return reg, nil
}

func tieKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// lookupOrder is the order in which the kinds are searched when
// looking up a code without a kind.
var lookupOrder = []Kind{BA, FERC, EIARegion, CountryBoundary, USTotal}

// Lookup returns the region with the given code. If regions of more
// than one kind have the code, the finest one is returned.
func (reg *Registry) Lookup(code string) (*Region, error) {
	for _, k := range lookupOrder {
		if r, ok := reg.regions[k][code]; ok {
			return r, nil
		}
	}
	return nil, lcierr.UnknownRegionError{Code: code}
}

// LookupKind returns the region of the given kind with the given code.
func (reg *Registry) LookupKind(code string, kind Kind) (*Region, error) {
	r, ok := reg.regions[kind][code]
	if !ok {
		return nil, lcierr.UnknownRegionError{Code: code}
	}
	return r, nil
}

// Parent returns the region of the given kind that the region with
// the given code belongs to.
func (reg *Registry) Parent(code string, kind Kind) (*Region, error) {
	r, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	if r.Kind == kind {
		return r, nil
	}
	p, ok := r.parents[kind]
	if !ok {
		return nil, fmt.Errorf("region: %s has no parent of kind %v", code, kind)
	}
	return p, nil
}

// IsCanadian returns whether code is a Canadian BA.
func (reg *Registry) IsCanadian(code string) bool {
	r, ok := reg.regions[BA][code]
	return ok && r.Country == Canada
}

// IsUS returns whether code is a U.S. BA.
func (reg *Registry) IsUS(code string) bool {
	r, ok := reg.regions[BA][code]
	return ok && r.Country == UnitedStates
}

// IsBA returns whether code is a BA of any country.
func (reg *Registry) IsBA(code string) bool {
	_, ok := reg.regions[BA][code]
	return ok
}

// IsAggregate returns whether code is a region-level aggregate such as
// an EIA region, a FERC region or the U.S. total, and not also the
// code of a BA.
func (reg *Registry) IsAggregate(code string) bool {
	if reg.IsBA(code) {
		return false
	}
	for _, k := range []Kind{FERC, EIARegion, USTotal} {
		if _, ok := reg.regions[k][code]; ok {
			return true
		}
	}
	return false
}

// BAsIn returns the ordered codes of the U.S. BAs within the given FERC
// region, EIA region or the U.S. total. For a code that is only a BA
// it returns the BA itself.
func (reg *Registry) BAsIn(code string) ([]string, error) {
	if m, ok := reg.members[code]; ok {
		return append([]string(nil), m...), nil
	}
	r, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	switch r.Kind {
	case BA:
		return []string{r.ID}, nil
	case FERC, EIARegion:
		return nil, nil
	default:
		return nil, fmt.Errorf("region: %s (%v) has no member BAs", code, r.Kind)
	}
}

// BAsInKind is like BAsIn but looks the code up among the regions of
// the given kind only.
func (reg *Registry) BAsInKind(code string, kind Kind) ([]string, error) {
	r, err := reg.LookupKind(code, kind)
	if err != nil {
		return nil, err
	}
	if kind == BA {
		return []string{r.ID}, nil
	}
	return append([]string(nil), reg.members[r.ID]...), nil
}

// StatesIn returns the ordered, de-duplicated states served by the BAs
// in the given region.
func (reg *Registry) StatesIn(code string) ([]string, error) {
	bas, err := reg.BAsIn(code)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, ba := range bas {
		for _, s := range reg.regions[BA][ba].States {
			set[s] = struct{}{}
		}
	}
	o := make([]string, 0, len(set))
	for s := range set {
		o = append(o, s)
	}
	sort.Strings(o)
	return o, nil
}

// BAs returns the codes of all BAs, of every country, in ascending order.
func (reg *Registry) BAs() []string { return append([]string(nil), reg.bas...) }

// USBAs returns the codes of the U.S. BAs in ascending order.
func (reg *Registry) USBAs() []string { return append([]string(nil), reg.usBAs...) }

// CanadianBAs returns the codes of the Canadian BAs in ascending order.
func (reg *Registry) CanadianBAs() []string { return append([]string(nil), reg.canadianBAs...) }

// FERCRegions returns the FERC region codes in ascending order.
func (reg *Registry) FERCRegions() []string {
	o := append([]string(nil), reg.fercRegions...)
	sort.Strings(o)
	return o
}

// EIARegions returns the EIA region codes in ascending order.
func (reg *Registry) EIARegions() []string {
	o := append([]string(nil), reg.eiaRegions...)
	sort.Strings(o)
	return o
}

// US returns the code of the U.S. total region.
func (reg *Registry) US() string { return reg.us.ID }

// CanadianBAForProvince returns the Canadian BA serving the given
// province, matched case-insensitively.
func (reg *Registry) CanadianBAForProvince(province string) (string, bool) {
	for _, c := range reg.canadianBAs {
		if strings.EqualFold(reg.regions[BA][c].Province, strings.TrimSpace(province)) {
			return c, true
		}
	}
	return "", false
}

// Trades returns whether electricity may flow between BAs a and b:
// they are on the same interconnect or joined by a listed tie.
func (reg *Registry) Trades(a, b string) bool {
	ra, okA := reg.regions[BA][a]
	rb, okB := reg.regions[BA][b]
	if !okA || !okB {
		return false
	}
	if ra.Interconnect != "" && ra.Interconnect == rb.Interconnect {
		return true
	}
	_, ok := reg.ties[tieKey(a, b)]
	return ok
}
