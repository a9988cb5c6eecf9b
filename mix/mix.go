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

// Package mix builds the generation mix and the at-grid consumption mix
// of each region from balancing-authority fuel shares and the trade
// attribution matrix.
package mix

import (
	"fmt"
	"math"
	"sort"

	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

// Tolerance is the largest allowed difference between the sum of the
// fractions of a mix and one.
const Tolerance = 1e-9

// Threshold is the smallest fraction kept in a mix; smaller fractions
// are dropped and the remainder renormalized.
const Threshold = 1e-5

// Kind is the kind of a regional mix.
type Kind int

const (
	// Generation is the fuel mix of the electricity generated within
	// a region.
	Generation Kind = iota + 1

	// Consumption is the fuel and origin mix of the electricity
	// consumed in a region at the grid.
	Consumption
)

func (k Kind) String() string {
	switch k {
	case Generation:
		return "generation"
	case Consumption:
		return "consumption"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Share is the fraction of a mix generated from one fuel in one
// source region.
type Share struct {
	Source   string
	Fuel     Fuel
	Fraction float64
}

// Mix is the composition of the electricity generated or consumed in
// a region.
type Mix struct {
	Region string
	Axis   region.Axis
	Kind   Kind

	// Shares are sorted by Source and then Fuel.
	Shares []Share
}

// Sum returns the sum of the fractions of the mix.
func (m *Mix) Sum() float64 {
	var s float64
	for _, sh := range m.Shares {
		s += sh.Fraction
	}
	return s
}

// Check returns a MixNotNormalizedError if the fractions of the mix do
// not sum to one.
func (m *Mix) Check() error {
	if s := m.Sum(); math.Abs(s-1) > Tolerance || math.IsNaN(s) {
		return lcierr.MixNotNormalizedError{Region: m.Region, Kind: m.Kind.String(), Sum: s}
	}
	return nil
}

// ByFuel returns the fractions of the mix summed by fuel.
func (m *Mix) ByFuel() map[Fuel]float64 {
	o := make(map[Fuel]float64)
	for _, sh := range m.Shares {
		o[sh.Fuel] += sh.Fraction
	}
	return o
}

// BySource returns the fractions of the mix summed by source region.
func (m *Mix) BySource() map[string]float64 {
	o := make(map[string]float64)
	for _, sh := range m.Shares {
		o[sh.Source] += sh.Fraction
	}
	return o
}

// Sources returns the source regions of the mix in ascending order.
func (m *Mix) Sources() []string {
	var o []string
	for _, sh := range m.Shares {
		if len(o) == 0 || o[len(o)-1] != sh.Source {
			o = append(o, sh.Source)
		}
	}
	return o
}

// Fraction returns the fraction of the mix from the given source and
// fuel.
func (m *Mix) Fraction(source string, fuel Fuel) float64 {
	for _, sh := range m.Shares {
		if sh.Source == source && sh.Fuel == fuel {
			return sh.Fraction
		}
	}
	return 0
}

func (m *Mix) sort() {
	sort.Slice(m.Shares, func(i, j int) bool {
		a, b := m.Shares[i], m.Shares[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Fuel < b.Fuel
	})
}

// trim drops the shares below Threshold and renormalizes the rest.
func (m *Mix) trim() error {
	var kept []Share
	var sum float64
	for _, sh := range m.Shares {
		if sh.Fraction < Threshold {
			continue
		}
		kept = append(kept, sh)
		sum += sh.Fraction
	}
	if !(sum > 0) {
		return lcierr.MixNotNormalizedError{Region: m.Region, Kind: m.Kind.String(), Sum: sum}
	}
	for i := range kept {
		kept[i].Fraction /= sum
	}
	m.Shares = kept
	m.sort()
	return nil
}

// Check checks every mix and returns the first error.
func Check(mixes []*Mix) error {
	for _, m := range mixes {
		if err := m.Check(); err != nil {
			return err
		}
	}
	return nil
}
