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

package region

import (
	"fmt"
	"sort"
)

// Axis is a region granularity that consumption mixes are reported at.
type Axis string

// The region axes, from finest to coarsest.
const (
	AxisBA   Axis = "BA"
	AxisFERC Axis = "FERC"
	AxisUS   Axis = "US"
)

// Axes lists all axes from finest to coarsest.
var Axes = []Axis{AxisBA, AxisFERC, AxisUS}

// ParseAxis returns the Axis named by s.
func ParseAxis(s string) (Axis, error) {
	for _, a := range Axes {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("region: invalid axis `%s`; valid options are BA, FERC and US", s)
}

// Kind returns the region Kind corresponding to the receiver.
func (a Axis) Kind() Kind {
	switch a {
	case AxisBA:
		return BA
	case AxisFERC:
		return FERC
	case AxisUS:
		return USTotal
	default:
		panic(fmt.Errorf("region: invalid axis %q", string(a)))
	}
}

// Groups returns the U.S. BAs grouped by the region of the given axis
// that they belong to. Map keys are region codes and the BA lists are
// in ascending order.
func (reg *Registry) Groups(axis Axis) map[string][]string {
	o := make(map[string][]string)
	switch axis {
	case AxisBA:
		for _, ba := range reg.usBAs {
			o[ba] = []string{ba}
		}
	case AxisFERC:
		for _, f := range reg.fercRegions {
			if m := reg.members[f]; len(m) > 0 {
				o[f] = append([]string(nil), m...)
			}
		}
	case AxisUS:
		o[reg.us.ID] = append([]string(nil), reg.usBAs...)
	default:
		panic(fmt.Errorf("region: invalid axis %q", string(axis)))
	}
	return o
}

// RegionsOn returns the ordered codes of the regions on the given axis
// that contain at least one U.S. BA.
func (reg *Registry) RegionsOn(axis Axis) []string {
	g := reg.Groups(axis)
	o := make([]string, 0, len(g))
	for r := range g {
		o = append(o, r)
	}
	sort.Strings(o)
	return o
}

// Sum aggregates the BA-level values to the given axis by summation.
// BAs that are not U.S. BAs are ignored.
func (reg *Registry) Sum(values map[string]float64, axis Axis) map[string]float64 {
	o := make(map[string]float64)
	for r, bas := range reg.Groups(axis) {
		var s float64
		var any bool
		for _, ba := range bas {
			if v, ok := values[ba]; ok {
				s += v
				any = true
			}
		}
		if any {
			o[r] = s
		}
	}
	return o
}

// WeightedMean aggregates the BA-level values to the given axis as
// the mean weighted by weights. Regions whose members have no
// positive weight are left out of the result.
func (reg *Registry) WeightedMean(values, weights map[string]float64, axis Axis) map[string]float64 {
	o := make(map[string]float64)
	for r, bas := range reg.Groups(axis) {
		var s, w float64
		for _, ba := range bas {
			v, ok := values[ba]
			if !ok || weights[ba] <= 0 {
				continue
			}
			s += v * weights[ba]
			w += weights[ba]
		}
		if w > 0 {
			o[r] = s / w
		}
	}
	return o
}

// Normalize returns a copy of v scaled so that its values sum to one.
// It returns an error if the values do not have a positive sum.
func Normalize(v map[string]float64) (map[string]float64, error) {
	var sum float64
	for _, x := range v {
		sum += x
	}
	if !(sum > 0) {
		return nil, fmt.Errorf("region: cannot normalize values with sum %g", sum)
	}
	o := make(map[string]float64, len(v))
	for k, x := range v {
		o[k] = x / sum
	}
	return o, nil
}

// RollupShares aggregates BA-level shares (such as fuel fractions,
// keyed by BA and then by category) to the given axis, weighting each
// BA by weights and renormalizing each region so its shares sum to
// one. BAs with no positive weight do not contribute.
func (reg *Registry) RollupShares(shares map[string]map[string]float64, weights map[string]float64, axis Axis) (map[string]map[string]float64, error) {
	o := make(map[string]map[string]float64)
	for r, bas := range reg.Groups(axis) {
		acc := make(map[string]float64)
		for _, ba := range bas {
			w := weights[ba]
			if w <= 0 {
				continue
			}
			for k, s := range shares[ba] {
				acc[k] += s * w
			}
		}
		if len(acc) == 0 {
			continue
		}
		n, err := Normalize(acc)
		if err != nil {
			return nil, fmt.Errorf("region: rolling up %s: %v", r, err)
		}
		o[r] = n
	}
	return o, nil
}
