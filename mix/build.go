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
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/region"
	"github.com/spatialmodel/elci/trade"
)

// Anomaly kinds recorded while building mixes.
const (
	NoFuelMix      = "source without fuel mix"
	NoSources      = "consumption without sources"
	NoRegionWeight = "region without generation"
)

// Builder builds regional mixes.
type Builder struct {
	Regions *region.Registry

	// Fuels holds the fuel fractions of the U.S. and Canadian BAs.
	Fuels Shares

	// Generation holds the annual net generation of each BA in MWh,
	// used to weight BAs when aggregating to coarser regions.
	Generation map[string]float64

	Log logrus.FieldLogger

	Anomalies tally.Tally

	generation map[string]*Mix
}

func (b *Builder) log() logrus.FieldLogger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}

// GenerationMix returns the generation mix of the given BA. Fuels with
// fractions below Threshold are dropped and the rest renormalized.
func (b *Builder) GenerationMix(ba string) (*Mix, error) {
	if m, ok := b.generation[ba]; ok {
		return m, nil
	}
	fuels, ok := b.Fuels[ba]
	if !ok {
		return nil, fmt.Errorf("mix: no fuel mix for %s", ba)
	}
	m := &Mix{Region: ba, Axis: region.AxisBA, Kind: Generation}
	for _, f := range Fuels {
		if v, ok := fuels[f]; ok {
			m.Shares = append(m.Shares, Share{Source: ba, Fuel: f, Fraction: v})
		}
	}
	if err := m.trim(); err != nil {
		return nil, err
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	if b.generation == nil {
		b.generation = make(map[string]*Mix)
	}
	b.generation[ba] = m
	return m, nil
}

// GenerationMixes returns the generation mix of every U.S. BA that has
// a fuel mix, in ascending order of BA.
func (b *Builder) GenerationMixes() ([]*Mix, error) {
	var o []*Mix
	for _, ba := range b.Regions.USBAs() {
		if _, ok := b.Fuels[ba]; !ok {
			continue
		}
		m, err := b.GenerationMix(ba)
		if err != nil {
			return nil, err
		}
		o = append(o, m)
	}
	return o, nil
}

// ConsumptionMix returns the at-grid consumption mix of the given BA:
// the generation mix of each source BA that supplies at least
// Threshold of its consumption, scaled by that share. Sources without a
// fuel mix are dropped and the mix renormalized.
func (b *Builder) ConsumptionMix(s *trade.Solution, ba string) (*Mix, error) {
	origins, err := s.ConsumptionMix(ba)
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(origins))
	for src := range origins {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	m := &Mix{Region: ba, Axis: region.AxisBA, Kind: Consumption}
	var sum float64
	for _, src := range sources {
		h := origins[src]
		if h < Threshold {
			continue
		}
		if _, ok := b.Fuels[src]; !ok {
			b.Anomalies.Add(NoFuelMix, fmt.Sprintf("%s supplies %.3g of %s", src, h, ba))
			continue
		}
		g, err := b.GenerationMix(src)
		if err != nil {
			return nil, err
		}
		for _, sh := range g.Shares {
			m.Shares = append(m.Shares, Share{Source: src, Fuel: sh.Fuel, Fraction: h * sh.Fraction})
			sum += h * sh.Fraction
		}
	}
	if !(sum > 0) {
		return nil, nil
	}
	for i := range m.Shares {
		m.Shares[i].Fraction /= sum
	}
	m.sort()
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// ConsumptionMixes returns the at-grid consumption mix of every U.S. BA
// in the solution, in ascending order of BA. BAs none of whose sources
// have a fuel mix are skipped.
func (b *Builder) ConsumptionMixes(s *trade.Solution) ([]*Mix, error) {
	var o []*Mix
	for _, ba := range s.Index {
		if !b.Regions.IsUS(ba) {
			continue
		}
		m, err := b.ConsumptionMix(s, ba)
		if err != nil {
			return nil, err
		}
		if m == nil {
			b.Anomalies.Add(NoSources, ba)
			continue
		}
		o = append(o, m)
	}
	b.log().WithFields(logrus.Fields{
		"mixes":   len(o),
		"skipped": b.Anomalies.Count(NoSources),
	}).Info("mix: built BA consumption mixes")
	return o, nil
}

// Rollup aggregates BA-level mixes to the regions of the given axis,
// weighting each BA by its generation and renormalizing. For
// generation mixes, the source of every share is set to the aggregate
// region. Regions whose BAs all lack a mix or a positive weight are
// left out.
func (b *Builder) Rollup(mixes []*Mix, axis region.Axis) ([]*Mix, error) {
	byBA := make(map[string]*Mix, len(mixes))
	for _, m := range mixes {
		if m.Axis != region.AxisBA {
			return nil, fmt.Errorf("mix: cannot roll up %s mix for %s from axis %s", m.Kind, m.Region, m.Axis)
		}
		byBA[m.Region] = m
	}
	groups := b.Regions.Groups(axis)
	var o []*Mix
	for _, r := range b.Regions.RegionsOn(axis) {
		type key struct {
			source string
			fuel   Fuel
		}
		acc := make(map[key]float64)
		var kind Kind
		var sum float64
		for _, ba := range groups[r] {
			m, ok := byBA[ba]
			if !ok {
				continue
			}
			w := b.Generation[ba]
			if axis == region.AxisBA {
				w = 1
			}
			if !(w > 0) {
				continue
			}
			kind = m.Kind
			for _, sh := range m.Shares {
				k := key{source: sh.Source, fuel: sh.Fuel}
				if m.Kind == Generation {
					k.source = r
				}
				acc[k] += sh.Fraction * w
				sum += sh.Fraction * w
			}
		}
		if !(sum > 0) {
			b.Anomalies.Add(NoRegionWeight, fmt.Sprintf("%s (%s)", r, axis))
			continue
		}
		m := &Mix{Region: r, Axis: axis, Kind: kind}
		for k, v := range acc {
			m.Shares = append(m.Shares, Share{Source: k.source, Fuel: k.fuel, Fraction: v / sum})
		}
		m.sort()
		if err := m.Check(); err != nil {
			return nil, err
		}
		o = append(o, m)
	}
	return o, nil
}

// FuelShares returns the generation-weighted fuel fractions of the
// given generation mixes aggregated to the given axis.
func (b *Builder) FuelShares(generation []*Mix, axis region.Axis) (map[string]map[string]float64, error) {
	shares := make(map[string]map[string]float64, len(generation))
	for _, m := range generation {
		s := make(map[string]float64)
		for f, v := range m.ByFuel() {
			s[string(f)] = v
		}
		shares[m.Region] = s
	}
	return b.Regions.RollupShares(shares, b.Generation, axis)
}
