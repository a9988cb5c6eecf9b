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
	"math"

	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/region"
)

// Validate checks the structure of a linked set of process records and
// returns the first violation found. Processes that are neither the
// provider of another process nor a product-system root are returned
// as orphans; they are not an error.
func Validate(records []*Record, reg *region.Registry) ([]lcierr.OrphanProcessError, error) {
	byID := make(map[string]*Record, len(records))
	for _, r := range records {
		if _, ok := byID[r.Process.ID]; ok {
			return nil, lcierr.InvariantError{Check: "unique ids", Detail: fmt.Sprintf("id %s of `%s` is not unique", r.Process.ID, r.Name())}
		}
		byID[r.Process.ID] = r
	}
	used := make(map[string]bool)
	for _, r := range records {
		if err := checkRecord(r); err != nil {
			return nil, err
		}
		if err := checkProviders(r, byID, used); err != nil {
			return nil, err
		}
	}
	if err := checkCoverage(records, reg); err != nil {
		return nil, err
	}
	var orphans []lcierr.OrphanProcessError
	for _, r := range records {
		if !r.Root && !used[r.Process.ID] {
			orphans = append(orphans, lcierr.OrphanProcessError{Process: r.Name()})
		}
	}
	return orphans, nil
}

// checkRecord checks the name, reference and amounts of a single
// record.
func checkRecord(r *Record) error {
	if p, ok := namePatterns[r.Stage]; !ok || !p.MatchString(r.Name()) {
		return lcierr.InvariantError{Check: "process name", Detail: fmt.Sprintf("`%s` is not a valid %s name", r.Name(), r.Stage)}
	}
	var refs int
	for _, e := range r.Process.Exchanges {
		if e.QuantitativeReference {
			refs++
			if e.Input || e.Amount != 1 {
				return lcierr.InvariantError{Check: "quantitative reference", Detail: fmt.Sprintf("`%s`: reference must be an output of 1", r.Name())}
			}
		}
	}
	if refs != 1 {
		return lcierr.InvariantError{Check: "quantitative reference", Detail: fmt.Sprintf("`%s` has %d quantitative references", r.Name(), refs)}
	}

	switch r.Stage {
	case Generation:
		var n int
		for _, e := range r.Process.Exchanges {
			if e.Input && e.Flow.Name == ConstructionFlow {
				n++
				if e.DefaultProvider == nil {
					return lcierr.UnresolvedProviderError{Process: r.Name(), Provider: ConstructionFlow}
				}
			}
		}
		if n != 1 {
			return lcierr.InvariantError{Check: "construction input", Detail: fmt.Sprintf("`%s` has %d construction inputs", r.Name(), n)}
		}
		fallthrough
	case CanadianProxy:
		type key struct{ id, compartment string }
		seen := make(map[key]bool)
		for i, e := range r.Process.Exchanges {
			if e.QuantitativeReference || r.providers[i] != "" {
				continue
			}
			k := key{e.Flow.ID, e.Flow.Category}
			if seen[k] {
				return lcierr.InvariantError{Check: "unique elementary flows", Detail: fmt.Sprintf("`%s`: flow %s (%s) is repeated", r.Name(), e.Flow.Name, e.Flow.Category)}
			}
			seen[k] = true
		}
	case GenerationMix, ConsumptionMix, UserMix:
		var sum float64
		for _, e := range r.Process.Exchanges {
			if e.Input {
				sum += e.Amount
			}
		}
		want := 1.0
		if r.Stage == UserMix {
			want = 1 / (1 - r.Loss)
		}
		if math.Abs(sum-want) > mix.Tolerance*want || math.IsNaN(sum) {
			return lcierr.MixNotNormalizedError{Region: r.Region, Kind: r.Stage.String(), Sum: sum / want}
		}
	}
	return nil
}

// checkProviders checks that every input of r that needs a provider
// has one, and that the providers are on the level below r's.
func checkProviders(r *Record, byID map[string]*Record, used map[string]bool) error {
	level := r.Stage.Level()
	for i, e := range r.Process.Exchanges {
		if e.QuantitativeReference {
			continue
		}
		needs := r.providers[i] != "" || (e.Input && level >= GridLevel)
		if !needs {
			if e.DefaultProvider != nil {
				return lcierr.InvariantError{Check: "provider graph", Detail: fmt.Sprintf("`%s`: flow %s has an unexpected provider", r.Name(), e.Flow.Name)}
			}
			continue
		}
		if e.DefaultProvider == nil {
			name := r.providers[i]
			if name == "" {
				name = e.Flow.Name
			}
			return lcierr.UnresolvedProviderError{Process: r.Name(), Provider: name}
		}
		p, ok := byID[e.DefaultProvider.ID]
		if !ok {
			return lcierr.UnresolvedProviderError{Process: r.Name(), Provider: e.DefaultProvider.Name}
		}
		if want, ok := providerLevel[level]; !ok || p.Stage.Level() != want {
			return lcierr.InvariantError{
				Check:  "provider graph",
				Detail: fmt.Sprintf("%s process `%s` references %s process `%s`", level, r.Name(), p.Stage.Level(), p.Name()),
			}
		}
		if ref := p.Process.Reference(); ref == nil || ref.Flow.ID != e.Flow.ID {
			return lcierr.InvariantError{
				Check:  "provider graph",
				Detail: fmt.Sprintf("`%s` does not produce %s for `%s`", p.Name(), e.Flow.Name, r.Name()),
			}
		}
		used[p.Process.ID] = true
	}
	return nil
}

// checkCoverage checks that the regions with at-grid consumption mixes
// are those with at-user consumption mixes, that every U.S. BA that has
// BA-level processes has all three of them, and that Canadian BAs are
// represented only by proxies.
func checkCoverage(records []*Record, reg *region.Registry) error {
	type key struct {
		code string
		axis region.Axis
	}
	has := make(map[Stage]map[key]bool)
	for _, r := range records {
		if has[r.Stage] == nil {
			has[r.Stage] = make(map[key]bool)
		}
		has[r.Stage][key{r.Region, r.Axis}] = true
	}
	for k := range has[ConsumptionMix] {
		if !has[UserMix][k] {
			return lcierr.InvariantError{Check: "at-user coverage", Detail: fmt.Sprintf("%s region %s has an at-grid but no at-user consumption mix", k.axis, k.code)}
		}
	}
	for k := range has[UserMix] {
		if !has[ConsumptionMix][k] {
			return lcierr.InvariantError{Check: "at-user coverage", Detail: fmt.Sprintf("%s region %s has an at-user but no at-grid consumption mix", k.axis, k.code)}
		}
	}
	if len(has[ConsumptionMix]) > 0 {
		byBA := false
		for k := range has[ConsumptionMix] {
			if k.axis == region.AxisBA {
				byBA = true
				break
			}
		}
		for _, ba := range reg.USBAs() {
			k := key{ba, region.AxisBA}
			n := 0
			for _, s := range []Stage{GenerationMix, ConsumptionMix, UserMix} {
				if has[s][k] {
					n++
				}
			}
			if byBA && n != 0 && n != 3 {
				return lcierr.InvariantError{Check: "BA coverage", Detail: fmt.Sprintf("BA %s has %d of its 3 mix processes", ba, n)}
			}
		}
	}
	for _, ba := range reg.CanadianBAs() {
		k := key{ba, region.AxisBA}
		for _, s := range []Stage{Generation, GenerationMix, ConsumptionMix, UserMix} {
			if has[s][k] {
				return lcierr.InvariantError{Check: "Canadian coverage", Detail: fmt.Sprintf("Canadian BA %s has a %s process", ba, s)}
			}
		}
	}
	return nil
}
