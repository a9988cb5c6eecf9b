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

package trade

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/eia"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

// MaxDiscrepancy is the largest symmetric relative discrepancy between
// the two reported values of a pair for which the mean of the two is
// used. For larger discrepancies, the exporter's value is used.
const MaxDiscrepancy = 0.2

// Anomaly kinds recorded during reconciliation.
const (
	Inconsistent = "inconsistent pair"
	Foreign      = "foreign or unknown BA"
	SelfLoop     = "self exchange"
)

// Reconciliation holds statistics about a call to Reconcile.
type Reconciliation struct {
	// ByMean is the number of pairs whose reported values agreed closely
	// enough to be averaged.
	ByMean int

	// ByExporter is the number of pairs for which the exporter's
	// reported value was used.
	ByExporter int

	// Dropped holds the pairs without a resolvable flow direction.
	Dropped []lcierr.TradeInconsistencyError

	Anomalies tally.Tally
}

// Discrepancy returns the symmetric relative discrepancy between two
// reported magnitudes.
func Discrepancy(a, b float64) float64 {
	a, b = math.Abs(a), math.Abs(b)
	return (math.Abs(a/b-1) + math.Abs(b/a-1)) / 2
}

// ReconcilePair resolves the annual exchanges reported by both sides of
// a pair. ab is the amount A reports sending to B and ba the amount B
// reports sending to A. It returns the exporter, the importer and the
// amount delivered. An error is returned if the reports do not give a
// flow direction.
func ReconcilePair(a, b string, ab, ba float64) (from, to string, mwh float64, byMean bool, err error) {
	if ab == 0 || ba == 0 || (ab > 0) == (ba > 0) {
		return "", "", 0, false, lcierr.TradeInconsistencyError{A: a, B: b, AtoB: ab, BtoA: ba}
	}
	from, to = a, b
	exporterValue := ab
	if ab < 0 {
		from, to = b, a
		exporterValue = ba
	}
	if Discrepancy(ab, ba) < MaxDiscrepancy {
		return from, to, (math.Abs(ab) + math.Abs(ba)) / 2, true, nil
	}
	return from, to, math.Abs(exporterValue), false, nil
}

// Reconcile sums the hourly exchanges in ex over the year and turns
// them into a non-negative trade matrix over all of the BAs in reg.
// Only exchanges between U.S. BAs are used; trade with foreign BAs is
// added separately with AddBoundaryTrade.
func Reconcile(ex *eia.ExchangeFrame, reg *region.Registry, log logrus.FieldLogger) (*Matrix, *Reconciliation, error) {
	return ReconcileTotals(ex.Total(), reg, log)
}

// ReconcileTotals is like Reconcile but takes the annual total of each
// directed pair.
func ReconcileTotals(totals map[eia.Pair]float64, reg *region.Registry, log logrus.FieldLogger) (*Matrix, *Reconciliation, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	rec := new(Reconciliation)
	m := NewMatrix(reg.BAs())

	// Collect the unordered pairs in a deterministic order.
	type pairKey struct{ a, b string }
	seen := make(map[pairKey]bool)
	var keys []pairKey
	for p := range totals {
		if p.From == p.To {
			rec.Anomalies.Add(SelfLoop, p.String())
			continue
		}
		if !reg.IsUS(p.From) || !reg.IsUS(p.To) {
			rec.Anomalies.Add(Foreign, p.String())
			continue
		}
		k := pairKey{a: p.From, b: p.To}
		if k.a > k.b {
			k.a, k.b = k.b, k.a
		}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	for _, k := range keys {
		ab := totals[eia.Pair{From: k.a, To: k.b}]
		ba := totals[eia.Pair{From: k.b, To: k.a}]
		from, to, v, byMean, err := ReconcilePair(k.a, k.b, ab, ba)
		if err != nil {
			tie := err.(lcierr.TradeInconsistencyError)
			rec.Dropped = append(rec.Dropped, tie)
			rec.Anomalies.Add(Inconsistent, tie.Error())
			continue
		}
		if byMean {
			rec.ByMean++
		} else {
			rec.ByExporter++
		}
		if err := m.Set(from, to, v); err != nil {
			return nil, nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"mean":     rec.ByMean,
		"exporter": rec.ByExporter,
		"dropped":  len(rec.Dropped),
	}).Info("trade: reconciled BA exchanges")
	rec.Anomalies.Log(log, "trade")
	return m, rec, nil
}

// Flow is an annual delivery between a foreign BA and a U.S. BA.
type Flow struct {
	From, To string
	MWh      float64
}

// AddBoundaryTrade adds deliveries between foreign (for example
// Canadian) BAs and U.S. BAs to m. Exactly one side of each flow must be
// a U.S. BA. Flows for the same pair are summed, and flows in opposite
// directions are netted so that at most one direction is nonzero.
func AddBoundaryTrade(m *Matrix, flows []Flow, reg *region.Registry) error {
	for _, f := range flows {
		for _, c := range []string{f.From, f.To} {
			if _, err := reg.Lookup(c); err != nil {
				return fmt.Errorf("trade: boundary flow %s-%s: %w", f.From, f.To, err)
			}
		}
		if reg.IsUS(f.From) == reg.IsUS(f.To) {
			return fmt.Errorf("trade: boundary flow %s-%s must have exactly one U.S. BA", f.From, f.To)
		}
		if f.MWh < 0 {
			return fmt.Errorf("trade: boundary flow %s-%s is negative: %g", f.From, f.To, f.MWh)
		}
		fwd := m.At(f.From, f.To) + f.MWh
		rev := m.At(f.To, f.From)
		net := math.Min(fwd, rev)
		if err := m.Set(f.From, f.To, fwd-net); err != nil {
			return err
		}
		if err := m.Set(f.To, f.From, rev-net); err != nil {
			return err
		}
	}
	return nil
}
