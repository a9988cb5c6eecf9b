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

// Package distribution accounts for electricity transmission and
// distribution (T&D) losses between the grid and the user.
package distribution

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/internal/csvtable"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/region"
	"gonum.org/v1/gonum/stat"
)

// StateLoss returns the T&D loss rate of the given state in the given
// year: estimated losses divided by total disposition less direct use.
// If the workbook has no column for the year, the latest earlier year
// is used.
func (w *Workbooks) StateLoss(ctx context.Context, state string, year int) (float64, error) {
	s, err := w.sheet(ctx, state)
	if err != nil {
		return 0, err
	}
	cols, err := yearColumns(s)
	if err != nil {
		return 0, fmt.Errorf("distribution: %s: %v", state, err)
	}
	col, _, err := column(cols, year)
	if err != nil {
		return 0, fmt.Errorf("distribution: %s: %v", state, err)
	}
	var v [3]float64
	for i, label := range []string{LossesLabel, DispositionLabel, DirectUseLabel} {
		if v[i], err = rowValue(s, label, col); err != nil {
			return 0, fmt.Errorf("distribution: %s: %v", state, err)
		}
	}
	losses, disposition, direct := v[0], v[1], v[2]
	if !(disposition-direct > 0) {
		return 0, fmt.Errorf("distribution: %s: non-positive disposition less direct use", state)
	}
	loss := losses / (disposition - direct)
	if loss < 0 || loss >= 1 {
		return 0, fmt.Errorf("distribution: %s: invalid loss rate %g", state, loss)
	}
	return loss, nil
}

// StateLosses returns the loss rate of each of the given states.
func (w *Workbooks) StateLosses(ctx context.Context, states []string, year int) (map[string]float64, error) {
	o := make(map[string]float64, len(states))
	for _, s := range states {
		l, err := w.StateLoss(ctx, s, year)
		if err != nil {
			return nil, err
		}
		o[s] = l
	}
	return o, nil
}

// StateGeneration holds annual generation in MWh by BA and state, in
// the format map[BA]map[state]generation.
type StateGeneration map[string]map[string]float64

// ReadStateGeneration reads the generation of each BA in each state
// from a table with columns BA, State and Generation.
func ReadStateGeneration(r io.Reader, reg *region.Registry, anomalies *tally.Tally) (StateGeneration, error) {
	t, err := csvtable.Read(r, "state generation", "BA", "State", "Generation")
	if err != nil {
		return nil, fmt.Errorf("distribution: %v", err)
	}
	o := make(StateGeneration)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		ba := row.String("BA")
		if _, err := reg.Lookup(ba); err != nil {
			return nil, fmt.Errorf("distribution: state generation line %d: %w", row.Line(), err)
		}
		v, err := row.Float("Generation")
		if err != nil {
			anomalies.Add("malformed state generation", err.Error())
			continue
		}
		if o[ba] == nil {
			o[ba] = make(map[string]float64)
		}
		o[ba][row.String("State")] += v
	}
	return o, nil
}

// Losses computes the loss rates of regions.
type Losses struct {
	Regions *region.Registry

	// State holds the loss rate of each state.
	State map[string]float64

	// Weights holds the generation of each BA in each state.
	Weights StateGeneration

	Log logrus.FieldLogger
}

// mean returns the weighted mean loss of the states served by the
// given BAs, weighting each state by the BAs' generation in it. ok is
// false if there are no weighted states with a loss rate.
func (l *Losses) mean(bas []string) (loss float64, ok bool) {
	w := make(map[string]float64)
	for _, ba := range bas {
		for st, g := range l.Weights[ba] {
			if _, ok := l.State[st]; ok && g > 0 {
				w[st] += g
			}
		}
	}
	if len(w) == 0 {
		return 0, false
	}
	states := make([]string, 0, len(w))
	for st := range w {
		states = append(states, st)
	}
	sort.Strings(states)
	x := make([]float64, len(states))
	wt := make([]float64, len(states))
	for i, st := range states {
		x[i], wt[i] = l.State[st], w[st]
	}
	return stat.Mean(x, wt), true
}

// USMean returns the generation-weighted mean loss of all U.S.
// states, or the unweighted mean if there are no weights.
func (l *Losses) USMean() (float64, error) {
	if m, ok := l.mean(l.Regions.USBAs()); ok {
		return m, nil
	}
	if len(l.State) == 0 {
		return 0, fmt.Errorf("distribution: no state loss rates")
	}
	states := make([]string, 0, len(l.State))
	for st := range l.State {
		states = append(states, st)
	}
	sort.Strings(states)
	x := make([]float64, len(states))
	for i, st := range states {
		x[i] = l.State[st]
	}
	return stat.Mean(x, nil), nil
}

// Loss returns the loss rate of the given region on the given axis:
// the generation-weighted mean loss of the states its BAs serve.
// Regions without weighted state data get the U.S. mean.
func (l *Losses) Loss(code string, axis region.Axis) (float64, error) {
	bas, ok := l.Regions.Groups(axis)[code]
	if !ok {
		return 0, fmt.Errorf("distribution: no %s region %s", axis, code)
	}
	if m, ok := l.mean(bas); ok {
		return m, nil
	}
	m, err := l.USMean()
	if err != nil {
		return 0, err
	}
	log := l.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{"region": code, "axis": axis, "loss": m}).
		Debug("distribution: no state data; using U.S. mean loss")
	return m, nil
}
