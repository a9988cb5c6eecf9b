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

// Package eia reads the EIA-930 hourly electric grid monitor bulk
// data file and extracts the balancing authority (BA) net generation,
// total interchange and BA-to-BA exchange series for one year.
package eia

import (
	"fmt"
	"sort"
	"time"
)

// Frame is a table of hourly values with one column per BA.
type Frame struct {
	// Index holds the UTC hours of the rows.
	Index []time.Time

	// Columns holds the BA codes, in ascending order.
	Columns []string

	// Values holds the data in the format Values[column][row].
	Values [][]float64

	columnIndex map[string]int
}

func newFrame(index []time.Time, columns []string) *Frame {
	sort.Strings(columns)
	f := &Frame{
		Index:       index,
		Columns:     columns,
		Values:      make([][]float64, len(columns)),
		columnIndex: make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		f.Values[i] = make([]float64, len(index))
		f.columnIndex[c] = i
	}
	return f
}

// Column returns the values for the given BA, or nil if the frame does
// not have a column for it.
func (f *Frame) Column(ba string) []float64 {
	i, ok := f.columnIndex[ba]
	if !ok {
		return nil
	}
	return f.Values[i]
}

// Total returns the sum of all hourly values for each BA.
func (f *Frame) Total() map[string]float64 {
	o := make(map[string]float64, len(f.Columns))
	for i, c := range f.Columns {
		var s float64
		for _, v := range f.Values[i] {
			s += v
		}
		o[c] = s
	}
	return o
}

// Pair is a directed pair of BAs.
type Pair struct {
	From, To string
}

func (p Pair) String() string { return p.From + "-" + p.To }

// HourlyExchange is the amount of electricity exchanged between two BAs
// during one hour, as reported by From. A positive amount means that
// From delivered electricity to To.
type HourlyExchange struct {
	From, To string
	Time     time.Time
	MWh      float64
}

// ExchangeFrame is a table of hourly BA-to-BA exchanges with one column
// per directed pair.
type ExchangeFrame struct {
	// Index holds the UTC hours of the rows.
	Index []time.Time

	// Pairs holds the directed pairs, sorted by From and then To.
	Pairs []Pair

	// Values holds the data in the format Values[pair][row].
	Values [][]float64
}

// Total returns the sum over the year of each directed pair.
func (f *ExchangeFrame) Total() map[Pair]float64 {
	o := make(map[Pair]float64, len(f.Pairs))
	for i, p := range f.Pairs {
		var s float64
		for _, v := range f.Values[i] {
			s += v
		}
		o[p] = s
	}
	return o
}

// Each calls fn for every hourly exchange in the frame, ordered by pair
// and then by time.
func (f *ExchangeFrame) Each(fn func(HourlyExchange)) {
	for i, p := range f.Pairs {
		for j, t := range f.Index {
			fn(HourlyExchange{From: p.From, To: p.To, Time: t, MWh: f.Values[i][j]})
		}
	}
}

// hours returns every UTC hour in the given calendar year, inclusive of
// the first and last hour.
func hours(year int) []time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 0, 0, 0, time.UTC)
	var o []time.Time
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		o = append(o, t)
	}
	return o
}

func (p Pair) less(o Pair) bool {
	if p.From != o.From {
		return p.From < o.From
	}
	return p.To < o.To
}

func sortPairs(p []Pair) {
	sort.Slice(p, func(i, j int) bool { return p[i].less(p[j]) })
}

func (p Pair) valid() error {
	if p.From == p.To {
		return fmt.Errorf("self-exchange %s", p)
	}
	return nil
}
