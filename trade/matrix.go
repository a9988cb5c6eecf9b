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

// Package trade turns reported balancing authority (BA) exchanges into
// an annual trade matrix and attributes the electricity consumed in
// each BA to the BAs where it was generated.
package trade

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a square table of annual electricity deliveries in MWh.
// Element (i, j) holds the amount delivered from BA i to BA j.
type Matrix struct {
	// Index holds the BA codes of the rows and columns, in ascending
	// order.
	Index []string

	pos  map[string]int
	data *mat.Dense
}

// NewMatrix returns an all-zero matrix over the given BA codes.
func NewMatrix(index []string) *Matrix {
	idx := append([]string(nil), index...)
	sort.Strings(idx)
	m := &Matrix{
		Index: idx,
		pos:   make(map[string]int, len(idx)),
		data:  mat.NewDense(len(idx), len(idx), nil),
	}
	for i, c := range idx {
		m.pos[c] = i
	}
	return m
}

// Pos returns the row and column number of the given BA.
func (m *Matrix) Pos(code string) (int, bool) {
	i, ok := m.pos[code]
	return i, ok
}

// Len returns the number of BAs in the matrix.
func (m *Matrix) Len() int { return len(m.Index) }

// At returns the amount delivered from one BA to another. BAs that are
// not in the matrix deliver and receive nothing.
func (m *Matrix) At(from, to string) float64 {
	i, ok := m.pos[from]
	if !ok {
		return 0
	}
	j, ok := m.pos[to]
	if !ok {
		return 0
	}
	return m.data.At(i, j)
}

// Set sets the amount delivered from one BA to another.
func (m *Matrix) Set(from, to string, v float64) error {
	i, ok := m.pos[from]
	if !ok {
		return fmt.Errorf("trade: BA %s is not in the trade matrix", from)
	}
	j, ok := m.pos[to]
	if !ok {
		return fmt.Errorf("trade: BA %s is not in the trade matrix", to)
	}
	if i == j {
		return fmt.Errorf("trade: self-exchange %s-%s", from, to)
	}
	if v < 0 {
		return fmt.Errorf("trade: negative delivery %s-%s: %g", from, to, v)
	}
	m.data.Set(i, j, v)
	return nil
}

// Dense returns a copy of the matrix data.
func (m *Matrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(m.data)
}

// Exports returns the total amount delivered by the given BA.
func (m *Matrix) Exports(code string) float64 {
	i, ok := m.pos[code]
	if !ok {
		return 0
	}
	return mat.Sum(m.data.RowView(i))
}

// Imports returns the total amount received by the given BA.
func (m *Matrix) Imports(code string) float64 {
	j, ok := m.pos[code]
	if !ok {
		return 0
	}
	return mat.Sum(m.data.ColView(j))
}

func (m *Matrix) clone() *Matrix {
	o := &Matrix{Index: m.Index, pos: m.pos, data: mat.DenseCopyOf(m.data)}
	return o
}

// Threshold returns a copy of the receiver where every element smaller
// than rel times the sum of its column is set to zero.
func (m *Matrix) Threshold(rel float64) *Matrix {
	o := m.clone()
	n := m.Len()
	for j := 0; j < n; j++ {
		limit := rel * mat.Sum(m.data.ColView(j))
		for i := 0; i < n; i++ {
			if v := o.data.At(i, j); v != 0 && v < limit {
				o.data.Set(i, j, 0)
			}
		}
	}
	return o
}

// Masked returns a copy of the receiver multiplied element-wise by
// the given mask.
func (m *Matrix) Masked(mask *Mask) *Matrix {
	o := m.clone()
	mask.Mask(o.data)
	return o
}

// Edge is a nonzero element of a trade matrix.
type Edge struct {
	From, To string
	MWh      float64
}

// Edges returns the nonzero elements of the matrix, ordered by From
// and then To.
func (m *Matrix) Edges() []Edge {
	var o []Edge
	for i, from := range m.Index {
		for j, to := range m.Index {
			if v := m.data.At(i, j); v != 0 {
				o = append(o, Edge{From: from, To: to, MWh: v})
			}
		}
	}
	return o
}

// Table returns the matrix as rows of text, starting with a header
// row, suitable for writing with encoding/csv.
func (m *Matrix) Table() [][]string {
	o := make([][]string, 0, m.Len()+1)
	o = append(o, append([]string{"from\\to"}, m.Index...))
	for i, from := range m.Index {
		row := make([]string, m.Len()+1)
		row[0] = from
		for j := range m.Index {
			row[j+1] = strconv.FormatFloat(m.data.At(i, j), 'g', -1, 64)
		}
		o = append(o, row)
	}
	return o
}
