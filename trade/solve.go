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

	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
	"gonum.org/v1/gonum/mat"
)

// ClipTolerance is the largest magnitude of a negative attribution
// that is treated as round-off error and set to zero.
const ClipTolerance = 1e-9

// ResidualTolerance is the largest element of H (I - B) - G X⁻¹ that
// Solve accepts.
const ResidualTolerance = 1e-8

// Solution holds the result of attributing consumption to generation.
type Solution struct {
	// Index holds the BA codes of the rows and columns of all matrices
	// and vectors.
	Index []string

	// T is the trade matrix and Masked is T with the deliveries
	// between interconnects that are not joined by a tie removed.
	T, Masked *Matrix

	// G is generation, with zeros replaced by 1 MWh, X is the total
	// inflow (generation plus imports) and C is consumption (inflow
	// minus exports), all in MWh.
	G, X, C *mat.VecDense

	// B holds the imports of each column BA per unit of its inflow.
	B *mat.Dense

	// H holds the fraction of the electricity consumed in each column
	// BA that was generated in each row BA.
	H *mat.Dense
}

// BoundaryGeneration returns a copy of g where the generation of each
// foreign BA in t is set to its total deliveries in t, so that the
// foreign BA consumes none of the electricity it generates.
func BoundaryGeneration(t *Matrix, g map[string]float64, reg *region.Registry) map[string]float64 {
	o := make(map[string]float64, len(g))
	for k, v := range g {
		o[k] = v
	}
	for _, c := range t.Index {
		if reg.IsBA(c) && !reg.IsUS(c) {
			o[c] = t.Exports(c)
		}
	}
	return o
}

// Solve attributes the electricity consumed in each BA to the BAs where
// it was generated, given the trade matrix t, the annual net generation
// g of each BA, and a mask of the allowed trades. BAs in t that are
// missing from g are treated as having zero generation. mask may be nil.
//
// Electricity flowing through a BA is assumed to be a proportional
// blend of its own generation and its imports, so that
// H (I - B) = G X⁻¹, where G and X are diagonal. (I - B) is LU
// factorized and solved against the identity.
func Solve(t *Matrix, g map[string]float64, mask *Mask) (*Solution, error) {
	n := t.Len()
	s := &Solution{
		Index: t.Index,
		T:     t,
		G:     mat.NewVecDense(n, nil),
		X:     mat.NewVecDense(n, nil),
		C:     mat.NewVecDense(n, nil),
		B:     mat.NewDense(n, n, nil),
		H:     mat.NewDense(n, n, nil),
	}
	if mask != nil {
		s.Masked = t.Masked(mask)
	} else {
		s.Masked = t.clone()
	}
	tm := s.Masked.data

	for i, c := range t.Index {
		v := g[c]
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("trade: invalid generation for %s: %g", c, v)
		}
		if v == 0 {
			v = 1
		}
		s.G.SetVec(i, v)
	}
	for i := 0; i < n; i++ {
		x := s.G.AtVec(i) + mat.Sum(tm.ColView(i))
		if x == 0 {
			x = 1
		}
		s.X.SetVec(i, x)
		s.C.SetVec(i, x-mat.Sum(tm.RowView(i)))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s.B.Set(i, j, tm.At(i, j)/s.X.AtVec(j))
		}
	}

	a := identity(n)
	a.Sub(a, s.B)
	var lu mat.LU
	lu.Factorize(a)
	var inv mat.Dense
	if err := lu.Solve(&inv, false, identity(n)); err != nil {
		return nil, lcierr.InvariantError{Check: "nonsingular (I - B)", Detail: err.Error()}
	}
	for i := 0; i < n; i++ {
		f := s.G.AtVec(i) / s.X.AtVec(i)
		for j := 0; j < n; j++ {
			s.H.Set(i, j, f*inv.At(i, j))
		}
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	if r := s.Residual(); r > ResidualTolerance || math.IsNaN(r) {
		return nil, lcierr.InvariantError{
			Check:  "attribution residual",
			Detail: fmt.Sprintf("max |H (I - B) - G X⁻¹| = %g", r),
		}
	}
	return s, nil
}

// normalize clips round-off negatives and rescales the columns of H to
// sum to one.
func (s *Solution) normalize() error {
	n := len(s.Index)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			v := s.H.At(i, j)
			if v < 0 {
				if v < -ClipTolerance {
					return lcierr.InvariantError{
						Check:  "non-negative attribution",
						Detail: fmt.Sprintf("H[%s,%s] = %g", s.Index[i], s.Index[j], v),
					}
				}
				s.H.Set(i, j, 0)
				continue
			}
			sum += v
		}
		if sum == 0 {
			return lcierr.InvariantError{
				Check:  "non-empty attribution",
				Detail: fmt.Sprintf("column %s of H sums to zero", s.Index[j]),
			}
		}
		for i := 0; i < n; i++ {
			s.H.Set(i, j, s.H.At(i, j)/sum)
		}
	}
	return nil
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// ConsumptionMix returns the nonzero fractions of the electricity
// consumed in the given BA, keyed by the BA where it was generated.
func (s *Solution) ConsumptionMix(code string) (map[string]float64, error) {
	j, ok := s.T.Pos(code)
	if !ok {
		return nil, lcierr.UnknownRegionError{Code: code}
	}
	o := make(map[string]float64)
	for i, src := range s.Index {
		if v := s.H.At(i, j); v != 0 {
			o[src] = v
		}
	}
	return o, nil
}

// Attribution returns H[from, to].
func (s *Solution) Attribution(from, to string) float64 {
	i, ok := s.T.Pos(from)
	if !ok {
		return 0
	}
	j, ok := s.T.Pos(to)
	if !ok {
		return 0
	}
	return s.H.At(i, j)
}

// Residual returns the largest absolute element of H (I - B) - G X⁻¹.
func (s *Solution) Residual() float64 {
	n := len(s.Index)
	a := identity(n)
	a.Sub(a, s.B)
	var r mat.Dense
	r.Mul(s.H, a)
	var max float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.
			if i == j {
				want = s.G.AtVec(i) / s.X.AtVec(i)
			}
			if d := math.Abs(r.At(i, j) - want); d > max {
				max = d
			}
		}
	}
	return max
}
