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
	"github.com/spatialmodel/elci/region"
	"gonum.org/v1/gonum/mat"
)

// A Mask is a matrix of ones and zeros.
type Mask mat.Dense

// Mask multiplies d by the receiver, element-wise.
func (m *Mask) Mask(d *mat.Dense) {
	m2 := (mat.Dense)(*m)
	d.MulElem(&m2, d)
}

// InterconnectMask returns a mask over the given index with ones
// where electricity can flow between the row and column BAs: they are
// on the same interconnect or are joined by one of the ties listed in
// the region registry.
func InterconnectMask(index []string, reg *region.Registry) *Mask {
	n := len(index)
	m := mat.NewDense(n, n, nil)
	for i, a := range index {
		for j, b := range index {
			if i == j || reg.Trades(a, b) {
				m.Set(i, j, 1)
			}
		}
	}
	mm := Mask(*m)
	return &mm
}
