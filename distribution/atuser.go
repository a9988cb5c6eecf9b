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

package distribution

import (
	"fmt"

	"github.com/spatialmodel/elci/mix"
)

// UserMix is the mix of electricity delivered to the user in a region:
// the at-grid consumption mix scaled up to cover the T&D loss.
type UserMix struct {
	Grid *mix.Mix
	Loss float64
}

// AtUser returns the at-user mix corresponding to the given at-grid
// consumption mix and loss rate.
func AtUser(grid *mix.Mix, loss float64) (*UserMix, error) {
	if grid.Kind != mix.Consumption {
		return nil, fmt.Errorf("distribution: %s mix for %s is not a consumption mix", grid.Kind, grid.Region)
	}
	if loss < 0 || loss >= 1 {
		return nil, fmt.Errorf("distribution: invalid loss rate %g for %s", loss, grid.Region)
	}
	return &UserMix{Grid: grid, Loss: loss}, nil
}

// Amount returns the amount of at-grid share i of the mix required to
// deliver 1 MWh to the user.
func (u *UserMix) Amount(i int) float64 {
	return u.Grid.Shares[i].Fraction / (1 - u.Loss)
}

// Total returns the sum of the amounts of all shares.
func (u *UserMix) Total() float64 {
	var s float64
	for i := range u.Grid.Shares {
		s += u.Amount(i)
	}
	return s
}
