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

package inventory

import (
	"fmt"

	"github.com/spatialmodel/elci/mix"
)

// Data quality and stage of the Canadian proxy inventories. Fuel-specific
// Canadian upstream data are not available, so the proxies combine
// upstream and generation and are geographically poorly correlated.
const (
	ProxyDQI   = "(3;3;2;4;3)"
	ProxyStage = "life cycle"
)

// Proxy is an inventory standing in for the generation of a Canadian
// balancing authority (BA).
type Proxy struct {
	BA string

	// Fuels holds the fuel fractions of the BA's generation.
	Fuels map[mix.Fuel]float64

	// Inventory holds the per-MWh inventory of the BA's generation.
	Inventory *Inventory

	// Missing holds the fuels of the BA that have no U.S. average
	// inventory, in ascending order.
	Missing []mix.Fuel

	DQI   string
	Stage string
}

// CanadianProxy returns a proxy inventory for the given Canadian BA:
// the U.S. average inventory of each fuel, plus its upstream inventory
// if any, scaled by the BA's fraction of generation from that fuel.
// average and upstream are keyed by the code of the U.S.
func CanadianProxy(ba, us string, fuels map[mix.Fuel]float64, average, upstream Inventories) (*Proxy, error) {
	p := &Proxy{
		BA:        ba,
		Fuels:     fuels,
		Inventory: &Inventory{Region: ba, Fuel: mix.Mixed},
		DQI:       ProxyDQI,
		Stage:     ProxyStage,
	}
	for _, f := range mix.Fuels {
		share, ok := fuels[f]
		if !ok || share == 0 {
			continue
		}
		avg, ok := average.Get(us, f)
		if !ok {
			p.Missing = append(p.Missing, f)
			continue
		}
		parts := []*Inventory{avg}
		if up, ok := upstream.Get(us, f); ok {
			parts = append(parts, up)
		}
		for _, part := range parts {
			for _, e := range part.Scaled(share).Entries {
				if _, err := p.Inventory.add(e.Flow, e.Amount); err != nil {
					return nil, fmt.Errorf("inventory: Canadian proxy for %s: %v", ba, err)
				}
			}
		}
	}
	p.Inventory.sort()
	return p, nil
}
