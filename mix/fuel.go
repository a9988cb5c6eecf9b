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
	"strings"
)

// Fuel is a coarse classification of the primary fuel of generation.
type Fuel string

// The fuel categories.
const (
	Coal        Fuel = "COAL"
	Gas         Fuel = "GAS"
	Oil         Fuel = "OIL"
	Nuclear     Fuel = "NUCLEAR"
	Hydro       Fuel = "HYDRO"
	Wind        Fuel = "WIND"
	Solar       Fuel = "SOLAR"
	Geothermal  Fuel = "GEOTHERMAL"
	Biomass     Fuel = "BIOMASS"
	OtherFossil Fuel = "OTHF"
	Mixed       Fuel = "MIXED"
)

// Fuels holds every fuel category in ascending order.
var Fuels = []Fuel{Biomass, Coal, Gas, Geothermal, Hydro, Mixed, Nuclear, Oil, OtherFossil, Solar, Wind}

var fuelAliases = map[string]Fuel{
	"NG":          Gas,
	"NATURAL GAS": Gas,
	"PETROLEUM":   Oil,
	"OTHER":       OtherFossil,
	"URANIUM":     Nuclear,
}

// ParseFuel returns the fuel category named by s, ignoring case.
func ParseFuel(s string) (Fuel, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for _, f := range Fuels {
		if string(f) == u {
			return f, nil
		}
	}
	if f, ok := fuelAliases[u]; ok {
		return f, nil
	}
	return "", fmt.Errorf("mix: invalid fuel category `%s`", s)
}

// energyFuturesFuels maps the generation variables of the Canada
// Energy Regulator's Energy Futures data to fuel categories.
var energyFuturesFuels = map[string]Fuel{
	"biomass/geothermal": Biomass,
	"coal & coke":        Coal,
	"hydro/wave/tidal":   Hydro,
	"natural gas":        Gas,
	"oil":                Oil,
	"solar":              Solar,
	"uranium":            Nuclear,
	"wind":               Wind,
}

// EnergyFuturesFuel returns the fuel category of an Energy Futures
// generation variable. ok is false for variables, such as totals, that
// do not name a fuel.
func EnergyFuturesFuel(variable string) (f Fuel, ok bool) {
	f, ok = energyFuturesFuels[strings.ToLower(strings.TrimSpace(variable))]
	return
}

func sortFuels(f []Fuel) {
	sort.Slice(f, func(i, j int) bool { return f[i] < f[j] })
}
