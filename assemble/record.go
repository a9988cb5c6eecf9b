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

// Package assemble turns regional mixes and inventories into openLCA
// process records, links every input to the process that provides it,
// and checks the result.
package assemble

import (
	"fmt"
	"regexp"

	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/olca"
	"github.com/spatialmodel/elci/region"
)

// GenerationName returns the name of the process generating
// electricity from fuel in the given BA.
func GenerationName(fuel mix.Fuel, ba string) string {
	return fmt.Sprintf("Electricity - %s - %s", fuel, ba)
}

// GenerationMixName returns the name of the generation mix process of
// the given region. Canadian proxy processes share this name.
func GenerationMixName(code string) string {
	return fmt.Sprintf("Electricity; at grid; generation mix - %s", code)
}

// ConsumptionMixName returns the name of the at-grid consumption mix
// process of the given region.
func ConsumptionMixName(code string, axis region.Axis) string {
	return fmt.Sprintf("Electricity; at grid; consumption mix - %s - %s", code, axis)
}

// UserMixName returns the name of the at-user consumption mix process
// of the given region.
func UserMixName(code string, axis region.Axis) string {
	return fmt.Sprintf("Electricity; at user; consumption mix - %s - %s", code, axis)
}

// ConstructionName returns the name of the power plant construction
// process for the given fuel.
func ConstructionName(fuel mix.Fuel) string {
	return fmt.Sprintf("power plant construction - %s", fuel)
}

// Stage is the kind of a process record. Records are emitted in
// ascending order of stage.
type Stage int

// The process stages.
const (
	Construction Stage = iota + 1
	Generation
	GenerationMix
	ConsumptionMix
	UserMix
	CanadianProxy
)

func (s Stage) String() string {
	switch s {
	case Construction:
		return "construction"
	case Generation:
		return "generation"
	case GenerationMix:
		return "generation mix"
	case ConsumptionMix:
		return "at-grid consumption mix"
	case UserMix:
		return "at-user consumption mix"
	case CanadianProxy:
		return "Canadian proxy"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Level is the level of a process in the provider graph.
type Level int

// The provider graph levels, from leaves to roots.
const (
	ConstructionLevel Level = iota + 1
	GenerationLevel
	GridLevel
	UserLevel
)

func (l Level) String() string {
	switch l {
	case ConstructionLevel:
		return "construction"
	case GenerationLevel:
		return "generation"
	case GridLevel:
		return "at grid"
	case UserLevel:
		return "at user"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Level returns the provider graph level of processes of the receiver's
// stage. Canadian proxies stand in for generation.
func (s Stage) Level() Level {
	switch s {
	case Construction:
		return ConstructionLevel
	case Generation, CanadianProxy:
		return GenerationLevel
	case GenerationMix, ConsumptionMix:
		return GridLevel
	case UserMix:
		return UserLevel
	}
	return 0
}

// providerLevel is the level that the providers of processes at each
// level must be at.
var providerLevel = map[Level]Level{
	GenerationLevel: ConstructionLevel,
	GridLevel:       GenerationLevel,
	UserLevel:       GridLevel,
}

// namePatterns holds the required name shape of each stage.
var namePatterns = map[Stage]*regexp.Regexp{
	Construction:   regexp.MustCompile(`^power plant construction - [A-Z]+$`),
	Generation:     regexp.MustCompile(`^Electricity - [A-Z]+ - [A-Za-z0-9_-]+$`),
	GenerationMix:  regexp.MustCompile(`^Electricity; at grid; generation mix - [A-Za-z0-9_-]+$`),
	ConsumptionMix: regexp.MustCompile(`^Electricity; at grid; consumption mix - [A-Za-z0-9_-]+ - (BA|FERC|US)$`),
	UserMix:        regexp.MustCompile(`^Electricity; at user; consumption mix - [A-Za-z0-9_-]+ - (BA|FERC|US)$`),
	CanadianProxy:  regexp.MustCompile(`^Electricity; at grid; generation mix - [A-Za-z0-9_-]+$`),
}

// State is the provider resolution state of a record.
type State int

// Records move through the states in order.
const (
	New State = iota
	Named
	UUIDAssigned
	ProvidersFilled
	Final
)

func (s State) String() string {
	switch s {
	case New:
		return "new"
	case Named:
		return "named"
	case UUIDAssigned:
		return "UUID assigned"
	case ProvidersFilled:
		return "providers filled"
	case Final:
		return "final"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Record is a process under construction.
type Record struct {
	Process *olca.Process
	Stage   Stage

	// Region is the region the process represents, on Axis.
	Region string
	Axis   region.Axis

	// Loss is the T&D loss rate of at-user mixes.
	Loss float64

	// Root is true for the product-system roots, which need not be
	// the provider of any other process.
	Root bool

	state State

	// providers holds the name of the provider of each exchange, or
	// "" for exchanges without one.
	providers []string
}

// State returns the provider resolution state of the receiver.
func (r *Record) State() State { return r.state }

// Name returns the name of the receiver's process.
func (r *Record) Name() string { return r.Process.Name }

// Provider returns the name of the provider of exchange i, or "".
func (r *Record) Provider(i int) string { return r.providers[i] }

func (r *Record) advance(to State) error {
	if to != r.state+1 {
		return fmt.Errorf("assemble: process `%s`: cannot move from state %s to %s", r.Name(), r.state, to)
	}
	r.state = to
	return nil
}

// add appends an exchange with the given provider name to the
// receiver.
func (r *Record) add(e *olca.Exchange, provider string) {
	r.Process.AddExchange(e)
	r.providers = append(r.providers, provider)
}

// exchangeKey is the identity of an exchange for the purpose of
// deriving process ids.
type exchangeKey struct {
	Flow     string
	Category string
	Input    bool
	Amount   float64
	Unit     string
	Provider string
}

func (r *Record) content() []exchangeKey {
	o := make([]exchangeKey, len(r.Process.Exchanges))
	for i, e := range r.Process.Exchanges {
		o[i] = exchangeKey{
			Flow:     e.Flow.ID,
			Category: e.Flow.Category,
			Input:    e.Input,
			Amount:   e.Amount,
			Unit:     e.Unit.Name,
			Provider: r.providers[i],
		}
	}
	return o
}
