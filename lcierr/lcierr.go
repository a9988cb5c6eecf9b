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

// Package lcierr holds the error types shared by the electricity
// inventory packages, and the mapping from those errors to process
// exit codes.
package lcierr

import (
	"errors"
	"fmt"
)

// Exit codes returned by the command-line interface.
const (
	ExitOK            = 0
	ExitConfiguration = 1
	ExitDataMissing   = 2 // also unwritable outputs
	ExitInvariant     = 3
)

// ConfigurationError is returned when the model configuration is missing
// fields or is contradictory.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (err ConfigurationError) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("configuration: %s", err.Reason)
	}
	return fmt.Sprintf("configuration: %s: %s", err.Field, err.Reason)
}

// DataUnavailableError is returned when an external input is missing
// and could not be downloaded.
type DataUnavailableError struct {
	Path string
	Err  error
}

func (err DataUnavailableError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("data unavailable: %s", err.Path)
	}
	return fmt.Sprintf("data unavailable: %s: %v", err.Path, err.Err)
}

func (err DataUnavailableError) Unwrap() error { return err.Err }

// OutputError is returned when an output file or blob could not be
// written.
type OutputError struct {
	Path string
	Err  error
}

func (err OutputError) Error() string {
	return fmt.Sprintf("writing %s: %v", err.Path, err.Err)
}

func (err OutputError) Unwrap() error { return err.Err }

// ParseError describes a single malformed input record. It is always
// recovered from locally by skipping the record.
type ParseError struct {
	Source string
	Line   int
	Record string
	Err    error
}

func (err ParseError) Error() string {
	return fmt.Sprintf("%s:%d: malformed record %q: %v", err.Source, err.Line, err.Record, err.Err)
}

func (err ParseError) Unwrap() error { return err.Err }

// UnknownRegionError is returned when a region code is absent from the
// region registry.
type UnknownRegionError struct {
	Code string
}

func (err UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region `%s`", err.Code)
}

// TradeInconsistencyError describes a pair of balancing authorities
// whose reported exchanges do not give a flow direction.
type TradeInconsistencyError struct {
	A, B       string
	AtoB, BtoA float64
}

func (err TradeInconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent trade %s-%s: %s reports %g, %s reports %g",
		err.A, err.B, err.A, err.AtoB, err.B, err.BtoA)
}

// MixNotNormalizedError is returned when the fractions of a mix do not
// sum to one.
type MixNotNormalizedError struct {
	Region string
	Kind   string
	Sum    float64
}

func (err MixNotNormalizedError) Error() string {
	return fmt.Sprintf("%s mix for %s sums to %.12g, not 1", err.Kind, err.Region, err.Sum)
}

// UnresolvedProviderError is returned when a process references a
// provider that no process produces.
type UnresolvedProviderError struct {
	Process  string
	Provider string
}

func (err UnresolvedProviderError) Error() string {
	return fmt.Sprintf("process `%s` references unresolved provider `%s`", err.Process, err.Provider)
}

// OrphanProcessError is a warning about a process that is neither a
// provider nor a product-system root.
type OrphanProcessError struct {
	Process string
}

func (err OrphanProcessError) Error() string {
	return fmt.Sprintf("process `%s` is an orphan", err.Process)
}

// InvariantError is returned when an output invariant check fails.
type InvariantError struct {
	Check  string
	Detail string
}

func (err InvariantError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", err.Check, err.Detail)
}

// ExitCode returns the process exit code corresponding to err. Errors
// outside the taxonomy, such as command-line usage errors, map to
// ExitConfiguration.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		cfgErr      ConfigurationError
		dataErr     DataUnavailableError
		outErr      OutputError
		regionErr   UnknownRegionError
		mixErr      MixNotNormalizedError
		providerErr UnresolvedProviderError
		invErr      InvariantError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfiguration
	case errors.As(err, &dataErr), errors.As(err, &outErr):
		return ExitDataMissing
	case errors.As(err, &regionErr), errors.As(err, &mixErr),
		errors.As(err, &providerErr), errors.As(err, &invErr):
		return ExitInvariant
	}
	return ExitConfiguration
}
