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

// Package elci builds a life cycle inventory of the electricity
// generated and consumed in the United States, accounting for trade
// between balancing authorities (BAs) and with Canada, and writes it as
// an openLCA JSON-LD package.
package elci

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

// Version is the version of this software.
const Version = "0.1.0"

// Trading modes.
const (
	TradingEIA = "EIA"
	TradingEPA = "EPA"
)

// Aggregation levels of the generation data.
const (
	AggregationBA    = "BA"
	AggregationEGRID = "eGRID"
)

// NetGenerationBulk is the only supported source of BA net generation:
// the EIA bulk interchange data.
const NetGenerationBulk = "bulk"

// A Fetcher retrieves the contents of the file at url.
type Fetcher func(ctx context.Context, url string) (io.ReadCloser, error)

// Config holds the settings of a model run.
type Config struct {
	// Year is the year that the inventory represents.
	Year int

	// BulkFile is the location of the EIA bulk interchange data
	// (EBA.txt). If it does not exist it is downloaded from BulkURL.
	BulkFile, BulkURL string

	// NetGenerationSource is the source of BA net generation.
	NetGenerationSource string

	// FuelMixFile is a table of the fraction of the generation of each
	// U.S. BA from each fuel.
	FuelMixFile string

	// CanadianMixFiles are tables of the fuel mixes of Canadian BAs or
	// provinces, in either the legacy or the Energy Futures format.
	CanadianMixFiles []string

	// CanadianScenario is the Energy Futures scenario to use.
	CanadianScenario string

	// CanadianTradeFile is a table of annual deliveries between
	// Canadian and U.S. BAs. It is optional.
	CanadianTradeFile string

	// GenerationInventoryFile is a table of the emissions and resource
	// use per MWh of generation by BA and fuel.
	GenerationInventoryFile string

	// UpstreamInventoryFile is an optional table of U.S. average
	// fuel-cycle inventories per MWh by fuel, added to the Canadian
	// proxy inventories.
	UpstreamInventoryFile string

	// StateGenerationFile is an optional table of the generation of
	// each BA in each state, used to weight state loss rates.
	StateGenerationFile string

	// TDWorkbookDir holds the per-state electricity profile workbooks.
	// Missing workbooks are downloaded from TDWorkbookURL, in which
	// "{state}" is replaced by the state code. TDSheet is the name of
	// the sheet holding supply and disposition.
	TDWorkbookDir, TDWorkbookURL, TDSheet string

	// RegionFile optionally replaces the bundled region table.
	RegionFile string

	// Axes are the region axes to build consumption mixes on.
	Axes []region.Axis

	// Trading is the source of trade data, and Aggregation the level
	// of the generation data.
	Trading, Aggregation string

	// Version is the version of every process.
	Version string

	// OutputFile is where the JSON-LD package is written.
	OutputFile string

	// PlotFile optionally receives a chart of the FERC consumption
	// mixes, ReportFile a table of all mixes, and TradeFile the trade
	// matrix.
	PlotFile, ReportFile, TradeFile string

	// Timeout caps each download. Zero means no limit.
	Timeout time.Duration

	// Fetch downloads missing inputs.
	Fetch Fetcher
}

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Year < 2015 {
		return lcierr.ConfigurationError{Field: "Year", Reason: fmt.Sprintf("%d is before the first year of bulk interchange data (2015)", c.Year)}
	}
	switch c.Trading {
	case TradingEIA:
	case TradingEPA:
		if c.Aggregation != AggregationEGRID {
			return lcierr.ConfigurationError{Field: "Trading", Reason: "EPA trading requires eGRID aggregation"}
		}
		return lcierr.ConfigurationError{Field: "Trading", Reason: "EPA trading is not supported by the BA trading model"}
	default:
		return lcierr.ConfigurationError{Field: "Trading", Reason: fmt.Sprintf("invalid value `%s`", c.Trading)}
	}
	if c.Aggregation != AggregationBA {
		return lcierr.ConfigurationError{Field: "Aggregation", Reason: fmt.Sprintf("EIA trading requires %s aggregation, not `%s`", AggregationBA, c.Aggregation)}
	}
	if c.NetGenerationSource != NetGenerationBulk {
		return lcierr.ConfigurationError{Field: "NetGenerationSource", Reason: fmt.Sprintf("invalid value `%s`", c.NetGenerationSource)}
	}
	for _, f := range []struct{ name, value string }{
		{"BulkFile", c.BulkFile},
		{"FuelMixFile", c.FuelMixFile},
		{"GenerationInventoryFile", c.GenerationInventoryFile},
		{"TDWorkbookDir", c.TDWorkbookDir},
		{"OutputFile", c.OutputFile},
	} {
		if f.value == "" {
			return lcierr.ConfigurationError{Field: f.name, Reason: "must be set"}
		}
	}
	if len(c.Axes) == 0 {
		return lcierr.ConfigurationError{Field: "Axes", Reason: "at least one region axis is required"}
	}
	if !versionPattern.MatchString(c.Version) {
		return lcierr.ConfigurationError{Field: "Version", Reason: fmt.Sprintf("`%s` is not made of digits and dots", c.Version)}
	}
	return nil
}
