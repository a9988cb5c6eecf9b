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

package elciutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/elci"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
	"github.com/spf13/cast"
)

// RunConfig builds a model configuration from a viper configuration,
// expanding environment variables in the paths.
func RunConfig(cfg *viper.Viper) (*elci.Config, error) {
	year, err := cast.ToIntE(cfg.Get("Year"))
	if err != nil {
		return nil, lcierr.ConfigurationError{Field: "Year", Reason: err.Error()}
	}
	timeout, err := cast.ToDurationE(cfg.Get("Timeout"))
	if err != nil {
		return nil, lcierr.ConfigurationError{Field: "Timeout", Reason: err.Error()}
	}
	axes, err := parseAxes(cfg.GetStringSlice("Axes"))
	if err != nil {
		return nil, err
	}
	c := &elci.Config{
		Year:                    year,
		BulkFile:                os.ExpandEnv(cfg.GetString("BulkFile")),
		BulkURL:                 os.ExpandEnv(cfg.GetString("BulkURL")),
		NetGenerationSource:     cfg.GetString("NetGenerationSource"),
		FuelMixFile:             os.ExpandEnv(cfg.GetString("FuelMixFile")),
		CanadianMixFiles:        expandStringSlice(cfg.GetStringSlice("CanadianMixFiles")),
		CanadianScenario:        cfg.GetString("CanadianScenario"),
		CanadianTradeFile:       os.ExpandEnv(cfg.GetString("CanadianTradeFile")),
		GenerationInventoryFile: os.ExpandEnv(cfg.GetString("GenerationInventoryFile")),
		UpstreamInventoryFile:   os.ExpandEnv(cfg.GetString("UpstreamInventoryFile")),
		StateGenerationFile:     os.ExpandEnv(cfg.GetString("StateGenerationFile")),
		TDWorkbookDir:           os.ExpandEnv(cfg.GetString("TDWorkbookDir")),
		TDWorkbookURL:           os.ExpandEnv(cfg.GetString("TDWorkbookURL")),
		TDSheet:                 cfg.GetString("TDSheet"),
		RegionFile:              os.ExpandEnv(cfg.GetString("RegionFile")),
		Axes:                    axes,
		Trading:                 cfg.GetString("Trading"),
		Aggregation:             cfg.GetString("Aggregation"),
		Version:                 cfg.GetString("Version"),
		OutputFile:              os.ExpandEnv(cfg.GetString("OutputFile")),
		ReportFile:              os.ExpandEnv(cfg.GetString("ReportFile")),
		TradeFile:               os.ExpandEnv(cfg.GetString("TradeFile")),
		PlotFile:                os.ExpandEnv(cfg.GetString("PlotFile")),
		Timeout:                 timeout,
		Fetch:                   Fetch,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseAxes converts axis names to region axes, dropping duplicates.
func parseAxes(names []string) ([]region.Axis, error) {
	var axes []region.Axis
	seen := make(map[region.Axis]bool)
	for _, n := range names {
		a, err := region.ParseAxis(n)
		if err != nil {
			return nil, lcierr.ConfigurationError{Field: "Axes", Reason: err.Error()}
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		axes = append(axes, a)
	}
	if len(axes) == 0 {
		return nil, lcierr.ConfigurationError{Field: "Axes", Reason: fmt.Sprintf("no axes in %v", names)}
	}
	return axes, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	o := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		o[i] = os.ExpandEnv(s[i])
	}
	return o
}
