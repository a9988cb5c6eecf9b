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

// Package elciutil contains the command-line interface for the
// electricity life cycle inventory model.
package elciutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, flag, usage, shorthand string
	defaultVal                   interface{}
	flagsets                     []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the model.
	// flag is the command-line name of the option, if it differs
	// from name.
	options = []struct {
		name, flag, usage, shorthand string
		defaultVal                   interface{}
		flagsets                     []*pflag.FlagSet
	}{
		{
			name: "ConfigDir",
			flag: "config-dir",
			usage: `
              ConfigDir is the directory holding the model configuration
              files. The configuration for model MODEL is read from
              ${ConfigDir}/MODEL.toml.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Year",
			flag: "year",
			usage: `
              Year is the year that the inventory represents. It must be
              2015 or later.`,
			shorthand:  "y",
			defaultVal: 2016,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BulkFile",
			usage: `
              BulkFile is the path to the EIA bulk interchange data (EBA.txt).
              If the file does not exist it is downloaded from BulkURL.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BulkURL",
			usage: `
              BulkURL is where the EIA bulk interchange data is downloaded
              from. It can be an http(s) URL or a gs://, s3:// or file://
              location, and can be a zip archive holding EBA.txt.`,
			defaultVal: "https://api.eia.gov/bulk/EBA.zip",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NetGenerationSource",
			usage: `
              NetGenerationSource is the source of BA net generation.
              Currently "bulk" is the only valid option.`,
			defaultVal: elci.NetGenerationBulk,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FuelMixFile",
			usage: `
              FuelMixFile is the path to a table of the fraction of the
              generation of each U.S. BA from each fuel category.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CanadianMixFiles",
			usage: `
              CanadianMixFiles are the paths to tables of the fuel mixes
              of Canadian BAs or provinces, in either the legacy format
              or the Energy Futures format.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CanadianScenario",
			usage: `
              CanadianScenario is the Energy Futures scenario used when
              reading Canadian mixes in that format.`,
			defaultVal: "Current Measures",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CanadianTradeFile",
			usage: `
              CanadianTradeFile is the path to a table of annual deliveries
              in MWh between Canadian and U.S. BAs. It is optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GenerationInventoryFile",
			usage: `
              GenerationInventoryFile is the path to a table of emissions and
              resource use per MWh of generation, by BA and fuel category.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "UpstreamInventoryFile",
			usage: `
              UpstreamInventoryFile is the path to an optional table of
              fuel-cycle inventories per MWh by fuel category, added to the
              Canadian proxy inventories.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StateGenerationFile",
			usage: `
              StateGenerationFile is the path to an optional table of the
              generation of each BA in each state, used to weight state
              transmission and distribution loss rates.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TDWorkbookDir",
			usage: `
              TDWorkbookDir is the directory holding the state electricity
              profile workbooks, named {state}.xlsx.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TDWorkbookURL",
			usage: `
              TDWorkbookURL is where missing state workbooks are downloaded
              from. "{state}" is replaced by the lower-case state code.
              If it is empty, missing workbooks are an error.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TDSheet",
			usage: `
              TDSheet is the name of the supply and disposition sheet in
              the state workbooks. If it is empty the first sheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "RegionFile",
			usage: `
              RegionFile is the path to a TOML region table that replaces
              the bundled one. It is optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Axes",
			usage: `
              Axes are the region axes to build consumption mixes on.
              Valid values are BA, FERC, and US.`,
			defaultVal: []string{"BA", "FERC", "US"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Trading",
			usage: `
              Trading is the source of trade data. Currently "EIA" is the
              only supported option.`,
			defaultVal: elci.TradingEIA,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Aggregation",
			usage: `
              Aggregation is the level of the generation data. EIA trading
              requires "BA".`,
			defaultVal: elci.AggregationBA,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Version",
			usage: `
              Version is the version given to every process in the output,
              made of digits and dots.`,
			defaultVal: "1.0",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			flag: "output",
			usage: `
              OutputFile is the path to the desired output JSON-LD zip
              package. It can include environment variables and can be a
              gs://, s3://, or file:// location.`,
			shorthand:  "o",
			defaultVal: "elci_output.zip",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			flag: "log-file",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ReportFile",
			usage: `
              ReportFile is the path to an optional table of every
              generation and consumption mix.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TradeFile",
			usage: `
              TradeFile is the path to an optional table of the
              reconciled trade matrix.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path to an optional chart of the consumption
              mixes. The format follows from the extension (e.g., .png, .svg).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Timeout",
			usage: `
              Timeout caps the time taken by each download. Zero means
              no limit.`,
			defaultVal: 10 * time.Minute,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ELCI")
	Cfg.AutomaticEnv()

	for _, option := range options {
		flag := option.flag
		if flag == "" {
			flag = option.name
		}
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(flag))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(flag, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(flag, option.shorthand, v, option.usage)
			case int:
				set.IntP(flag, option.shorthand, v, option.usage)
			case time.Duration:
				set.DurationP(flag, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(flag))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig reads in the configuration file for the given model.
func setConfig(model string) error {
	dir := os.ExpandEnv(Cfg.GetString("ConfigDir"))
	path := filepath.Join(dir, model+".toml")
	if _, err := os.Stat(path); err != nil {
		return lcierr.ConfigurationError{Field: "ConfigDir", Reason: fmt.Sprintf("no configuration for model `%s`: %v", model, err)}
	}
	Cfg.SetConfigFile(path)
	if err := Cfg.ReadInConfig(); err != nil {
		return lcierr.ConfigurationError{Reason: fmt.Sprintf("problem reading configuration file: %v", err)}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "elci",
	Short: "A life cycle inventory model of U.S. electricity.",
	Long: `elci builds a life cycle inventory of the electricity generated and
consumed in the United States, accounting for trade between balancing
authorities and with Canada, and writes it as an openLCA JSON-LD package.

Refer to the subcommand documentation for configuration options and default settings.
Configuration is read from a TOML file for each model (see the --config-dir flag),
can be changed by using command-line arguments, or by setting environment
variables in the format 'ELCI_var' where 'var' is the name of the variable to
be set. Path variables are additionally allowed to contain environment variables
within them.

Exit codes:
  0  success
  1  invalid configuration or command-line usage
  2  input data missing or not downloadable, or an output file or blob
     that could not be written
  3  model data violating a consistency check`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of elci.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("elci v%s\n", elci.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run MODEL",
	Short: "Build the inventory.",
	Long: `run builds the inventory for the model named MODEL, whose configuration
is read from ${ConfigDir}/MODEL.toml.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfig(args[0]); err != nil {
			return err
		}
		cfg, err := RunConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(context.Background(), cfg, checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), cfg.OutputFile))
	},
	DisableAutoGenTag: true,
}

// Run builds the inventory specified by cfg, writing the log to logFile
// and to standard error. Outputs with blob storage locations are written
// to a temporary directory and uploaded when the run finishes.
func Run(ctx context.Context, cfg *elci.Config, logFile string) error {
	up := new(uploader)
	defer up.cleanup()
	local := *cfg
	local.OutputFile = up.maybeUpload(cfg.OutputFile)
	local.ReportFile = up.maybeUpload(cfg.ReportFile)
	local.TradeFile = up.maybeUpload(cfg.TradeFile)
	local.PlotFile = up.maybeUpload(cfg.PlotFile)
	logPath := up.maybeUpload(logFile)
	if up.err != nil {
		return lcierr.OutputError{Path: os.TempDir(), Err: fmt.Errorf("elciutil: preparing upload: %v", up.err)}
	}

	log, closeLog, err := newLogger(logPath)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"version": elci.Version,
		"year":    cfg.Year,
		"output":  cfg.OutputFile,
	}).Info("starting run")
	_, runErr := elci.Run(ctx, &local, log)
	if runErr != nil {
		log.WithError(runErr).Error("run failed")
	}
	if err := closeLog(); err != nil && runErr == nil {
		runErr = err
	}
	if err := up.upload(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// newLogger returns a logger writing to the file at path and to
// standard error, and a function that closes the file.
func newLogger(path string) (*logrus.Logger, func() error, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("elciutil: creating log directory: %v", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("elciutil: problem creating log file: %v", err)
	}
	log := logrus.New()
	log.Out = io.MultiWriter(f, os.Stderr)
	log.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	return log, f.Close, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}
