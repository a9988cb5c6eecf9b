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

package elci

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/assemble"
	"github.com/spatialmodel/elci/distribution"
	"github.com/spatialmodel/elci/eia"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/inventory"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/olca"
	"github.com/spatialmodel/elci/region"
	"github.com/spatialmodel/elci/report"
	"github.com/spatialmodel/elci/trade"
)

// TradeThreshold is the fraction of the imports of a BA below which a
// delivery is left out of the exported trade table. It is not applied
// before solving.
const TradeThreshold = 1e-5

// Anomaly kinds recorded by the pipeline.
const (
	NegativeGeneration = "negative net generation"
	NoGenerationMix    = "consumption mix without generation mix"
)

// Result holds the products of a model run.
type Result struct {
	Regions *region.Registry

	Reconciliation *trade.Reconciliation
	Solution       *trade.Solution

	// Generation holds the generation mix of each U.S. BA, and
	// GenerationRollups the generation mixes of FERC regions and the
	// U.S.
	Generation, GenerationRollups []*mix.Mix

	// Consumption holds the at-grid consumption mixes on each axis.
	Consumption map[region.Axis][]*mix.Mix

	User    []*distribution.UserMix
	Proxies []*inventory.Proxy

	Package *olca.Package
	Records []*assemble.Record
}

// pipeline holds the state passed between the stages of a run.
type pipeline struct {
	cfg *Config
	log logrus.FieldLogger
	res *Result

	anomalies tally.Tally

	tradeMatrix *trade.Matrix
	netGen      map[string]float64
	fuels       mix.Shares
	inventories inventory.Inventories
}

// Run builds the inventory described by cfg and writes it to
// cfg.OutputFile.
func Run(ctx context.Context, cfg *Config, log logrus.FieldLogger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &pipeline{
		cfg: cfg,
		log: log,
		res: &Result{Consumption: make(map[region.Axis][]*mix.Mix)},
	}
	for _, stage := range []struct {
		name string
		run  func(context.Context) error
	}{
		{"regions", p.loadRegions},
		{"trade", p.buildTrade},
		{"solve", p.solve},
		{"mixes", p.buildMixes},
		{"proxies", p.buildProxies},
		{"distribution", p.distribute},
		{"assemble", p.assemble},
		{"write", p.write},
	} {
		start := time.Now()
		if err := stage.run(ctx); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"stage":    stage.name,
			"duration": time.Since(start),
		}).Info("elci: stage complete")
	}
	p.anomalies.Log(log, "elci")
	return p.res, nil
}

// open opens the input file at path.
func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lcierr.DataUnavailableError{Path: path, Err: err}
	}
	return f, nil
}

// withTimeout returns ctx limited to the configured download time.
func (p *pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, p.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (p *pipeline) loadRegions(ctx context.Context) error {
	if p.cfg.RegionFile == "" {
		reg, err := region.New()
		if err != nil {
			return err
		}
		p.res.Regions = reg
		return nil
	}
	f, err := open(p.cfg.RegionFile)
	if err != nil {
		return err
	}
	defer f.Close()
	reg, err := region.Load(f)
	if err != nil {
		return lcierr.ConfigurationError{Field: "RegionFile", Reason: err.Error()}
	}
	p.res.Regions = reg
	return nil
}

// buildTrade loads the bulk interchange data and reconciles it into
// the annual trade matrix, including trade with Canada.
func (p *pipeline) buildTrade(ctx context.Context) error {
	reg := p.res.Regions
	dctx, cancel := p.withTimeout(ctx)
	f, err := eia.Open(dctx, p.cfg.BulkFile, p.cfg.BulkURL, eia.Fetcher(p.cfg.Fetch))
	cancel()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := eia.Load(f, p.cfg.Year, reg, p.log)
	if err != nil {
		return err
	}
	p.netGen = data.NetGeneration.Total()

	m, rec, err := trade.Reconcile(data.Exchange, reg, p.log)
	if err != nil {
		return err
	}
	p.res.Reconciliation = rec
	if p.cfg.CanadianTradeFile != "" {
		f, err := open(p.cfg.CanadianTradeFile)
		if err != nil {
			return err
		}
		defer f.Close()
		flows, err := trade.ReadBoundaryTrade(f, p.cfg.Year, reg, &rec.Anomalies)
		if err != nil {
			return err
		}
		if err := trade.AddBoundaryTrade(m, flows, reg); err != nil {
			return err
		}
		p.log.WithField("flows", len(flows)).Info("elci: added Canadian trade")
	}
	p.tradeMatrix = m
	return nil
}

// solve attributes the consumption of each BA to the BAs where it was
// generated.
func (p *pipeline) solve(ctx context.Context) error {
	reg := p.res.Regions
	g := make(map[string]float64, len(p.netGen))
	for _, ba := range reg.BAs() {
		v := p.netGen[ba]
		if v < 0 {
			p.anomalies.Add(NegativeGeneration, fmt.Sprintf("%s: %g MWh", ba, v))
			v = 0
		}
		g[ba] = v
	}
	t := p.tradeMatrix
	s, err := trade.Solve(t, trade.BoundaryGeneration(t, g, reg), trade.InterconnectMask(t.Index, reg))
	if err != nil {
		return err
	}
	p.netGen = g
	p.res.Solution = s
	p.log.WithFields(logrus.Fields{
		"bas":      len(s.Index),
		"residual": s.Residual(),
	}).Info("elci: solved consumption attribution")
	return nil
}

func (p *pipeline) readFuels() error {
	reg := p.res.Regions
	var anomalies tally.Tally
	f, err := open(p.cfg.FuelMixFile)
	if err != nil {
		return err
	}
	defer f.Close()
	fuels, err := mix.ReadFuelMix(f, p.cfg.Year, reg, &anomalies)
	if err != nil {
		return err
	}
	legacy, ef := make(mix.Shares), make(mix.Shares)
	for _, file := range p.cfg.CanadianMixFiles {
		cf, err := open(file)
		if err != nil {
			return err
		}
		s, schema, err := mix.ReadCanadianMix(cf, p.cfg.Year, p.cfg.CanadianScenario, reg, &anomalies)
		cf.Close()
		if err != nil {
			return err
		}
		dst := legacy
		if schema == mix.EnergyFutures {
			dst = ef
		}
		for ba, v := range s {
			if _, ok := dst[ba]; !ok {
				dst[ba] = v
			}
		}
		p.log.WithFields(logrus.Fields{"file": file, "schema": schema, "bas": len(s)}).
			Info("elci: read Canadian mixes")
	}
	for ba, v := range mix.MergeCanadian(legacy, ef, p.log) {
		if _, ok := fuels[ba]; !ok {
			fuels[ba] = v
		}
	}
	anomalies.Log(p.log, "fuel mix")
	p.fuels = fuels
	return nil
}

// buildMixes builds the generation mix of each U.S. BA and the at-grid
// consumption mixes on each configured axis.
func (p *pipeline) buildMixes(ctx context.Context) error {
	if err := p.readFuels(); err != nil {
		return err
	}
	reg := p.res.Regions
	weights := make(map[string]float64)
	for _, ba := range reg.USBAs() {
		weights[ba] = p.netGen[ba]
	}
	b := &mix.Builder{Regions: reg, Fuels: p.fuels, Generation: weights, Log: p.log}
	gen, err := b.GenerationMixes()
	if err != nil {
		return err
	}
	p.res.Generation = gen
	for _, axis := range []region.Axis{region.AxisFERC, region.AxisUS} {
		r, err := b.Rollup(gen, axis)
		if err != nil {
			return err
		}
		p.res.GenerationRollups = append(p.res.GenerationRollups, r...)
	}

	cons, err := b.ConsumptionMixes(p.res.Solution)
	if err != nil {
		return err
	}
	hasGen := make(map[string]bool, len(gen))
	for _, m := range gen {
		hasGen[m.Region] = true
	}
	for _, axis := range p.cfg.Axes {
		var mixes []*mix.Mix
		if axis == region.AxisBA {
			for _, m := range cons {
				if !hasGen[m.Region] {
					p.anomalies.Add(NoGenerationMix, m.Region)
					continue
				}
				mixes = append(mixes, m)
			}
		} else if mixes, err = b.Rollup(cons, axis); err != nil {
			return err
		}
		if err := mix.Check(mixes); err != nil {
			return err
		}
		p.res.Consumption[axis] = mixes
	}
	b.Anomalies.Log(p.log, "mixes")
	return nil
}

func (p *pipeline) readInventory(path, source string) (inventory.Inventories, error) {
	var anomalies tally.Tally
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inv, err := inventory.ReadGeneration(f, source, p.res.Regions, &anomalies)
	if err != nil {
		return nil, err
	}
	anomalies.Log(p.log, source)
	return inv, nil
}

// buildProxies synthesizes an inventory for each Canadian BA that
// supplies a consumption mix.
func (p *pipeline) buildProxies(ctx context.Context) error {
	reg := p.res.Regions
	inv, err := p.readInventory(p.cfg.GenerationInventoryFile, "generation inventory")
	if err != nil {
		return err
	}
	p.inventories = inv
	upstream := make(inventory.Inventories)
	if p.cfg.UpstreamInventoryFile != "" {
		if upstream, err = p.readInventory(p.cfg.UpstreamInventoryFile, "upstream inventory"); err != nil {
			return err
		}
	}

	weights := make(map[string]map[mix.Fuel]float64)
	for _, ba := range reg.USBAs() {
		for f, v := range p.fuels[ba] {
			if weights[ba] == nil {
				weights[ba] = make(map[mix.Fuel]float64)
			}
			weights[ba][f] = v * p.netGen[ba]
		}
	}
	average, err := inventory.Average(inv, weights, reg.US())
	if err != nil {
		return err
	}

	sources := make(map[string]bool)
	for _, mixes := range p.res.Consumption {
		for _, m := range mixes {
			for _, src := range m.Sources() {
				if reg.IsCanadian(src) {
					sources[src] = true
				}
			}
		}
	}
	bas := make([]string, 0, len(sources))
	for ba := range sources {
		bas = append(bas, ba)
	}
	sort.Strings(bas)
	for _, ba := range bas {
		proxy, err := inventory.CanadianProxy(ba, reg.US(), p.fuels[ba], average, upstream)
		if err != nil {
			return err
		}
		if len(proxy.Missing) > 0 {
			p.log.WithFields(logrus.Fields{"ba": ba, "fuels": proxy.Missing}).
				Warn("elci: no U.S. average inventory for some fuels of Canadian BA")
		}
		p.res.Proxies = append(p.res.Proxies, proxy)
	}
	return nil
}

// distribute builds the at-user mix of each consumption mix.
func (p *pipeline) distribute(ctx context.Context) error {
	reg := p.res.Regions
	var weights distribution.StateGeneration
	if p.cfg.StateGenerationFile != "" {
		var anomalies tally.Tally
		f, err := open(p.cfg.StateGenerationFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if weights, err = distribution.ReadStateGeneration(f, reg, &anomalies); err != nil {
			return err
		}
		anomalies.Log(p.log, "state generation")
	}

	// Only the states that carry weight are needed; without weights,
	// every state served by a BA with a consumption mix is.
	stateSet := make(map[string]bool)
	if weights != nil {
		for _, byState := range weights {
			for st, g := range byState {
				if g > 0 {
					stateSet[st] = true
				}
			}
		}
	} else {
		for _, m := range p.res.Generation {
			r, err := reg.LookupKind(m.Region, region.BA)
			if err != nil {
				return err
			}
			for _, st := range r.States {
				stateSet[st] = true
			}
		}
	}
	states := make([]string, 0, len(stateSet))
	for st := range stateSet {
		states = append(states, st)
	}
	sort.Strings(states)

	wb := &distribution.Workbooks{
		Dir:   p.cfg.TDWorkbookDir,
		URL:   p.cfg.TDWorkbookURL,
		Sheet: p.cfg.TDSheet,
		Fetch: distribution.Fetcher(p.cfg.Fetch),
	}
	dctx, cancel := p.withTimeout(ctx)
	defer cancel()
	stateLoss, err := wb.StateLosses(dctx, states, p.cfg.Year)
	if err != nil {
		return err
	}
	losses := &distribution.Losses{Regions: reg, State: stateLoss, Weights: weights, Log: p.log}
	for _, axis := range p.cfg.Axes {
		for _, m := range p.res.Consumption[axis] {
			loss, err := losses.Loss(m.Region, axis)
			if err != nil {
				return err
			}
			u, err := distribution.AtUser(m, loss)
			if err != nil {
				return err
			}
			p.res.User = append(p.res.User, u)
		}
	}
	return nil
}

// assemble builds and links the process records.
func (p *pipeline) assemble(ctx context.Context) error {
	a := &assemble.Assembler{
		Regions:     p.res.Regions,
		Year:        p.cfg.Year,
		Version:     p.cfg.Version,
		Inventories: p.inventories,
		Log:         p.log,
	}
	for _, m := range p.res.Generation {
		if err := a.AddGenerationMix(m); err != nil {
			return err
		}
	}
	for _, axis := range p.cfg.Axes {
		for _, m := range p.res.Consumption[axis] {
			if err := a.AddConsumptionMix(m); err != nil {
				return err
			}
		}
	}
	for _, u := range p.res.User {
		if err := a.AddUserMix(u); err != nil {
			return err
		}
	}
	for _, proxy := range p.res.Proxies {
		if err := a.AddCanadianProxy(proxy); err != nil {
			return err
		}
	}
	pkg, records, err := a.Build()
	if err != nil {
		return err
	}
	p.res.Package, p.res.Records = pkg, records
	return nil
}

// writeFile creates the output file at path, along with its directory,
// and fills it using fn.
func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return lcierr.OutputError{Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return lcierr.OutputError{Path: path, Err: err}
	}
	if err := fn(f); err != nil {
		f.Close()
		return lcierr.OutputError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return lcierr.OutputError{Path: path, Err: err}
	}
	return nil
}

// write writes the package and the optional reports.
func (p *pipeline) write(ctx context.Context) error {
	err := writeFile(p.cfg.OutputFile, func(w io.Writer) error {
		return olca.WriteZip(w, p.res.Package)
	})
	if err != nil {
		return err
	}
	p.log.WithField("file", p.cfg.OutputFile).Info("elci: wrote JSON-LD package")

	if p.cfg.ReportFile != "" {
		mixes := append(append([]*mix.Mix(nil), p.res.Generation...), p.res.GenerationRollups...)
		for _, axis := range p.cfg.Axes {
			mixes = append(mixes, p.res.Consumption[axis]...)
		}
		err := writeFile(p.cfg.ReportFile, func(w io.Writer) error {
			return report.WriteMixes(w, mixes)
		})
		if err != nil {
			return err
		}
	}
	if p.cfg.TradeFile != "" {
		err := writeFile(p.cfg.TradeFile, func(w io.Writer) error {
			return report.WriteTrade(w, p.res.Solution.Masked.Threshold(TradeThreshold))
		})
		if err != nil {
			return err
		}
	}
	if p.cfg.PlotFile != "" {
		mixes := p.res.Consumption[region.AxisFERC]
		if len(mixes) == 0 {
			mixes = p.res.Consumption[p.cfg.Axes[0]]
		}
		if err := os.MkdirAll(filepath.Dir(p.cfg.PlotFile), os.ModePerm); err != nil {
			return lcierr.OutputError{Path: p.cfg.PlotFile, Err: err}
		}
		if err := report.SaveConsumptionChart(mixes, p.cfg.PlotFile); err != nil {
			return lcierr.OutputError{Path: p.cfg.PlotFile, Err: err}
		}
	}
	return nil
}
