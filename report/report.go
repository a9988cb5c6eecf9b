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

// Package report summarizes regional mixes as tables and charts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spatialmodel/elci/mix"
	"github.com/spatialmodel/elci/trade"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// WriteMixes writes the shares of mixes to w as CSV with columns
// Region, Axis, Kind, Source, FuelCategory and Fraction.
func WriteMixes(w io.Writer, mixes []*mix.Mix) error {
	c := csv.NewWriter(w)
	if err := c.Write([]string{"Region", "Axis", "Kind", "Source", "FuelCategory", "Fraction"}); err != nil {
		return fmt.Errorf("report: %v", err)
	}
	for _, m := range mixes {
		for _, sh := range m.Shares {
			rec := []string{m.Region, string(m.Axis), m.Kind.String(), sh.Source, string(sh.Fuel),
				strconv.FormatFloat(sh.Fraction, 'g', -1, 64)}
			if err := c.Write(rec); err != nil {
				return fmt.Errorf("report: %v", err)
			}
		}
	}
	c.Flush()
	if err := c.Error(); err != nil {
		return fmt.Errorf("report: %v", err)
	}
	return nil
}

// WriteTrade writes the trade matrix m to w as CSV, with a row per
// exporting BA and a column per importing BA.
func WriteTrade(w io.Writer, m *trade.Matrix) error {
	c := csv.NewWriter(w)
	if err := c.WriteAll(m.Table()); err != nil {
		return fmt.Errorf("report: %v", err)
	}
	return nil
}

// Chart dimensions.
const (
	figWidth  = 7 * vg.Inch
	figHeight = 4 * vg.Inch
)

// ConsumptionChart returns a stacked bar chart of the fuel shares of
// mixes, one bar per mix.
func ConsumptionChart(mixes []*mix.Mix) (*plot.Plot, error) {
	if len(mixes) == 0 {
		return nil, fmt.Errorf("report: no mixes to plot")
	}
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("report: %v", err)
	}
	p.Title.Text = fmt.Sprintf("%s mix by fuel", mixes[0].Kind)
	p.Y.Label.Text = "Fraction"
	p.Y.Min, p.Y.Max = 0, 1

	names := make([]string, len(mixes))
	byFuel := make([]map[mix.Fuel]float64, len(mixes))
	for i, m := range mixes {
		names[i] = m.Region
		byFuel[i] = m.ByFuel()
	}
	p.NominalX(names...)

	width := figWidth / vg.Length(len(mixes)+1) * 0.6
	var below *plotter.BarChart
	for i, f := range mix.Fuels {
		v := make(plotter.Values, len(mixes))
		var nonzero bool
		for j := range mixes {
			v[j] = byFuel[j][f]
			nonzero = nonzero || v[j] > 0
		}
		if !nonzero {
			continue
		}
		b, err := plotter.NewBarChart(v, width)
		if err != nil {
			return nil, fmt.Errorf("report: %v", err)
		}
		b.LineStyle.Width = 0
		b.Color = plotutil.Color(i)
		if below != nil {
			b.StackOn(below)
		}
		below = b
		p.Add(b)
		p.Legend.Add(string(f), b)
	}
	p.Legend.Top = true
	return p, nil
}

// SaveConsumptionChart saves the chart of mixes to file, in the format
// given by its extension.
func SaveConsumptionChart(mixes []*mix.Mix, file string) error {
	p, err := ConsumptionChart(mixes)
	if err != nil {
		return err
	}
	if err := p.Save(figWidth, figHeight, file); err != nil {
		return fmt.Errorf("report: saving chart: %v", err)
	}
	return nil
}
