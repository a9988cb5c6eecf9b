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

package trade

import (
	"fmt"
	"io"

	"github.com/spatialmodel/elci/internal/csvtable"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/region"
)

// ReadBoundaryTrade reads the annual deliveries between Canadian and
// U.S. BAs for the given year from a table with columns
// Year, From, To and MWh. Rows for other years are ignored. Malformed
// rows are skipped and recorded in anomalies. Negative amounts are
// treated as deliveries in the opposite direction. A BA code that is not in
// reg causes an error.
func ReadBoundaryTrade(r io.Reader, year int, reg *region.Registry, anomalies *tally.Tally) ([]Flow, error) {
	t, err := csvtable.Read(r, "canadian trade", "Year", "From", "To", "MWh")
	if err != nil {
		return nil, fmt.Errorf("trade: %v", err)
	}
	var o []Flow
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		y, err := row.Int("Year")
		if err != nil {
			anomalies.Add("malformed boundary trade", err.Error())
			continue
		}
		if y != year {
			continue
		}
		v, err := row.Float("MWh")
		if err != nil {
			anomalies.Add("malformed boundary trade", err.Error())
			continue
		}
		f := Flow{From: row.String("From"), To: row.String("To"), MWh: v}
		for _, c := range []string{f.From, f.To} {
			if _, err := reg.Lookup(c); err != nil {
				return nil, fmt.Errorf("trade: canadian trade line %d: %w", row.Line(), err)
			}
		}
		if reg.IsCanadian(f.From) == reg.IsCanadian(f.To) {
			anomalies.Add("malformed boundary trade", row.Error(fmt.Errorf("exactly one BA must be Canadian")).Error())
			continue
		}
		if v == 0 {
			continue
		} else if v < 0 {
			f.From, f.To, f.MWh = f.To, f.From, -v
		}
		o = append(o, f)
	}
	return o, nil
}
