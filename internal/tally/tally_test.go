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

package tally

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestTally(t *testing.T) {
	var tl Tally
	tl.Add("parse", "line 1")
	tl.Add("parse", "line 7")
	tl.Add("dropped pair", "A-B")

	if have := tl.Count("parse"); have != 2 {
		t.Errorf("have %d, want 2", have)
	}
	if have := tl.Exemplar("parse"); have != "line 1" {
		t.Errorf("have exemplar %q, want %q", have, "line 1")
	}
	if have := tl.Total(); have != 3 {
		t.Errorf("have total %d, want 3", have)
	}

	log, hook := test.NewNullLogger()
	tl.Log(log, "load")
	if len(hook.Entries) != 2 {
		t.Fatalf("have %d log entries, want 2", len(hook.Entries))
	}
	e := hook.Entries[0]
	if e.Level != logrus.WarnLevel {
		t.Errorf("have level %v, want warning", e.Level)
	}
	if e.Data["anomaly"] != "dropped pair" || e.Data["count"] != 1 {
		t.Errorf("unexpected fields %v", e.Data)
	}
}
