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

package olca

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
)

// Package is a set of records to be written together. Records
// are written in the order they were added.
type Package struct {
	Processes      []*Process
	Flows          []*Flow
	FlowProperties []*FlowProperty
	UnitGroups     []*UnitGroup
	Locations      []*Location
	DQSystems      []*DQSystem

	ids map[string]bool
}

func (p *Package) add(id string) bool {
	if p.ids == nil {
		p.ids = make(map[string]bool)
	}
	if p.ids[id] {
		return false
	}
	p.ids[id] = true
	return true
}

// AddProcess adds a process to the package. It returns an error if a
// record with the same id has already been added.
func (p *Package) AddProcess(proc *Process) error {
	if !p.add(proc.ID) {
		return fmt.Errorf("olca: duplicate process id %s (%s)", proc.ID, proc.Name)
	}
	p.Processes = append(p.Processes, proc)
	return nil
}

// AddFlow adds f to the package unless a record with
// the same id is already present.
func (p *Package) AddFlow(f *Flow) {
	if p.add(f.ID) {
		p.Flows = append(p.Flows, f)
	}
}

// AddQuantity adds the flow property and unit group of q to the
// package unless they are already present.
func (p *Package) AddQuantity(q Quantity) {
	if p.add(q.Property.ID) {
		p.FlowProperties = append(p.FlowProperties, q.Property)
	}
	if p.add(q.UnitGroup.ID) {
		p.UnitGroups = append(p.UnitGroups, q.UnitGroup)
	}
}

// AddLocation adds l to the package unless it is already present.
func (p *Package) AddLocation(l *Location) {
	if p.add(l.ID) {
		p.Locations = append(p.Locations, l)
	}
}

// AddDQSystem adds d to the package unless it is already present.
func (p *Package) AddDQSystem(d *DQSystem) {
	if p.add(d.ID) {
		p.DQSystems = append(p.DQSystems, d)
	}
}

// Directories of each record type within a package archive.
const (
	ProcessDir      = "processes"
	FlowDir         = "flows"
	FlowPropertyDir = "flow_properties"
	UnitGroupDir    = "unit_groups"
	LocationDir     = "locations"
	DQSystemDir     = "dq_systems"
)

// metaFile marks the archive as a JSON-LD package of the given
// schema version.
const metaFile = "olca-schema.json"

// WriteZip writes pkg to w as a zip archive with one JSON document per
// record, named by the record's id.
func WriteZip(w io.Writer, pkg *Package) error {
	z := zip.NewWriter(w)
	if err := writeJSON(z, metaFile, map[string]int{"version": 2}); err != nil {
		return err
	}
	for _, r := range pkg.DQSystems {
		if err := writeJSON(z, path.Join(DQSystemDir, r.ID+".json"), r); err != nil {
			return err
		}
	}
	for _, r := range pkg.UnitGroups {
		if err := writeJSON(z, path.Join(UnitGroupDir, r.ID+".json"), r); err != nil {
			return err
		}
	}
	for _, r := range pkg.FlowProperties {
		if err := writeJSON(z, path.Join(FlowPropertyDir, r.ID+".json"), r); err != nil {
			return err
		}
	}
	for _, r := range pkg.Locations {
		if err := writeJSON(z, path.Join(LocationDir, r.ID+".json"), r); err != nil {
			return err
		}
	}
	for _, r := range pkg.Flows {
		if err := writeJSON(z, path.Join(FlowDir, r.ID+".json"), r); err != nil {
			return err
		}
	}
	for _, r := range pkg.Processes {
		if err := writeJSON(z, path.Join(ProcessDir, r.ID+".json"), r); err != nil {
			return err
		}
	}
	if err := z.Close(); err != nil {
		return fmt.Errorf("olca: writing package: %v", err)
	}
	return nil
}

func writeJSON(z *zip.Writer, name string, v interface{}) error {
	w, err := z.Create(name)
	if err != nil {
		return fmt.Errorf("olca: writing %s: %v", name, err)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return fmt.Errorf("olca: writing %s: %v", name, err)
	}
	return nil
}

// ReadZip reads the package written by WriteZip from r, which holds
// size bytes.
func ReadZip(r io.ReaderAt, size int64) (*Package, error) {
	z, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("olca: reading package: %v", err)
	}
	pkg := new(Package)
	for _, f := range z.File {
		dir := path.Dir(f.Name)
		if !strings.HasSuffix(f.Name, ".json") || dir == "." {
			continue
		}
		var v interface{}
		switch dir {
		case ProcessDir:
			v = new(Process)
		case FlowDir:
			v = new(Flow)
		case FlowPropertyDir:
			v = new(FlowProperty)
		case UnitGroupDir:
			v = new(UnitGroup)
		case LocationDir:
			v = new(Location)
		case DQSystemDir:
			v = new(DQSystem)
		default:
			continue
		}
		if err := readJSON(f, v); err != nil {
			return nil, err
		}
		switch r := v.(type) {
		case *Process:
			err = pkg.AddProcess(r)
		case *Flow:
			pkg.AddFlow(r)
		case *FlowProperty:
			if pkg.add(r.ID) {
				pkg.FlowProperties = append(pkg.FlowProperties, r)
			}
		case *UnitGroup:
			if pkg.add(r.ID) {
				pkg.UnitGroups = append(pkg.UnitGroups, r)
			}
		case *Location:
			pkg.AddLocation(r)
		case *DQSystem:
			pkg.AddDQSystem(r)
		}
		if err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

func readJSON(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("olca: reading %s: %v", f.Name, err)
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("olca: reading %s: %v", f.Name, err)
	}
	return nil
}
