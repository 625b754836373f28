/*
Copyright © 2026 the fv3net authors.
This file is part of fv3net.

fv3net is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fv3net is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fv3net.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package fixtures embeds the reference dataset schemas shared by the
// test suites, so tests can materialize realistic datasets without
// network access or checked-in data files. The manifest binds each
// schema document to the coordinate names of its store, a generation
// seed, and value ranges that keep generated fields physically
// plausible.
package fixtures

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"gocloud.dev/blob/fileblob"

	"github.com/oelbert/fv3net/synth"
	"github.com/oelbert/fv3net/zarr"
)

//go:embed manifest.toml schemas
var content embed.FS

// Fixture is one manifest entry: a named reference schema and the
// parameters used to materialize it.
type Fixture struct {
	Name        string
	File        string
	Description string
	Coords      []string
	Seed        uint64
	Ranges      map[string][]float64
}

var (
	loadOnce sync.Once
	registry map[string]*Fixture
	loadErr  error
)

func load() (map[string]*Fixture, error) {
	loadOnce.Do(func() {
		var data []byte
		data, loadErr = content.ReadFile("manifest.toml")
		if loadErr != nil {
			return
		}
		var m struct {
			Fixture []*Fixture
		}
		if _, err := toml.Decode(string(data), &m); err != nil {
			loadErr = fmt.Errorf("fixtures: parsing manifest: %v", err)
			return
		}
		registry = make(map[string]*Fixture, len(m.Fixture))
		for _, f := range m.Fixture {
			if _, ok := registry[f.Name]; ok {
				loadErr = fmt.Errorf("fixtures: manifest lists %s twice", f.Name)
				return
			}
			for v, r := range f.Ranges {
				if len(r) != 2 {
					loadErr = fmt.Errorf("fixtures: %s: range for %s must be [min, max]", f.Name, v)
					return
				}
			}
			registry[f.Name] = f
		}
	})
	return registry, loadErr
}

// Names returns the fixture names in lexical order.
func Names() ([]string, error) {
	registry, err := load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the manifest entry for name.
func Get(name string) (*Fixture, error) {
	registry, err := load()
	if err != nil {
		return nil, err
	}
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("fixtures: no fixture named %s", name)
	}
	return f, nil
}

// Schema decodes the named fixture's schema document.
func Schema(name string) (*synth.DatasetSchema, error) {
	f, err := Get(name)
	if err != nil {
		return nil, err
	}
	return f.schema()
}

func (f *Fixture) schema() (*synth.DatasetSchema, error) {
	data, err := content.ReadFile(f.File)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %v", f.Name, err)
	}
	s, err := synth.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %w", f.Name, err)
	}
	return s, nil
}

// GenerateOptions returns the generation options the manifest records
// for this fixture: its seed and its per-variable value ranges.
func (f *Fixture) GenerateOptions() []synth.GenerateOption {
	ranges := make(map[string]synth.Range, len(f.Ranges))
	for name, r := range f.Ranges {
		ranges[name] = synth.Range{Min: r[0], Max: r[1]}
	}
	return []synth.GenerateOption{synth.WithSeed(f.Seed), synth.WithRanges(ranges)}
}

var (
	pathMu sync.Mutex
	paths  = make(map[string]string)
)

// Path materializes the named fixture as a zarr store on the local
// filesystem and returns the store's path. Each fixture is generated
// at most once per process: the first call writes the store under dir
// (or under a fresh temporary directory when dir is empty) and later
// calls return the same path, whatever directory they name.
func Path(ctx context.Context, name, dir string) (string, error) {
	pathMu.Lock()
	defer pathMu.Unlock()
	if p, ok := paths[name]; ok {
		return p, nil
	}

	f, err := Get(name)
	if err != nil {
		return "", err
	}
	s, err := f.schema()
	if err != nil {
		return "", err
	}
	ds, err := synth.Generate(s, f.GenerateOptions()...)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir, err = os.MkdirTemp("", "fv3net-fixtures-")
		if err != nil {
			return "", fmt.Errorf("fixtures: %v", err)
		}
	}
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{Metadata: fileblob.MetadataDontWrite})
	if err != nil {
		return "", fmt.Errorf("fixtures: opening %s: %v", dir, err)
	}
	defer bucket.Close()
	if err := zarr.Save(ctx, zarr.NewGroup(bucket, f.Name+".zarr"), ds); err != nil {
		return "", err
	}

	p := filepath.Join(dir, f.Name+".zarr")
	paths[name] = p
	return p, nil
}
