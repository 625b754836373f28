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

// Package zarr reads and writes chunked, labeled arrays in the zarr
// version 2 on-disk format, over any storage that go-cloud blob
// buckets support. Dimension names follow the xarray convention of an
// _ARRAY_DIMENSIONS attribute on each array, so stores written here
// are readable by xarray and vice versa.
package zarr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/oelbert/fv3net/dataset"
)

// A Group is a handle to one zarr group within a blob storage bucket.
// The zero prefix addresses a group at the bucket root. Methods are
// safe for concurrent use as long as no two writers target the same
// array.
type Group struct {
	// Log receives progress information. It defaults to the logrus
	// standard logger.
	Log logrus.FieldLogger

	bucket *blob.Bucket
	prefix string
}

// NewGroup returns a handle to the group stored under the given key
// prefix of bucket. It performs no I/O; use Init to create the group
// metadata when writing a new store.
func NewGroup(bucket *blob.Bucket, prefix string) *Group {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Group{
		Log:    logrus.StandardLogger(),
		bucket: bucket,
		prefix: prefix,
	}
}

// OpenGroup returns a handle to an existing group, verifying that
// group metadata is present under the prefix.
func OpenGroup(ctx context.Context, bucket *blob.Bucket, prefix string) (*Group, error) {
	g := NewGroup(bucket, prefix)
	for _, key := range []string{groupMetaKey, consolidatedMetaKey, arrayMetaKey} {
		ok, err := g.bucket.Exists(ctx, g.key(key))
		if err != nil {
			return nil, fmt.Errorf("zarr: opening group %s: %v", g.prefix, err)
		}
		if ok {
			return g, nil
		}
	}
	return nil, fmt.Errorf("zarr: %s does not hold a zarr group", g.prefix)
}

// Init writes the group's .zgroup document.
func (g *Group) Init(ctx context.Context) error {
	return g.writeJSON(ctx, g.key(groupMetaKey), GroupMeta{ZarrFormat: zarrFormat})
}

func (g *Group) key(parts ...string) string {
	return g.prefix + strings.Join(parts, "/")
}

// Arrays returns the names of the arrays in the group in lexical
// order. Consolidated metadata is used when present so that remote
// stores need not be listed.
func (g *Group) Arrays(ctx context.Context) ([]string, error) {
	if cm, err := g.readConsolidated(ctx); err == nil {
		var names []string
		for key := range cm.Metadata {
			if name, ok := strings.CutSuffix(key, "/"+arrayMetaKey); ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return names, nil
	} else if gcerrors.Code(err) != gcerrors.NotFound {
		return nil, fmt.Errorf("zarr: reading consolidated metadata: %v", err)
	}

	var names []string
	it := g.bucket.List(&blob.ListOptions{Prefix: g.prefix, Delimiter: "/"})
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("zarr: listing group %s: %v", g.prefix, err)
		}
		if !obj.IsDir {
			continue
		}
		ok, err := g.bucket.Exists(ctx, obj.Key+arrayMetaKey)
		if err != nil {
			return nil, fmt.Errorf("zarr: listing group %s: %v", g.prefix, err)
		}
		if ok {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(obj.Key, g.prefix), "/"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ArrayMeta reads the .zarray document of the named array.
func (g *Group) ArrayMeta(ctx context.Context, name string) (*ArrayMeta, error) {
	m := new(ArrayMeta)
	if err := g.readJSON(ctx, g.key(name, arrayMetaKey), m); err != nil {
		return nil, fmt.Errorf("zarr: reading metadata of array %s: %v", name, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("array %s: %w", name, err)
	}
	return m, nil
}

// Attrs reads the .zattrs document of the named array, or of the group
// itself if name is empty. A missing document yields an empty map.
func (g *Group) Attrs(ctx context.Context, name string) (map[string]interface{}, error) {
	key := g.key(attrsKey)
	if name != "" {
		key = g.key(name, attrsKey)
	}
	attrs := make(map[string]interface{})
	err := g.readJSON(ctx, key, &attrs)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return nil, fmt.Errorf("zarr: reading attributes of %s: %v", name, err)
	}
	return attrs, nil
}

// ReadArray reads the named array, reassembling its chunks into a
// contiguous in-memory array. Chunks absent from the store are left at
// the zero value, matching the zarr treatment of missing chunks as
// fill values.
func (g *Group) ReadArray(ctx context.Context, name string) (*dataset.Array, error) {
	m, err := g.ArrayMeta(ctx, name)
	if err != nil {
		return nil, err
	}
	attrs, err := g.Attrs(ctx, name)
	if err != nil {
		return nil, err
	}
	dims, err := Dimensions(attrs, len(m.Shape))
	if err != nil {
		return nil, fmt.Errorf("array %s: %w", name, err)
	}
	// The dimension list is storage convention, not user metadata;
	// WriteArray adds it back on the way out.
	delete(attrs, DimensionsAttr)
	dtype, err := dataset.ParseDType(m.DType)
	if err != nil {
		return nil, fmt.Errorf("zarr: array %s: %w", name, err)
	}

	a := &dataset.Array{
		Dims:   dims,
		Shape:  m.Shape,
		Chunks: m.Chunks,
		DType:  dtype,
		Attrs:  attrs,
		Data:   dtype.Zero(dataset.Size(m.Shape)),
	}
	chunkLen := dataset.Size(m.Chunks)
	grid := gridShape(m.Shape, m.Chunks)
	ci := make([]int, len(grid))
	for {
		data, err := g.bucket.ReadAll(ctx, g.key(name, chunkKey(ci)))
		switch {
		case gcerrors.Code(err) == gcerrors.NotFound:
		case err != nil:
			return nil, fmt.Errorf("zarr: reading array %s chunk %s: %v", name, chunkKey(ci), err)
		default:
			buf, err := decodeChunk(data, dtype, chunkLen, m)
			if err != nil {
				return nil, fmt.Errorf("array %s chunk %s: %w", name, chunkKey(ci), err)
			}
			copyRegion(buf, a.Data, ci, m.Shape, m.Chunks, false)
		}
		if !next(ci, grid) {
			break
		}
	}
	return a, nil
}

// WriteArray writes the array and its attributes under the given name,
// splitting the data into zlib-compressed chunks.
func (g *Group) WriteArray(ctx context.Context, name string, a *dataset.Array) error {
	if err := a.Check(); err != nil {
		return fmt.Errorf("zarr: writing array %s: %v", name, err)
	}
	m := newArrayMeta(a)
	if err := m.check(); err != nil {
		return fmt.Errorf("writing array %s: %w", name, err)
	}
	if err := g.writeJSON(ctx, g.key(name, arrayMetaKey), m); err != nil {
		return fmt.Errorf("zarr: writing metadata of array %s: %v", name, err)
	}

	attrs := make(map[string]interface{}, len(a.Attrs)+1)
	for k, v := range a.Attrs {
		attrs[k] = v
	}
	attrs[DimensionsAttr] = a.Dims
	if err := g.writeJSON(ctx, g.key(name, attrsKey), attrs); err != nil {
		return fmt.Errorf("zarr: writing attributes of array %s: %v", name, err)
	}

	chunkLen := dataset.Size(m.Chunks)
	grid := gridShape(m.Shape, m.Chunks)
	nchunks := 0
	ci := make([]int, len(grid))
	for {
		buf := a.DType.Zero(chunkLen)
		copyRegion(buf, a.Data, ci, m.Shape, m.Chunks, true)
		data, err := encodeChunk(buf, m)
		if err != nil {
			return fmt.Errorf("array %s chunk %s: %w", name, chunkKey(ci), err)
		}
		if err := g.bucket.WriteAll(ctx, g.key(name, chunkKey(ci)), data, nil); err != nil {
			return fmt.Errorf("zarr: writing array %s chunk %s: %v", name, chunkKey(ci), err)
		}
		nchunks++
		if !next(ci, grid) {
			break
		}
	}
	g.Log.WithFields(logrus.Fields{
		"array":  name,
		"shape":  fmt.Sprint(a.Shape),
		"chunks": nchunks,
	}).Debug("wrote zarr array")
	return nil
}

// Consolidate collects every metadata document in the group into a
// .zmetadata document so that later readers can avoid listing the
// store.
func (g *Group) Consolidate(ctx context.Context) error {
	cm := ConsolidatedMeta{
		Metadata: make(map[string]json.RawMessage),
		Format:   consolidatedFormat,
	}
	add := func(key string) error {
		data, err := g.bucket.ReadAll(ctx, g.key(key))
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		if err != nil {
			return err
		}
		cm.Metadata[key] = json.RawMessage(data)
		return nil
	}
	if err := add(groupMetaKey); err != nil {
		return fmt.Errorf("zarr: consolidating %s: %v", g.prefix, err)
	}
	if err := add(attrsKey); err != nil {
		return fmt.Errorf("zarr: consolidating %s: %v", g.prefix, err)
	}
	names, err := g.Arrays(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		for _, doc := range []string{arrayMetaKey, attrsKey} {
			if err := add(name + "/" + doc); err != nil {
				return fmt.Errorf("zarr: consolidating %s: %v", g.prefix, err)
			}
		}
	}
	return g.writeJSON(ctx, g.key(consolidatedMetaKey), cm)
}

func (g *Group) readConsolidated(ctx context.Context) (*ConsolidatedMeta, error) {
	data, err := g.bucket.ReadAll(ctx, g.key(consolidatedMetaKey))
	if err != nil {
		return nil, err
	}
	cm := new(ConsolidatedMeta)
	if err := json.Unmarshal(data, cm); err != nil {
		return nil, fmt.Errorf("zarr: parsing consolidated metadata: %v", err)
	}
	return cm, nil
}

func (g *Group) readJSON(ctx context.Context, key string, v interface{}) error {
	data, err := g.bucket.ReadAll(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (g *Group) writeJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return g.bucket.WriteAll(ctx, key, data, nil)
}

// Save writes ds to the group as a complete zarr store: group
// metadata, group attributes, every coordinate and variable, and
// consolidated metadata.
func Save(ctx context.Context, g *Group, ds *dataset.Dataset) error {
	if err := g.Init(ctx); err != nil {
		return fmt.Errorf("zarr: initializing group %s: %v", g.prefix, err)
	}
	attrs := ds.Attrs
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	if err := g.writeJSON(ctx, g.key(attrsKey), attrs); err != nil {
		return fmt.Errorf("zarr: writing group attributes: %v", err)
	}
	for _, name := range ds.CoordNames() {
		if err := g.WriteArray(ctx, name, ds.Coords[name]); err != nil {
			return err
		}
	}
	for _, name := range ds.VarNames() {
		if err := g.WriteArray(ctx, name, ds.Vars[name]); err != nil {
			return err
		}
	}
	if err := g.Consolidate(ctx); err != nil {
		return err
	}
	g.Log.WithFields(logrus.Fields{
		"coords":    len(ds.Coords),
		"variables": len(ds.Vars),
	}).Info("saved dataset to zarr store")
	return nil
}

// Load reads the whole group into an in-memory dataset. Arrays whose
// single dimension carries their own name are returned as coordinates,
// everything else as data variables.
func Load(ctx context.Context, g *Group) (*dataset.Dataset, error) {
	names, err := g.Arrays(ctx)
	if err != nil {
		return nil, err
	}
	ds := dataset.New()
	if ds.Attrs, err = g.Attrs(ctx, ""); err != nil {
		return nil, err
	}
	for _, name := range names {
		a, err := g.ReadArray(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(a.Dims) == 1 && a.Dims[0] == name {
			err = ds.AddCoord(name, a)
		} else {
			err = ds.AddVar(name, a)
		}
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}
