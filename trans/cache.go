// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package trans

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Direction selects which translation table a Cache applies.
type Direction int

const (
	// TradToSim converts traditional-script text to simplified.
	TradToSim Direction = iota
	// SimToTrad converts simplified-script text to traditional.
	SimToTrad

	directionCount
)

var tableNames = [directionCount]string{
	TradToSim: "t2s.dat",
	SimToTrad: "s2t.dat",
}

// A Cache owns at most one resident table per direction, loaded on
// first use and kept for the life of the Cache.  A loaded table is
// never reloaded or invalidated; restart to pick up a changed file.
// Cache is safe for concurrent use: the lazy load happens exactly once
// per direction and tables are read-only afterwards.
type Cache struct {
	dir    string
	load   [directionCount]sync.Once
	tables [directionCount]*Table
	errs   [directionCount]error
}

// NewCache returns a cache that loads its tables from dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Translate converts s using the table for the given direction,
// loading it first if this is the direction's first use.  A load
// failure is returned on this and every subsequent call; it is not
// retried.
func (c *Cache) Translate(d Direction, s string) (string, error) {
	if d < 0 || d >= directionCount {
		return "", fmt.Errorf("unknown translation direction %d", d)
	}
	c.load[d].Do(func() {
		c.tables[d], c.errs[d] = Open(filepath.Join(c.dir, tableNames[d]))
	})
	if c.errs[d] != nil {
		return "", c.errs[d]
	}
	return c.tables[d].Translate(s), nil
}
