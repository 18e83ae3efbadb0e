// Package nodes provides the vantage-point catalog: the mapping from backend
// node identifiers to their locations. The default catalog is compiled into
// the binary; a live catalog can refresh it from the backend.
package nodes

import (
	_ "embed"
	"encoding/json"
	"sort"
	"sync"

	"github.com/m-lab/go/rtx"
)

//go:embed nodes.json
var nodesJSON []byte

// Location describes where a vantage point runs.
type Location struct {
	Country   string `json:"country"`
	City      string `json:"city"`
	Continent string `json:"continent"`
}

// Label returns the display label for the location, e.g. "Germany (Frankfurt)".
func (l Location) Label() string {
	return l.Country + " (" + l.City + ")"
}

// Catalog maps node identifiers to locations. It is read-only after creation.
type Catalog map[string]Location

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
)

// Default returns the compiled-in catalog. The returned map is shared; callers
// must not mutate it.
func Default() Catalog {
	defaultOnce.Do(func() {
		rtx.Must(json.Unmarshal(nodesJSON, &defaultCatalog),
			"corrupt embedded nodes table")
	})
	return defaultCatalog
}

// Lookup returns the location of the given node identifier.
func (c Catalog) Lookup(id string) (Location, bool) {
	loc, ok := c[id]
	return loc, ok
}

// IDs returns every node identifier in the catalog, sorted.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ByContinent returns the sorted identifiers of all nodes in the given
// continent tag (e.g. "EU", "NA", "EU-EAST").
func (c Catalog) ByContinent(tag string) []string {
	var ids []string
	for id, loc := range c {
		if loc.Continent == tag {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
