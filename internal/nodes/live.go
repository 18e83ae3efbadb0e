package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jellydator/ttlcache/v3"

	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
)

// hostsResponse is the JSON body of the backend's node-list endpoint.
type hostsResponse struct {
	Nodes map[string]struct {
		IP       string   `json:"ip"`
		ASN      string   `json:"asn"`
		Location []string `json:"location"` // [country code, country, city]
	} `json:"nodes"`
}

const liveKey = "hosts"

// LiveCatalog serves the current node list from the backend, cached with a
// TTL so long interactive sessions pick up node churn without hammering the
// endpoint. On any fetch failure it falls back to the embedded catalog.
type LiveCatalog struct {
	baseURL string
	client  *http.Client
	cache   *ttlcache.Cache[string, Catalog]
}

// NewLive returns a LiveCatalog for the given backend base URL.
func NewLive(baseURL string, ttl time.Duration) *LiveCatalog {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Catalog](ttl),
		ttlcache.WithDisableTouchOnHit[string, Catalog](),
	)
	go cache.Start()
	return &LiveCatalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: spec.RequestTimeout},
		cache:   cache,
	}
}

// Current returns the current catalog, fetching it if the cached copy has
// expired. Fetch failures are logged and the embedded catalog is returned
// instead, so callers always get a usable table.
func (lc *LiveCatalog) Current(ctx context.Context) Catalog {
	if item := lc.cache.Get(liveKey); item != nil {
		return item.Value()
	}
	cat, err := lc.fetch(ctx)
	if err != nil {
		log.Warn("Node list fetch failed, using embedded table", "error", err)
		return Default()
	}
	lc.cache.Set(liveKey, cat, ttlcache.DefaultTTL)
	return cat
}

// Stop stops the cache's expiration goroutine.
func (lc *LiveCatalog) Stop() {
	lc.cache.Stop()
}

func (lc *LiveCatalog) fetch(ctx context.Context) (Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		lc.baseURL+spec.NodesPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := lc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node list: unexpected status %s", resp.Status)
	}
	var body hostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Nodes) == 0 {
		return nil, fmt.Errorf("node list: empty response")
	}

	// The endpoint reports country and city but no continent tag; carry the
	// tag over from the embedded table for nodes we already know.
	embedded := Default()
	cat := make(Catalog, len(body.Nodes))
	for id, info := range body.Nodes {
		if len(info.Location) < 3 {
			continue
		}
		loc := Location{Country: info.Location[1], City: info.Location[2]}
		if known, ok := embedded[id]; ok {
			loc.Continent = known.Continent
		}
		cat[id] = loc
	}
	return cat, nil
}
