// Package satellites provides a caching lookup service over the UpHere
// API client.
//
// The service is a read-through cache: each lookup key (catalog page,
// country filter, country list) transitions absent -> fetching -> cached.
// A miss issues exactly one upstream call chain; concurrent lookups for
// the same key collapse into that one in-flight fetch. Failures are never
// cached — the key returns to absent and the next call re-attempts.
package satellites

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/orbitwatch/uphere-go/pkg/cache"
	"github.com/orbitwatch/uphere-go/pkg/observability"
	"github.com/orbitwatch/uphere-go/pkg/orbital"
	"github.com/orbitwatch/uphere-go/pkg/uphere"
)

// Defaults for the configuration surface left open by the upstream
// documentation: how long a cached page stays fresh, and how many pages a
// name or NORAD ID scan visits before giving up.
const (
	DefaultTTL          = 5 * time.Minute
	DefaultMaxScanPages = 10
)

// Fetcher is the slice of the API client the service consumes.
// *uphere.Client satisfies it.
type Fetcher interface {
	SatelliteList(ctx context.Context, page int, opts uphere.ListOptions) ([]uphere.SatelliteRecord, error)
	Countries(ctx context.Context) ([]uphere.Country, error)
}

// Options configures a Service. Zero fields fall back to defaults
// (in-memory cache, DefaultTTL, DefaultMaxScanPages).
type Options struct {
	Cache        cache.Cache
	TTL          time.Duration
	MaxScanPages int
}

// Service resolves satellite lookups against the cache before touching
// the network. Safe for concurrent use.
type Service struct {
	fetcher      Fetcher
	cache        cache.Cache
	ttl          time.Duration
	maxScanPages int

	mu       sync.Mutex
	inflight map[string]*call
	keys     map[string]struct{} // every key ever stored, for invalidation
}

// call is one in-flight fetch; concurrent lookups for its key wait on done.
type call struct {
	done   chan struct{}
	data   []byte
	cached bool
	err    error
}

// New creates a Service on top of fetcher.
func New(fetcher Fetcher, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxScanPages <= 0 {
		opts.MaxScanPages = DefaultMaxScanPages
	}
	return &Service{
		fetcher:      fetcher,
		cache:        opts.Cache,
		ttl:          opts.TTL,
		maxScanPages: opts.MaxScanPages,
		inflight:     make(map[string]*call),
		keys:         make(map[string]struct{}),
	}
}

// Page is one resolved catalog page: the parsed objects, the parse report
// for records that failed the NORAD ID invariant, and cache provenance.
type Page struct {
	Objects   []orbital.Object `json:"objects"`
	Parse     orbital.Report   `json:"parse_report"`
	FetchedAt time.Time        `json:"fetched_at"`
	Cached    bool             `json:"-"`
}

// Satellites returns the cached-or-fetched catalog page. page is 1-based.
func (s *Service) Satellites(ctx context.Context, page int) (*Page, error) {
	return s.page(ctx, page, "")
}

// SatellitesByCountry returns satellites launched by the given country
// code (e.g. "US"). The filter is applied server-side by the upstream
// rather than by scanning pages client-side; results are cached per
// country. Only the first page of the filtered catalog is returned.
func (s *Service) SatellitesByCountry(ctx context.Context, countryCode string) (*Page, error) {
	if countryCode == "" {
		return nil, uphere.New(uphere.ErrCodeInvalidInput, "country code must not be empty")
	}
	return s.page(ctx, 1, countryCode)
}

// FindByName searches for satellites whose name contains fragment,
// case-insensitively. The scan walks catalog pages in order, serving from
// cache where possible, and stops at the configured page bound or at the
// end of the catalog (an empty page), whichever comes first.
func (s *Service) FindByName(ctx context.Context, fragment string) ([]orbital.Object, error) {
	if fragment == "" {
		return nil, uphere.New(uphere.ErrCodeInvalidInput, "search fragment must not be empty")
	}
	needle := strings.ToLower(fragment)

	var matches []orbital.Object
	for n := 1; n <= s.maxScanPages; n++ {
		p, err := s.Satellites(ctx, n)
		if err != nil {
			return nil, err
		}
		if len(p.Objects) == 0 && p.Parse.Failed() == 0 {
			break // end of catalog
		}
		for _, obj := range p.Objects {
			if strings.Contains(strings.ToLower(obj.Name), needle) {
				matches = append(matches, obj)
			}
		}
	}
	return matches, nil
}

// FindByNORADID returns the first object with the exact NORAD ID, scanning
// catalog pages up to the configured bound. An exhausted scan is not an
// error: found is false and err is nil.
func (s *Service) FindByNORADID(ctx context.Context, noradID string) (obj *orbital.Object, found bool, err error) {
	if noradID == "" {
		return nil, false, uphere.New(uphere.ErrCodeInvalidInput, "NORAD ID must not be empty")
	}

	for n := 1; n <= s.maxScanPages; n++ {
		p, err := s.Satellites(ctx, n)
		if err != nil {
			return nil, false, err
		}
		if len(p.Objects) == 0 && p.Parse.Failed() == 0 {
			break
		}
		for i := range p.Objects {
			if p.Objects[i].NoradID == noradID {
				return &p.Objects[i], true, nil
			}
		}
	}
	return nil, false, nil
}

// Countries returns the cached-or-fetched set of launch countries.
func (s *Service) Countries(ctx context.Context) ([]uphere.Country, error) {
	key := cache.Key("uphere:countries")
	data, _, err := s.lookup(ctx, key, "countries", func(ctx context.Context) ([]byte, error) {
		countries, err := s.fetcher.Countries(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(countries)
	})
	if err != nil {
		return nil, err
	}

	var countries []uphere.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// ClearCache drops every entry this service has stored.
func (s *Service) ClearCache(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	s.keys = make(map[string]struct{})
	s.mu.Unlock()

	for _, k := range keys {
		if err := s.cache.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) page(ctx context.Context, page int, country string) (*Page, error) {
	key := cache.Key("uphere:list", page, country)
	data, cached, err := s.lookup(ctx, key, "satellite-list", func(ctx context.Context) ([]byte, error) {
		records, err := s.fetcher.SatelliteList(ctx, page, uphere.ListOptions{Country: country})
		if err != nil {
			return nil, err
		}
		objects, report := orbital.ParseAll(records)
		return json.Marshal(Page{Objects: objects, Parse: report, FetchedAt: time.Now()})
	})
	if err != nil {
		return nil, err
	}

	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.Cached = cached
	return &p, nil
}

// lookup implements the per-key state machine. The first caller for an
// absent key becomes the leader: it checks the cache, fetches on a miss,
// and stores the result. Followers wait for the leader's outcome instead
// of issuing duplicate upstream calls. A failed fetch leaves the key
// absent so the next lookup re-attempts.
func (s *Service) lookup(ctx context.Context, key, keyType string, fetch func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	s.mu.Lock()
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-c.done:
			return c.data, c.cached, c.err
		}
	}
	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	c.data, c.cached, c.err = s.fill(ctx, key, keyType, fetch)

	s.mu.Lock()
	delete(s.inflight, key)
	if c.err == nil {
		s.keys[key] = struct{}{}
	}
	s.mu.Unlock()
	close(c.done)

	return c.data, c.cached, c.err
}

func (s *Service) fill(ctx context.Context, key, keyType string, fetch func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	data, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
