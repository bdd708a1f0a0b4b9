package satellites

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orbitwatch/uphere-go/pkg/uphere"
)

// fakeFetcher serves canned pages and counts upstream calls.
type fakeFetcher struct {
	mu        sync.Mutex
	pages     map[int][]uphere.SatelliteRecord // keyed by page, unfiltered
	byCountry map[string][]uphere.SatelliteRecord
	countries []uphere.Country
	err       error

	listCalls    int32
	countryCalls int32

	// release, when set, gates SatelliteList so tests can hold several
	// concurrent lookups in flight.
	release chan struct{}
}

func (f *fakeFetcher) SatelliteList(ctx context.Context, page int, opts uphere.ListOptions) ([]uphere.SatelliteRecord, error) {
	atomic.AddInt32(&f.listCalls, 1)
	if f.release != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.release:
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if opts.Country != "" {
		return f.byCountry[opts.Country], nil
	}
	return f.pages[page], nil
}

func (f *fakeFetcher) Countries(ctx context.Context) ([]uphere.Country, error) {
	atomic.AddInt32(&f.countryCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.countries, nil
}

func (f *fakeFetcher) ListCalls() int32 { return atomic.LoadInt32(&f.listCalls) }

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func TestServiceSatellites_CacheFlow(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]uphere.SatelliteRecord{
		1: {
			{Name: "ISS (ZARYA)", Number: "25544", Type: "Payload"},
			{Name: "NO ID"},
		},
	}}
	svc := New(fetcher, Options{})
	ctx := context.Background()

	first, err := svc.Satellites(ctx, 1)
	if err != nil {
		t.Fatalf("first Satellites: %v", err)
	}
	if first.Cached {
		t.Error("first lookup should come from the upstream")
	}
	if len(first.Objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(first.Objects))
	}
	if first.Parse.Failed() != 1 {
		t.Errorf("Parse.Failed() = %d, want 1", first.Parse.Failed())
	}
	if first.Objects[0].NoradID != "25544" {
		t.Errorf("NoradID = %q", first.Objects[0].NoradID)
	}

	second, err := svc.Satellites(ctx, 1)
	if err != nil {
		t.Fatalf("second Satellites: %v", err)
	}
	if !second.Cached {
		t.Error("second lookup should come from cache")
	}
	if got := fetcher.ListCalls(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	if second.FetchedAt.IsZero() {
		t.Error("FetchedAt should survive the cache round trip")
	}
}

func TestServiceSatellites_InvalidPage(t *testing.T) {
	// The fetcher rejects bad pages; the service propagates without caching.
	fetcher := &fakeFetcher{}
	fetcher.setErr(uphere.New(uphere.ErrCodeInvalidInput, "page must be a positive integer, got 0"))
	svc := New(fetcher, Options{})

	if _, err := svc.Satellites(context.Background(), 0); !uphere.Is(err, uphere.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestServiceSatellites_FailureNotCached(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]uphere.SatelliteRecord{
		1: {{Name: "ISS (ZARYA)", Number: "25544"}},
	}}
	boom := errors.New("upstream down")
	fetcher.setErr(boom)
	svc := New(fetcher, Options{})
	ctx := context.Background()

	if _, err := svc.Satellites(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("got %v, want upstream failure", err)
	}

	// Key returned to absent: the next call re-attempts and succeeds.
	fetcher.setErr(nil)
	p, err := svc.Satellites(ctx, 1)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if p.Cached {
		t.Error("retry should hit the upstream, not a cached failure")
	}
	if got := fetcher.ListCalls(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestServiceSatellitesByCountry(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]uphere.SatelliteRecord{
			1: {{Name: "ISS (ZARYA)", Number: "25544"}},
		},
		byCountry: map[string][]uphere.SatelliteRecord{
			"FR": {{Name: "SPOT 7", Number: "40053"}},
		},
	}
	svc := New(fetcher, Options{})
	ctx := context.Background()

	p, err := svc.SatellitesByCountry(ctx, "FR")
	if err != nil {
		t.Fatalf("SatellitesByCountry: %v", err)
	}
	if len(p.Objects) != 1 || p.Objects[0].Name != "SPOT 7" {
		t.Errorf("objects = %+v", p.Objects)
	}

	// Filtered and unfiltered page 1 are distinct cache entries.
	if _, err := svc.Satellites(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if got := fetcher.ListCalls(); got != 2 {
		t.Errorf("upstream calls = %d, want 2 (separate keys)", got)
	}

	if _, err := svc.SatellitesByCountry(ctx, ""); !uphere.Is(err, uphere.ErrCodeInvalidInput) {
		t.Errorf("empty country: got %v, want INVALID_INPUT", err)
	}
}

func TestServiceFindByName(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]uphere.SatelliteRecord{
		1: {
			{Name: "STARLINK-1007", Number: "44713"},
			{Name: "ISS (ZARYA)", Number: "25544"},
		},
		2: {
			{Name: "STARLINK-1130", Number: "45054"},
		},
		// page 3 absent: empty page ends the scan
	}}
	svc := New(fetcher, Options{MaxScanPages: 5})
	ctx := context.Background()

	matches, err := svc.FindByName(ctx, "starlink")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for _, m := range matches {
		if m.NoradID != "44713" && m.NoradID != "45054" {
			t.Errorf("unexpected match %+v", m)
		}
	}

	// Scan stopped at the first empty page, not at the page bound.
	if got := fetcher.ListCalls(); got != 3 {
		t.Errorf("upstream calls = %d, want 3 (pages 1, 2 and the empty 3)", got)
	}

	if _, err := svc.FindByName(ctx, ""); !uphere.Is(err, uphere.ErrCodeInvalidInput) {
		t.Errorf("empty fragment: got %v, want INVALID_INPUT", err)
	}
}

func TestServiceFindByNORADID(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]uphere.SatelliteRecord{
		1: {{Name: "STARLINK-1007", Number: "44713"}},
		2: {{Name: "ISS (ZARYA)", Number: "25544"}},
	}}
	svc := New(fetcher, Options{MaxScanPages: 5})
	ctx := context.Background()

	obj, found, err := svc.FindByNORADID(ctx, "25544")
	if err != nil {
		t.Fatalf("FindByNORADID: %v", err)
	}
	if !found {
		t.Fatal("expected a match on page 2")
	}
	if obj.Name != "ISS (ZARYA)" {
		t.Errorf("Name = %q", obj.Name)
	}

	// Exhausted scan is found=false, not an error.
	obj, found, err = svc.FindByNORADID(ctx, "99999")
	if err != nil {
		t.Fatalf("miss: %v", err)
	}
	if found || obj != nil {
		t.Errorf("miss returned obj=%v found=%v", obj, found)
	}

	if _, _, err := svc.FindByNORADID(ctx, ""); !uphere.Is(err, uphere.ErrCodeInvalidInput) {
		t.Errorf("empty id: got %v, want INVALID_INPUT", err)
	}
}

func TestServiceFindByNORADID_ScanBound(t *testing.T) {
	// Every page is non-empty, so only the bound stops the scan.
	pages := make(map[int][]uphere.SatelliteRecord)
	for n := 1; n <= 20; n++ {
		pages[n] = []uphere.SatelliteRecord{{Name: "FILLER", Number: "1"}}
	}
	fetcher := &fakeFetcher{pages: pages}
	svc := New(fetcher, Options{MaxScanPages: 3})

	_, found, err := svc.FindByNORADID(context.Background(), "99999")
	if err != nil || found {
		t.Fatalf("got found=%v err=%v", found, err)
	}
	if got := fetcher.ListCalls(); got != 3 {
		t.Errorf("upstream calls = %d, want 3 (bounded scan)", got)
	}
}

func TestServiceCountries(t *testing.T) {
	fetcher := &fakeFetcher{countries: []uphere.Country{
		{ID: 1, Name: "United States", Abbreviation: "US"},
		{ID: 2, Name: "France", Abbreviation: "FR"},
	}}
	svc := New(fetcher, Options{})
	ctx := context.Background()

	countries, err := svc.Countries(ctx)
	if err != nil {
		t.Fatalf("Countries: %v", err)
	}
	if len(countries) != 2 || countries[1].Abbreviation != "FR" {
		t.Errorf("countries = %+v", countries)
	}

	if _, err := svc.Countries(ctx); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&fetcher.countryCalls); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestServiceCoalescing(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:   map[int][]uphere.SatelliteRecord{1: {{Name: "ISS (ZARYA)", Number: "25544"}}},
		release: make(chan struct{}),
	}
	svc := New(fetcher, Options{})
	ctx := context.Background()

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Satellites(ctx, 1)
		}(i)
	}

	// Let the leader reach the gated fetch, then release it.
	for atomic.LoadInt32(&fetcher.listCalls) == 0 {
		time.Sleep(time.Millisecond)
	}
	close(fetcher.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := fetcher.ListCalls(); got != 1 {
		t.Errorf("upstream calls = %d, want 1 (coalesced)", got)
	}
}

func TestServiceClearCache(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:     map[int][]uphere.SatelliteRecord{1: {{Name: "ISS (ZARYA)", Number: "25544"}}},
		countries: []uphere.Country{{ID: 1, Name: "United States", Abbreviation: "US"}},
	}
	svc := New(fetcher, Options{})
	ctx := context.Background()

	if _, err := svc.Satellites(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Countries(ctx); err != nil {
		t.Fatal(err)
	}

	if err := svc.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}

	p, err := svc.Satellites(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Cached {
		t.Error("lookup after ClearCache should hit the upstream")
	}
	if got := fetcher.ListCalls(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}
