package manifest

import (
	"context"

	"github.com/agentx-labs/bootkeeper/internal/transport"
	"github.com/rs/zerolog"
)

// Mode selects whether a fetch may persist anything.
type Mode int

const (
	// ModeNormal refreshes the cache after a successful fetch.
	ModeNormal Mode = iota
	// ModeCheck never writes.
	ModeCheck
)

func (m Mode) String() string {
	if m == ModeCheck {
		return "check"
	}
	return "normal"
}

// FetchResult is the outcome of one manifest fetch.
type FetchResult struct {
	// Manifest is the manifest in effect for this boot.
	Manifest *Manifest
	// Changed reports a content difference against the cached manifest
	// from the last successful fetch. It is true when there was no cache
	// and false when FromCache is set.
	Changed bool
	// Added lists ids that are new relative to the cached manifest.
	Added []string
	// FromCache is set when the remote manifest could not be used.
	FromCache bool
	// FetchErr is the download or parse failure that caused the cache
	// fallback.
	FetchErr error
}

// Fetcher downloads the remote manifest and tracks changes against the
// local cache.
type Fetcher struct {
	transport transport.Transport
	cache     *Cache
	path      string
	logger    zerolog.Logger
}

// NewFetcher creates a Fetcher reading path through t.
func NewFetcher(t transport.Transport, cache *Cache, path string, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		transport: t,
		cache:     cache,
		path:      path,
		logger:    logger,
	}
}

// Fetch downloads and parses the remote manifest. When that fails the cached
// manifest is returned instead; with no cache the failure is returned and
// wraps faults.ErrNetwork or faults.ErrParse.
func (f *Fetcher) Fetch(ctx context.Context, mode Mode) (*FetchResult, error) {
	prev, err := f.cache.Load()
	if err != nil {
		f.logger.Warn().Err(err).Str("path", f.cache.Path()).Msg("ignoring unreadable manifest cache")
		prev = nil
	}

	m, err := f.download(ctx)
	if err != nil {
		if prev == nil {
			return nil, err
		}
		f.logger.Warn().Err(err).Msg("using cached manifest")
		return &FetchResult{
			Manifest:  prev,
			FromCache: true,
			FetchErr:  err,
		}, nil
	}

	changed, err := differs(m, prev)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{
		Manifest: m,
		Changed:  changed,
		Added:    m.AddedSince(prev),
	}

	f.logger.Debug().
		Int("entries", len(m.Entries)).
		Bool("changed", changed).
		Strs("added", result.Added).
		Str("mode", mode.String()).
		Msg("fetched manifest")

	if mode == ModeNormal {
		if err := f.cache.Save(m); err != nil {
			f.logger.Warn().Err(err).Str("path", f.cache.Path()).Msg("saving manifest cache")
		}
	}

	return result, nil
}

func (f *Fetcher) download(ctx context.Context) (*Manifest, error) {
	data, err := f.transport.Get(ctx, f.path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func differs(m, prev *Manifest) (bool, error) {
	if prev == nil {
		return true, nil
	}
	cur, err := m.Digest()
	if err != nil {
		return false, err
	}
	old, err := prev.Digest()
	if err != nil {
		return false, err
	}
	return !cur.Equal(old), nil
}
