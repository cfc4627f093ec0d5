// Package resolve turns human-typed road location descriptions into the
// canonical identifiers used by the Digitraffic forecast-section catalog.
//
// Resolution is a cascade: a persisted override wins outright, then exact
// description matching, structured "road: location" parsing, numeric
// road+kilometre parsing, and finally token-overlap scoring. When several
// records tie on the primary score, a secondary condition feed breaks the
// tie deterministically.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrNoMatch is returned by Resolve when nothing in the catalog matches.
// It is a normal terminal outcome, not a provider fault.
var ErrNoMatch = errors.New("no matching catalog record")

// CatalogProvider supplies the full candidate record list. Transport,
// caching and retries belong to the implementation, not to the resolver.
type CatalogProvider interface {
	Catalog(ctx context.Context) ([]Record, error)
}

// ObservationProvider supplies the secondary condition feed used for
// tie-breaking, keyed by canonical identifier.
type ObservationProvider interface {
	Observations(ctx context.Context) (Observations, error)
}

// OverrideStore persists caller-confirmed query-to-identifier mappings.
// Keys must be normalized with the same normalizer the resolver matches with.
type OverrideStore interface {
	Lookup(query string) (id string, ok bool, err error)
	Save(query, id string) error
}

// Config wires a Resolver's collaborators.
type Config struct {
	Catalog       CatalogProvider
	Forecast      ObservationProvider     // nil disables tie-breaking
	Overrides     OverrideStore           // nil disables overrides
	Normalize     Normalizer              // nil = lowercase_utf8
	MaxCandidates int                     // <= 0 = DefaultMaxCandidates
	Logger        *slog.Logger            // nil = slog.Default()
}

// Resolver is the top-level selector. It holds no catalog state of its own;
// every resolution works against one fresh snapshot from the provider.
type Resolver struct {
	catalog   CatalogProvider
	forecast  ObservationProvider
	overrides OverrideStore
	normalize Normalizer
	max       int
	logger    *slog.Logger
}

// New builds a Resolver, filling in defaults for optional collaborators.
func New(cfg Config) *Resolver {
	r := &Resolver{
		catalog:   cfg.Catalog,
		forecast:  cfg.Forecast,
		overrides: cfg.Overrides,
		normalize: cfg.Normalize,
		max:       cfg.MaxCandidates,
		logger:    cfg.Logger,
	}
	if r.normalize == nil {
		r.normalize = NormalizeLowercaseUTF8
	}
	if r.max <= 0 {
		r.max = DefaultMaxCandidates
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve maps a query to exactly one canonical identifier.
// Order: override store, canonical-id passthrough, scored cascade, and a
// secondary-feed tie-break when several records share the maximal score.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrNoMatch
	}

	if id, ok := r.lookupOverride(query); ok {
		return id, nil
	}
	if IsCanonicalID(query) {
		return query, nil
	}

	cands := ScoredCandidates(query, r.fetchCatalog(ctx), r.max, r.normalize)
	switch len(cands) {
	case 0:
		return "", ErrNoMatch
	case 1:
		return cands[0].Record.ID, nil
	}

	top := cands[0].Score
	tied := cands[:1]
	for _, c := range cands[1:] {
		if c.Score != top {
			break
		}
		tied = append(tied, c)
	}
	if len(tied) == 1 {
		return tied[0].Record.ID, nil
	}
	return breakTie(tied, r.fetchObservations(ctx)).Record.ID, nil
}

// ResolveCandidates is the listing path: it returns the ordered candidate
// set so a human can pick, instead of tie-breaking silently. An override or
// canonical-id input still short-circuits to a single entry.
func (r *Resolver) ResolveCandidates(ctx context.Context, query string, max int) ([]Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if max <= 0 || max > r.max {
		max = r.max
	}

	if id, ok := r.lookupOverride(query); ok {
		return []Record{r.recordByID(ctx, id)}, nil
	}
	if IsCanonicalID(query) {
		return []Record{r.recordByID(ctx, query)}, nil
	}
	return ResolveCandidates(query, r.fetchCatalog(ctx), max, r.normalize), nil
}

// Confirm persists a disambiguated choice so the same query resolves to id
// from now on. A later Confirm for the same query overwrites the mapping.
func (r *Resolver) Confirm(ctx context.Context, query, id string) error {
	query = strings.TrimSpace(query)
	id = strings.TrimSpace(id)
	if query == "" || id == "" {
		return errors.New("confirm: query and id must be non-empty")
	}
	if r.overrides == nil {
		return errors.New("confirm: no override store configured")
	}
	if err := r.overrides.Save(query, id); err != nil {
		return err
	}
	r.logger.Info("override saved", "query", query, "id", id)
	return nil
}

func (r *Resolver) lookupOverride(query string) (string, bool) {
	if r.overrides == nil {
		return "", false
	}
	id, ok, err := r.overrides.Lookup(query)
	if err != nil {
		// A broken override store degrades to normal resolution.
		r.logger.Warn("override lookup failed", "query", query, "error", err)
		return "", false
	}
	return id, ok
}

// fetchCatalog treats provider failures as an empty snapshot. Callers see
// "no candidates", never a provider exception.
func (r *Resolver) fetchCatalog(ctx context.Context) []Record {
	if r.catalog == nil {
		return nil
	}
	records, err := r.catalog.Catalog(ctx)
	if err != nil {
		r.logger.Warn("catalog fetch failed", "error", err)
		return nil
	}
	return records
}

// fetchObservations treats feed failures as an empty feed; the tie-break
// then falls back to its deterministic first-candidate rule.
func (r *Resolver) fetchObservations(ctx context.Context) Observations {
	if r.forecast == nil {
		return nil
	}
	obs, err := r.forecast.Observations(ctx)
	if err != nil {
		r.logger.Warn("observation fetch failed", "error", err)
		return nil
	}
	return obs
}

// recordByID returns the catalog record for id, or a bare record carrying
// just the id when the snapshot no longer contains it.
func (r *Resolver) recordByID(ctx context.Context, id string) Record {
	for _, rec := range r.fetchCatalog(ctx) {
		if rec.ID == id {
			return rec
		}
	}
	return Record{ID: id}
}
