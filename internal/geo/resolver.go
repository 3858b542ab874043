package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kaanozd/above-cloud/internal/models"
	"github.com/kaanozd/above-cloud/internal/observability"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means the forward search matched nothing.
	ErrNotFound = errors.New("location not found")

	// ErrIPLocationUnavailable means the IP fallback source failed.
	ErrIPLocationUnavailable = errors.New("could not determine location by IP")
)

type ForwardGeocoder interface {
	Search(ctx context.Context, name string) ([]models.PlaceCandidate, error)
}

type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (models.ReverseAddress, error)
}

type IPLocator interface {
	Locate(ctx context.Context) (models.IPLocation, error)
}

// CacheStats is a point-in-time snapshot of the resolver's cache sizes.
type CacheStats struct {
	ForwardEntries int
	ReverseEntries int
}

// Resolver turns free-text place names and coordinate pairs into
// canonical place records, memoizing successful provider results for
// the process lifetime. The two caches share no key space and are
// cleared only by an explicit Reset, never silently.
type Resolver struct {
	forward ForwardGeocoder
	reverse ReverseGeocoder
	ip      IPLocator
	metrics *observability.Metrics
	logger  *zap.Logger

	mu           sync.RWMutex
	searchCache  map[string][]models.PlaceCandidate
	reverseCache map[string]models.ResolvedPlace
}

func NewResolver(forward ForwardGeocoder, reverse ReverseGeocoder, ip IPLocator, metrics *observability.Metrics, logger *zap.Logger) *Resolver {
	return &Resolver{
		forward:      forward,
		reverse:      reverse,
		ip:           ip,
		metrics:      metrics,
		logger:       logger,
		searchCache:  make(map[string][]models.PlaceCandidate),
		reverseCache: make(map[string]models.ResolvedPlace),
	}
}

// SearchLocations returns 0-5 candidates in provider relevance order.
// An empty result is not an error. Only non-empty results are cached,
// so a transient "not found" or failure can be retried later.
func (r *Resolver) SearchLocations(ctx context.Context, text string) ([]models.PlaceCandidate, error) {
	query := strings.TrimSpace(text)
	key := strings.ToLower(query)

	r.mu.RLock()
	cached, ok := r.searchCache[key]
	r.mu.RUnlock()
	if ok {
		r.metrics.GeocodeCache.WithLabelValues("forward", "hit").Inc()
		return cached, nil
	}
	r.metrics.GeocodeCache.WithLabelValues("forward", "miss").Inc()

	candidates, err := r.forward.Search(ctx, query)
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("forward", "error").Inc()
		return nil, err
	}

	if len(candidates) == 0 {
		r.metrics.GeocodeRequests.WithLabelValues("forward", "empty").Inc()
		return candidates, nil
	}
	r.metrics.GeocodeRequests.WithLabelValues("forward", "success").Inc()

	r.mu.Lock()
	r.searchCache[key] = candidates
	r.mu.Unlock()

	return candidates, nil
}

// GetCoordinates resolves a place name to its best candidate.
func (r *Resolver) GetCoordinates(ctx context.Context, text string) (models.PlaceCandidate, error) {
	candidates, err := r.SearchLocations(ctx, text)
	if err != nil {
		return models.PlaceCandidate{}, fmt.Errorf("error finding location: %w", err)
	}
	if len(candidates) == 0 {
		return models.PlaceCandidate{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(text))
	}
	return candidates[0], nil
}

// GetLocationName reverse-geocodes a coordinate pair into a display
// record. The returned FormattedName is always non-empty: when the
// provider fails or resolves nothing, a coordinate label stands in.
// Provider failures are never cached; empty-but-successful lookups are.
func (r *Resolver) GetLocationName(ctx context.Context, lat, lon float64) (models.ResolvedPlace, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	r.mu.RLock()
	cached, ok := r.reverseCache[key]
	r.mu.RUnlock()
	if ok {
		r.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return cached, nil
	}
	r.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	rev, err := r.reverse.Reverse(ctx, lat, lon)
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("reverse", "error").Inc()
		r.logger.Warn("Reverse geocoding failed, using coordinate label",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return fallbackPlace(lat, lon), nil
	}
	r.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()

	place := buildResolvedPlace(rev, lat, lon)

	r.mu.Lock()
	r.reverseCache[key] = place
	r.mu.Unlock()

	return place, nil
}

// GetLocationByIP resolves an approximate fix from the caller's IP.
// Never cached: the answer depends on the network path, not the query.
func (r *Resolver) GetLocationByIP(ctx context.Context) (models.IPLocation, error) {
	loc, err := r.ip.Locate(ctx)
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("ip", "error").Inc()
		return models.IPLocation{}, fmt.Errorf("%w: %v", ErrIPLocationUnavailable, err)
	}
	r.metrics.GeocodeRequests.WithLabelValues("ip", "success").Inc()

	loc.FormattedName = joinNonEmpty(loc.Name, loc.Admin1, loc.Country)
	return loc, nil
}

// Reset clears both caches. The only way cache entries ever die.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchCache = make(map[string][]models.PlaceCandidate)
	r.reverseCache = make(map[string]models.ResolvedPlace)
}

func (r *Resolver) CacheStats() CacheStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CacheStats{
		ForwardEntries: len(r.searchCache),
		ReverseEntries: len(r.reverseCache),
	}
}

// extractBestName picks the most specific administrative name. The
// priority order is total and deterministic; first match wins.
func extractBestName(addr models.Address) string {
	for _, name := range []string{
		addr.City,
		addr.Town,
		addr.Village,
		addr.Municipality,
		addr.County,
		addr.StateDistrict,
		addr.Region,
		addr.State,
		addr.Neighbourhood,
		addr.Suburb,
	} {
		if name != "" {
			return name
		}
	}
	return "Unknown"
}

func buildResolvedPlace(rev models.ReverseAddress, lat, lon float64) models.ResolvedPlace {
	addr := rev.Address

	name := extractBestName(addr)
	admin1 := addr.State
	if admin1 == "" {
		admin1 = addr.Region
	}
	country := addr.Country

	if name == "Unknown" {
		name = coordinateLabel(lat, lon)
	}

	return models.ResolvedPlace{
		Name:          name,
		Country:       country,
		Admin1:        admin1,
		FormattedName: formatDisplayName(addr, name, admin1, country),
		FullAddress:   rev.DisplayName,
	}
}

func formatDisplayName(addr models.Address, name, admin1, country string) string {
	parts := []string{name}

	if addr.Suburb != "" && addr.Suburb != name {
		parts = append(parts, addr.Suburb)
	}
	if admin1 != "" && admin1 != name {
		parts = append(parts, admin1)
	}
	if country != "" {
		parts = append(parts, country)
	}

	// A bare coordinate label gets no trailing comma-joined parts.
	if len(parts) == 1 && strings.HasPrefix(parts[0], "Location (") {
		return parts[0]
	}

	return strings.Join(parts, ", ")
}

func fallbackPlace(lat, lon float64) models.ResolvedPlace {
	return models.ResolvedPlace{
		Name:          coordinateLabel(lat, lon),
		FormattedName: fmt.Sprintf("Location at %.4f°, %.4f°", lat, lon),
	}
}

func coordinateLabel(lat, lon float64) string {
	return fmt.Sprintf("Location (%.4f°, %.4f°)", lat, lon)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
