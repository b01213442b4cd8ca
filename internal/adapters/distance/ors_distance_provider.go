package distance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"mission-circuit-service/internal/ports"
	"net/http"
	"strings"
	"time"
)

// ORSDistanceProvider implements DistanceMatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent distance matrix caching
//   - External API calls with bounded timeout and retry/backoff
//   - Classification of API rejections vs connectivity failures
//
// The provider is safe for concurrent use.
type ORSDistanceProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	maxAttempts  int
	retryBackoff time.Duration
	matrixCache  ports.MatrixCache
}

type Option func(*ORSDistanceProvider)

func WithBaseURL(u string) Option {
	return func(o *ORSDistanceProvider) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithProfile(p string) Option {
	return func(o *ORSDistanceProvider) { o.profile = p }
}

func WithTimeout(d time.Duration) Option {
	return func(o *ORSDistanceProvider) { o.session.Timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *ORSDistanceProvider) { o.session = c }
}

// WithRetry sets the total attempt count for transient failures and the
// initial backoff, which doubles between attempts.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(o *ORSDistanceProvider) {
		o.maxAttempts = maxAttempts
		o.retryBackoff = backoff
	}
}

func NewORSDistanceProvider(
	apiKey string,
	matrixCache ports.MatrixCache,
	opts ...Option,
) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		session:      &http.Client{Timeout: 15 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://api.openrouteservice.org",
		profile:      "driving-car",
		maxAttempts:  2,
		retryBackoff: 250 * time.Millisecond,
		matrixCache:  matrixCache,
	}
	for _, opt := range opts {
		opt(provider)
	}

	if provider.maxAttempts < 1 {
		provider.maxAttempts = 1
	}

	return provider, nil
}

// Delegate to the matrix path to reuse caching and error handling.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	m, err := o.GetMatrix(ctx, []domain.Coordinates{origin, destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf(
			"get distance %s -> %s: %w",
			origin.Key(), destination.Key(), err,
		)
	}

	r := ports.DistanceResult{DistanceMeters: m.Distances[0][1]}
	if m.Durations != nil {
		r.DurationSeconds = m.Durations[0][1]
	}
	return r, nil
}

// GetMatrix returns the all-pairs distance/duration matrix for locations,
// indexed in the given order.
func (o *ORSDistanceProvider) GetMatrix(
	ctx context.Context,
	locations []domain.Coordinates,
) (_ *domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "ors.GetMatrix")(&err)

	if len(locations) < 2 {
		return nil, fmt.Errorf("ORS matrix: need at least 2 locations, got %d", len(locations))
	}
	for i, c := range locations {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("ORS matrix: location %d: %w", i, err)
		}
	}

	key := o.cacheKey(locations)

	// Check persistent matrix cache before issuing external API calls.
	if o.matrixCache != nil {
		cached, ok, err := o.matrixCache.Get(ctx, key)
		switch {
		case err != nil:
			obs.MatrixCacheTotal.WithLabelValues("error").Inc()
			slog.WarnContext(ctx, "matrix cache read failed", "req_id", obs.RequestID(ctx), "err", err)
		case ok && cached.Validate(len(locations)) == nil:
			obs.MatrixCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			obs.MatrixCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	fetched, err := o.fetchMatrix(ctx, locations)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix: %w", err)
	}

	if o.matrixCache != nil {
		if err := o.matrixCache.Put(ctx, key, fetched); err != nil {
			slog.WarnContext(ctx, "matrix cache write failed", "req_id", obs.RequestID(ctx), "err", err)
		}
	}

	return fetched, nil
}

// cacheKey is stable for the same profile and location order.
func (o *ORSDistanceProvider) cacheKey(locations []domain.Coordinates) string {
	h := sha256.New()
	h.Write([]byte(o.profile))
	for _, c := range locations {
		h.Write([]byte{'|'})
		h.Write([]byte(c.Key()))
	}
	return hex.EncodeToString(h.Sum(nil))
}
