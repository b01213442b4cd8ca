package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"net/http"
	"time"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Metrics      []string    `json:"metrics"`
	Units        string      `json:"units"`
	Profile      string      `json:"profile"`
	Sources      []string    `json:"sources"`
	Destinations []string    `json:"destinations"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrix retrieves the all-to-all distance and duration matrix
// from the OpenRouteService matrix endpoint.
func (o *ORSDistanceProvider) fetchMatrix(
	ctx context.Context,
	locations []domain.Coordinates,
) (_ *domain.DistanceMatrix, err error) {
	start := time.Now()
	defer func() {
		obs.MatrixRequestDuration.Observe(time.Since(start).Seconds())
		obs.MatrixRequestsTotal.WithLabelValues(requestOutcome(err)).Inc()
	}()

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	// ORS takes [lon, lat] pairs.
	coords := make([][]float64, 0, len(locations))
	for _, c := range locations {
		coords = append(coords, c.CoordsToList())
	}

	bodyObj := matrixRequest{
		Locations:    coords,
		Metrics:      []string{"distance", "duration"},
		Units:        "m",
		Profile:      o.profile,
		Sources:      []string{"all"},
		Destinations: []string{"all"},
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w: %v", ErrMalformedResponse, err)
	}

	n := len(locations)
	distances, err := denseRows("distances", mr.Distances, n)
	if err != nil {
		return nil, err
	}

	var durations [][]float64
	if mr.Durations != nil {
		durations, err = denseRows("durations", mr.Durations, n)
		if err != nil {
			return nil, err
		}
	}

	return &domain.DistanceMatrix{Distances: distances, Durations: durations}, nil
}

// denseRows converts ORS nullable rows, rejecting wrong shapes and nulls
// (ORS returns null for pairs it cannot route).
func denseRows(name string, rows [][]*float64, n int) ([][]float64, error) {
	if len(rows) != n {
		return nil, fmt.Errorf("%w: expected %d %s rows, got %d", ErrMalformedResponse, n, name, len(rows))
	}

	out := make([][]float64, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: %s row %d has %d entries, want %d", ErrMalformedResponse, name, i, len(row), n)
		}
		out[i] = make([]float64, n)
		for j, v := range row {
			if v == nil {
				return nil, fmt.Errorf("%w: %s[%d][%d] is null (unroutable pair)", ErrMalformedResponse, name, i, j)
			}
			out[i][j] = *v
		}
	}

	return out, nil
}

func requestOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *ConnectivityError
	var ae *APIError
	switch {
	case errors.As(err, &ce):
		return "connectivity"
	case errors.As(err, &ae):
		return "api_error"
	default:
		return "malformed"
	}
}
