package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-circuit-service/internal/adapters/distance"
	"mission-circuit-service/internal/api/dto"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/services"
)

type fakeService struct {
	result   *services.GenerationResult
	circuits []*domain.Circuit
	tasks    []*domain.Task
	err      error
	gotID    int64
}

func (f *fakeService) GenerateCircuits(ctx context.Context, missionID int64) (*services.GenerationResult, error) {
	f.gotID = missionID
	return f.result, f.err
}

func (f *fakeService) ListCircuits(ctx context.Context, missionID int64) ([]*domain.Circuit, error) {
	f.gotID = missionID
	return f.circuits, f.err
}

func (f *fakeService) ListTasks(ctx context.Context, missionID int64) ([]*domain.Task, error) {
	f.gotID = missionID
	return f.tasks, f.err
}

func sampleCircuit() *domain.Circuit {
	return &domain.Circuit{
		CircuitID:       7,
		MissionID:       42,
		DepartureDate:   time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		DepartureSiteID: 1,
		ArrivalSiteID:   4,
		Segments: []domain.RouteSegment{
			{RouteID: 1, CircuitID: 7, DepartureSiteID: 1, ArrivalSiteID: 3, DistanceKm: 2, Order: 1},
			{RouteID: 2, CircuitID: 7, DepartureSiteID: 3, ArrivalSiteID: 4, DistanceKm: 1.5, Order: 2},
		},
	}
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGenerateCircuitsOK(t *testing.T) {
	svc := &fakeService{result: &services.GenerationResult{
		Circuit:             sampleCircuit(),
		Order:               []int{0, 2, 3},
		FirstStopDesignated: true,
		FirstTaskID:         11,
	}}
	h := NewRouter(svc, nil)

	rec := serve(t, h, http.MethodPost, "/api/missions/42/generate-circuits")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, int64(42), svc.gotID)

	var body dto.GenerateCircuitsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.True(t, body.FirstStopDesignated)
	assert.Equal(t, int64(11), body.FirstTaskID)
	assert.Equal(t, int64(7), body.Circuit.CircuitID)
	assert.Equal(t, int64(4), body.Circuit.ArrivalSiteID)
	assert.InDelta(t, 3.5, body.Circuit.TotalDistanceKm, 1e-9)
	require.Len(t, body.Circuit.Routes, 2)
	assert.Equal(t, 2, body.Circuit.Routes[1].Order)
}

func TestGenerateCircuitsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"mission not found", fmt.Errorf("generate circuits: %w", services.ErrMissionNotFound), http.StatusNotFound, "mission_not_found"},
		{"no tasks", fmt.Errorf("generate circuits: %w", services.ErrNoTasks), http.StatusNotFound, "no_tasks"},
		{
			"matrix unavailable",
			fmt.Errorf("plan: %w: %w", services.ErrMatrixUnavailable, &distance.APIError{StatusCode: 403, Body: "forbidden"}),
			http.StatusBadGateway,
			"matrix_unavailable",
		},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(&fakeService{err: tc.err}, nil)

			rec := serve(t, h, http.MethodPost, "/api/missions/1/generate-circuits")
			assert.Equal(t, tc.status, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, tc.reason, body.Reason)
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "disk on fire")
		})
	}
}

func TestGenerateCircuitsBadID(t *testing.T) {
	h := NewRouter(&fakeService{}, nil)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := serve(t, h, http.MethodPost, "/api/missions/"+id+"/generate-circuits")
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		assert.Equal(t, "invalid_mission_id", decodeError(t, rec).Reason)
	}
}

func TestGenerateCircuitsMethodNotAllowed(t *testing.T) {
	h := NewRouter(&fakeService{}, nil)

	rec := serve(t, h, http.MethodGet, "/api/missions/1/generate-circuits")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListCircuits(t *testing.T) {
	svc := &fakeService{circuits: []*domain.Circuit{sampleCircuit()}}
	h := NewRouter(svc, nil)

	rec := serve(t, h, http.MethodGet, "/api/missions/42/circuits")
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.ListCircuitsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.MissionID)
	require.Len(t, body.Circuits, 1)
	assert.Len(t, body.Circuits[0].Routes, 2)
}

func TestListCircuitsEmptyIsArray(t *testing.T) {
	h := NewRouter(&fakeService{}, nil)

	rec := serve(t, h, http.MethodGet, "/api/missions/42/circuits")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"circuits":[]`)
}

func TestListTasks(t *testing.T) {
	svc := &fakeService{tasks: []*domain.Task{
		{TaskID: 11, SiteID: 1, IsFirst: true, Site: &domain.Site{SiteID: 1, Name: "Depot", Coordinates: domain.Coordinates{Lon: 2.35, Lat: 48.85}}},
		{TaskID: 12, SiteID: 2, Site: &domain.Site{SiteID: 2, Name: "North"}},
	}}
	h := NewRouter(svc, nil)

	rec := serve(t, h, http.MethodGet, "/api/missions/5/tasks")
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.ListTasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tasks, 2)
	assert.True(t, body.Tasks[0].IsFirst)
	assert.Equal(t, "Depot", body.Tasks[0].SiteName)
	assert.InDelta(t, 48.85, body.Tasks[0].Lat, 1e-9)

	rec = serve(t, NewRouter(&fakeService{err: services.ErrMissionNotFound}, nil), http.MethodGet, "/api/missions/5/tasks")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := NewRouter(&fakeService{}, nil)

	rec := serve(t, h, http.MethodGet, "/health")
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	rec := serve(t, NewRouter(&fakeService{}, nil), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(t, NewRouter(&fakeService{}, failingPinger{}), http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, NewRouter(&fakeService{}, nil), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}
