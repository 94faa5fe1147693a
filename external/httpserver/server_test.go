package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type staticTimeSource struct{ schedule prayer.Schedule }

func (s staticTimeSource) Fetch(context.Context, time.Time) (prayer.Schedule, error) {
	return s.schedule, nil
}

type mockRepository struct {
	broadcasts []repository.Broadcast
	err        error
	gotLimit   int
}

func (m *mockRepository) CreateBroadcast(context.Context, repository.CreateBroadcastInput) error {
	return nil
}

func (m *mockRepository) RecordTarget(context.Context, repository.BroadcastTarget) error {
	return nil
}

func (m *mockRepository) CompleteBroadcast(context.Context, repository.CompleteBroadcastInput) error {
	return nil
}

func (m *mockRepository) ListRecentBroadcasts(_ context.Context, limit int) ([]repository.Broadcast, error) {
	m.gotLimit = limit
	return m.broadcasts, m.err
}

var testNow = time.Date(2026, 10, 18, 13, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, loaded bool, repo *mockRepository) *httptest.Server {
	t.Helper()
	cache := prayer.NewDailyCache(staticTimeSource{schedule: prayer.Schedule{
		Times: map[prayer.Name]string{
			prayer.Fajr:    "04:31",
			prayer.Dhuhr:   "12:39",
			prayer.Asr:     "16:15",
			prayer.Maghrib: "19:14",
			prayer.Isha:    "20:30",
		},
		CalendarLabel: "الأحد 6 ربيع الآخر 1448",
	}}, nil)
	if loaded {
		_, err := cache.EnsureFresh(context.Background(), testNow)
		require.NoError(t, err)
	}
	s := New(":0", cache, fixedClock{now: testNow}, observability.NewMetrics("adhan_test"), repo)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, true, &mockRepository{})
	var body map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["schedule_loaded"])
	assert.Equal(t, "2026-10-18", body["schedule_date"])
}

func TestSchedule_ReturnsCachedDayAndNextPrayer(t *testing.T) {
	srv := newTestServer(t, true, &mockRepository{})
	var body scheduleResponse
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/schedule", &body))

	assert.Equal(t, "2026-10-18", body.Date)
	require.Len(t, body.Prayers, 5)
	assert.Equal(t, "fajr", body.Prayers[0].Name)
	require.NotNil(t, body.Next)
	assert.Equal(t, "asr", body.Next.Name)
	assert.Equal(t, "العصر", body.Next.ArabicName)
	assert.Equal(t, "16:15", body.Next.Time)
}

func TestSchedule_NotLoaded(t *testing.T) {
	srv := newTestServer(t, false, &mockRepository{})
	var body errorResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/schedule", &body))
	assert.Equal(t, "schedule_unavailable", body.Code)
}

func TestBroadcasts_ListsRecent(t *testing.T) {
	ended := testNow.Add(time.Minute)
	repo := &mockRepository{broadcasts: []repository.Broadcast{
		{ID: "b1", Trigger: "fajr", Status: repository.BroadcastStatusCompleted, StartedAt: testNow, EndedAt: &ended, TargetCount: 2, FinishedCount: 2},
	}}
	srv := newTestServer(t, true, repo)

	var body struct {
		Broadcasts []broadcastResponse `json:"broadcasts"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/broadcasts?limit=5", &body))
	assert.Equal(t, 5, repo.gotLimit)
	require.Len(t, body.Broadcasts, 1)
	assert.Equal(t, "completed", body.Broadcasts[0].Status)
	assert.Equal(t, 2, body.Broadcasts[0].FinishedCount)
}

func TestBroadcasts_InvalidLimit(t *testing.T) {
	srv := newTestServer(t, true, &mockRepository{})
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/broadcasts?limit=1000", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/broadcasts?limit=abc", nil))
}

func TestBroadcasts_RepositoryFailure(t *testing.T) {
	srv := newTestServer(t, true, &mockRepository{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/broadcasts", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, true, &mockRepository{})
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRun_DisabledWithoutAddress(t *testing.T) {
	s := New("", nil, nil, nil, nil)
	assert.NoError(t, s.Run(context.Background()))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cache := prayer.NewDailyCache(staticTimeSource{}, nil)
	s := New("127.0.0.1:0", cache, fixedClock{now: testNow}, observability.NewMetrics("adhan_test"), &mockRepository{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
