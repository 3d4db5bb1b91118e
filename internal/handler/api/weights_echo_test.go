package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	icache "EventWeights/internal/service/cache"
	"EventWeights/internal/services/features"
	"EventWeights/internal/snapshot"
	"EventWeights/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func testInput() snapshot.Input {
	prior := target.AddDate(0, 0, -7)
	t1 := decimal.NewNullDecimal(decimal.RequireFromString("0.125"))
	return snapshot.Input{
		Events: []models.EventDefinition{
			{ID: 20, OccurrenceCount: 3},
			{ID: 10, OccurrenceCount: 1},
		},
		Occurrences: []models.Occurrence{
			{EventID: 20, Time: prior.Add(-2 * time.Hour), Importance: 1},
			{EventID: 20, Time: target.Add(-2 * time.Hour), Importance: 1},
		},
		Rates: map[models.Series][]models.RateRow{
			{InstrumentID: 1, Granularity: models.Hourly}: {
				{Date: prior, T1: t1},
			},
		},
	}
}

func setup(t *testing.T, loaded bool) (*echo.Echo, *WeightsEchoHandler, *snapshot.Holder) {
	t.Helper()
	holder := snapshot.NewHolder()
	if loaded {
		holder.Store(snapshot.Build(testInput()))
	}
	calc := usecase.NewWeightCalculator(holder, domrepo.NewInstruments(nil), 0, nil, nil)
	h := NewWeightsEchoHandler(nil, calc, "1.0.0")
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h, holder
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestValues(t *testing.T) {
	e, _, _ := setup(t, true)

	for _, date := range []string{"2024-06-10T12:00:00", "2024-10-06%2012:00:00"} {
		rec := get(e, "/values?pair=1&day=0&date="+date)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got map[string]float64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, map[string]float64{"20_1_0_2": 0.125, "20_1_1_2": -0.001}, got, date)
	}
}

func TestValues_DefaultsAndEmpty(t *testing.T) {
	e, _, _ := setup(t, true)

	rec := get(e, "/values?date=2000-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestValues_PairSelection(t *testing.T) {
	e, _, _ := setup(t, true)

	cases := map[string]float64{
		"/values?date=2024-06-10T12:00:00":         -0.001, // pair omitted: EUR/USD
		"/values?pair=1&date=2024-06-10T12:00:00":  -0.001,
		"/values?pair=0&date=2024-06-10T12:00:00":  -1, // unknown pair: EUR/USD series, scale 1
		"/values?pair=99&date=2024-06-10T12:00:00": -1,
	}
	for url, want := range cases {
		rec := get(e, url)
		require.Equal(t, http.StatusOK, rec.Code, url)

		var got map[string]float64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, map[string]float64{"20_1_0_2": 0.125, "20_1_1_2": want}, got, url)
	}
}

func TestValues_BadRequests(t *testing.T) {
	e, _, _ := setup(t, true)

	for _, url := range []string{
		"/values?date=yesterday",
		"/values?pair=1",
		"/values?pair=abc&date=2024-06-10",
	} {
		rec := get(e, url)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}

	rec := get(e, "/values?date=10/06/2024")
	var body struct {
		Status int `json:"status"`
		Data   []struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ERR_INVALID_DATE", body.Data[0].Code)
	assert.Equal(t, "date", body.Data[0].Field)
}

func TestValues_NoSnapshot(t *testing.T) {
	e, _, _ := setup(t, false)

	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/values?date=2024-06-10").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/weights").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/new_weights?code=1_0_0").Code)
}

func TestValues_Cache(t *testing.T) {
	e, h, holder := setup(t, true)
	c := icache.NewTTLCache(100)
	h.SetCache(c, time.Minute)

	first := get(e, "/values?date=2024-06-10T12:00:00")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, c.Len())

	second := get(e, "/values?date=2024-06-10T12:00:00")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, c.Len())

	holder.Store(snapshot.Build(testInput()))
	get(e, "/values?date=2024-06-10T12:00:00")
	assert.Equal(t, 2, c.Len(), "new snapshot version gets its own entry")
}

func TestWeights(t *testing.T) {
	e, _, holder := setup(t, true)

	rec := get(e, "/weights")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, features.CodeStrings(features.CodeSpace(holder.Load().Events())), got)
	assert.Len(t, got, 2+2+50)
	assert.Equal(t, "10_0_0", got[0])
}

func TestNewWeights(t *testing.T) {
	e, _, _ := setup(t, true)

	rec := get(e, "/new_weights?code=20_1_1_11")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"20_1_1_12"}, got)

	rec = get(e, "/new_weights?code=10_0_1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 52)
	assert.Equal(t, "20_1_0", got[0])
	assert.Equal(t, "20_1_0_-12", got[1])

	for _, bad := range []string{"1_2", "a_b_c", "1_0_0_x"} {
		assert.Equal(t, http.StatusBadRequest, get(e, "/new_weights?code="+bad).Code, bad)
	}
	assert.Equal(t, http.StatusBadRequest, get(e, "/new_weights").Code)
}

func TestMetadata(t *testing.T) {
	e, h, _ := setup(t, true)

	rec := get(e, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	var info models.ServiceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "ok", info.Status)
	assert.Equal(t, ServiceName, info.Name)
	assert.Equal(t, "1.0.0", info.Version)
	require.NotNil(t, info.Snapshot)
	assert.Equal(t, 54, info.Snapshot.Codes)

	h.SetHealth(func(context.Context) error { return errors.New("table vlad_investing_calendar inaccessible") })
	rec = get(e, "/")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "error", info.Status)
	assert.Contains(t, info.Error, "vlad_investing_calendar")
}
