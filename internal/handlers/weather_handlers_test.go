package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-pipeline/internal/repository"
	"weather-pipeline/internal/services"
	"weather-pipeline/pkg/database"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	logger := logging.NewStructuredLogger("handlers-test", "test", logging.ErrorLevel)
	collector := metrics.NewCollectorWith("handlers_test", prometheus.NewRegistry())
	clock := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))

	db, err := database.New(&database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	repo := repository.NewWeatherRepository(db, logger, collector)
	dataDir := t.TempDir()

	ingestion := services.NewIngestionService(repo, logger, collector, clock, ".txt")
	statistics := services.NewStatisticsService(repo, logger, collector, clock)
	weather := services.NewWeatherService(repo, logger, collector)
	pipeline := services.NewPipelineService(ingestion, statistics, logger, clock, dataDir)

	handler := NewWeatherHandler(weather, pipeline, logger, collector)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, dataDir
}

func writeStationFile(t *testing.T, dataDir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o600))
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestTriggerIngestion(t *testing.T) {
	server, dataDir := newTestServer(t)

	writeStationFile(t, dataDir, "USC00110072.txt",
		"19850101\t289\t178\t25\n19850102\t300\t200\t0\n")

	var body map[string]interface{}
	status := getJSON(t, server.URL+"/", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body, "success response is an empty object")

	// The trigger must leave both observations and statistics queryable.
	var list ObservationListResponse
	status = getJSON(t, server.URL+"/api/weather?weatherStation=USC00110072", &list)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, list.WeatherData, 2)
}

func TestTriggerIngestion_MissingDataDir(t *testing.T) {
	server, dataDir := newTestServer(t)
	require.NoError(t, os.Remove(dataDir))

	var body StatusResponse
	status := getJSON(t, server.URL+"/", &body)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "500", body.Status)
	assert.NotEmpty(t, body.Message)
}

func TestGetObservations(t *testing.T) {
	server, dataDir := newTestServer(t)

	writeStationFile(t, dataDir, "STA.txt",
		"20210601\t10\t1\t0\n20210602\t20\t2\t5\n")
	writeStationFile(t, dataDir, "STB.txt", "20210601\t30\t3\t9\n")

	var trigger map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/", &trigger))

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filters returns all", "", 3},
		{"station filter", "?weatherStation=STA", 2},
		{"date filter", "?dateMMYY=2021-06-01", 2},
		{"both filters combine with AND", "?weatherStation=STA&dateMMYY=2021-06-01", 1},
		{"no match is empty list", "?weatherStation=NOPE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list ObservationListResponse
			status := getJSON(t, server.URL+"/api/weather"+tt.query, &list)
			assert.Equal(t, http.StatusOK, status)
			require.NotNil(t, list.WeatherData)
			assert.Len(t, list.WeatherData, tt.want)
		})
	}
}

func TestGetObservations_ResponseShape(t *testing.T) {
	server, dataDir := newTestServer(t)

	writeStationFile(t, dataDir, "STA.txt", "20210601\t10\t1\t4\n")
	var trigger map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/", &trigger))

	resp, err := http.Get(server.URL + "/api/weather?weatherStation=STA")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string][]map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	rows, ok := raw["weather_data"]
	require.True(t, ok, "payload must use the weather_data key")
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "STA:2021-06-01", row["rowId"])
	assert.Equal(t, "STA", row["weatherStation"])
	assert.Equal(t, "2021-06-01", row["dateMMYY"])
	assert.Equal(t, float64(10), row["maxTemp"])
	assert.Equal(t, float64(1), row["minTemp"])
	assert.Equal(t, float64(4), row["precipitation"])
}

func TestGetStatistics(t *testing.T) {
	server, dataDir := newTestServer(t)

	writeStationFile(t, dataDir, "STA.txt",
		"20210101\t10\t0\t1\n20210102\t20\t5\t2\n20210103\t30\t10\t3\n")
	var trigger map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/", &trigger))

	var body StatusResponse
	status := getJSON(t, server.URL+"/api/weather/stats?weatherStation=STA&year=2021", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "200", body.Status)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 20.0, data["average_avgMxTemp"], 1e-9)
	assert.InDelta(t, 5.0, data["average_avgMnTemp"], 1e-9)
	assert.InDelta(t, 6.0, data["total_precipSum"], 1e-9)
}

func TestGetStatistics_NoFilters(t *testing.T) {
	server, _ := newTestServer(t)

	var body StatusResponse
	status := getJSON(t, server.URL+"/api/weather/stats", &body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "400", body.Status)
	assert.NotEmpty(t, body.Message)
}

func TestGetStatistics_NoMatchOmitsFields(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/weather/stats?weatherStation=NOPE&year=1999")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	data, ok := raw["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, data, "average_avgMxTemp")
	assert.NotContains(t, data, "average_avgMnTemp")
	assert.NotContains(t, data, "total_precipSum")
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, server.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
