package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weather-pipeline/internal/models"
	"weather-pipeline/internal/services"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

// WeatherHandler handles weather API endpoints
type WeatherHandler struct {
	weatherService *services.WeatherService
	pipeline       *services.PipelineService
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(
	weatherService *services.WeatherService,
	pipeline *services.PipelineService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weatherService,
		pipeline:       pipeline,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// StatusResponse is the envelope for error responses and for the stats
// endpoint. The status code is rendered as a string for compatibility with
// existing consumers of this API.
type StatusResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ObservationResponse is the wire shape of one daily observation.
type ObservationResponse struct {
	RowID          string `json:"rowId"`
	WeatherStation string `json:"weatherStation"`
	Date           string `json:"dateMMYY"`
	MaxTemp        int    `json:"maxTemp"`
	MinTemp        int    `json:"minTemp"`
	Precipitation  int    `json:"precipitation"`
}

// ObservationListResponse wraps the observation list.
type ObservationListResponse struct {
	WeatherData []ObservationResponse `json:"weather_data"`
}

// TriggerIngestion handles GET /. It runs the full ingest-then-aggregate
// pipeline synchronously and reports nothing on success.
func (h *WeatherHandler) TriggerIngestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/").Observe(duration.Seconds())
	}()

	result, err := h.pipeline.Run(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_INGEST_ERROR] Pipeline run failed", logging.Fields{}, err)
		h.metrics.RecordAPIError("pipeline_error", "/")
		h.sendError(w, r, "data ingestion failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info(ctx, "[API_INGEST_DONE] Pipeline run completed", logging.Fields{
		"inserted":   result.Ingestion.Inserted,
		"duplicates": result.Ingestion.Duplicates,
		"groups":     result.StatisticsGroups,
	})

	h.metrics.RecordAPIRequest("/", "GET", "200")
	h.sendJSON(w, struct{}{}, http.StatusOK)
}

// GetObservations handles GET /api/weather
func (h *WeatherHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/weather").Observe(duration.Seconds())
	}()

	stationID := r.URL.Query().Get("weatherStation")
	date := r.URL.Query().Get("dateMMYY")

	observations, err := h.weatherService.GetObservations(ctx, stationID, date)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_OBSERVATIONS_ERROR] Failed to get observations", logging.Fields{
			"station_id": stationID,
			"date":       date,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather")
		h.sendError(w, r, "failed to retrieve observations", http.StatusInternalServerError)
		return
	}

	response := ObservationListResponse{WeatherData: toObservationResponses(observations)}

	h.metrics.RecordAPIRequest("/api/weather", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetStatistics handles GET /api/weather/stats
func (h *WeatherHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/weather/stats").Observe(duration.Seconds())
	}()

	stationID := r.URL.Query().Get("weatherStation")
	year := r.URL.Query().Get("year")

	summary, err := h.weatherService.GetSummary(ctx, stationID, year)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSummaryRequest) {
			h.sendError(w, r, "at least one of weatherStation and year is required", http.StatusBadRequest)
			return
		}
		h.logger.Error(ctx, "[API_GET_STATISTICS_ERROR] Failed to get summary", logging.Fields{
			"station_id": stationID,
			"year":       year,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather/stats")
		h.sendError(w, r, "failed to retrieve statistics", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		Status: strconv.Itoa(http.StatusOK),
		Data:   summary,
	}

	h.metrics.RecordAPIRequest("/api/weather/stats", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *WeatherHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

func toObservationResponses(observations []*models.Observation) []ObservationResponse {
	// An empty result must serialize as [], not null.
	responses := make([]ObservationResponse, 0, len(observations))
	for _, o := range observations {
		responses = append(responses, ObservationResponse{
			RowID:          o.RowID(),
			WeatherStation: o.StationID,
			Date:           o.ObservationDate,
			MaxTemp:        o.MaxTemp,
			MinTemp:        o.MinTemp,
			Precipitation:  o.Precipitation,
		})
	}
	return responses
}

// sendJSON sends a JSON response
func (h *WeatherHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response in the {status, message} envelope
func (h *WeatherHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := StatusResponse{
		Status:  strconv.Itoa(statusCode),
		Message: message,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all weather API routes
func (h *WeatherHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.TriggerIngestion).Methods("GET")
	router.HandleFunc("/api/weather", h.GetObservations).Methods("GET")
	router.HandleFunc("/api/weather/stats", h.GetStatistics).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
