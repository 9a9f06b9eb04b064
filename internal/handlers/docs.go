package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Weather Pipeline API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Weather Pipeline API",
			"description": "Daily weather observation ingestion, deduplication, and yearly aggregation service",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Weather Pipeline Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Trigger ingestion",
					"description": "Load every station file from the configured data directory, skip already-loaded records, and recompute yearly statistics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Ingestion completed",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{"type": "object"},
								},
							},
						},
						"500": map[string]interface{}{
							"description": "Ingestion failed",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status":  map[string]string{"type": "string"},
											"message": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/weather": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get weather observations",
					"description": "Retrieve daily observations, optionally filtered by station and exact date",
					"parameters": []map[string]interface{}{
						{
							"name":        "weatherStation",
							"in":          "query",
							"description": "Filter by weather station ID",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "dateMMYY",
							"in":          "query",
							"description": "Filter by exact observation date (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"weather_data": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "object",
													"properties": map[string]interface{}{
														"rowId":          map[string]string{"type": "string"},
														"weatherStation": map[string]string{"type": "string"},
														"dateMMYY":       map[string]string{"type": "string", "format": "date"},
														"maxTemp":        map[string]string{"type": "integer"},
														"minTemp":        map[string]string{"type": "integer"},
														"precipitation":  map[string]string{"type": "integer"},
													},
												},
											},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/weather/stats": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get yearly weather statistics",
					"description": "Retrieve aggregated yearly statistics; at least one filter is required",
					"parameters": []map[string]interface{}{
						{
							"name":        "weatherStation",
							"in":          "query",
							"description": "Filter by weather station ID",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "year",
							"in":          "query",
							"description": "Filter by 4-digit year",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response; numeric fields are omitted when no group matched",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
											"data": map[string]interface{}{
												"type": "object",
												"properties": map[string]interface{}{
													"average_avgMxTemp": map[string]string{"type": "number"},
													"average_avgMnTemp": map[string]string{"type": "number"},
													"total_precipSum":   map[string]string{"type": "integer"},
												},
											},
										},
									},
								},
							},
						},
						"400": map[string]interface{}{
							"description": "Neither weatherStation nor year was provided",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status":  map[string]string{"type": "string"},
											"message": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
