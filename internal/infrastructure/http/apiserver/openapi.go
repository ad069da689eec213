package apiserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the API description
type OpenAPIHandler struct {
	logger *zap.Logger
	spec   map[string]interface{}
}

// NewOpenAPIHandler parses the embedded OpenAPI document
func NewOpenAPIHandler(logger *zap.Logger) *OpenAPIHandler {
	h := &OpenAPIHandler{logger: logger}
	if err := yaml.Unmarshal(openAPISpec, &h.spec); err != nil {
		logger.Error("Failed to parse OpenAPI spec", zap.Error(err))
	}
	return h
}

// ServeOpenAPISpec serves the OpenAPI document as YAML
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

// ServeOpenAPIJSON serves the OpenAPI document as JSON with the server URL
// of the current request
func (h *OpenAPIHandler) ServeOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	if h.spec == nil {
		http.Error(w, "OpenAPI spec not available", http.StatusInternalServerError)
		return
	}

	doc := make(map[string]interface{}, len(h.spec)+1)
	for k, v := range h.spec {
		doc[k] = v
	}
	doc["servers"] = []map[string]string{{
		"url":         fmt.Sprintf("%s://%s/api/v1", getScheme(r), r.Host),
		"description": "Current server",
	}}

	body, err := json.Marshal(doc)
	if err != nil {
		h.logger.Error("Failed to encode OpenAPI spec", zap.Error(err))
		http.Error(w, "OpenAPI spec not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// getScheme determines the URL scheme (http/https) from the request
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	return "http"
}
