package api

import (
	"net/http"

	"github.com/artpar/workermeta/internal/core/converter"
	"github.com/artpar/workermeta/internal/core/history"
	"github.com/artpar/workermeta/internal/shell/api/openapi"
)

// newSpecGenerator registers every route served by Handler.Routes.
func newSpecGenerator(version string) *openapi.Generator {
	opts := []openapi.Option{}
	if version != "" {
		opts = append(opts, openapi.WithVersion(version))
	}
	g := openapi.NewGenerator(opts...)

	g.RegisterOperation(openapi.OperationInfo{
		Method:      http.MethodGet,
		Path:        "/health",
		OperationID: "health",
		Summary:     "Service health",
		Tag:         "Health",
		Response:    HealthResponse{},
	})
	g.RegisterOperation(openapi.OperationInfo{
		Method:      http.MethodPost,
		Path:        "/api/v1/convert",
		OperationID: "convert",
		Summary:     "Convert a worker config into deployment metadata",
		Tag:         "Conversions",
		Request:     ConvertRequest{},
		Response:    converter.Result{},
		Query: []openapi.QueryParam{
			{Name: "strict", Type: "boolean", Description: "Reject configs that fail validation"},
		},
		Errors: map[int]string{
			http.StatusBadRequest:          "Malformed request or config",
			http.StatusUnprocessableEntity: "Config failed validation",
		},
	})
	g.RegisterOperation(openapi.OperationInfo{
		Method:      http.MethodGet,
		Path:        "/api/v1/conversions",
		OperationID: "listConversions",
		Summary:     "List recorded conversions, newest first",
		Tag:         "History",
		Response:    ConversionListResponse{},
		Query: []openapi.QueryParam{
			{Name: "script", Type: "string", Description: "Only conversions of this script"},
			{Name: "limit", Type: "integer"},
			{Name: "offset", Type: "integer"},
		},
		Errors: map[int]string{
			http.StatusServiceUnavailable: "History is disabled",
		},
	})
	g.RegisterOperation(openapi.OperationInfo{
		Method:      http.MethodGet,
		Path:        "/api/v1/conversions/{id}",
		OperationID: "getConversion",
		Summary:     "Get a recorded conversion",
		Tag:         "History",
		Response:    history.Conversion{},
		Errors: map[int]string{
			http.StatusNotFound:           "Conversion not found",
			http.StatusServiceUnavailable: "History is disabled",
		},
	})
	g.RegisterOperation(openapi.OperationInfo{
		Method:      http.MethodGet,
		Path:        "/api/v1/scripts/{name}/migration-tag",
		OperationID: "getMigrationTag",
		Summary:     "Last migration tag recorded for a script",
		Tag:         "History",
		Response:    MigrationTagResponse{},
		Errors: map[int]string{
			http.StatusNotFound:           "No tag recorded",
			http.StatusServiceUnavailable: "History is disabled",
		},
	})
	g.RegisterOperation(openapi.OperationInfo{
		Method:      http.MethodGet,
		Path:        "/api/v1/openapi.json",
		OperationID: "getOpenAPI",
		Summary:     "This document",
		Tag:         "Meta",
	})

	return g
}
