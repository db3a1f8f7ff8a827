package api

import (
	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

// ErrorResponse is the body of every error reply
type ErrorResponse = errors.Response

// APIInfo represents the root API discovery response
type APIInfo struct {
	Name        string           `json:"name" example:"rowkeep"`
	Description string           `json:"description" example:"Schema-driven table repositories"`
	Version     string           `json:"version" example:"1.0.0"`
	APIVersions []string         `json:"api_versions" example:"v1"`
	AuthEnabled bool             `json:"auth_enabled"`
	Endpoints   APIInfoEndpoints `json:"endpoints"`
}

// APIInfoEndpoints contains the available API endpoints
type APIInfoEndpoints struct {
	Health  string `json:"health" example:"/v1/health"`
	Version string `json:"version" example:"/v1/version"`
	Tables  string `json:"tables" example:"/v1/tables"`
	Docs    string `json:"docs" example:"/swagger/index.html"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Database  string `json:"database" example:"ok"`
	Timestamp string `json:"timestamp" example:"2026-01-15T10:30:00Z"`
}

// VersionResponse represents the version information response
type VersionResponse struct {
	Version        string `json:"version" example:"v1.0.0-4f9f297"`
	ReleaseVersion string `json:"release_version" example:"1.0.0"`
	BuildDate      string `json:"build_date" example:"2026-01-15T10:30:00Z"`
	GitCommit      string `json:"git_commit" example:"4f9f297"`
	GoVersion      string `json:"go_version" example:"go1.24"`
}

// TableListResponse lists the registered tables
type TableListResponse struct {
	Count  int      `json:"count" example:"2"`
	Tables []string `json:"tables"`
}

// TableResponse describes one table
type TableResponse struct {
	schema.Schema
	Rows int64 `json:"rows" example:"42"`
}

// RowListResponse is a list of rows
type RowListResponse struct {
	Count int              `json:"count" example:"1"`
	Rows  []repository.Row `json:"rows"`
}

// AffectedResponse reports how many rows a write touched
type AffectedResponse struct {
	Affected int64 `json:"affected" example:"1"`
}
