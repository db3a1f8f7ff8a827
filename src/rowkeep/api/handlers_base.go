package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/common/version"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// handleRoot returns API discovery information
// @Summary      API discovery
// @Description  Returns the API name, version and entry points
// @Tags         System
// @Produce      json
// @Success      200  {object}  APIInfo
// @Router       / [get]
func (a *API) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, APIInfo{
		Name:        "rowkeep",
		Description: "Schema-driven table repositories",
		Version:     versionInfo.Version,
		APIVersions: []string{"v1"},
		AuthEnabled: a.AuthEnabled(),
		Endpoints: APIInfoEndpoints{
			Health:  "/v1/health",
			Version: "/v1/version",
			Tables:  "/v1/tables",
			Docs:    "/swagger/index.html",
		},
	})
}

// handleHealth returns the current health status of the server
// @Summary      Health check
// @Description  Reports server and database health
// @Tags         System
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /v1/health [get]
func (a *API) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if p, ok := a.exec.(pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := p.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Database = errors.ErrDatabaseConnection.WithCause(err).Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// handleVersion returns version and build information for the server
// @Summary      Version
// @Description  Returns version and build information
// @Tags         System
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /v1/version [get]
func (a *API) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Version:        versionInfo.Version,
		ReleaseVersion: versionInfo.ReleaseVersion,
		BuildDate:      versionInfo.BuildDate,
		GitCommit:      versionInfo.GitCommit,
		GoVersion:      version.GoVersion(),
	})
}
