package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bitswalk/rowkeep/src/rowkeep/auth"
)

// RegisterRoutes configures all API routes on the given router
func (a *API) RegisterRoutes(router *gin.Engine) {
	var readLimit, writeLimit int
	if a.rateLimiter != nil {
		readLimit = a.limits.RequestsPerMin
		writeLimit = a.limits.WriteRequestsPerMin
	}

	router.Use(RequestID())

	// Root endpoint - API discovery
	router.GET("/", a.handleRoot)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", a.handleHealth)
		v1.GET("/version", a.handleVersion)

		// Table routes - read operations
		tables := v1.Group("/tables")
		tables.Use(a.rateLimit("read", readLimit))
		{
			tables.GET("", a.handleListTables)
			tables.GET("/:table", a.handleGetTable)
			tables.GET("/:table/rows", a.handleListRows)
			tables.GET("/:table/rows/:id", a.handleGetRow)
			tables.GET("/:table/export", a.handleExportRows)
		}

		// Table routes - write operations (requires write scope when auth is enabled)
		tablesWrite := v1.Group("/tables")
		tablesWrite.Use(a.scopeRequired(auth.ScopeWrite), a.rateLimit("write", writeLimit))
		{
			tablesWrite.POST("/:table/rows", a.handleInsertRows)
			tablesWrite.PUT("/:table/rows/:id", a.handleUpdateRow)
			tablesWrite.DELETE("/:table/rows/:id", a.handleDeleteRow)
			tablesWrite.DELETE("/:table/rows", a.handleDeleteRows)
		}
	}
}
