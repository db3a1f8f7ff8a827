package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// handleListTables lists the registered tables
// @Summary      List tables
// @Description  Returns the names of every registered table
// @Tags         Tables
// @Produce      json
// @Success      200  {object}  TableListResponse
// @Router       /v1/tables [get]
func (a *API) handleListTables(c *gin.Context) {
	tables := a.registry.Tables()
	c.JSON(http.StatusOK, TableListResponse{Count: len(tables), Tables: tables})
}

// handleGetTable describes a table and counts its rows
// @Summary      Describe a table
// @Description  Returns the schema of a table and its row count
// @Tags         Tables
// @Produce      json
// @Param        table  path      string  true  "Table name"
// @Success      200    {object}  TableResponse
// @Failure      404    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /v1/tables/{table} [get]
func (a *API) handleGetTable(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}

	n, err := repo.Count(c.Request.Context(), repository.Filter{})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TableResponse{Schema: repo.Schema(), Rows: n})
}

// tableRepo resolves the :table path parameter, replying 404 on a miss
func (a *API) tableRepo(c *gin.Context) (*repository.Repository[repository.Row], bool) {
	s, err := a.registry.Lookup(c.Param("table"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	repo, err := a.rows(s)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return repo, true
}
