package api

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// maxBodySize bounds insert and update payloads
const maxBodySize = 8 << 20

// queryFilter turns every query parameter into an equality condition.
// Parameters are applied in name order so the generated SQL is stable.
func queryFilter(c *gin.Context) repository.Filter {
	q := c.Request.URL.Query()
	names := lo.Keys(q)
	slices.Sort(names)

	filters := make([]repository.Filter, 0, len(names))
	for _, name := range names {
		filters = append(filters, repository.Eq(name, q.Get(name)))
	}
	return repository.And(filters...)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, errors.ErrValidationFailed.WithMessagef("invalid row id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

// decodeBody parses the request body as a row object or an array of rows
func decodeBody(c *gin.Context) ([]repository.Row, bool, error) {
	return repository.DecodeRows(io.LimitReader(c.Request.Body, maxBodySize))
}

// handleListRows lists rows, filtered by column equality
// @Summary      List rows
// @Description  Returns the rows of a table. Every query parameter is a column=value equality filter.
// @Tags         Rows
// @Produce      json
// @Param        table  path      string  true  "Table name"
// @Success      200    {object}  RowListResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /v1/tables/{table}/rows [get]
func (a *API) handleListRows(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}

	rows, err := repo.Where(c.Request.Context(), queryFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []repository.Row{}
	}

	c.JSON(http.StatusOK, RowListResponse{Count: len(rows), Rows: rows})
}

// handleGetRow returns one row by key
// @Summary      Get a row
// @Description  Returns the row with the given primary key
// @Tags         Rows
// @Produce      json
// @Param        table  path      string  true  "Table name"
// @Param        id     path      int     true  "Primary key"
// @Success      200    {object}  map[string]interface{}
// @Failure      404    {object}  ErrorResponse
// @Failure      409    {object}  ErrorResponse
// @Router       /v1/tables/{table}/rows/{id} [get]
func (a *API) handleGetRow(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	row, err := repo.Find(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

// handleInsertRows inserts one row or a batch of rows
// @Summary      Insert rows
// @Description  Inserts a single row object and returns it with its key, or inserts an array of rows in one statement and returns the count
// @Tags         Rows
// @Accept       json
// @Produce      json
// @Param        table    path      string  true  "Table name"
// @Param        request  body      object  true  "Row object or array of row objects"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/tables/{table}/rows [post]
func (a *API) handleInsertRows(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}

	rows, batch, err := decodeBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if batch {
		n, err := repo.InsertMany(c.Request.Context(), rows)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, AffectedResponse{Affected: n})
		return
	}

	row, err := repo.Insert(c.Request.Context(), rows[0])
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

// handleUpdateRow rewrites the mutable columns of a row
// @Summary      Update a row
// @Description  Writes every mutable column of the row with the given key. Immutable columns are ignored.
// @Tags         Rows
// @Accept       json
// @Produce      json
// @Param        table    path      string  true  "Table name"
// @Param        id       path      int     true  "Primary key"
// @Param        request  body      object  true  "Row object"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/tables/{table}/rows/{id} [put]
func (a *API) handleUpdateRow(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	rows, batch, err := decodeBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if batch {
		respondError(c, errors.ErrInvalidJSON.WithMessage("expected a single row object"))
		return
	}

	row := rows[0]
	row[repo.PrimaryKey()] = id

	n, err := repo.Update(c.Request.Context(), row)
	if err != nil {
		respondError(c, err)
		return
	}
	if n == 0 {
		respondError(c, errors.ErrRecordNotFound.WithMessagef("no %s row with %s %d", repo.Table(), repo.PrimaryKey(), id))
		return
	}

	updated, err := repo.Find(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// handleDeleteRow deletes a row by key
// @Summary      Delete a row
// @Description  Deletes the row with the given primary key
// @Tags         Rows
// @Produce      json
// @Param        table  path      string  true  "Table name"
// @Param        id     path      int     true  "Primary key"
// @Success      200    {object}  AffectedResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/tables/{table}/rows/{id} [delete]
func (a *API) handleDeleteRow(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := repo.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if n == 0 {
		respondError(c, errors.ErrRecordNotFound.WithMessagef("no %s row with %s %d", repo.Table(), repo.PrimaryKey(), id))
		return
	}

	c.JSON(http.StatusOK, AffectedResponse{Affected: n})
}

// handleDeleteRows deletes every row matching the query filter
// @Summary      Delete rows
// @Description  Deletes the rows matching the column=value query parameters. At least one filter is required.
// @Tags         Rows
// @Produce      json
// @Param        table  path      string  true  "Table name"
// @Success      200    {object}  AffectedResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/tables/{table}/rows [delete]
func (a *API) handleDeleteRows(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}

	n, err := repo.DeleteWhere(c.Request.Context(), queryFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AffectedResponse{Affected: n})
}

// handleExportRows dumps rows as SQL INSERT statements
// @Summary      Export rows
// @Description  Returns the matching rows as executable SQL INSERT statements with inlined, escaped values
// @Tags         Rows
// @Produce      plain
// @Param        table  path      string  true  "Table name"
// @Success      200    {string}  string
// @Failure      400    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /v1/tables/{table}/export [get]
func (a *API) handleExportRows(c *gin.Context) {
	repo, ok := a.tableRepo(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	n, err := repo.Export(c.Request.Context(), &buf, queryFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("X-Row-Count", strconv.Itoa(n))
	c.Header("Content-Disposition", `attachment; filename="`+repo.Table()+`.sql"`)
	c.Data(http.StatusOK, "application/sql; charset=utf-8", buf.Bytes())
}
