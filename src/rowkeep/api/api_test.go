package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bitswalk/rowkeep/src/rowkeep/auth"
	"github.com/bitswalk/rowkeep/src/rowkeep/db/migrations"
	"github.com/bitswalk/rowkeep/src/rowkeep/records"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

func setupTestRouter(t *testing.T, cfg Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := migrations.NewRunner(db, repository.SQLite).Run(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	reg := schema.NewRegistry()
	if err := records.Register(reg); err != nil {
		t.Fatalf("failed to register schemas: %v", err)
	}

	cfg.Registry = reg
	cfg.Executor = db
	a := New(cfg)
	t.Cleanup(a.Close)

	router := gin.New()
	a.RegisterRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestSystemEndpoints(t *testing.T) {
	router := setupTestRouter(t, Config{})

	w := do(t, router, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK || decode(t, w)["name"] != "rowkeep" {
		t.Fatalf("unexpected root response %d %s", w.Code, w.Body.String())
	}
	if _, err := uuid.Parse(w.Header().Get(RequestIDHeader)); err != nil {
		t.Fatalf("expected request id header, got %q", w.Header().Get(RequestIDHeader))
	}

	w = do(t, router, http.MethodGet, "/v1/health", "", "")
	if w.Code != http.StatusOK || decode(t, w)["status"] != "healthy" {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/v1/version", "", "")
	if w.Code != http.StatusOK || decode(t, w)["go_version"] == "" {
		t.Fatalf("unexpected version response %d %s", w.Code, w.Body.String())
	}
}

func TestTables(t *testing.T) {
	router := setupTestRouter(t, Config{})

	w := do(t, router, http.MethodGet, "/v1/tables", "", "")
	body := decode(t, w)
	if w.Code != http.StatusOK || body["count"] != float64(2) {
		t.Fatalf("unexpected tables response %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/v1/tables/tributes", "", "")
	body = decode(t, w)
	if w.Code != http.StatusOK || body["table"] != "tributes" || body["primary_key"] != "id" || body["rows"] != float64(0) {
		t.Fatalf("unexpected table response %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/v1/tables/nope", "", "")
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "schema.not_found" {
		t.Fatalf("expected 404 for unknown table, got %d %s", w.Code, w.Body.String())
	}
}

func TestRowsCRUD(t *testing.T) {
	router := setupTestRouter(t, Config{})
	base := "/v1/tables/spawn_condition_values/rows"

	w := do(t, router, http.MethodPost, base, `{"value": 1, "zone": "O'Brien", "instance_id": 7}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("insert failed %d %s", w.Code, w.Body.String())
	}
	if id := decode(t, w)["id"]; id != float64(1) {
		t.Fatalf("expected id 1, got %v", id)
	}

	w = do(t, router, http.MethodPost, base, `[{"value": 2, "zone": "qeynos"}, {"value": 3, "zone": "qeynos"}]`, "")
	if w.Code != http.StatusCreated || decode(t, w)["affected"] != float64(2) {
		t.Fatalf("batch insert failed %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, base+"?zone=O%27Brien", "", "")
	if w.Code != http.StatusOK || decode(t, w)["count"] != float64(1) {
		t.Fatalf("filtered list failed %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, base+"?zone=x%27%20OR%20%271%27%3D%271", "", "")
	if w.Code != http.StatusOK || decode(t, w)["count"] != float64(0) {
		t.Fatalf("filter values must not be interpreted as SQL: %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, base+"/1", `{"value": 9, "zone": "elsewhere", "instance_id": 99}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("update failed %d %s", w.Code, w.Body.String())
	}
	row := decode(t, w)
	if row["value"] != float64(9) || row["zone"] != "O'Brien" || row["instance_id"] != float64(7) {
		t.Fatalf("update should only touch mutable columns, got %v", row)
	}

	w = do(t, router, http.MethodGet, base+"/1", "", "")
	if w.Code != http.StatusOK || decode(t, w)["value"] != float64(9) {
		t.Fatalf("get failed %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodDelete, base+"/1", "", "")
	if w.Code != http.StatusOK || decode(t, w)["affected"] != float64(1) {
		t.Fatalf("delete failed %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, base+"/1", "", "")
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "repository.not_found" {
		t.Fatalf("expected 404 after delete, got %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodDelete, base+"?zone=qeynos", "", "")
	if w.Code != http.StatusOK || decode(t, w)["affected"] != float64(2) {
		t.Fatalf("filtered delete failed %d %s", w.Code, w.Body.String())
	}
}

func TestRowsErrors(t *testing.T) {
	router := setupTestRouter(t, Config{})
	base := "/v1/tables/tributes/rows"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown filter column", http.MethodGet, base + "?bogus=1", "", http.StatusBadRequest, "repository.invalid_filter"},
		{"bad id", http.MethodGet, base + "/abc", "", http.StatusBadRequest, "validation.validation_failed"},
		{"malformed json", http.MethodPost, base, `{"name":`, http.StatusBadRequest, "validation.invalid_json"},
		{"scalar body", http.MethodPost, base, `42`, http.StatusBadRequest, "validation.invalid_json"},
		{"unknown column", http.MethodPost, base, `{"nope": 1}`, http.StatusBadRequest, "repository.invalid_record"},
		{"smallint overflow", http.MethodPost, base, `{"isguild": 300}`, http.StatusBadRequest, "repository.invalid_record"},
		{"delete without filter", http.MethodDelete, base, "", http.StatusBadRequest, "repository.empty_filter"},
		{"update missing", http.MethodPut, base + "/42", `{"name": "x"}`, http.StatusNotFound, "repository.not_found"},
		{"delete missing", http.MethodDelete, base + "/42", "", http.StatusNotFound, "repository.not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body, "")
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d %s", tt.status, w.Code, w.Body.String())
			}
			if got := decode(t, w)["error"]; got != tt.code {
				t.Fatalf("expected error %s, got %v", tt.code, got)
			}
		})
	}
}

func TestExport(t *testing.T) {
	router := setupTestRouter(t, Config{})

	w := do(t, router, http.MethodPost, "/v1/tables/tributes/rows", `{"unknown": 5, "name": "Tribute of O'Kane", "descr": "d", "isguild": 1}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("insert failed %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/v1/tables/tributes/export", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export failed %d %s", w.Code, w.Body.String())
	}
	out := w.Body.String()
	if !strings.HasPrefix(out, "INSERT INTO tributes") || !strings.Contains(out, "'Tribute of O''Kane'") {
		t.Fatalf("unexpected export %q", out)
	}
	if w.Header().Get("X-Row-Count") != "1" {
		t.Fatalf("expected row count header, got %q", w.Header().Get("X-Row-Count"))
	}
}

func TestWriteRoutesRequireScope(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret"})
	router := setupTestRouter(t, Config{Tokens: tokens})
	base := "/v1/tables/spawn_condition_values/rows"
	body := `{"value": 1, "zone": "qeynos"}`

	reader, _ := tokens.Issue("viewer", []string{auth.ScopeRead}, time.Hour)
	writer, _ := tokens.Issue("loader", []string{auth.ScopeWrite}, time.Hour)

	if w := do(t, router, http.MethodPost, base, body, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, base, body, "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, base, body, reader); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with read token, got %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, base, body, writer); w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with write token, got %d %s", w.Code, w.Body.String())
	}

	// Reads stay open
	if w := do(t, router, http.MethodGet, base, "", ""); w.Code != http.StatusOK {
		t.Fatalf("expected reads without token, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter(t, Config{RateLimit: RateLimitConfig{Enabled: true, RequestsPerMin: 2}})

	for i := 0; i < 2; i++ {
		if w := do(t, router, http.MethodGet, "/v1/tables", "", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, w.Code)
		}
	}

	w := do(t, router, http.MethodGet, "/v1/tables", "", "")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	// System endpoints are not limited
	if w := do(t, router, http.MethodGet, "/v1/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", w.Code)
	}
}
