package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/flipdot/flipdot-studio/internal/db"
	"github.com/flipdot/flipdot-studio/internal/logging"
	"github.com/flipdot/flipdot-studio/internal/metrics"
	"github.com/flipdot/flipdot-studio/internal/studio"
)

const testToken = "test-token-0123456789"

type testEnv struct {
	cfg    ServerConfig
	router http.Handler
	svc    *studio.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	database, err := db.New(filepath.Join(dir, "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := studio.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), AuthTokenKey, testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	svc := studio.NewService(repo, nil)

	cfg := ServerConfig{
		ExportDir: filepath.Join(dir, "exports"),
		Studio:    svc,
		Config:    repo,
		Metrics:   metrics.New(),
		Logger:    logging.Discard(),
		StartTime: time.Now(),
		Version:   "test",
	}
	return &testEnv{cfg: cfg, router: NewRouter(cfg), svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal error: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	var req *http.Request
	if reader != nil {
		req = httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode body %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func expectErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rr, status)
	var resp ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Code != code {
		t.Errorf("error code = %q, want %q (%s)", resp.Code, code, resp.Error)
	}
}
