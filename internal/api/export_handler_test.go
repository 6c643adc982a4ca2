package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	exportpkg "github.com/flipdot/flipdot-studio/internal/export"
	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/flipdot/flipdot-studio/internal/metrics"
)

func TestExport_Stateless(t *testing.T) {
	env := newTestEnv(t)
	dims := flipdot.Dimensions{Rows: 4, Columns: 4}
	a := flipdot.NewDots(dims)
	a[0][0] = true
	b := flipdot.NewDots(dims)

	rr := env.do(t, http.MethodPost, "/export", exportpkg.EncodeRequest{
		Name:            "Blink / Test",
		Frames:          [][][]bool{a, b},
		FrameDurationMs: 250,
	})
	expectStatus(t, rr, http.StatusOK)

	disposition := rr.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="blink-_-test-`) || !strings.HasSuffix(disposition, `.json"`) {
		t.Errorf("Content-Disposition = %q", disposition)
	}

	var doc exportpkg.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("body is not a Lottie document: %v", err)
	}
	if doc.FrameRate != 4 || doc.OutPoint != 2 {
		t.Errorf("fr = %v, op = %v", doc.FrameRate, doc.OutPoint)
	}
	if len(doc.Layers) != dims.Cells()+1 {
		t.Errorf("layers = %d, want %d", len(doc.Layers), dims.Cells()+1)
	}

	if got := testutil.ToFloat64(env.cfg.Metrics.Exports.WithLabelValues("api", metrics.ResultOK)); got != 1 {
		t.Errorf("exports_total{api,ok} = %v, want 1", got)
	}
}

func TestExport_StatelessErrors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/export", exportpkg.EncodeRequest{})
	expectErrorCode(t, rr, http.StatusBadRequest, "BAD_REQUEST")

	ragged := [][][]bool{
		flipdot.NewDots(flipdot.Dimensions{Rows: 4, Columns: 4}),
		flipdot.NewDots(flipdot.Dimensions{Rows: 5, Columns: 4}),
	}
	rr = env.do(t, http.MethodPost, "/export", exportpkg.EncodeRequest{Frames: ragged})
	expectErrorCode(t, rr, http.StatusUnprocessableEntity, "UNPROCESSABLE")

	if got := testutil.ToFloat64(env.cfg.Metrics.Exports.WithLabelValues("api", metrics.ResultInvalid)); got != 2 {
		t.Errorf("exports_total{api,invalid} = %v, want 2", got)
	}
}

func TestDownloadLottie(t *testing.T) {
	env := newTestEnv(t)
	p := createTestProject(t, env, CreateProjectRequest{Name: "wave"})

	rr := env.do(t, http.MethodGet, "/projects/"+p.ID+"/lottie", nil)
	expectStatus(t, rr, http.StatusOK)

	var doc exportpkg.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("body is not a Lottie document: %v", err)
	}
	if doc.Name != "wave" || len(doc.Layers) != 37 {
		t.Errorf("nm = %q, layers = %d", doc.Name, len(doc.Layers))
	}

	rr = env.do(t, http.MethodGet, "/projects/missing/lottie", nil)
	expectErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestExportProject_WritesAndRecords(t *testing.T) {
	env := newTestEnv(t)
	p := createTestProject(t, env, CreateProjectRequest{Name: "wave"})
	outDir := t.TempDir()

	rr := env.do(t, http.MethodPost, "/projects/"+p.ID+"/export", exportpkg.ProjectExportRequest{OutputDir: outDir})
	expectStatus(t, rr, http.StatusOK)

	var resp exportpkg.ExportResponse
	decodeBody(t, rr, &resp)
	if resp.Status != "ok" || resp.Format != exportpkg.FormatLottie || resp.LayerCount != 37 {
		t.Errorf("response = %+v", resp)
	}
	if filepath.Dir(resp.OutputPath) != outDir {
		t.Errorf("output_path = %q, want inside %q", resp.OutputPath, outDir)
	}
	data, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if len(data) != resp.Bytes {
		t.Errorf("file has %d bytes, response says %d", len(data), resp.Bytes)
	}

	rr = env.do(t, http.MethodGet, "/projects/"+p.ID+"/exports", nil)
	expectStatus(t, rr, http.StatusOK)
	var exports ExportsResponse
	decodeBody(t, rr, &exports)
	if len(exports.Exports) != 1 || exports.Exports[0].ID != resp.ExportID {
		t.Errorf("exports = %+v", exports.Exports)
	}
}

func TestExportProject_DefaultDir(t *testing.T) {
	env := newTestEnv(t)
	p := createTestProject(t, env, CreateProjectRequest{Name: "wave"})

	rr := env.do(t, http.MethodPost, "/projects/"+p.ID+"/export", nil)
	expectStatus(t, rr, http.StatusOK)

	var resp exportpkg.ExportResponse
	decodeBody(t, rr, &resp)
	if filepath.Dir(resp.OutputPath) != env.cfg.ExportDir {
		t.Errorf("output_path = %q, want inside %q", resp.OutputPath, env.cfg.ExportDir)
	}
}

func TestExportProject_RejectsTraversal(t *testing.T) {
	env := newTestEnv(t)
	p := createTestProject(t, env, CreateProjectRequest{Name: "wave"})

	rr := env.do(t, http.MethodPost, "/projects/"+p.ID+"/export", exportpkg.ProjectExportRequest{OutputDir: "/tmp/../etc"})
	expectErrorCode(t, rr, http.StatusBadRequest, "BAD_REQUEST")
}
