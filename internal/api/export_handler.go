package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flipdot/flipdot-studio/internal/export"
	"github.com/flipdot/flipdot-studio/internal/metrics"
	"github.com/flipdot/flipdot-studio/internal/studio"
)

func observeExport(cfg ServerConfig, source, result string, start time.Time, size int) {
	if cfg.Metrics != nil {
		cfg.Metrics.ObserveExport(source, result, time.Since(start), size)
	}
}

func writeEncodeError(w http.ResponseWriter, err error) {
	var dimErr *export.DimensionError
	switch {
	case errors.Is(err, export.ErrEmptyInput):
		WriteError(w, http.StatusBadRequest, "frames must not be empty", "BAD_REQUEST")
	case errors.As(err, &dimErr):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "UNPROCESSABLE")
	default:
		WriteError(w, http.StatusInternalServerError, "failed to encode animation", "INTERNAL_ERROR")
	}
}

func writeLottie(w http.ResponseWriter, name, document string) {
	filename := export.Filename(name, time.Now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(document))
}

// exportHandler encodes the frames in the request body without storing anything.
func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req export.EncodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		req.ApplyDefaults()

		opts := req.Options()
		opts.Name = export.SanitizeName(opts.Name, 120)
		if opts.Name == "" {
			opts.Name = export.DefaultName
		}

		document, err := export.EncodeWithOptions(req.ToFrames(), req.Dimensions, req.Colors, req.FrameDurationMs, opts)
		if err != nil {
			observeExport(cfg, "api", metrics.ResultInvalid, start, 0)
			writeEncodeError(w, err)
			return
		}

		observeExport(cfg, "api", metrics.ResultOK, start, len(document))
		writeLottie(w, opts.Name, document)
	}
}

func downloadLottieHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		p, err := cfg.Studio.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		document, err := export.EncodeSettings(p.Name, p.Frames, p.Settings)
		if err != nil {
			observeExport(cfg, "download", metrics.ResultError, start, 0)
			writeEncodeError(w, err)
			return
		}

		observeExport(cfg, "download", metrics.ResultOK, start, len(document))
		writeLottie(w, p.Name, document)
	}
}

// exportProjectHandler writes the project's Lottie file into output_dir, or
// the configured export dir when none is given, and records the export.
func exportProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req export.ProjectExportRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
				return
			}
		}

		if req.OutputDir == "" {
			req.OutputDir = cfg.ExportDir
			if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to create export dir", "INTERNAL_ERROR")
				return
			}
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		p, err := cfg.Studio.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		doc, err := export.Build(p.Frames, p.Settings.Dimensions, p.Settings.Colors, p.Settings.FrameDurationMs, projectOptions(p))
		if err != nil {
			observeExport(cfg, "project", metrics.ResultError, start, 0)
			writeEncodeError(w, err)
			return
		}
		data, err := doc.Marshal()
		if err != nil {
			observeExport(cfg, "project", metrics.ResultError, start, 0)
			WriteError(w, http.StatusInternalServerError, "failed to encode animation", "INTERNAL_ERROR")
			return
		}

		filename := export.Filename(p.Name, time.Now())
		outputPath, err := export.WriteFile(req.OutputDir, filename, string(data))
		if err != nil {
			observeExport(cfg, "project", metrics.ResultError, start, 0)
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		rec := &studio.ExportRecord{
			ProjectID:  p.ID,
			Filename:   filename,
			Path:       outputPath,
			FrameCount: len(p.Frames),
			Bytes:      int64(len(data)),
		}
		if err := cfg.Studio.RecordExport(r.Context(), rec); err != nil {
			cfg.Logger.Error("failed to record export", "error", err, "project_id", p.ID)
		}

		observeExport(cfg, "project", metrics.ResultOK, start, len(data))
		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:     "ok",
			Format:     export.FormatLottie,
			ExportID:   rec.ID,
			OutputPath: outputPath,
			Filename:   filename,
			FrameCount: len(p.Frames),
			LayerCount: len(doc.Layers),
			Bytes:      len(data),
		})
	}
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := cfg.Studio.ListExports(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := ExportsResponse{Exports: make([]ExportRecordResponse, len(records))}
		for i, rec := range records {
			resp.Exports[i] = ExportToResponse(rec)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func projectOptions(p *studio.Project) export.Options {
	opts := export.DefaultOptions()
	opts.Name = p.Name
	opts.IncludeBackground = p.Settings.IncludeBackground
	return opts
}
