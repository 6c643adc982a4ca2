package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flipdot/flipdot-studio/internal/export"
	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/flipdot/flipdot-studio/internal/projectfile"
)

const maxProjectFileBytes = 1 << 20

// importProjectHandler stores a project sent as a YAML project file.
func importProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pf, err := projectfile.Decode(io.LimitReader(r.Body, maxProjectFileBytes))
		if err != nil {
			var settingsErr *flipdot.SettingsError
			if errors.As(err, &settingsErr) {
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), "UNPROCESSABLE")
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		grids, err := pf.Grids()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		p, err := cfg.Studio.ImportProject(r.Context(), pf.Name, pf.Settings(), grids)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

// projectFileHandler downloads the project as a YAML project file.
func projectFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Studio.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		base := strings.TrimSuffix(export.Filename(p.Name, p.UpdatedAt), export.FileExtension)
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="`+base+`.yaml"`)
		w.WriteHeader(http.StatusOK)
		if err := projectfile.Encode(w, projectfile.FromProject(p)); err != nil {
			cfg.Logger.Error("failed to write project file", "error", err, "project_id", p.ID)
		}
	}
}
