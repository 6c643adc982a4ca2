package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/flipdot/flipdot-studio/internal/studio"
)

// writeServiceError maps studio errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var settingsErr *flipdot.SettingsError
	switch {
	case errors.Is(err, studio.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, studio.ErrFrameIndex), errors.Is(err, studio.ErrDotIndex), errors.Is(err, studio.ErrMoveDelta):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, studio.ErrLastFrame), errors.As(err, &settingsErr):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "UNPROCESSABLE")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func pathInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Studio.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectSummary, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToSummary(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		var (
			p   *studio.Project
			err error
		)
		if len(req.Frames) == 0 {
			p, err = cfg.Studio.CreateProject(r.Context(), req.Name, req.Settings)
		} else {
			settings := flipdot.DefaultSettings()
			if req.Settings != nil {
				settings = *req.Settings
			}
			grids := make([][][]bool, len(req.Frames))
			for i, rows := range req.Frames {
				if grids[i], err = flipdot.ParseRows(rows); err != nil {
					WriteError(w, http.StatusBadRequest, "frame "+strconv.Itoa(i)+": "+err.Error(), "BAD_REQUEST")
					return
				}
				if err = flipdot.CheckDots(grids[i], settings.Dimensions); err != nil {
					WriteError(w, http.StatusUnprocessableEntity, "frame "+strconv.Itoa(i)+": "+err.Error(), "UNPROCESSABLE")
					return
				}
			}
			p, err = cfg.Studio.ImportProject(r.Context(), req.Name, settings, grids)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Studio.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Studio.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func renameProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenameProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p, err := cfg.Studio.RenameProject(r.Context(), chi.URLParam(r, "id"), req.Name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func updateSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings flipdot.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p, err := cfg.Studio.UpdateSettings(r.Context(), chi.URLParam(r, "id"), settings)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func addFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddFrameRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
				return
			}
		}

		id := chi.URLParam(r, "id")
		after := 0
		if req.After != nil {
			after = *req.After
		} else {
			p, err := cfg.Studio.GetProject(r.Context(), id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			after = len(p.Frames) - 1
		}

		p, index, err := cfg.Studio.AddFrame(r.Context(), id, after)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, FrameOpResponse{Index: index, Project: ProjectToResponse(p)})
	}
}

func deleteFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathInt(r, "index")
		if !ok {
			WriteError(w, http.StatusBadRequest, "frame index must be an integer", "BAD_REQUEST")
			return
		}

		p, err := cfg.Studio.DeleteFrame(r.Context(), chi.URLParam(r, "id"), index)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func clearFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathInt(r, "index")
		if !ok {
			WriteError(w, http.StatusBadRequest, "frame index must be an integer", "BAD_REQUEST")
			return
		}

		p, err := cfg.Studio.ClearFrame(r.Context(), chi.URLParam(r, "id"), index)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func duplicateFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathInt(r, "index")
		if !ok {
			WriteError(w, http.StatusBadRequest, "frame index must be an integer", "BAD_REQUEST")
			return
		}

		p, at, err := cfg.Studio.DuplicateFrame(r.Context(), chi.URLParam(r, "id"), index)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, FrameOpResponse{Index: at, Project: ProjectToResponse(p)})
	}
}

func moveFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathInt(r, "index")
		if !ok {
			WriteError(w, http.StatusBadRequest, "frame index must be an integer", "BAD_REQUEST")
			return
		}

		var req MoveFrameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p, to, err := cfg.Studio.MoveFrame(r.Context(), chi.URLParam(r, "id"), index, req.Delta)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, FrameOpResponse{Index: to, Project: ProjectToResponse(p)})
	}
}

func toggleDotHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok1 := pathInt(r, "index")
		row, ok2 := pathInt(r, "row")
		col, ok3 := pathInt(r, "col")
		if !ok1 || !ok2 || !ok3 {
			WriteError(w, http.StatusBadRequest, "dot position must be integers", "BAD_REQUEST")
			return
		}

		p, err := cfg.Studio.ToggleDot(r.Context(), chi.URLParam(r, "id"), index, row, col)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}
