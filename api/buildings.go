package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
)

func (s *Server) handleCreateBuilding(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.BuildingCreate, body); err != nil {
		writeError(w, err)
		return
	}

	var in lifecycle.CreateBuildingInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	building, err := s.engine.CreateBuilding(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "building created", map[string]any{"building": building})
}

func (s *Server) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.engine.ListBuildings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"buildings": buildings,
		"count":     len(buildings),
	})
}

// handleListBuildingsClientView is the client-facing listing, ordered by name.
func (s *Server) handleListBuildingsClientView(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.engine.ListBuildingsForClientView(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"buildings": buildings,
		"count":     len(buildings),
	})
}

// pathID parses the numeric {id} path variable.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid id %q", raw)
	}
	return id, nil
}
