package api

import (
	"encoding/json"
	"net/http"

	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
)

type linkClientRequest struct {
	ClientEmail string `json:"client_email"`
	BuildingID  int64  `json:"building_id"`
}

// handleLinkClient associates a client (by email) with a building. Linking an
// already linked pair returns the existing association.
func (s *Server) handleLinkClient(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.LinkClient, body); err != nil {
		writeError(w, err)
		return
	}

	var req linkClientRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	link, err := s.engine.LinkClientToBuilding(r.Context(), req.ClientEmail, req.BuildingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "client linked to building", map[string]any{"link": link})
}

// handleMyBuildings lists the buildings linked to the caller's client profile.
func (s *Server) handleMyBuildings(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r)
	links, err := s.engine.BuildingsForUser(r.Context(), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"buildings": links,
		"count":     len(links),
	})
}

func (s *Server) handleBuildingClients(w http.ResponseWriter, r *http.Request) {
	buildingID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	links, err := s.engine.ClientsForBuilding(r.Context(), buildingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"clients": links,
		"count":   len(links),
	})
}
