package api

import (
	"encoding/json"
	"net/http"

	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
)

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.ClientCreate, body); err != nil {
		writeError(w, err)
		return
	}

	var in lifecycle.CreateClientInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	client, err := s.engine.CreateClient(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "client created", map[string]any{"client": client})
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.engine.ListClients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"clients": clients,
		"count":   len(clients),
	})
}

// handleClientProfile returns the caller's own client profile.
func (s *Server) handleClientProfile(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r)
	profile, err := s.engine.ClientProfileFor(r.Context(), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"client": profile})
}
