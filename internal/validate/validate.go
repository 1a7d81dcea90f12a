// Package validate compiles the embedded request schemas once and checks
// incoming JSON bodies against them before handlers decode anything.
package validate

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/predial/vistoria/pkg/apperr"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names match the embedded file names without extension.
const (
	RegisterRequest = "register"
	LoginRequest    = "login"
	BuildingCreate  = "building_create"
	ClientCreate    = "client_create"
	SurveyCreate    = "survey_create"
	IssueCreate     = "issue_create"
	RoomCreate      = "room_create"
	LinkClient      = "link_client"
)

// Validator holds the compiled request schemas.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	v := &Validator{cache: make(map[string]*jsonschema.Schema)}

	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := fs.ReadFile(schemaFS, path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		v.cache[strings.TrimSuffix(e.Name(), ".json")] = rs
	}

	return v, nil
}

// Check validates body against the named schema. Violations come back as a
// single Validation error listing every offending field.
func (v *Validator) Check(ctx context.Context, name string, body []byte) error {
	v.mu.RLock()
	rs, ok := v.cache[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown request schema %q", name)
	}

	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if len(keyErrs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		msgs = append(msgs, ke.Message)
	}
	return apperr.New(apperr.Validation, "validation failed: %s", strings.Join(msgs, "; "))
}
