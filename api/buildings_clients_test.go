package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/predial/vistoria/pkg/models"
	"github.com/predial/vistoria/pkg/repository/mock"
)

func TestBuildingEndpoints(t *testing.T) {
	m := mock.NewMocks()
	eng := m.SeedUser(models.User{Role: models.RoleEngineer})
	clientUser := m.SeedUser(models.User{Role: models.RoleClient})
	ts := newTestServer(t, m)
	engToken := makeToken(t, eng.ID, eng.Role)

	payload := map[string]any{
		"name":                 "Residencial Aurora",
		"address":              "Main St 1",
		"construction_company": "BuildCo",
		"number_of_floors":     10,
		"number_of_units":      40,
	}

	status, _ := doRequest(t, ts, http.MethodPost, "/v1/buildings", makeToken(t, clientUser.ID, clientUser.Role), payload)
	if status != http.StatusForbidden {
		t.Fatalf("client create building: expected 403, got %d", status)
	}

	status, body := doRequest(t, ts, http.MethodPost, "/v1/buildings", engToken, payload)
	if status != http.StatusCreated {
		t.Fatalf("create building: expected 201, got %d (body %v)", status, body)
	}

	// schema rejects non-positive floors
	bad := map[string]any{
		"name": "X", "address": "Y", "construction_company": "Z",
		"number_of_floors": 0, "number_of_units": 5,
	}
	status, _ = doRequest(t, ts, http.MethodPost, "/v1/buildings", engToken, bad)
	if status != http.StatusBadRequest {
		t.Fatalf("zero floors: expected 400, got %d", status)
	}

	status, body = doRequest(t, ts, http.MethodGet, "/v1/buildings", engToken, nil)
	if status != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("list buildings: got %d %v", status, body)
	}

	// the client-facing view is gated the other way around
	status, _ = doRequest(t, ts, http.MethodGet, "/v1/buildings/client", engToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("engineer on client view: expected 403, got %d", status)
	}
	status, body = doRequest(t, ts, http.MethodGet, "/v1/buildings/client", makeToken(t, clientUser.ID, clientUser.Role), nil)
	if status != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("client view: got %d %v", status, body)
	}
}

func TestClientEndpoints(t *testing.T) {
	m := mock.NewMocks()
	eng := m.SeedUser(models.User{Role: models.RoleEngineer})
	ts := newTestServer(t, m)
	token := makeToken(t, eng.ID, eng.Role)

	house := map[string]any{
		"name":            "Bob",
		"email":           "bob@example.com",
		"phone":           "555-1234",
		"address":         "Rural Rd 7",
		"property_type":   models.PropertyHouse,
		"property_number": "7",
		"floor":           "3",
		"block":           "B",
	}
	status, body := doRequest(t, ts, http.MethodPost, "/v1/clients", token, house)
	if status != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d (body %v)", status, body)
	}
	created := body["client"].(map[string]any)
	if _, hasFloor := created["floor"]; hasFloor {
		t.Fatalf("house must not carry floor, got %v", created)
	}
	if _, hasBlock := created["block"]; hasBlock {
		t.Fatalf("house must not carry block, got %v", created)
	}

	// duplicate email
	status, _ = doRequest(t, ts, http.MethodPost, "/v1/clients", token, house)
	if status != http.StatusConflict {
		t.Fatalf("duplicate client: expected 409, got %d", status)
	}

	status, body = doRequest(t, ts, http.MethodGet, "/v1/clients", token, nil)
	if status != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("list clients: got %d %v", status, body)
	}
}

func TestClientProfileEndpoint(t *testing.T) {
	m := mock.NewMocks()
	clientUser := m.SeedUser(models.User{Role: models.RoleClient})
	ts := newTestServer(t, m)
	token := makeToken(t, clientUser.ID, clientUser.Role)

	status, _ := doRequest(t, ts, http.MethodGet, "/v1/clients/profile", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("no profile yet: expected 404, got %d", status)
	}

	m.SeedClient(models.Client{
		Name:           "Bob",
		Email:          "bob@example.com",
		Phone:          "555-1234",
		Address:        "Main St 1",
		PropertyType:   models.PropertyApartment,
		PropertyNumber: "101",
		UserID:         &clientUser.ID,
	})
	status, body := doRequest(t, ts, http.MethodGet, "/v1/clients/profile", token, nil)
	if status != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", status)
	}
	if body["client"].(map[string]any)["email"] != "bob@example.com" {
		t.Fatalf("unexpected profile %v", body["client"])
	}
}

func TestLinkingEndpoints(t *testing.T) {
	m := mock.NewMocks()
	eng := m.SeedUser(models.User{Role: models.RoleEngineer})
	clientUser := m.SeedUser(models.User{Role: models.RoleClient})
	building := m.SeedBuilding(models.Building{Name: "Aurora", Address: "Main St 1", ConstructionCompany: "BuildCo", NumberOfFloors: 10, NumberOfUnits: 40})
	m.SeedClient(models.Client{
		Name:           "Bob",
		Email:          "bob@example.com",
		Phone:          "555-1234",
		Address:        "Main St 1",
		PropertyType:   models.PropertyApartment,
		PropertyNumber: "101",
		UserID:         &clientUser.ID,
	})
	ts := newTestServer(t, m)
	engToken := makeToken(t, eng.ID, eng.Role)

	payload := map[string]any{"client_email": "bob@example.com", "building_id": building.ID}

	status, body := doRequest(t, ts, http.MethodPost, "/v1/linking/link-client", engToken, payload)
	if status != http.StatusCreated {
		t.Fatalf("link: expected 201, got %d (body %v)", status, body)
	}
	firstID := body["link"].(map[string]any)["id"].(float64)

	// linking twice returns the same association
	status, body = doRequest(t, ts, http.MethodPost, "/v1/linking/link-client", engToken, payload)
	if status != http.StatusCreated {
		t.Fatalf("relink: expected 201, got %d", status)
	}
	if body["link"].(map[string]any)["id"].(float64) != firstID {
		t.Fatalf("relink must return existing link %v, got %v", firstID, body["link"])
	}

	status, _ = doRequest(t, ts, http.MethodPost, "/v1/linking/link-client", engToken,
		map[string]any{"client_email": "ghost@example.com", "building_id": building.ID})
	if status != http.StatusNotFound {
		t.Fatalf("unknown client: expected 404, got %d", status)
	}

	status, body = doRequest(t, ts, http.MethodGet, "/v1/linking/my-buildings", makeToken(t, clientUser.ID, clientUser.Role), nil)
	if status != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("my-buildings: got %d %v", status, body)
	}

	status, body = doRequest(t, ts, http.MethodGet, fmt.Sprintf("/v1/linking/building/%d/clients", building.ID), engToken, nil)
	if status != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("building clients: got %d %v", status, body)
	}
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t, mock.NewMocks())

	status, body := doRequest(t, ts, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: got %d %v", status, body)
	}

	status, body = doRequest(t, ts, http.MethodGet, "/version", "", nil)
	if status != http.StatusOK || body["version"] == "" {
		t.Fatalf("version: got %d %v", status, body)
	}

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", res.StatusCode)
	}
}
