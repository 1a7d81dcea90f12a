package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/predial/vistoria/api"
	"github.com/predial/vistoria/internal/config"
	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/repository/mock"
)

const testSecret = "testsecret"

func newTestServer(t *testing.T, m *mock.Mocks) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:     testSecret,
		TokenDuration: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}
	validator, err := validate.New()
	if err != nil {
		t.Fatalf("validate.New: %v", err)
	}
	engine := lifecycle.NewEngine(m.Users, m.Clients, m.Buildings, m.Links, m.Surveys, m.Rooms, m.Issues)
	srv := api.NewServer(cfg, engine, m.Users, validator)

	ts := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(ts.Close)
	return ts
}

func makeToken(t *testing.T, userID int64, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return res.StatusCode, decoded
}
