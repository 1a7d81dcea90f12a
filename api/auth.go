package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

const maxBodyBytes = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, "read request body")
	}
	return body, nil
}

type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
	Company       string `json:"company,omitempty"`
}

// handleRegister creates an account and issues a token. Client registrations
// also reconcile a pre-existing client profile by email.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.RegisterRequest, body); err != nil {
		writeError(w, err)
		return
	}

	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, err, "hash password"))
		return
	}

	user := &models.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Role:          req.Role,
		LicenseNumber: req.LicenseNumber,
		Company:       req.Company,
	}
	created, err := s.engine.RegisterUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.issueToken(created)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, err, "sign token"))
		return
	}

	writeSuccess(w, http.StatusCreated, "user registered", map[string]any{
		"user":  created,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.Check(r.Context(), validate.LoginRequest, body); err != nil {
		writeError(w, err)
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, err, "lookup user"))
		return
	}
	if user == nil {
		writeError(w, apperr.New(apperr.Unauthenticated, "invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, apperr.New(apperr.Unauthenticated, "invalid email or password"))
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, err, "sign token"))
		return
	}

	writeSuccess(w, http.StatusOK, "login successful", map[string]any{
		"user":  user,
		"token": token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r)
	user, err := s.users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, err, "lookup user"))
		return
	}
	if user == nil {
		writeError(w, apperr.New(apperr.NotFound, "user not found"))
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"user": user})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, err, "list users"))
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"users": users,
		"count": len(users),
	})
}

func (s *Server) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.cfg.TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
