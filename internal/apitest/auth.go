package apitest

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

const tokenTTL = 7 * 24 * time.Hour

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) && acc.password == req.Password {
			if !acc.user.IsActive {
				fail(w, http.StatusForbidden, "Account is deactivated")
				return
			}
			succeed(w, http.StatusOK, "Login successful", models.AuthResult{
				Token: s.signLocked(acc.user.ID, tokenTTL),
				User:  acc.user,
			})
			return
		}
	}
	fail(w, http.StatusUnauthorized, "Invalid email or password")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	var errs []fieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, fieldError{Msg: "Name is required", Path: "name"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, fieldError{Msg: "Please provide a valid email", Path: "email"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, fieldError{Msg: "Password must be at least 6 characters", Path: "password"})
	}
	if req.Role == models.RoleAdmin {
		errs = append(errs, fieldError{Msg: "Invalid role", Path: "role"})
	}
	if len(errs) > 0 {
		invalid(w, errs...)
		return
	}

	s.mu.Lock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) {
			s.mu.Unlock()
			fail(w, http.StatusBadRequest, "User already exists")
			return
		}
	}
	s.mu.Unlock()

	u := s.AddUser(models.User{Name: req.Name, Email: req.Email, Role: req.Role}, req.Password)

	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, http.StatusCreated, "Registration successful", models.AuthResult{Token: s.signLocked(u.ID, tokenTTL), User: u})
}

func (s *Server) socialLogin(w http.ResponseWriter, r *http.Request) {
	var req models.SocialLoginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Provider == "" || req.Token == "" || req.Email == "" {
		fail(w, http.StatusBadRequest, "Provider token and email are required")
		return
	}

	s.mu.Lock()
	var found *models.User
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) {
			u := acc.user
			found = &u
			break
		}
	}
	s.mu.Unlock()

	var u models.User
	if found != nil {
		u = *found
	} else {
		u = s.AddUser(models.User{Name: req.Name, Email: req.Email, Avatar: req.Avatar, IsVerified: true}, uuid.NewString())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, http.StatusOK, "Login successful", models.AuthResult{Token: s.signLocked(u.ID, tokenTTL), User: u})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, http.StatusOK, "", s.userLocked(currentUser(r)))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userLocked(chi.URLParam(r, "id"))
	if u == nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	succeed(w, http.StatusOK, "", u)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[currentUser(r)]
	u := &acc.user
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			invalid(w, fieldError{Msg: "Name cannot be empty", Path: "name"})
			return
		}
		u.Name = *in.Name
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Interests != nil {
		u.Interests = in.Interests
	}
	succeed(w, http.StatusOK, "Profile updated", *u)
}
