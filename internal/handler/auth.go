package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/raahi/backend/internal/auth"
	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
	FullName string `json:"full_name" validate:"required,max=200"`
}

// loginRequest leaves email format unchecked so a malformed address fails
// like any unknown one.
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// authResponse is returned by register and login.
type authResponse struct {
	Success  bool      `json:"success"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Token    string    `json:"token"`
	Message  string    `json:"message"`
}

type meResponse struct {
	Success   bool      `json:"success"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	FirstName string    `json:"first_name"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// register handles POST /api/auth/register.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(sess, "User registered successfully"))
}

// login handles POST /api/auth/login. Unknown email and wrong password
// produce the same 401.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess, "Login successful"))
}

// logout handles POST /api/auth/logout. Tokens are stateless, so this only
// confirms the token was valid; the client discards it.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

// me handles GET /api/auth/me.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	current, _ := auth.UserFrom(r.Context())
	u, err := s.users.Me(r.Context(), current)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Success:   true,
		UserID:    u.UserID,
		Email:     u.Email,
		FullName:  u.FullName,
		FirstName: u.FirstName(),
	})
}

func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return s.validateStruct(dst, "")
}

func sessionToResponse(sess service.Session, message string) authResponse {
	return authResponse{
		Success:  true,
		UserID:   sess.User.ID,
		Email:    sess.User.Email,
		FullName: sess.User.FullName,
		Token:    sess.Token,
		Message:  message,
	}
}
