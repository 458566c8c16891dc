package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	UserRole     string `json:"user_role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid username")
		return
	}

	result, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			WriteError(w, http.StatusUnauthorized, "Invalid username")
		case errors.Is(err, common.ErrInvalidPassword):
			WriteError(w, http.StatusPaymentRequired, "Invalid password")
		default:
			s.logger.Error(r.Context(), "login failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.UserID,
		UserRole:     result.Role,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		WriteError(w, http.StatusUnauthorized, "Refresh token is missing")
		return
	}

	tokenString, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || tokenString == "" {
		WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, err := s.users.Refresh(r.Context(), tokenString)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Username, password and role are required")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Username, password and role are required")
		return
	}

	_, err := s.users.Create(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidArgument):
			WriteError(w, http.StatusBadRequest, "Role must be member or admin")
		case errors.Is(err, common.ErrorConflict):
			WriteError(w, http.StatusBadRequest, "Username already exists")
		default:
			s.logger.Error(r.Context(), "create user failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("User %s created successfully!", req.Username),
	})
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list users failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Username: u.Username, Role: u.Role})
	}

	_ = WriteJSON(w, http.StatusOK, map[string][]userResponse{"users": out})
}

type updateUserRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.users.Update(r.Context(), id, services.UserUpdate{
		Username: req.Username,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, common.ErrorForbidden):
			WriteError(w, http.StatusForbidden, "Cannot change master role")
		case errors.Is(err, common.ErrorInvalidArgument):
			WriteError(w, http.StatusBadRequest, "Role must be member or admin")
		case errors.Is(err, common.ErrorConflict):
			WriteError(w, http.StatusBadRequest, "Username already taken by another user")
		default:
			s.logger.Error(r.Context(), "update user failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("User %s updated successfully!", id),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.users.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, common.ErrorForbidden):
			WriteError(w, http.StatusForbidden, "Cannot delete master")
		default:
			s.logger.Error(r.Context(), "delete user failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully!"})
}

func (s *Server) handleUpdateOwnUsername(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusInternalServerError, "Please input a new username")
		return
	}

	err := s.users.UpdateOwnUsername(r.Context(), user.ID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidArgument):
			WriteError(w, http.StatusInternalServerError, "Please input a new username")
		case errors.Is(err, common.ErrorNotFound):
			WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, common.ErrorConflict):
			WriteError(w, http.StatusBadRequest, "Username already taken by another user")
		default:
			s.logger.Error(r.Context(), "update username failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "Username updated successfully!"})
}

func (s *Server) handleUpdateOwnPassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusInternalServerError, "Please input a password")
		return
	}

	err := s.users.UpdateOwnPassword(r.Context(), user.ID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidArgument):
			WriteError(w, http.StatusInternalServerError, "Please input a password")
		case errors.Is(err, common.ErrorNotFound):
			WriteError(w, http.StatusNotFound, "User not found")
		default:
			s.logger.Error(r.Context(), "update password failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully!"})
}
