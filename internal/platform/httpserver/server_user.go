package httpserver

import (
	"encoding/json"
	"net/http"

	authzentities "keystone/contexts/identity-access/authorization-service/domain/entities"
	"keystone/contexts/identity-access/identity-service/application/commands"
	"keystone/contexts/identity-access/identity-service/application/queries"
	identityhttp "keystone/contexts/identity-access/identity-service/transport/http"
)

// handleListUsers godoc
// @Summary List users
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} identityhttp.UserResponse
// @Failure 401 {object} identityhttp.ErrorResponse
// @Failure 403 {object} identityhttp.ErrorResponse
// @Router /user [get]
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, decision authzentities.Decision) {
	users, err := s.identity.ListUsers.Execute(r.Context(), queries.ListUsersQuery{
		ScopeToIDs: decision.ScopeToContributed,
		IDs:        decision.ContributedIDs,
	})
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityhttp.ToUserResponses(users))
}

// handleCreateUser godoc
// @Summary Create a user
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body identityhttp.RegisterRequest true "new user"
// @Success 200 {object} identityhttp.UserResponse
// @Failure 409 {object} identityhttp.ErrorResponse
// @Router /user [post]
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	var req identityhttp.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	user, err := s.identity.Register.Execute(r.Context(), commands.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityhttp.ToUserResponse(user))
}

// handleGetUser godoc
// @Summary Get a user
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 200 {object} identityhttp.UserResponse
// @Failure 404 {object} identityhttp.ErrorResponse
// @Router /user/{id} [get]
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	user, err := s.identity.GetUser.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityhttp.ToUserResponse(user))
}

// handleUpdateUser godoc
// @Summary Update a user
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param request body identityhttp.UpdateUserRequest true "changed fields"
// @Success 200 {object} identityhttp.UserResponse
// @Failure 404 {object} identityhttp.ErrorResponse
// @Router /user/{id} [put]
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	var req identityhttp.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	user, err := s.identity.UpdateUser.Execute(r.Context(), commands.UpdateUserCommand{
		UserID:   r.PathValue("id"),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityhttp.ToUserResponse(user))
}

// handleDeleteUser godoc
// @Summary Delete a user and their passports
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} identityhttp.ErrorResponse
// @Router /user/{id} [delete]
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	if err := s.identity.DeleteUser.Execute(r.Context(), r.PathValue("id")); err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
