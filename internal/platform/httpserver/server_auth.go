package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	authzentities "keystone/contexts/identity-access/authorization-service/domain/entities"
	"keystone/contexts/identity-access/identity-service/application/commands"
	"keystone/contexts/identity-access/identity-service/application/queries"
	identityentities "keystone/contexts/identity-access/identity-service/domain/entities"
	identityhttp "keystone/contexts/identity-access/identity-service/transport/http"
	tokenentities "keystone/contexts/identity-access/token-service/domain/entities"
)

// handleLocalLogin authenticates against the local passport and answers
// with a signed token plus the serialized user.
//
// @Summary Log in with email or username
// @Tags auth
// @Accept json
// @Produce json
// @Param request body identityhttp.LoginRequest true "credentials"
// @Success 200 {object} identityhttp.AuthResponse
// @Router /auth/local [post]
func (s *Server) handleLocalLogin(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	var req identityhttp.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	user, err := s.identity.Authenticate.Execute(r.Context(), queries.AuthenticateQuery{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	s.respondAuthenticated(w, user)
}

// handleRegister creates a local account. The first account registered
// on an empty datastore receives the admin role.
//
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body identityhttp.RegisterRequest true "new account"
// @Success 200 {object} identityhttp.AuthResponse
// @Router /auth/local/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
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
	s.respondAuthenticated(w, user)
}

// handleProviderCallback finishes an OAuth/OpenID handshake: the raw
// provider profile is normalized, the identity linked (or created) and a
// local token issued. An authenticated caller links the provider to
// their own account instead.
//
// @Summary Provider callback
// @Tags auth
// @Accept json
// @Produce json
// @Param provider path string true "provider name"
// @Param request body identityhttp.ProviderCallbackRequest true "handshake result"
// @Success 200 {object} identityhttp.AuthResponse
// @Router /auth/{provider}/callback [post]
func (s *Server) handleProviderCallback(w http.ResponseWriter, r *http.Request, caller authzentities.Caller, _ authzentities.Decision) {
	providerName := r.PathValue("provider")
	provider, ok := s.identity.Providers.Lookup(providerName)
	if !ok {
		writeError(w, http.StatusBadRequest, "provider_unknown", "unknown provider "+providerName)
		return
	}

	var req identityhttp.ProviderCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if req.AccessToken == "" {
		req.AccessToken = r.URL.Query().Get("access_token")
	}

	profile, err := s.identity.Providers.Normalize(providerName, req.Profile)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}

	user, err := s.identity.LinkProvider.Execute(r.Context(), commands.LinkProviderCommand{
		CallerID:    caller.UserID,
		Protocol:    provider.Protocol,
		Provider:    providerName,
		Identifier:  profileIdentifier(req.Profile),
		Profile:     profile,
		AccessToken: req.AccessToken,
		TokenSecret: req.TokenSecret,
	})
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	s.respondAuthenticated(w, user)
}

// handleForgotPassword mails a single-use reset link.
//
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body identityhttp.ForgotPasswordRequest true "account email"
// @Success 200 {object} map[string]bool
// @Router /auth/forgot-password [post]
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	var req identityhttp.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resetURL := req.URL
	if resetURL == "" {
		resetURL = s.frontendURL + "/auth/reset-password"
	}

	if err := s.identity.ForgotPassword.Execute(r.Context(), commands.ForgotPasswordCommand{
		Email:    req.Email,
		ResetURL: resetURL,
	}); err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleChangePassword redeems a reset code and signs the caller in with
// the new password.
//
// @Summary Reset a password with a code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body identityhttp.ChangePasswordRequest true "new password and code"
// @Success 200 {object} identityhttp.AuthResponse
// @Router /auth/change-password [post]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	var req identityhttp.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	user, err := s.identity.ResetPassword.Execute(r.Context(), commands.ResetPasswordCommand{
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Code:                 req.Code,
	})
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	s.respondAuthenticated(w, user)
}

// handleLogout exists for client symmetry; bearer credentials are
// stateless so there is nothing to invalidate server side.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) respondAuthenticated(w http.ResponseWriter, user identityentities.User) {
	token, err := s.tokens.Issue(tokenentities.Subject{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, identityhttp.AuthResponse{
		Token: token,
		User:  identityhttp.ToUserResponse(user),
	})
}

// profileIdentifier extracts the provider-side account id from the raw
// profile. Providers disagree on the field name and numeric ids arrive
// as JSON numbers.
func profileIdentifier(raw map[string]any) string {
	for _, key := range []string{"id", "sub", "user_id"} {
		switch value := raw[key].(type) {
		case string:
			if value != "" {
				return value
			}
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}
