package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	articleservice "keystone/contexts/content/article-service"
	articleerrors "keystone/contexts/content/article-service/domain/errors"
	authorizationservice "keystone/contexts/identity-access/authorization-service"
	authzqueries "keystone/contexts/identity-access/authorization-service/application/queries"
	authzentities "keystone/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "keystone/contexts/identity-access/authorization-service/domain/errors"
	identityservice "keystone/contexts/identity-access/identity-service"
	identityerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	identityhttp "keystone/contexts/identity-access/identity-service/transport/http"
	tokenapp "keystone/contexts/identity-access/token-service/application"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "keystone/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	frontendURL   string
	tokens        tokenapp.Service
	identity      identityservice.Module
	authorization authorizationservice.Module
	articles      articleservice.Module
}

func New(
	tokens tokenapp.Service,
	identity identityservice.Module,
	authorization authorizationservice.Module,
	articles articleservice.Module,
	frontendURL string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		frontendURL:   frontendURL,
		tokens:        tokens,
		identity:      identity,
		authorization: authorization,
		articles:      articles,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.handle("post /auth/local", "", s.handleLocalLogin)
	s.handle("post /auth/local/register", "", s.handleRegister)
	s.handle("get /auth/:provider/callback", "", s.handleProviderCallback)
	s.handle("post /auth/:provider/callback", "", s.handleProviderCallback)
	s.handle("post /auth/forgot-password", "", s.handleForgotPassword)
	s.handle("post /auth/change-password", "", s.handleChangePassword)
	s.handle("get /auth/logout", "", s.handleLogout)

	s.handle("get /user", "user", s.handleListUsers)
	s.handle("post /user", "user", s.handleCreateUser)
	s.handle("get /user/:id", "user", s.handleGetUser)
	s.handle("put /user/:id", "user", s.handleUpdateUser)
	s.handle("delete /user/:id", "user", s.handleDeleteUser)

	s.handle("get /article", "article", s.handleListArticles)
	s.handle("post /article", "article", s.handleCreateArticle)
	s.handle("get /article/:id", "article", s.handleGetArticle)
	s.handle("put /article/:id", "article", s.handleUpdateArticle)
	s.handle("delete /article/:id", "article", s.handleDeleteArticle)
}

// guardedHandler runs after the caller has been resolved and the route
// authorized. A scoped decision narrows list results downstream.
type guardedHandler func(w http.ResponseWriter, r *http.Request, caller authzentities.Caller, decision authzentities.Decision)

// handle registers one declared route. The name is the registry's
// "<lowercase-verb> <path-with-:params>" form, the same key the
// synchronizer persisted, so lookup in the guard can never drift from
// what the mux serves.
func (s *Server) handle(name string, collection string, next guardedHandler) {
	s.mux.HandleFunc(muxPattern(name), s.guard(name, collection, next))
}

func (s *Server) guard(name string, collection string, next guardedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, err := s.tokens.Resolve(r, false)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_credential", err.Error())
			return
		}

		caller := authzentities.Caller{}
		if !subject.Anonymous() {
			user, err := s.identity.GetUser.Execute(r.Context(), subject.UserID)
			if err != nil {
				if errors.Is(err, identityerrors.ErrUserNotFound) {
					// Valid signature over a user that no longer exists.
					writeError(w, http.StatusUnauthorized, "unknown_subject", "credential subject not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			caller = authzentities.Caller{UserID: user.UserID, Roles: user.RoleNames()}
		}

		decision, err := s.authorization.Authorize.Execute(r.Context(), authzqueries.AuthorizeQuery{
			Caller:           caller,
			RouteName:        name,
			TargetCollection: collection,
			TargetID:         r.PathValue("id"),
		})
		if err != nil {
			writeAuthzError(w, err)
			return
		}
		next(w, r, caller, decision)
	}
}

// muxPattern rewrites a registry route name into a net/http pattern:
// "put /user/:id" becomes "PUT /user/{id}".
func muxPattern(name string) string {
	verb, path, _ := strings.Cut(name, " ")
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, ":") {
			segments[i] = "{" + segment[1:] + "}"
		}
	}
	return strings.ToUpper(verb) + " " + strings.Join(segments, "/")
}

func writeAuthzError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrRouteNotFound):
		writeError(w, http.StatusNotFound, "route_not_found", err.Error())
	case errors.Is(err, authzerrors.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not_authenticated", err.Error())
	case errors.Is(err, authzerrors.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIdentityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identityerrors.ErrInvalidLogin),
		errors.Is(err, identityerrors.ErrInvalidResetCode),
		errors.Is(err, identityerrors.ErrMissingIdentifier),
		errors.Is(err, identityerrors.ErrMissingPassword),
		errors.Is(err, identityerrors.ErrPasswordTooShort),
		errors.Is(err, identityerrors.ErrPasswordMismatch),
		errors.Is(err, identityerrors.ErrEmailRequired),
		errors.Is(err, identityerrors.ErrNoLocalPassport),
		errors.Is(err, identityerrors.ErrMissingProviderID),
		errors.Is(err, identityerrors.ErrProfileUnusable),
		errors.Is(err, identityerrors.ErrProviderUnknown):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, identityerrors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, identityerrors.ErrDuplicateIdentity):
		writeError(w, http.StatusConflict, "duplicate_identity", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeArticleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, articleerrors.ErrArticleNotFound):
		writeError(w, http.StatusNotFound, "article_not_found", err.Error())
	case errors.Is(err, articleerrors.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, identityhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
