package httpserver

import (
	"encoding/json"
	"net/http"

	"keystone/contexts/content/article-service/application"
	authzentities "keystone/contexts/identity-access/authorization-service/domain/entities"
)

type articleRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// handleListArticles godoc
// @Summary List articles
// @Description Non-admin callers receive only articles they contribute to.
// @Tags article
// @Produce json
// @Success 200 {array} entities.Article
// @Failure 401 {object} identityhttp.ErrorResponse
// @Router /article [get]
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, decision authzentities.Decision) {
	articles, err := s.articles.Service.List(r.Context(), application.ListArticlesInput{
		ScopeToIDs: decision.ScopeToContributed,
		IDs:        decision.ContributedIDs,
	})
	if err != nil {
		writeArticleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// handleCreateArticle godoc
// @Summary Create an article
// @Tags article
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body articleRequest true "new article"
// @Success 200 {object} entities.Article
// @Failure 400 {object} identityhttp.ErrorResponse
// @Router /article [post]
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request, caller authzentities.Caller, _ authzentities.Decision) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	article, err := s.articles.Service.Create(r.Context(), application.CreateArticleInput{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: caller.UserID,
	})
	if err != nil {
		writeArticleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleGetArticle godoc
// @Summary Get an article
// @Tags article
// @Produce json
// @Param id path string true "article id"
// @Success 200 {object} entities.Article
// @Failure 404 {object} identityhttp.ErrorResponse
// @Router /article/{id} [get]
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	article, err := s.articles.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeArticleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleUpdateArticle godoc
// @Summary Update an article
// @Tags article
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "article id"
// @Param request body articleRequest true "changed fields"
// @Success 200 {object} entities.Article
// @Failure 403 {object} identityhttp.ErrorResponse
// @Router /article/{id} [put]
func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	article, err := s.articles.Service.Update(r.Context(), application.UpdateArticleInput{
		ArticleID: r.PathValue("id"),
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		writeArticleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleDeleteArticle godoc
// @Summary Delete an article
// @Tags article
// @Produce json
// @Security BearerAuth
// @Param id path string true "article id"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} identityhttp.ErrorResponse
// @Router /article/{id} [delete]
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request, _ authzentities.Caller, _ authzentities.Decision) {
	if err := s.articles.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeArticleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
