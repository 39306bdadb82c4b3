package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"keystone/contexts/content/article-service/domain/entities"
)

func createArticle(t *testing.T, server *Server, token string, title string) entities.Article {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/article", token, articleRequest{Title: title, Body: "body of " + title})
	if rr.Code != http.StatusOK {
		t.Fatalf("create article %q: expected 200, got %d body=%s", title, rr.Code, rr.Body.String())
	}
	var article entities.Article
	if err := json.Unmarshal(rr.Body.Bytes(), &article); err != nil {
		t.Fatalf("decode article: %v", err)
	}
	return article
}

// restrictArticleList drops the public and registered grants from the
// article list route so only the contributor branch remains.
func restrictArticleList(t *testing.T, server *Server) {
	t.Helper()
	route, err := server.authorization.Store.FindRouteByName(context.Background(), "get /article")
	if err != nil {
		t.Fatalf("find route: %v", err)
	}
	route.IsPublic = false
	route.RegisteredAuthorized = false
	route.ContributorsAuthorized = true
	if _, err := server.authorization.Store.UpdateRoute(context.Background(), route); err != nil {
		t.Fatalf("update route: %v", err)
	}
}

func TestArticleCreateRejectsAnonymous(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/article", "", articleRequest{Title: "drive-by"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestArticleAuthorBecomesContributor(t *testing.T) {
	server := newTestServer()
	registerUser(t, server, "root")
	aliceToken, aliceID := registerUser(t, server, "alice")

	article := createArticle(t, server, aliceToken, "hello")
	if len(article.Contributors) != 1 || article.Contributors[0] != aliceID {
		t.Fatalf("expected author as sole contributor, got %v", article.Contributors)
	}
}

func TestArticleUpdateRequiresContribution(t *testing.T) {
	server := newTestServer()
	adminToken, _ := registerUser(t, server, "root")
	aliceToken, _ := registerUser(t, server, "alice")
	bobToken, _ := registerUser(t, server, "bob")

	article := createArticle(t, server, aliceToken, "hello")

	rr := doJSON(t, server, http.MethodPut, "/article/"+article.ArticleID, bobToken, articleRequest{Title: "defaced"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-contributor update: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPut, "/article/"+article.ArticleID, aliceToken, articleRequest{Title: "hello again"})
	if rr.Code != http.StatusOK {
		t.Fatalf("contributor update: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodDelete, "/article/"+article.ArticleID, bobToken, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-contributor delete: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodDelete, "/article/"+article.ArticleID, adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestArticleListScopedToContributions(t *testing.T) {
	server := newTestServer()
	registerUser(t, server, "root")
	aliceToken, _ := registerUser(t, server, "alice")
	bobToken, _ := registerUser(t, server, "bob")
	carolToken, _ := registerUser(t, server, "carol")

	mine := createArticle(t, server, aliceToken, "alice writes")
	createArticle(t, server, bobToken, "bob writes")

	restrictArticleList(t, server)

	rr := doJSON(t, server, http.MethodGet, "/article", aliceToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("scoped list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var listed []entities.Article
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ArticleID != mine.ArticleID {
		t.Fatalf("expected only alice's article, got %+v", listed)
	}

	// A caller with no contributions gets an empty list, not a denial.
	rr = doJSON(t, server, http.MethodGet, "/article", carolToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("empty scoped list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no articles for carol, got %+v", listed)
	}

	rr = doJSON(t, server, http.MethodGet, "/article", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous on restricted list: expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}
