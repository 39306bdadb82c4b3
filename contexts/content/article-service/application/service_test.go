package application

import (
	"context"
	"errors"
	"testing"

	"keystone/contexts/content/article-service/adapters/memory"
	domainerrors "keystone/contexts/content/article-service/domain/errors"
)

func newService(store *memory.Store) Service {
	return Service{Repo: store, Clock: store, IDs: store}
}

func TestCreateRecordsAuthorAsContributor(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	article, err := service.Create(context.Background(), CreateArticleInput{
		Title:    "First",
		Body:     "body",
		AuthorID: "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !article.HasContributor("user-1") {
		t.Fatalf("author missing from contributors %v", article.Contributors)
	}

	ids, err := store.ContributedIDs(context.Background(), "article", "user-1")
	if err != nil {
		t.Fatalf("contributed ids failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != article.ArticleID {
		t.Fatalf("unexpected contributed ids %v", ids)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	if _, err := service.Create(context.Background(), CreateArticleInput{Body: "body"}); !errors.Is(err, domainerrors.ErrTitleRequired) {
		t.Fatalf("got %v, want ErrTitleRequired", err)
	}
}

func TestListHonorsScope(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	mine, err := service.Create(context.Background(), CreateArticleInput{Title: "Mine", AuthorID: "user-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := service.Create(context.Background(), CreateArticleInput{Title: "Theirs", AuthorID: "user-2"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	all, err := service.List(context.Background(), ListArticlesInput{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(all))
	}

	scoped, err := service.List(context.Background(), ListArticlesInput{ScopeToIDs: true, IDs: []string{mine.ArticleID}})
	if err != nil {
		t.Fatalf("scoped list failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ArticleID != mine.ArticleID {
		t.Fatalf("unexpected scoped result %v", scoped)
	}

	none, err := service.List(context.Background(), ListArticlesInput{ScopeToIDs: true})
	if err != nil {
		t.Fatalf("empty-scope list failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("empty scope must match nothing, got %d", len(none))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	article, err := service.Create(context.Background(), CreateArticleInput{Title: "Draft", AuthorID: "user-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := service.Update(context.Background(), UpdateArticleInput{
		ArticleID: article.ArticleID,
		Title:     "Published",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Published" {
		t.Fatalf("title not updated, got %q", updated.Title)
	}
	if !updated.HasContributor("user-1") {
		t.Fatal("contributors lost on update")
	}

	if err := service.Delete(context.Background(), article.ArticleID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := service.Get(context.Background(), article.ArticleID); !errors.Is(err, domainerrors.ErrArticleNotFound) {
		t.Fatalf("got %v, want ErrArticleNotFound", err)
	}
}
