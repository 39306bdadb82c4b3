package application

import (
	"context"
	"log/slog"
	"strings"

	"keystone/contexts/content/article-service/domain/entities"
	domainerrors "keystone/contexts/content/article-service/domain/errors"
	"keystone/contexts/content/article-service/ports"
)

type Service struct {
	Repo   ports.ArticleRepository
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

type CreateArticleInput struct {
	Title string
	Body  string
	// AuthorID becomes the first contributor on the new record.
	AuthorID string
}

func (s Service) Create(ctx context.Context, input CreateArticleInput) (entities.Article, error) {
	if strings.TrimSpace(input.Title) == "" {
		return entities.Article{}, domainerrors.ErrTitleRequired
	}

	articleID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Article{}, err
	}
	now := s.Clock.Now()
	var contributors []string
	if input.AuthorID != "" {
		contributors = []string{input.AuthorID}
	}
	article, err := s.Repo.Create(ctx, entities.Article{
		ArticleID:    articleID,
		Title:        strings.TrimSpace(input.Title),
		Body:         input.Body,
		Contributors: contributors,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return entities.Article{}, err
	}

	if s.Logger != nil {
		s.Logger.Info("article created",
			"event", "article_created",
			"module", "content/article-service",
			"layer", "application",
			"article_id", article.ArticleID,
			"author_id", input.AuthorID,
		)
	}
	return article, nil
}

func (s Service) Get(ctx context.Context, articleID string) (entities.Article, error) {
	if strings.TrimSpace(articleID) == "" {
		return entities.Article{}, domainerrors.ErrArticleNotFound
	}
	return s.Repo.FindByID(ctx, articleID)
}

type ListArticlesInput struct {
	// ScopeToIDs restricts results to the given ids, as instructed by an
	// ownership-scoped authorization decision.
	ScopeToIDs bool
	IDs        []string
}

func (s Service) List(ctx context.Context, input ListArticlesInput) ([]entities.Article, error) {
	filter := ports.ArticleFilter{}
	if input.ScopeToIDs {
		filter.IDs = input.IDs
		if filter.IDs == nil {
			filter.IDs = []string{}
		}
	}
	return s.Repo.List(ctx, filter)
}

type UpdateArticleInput struct {
	ArticleID string
	Title     string
	Body      string
}

func (s Service) Update(ctx context.Context, input UpdateArticleInput) (entities.Article, error) {
	article, err := s.Repo.FindByID(ctx, input.ArticleID)
	if err != nil {
		return entities.Article{}, err
	}
	if strings.TrimSpace(input.Title) != "" {
		article.Title = strings.TrimSpace(input.Title)
	}
	if input.Body != "" {
		article.Body = input.Body
	}
	article.UpdatedAt = s.Clock.Now()
	return s.Repo.Update(ctx, article)
}

func (s Service) Delete(ctx context.Context, articleID string) error {
	if strings.TrimSpace(articleID) == "" {
		return domainerrors.ErrArticleNotFound
	}
	return s.Repo.Delete(ctx, articleID)
}
