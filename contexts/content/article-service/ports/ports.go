package ports

import (
	"context"
	"time"

	"keystone/contexts/content/article-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ArticleFilter narrows List results. A nil IDs slice means no scoping;
// an empty non-nil slice matches nothing.
type ArticleFilter struct {
	IDs []string
}

// ArticleRepository is the datastore contract for the article
// collection. Contributor relations persist alongside the record so the
// authorization engine can read them.
type ArticleRepository interface {
	FindByID(ctx context.Context, articleID string) (entities.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]entities.Article, error)
	Create(ctx context.Context, article entities.Article) (entities.Article, error)
	Update(ctx context.Context, article entities.Article) (entities.Article, error)
	Delete(ctx context.Context, articleID string) error
}
