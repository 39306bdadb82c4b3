package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"keystone/contexts/content/article-service/domain/entities"
	domainerrors "keystone/contexts/content/article-service/domain/errors"
	"keystone/contexts/content/article-service/ports"
)

// Store is an in-memory adapter implementing the article ports. It also
// answers contributor lookups so it can back the authorization engine's
// ownership branch in memory-wired deployments.
type Store struct {
	mu       sync.RWMutex
	articles map[string]entities.Article
}

func NewStore() *Store {
	return &Store{articles: make(map[string]entities.Article)}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) FindByID(_ context.Context, articleID string) (entities.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	article, ok := s.articles[articleID]
	if !ok {
		return entities.Article{}, domainerrors.ErrArticleNotFound
	}
	return article, nil
}

func (s *Store) List(_ context.Context, filter ports.ArticleFilter) ([]entities.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[string]bool
	if filter.IDs != nil {
		allowed = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			allowed[id] = true
		}
	}

	items := []entities.Article{}
	for _, article := range s.articles {
		if allowed != nil && !allowed[article.ArticleID] {
			continue
		}
		items = append(items, article)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ArticleID < items[j].ArticleID })
	return items, nil
}

func (s *Store) Create(_ context.Context, article entities.Article) (entities.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.ArticleID] = article
	return article, nil
}

func (s *Store) Update(_ context.Context, article entities.Article) (entities.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[article.ArticleID]; !ok {
		return entities.Article{}, domainerrors.ErrArticleNotFound
	}
	s.articles[article.ArticleID] = article
	return article, nil
}

func (s *Store) Delete(_ context.Context, articleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[articleID]; !ok {
		return domainerrors.ErrArticleNotFound
	}
	delete(s.articles, articleID)
	return nil
}

// Contributors implements the authorization engine's contributor lookup
// for the article collection.
func (s *Store) Contributors(_ context.Context, collection string, entityID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if collection != "article" {
		return nil, nil
	}
	article, ok := s.articles[entityID]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), article.Contributors...), nil
}

func (s *Store) ContributedIDs(_ context.Context, collection string, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	if collection != "article" {
		return ids, nil
	}
	for _, article := range s.articles {
		if article.HasContributor(userID) {
			ids = append(ids, article.ArticleID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
