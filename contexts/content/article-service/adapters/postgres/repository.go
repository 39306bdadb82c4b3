package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"keystone/contexts/content/article-service/domain/entities"
	domainerrors "keystone/contexts/content/article-service/domain/errors"
	"keystone/contexts/content/article-service/ports"

	"gorm.io/gorm"
)

const collectionName = "article"

// Repository implements the article datastore contract on PostgreSQL.
// Contributor relations live in the shared contributors table read by
// the authorization engine.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type articleModel struct {
	ArticleID string    `gorm:"column:article_id;primaryKey"`
	Title     string    `gorm:"column:title"`
	Body      string    `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (articleModel) TableName() string { return "articles" }

type contributorModel struct {
	Collection string `gorm:"column:collection;primaryKey"`
	EntityID   string `gorm:"column:entity_id;primaryKey"`
	UserID     string `gorm:"column:user_id;primaryKey"`
}

func (contributorModel) TableName() string { return "contributors" }

func (m articleModel) toEntity(contributors []string) entities.Article {
	return entities.Article{
		ArticleID:    m.ArticleID,
		Title:        m.Title,
		Body:         m.Body,
		Contributors: contributors,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromArticle(article entities.Article) articleModel {
	return articleModel{
		ArticleID: article.ArticleID,
		Title:     article.Title,
		Body:      article.Body,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}

func (r *Repository) contributorsOf(ctx context.Context, tx *gorm.DB, articleID string) ([]string, error) {
	var ids []string
	err := tx.WithContext(ctx).
		Model(&contributorModel{}).
		Where("collection = ? AND entity_id = ?", collectionName, articleID).
		Order("user_id").
		Pluck("user_id", &ids).
		Error
	return ids, err
}

func (r *Repository) FindByID(ctx context.Context, articleID string) (entities.Article, error) {
	var row articleModel
	err := r.db.WithContext(ctx).Where("article_id = ?", articleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Article{}, domainerrors.ErrArticleNotFound
		}
		return entities.Article{}, err
	}
	contributors, err := r.contributorsOf(ctx, r.db, articleID)
	if err != nil {
		return entities.Article{}, err
	}
	return row.toEntity(contributors), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ArticleFilter) ([]entities.Article, error) {
	tx := r.db.WithContext(ctx).Order("article_id")
	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return []entities.Article{}, nil
		}
		tx = tx.Where("article_id IN ?", filter.IDs)
	}

	var rows []articleModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Article, 0, len(rows))
	for _, row := range rows {
		contributors, err := r.contributorsOf(ctx, r.db, row.ArticleID)
		if err != nil {
			return nil, err
		}
		items = append(items, row.toEntity(contributors))
	}
	return items, nil
}

func (r *Repository) Create(ctx context.Context, article entities.Article) (entities.Article, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := fromArticle(article)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, userID := range article.Contributors {
			link := contributorModel{Collection: collectionName, EntityID: article.ArticleID, UserID: userID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Article{}, err
	}
	return article, nil
}

func (r *Repository) Update(ctx context.Context, article entities.Article) (entities.Article, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&articleModel{}).
			Where("article_id = ?", article.ArticleID).
			Updates(map[string]any{
				"title":      article.Title,
				"body":       article.Body,
				"updated_at": article.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrArticleNotFound
		}

		// Contributor links are replaced wholesale to match the entity.
		if err := tx.Where("collection = ? AND entity_id = ?", collectionName, article.ArticleID).
			Delete(&contributorModel{}).Error; err != nil {
			return err
		}
		for _, userID := range article.Contributors {
			link := contributorModel{Collection: collectionName, EntityID: article.ArticleID, UserID: userID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Article{}, err
	}
	return article, nil
}

func (r *Repository) Delete(ctx context.Context, articleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ? AND entity_id = ?", collectionName, articleID).
			Delete(&contributorModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("article_id = ?", articleID).Delete(&articleModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrArticleNotFound
		}
		return nil
	})
}
