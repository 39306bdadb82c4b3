package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	"keystone/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/authorization-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository implements the authorization datastore contract on
// PostgreSQL. Contributor relations are read from the shared
// contributors join table written by the owning collections.
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

type routeModel struct {
	RouteID                string      `gorm:"column:route_id;primaryKey"`
	Name                   string      `gorm:"column:name;uniqueIndex"`
	Controller             string      `gorm:"column:controller"`
	Action                 string      `gorm:"column:action"`
	Verb                   string      `gorm:"column:verb"`
	IsPublic               bool        `gorm:"column:is_public"`
	RegisteredAuthorized   bool        `gorm:"column:registered_authorized"`
	ContributorsAuthorized bool        `gorm:"column:contributors_authorized"`
	Roles                  []roleModel `gorm:"many2many:route_roles;foreignKey:RouteID;joinForeignKey:RouteID;References:RoleID;joinReferences:RoleID"`
}

func (routeModel) TableName() string { return "routes" }

type roleModel struct {
	RoleID string `gorm:"column:role_id;primaryKey"`
	Name   string `gorm:"column:name;uniqueIndex"`
}

func (roleModel) TableName() string { return "roles" }

type routeRoleModel struct {
	RouteID string `gorm:"column:route_id;primaryKey"`
	RoleID  string `gorm:"column:role_id;primaryKey"`
}

func (routeRoleModel) TableName() string { return "route_roles" }

type contributorModel struct {
	Collection string `gorm:"column:collection;primaryKey"`
	EntityID   string `gorm:"column:entity_id;primaryKey"`
	UserID     string `gorm:"column:user_id;primaryKey"`
}

func (contributorModel) TableName() string { return "contributors" }

func (m routeModel) toEntity() entities.Route {
	roles := make([]entities.Role, 0, len(m.Roles))
	for _, role := range m.Roles {
		roles = append(roles, entities.Role{RoleID: role.RoleID, Name: role.Name})
	}
	return entities.Route{
		RouteID:                m.RouteID,
		Name:                   m.Name,
		Controller:             m.Controller,
		Action:                 m.Action,
		Verb:                   m.Verb,
		IsPublic:               m.IsPublic,
		RegisteredAuthorized:   m.RegisteredAuthorized,
		ContributorsAuthorized: m.ContributorsAuthorized,
		Roles:                  roles,
	}
}

func fromRoute(route entities.Route) routeModel {
	return routeModel{
		RouteID:                route.RouteID,
		Name:                   route.Name,
		Controller:             route.Controller,
		Action:                 route.Action,
		Verb:                   route.Verb,
		IsPublic:               route.IsPublic,
		RegisteredAuthorized:   route.RegisteredAuthorized,
		ContributorsAuthorized: route.ContributorsAuthorized,
	}
}

func (r *Repository) FindRouteByName(ctx context.Context, name string) (entities.Route, error) {
	var row routeModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("name = ?", name).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Route{}, domainerrors.ErrRouteNotFound
		}
		return entities.Route{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRoutes(ctx context.Context) ([]entities.Route, error) {
	var rows []routeModel
	err := r.db.WithContext(ctx).Preload("Roles").Order("name").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Route, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateRoute(ctx context.Context, route entities.Route) (entities.Route, error) {
	row := fromRoute(route)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Route{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateRoute(ctx context.Context, route entities.Route) (entities.Route, error) {
	row := fromRoute(route)
	result := r.db.WithContext(ctx).
		Model(&routeModel{}).
		Where("route_id = ?", route.RouteID).
		Updates(map[string]any{
			"name":                    row.Name,
			"controller":              row.Controller,
			"action":                  row.Action,
			"verb":                    row.Verb,
			"is_public":               row.IsPublic,
			"registered_authorized":   row.RegisteredAuthorized,
			"contributors_authorized": row.ContributorsAuthorized,
		})
	if result.Error != nil {
		return entities.Route{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Route{}, domainerrors.ErrRouteNotFound
	}
	return r.FindRouteByName(ctx, route.Name)
}

func (r *Repository) DeleteRoute(ctx context.Context, routeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", routeID).Delete(&routeRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("route_id = ?", routeID).Delete(&routeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRouteNotFound
		}
		return nil
	})
}

func (r *Repository) AttachRole(ctx context.Context, routeID string, roleID string) error {
	err := r.db.WithContext(ctx).Create(&routeRoleModel{RouteID: routeID, RoleID: roleID}).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *Repository) FindRoleByName(ctx context.Context, name string) (entities.Role, error) {
	var row roleModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Role{}, domainerrors.ErrRoleNotFound
		}
		return entities.Role{}, err
	}
	return entities.Role{RoleID: row.RoleID, Name: row.Name}, nil
}

func (r *Repository) CreateRole(ctx context.Context, role entities.Role) (entities.Role, error) {
	row := roleModel{RoleID: role.RoleID, Name: role.Name}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return r.FindRoleByName(ctx, role.Name)
		}
		return entities.Role{}, err
	}
	return role, nil
}

func (r *Repository) Contributors(ctx context.Context, collection string, entityID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&contributorModel{}).
		Where("collection = ? AND entity_id = ?", collection, entityID).
		Pluck("user_id", &ids).
		Error
	return ids, err
}

func (r *Repository) ContributedIDs(ctx context.Context, collection string, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&contributorModel{}).
		Where("collection = ? AND user_id = ?", collection, userID).
		Order("entity_id").
		Pluck("entity_id", &ids).
		Error
	return ids, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
