package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository implements the identity datastore contract on PostgreSQL.
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

type userModel struct {
	UserID    string      `gorm:"column:user_id;primaryKey"`
	Email     string      `gorm:"column:email;uniqueIndex"`
	Username  string      `gorm:"column:username;uniqueIndex"`
	Password  string      `gorm:"column:password"`
	Roles     []roleModel `gorm:"many2many:user_roles;foreignKey:UserID;joinForeignKey:UserID;References:RoleID;joinReferences:RoleID"`
	CreatedAt time.Time   `gorm:"column:created_at"`
	UpdatedAt time.Time   `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type roleModel struct {
	RoleID string `gorm:"column:role_id;primaryKey"`
	Name   string `gorm:"column:name;uniqueIndex"`
}

func (roleModel) TableName() string { return "roles" }

type userRoleModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	RoleID string `gorm:"column:role_id;primaryKey"`
}

func (userRoleModel) TableName() string { return "user_roles" }

type passportModel struct {
	PassportID  string    `gorm:"column:passport_id;primaryKey"`
	Protocol    string    `gorm:"column:protocol"`
	Provider    string    `gorm:"column:provider"`
	Identifier  string    `gorm:"column:identifier"`
	AccessToken string    `gorm:"column:access_token"`
	TokenSecret string    `gorm:"column:token_secret"`
	Password    string    `gorm:"column:password"`
	ResetCode   string    `gorm:"column:reset_code"`
	UserID      string    `gorm:"column:user_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (passportModel) TableName() string { return "passports" }

func (m userModel) toEntity() entities.User {
	roles := make([]entities.Role, 0, len(m.Roles))
	for _, role := range m.Roles {
		roles = append(roles, entities.Role{RoleID: role.RoleID, Name: role.Name})
	}
	return entities.User{
		UserID:    m.UserID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		Roles:     roles,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromUser(user entities.User) userModel {
	return userModel{
		UserID:    user.UserID,
		Email:     user.Email,
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (m passportModel) toEntity() entities.Passport {
	return entities.Passport{
		PassportID:  m.PassportID,
		Protocol:    m.Protocol,
		Provider:    m.Provider,
		Identifier:  m.Identifier,
		AccessToken: m.AccessToken,
		TokenSecret: m.TokenSecret,
		Password:    m.Password,
		ResetCode:   m.ResetCode,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromPassport(passport entities.Passport) passportModel {
	return passportModel{
		PassportID:  passport.PassportID,
		Protocol:    passport.Protocol,
		Provider:    passport.Provider,
		Identifier:  passport.Identifier,
		AccessToken: passport.AccessToken,
		TokenSecret: passport.TokenSecret,
		Password:    passport.Password,
		ResetCode:   passport.ResetCode,
		UserID:      passport.UserID,
		CreatedAt:   passport.CreatedAt,
		UpdatedAt:   passport.UpdatedAt,
	}
}

func (r *Repository) findUser(ctx context.Context, query string, args ...any) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where(query, args...).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (entities.User, error) {
	return r.findUser(ctx, "user_id = ?", userID)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (entities.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

func (r *Repository) List(ctx context.Context, filter ports.UserFilter) ([]entities.User, error) {
	tx := r.db.WithContext(ctx).Preload("Roles").Order("user_id")
	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return []entities.User{}, nil
		}
		tx = tx.Where("user_id IN ?", filter.IDs)
	}

	var rows []userModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userModel{}).Count(&count).Error
	return count, err
}

func (r *Repository) Create(ctx context.Context, user entities.User) (entities.User, error) {
	row := fromUser(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.User{}, domainerrors.ErrDuplicateIdentity
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) Update(ctx context.Context, user entities.User) (entities.User, error) {
	row := fromUser(user)
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]any{
			"email":      row.Email,
			"username":   row.Username,
			"password":   row.Password,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return entities.User{}, domainerrors.ErrDuplicateIdentity
		}
		return entities.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return r.FindByID(ctx, user.UserID)
}

func (r *Repository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&userRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ?", userID).Delete(&userModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrUserNotFound
		}
		return nil
	})
}

func (r *Repository) AssignRole(ctx context.Context, userID string, roleID string) error {
	err := r.db.WithContext(ctx).Create(&userRoleModel{UserID: userID, RoleID: roleID}).Error
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

func (r *Repository) findPassport(ctx context.Context, query string, args ...any) (entities.Passport, error) {
	var row passportModel
	err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Passport{}, domainerrors.ErrPassportNotFound
		}
		return entities.Passport{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByProviderIdentifier(ctx context.Context, provider string, identifier string) (entities.Passport, error) {
	return r.findPassport(ctx, "provider = ? AND identifier = ?", provider, identifier)
}

func (r *Repository) FindLocalByUserID(ctx context.Context, userID string) (entities.Passport, error) {
	return r.findPassport(ctx, "user_id = ? AND protocol = ?", userID, entities.ProtocolLocal)
}

func (r *Repository) FindByResetCode(ctx context.Context, code string) (entities.Passport, error) {
	if code == "" {
		return entities.Passport{}, domainerrors.ErrPassportNotFound
	}
	return r.findPassport(ctx, "reset_code = ?", code)
}

func (r *Repository) CreatePassport(ctx context.Context, passport entities.Passport) (entities.Passport, error) {
	row := fromPassport(passport)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Passport{}, domainerrors.ErrDuplicateIdentity
		}
		return entities.Passport{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdatePassport(ctx context.Context, passport entities.Passport) (entities.Passport, error) {
	row := fromPassport(passport)
	result := r.db.WithContext(ctx).
		Model(&passportModel{}).
		Where("passport_id = ?", passport.PassportID).
		Updates(map[string]any{
			"access_token": row.AccessToken,
			"token_secret": row.TokenSecret,
			"password":     row.Password,
			"reset_code":   row.ResetCode,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		return entities.Passport{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Passport{}, domainerrors.ErrPassportNotFound
	}
	return passport, nil
}

func (r *Repository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&passportModel{}).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
