package user

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/pkg"
)

const notFoundMessage = "user not found"

// listConfig exposes users to the list engine. Search covers name and email.
var listConfig = pkg.ListConfig{
	SearchColumns: []clause.Column{pkg.Column("name"), pkg.Column("email")},
	SortColumns: map[string]clause.Column{
		"name":      pkg.Column("name"),
		"email":     pkg.Column("email"),
		"role":      pkg.Column("role"),
		"createdAt": pkg.Column("created_at"),
		"updatedAt": pkg.Column("updated_at"),
	},
	DefaultSort: "createdAt",
}

// errOwnsBots is returned when deleting a user that still owns bots.
var errOwnsBots = domain.NewAppError(domain.CodeAlreadyExists, "user still owns bots", nil)

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

// GetByID retrieves a user by its primary key.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return &user, nil
}

// List returns one page of users.
func (r *userRepository) List(ctx context.Context, q domain.ListQuery) (*domain.ListResult[domain.User], error) {
	result, err := pkg.PaginatedList[domain.User](ctx, r.db, q, listConfig)
	if err != nil {
		return nil, pkg.MapDBError(err, notFoundMessage)
	}
	return result, nil
}

// Update saves changes to an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	return nil
}

// Delete removes a user by ID. Users that still own bots cannot be deleted.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	var deleted int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		n, err := deleteUsers(tx, []string{id})
		deleted = n
		return err
	})
	if err != nil {
		return pkg.MapDBError(err, notFoundMessage)
	}
	if deleted == 0 {
		return domain.NotFound(notFoundMessage)
	}
	return nil
}

// DeleteMany removes the given users and reports how many rows were deleted.
// The whole batch is rejected when any of them still owns bots.
func (r *userRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		n, err := deleteUsers(tx, ids)
		deleted = n
		return err
	})
	if err != nil {
		return 0, pkg.MapDBError(err, notFoundMessage)
	}
	return deleted, nil
}

func deleteUsers(tx *gorm.DB, ids []string) (int64, error) {
	var owned int64
	if err := tx.Model(&domain.Bot{}).Where("user_id IN ?", ids).Count(&owned).Error; err != nil {
		return 0, err
	}
	if owned > 0 {
		return 0, errOwnsBots
	}
	result := tx.Where("id IN ?", ids).Delete(&domain.User{})
	return result.RowsAffected, result.Error
}
