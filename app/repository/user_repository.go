package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// searchLimit caps the staff directory search.
const searchLimit = 50

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates the gorm backed staff repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) staff() *gorm.DB {
	return r.db.Model(&models.User{})
}

func (r *userRepository) Create(user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail matches case-insensitively
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.staff().Where("LOWER(email) = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.Save(user).Error
}

// Delete soft deletes a staff account, ledger entries keep its id and name.
func (r *userRepository) Delete(id uint) error {
	res := r.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List pages through staff with admins first, then by name
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.staff().
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "role = ? DESC", Vars: []any{models.ROLE_ADMIN}}}).
		Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.staff().Count(&count).Error
	return count, err
}

func (r *userRepository) CountByRole(role string) (int64, error) {
	var count int64
	err := r.staff().Where("role = ?", role).Count(&count).Error
	return count, err
}

// Search matches name, email or phone
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	pattern := "%" + strings.TrimSpace(query) + "%"
	err := r.staff().
		Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(searchLimit).
		Find(&users).Error
	return users, err
}

// UpdateLastLogin stamps the last login time without touching updated_at
func (r *userRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.staff().Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
