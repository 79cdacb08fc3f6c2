package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
)

// UserRepository defines the interface for staff user database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountByRole(role string) (int64, error)
	Search(query string) ([]models.User, error)
	UpdateLastLogin(id uint, at time.Time) error
}

// ProviderAccountRepository defines the interface for linked OAuth identities
type ProviderAccountRepository interface {
	GetByProviderUserID(provider, providerUserID string) (*models.ProviderAccount, error)
	Create(account *models.ProviderAccount) error
	Update(account *models.ProviderAccount) error
	DeleteByUserID(userID uint) error
}

// Repositories holds all repository instances
type Repositories struct {
	User            UserRepository
	ProviderAccount ProviderAccountRepository
	Billing         billing.Repository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		ProviderAccount: NewProviderAccountRepository(db),
		Billing:         billing.NewRepository(db),
	}
}
