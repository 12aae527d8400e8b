package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/app/models"
)

// UserFilter narrows user listings. Search matches name, phone or email.
type UserFilter struct {
	Search string
}

// PaymentProviderFilter narrows provider listings.
type PaymentProviderFilter struct {
	ActiveOnly bool
}

// PaymentMethodFilter narrows a user's payment method listing. Empty fields do not filter.
type PaymentMethodFilter struct {
	UserID     string
	Type       models.PaymentMethodType
	IsActive   *bool
	ProviderID string
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetAPIKeyHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]models.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
}

// PaymentProviderRepository defines the interface for payment provider database operations
type PaymentProviderRepository interface {
	Create(ctx context.Context, provider *models.PaymentProvider) error
	GetByID(ctx context.Context, id string) (*models.PaymentProvider, error)
	GetByName(ctx context.Context, name string) (*models.PaymentProvider, error)
	Update(ctx context.Context, provider *models.PaymentProvider) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PaymentProviderFilter, offset, limit int) ([]models.PaymentProvider, error)
	Count(ctx context.Context, filter PaymentProviderFilter) (int64, error)
	GetActive(ctx context.Context) ([]models.PaymentProvider, error)
	CountPaymentMethods(ctx context.Context, providerID string) (int64, error)
}

// PaymentMethodRepository defines the interface for payment method database operations.
// Methods called on the repository passed to WithTx run inside that transaction.
type PaymentMethodRepository interface {
	WithTx(ctx context.Context, fn func(tx PaymentMethodRepository) error) error
	LockOwner(ctx context.Context, userID string) error
	Create(ctx context.Context, method *models.PaymentMethod) error
	GetByID(ctx context.Context, id string) (*models.PaymentMethod, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*models.PaymentMethod, error)
	GetByProviderMethodID(ctx context.Context, providerMethodID, userID string) (*models.PaymentMethod, error)
	Update(ctx context.Context, method *models.PaymentMethod) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PaymentMethodFilter, offset, limit int) ([]models.PaymentMethod, error)
	Count(ctx context.Context, filter PaymentMethodFilter) (int64, error)
	GetActiveForUser(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	GetDefaultForUser(ctx context.Context, userID string) (*models.PaymentMethod, error)
	ClearDefaults(ctx context.Context, userID, exceptID string) (int64, error)
	MarkDefault(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

// Repositories holds all repository instances
type Repositories struct {
	User            UserRepository
	PaymentProvider PaymentProviderRepository
	PaymentMethod   PaymentMethodRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		PaymentProvider: NewPaymentProviderRepository(db),
		PaymentMethod:   NewPaymentMethodRepository(db),
	}
}
