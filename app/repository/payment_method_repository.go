package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PayFox/app/models"
)

// paymentMethodRepository implements the PaymentMethodRepository interface
type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository instance
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

// WithTx runs fn inside a transaction; the repository handed to fn is bound to it.
func (r *paymentMethodRepository) WithTx(ctx context.Context, fn func(tx PaymentMethodRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&paymentMethodRepository{db: tx})
	})
}

// LockOwner takes a row lock on the owning user for the rest of the transaction.
// Default changes for one user are serialised on this lock.
func (r *paymentMethodRepository) LockOwner(ctx context.Context, userID string) error {
	q := r.db.WithContext(ctx)
	// SQLite has no row locks; its single writer already serialises transactions.
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var owner models.User
	return q.Select("id").Where("id = ?", userID).Take(&owner).Error
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(method).Error
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.withProvider(ctx).Where("id = ?", id).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetByIDForUser only finds methods owned by userID.
func (r *paymentMethodRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.withProvider(ctx).Where("id = ? AND user_id = ?", id, userID).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *paymentMethodRepository) GetByProviderMethodID(ctx context.Context, providerMethodID, userID string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).Where("provider_method_id = ? AND user_id = ?", providerMethodID, userID).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// Update writes the descriptive fields only; owner, provider and flags are left untouched.
func (r *paymentMethodRepository) Update(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Model(method).
		Select("type", "last4", "expiry_month", "expiry_year", "brand", "metadata").
		Updates(method).Error
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PaymentMethod{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns methods matching the filter, default first, then newest first.
func (r *paymentMethodRepository) List(ctx context.Context, filter PaymentMethodFilter, offset, limit int) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.scope(r.withProvider(ctx), filter).
		Order("is_default DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepository) Count(ctx context.Context, filter PaymentMethodFilter) (int64, error) {
	var count int64
	err := r.scope(r.db.WithContext(ctx), filter).Model(&models.PaymentMethod{}).Count(&count).Error
	return count, err
}

// GetActiveForUser returns all active methods of a user, default first.
func (r *paymentMethodRepository) GetActiveForUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.withProvider(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("is_default DESC").Order("created_at DESC").
		Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepository) GetDefaultForUser(ctx context.Context, userID string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.withProvider(ctx).
		Where("user_id = ? AND is_default = ? AND is_active = ?", userID, true, true).
		First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// ClearDefaults unsets the default flag on every method of the user except exceptID.
func (r *paymentMethodRepository) ClearDefaults(ctx context.Context, userID, exceptID string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	res := q.Update("is_default", false)
	return res.RowsAffected, res.Error
}

// MarkDefault sets the default flag on an active method.
func (r *paymentMethodRepository) MarkDefault(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate clears both the active and the default flag.
func (r *paymentMethodRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "is_default": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// withProvider preloads the public provider columns. Provider config never leaves through this path.
func (r *paymentMethodRepository) withProvider(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Provider", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "display_name", "is_active")
	})
}

func (r *paymentMethodRepository) scope(q *gorm.DB, filter PaymentMethodFilter) *gorm.DB {
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ProviderID != "" {
		q = q.Where("provider_id = ?", filter.ProviderID)
	}
	return q
}
