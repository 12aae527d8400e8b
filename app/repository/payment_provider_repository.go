package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/app/models"
)

// paymentProviderRepository implements the PaymentProviderRepository interface
type paymentProviderRepository struct {
	db *gorm.DB
}

// NewPaymentProviderRepository creates a new payment provider repository instance
func NewPaymentProviderRepository(db *gorm.DB) PaymentProviderRepository {
	return &paymentProviderRepository{db: db}
}

func (r *paymentProviderRepository) Create(ctx context.Context, provider *models.PaymentProvider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *paymentProviderRepository) GetByID(ctx context.Context, id string) (*models.PaymentProvider, error) {
	var provider models.PaymentProvider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *paymentProviderRepository) GetByName(ctx context.Context, name string) (*models.PaymentProvider, error) {
	var provider models.PaymentProvider
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// Update persists display name, active flag and config. The name column is never written.
func (r *paymentProviderRepository) Update(ctx context.Context, provider *models.PaymentProvider) error {
	return r.db.WithContext(ctx).Model(provider).Select("display_name", "is_active", "config").Updates(provider).Error
}

func (r *paymentProviderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PaymentProvider{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves providers matching the filter, newest first
func (r *paymentProviderRepository) List(ctx context.Context, filter PaymentProviderFilter, offset, limit int) ([]models.PaymentProvider, error) {
	var providers []models.PaymentProvider
	err := r.scope(ctx, filter).Order("created_at DESC").Offset(offset).Limit(limit).Find(&providers).Error
	return providers, err
}

func (r *paymentProviderRepository) Count(ctx context.Context, filter PaymentProviderFilter) (int64, error) {
	var count int64
	err := r.scope(ctx, filter).Count(&count).Error
	return count, err
}

// GetActive returns every active provider ordered by name
func (r *paymentProviderRepository) GetActive(ctx context.Context) ([]models.PaymentProvider, error) {
	var providers []models.PaymentProvider
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&providers).Error
	return providers, err
}

// CountPaymentMethods counts payment methods of any state referencing the provider
func (r *paymentProviderRepository) CountPaymentMethods(ctx context.Context, providerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("provider_id = ?", providerID).Count(&count).Error
	return count, err
}

func (r *paymentProviderRepository) scope(ctx context.Context, filter PaymentProviderFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.PaymentProvider{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	return q
}
