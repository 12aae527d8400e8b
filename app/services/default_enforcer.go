package services

import (
	"context"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/repository"
)

// DefaultMethodEnforcer owns every write that touches the default flag.
// Each change runs in one transaction holding a lock on the owning user row,
// so at most one active method per user is ever marked default.
type DefaultMethodEnforcer struct {
	repo repository.PaymentMethodRepository
}

func NewDefaultMethodEnforcer(repo repository.PaymentMethodRepository) *DefaultMethodEnforcer {
	return &DefaultMethodEnforcer{repo: repo}
}

// Create inserts method. When it is flagged default, every other default of the owner is cleared first.
func (e *DefaultMethodEnforcer) Create(ctx context.Context, method *models.PaymentMethod) error {
	if !method.IsActive {
		method.IsDefault = false
	}
	if !method.IsDefault {
		return e.repo.Create(ctx, method)
	}
	return e.repo.WithTx(ctx, func(tx repository.PaymentMethodRepository) error {
		if err := tx.LockOwner(ctx, method.UserID); err != nil {
			return err
		}
		if _, err := tx.ClearDefaults(ctx, method.UserID, ""); err != nil {
			return err
		}
		return tx.Create(ctx, method)
	})
}

// Promote makes the method the owner's only default. Inactive methods are rejected with a conflict.
func (e *DefaultMethodEnforcer) Promote(ctx context.Context, id, userID string) (*models.PaymentMethod, error) {
	var promoted *models.PaymentMethod
	err := e.repo.WithTx(ctx, func(tx repository.PaymentMethodRepository) error {
		if err := tx.LockOwner(ctx, userID); err != nil {
			return err
		}
		method, err := tx.GetByIDForUser(ctx, id, userID)
		if err != nil {
			return err
		}
		if !method.IsActive {
			return conflict("Inactive payment method cannot be set as default")
		}
		if _, err := tx.ClearDefaults(ctx, userID, id); err != nil {
			return err
		}
		if !method.IsDefault {
			if err := tx.MarkDefault(ctx, id); err != nil {
				return err
			}
			method.IsDefault = true
		}
		promoted = method
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// Deactivate clears the active and default flags together. No other method is promoted.
func (e *DefaultMethodEnforcer) Deactivate(ctx context.Context, id, userID string) (*models.PaymentMethod, error) {
	var deactivated *models.PaymentMethod
	err := e.repo.WithTx(ctx, func(tx repository.PaymentMethodRepository) error {
		if err := tx.LockOwner(ctx, userID); err != nil {
			return err
		}
		method, err := tx.GetByIDForUser(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := tx.Deactivate(ctx, id); err != nil {
			return err
		}
		method.IsActive = false
		method.IsDefault = false
		deactivated = method
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}
