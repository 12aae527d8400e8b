package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentMethodType string

const (
	PaymentMethodTypeCreditCard    PaymentMethodType = "CREDIT_CARD"
	PaymentMethodTypeDebitCard     PaymentMethodType = "DEBIT_CARD"
	PaymentMethodTypeBankAccount   PaymentMethodType = "BANK_ACCOUNT"
	PaymentMethodTypeDigitalWallet PaymentMethodType = "DIGITAL_WALLET"
	PaymentMethodTypeOther         PaymentMethodType = "OTHER"
)

// PaymentMethodTypes lists every accepted type, in validator "oneof" order.
var PaymentMethodTypes = []PaymentMethodType{
	PaymentMethodTypeCreditCard,
	PaymentMethodTypeDebitCard,
	PaymentMethodTypeBankAccount,
	PaymentMethodTypeDigitalWallet,
	PaymentMethodTypeOther,
}

func (t PaymentMethodType) Valid() bool {
	for _, known := range PaymentMethodTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PaymentMethod is a user's stored reference to an instrument held by a provider.
// At most one active method per user has IsDefault set; an inactive method is never default.
type PaymentMethod struct {
	ID               string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProviderID       string            `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_payment_methods_owner_tuple,priority:1" json:"providerId"`
	ProviderMethodID string            `gorm:"type:varchar(191);not null;uniqueIndex:idx_payment_methods_owner_tuple,priority:2" json:"providerMethodId"`
	UserID           string            `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_payment_methods_owner_tuple,priority:3" json:"userId"`
	Type             PaymentMethodType `gorm:"type:varchar(20);not null;index" json:"type"`
	Last4            *string           `gorm:"type:varchar(4)" json:"last4,omitempty"`
	ExpiryMonth      *int              `json:"expiryMonth,omitempty"`
	ExpiryYear       *int              `json:"expiryYear,omitempty"`
	Brand            *string           `gorm:"type:varchar(50)" json:"brand,omitempty"`
	IsActive         bool              `gorm:"not null;index" json:"isActive"`
	IsDefault        bool              `gorm:"not null" json:"isDefault"`
	Metadata         datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`

	User     *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Provider *PaymentProvider `gorm:"foreignKey:ProviderID;constraint:OnDelete:RESTRICT" json:"provider,omitempty"`
}

func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
