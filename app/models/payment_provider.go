package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentProvider is a configured backend such as stripe or paypal.
// Name is a lowercase slug and never changes after creation.
type PaymentProvider struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	DisplayName string            `gorm:"type:varchar(100);not null" json:"displayName"`
	IsActive    bool              `gorm:"not null;index" json:"isActive"`
	Config      datatypes.JSONMap `json:"config,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *PaymentProvider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// NormalizeProviderName lowercases and trims a provider name.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
