package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/internal/pkg/validation"
)

const apiKeyPrefix = "pk_"

type User struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"nama" validate:"required,min=2,max=100"`
	Phone      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"telp" validate:"required,telp"`
	Email      *string   `gorm:"type:varchar(200);uniqueIndex" json:"email,omitempty" validate:"omitempty,email,max=200"`
	APIKeyHash *string   `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not choose one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) Validate() error {
	return validation.Struct(u)
}

func (u *User) HasAPIKey() bool {
	return u.APIKeyHash != nil && *u.APIKeyHash != ""
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey returns a new raw key and its hash. Only the hash is persisted.
func GenerateAPIKey() (string, string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw := apiKeyPrefix + hex.EncodeToString(b)
	return raw, HashAPIKey(raw), nil
}
