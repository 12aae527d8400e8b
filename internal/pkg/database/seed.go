package database

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/app/models"
)

// SeedResult reports what Seed created or found.
type SeedResult struct {
	Users          []models.User
	Providers      []models.PaymentProvider
	PaymentMethods []models.PaymentMethod
}

type seedUser struct {
	name, phone, email, apiKey string
}

type seedMethod struct {
	user, provider, providerMethodID string
	kind                             models.PaymentMethodType
	last4, brand                     string
	expiryMonth, expiryYear          int
	isDefault                        bool
	metadata                         datatypes.JSONMap
}

var seedUsers = []seedUser{
	{name: "John Doe", phone: "081234567890", email: "john.doe@example.com", apiKey: "test-api-key-1"},
	{name: "Jane Smith", phone: "081987654321", email: "jane.smith@example.com", apiKey: "test-api-key-2"},
	{name: "Ahmad Wijaya", phone: "082111222333", email: "ahmad.wijaya@example.com"},
	{name: "Siti Nurhaliza", phone: "085444555666"},
}

var seedProviders = []models.PaymentProvider{
	{Name: "stripe", DisplayName: "Stripe", IsActive: true, Config: datatypes.JSONMap{"secretKey": "sk_test_...", "webhookSecret": "whsec_..."}},
	{Name: "paypal", DisplayName: "PayPal", IsActive: true, Config: datatypes.JSONMap{"clientId": "test_client_id", "clientSecret": "test_client_secret", "sandbox": true}},
	{Name: "midtrans", DisplayName: "Midtrans", IsActive: true, Config: datatypes.JSONMap{"serverKey": "SB-Mid-server-...", "clientKey": "SB-Mid-client-...", "environment": "sandbox"}},
}

var seedMethods = []seedMethod{
	{user: "081234567890", provider: "stripe", providerMethodID: "pm_1234567890", kind: models.PaymentMethodTypeCreditCard,
		last4: "4242", brand: "visa", expiryMonth: 12, expiryYear: 2030, isDefault: true,
		metadata: datatypes.JSONMap{"fingerprint": "F1234567890ABCDEF", "country": "US"}},
	{user: "081234567890", provider: "paypal", providerMethodID: "PAYPAL-ACCOUNT-1", kind: models.PaymentMethodTypeDigitalWallet,
		metadata: datatypes.JSONMap{"email": "john.doe@example.com", "payerId": "PAYPAL-PAYER-ID-1"}},
	{user: "081987654321", provider: "stripe", providerMethodID: "pm_0987654321", kind: models.PaymentMethodTypeDebitCard,
		last4: "5555", brand: "mastercard", expiryMonth: 8, expiryYear: 2031, isDefault: true,
		metadata: datatypes.JSONMap{"fingerprint": "F0987654321FEDCBA", "country": "US"}},
	{user: "081987654321", provider: "midtrans", providerMethodID: "BCA-VA-12345", kind: models.PaymentMethodTypeBankAccount,
		metadata: datatypes.JSONMap{"bankName": "BCA", "accountNumber": "1234567890", "accountHolder": "Jane Smith"}},
}

// Seed inserts demo users, providers and payment methods. Existing rows, matched
// by their unique keys, are left untouched so it can run repeatedly.
func Seed(ctx context.Context, db *gorm.DB) (*SeedResult, error) {
	res := &SeedResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usersByPhone := make(map[string]string, len(seedUsers))
		for _, su := range seedUsers {
			u := models.User{Name: su.name, Phone: su.phone}
			if su.email != "" {
				email := su.email
				u.Email = &email
			}
			if su.apiKey != "" {
				hash := models.HashAPIKey(su.apiKey)
				u.APIKeyHash = &hash
			}
			if err := tx.Where(models.User{Phone: su.phone}).FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", su.phone, err)
			}
			usersByPhone[su.phone] = u.ID
			res.Users = append(res.Users, u)
		}

		providersByName := make(map[string]string, len(seedProviders))
		for _, sp := range seedProviders {
			p := sp
			if err := tx.Where(models.PaymentProvider{Name: sp.Name}).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed provider %s: %w", sp.Name, err)
			}
			providersByName[sp.Name] = p.ID
			res.Providers = append(res.Providers, p)
		}

		for _, sm := range seedMethods {
			m := models.PaymentMethod{
				UserID:           usersByPhone[sm.user],
				ProviderID:       providersByName[sm.provider],
				ProviderMethodID: sm.providerMethodID,
				Type:             sm.kind,
				IsActive:         true,
				IsDefault:        sm.isDefault,
				Metadata:         sm.metadata,
			}
			if sm.last4 != "" {
				last4, brand := sm.last4, sm.brand
				month, year := sm.expiryMonth, sm.expiryYear
				m.Last4, m.Brand = &last4, &brand
				m.ExpiryMonth, m.ExpiryYear = &month, &year
			}
			lookup := models.PaymentMethod{UserID: m.UserID, ProviderID: m.ProviderID, ProviderMethodID: m.ProviderMethodID}
			if err := tx.Where(lookup).FirstOrCreate(&m).Error; err != nil {
				return fmt.Errorf("seed payment method %s: %w", sm.providerMethodID, err)
			}
			res.PaymentMethods = append(res.PaymentMethods, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[Database] seeded %d users, %d providers, %d payment methods",
		len(res.Users), len(res.Providers), len(res.PaymentMethods))
	return res, nil
}
