package cache

import "time"

const (
	TTLUser               = 30 * time.Minute
	TTLUserAPIKey         = time.Hour
	TTLProvider           = 30 * time.Minute
	TTLActiveProviders    = 30 * time.Minute
	TTLUserPaymentMethods = 10 * time.Minute
)

// KeyActiveProviders holds the list of active providers ordered by name.
const KeyActiveProviders = "providers:all"

func UserKey(id string) string {
	return "user:" + id
}

// UserPrefix matches the user entry and every aggregate derived from that user.
func UserPrefix(id string) string {
	return "user:" + id
}

// UserAPIKeyKey is keyed by the key hash, never the raw key.
func UserAPIKeyKey(apiKeyHash string) string {
	return "user:apikey:" + apiKeyHash
}

func UserPaymentMethodsKey(userID string) string {
	return "user:" + userID + ":payment-methods"
}

func ProviderKey(id string) string {
	return "provider:" + id
}

// PatternAllUserPaymentMethods matches every user's cached payment method list.
const PatternAllUserPaymentMethods = "user:*:payment-methods"
