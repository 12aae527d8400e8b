// Package gateway is the extension point for payment provider backends.
// A backend registers a Factory under the provider name; the Registry builds
// one Gateway per active provider from the provider's stored config.
package gateway

import "context"

// MethodData is what a backend receives when asked to store or validate a payment method.
type MethodData struct {
	UserID           string
	ProviderMethodID string
	Type             string
	Last4            *string
	ExpiryMonth      *int
	ExpiryYear       *int
	Brand            *string
	Metadata         map[string]any
}

// StoredMethod is the backend's view of a payment method.
type StoredMethod struct {
	ProviderMethodID string
	Type             string
	Last4            string
	Brand            string
	ExpiryMonth      int
	ExpiryYear       int
	Metadata         map[string]any
}

// Gateway talks to one configured payment provider.
type Gateway interface {
	Name() string
	StorePaymentMethod(ctx context.Context, data MethodData) (*StoredMethod, error)
	RetrievePaymentMethod(ctx context.Context, providerMethodID string) (*StoredMethod, error)
	DeletePaymentMethod(ctx context.Context, providerMethodID string) error
	ValidatePaymentMethod(ctx context.Context, data MethodData) error
}

// Factory builds gateways for one provider name.
type Factory interface {
	Name() string
	// ConfigSchema returns the JSON schema the provider config must satisfy.
	ConfigSchema() string
	New(config map[string]any) (Gateway, error)
}
