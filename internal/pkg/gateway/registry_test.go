package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PayFox/app/models"
)

const testSchema = `{
	"type": "object",
	"required": ["secretKey"],
	"properties": {"secretKey": {"type": "string", "minLength": 3}}
}`

type fakeGateway struct{ name string }

func (g *fakeGateway) Name() string { return g.name }
func (g *fakeGateway) StorePaymentMethod(ctx context.Context, d MethodData) (*StoredMethod, error) {
	return &StoredMethod{ProviderMethodID: d.ProviderMethodID, Type: d.Type}, nil
}
func (g *fakeGateway) RetrievePaymentMethod(ctx context.Context, id string) (*StoredMethod, error) {
	return &StoredMethod{ProviderMethodID: id}, nil
}
func (g *fakeGateway) DeletePaymentMethod(ctx context.Context, id string) error      { return nil }
func (g *fakeGateway) ValidatePaymentMethod(ctx context.Context, d MethodData) error { return nil }

type fakeFactory struct {
	name   string
	builds int
}

func (f *fakeFactory) Name() string         { return f.name }
func (f *fakeFactory) ConfigSchema() string { return testSchema }
func (f *fakeFactory) New(config map[string]any) (Gateway, error) {
	f.builds++
	return &fakeGateway{name: f.name}, nil
}

type fakeSource map[string]*models.PaymentProvider

func (s fakeSource) FindByName(ctx context.Context, name string) (*models.PaymentProvider, error) {
	if p, ok := s[name]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func TestRegisterRejectsDuplicatesAndBadSchemas(t *testing.T) {
	r := NewRegistry(fakeSource{}, nil)
	require.NoError(t, r.Register(&fakeFactory{name: "Stripe"}))
	assert.Error(t, r.Register(&fakeFactory{name: "stripe"}))
	assert.Equal(t, []string{"stripe"}, r.Registered())

	bad := &badSchemaFactory{}
	assert.Error(t, r.Register(bad))
}

type badSchemaFactory struct{ fakeFactory }

func (badSchemaFactory) Name() string         { return "broken" }
func (badSchemaFactory) ConfigSchema() string { return `{"type": 12}` }

func TestValidateConfig(t *testing.T) {
	r := NewRegistry(fakeSource{}, nil)
	require.NoError(t, r.Register(&fakeFactory{name: "stripe"}))

	assert.NoError(t, r.ValidateConfig("stripe", map[string]any{"secretKey": "sk_test"}))
	assert.ErrorIs(t, r.ValidateConfig("stripe", nil), ErrInvalidConfig)
	assert.ErrorIs(t, r.ValidateConfig("stripe", map[string]any{"secretKey": 1}), ErrInvalidConfig)
	assert.ErrorIs(t, r.ValidateConfig("paypal", nil), ErrNotRegistered)
}

func TestGetBuildsOnceAndRefreshRebuilds(t *testing.T) {
	factory := &fakeFactory{name: "stripe"}
	source := fakeSource{
		"stripe":   {Name: "stripe", IsActive: true, Config: map[string]any{"secretKey": "sk_test"}},
		"midtrans": {Name: "midtrans", IsActive: false},
	}
	r := NewRegistry(source, nil)
	require.NoError(t, r.Register(factory))
	ctx := context.Background()

	gw, err := r.Get(ctx, "stripe")
	require.NoError(t, err)
	assert.Equal(t, "stripe", gw.Name())
	_, err = r.Get(ctx, "STRIPE")
	require.NoError(t, err)
	assert.Equal(t, 1, factory.builds)

	r.Refresh("stripe")
	_, err = r.Get(ctx, "stripe")
	require.NoError(t, err)
	assert.Equal(t, 2, factory.builds)

	r.RefreshAll()
	_, err = r.Get(ctx, "stripe")
	require.NoError(t, err)
	assert.Equal(t, 3, factory.builds)

	_, err = r.Get(ctx, "paypal")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestGetRejectsInactiveAndInvalidConfig(t *testing.T) {
	source := fakeSource{
		"midtrans": {Name: "midtrans", IsActive: false},
		"stripe":   {Name: "stripe", IsActive: true, Config: map[string]any{"secretKey": "x"}},
	}
	r := NewRegistry(source, nil)
	require.NoError(t, r.Register(&fakeFactory{name: "midtrans"}))
	require.NoError(t, r.Register(&fakeFactory{name: "stripe"}))

	_, err := r.Get(context.Background(), "midtrans")
	assert.ErrorIs(t, err, ErrProviderInactive)

	_, err = r.Get(context.Background(), "stripe")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
