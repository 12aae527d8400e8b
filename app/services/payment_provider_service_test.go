package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/gateway"
)

func pageReq(page, size int) repository.PageRequest {
	return repository.PageRequest{Page: page, PageSize: size}
}

func TestCreateProviderNormalizesAndRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.providers.Create(ctx, CreatePaymentProviderInput{Name: "  Stripe ", DisplayName: "Stripe"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name)
	assert.True(t, p.IsActive, "active unless stated otherwise")

	_, err = env.providers.Create(ctx, CreatePaymentProviderInput{Name: "STRIPE", DisplayName: "Stripe again"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.providers.Create(ctx, CreatePaymentProviderInput{Name: "bad name!", DisplayName: "Bad"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProviderUpdateIsVisibleThroughCachedReads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stripe := env.createProvider(t, "stripe")
	env.createProvider(t, "paypal")

	_, err := env.providers.FindByID(ctx, stripe.ID)
	require.NoError(t, err)
	active, err := env.providers.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.True(t, env.redis.Exists(cache.ProviderKey(stripe.ID)))
	assert.True(t, env.redis.Exists(cache.KeyActiveProviders))

	_, err = env.providers.Update(ctx, stripe.ID, UpdatePaymentProviderInput{DisplayName: ptr("Stripe Payments")})
	require.NoError(t, err)

	byID, err := env.providers.FindByID(ctx, stripe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stripe Payments", byID.DisplayName)

	active, err = env.providers.ListActive(ctx)
	require.NoError(t, err)
	names := map[string]string{}
	for _, p := range active {
		names[p.Name] = p.DisplayName
	}
	assert.Equal(t, "Stripe Payments", names["stripe"])

	toggled, err := env.providers.ToggleActive(ctx, stripe.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	active, err = env.providers.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "paypal", active[0].Name)
}

func TestProviderUpdateInvalidatesCachedMethodLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stripe := env.createProvider(t, "stripe")
	user := env.createUser(t, "John", "081234567890")
	env.createMethod(t, user.ID, stripe.ID, "pm_1", true)

	_, err := env.methods.ListActive(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, env.redis.Exists(cache.UserPaymentMethodsKey(user.ID)))

	_, err = env.providers.Update(ctx, stripe.ID, UpdatePaymentProviderInput{DisplayName: ptr("Stripe Inc")})
	require.NoError(t, err)
	assert.False(t, env.redis.Exists(cache.UserPaymentMethodsKey(user.ID)))

	active, err := env.methods.ListActive(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Stripe Inc", active[0].Provider.DisplayName)
}

func TestProviderNameIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stripe := env.createProvider(t, "stripe")

	_, err := env.providers.Update(ctx, stripe.ID, UpdatePaymentProviderInput{Name: ptr("paypal")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.providers.Update(ctx, stripe.ID, UpdatePaymentProviderInput{Name: ptr("Stripe"), DisplayName: ptr("Stripe!")})
	assert.NoError(t, err)

	_, err = env.providers.Update(ctx, "missing", UpdatePaymentProviderInput{DisplayName: ptr("Nope")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProviderGuardedByReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stripe := env.createProvider(t, "stripe")
	user := env.createUser(t, "John", "081234567890")
	m := env.createMethod(t, user.ID, stripe.ID, "pm_1", false)

	// inactive methods still count
	_, err := env.methods.Deactivate(ctx, m.ID, user.ID)
	require.NoError(t, err)

	err = env.providers.Delete(ctx, stripe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	count, err := env.providers.PaymentMethodsCount(ctx, stripe.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, env.methods.Delete(ctx, m.ID, user.ID))
	require.NoError(t, env.providers.Delete(ctx, stripe.ID))

	_, err = env.providers.FindByID(ctx, stripe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.providers.Delete(ctx, stripe.ID), ErrNotFound)
}

func TestListProviders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createProvider(t, "stripe")
	_, err := env.providers.Create(ctx, CreatePaymentProviderInput{Name: "midtrans", DisplayName: "Midtrans", IsActive: ptr(false)})
	require.NoError(t, err)

	all, err := env.providers.List(ctx, ListPaymentProvidersParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	active, err := env.providers.List(ctx, ListPaymentProvidersParams{ActiveOnly: true, PageRequest: pageReq(1, 1)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, active.Total)
	assert.Equal(t, 1, active.Pages)

	byName, err := env.providers.FindByName(ctx, "MIDTRANS")
	require.NoError(t, err)
	assert.False(t, byName.IsActive)
}

const secretKeySchema = `{"type":"object","required":["secretKey"],"properties":{"secretKey":{"type":"string"}}}`

type schemaOnlyFactory struct{ name string }

func (f schemaOnlyFactory) Name() string         { return f.name }
func (f schemaOnlyFactory) ConfigSchema() string { return secretKeySchema }
func (f schemaOnlyFactory) New(map[string]any) (gateway.Gateway, error) {
	return nil, nil
}

func TestProviderConfigValidatedByRegisteredGateway(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registry := gateway.NewRegistry(env.providers, nil)
	require.NoError(t, registry.Register(schemaOnlyFactory{name: "stripe"}))
	env.providers.AttachGateways(registry)

	_, err := env.providers.Create(ctx, CreatePaymentProviderInput{Name: "stripe", DisplayName: "Stripe", Config: map[string]any{"apiKey": "x"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := env.providers.Create(ctx, CreatePaymentProviderInput{Name: "stripe", DisplayName: "Stripe", Config: map[string]any{"secretKey": "sk_test"}})
	require.NoError(t, err)
	assert.Equal(t, "sk_test", p.Config["secretKey"])

	_, err = env.providers.Update(ctx, p.ID, UpdatePaymentProviderInput{Config: map[string]any{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// providers without a registered backend accept any config
	_, err = env.providers.Create(ctx, CreatePaymentProviderInput{Name: "paypal", DisplayName: "PayPal", Config: map[string]any{"anything": true}})
	assert.NoError(t, err)
}
