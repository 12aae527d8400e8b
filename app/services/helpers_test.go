package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/database"
)

type testEnv struct {
	db        *gorm.DB
	repos     *repository.Repositories
	redis     *miniredis.Miniredis
	cache     cache.Cache
	users     *UserService
	providers *PaymentProviderService
	methods   *PaymentMethodService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	env := newTestEnvWithCache(t, cache.NewRedisCache(client, time.Second, nil))
	env.redis = mr
	return env
}

func newTestEnvWithCache(t *testing.T, c cache.Cache) *testEnv {
	t.Helper()
	db, err := database.OpenInMemory("svc_" + uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(db)
	providers := NewPaymentProviderService(repos.PaymentProvider, c, nil)
	return &testEnv{
		db:        db,
		repos:     repos,
		cache:     c,
		users:     NewUserService(repos.User, c),
		providers: providers,
		methods:   NewPaymentMethodService(repos.PaymentMethod, providers, c, nil),
	}
}

func (e *testEnv) createUser(t *testing.T, name, phone string) *models.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), CreateUserInput{Name: name, Phone: phone})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createProvider(t *testing.T, name string) *models.PaymentProvider {
	t.Helper()
	p, err := e.providers.Create(context.Background(), CreatePaymentProviderInput{Name: name, DisplayName: name + " display"})
	require.NoError(t, err)
	return p
}

func (e *testEnv) createMethod(t *testing.T, userID, providerID, pmID string, isDefault bool) *models.PaymentMethod {
	t.Helper()
	m, err := e.methods.Create(context.Background(), userID, CreatePaymentMethodInput{
		ProviderID:       providerID,
		ProviderMethodID: pmID,
		Type:             models.PaymentMethodTypeCreditCard,
		IsDefault:        isDefault,
	})
	require.NoError(t, err)
	return m
}

// defaults returns the ids of the user's methods flagged default, read straight from the store.
func (e *testEnv) defaults(t *testing.T, userID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, e.db.Model(&models.PaymentMethod{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Pluck("id", &ids).Error)
	return ids
}

func (e *testEnv) inactiveDefaults(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.PaymentMethod{}).
		Where("is_default = ? AND is_active = ?", true, false).
		Count(&n).Error)
	return n
}

func ptr[T any](v T) *T {
	return &v
}
