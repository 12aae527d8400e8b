package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/internal/pkg/database"
)

func newTestRepos(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()
	db, err := database.OpenInMemory("repo_" + uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewFactory(db).GetRepositories(), db
}

func seedOwner(t *testing.T, repos *Repositories, phone string) *models.User {
	t.Helper()
	u := &models.User{Name: "Owner", Phone: phone}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func seedProvider(t *testing.T, repos *Repositories, name string, active bool) *models.PaymentProvider {
	t.Helper()
	p := &models.PaymentProvider{Name: name, DisplayName: name, IsActive: active}
	require.NoError(t, repos.PaymentProvider.Create(context.Background(), p))
	return p
}

func TestPageHelpers(t *testing.T) {
	tests := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: 1, PageSize: 10}},
		{PageRequest{Page: -3, PageSize: 500}, PageRequest{Page: 1, PageSize: 100}},
		{PageRequest{Page: 4, PageSize: 25}, PageRequest{Page: 4, PageSize: 25}},
		{PageRequest{Page: math.MaxInt, PageSize: 100}, PageRequest{Page: MaxPage, PageSize: 100}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}

	assert.Equal(t, 20, PageRequest{Page: 3, PageSize: 10}.Offset())
	assert.Positive(t, PageRequest{Page: math.MaxInt, PageSize: MaxPageSize}.Normalize().Offset())
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))

	page := NewPage[int](nil, 0, PageRequest{Page: 1, PageSize: 10})
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.Pages)
}

func TestUserRepositorySearchAndCountShareFilter(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	email := "jane@example.com"
	require.NoError(t, repos.User.Create(ctx, &models.User{Name: "John Doe", Phone: "081111111111"}))
	require.NoError(t, repos.User.Create(ctx, &models.User{Name: "Jane Smith", Phone: "082222222222", Email: &email}))
	require.NoError(t, repos.User.Create(ctx, &models.User{Name: "Bob", Phone: "083333333333"}))

	filter := UserFilter{Search: "j"}
	users, err := repos.User.List(ctx, filter, 0, 10)
	require.NoError(t, err)
	count, err := repos.User.Count(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.EqualValues(t, 2, count)

	users, err = repos.User.List(ctx, UserFilter{Search: "0822"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Jane Smith", users[0].Name)

	all, err := repos.User.Count(ctx, UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all)
}

func TestUserRepositoryDeleteCascadesPaymentMethods(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()
	owner := seedOwner(t, repos, "081234567890")
	provider := seedProvider(t, repos, "stripe", true)

	require.NoError(t, repos.PaymentMethod.Create(ctx, &models.PaymentMethod{
		UserID: owner.ID, ProviderID: provider.ID, ProviderMethodID: "pm_1", Type: models.PaymentMethodTypeCreditCard, IsActive: true,
	}))

	require.NoError(t, repos.User.Delete(ctx, owner.ID))

	var remaining int64
	require.NoError(t, db.Model(&models.PaymentMethod{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	assert.ErrorIs(t, repos.User.Delete(ctx, owner.ID), gorm.ErrRecordNotFound)
}

func TestUserRepositoryAPIKeyHash(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	owner := seedOwner(t, repos, "081234567890")

	_, err := repos.User.GetByAPIKeyHash(ctx, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repos.User.SetAPIKeyHash(ctx, owner.ID, "abc"))
	found, err := repos.User.GetByAPIKeyHash(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, found.ID)

	assert.ErrorIs(t, repos.User.SetAPIKeyHash(ctx, "missing", "def"), gorm.ErrRecordNotFound)
}

func TestPhoneUniqueIndexTranslatesToDuplicatedKey(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	seedOwner(t, repos, "081234567890")

	err := repos.User.Create(ctx, &models.User{Name: "Other", Phone: "081234567890"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestProviderRepositoryListAndActive(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	seedProvider(t, repos, "stripe", true)
	time.Sleep(5 * time.Millisecond)
	seedProvider(t, repos, "midtrans", false)
	time.Sleep(5 * time.Millisecond)
	seedProvider(t, repos, "paypal", true)

	all, err := repos.PaymentProvider.List(ctx, PaymentProviderFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "paypal", all[0].Name, "newest first")

	count, err := repos.PaymentProvider.Count(ctx, PaymentProviderFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	active, err := repos.PaymentProvider.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "paypal", active[0].Name)
	assert.Equal(t, "stripe", active[1].Name)
}

func TestProviderRepositoryUpdateNeverWritesName(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	p := seedProvider(t, repos, "stripe", true)

	p.Name = "renamed"
	p.DisplayName = "Stripe Payments"
	p.IsActive = false
	require.NoError(t, repos.PaymentProvider.Update(ctx, p))

	got, err := repos.PaymentProvider.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "stripe", got.Name)
	assert.Equal(t, "Stripe Payments", got.DisplayName)
	assert.False(t, got.IsActive)
}

func TestPaymentMethodRepositoryDefaultHelpers(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	owner := seedOwner(t, repos, "081234567890")
	other := seedOwner(t, repos, "089999999999")
	provider := seedProvider(t, repos, "stripe", true)

	newMethod := func(userID, pmID string, isDefault bool) *models.PaymentMethod {
		m := &models.PaymentMethod{UserID: userID, ProviderID: provider.ID, ProviderMethodID: pmID,
			Type: models.PaymentMethodTypeCreditCard, IsActive: true, IsDefault: isDefault}
		require.NoError(t, repos.PaymentMethod.Create(ctx, m))
		return m
	}
	a := newMethod(owner.ID, "pm_a", true)
	b := newMethod(owner.ID, "pm_b", false)
	foreign := newMethod(other.ID, "pm_x", true)

	cleared, err := repos.PaymentMethod.ClearDefaults(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)
	require.NoError(t, repos.PaymentMethod.MarkDefault(ctx, b.ID))

	def, err := repos.PaymentMethod.GetDefaultForUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
	require.NotNil(t, def.Provider)
	assert.Equal(t, "stripe", def.Provider.Name)
	assert.Nil(t, def.Provider.Config)

	untouched, err := repos.PaymentMethod.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.True(t, untouched.IsDefault)

	require.NoError(t, repos.PaymentMethod.Deactivate(ctx, b.ID))
	got, err := repos.PaymentMethod.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.False(t, got.IsDefault)

	assert.ErrorIs(t, repos.PaymentMethod.MarkDefault(ctx, b.ID), gorm.ErrRecordNotFound, "inactive methods cannot become default")

	active, err := repos.PaymentMethod.GetActiveForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	_, err = repos.PaymentMethod.GetByIDForUser(ctx, foreign.ID, owner.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPaymentMethodRepositoryFilters(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	owner := seedOwner(t, repos, "081234567890")
	stripe := seedProvider(t, repos, "stripe", true)
	paypal := seedProvider(t, repos, "paypal", true)

	require.NoError(t, repos.PaymentMethod.Create(ctx, &models.PaymentMethod{UserID: owner.ID, ProviderID: stripe.ID,
		ProviderMethodID: "pm_1", Type: models.PaymentMethodTypeCreditCard, IsActive: true}))
	require.NoError(t, repos.PaymentMethod.Create(ctx, &models.PaymentMethod{UserID: owner.ID, ProviderID: paypal.ID,
		ProviderMethodID: "pp_1", Type: models.PaymentMethodTypeDigitalWallet, IsActive: false}))

	active := true
	tests := []struct {
		name   string
		filter PaymentMethodFilter
		want   int64
	}{
		{"owner", PaymentMethodFilter{UserID: owner.ID}, 2},
		{"type", PaymentMethodFilter{UserID: owner.ID, Type: models.PaymentMethodTypeDigitalWallet}, 1},
		{"active", PaymentMethodFilter{UserID: owner.ID, IsActive: &active}, 1},
		{"provider", PaymentMethodFilter{UserID: owner.ID, ProviderID: stripe.ID}, 1},
		{"other user", PaymentMethodFilter{UserID: "nobody"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := repos.PaymentMethod.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)

			items, err := repos.PaymentMethod.List(ctx, tt.filter, 0, 10)
			require.NoError(t, err)
			assert.Len(t, items, int(tt.want))
		})
	}

	n, err := repos.PaymentProvider.CountPaymentMethods(ctx, paypal.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPaymentMethodTupleUniqueIndex(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	owner := seedOwner(t, repos, "081234567890")
	provider := seedProvider(t, repos, "stripe", true)

	m := &models.PaymentMethod{UserID: owner.ID, ProviderID: provider.ID, ProviderMethodID: "pm_1", Type: models.PaymentMethodTypeCreditCard, IsActive: true}
	require.NoError(t, repos.PaymentMethod.Create(ctx, m))

	dup := &models.PaymentMethod{UserID: owner.ID, ProviderID: provider.ID, ProviderMethodID: "pm_1", Type: models.PaymentMethodTypeCreditCard, IsActive: true}
	assert.ErrorIs(t, repos.PaymentMethod.Create(ctx, dup), gorm.ErrDuplicatedKey)
}

func TestWithTxRollsBack(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()
	owner := seedOwner(t, repos, "081234567890")
	provider := seedProvider(t, repos, "stripe", true)

	err := repos.PaymentMethod.WithTx(ctx, func(tx PaymentMethodRepository) error {
		require.NoError(t, tx.LockOwner(ctx, owner.ID))
		require.NoError(t, tx.Create(ctx, &models.PaymentMethod{UserID: owner.ID, ProviderID: provider.ID,
			ProviderMethodID: "pm_1", Type: models.PaymentMethodTypeOther, IsActive: true}))
		return gorm.ErrInvalidData
	})
	assert.ErrorIs(t, err, gorm.ErrInvalidData)

	var count int64
	require.NoError(t, db.Model(&models.PaymentMethod{}).Count(&count).Error)
	assert.Zero(t, count)

	err = repos.PaymentMethod.WithTx(ctx, func(tx PaymentMethodRepository) error {
		return tx.LockOwner(ctx, "missing")
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
