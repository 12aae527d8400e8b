package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/gateway"
	"github.com/ManuelReschke/PayFox/internal/pkg/metrics"
	"github.com/ManuelReschke/PayFox/internal/pkg/validation"
)

type CreatePaymentProviderInput struct {
	Name        string         `json:"name" validate:"required,min=2,max=50,slug"`
	DisplayName string         `json:"displayName" validate:"required,min=2,max=100"`
	IsActive    *bool          `json:"isActive"`
	Config      map[string]any `json:"config"`
}

// UpdatePaymentProviderInput changes only the fields that are set.
// Name is accepted so a client echoing the record back is not rejected, but it must not change.
type UpdatePaymentProviderInput struct {
	Name        *string        `json:"name"`
	DisplayName *string        `json:"displayName" validate:"omitempty,min=2,max=100"`
	IsActive    *bool          `json:"isActive"`
	Config      map[string]any `json:"config"`
}

type ListPaymentProvidersParams struct {
	repository.PageRequest
	ActiveOnly bool
}

// GatewayHooks is the part of the gateway registry the provider service drives.
type GatewayHooks interface {
	ValidateConfig(name string, config map[string]any) error
	Refresh(name string)
}

type PaymentProviderService struct {
	repo    repository.PaymentProviderRepository
	cache   cache.Cache
	metrics *metrics.Metrics

	mu       sync.RWMutex
	gateways GatewayHooks
}

func NewPaymentProviderService(repo repository.PaymentProviderRepository, c cache.Cache, m *metrics.Metrics) *PaymentProviderService {
	return &PaymentProviderService{repo: repo, cache: c, metrics: m}
}

// AttachGateways validates configs against registered backends and refreshes
// their instances whenever a provider changes.
func (s *PaymentProviderService) AttachGateways(g GatewayHooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateways = g
}

func (s *PaymentProviderService) hooks() GatewayHooks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateways
}

// List bypasses the cache.
func (s *PaymentProviderService) List(ctx context.Context, params ListPaymentProvidersParams) (*repository.Page[models.PaymentProvider], error) {
	req := params.PageRequest.Normalize()
	filter := repository.PaymentProviderFilter{ActiveOnly: params.ActiveOnly}

	providers, err := s.repo.List(ctx, filter, req.Offset(), req.PageSize)
	if err != nil {
		return nil, internal("list providers", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, internal("count providers", err)
	}
	return repository.NewPage(providers, total, req), nil
}

func (s *PaymentProviderService) FindByID(ctx context.Context, id string) (*models.PaymentProvider, error) {
	key := cache.ProviderKey(id)
	var cached models.PaymentProvider
	if s.cache.Get(ctx, key, &cached) == cache.OK {
		return &cached, nil
	}

	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Payment provider not found")
		}
		return nil, internal("find provider", err)
	}
	s.cache.Set(ctx, key, provider, cache.TTLProvider)
	return provider, nil
}

func (s *PaymentProviderService) FindByName(ctx context.Context, name string) (*models.PaymentProvider, error) {
	provider, err := s.repo.GetByName(ctx, models.NormalizeProviderName(name))
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Payment provider not found")
		}
		return nil, internal("find provider by name", err)
	}
	return provider, nil
}

// ListActive returns the active providers ordered by name.
func (s *PaymentProviderService) ListActive(ctx context.Context) ([]models.PaymentProvider, error) {
	var cached []models.PaymentProvider
	if s.cache.Get(ctx, cache.KeyActiveProviders, &cached) == cache.OK {
		return cached, nil
	}

	providers, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, internal("list active providers", err)
	}
	if providers == nil {
		providers = []models.PaymentProvider{}
	}
	s.cache.Set(ctx, cache.KeyActiveProviders, providers, cache.TTLActiveProviders)
	return providers, nil
}

func (s *PaymentProviderService) Create(ctx context.Context, in CreatePaymentProviderInput) (*models.PaymentProvider, error) {
	in.Name = models.NormalizeProviderName(in.Name)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validation.Struct(in); err != nil {
		return nil, validationFailed(err)
	}
	if err := s.validateConfig(in.Name, in.Config); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByName(ctx, in.Name); err == nil {
		return nil, conflict("Payment provider with this name already exists")
	} else if !isNotFound(err) {
		return nil, internal("check provider name", err)
	}

	provider := &models.PaymentProvider{
		Name:        in.Name,
		DisplayName: in.DisplayName,
		IsActive:    true,
		Config:      in.Config,
	}
	if in.IsActive != nil {
		provider.IsActive = *in.IsActive
	}
	if err := s.repo.Create(ctx, provider); err != nil {
		s.metrics.ProviderOperation(provider.Name, "create", "error")
		if isDuplicate(err) {
			return nil, conflict("Payment provider with this name already exists")
		}
		return nil, internal("create provider", err)
	}
	s.metrics.ProviderOperation(provider.Name, "create", "success")

	s.invalidate(ctx, provider)
	log.Infof("[PaymentProviderService] created provider %s (%s)", provider.Name, provider.ID)
	return provider, nil
}

func (s *PaymentProviderService) Update(ctx context.Context, id string, in UpdatePaymentProviderInput) (*models.PaymentProvider, error) {
	if in.DisplayName != nil {
		trimmed := strings.TrimSpace(*in.DisplayName)
		in.DisplayName = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, validationFailed(err)
	}

	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Payment provider not found")
		}
		return nil, internal("load provider", err)
	}
	if in.Name != nil && models.NormalizeProviderName(*in.Name) != provider.Name {
		return nil, invalidInput("Payment provider name cannot be changed")
	}
	if in.Config != nil {
		if err := s.validateConfig(provider.Name, in.Config); err != nil {
			return nil, err
		}
		provider.Config = in.Config
	}
	if in.DisplayName != nil {
		provider.DisplayName = *in.DisplayName
	}
	if in.IsActive != nil {
		provider.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, provider); err != nil {
		s.metrics.ProviderOperation(provider.Name, "update", "error")
		return nil, internal("update provider", err)
	}
	s.metrics.ProviderOperation(provider.Name, "update", "success")
	s.invalidate(ctx, provider)
	return provider, nil
}

// ToggleActive flips the active flag.
func (s *PaymentProviderService) ToggleActive(ctx context.Context, id string) (*models.PaymentProvider, error) {
	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Payment provider not found")
		}
		return nil, internal("load provider", err)
	}
	provider.IsActive = !provider.IsActive
	if err := s.repo.Update(ctx, provider); err != nil {
		s.metrics.ProviderOperation(provider.Name, "toggle", "error")
		return nil, internal("toggle provider", err)
	}
	s.metrics.ProviderOperation(provider.Name, "toggle", "success")
	s.invalidate(ctx, provider)
	return provider, nil
}

// Delete refuses while any payment method still references the provider.
func (s *PaymentProviderService) Delete(ctx context.Context, id string) error {
	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return notFound("Payment provider not found")
		}
		return internal("load provider", err)
	}

	count, err := s.repo.CountPaymentMethods(ctx, id)
	if err != nil {
		return internal("count provider payment methods", err)
	}
	if count > 0 {
		return conflict("Cannot delete payment provider with %d existing payment method(s)", count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.ProviderOperation(provider.Name, "delete", "error")
		if isNotFound(err) {
			return notFound("Payment provider not found")
		}
		return internal("delete provider", err)
	}
	s.metrics.ProviderOperation(provider.Name, "delete", "success")
	s.invalidate(ctx, provider)
	log.Infof("[PaymentProviderService] deleted provider %s (%s)", provider.Name, provider.ID)
	return nil
}

func (s *PaymentProviderService) PaymentMethodsCount(ctx context.Context, id string) (int64, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return 0, err
	}
	count, err := s.repo.CountPaymentMethods(ctx, id)
	if err != nil {
		return 0, internal("count provider payment methods", err)
	}
	return count, nil
}

func (s *PaymentProviderService) validateConfig(name string, config map[string]any) error {
	g := s.hooks()
	if g == nil {
		return nil
	}
	err := g.ValidateConfig(name, config)
	if err == nil || errors.Is(err, gateway.ErrNotRegistered) {
		return nil
	}
	return invalidInput("%v", err)
}

// invalidate drops the provider entry, the active list and every cached
// payment method list, since those embed provider details.
func (s *PaymentProviderService) invalidate(ctx context.Context, provider *models.PaymentProvider) {
	s.cache.Delete(ctx, cache.ProviderKey(provider.ID), cache.KeyActiveProviders)
	s.cache.DeleteByPattern(ctx, cache.PatternAllUserPaymentMethods)
	if g := s.hooks(); g != nil {
		g.Refresh(provider.Name)
	}
}
