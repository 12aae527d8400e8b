package services

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/gateway"
	"github.com/ManuelReschke/PayFox/internal/pkg/validation"
)

type CreatePaymentMethodInput struct {
	ProviderID       string                   `json:"providerId" validate:"required"`
	ProviderMethodID string                   `json:"providerMethodId" validate:"required,max=191"`
	Type             models.PaymentMethodType `json:"type" validate:"required,oneof=CREDIT_CARD DEBIT_CARD BANK_ACCOUNT DIGITAL_WALLET OTHER"`
	Last4            *string                  `json:"last4" validate:"omitempty,len=4,numeric"`
	ExpiryMonth      *int                     `json:"expiryMonth" validate:"omitempty,min=1,max=12"`
	ExpiryYear       *int                     `json:"expiryYear" validate:"omitempty,notpastyear"`
	Brand            *string                  `json:"brand" validate:"omitempty,max=50"`
	IsDefault        bool                     `json:"isDefault"`
	Metadata         map[string]any           `json:"metadata"`
}

// UpdatePaymentMethodInput only covers descriptive fields. Owner, provider and flags
// change through dedicated operations.
type UpdatePaymentMethodInput struct {
	Type        *models.PaymentMethodType `json:"type" validate:"omitempty,oneof=CREDIT_CARD DEBIT_CARD BANK_ACCOUNT DIGITAL_WALLET OTHER"`
	Last4       *string                   `json:"last4" validate:"omitempty,len=4,numeric"`
	ExpiryMonth *int                      `json:"expiryMonth" validate:"omitempty,min=1,max=12"`
	ExpiryYear  *int                      `json:"expiryYear" validate:"omitempty,notpastyear"`
	Brand       *string                   `json:"brand" validate:"omitempty,max=50"`
	Metadata    map[string]any            `json:"metadata"`
}

type ListPaymentMethodsParams struct {
	repository.PageRequest
	Type       models.PaymentMethodType
	IsActive   *bool
	ProviderID string
}

// GatewayResolver returns the backend of a provider. gateway.ErrNotRegistered means there is none.
type GatewayResolver interface {
	Get(ctx context.Context, name string) (gateway.Gateway, error)
}

type PaymentMethodService struct {
	repo      repository.PaymentMethodRepository
	providers *PaymentProviderService
	enforcer  *DefaultMethodEnforcer
	cache     cache.Cache
	gateways  GatewayResolver
}

func NewPaymentMethodService(
	repo repository.PaymentMethodRepository,
	providers *PaymentProviderService,
	c cache.Cache,
	gateways GatewayResolver,
) *PaymentMethodService {
	return &PaymentMethodService{
		repo:      repo,
		providers: providers,
		enforcer:  NewDefaultMethodEnforcer(repo),
		cache:     c,
		gateways:  gateways,
	}
}

// List returns one page of the user's methods, default first. It bypasses the cache.
func (s *PaymentMethodService) List(ctx context.Context, userID string, params ListPaymentMethodsParams) (*repository.Page[models.PaymentMethod], error) {
	if params.Type != "" && !params.Type.Valid() {
		return nil, invalidInput("Unknown payment method type %q", params.Type)
	}
	req := params.PageRequest.Normalize()
	filter := repository.PaymentMethodFilter{
		UserID:     userID,
		Type:       params.Type,
		IsActive:   params.IsActive,
		ProviderID: params.ProviderID,
	}

	methods, err := s.repo.List(ctx, filter, req.Offset(), req.PageSize)
	if err != nil {
		return nil, internal("list payment methods", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, internal("count payment methods", err)
	}
	return repository.NewPage(methods, total, req), nil
}

func (s *PaymentMethodService) FindByIDForUser(ctx context.Context, id, userID string) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Payment method not found")
		}
		return nil, internal("find payment method", err)
	}
	return method, nil
}

// ListActive returns every active method of the user, default first.
func (s *PaymentMethodService) ListActive(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	key := cache.UserPaymentMethodsKey(userID)
	var cached []models.PaymentMethod
	if s.cache.Get(ctx, key, &cached) == cache.OK {
		return cached, nil
	}

	methods, err := s.repo.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, internal("list active payment methods", err)
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	s.cache.Set(ctx, key, methods, cache.TTLUserPaymentMethods)
	return methods, nil
}

func (s *PaymentMethodService) GetDefault(ctx context.Context, userID string) (*models.PaymentMethod, error) {
	method, err := s.repo.GetDefaultForUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("No default payment method")
		}
		return nil, internal("find default payment method", err)
	}
	return method, nil
}

func (s *PaymentMethodService) Create(ctx context.Context, userID string, in CreatePaymentMethodInput) (*models.PaymentMethod, error) {
	if err := validation.Struct(in); err != nil {
		return nil, validationFailed(err)
	}

	provider, err := s.providers.FindByID(ctx, in.ProviderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidInput("Payment provider not found")
		}
		return nil, err
	}
	if !provider.IsActive {
		return nil, invalidInput("Payment provider is not active")
	}

	if _, err := s.repo.GetByProviderMethodID(ctx, in.ProviderMethodID, userID); err == nil {
		return nil, conflict("Payment method already exists")
	} else if !isNotFound(err) {
		return nil, internal("check payment method", err)
	}

	if err := s.validateWithGateway(ctx, provider.Name, userID, in); err != nil {
		return nil, err
	}

	method := &models.PaymentMethod{
		UserID:           userID,
		ProviderID:       provider.ID,
		ProviderMethodID: in.ProviderMethodID,
		Type:             in.Type,
		Last4:            in.Last4,
		ExpiryMonth:      in.ExpiryMonth,
		ExpiryYear:       in.ExpiryYear,
		Brand:            in.Brand,
		IsActive:         true,
		IsDefault:        in.IsDefault,
		Metadata:         in.Metadata,
	}
	if err := s.enforcer.Create(ctx, method); err != nil {
		if isDuplicate(err) {
			return nil, conflict("Payment method already exists")
		}
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal("create payment method", err)
	}
	s.invalidate(ctx, userID)
	log.Infof("[PaymentMethodService] created payment method %s for user %s", method.ID, userID)

	return s.reload(ctx, method)
}

func (s *PaymentMethodService) Update(ctx context.Context, id, userID string, in UpdatePaymentMethodInput) (*models.PaymentMethod, error) {
	if err := validation.Struct(in); err != nil {
		return nil, validationFailed(err)
	}
	method, err := s.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Type != nil {
		method.Type = *in.Type
	}
	if in.Last4 != nil {
		method.Last4 = in.Last4
	}
	if in.ExpiryMonth != nil {
		method.ExpiryMonth = in.ExpiryMonth
	}
	if in.ExpiryYear != nil {
		method.ExpiryYear = in.ExpiryYear
	}
	if in.Brand != nil {
		method.Brand = in.Brand
	}
	if in.Metadata != nil {
		method.Metadata = in.Metadata
	}

	if err := s.repo.Update(ctx, method); err != nil {
		return nil, internal("update payment method", err)
	}
	s.invalidate(ctx, userID)
	return method, nil
}

// Delete removes the method. A registered backend is asked to forget it too, best effort.
func (s *PaymentMethodService) Delete(ctx context.Context, id, userID string) error {
	method, err := s.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("Payment method not found")
		}
		return internal("delete payment method", err)
	}
	s.invalidate(ctx, userID)

	if method.Provider != nil && s.gateways != nil {
		if gw, err := s.gateways.Get(ctx, method.Provider.Name); err == nil {
			if err := gw.DeletePaymentMethod(ctx, method.ProviderMethodID); err != nil {
				log.Warnf("[PaymentMethodService] gateway %s failed to delete %s: %v", method.Provider.Name, method.ProviderMethodID, err)
			}
		}
	}
	return nil
}

// SetDefault makes the method the user's only default.
func (s *PaymentMethodService) SetDefault(ctx context.Context, id, userID string) (*models.PaymentMethod, error) {
	method, err := s.enforcer.Promote(ctx, id, userID)
	if err != nil {
		return nil, s.mapEnforcerError(err)
	}
	s.invalidate(ctx, userID)
	return method, nil
}

// Deactivate marks the method inactive and non-default.
func (s *PaymentMethodService) Deactivate(ctx context.Context, id, userID string) (*models.PaymentMethod, error) {
	method, err := s.enforcer.Deactivate(ctx, id, userID)
	if err != nil {
		return nil, s.mapEnforcerError(err)
	}
	s.invalidate(ctx, userID)
	return method, nil
}

func (s *PaymentMethodService) mapEnforcerError(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if isNotFound(err) {
		return notFound("Payment method not found")
	}
	return internal("update default payment method", err)
}

func (s *PaymentMethodService) validateWithGateway(ctx context.Context, providerName, userID string, in CreatePaymentMethodInput) error {
	if s.gateways == nil {
		return nil
	}
	gw, err := s.gateways.Get(ctx, providerName)
	if errors.Is(err, gateway.ErrNotRegistered) {
		return nil
	}
	if err != nil {
		return invalidInput("Payment provider %s is not available: %v", providerName, err)
	}
	data := gateway.MethodData{
		UserID:           userID,
		ProviderMethodID: in.ProviderMethodID,
		Type:             string(in.Type),
		Last4:            in.Last4,
		ExpiryMonth:      in.ExpiryMonth,
		ExpiryYear:       in.ExpiryYear,
		Brand:            in.Brand,
		Metadata:         in.Metadata,
	}
	if err := gw.ValidatePaymentMethod(ctx, data); err != nil {
		return invalidInput("Payment method rejected by %s: %v", providerName, err)
	}
	return nil
}

func (s *PaymentMethodService) reload(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	fresh, err := s.repo.GetByID(ctx, method.ID)
	if err != nil {
		log.Warnf("[PaymentMethodService] reload %s failed: %v", method.ID, err)
		return method, nil
	}
	return fresh, nil
}

func (s *PaymentMethodService) invalidate(ctx context.Context, userID string) {
	s.cache.Delete(ctx, cache.UserPaymentMethodsKey(userID))
}
