package services

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/validation"
)

type CreateUserInput struct {
	Name  string  `json:"nama" validate:"required,min=2,max=100"`
	Phone string  `json:"telp" validate:"required,telp"`
	Email *string `json:"email" validate:"omitempty,email,max=200"`
}

// UpdateUserInput changes only the fields that are set. An empty email removes it.
type UpdateUserInput struct {
	Name  *string `json:"nama" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"telp" validate:"omitempty,telp"`
	Email *string `json:"email" validate:"omitempty,email,max=200"`
}

type ListUsersParams struct {
	repository.PageRequest
	Search string
}

type UserService struct {
	repo  repository.UserRepository
	cache cache.Cache
}

func NewUserService(repo repository.UserRepository, c cache.Cache) *UserService {
	return &UserService{repo: repo, cache: c}
}

// List bypasses the cache.
func (s *UserService) List(ctx context.Context, params ListUsersParams) (*repository.Page[models.User], error) {
	req := params.PageRequest.Normalize()
	filter := repository.UserFilter{Search: params.Search}

	users, err := s.repo.List(ctx, filter, req.Offset(), req.PageSize)
	if err != nil {
		return nil, internal("list users", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, internal("count users", err)
	}
	return repository.NewPage(users, total, req), nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	key := cache.UserKey(id)
	var cached models.User
	if s.cache.Get(ctx, key, &cached) == cache.OK {
		return &cached, nil
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal("find user", err)
	}
	s.cache.Set(ctx, key, user, cache.TTLUser)
	return user, nil
}

func (s *UserService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.repo.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal("find user by phone", err)
	}
	return user, nil
}

// FindByAPIKey resolves a raw API key to its owner.
func (s *UserService) FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	hash := models.HashAPIKey(apiKey)
	key := cache.UserAPIKeyKey(hash)
	var cached models.User
	if s.cache.Get(ctx, key, &cached) == cache.OK {
		return &cached, nil
	}

	user, err := s.repo.GetByAPIKeyHash(ctx, hash)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Invalid API key")
		}
		return nil, internal("find user by api key", err)
	}
	s.cache.Set(ctx, key, user, cache.TTLUserAPIKey)
	return user, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, validationFailed(err)
	}

	if err := s.ensurePhoneFree(ctx, in.Phone, ""); err != nil {
		return nil, err
	}
	if in.Email != nil {
		if err := s.ensureEmailFree(ctx, *in.Email, ""); err != nil {
			return nil, err
		}
	}

	user := &models.User{Name: in.Name, Phone: in.Phone, Email: in.Email}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, conflict("User with this phone number or email already exists")
		}
		return nil, internal("create user", err)
	}
	log.Infof("[UserService] created user %s", user.ID)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if in.Phone != nil {
		trimmed := strings.TrimSpace(*in.Phone)
		in.Phone = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, validationFailed(err)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal("load user", err)
	}

	if in.Phone != nil && *in.Phone != user.Phone {
		if err := s.ensurePhoneFree(ctx, *in.Phone, id); err != nil {
			return nil, err
		}
		user.Phone = *in.Phone
	}
	if in.Email != nil {
		email := normalizeEmail(in.Email)
		if email != nil && (user.Email == nil || *user.Email != *email) {
			if err := s.ensureEmailFree(ctx, *email, id); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, conflict("User with this phone number or email already exists")
		}
		return nil, internal("update user", err)
	}
	s.invalidate(ctx, user)
	return user, nil
}

// Delete removes the user and their payment methods.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return notFound("User not found")
		}
		return internal("load user", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("User not found")
		}
		return internal("delete user", err)
	}
	s.cache.DeleteByPrefix(ctx, cache.UserPrefix(id))
	if user.HasAPIKey() {
		s.cache.Delete(ctx, cache.UserAPIKeyKey(*user.APIKeyHash))
	}
	log.Infof("[UserService] deleted user %s", id)
	return nil
}

// IssueAPIKey replaces the user's API key and returns the new raw key. The raw key is not stored.
func (s *UserService) IssueAPIKey(ctx context.Context, id string) (string, *models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return "", nil, notFound("User not found")
		}
		return "", nil, internal("load user", err)
	}

	raw, hash, err := models.GenerateAPIKey()
	if err != nil {
		return "", nil, internal("generate api key", err)
	}
	if err := s.repo.SetAPIKeyHash(ctx, id, hash); err != nil {
		return "", nil, internal("store api key", err)
	}

	s.invalidate(ctx, user)
	user.APIKeyHash = &hash
	return raw, user, nil
}

func (s *UserService) ensurePhoneFree(ctx context.Context, phone, exceptID string) error {
	existing, err := s.repo.GetByPhone(ctx, phone)
	if err == nil && existing.ID != exceptID {
		return conflict("User with this phone number already exists")
	}
	if err != nil && !isNotFound(err) {
		return internal("check phone", err)
	}
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil && existing.ID != exceptID {
		return conflict("User with this email already exists")
	}
	if err != nil && !isNotFound(err) {
		return internal("check email", err)
	}
	return nil
}

// invalidate drops the single-entity key and the API key lookup of user.
func (s *UserService) invalidate(ctx context.Context, user *models.User) {
	keys := []string{cache.UserKey(user.ID)}
	if user.HasAPIKey() {
		keys = append(keys, cache.UserAPIKeyKey(*user.APIKeyHash))
	}
	s.cache.Delete(ctx, keys...)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validationFailed(err error) error {
	if verr, ok := err.(*validation.Error); ok {
		return InvalidInputWithFields(verr.Error(), verr.Fields)
	}
	return invalidInput("%v", err)
}
