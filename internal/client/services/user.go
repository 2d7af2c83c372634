package services

import (
	"context"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/adminkit/adminctl/internal/client/api"
	"github.com/adminkit/adminctl/internal/client/models"
	"github.com/go-playground/validator/v10"
)

// UserService is the CRUD client for managed user records. Identifiers and
// payloads are checked locally before any request goes out; a single failed
// attempt is terminal for that call.
type UserService interface {
	List(ctx context.Context, params models.ListParams) (*models.UserPage, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, payload models.UserCreate) (*models.User, error)
	Update(ctx context.Context, id int64, payload models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	client   api.Client
	validate *validator.Validate
}

// NewUserService constructs a UserService over the given transport.
func NewUserService(client api.Client) UserService {
	return &userService{
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func invalidID() *apperr.Error {
	return apperr.New(apperr.CodeInvalidID, "Invalid user ID")
}

func (s *userService) List(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	page, err := s.client.ListUsers(ctx, params)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return page, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, invalidID()
	}
	u, err := s.client.GetUser(ctx, id)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, payload models.UserCreate) (*models.User, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidationError, "Invalid user data provided", err)
	}
	u, err := s.client.CreateUser(ctx, payload)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id int64, payload models.UserUpdate) (*models.User, error) {
	if id <= 0 {
		return nil, invalidID()
	}
	if err := s.validate.Struct(payload); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidationError, "Invalid user data provided", err)
	}
	u, err := s.client.UpdateUser(ctx, id, payload)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID()
	}
	if err := s.client.DeleteUser(ctx, id); err != nil {
		return apperr.Normalize(err)
	}
	return nil
}
