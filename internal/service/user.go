package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
)

type UserService struct {
	Repo   *repo.GormRepo
	Policy access.Policy
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) AddUser(ctx context.Context, claim access.Claim, req transport.UserRequest) (*models.User, error) {
	if err := s.Policy.Authorize(claim, access.OpManageUsers, nil); err != nil {
		return nil, err
	}
	first := strings.TrimSpace(req.FirstName)
	if first == "" {
		return nil, fmt.Errorf("%w: firstName is required", domain.ErrInvalidInput)
	}

	u := models.User{
		FirstName: first,
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
	}
	if err := s.Repo.CreateUser(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
