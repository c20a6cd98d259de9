package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
)

type CartService struct {
	Repo   *repo.GormRepo
	Policy access.Policy
}

func (s *CartService) actor(claim access.Claim) (uint, error) {
	if err := s.Policy.Authorize(claim, access.OpUseCart, nil); err != nil {
		return 0, err
	}
	return *claim.ActorID, nil
}

func (s *CartService) GetCart(ctx context.Context, claim access.Claim) ([]models.CartLine, error) {
	userID, err := s.actor(claim)
	if err != nil {
		return nil, err
	}

	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.CartLine, len(items))
	for n, it := range items {
		out[n] = models.NewCartLine(it, products)
	}
	return out, nil
}

func (s *CartService) AddToCart(ctx context.Context, claim access.Claim, req transport.AddToCartRequest) (*models.CartItem, error) {
	userID, err := s.actor(claim)
	if err != nil {
		return nil, err
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("%w: productId is required", domain.ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", domain.ErrInvalidInput)
	}

	item := models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.Repo.AddToCart(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, claim access.Claim, itemID uint) error {
	userID, err := s.actor(claim)
	if err != nil {
		return err
	}
	return s.Repo.RemoveFromCart(ctx, userID, itemID)
}
