package service

import (
	"context"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
	"github.com/Skotchmaster/ecommerce_api/internal/ledger"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
)

const (
	EventOrderPlaced  = "order_placed"
	EventOrderUpdated = "order_updated"
	EventOrderDeleted = "order_deleted"
)

type OrderService struct {
	Ledger *ledger.Ledger
	Repo   *repo.GormRepo
	Events events.Publisher
}

// ListOrders returns orders joined with product and user names.
func (s *OrderService) ListOrders(ctx context.Context, productName string) ([]models.OrderView, error) {
	orders, err := s.Repo.ListOrders(ctx, productName)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(orders))
	userIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		productIDs = append(productIDs, o.ProductID)
		userIDs = append(userIDs, o.UserID)
	}
	products, err := s.Repo.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.Repo.UsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.OrderView, len(orders))
	for n, o := range orders {
		out[n] = models.NewOrderView(o, products, users)
	}
	return out, nil
}

func (s *OrderService) PlaceOrder(ctx context.Context, claim access.Claim, req transport.PlaceOrderRequest) (*models.Order, error) {
	order, err := s.Ledger.PlaceOrder(ctx, claim, ledger.PlaceRequest{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		UserID:          req.UserID,
		ShippingAddress: req.ShippingAddress,
		Status:          req.Status,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, key(order.ID), events.New(EventOrderPlaced, order))
	return order, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, claim access.Claim, id uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.Ledger.UpdateOrder(ctx, claim, id, toPatch(req))
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, key(order.ID), events.New(EventOrderUpdated, order))
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, claim access.Claim, id uint) error {
	order, err := s.Ledger.DeleteOrder(ctx, claim, id)
	if err != nil {
		return err
	}

	publish(ctx, s.Events, events.TopicOrders, key(order.ID), events.New(EventOrderDeleted, map[string]any{
		"orderId":   order.ID,
		"productId": order.ProductID,
		"quantity":  order.Quantity,
	}))
	return nil
}

func toPatch(req transport.UpdateOrderRequest) ledger.Patch {
	var p ledger.Patch
	if req.ProductID != nil {
		p.ProductID = *req.ProductID
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.ShippingAddress != nil {
		p.ShippingAddress = *req.ShippingAddress
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	return p
}
