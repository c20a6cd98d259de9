package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

// ListOrders returns all orders, or only those whose product name contains productName.
func (r *GormRepo) ListOrders(ctx context.Context, productName string) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if strings.TrimSpace(productName) != "" {
		names := r.DB.WithContext(ctx).Model(&models.Product{}).
			Select("id").
			Where("LOWER(name) LIKE ?", likePattern(productName))
		q = q.Where("product_id IN (?)", names)
	}

	var orders []models.Order
	if err := q.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, translate(err, "list orders")
	}
	return orders, nil
}
