package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/ledger"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

type GormRepo struct {
	DB *gorm.DB
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// translate maps store errors onto the domain taxonomy. Errors that already
// carry a domain kind pass through unchanged.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected) {
		return fmt.Errorf("%w: %s: %s", domain.ErrConflict, what, pgErr.Message)
	}
	if k := domain.KindOf(err); k != domain.ErrInternal || errors.Is(err, domain.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrInternal, what, err)
}

func conflict(what string, id uint) error {
	return fmt.Errorf("%w: %s %d was modified concurrently", domain.ErrConflict, what, id)
}

// Atomic runs fn inside one database transaction.
func (r *GormRepo) Atomic(ctx context.Context, fn func(tx ledger.Tx) error) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
	return translate(err, "transaction")
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Product(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := t.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product %d", id))
	}
	return &p, nil
}

func (t *gormTx) Order(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := t.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("order %d", id))
	}
	return &o, nil
}

func (t *gormTx) Apply(ctx context.Context, plan ledger.Plan) error {
	db := t.db.WithContext(ctx)

	for _, w := range plan.Stock {
		res := db.Model(&models.Product{}).
			Where("id = ? AND version = ?", w.ProductID, w.Version).
			Updates(map[string]any{
				"stock":   w.Stock,
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("update stock of product %d", w.ProductID))
		}
		if res.RowsAffected == 0 {
			return conflict("product", w.ProductID)
		}
	}

	switch {
	case plan.Insert != nil:
		plan.Insert.Version = 1
		if err := db.Create(plan.Insert).Error; err != nil {
			return translate(err, "insert order")
		}

	case plan.Update != nil:
		o := plan.Update
		res := db.Model(&models.Order{}).
			Where("id = ? AND version = ?", o.ID, o.Version).
			Updates(map[string]any{
				"product_id":       o.ProductID,
				"quantity":         o.Quantity,
				"shipping_address": o.ShippingAddress,
				"total_amount":     o.TotalAmount,
				"status":           o.Status,
				"version":          gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("update order %d", o.ID))
		}
		if res.RowsAffected == 0 {
			return conflict("order", o.ID)
		}
		o.Version++

	case plan.Delete != nil:
		o := plan.Delete
		res := db.Where("id = ? AND version = ?", o.ID, o.Version).Delete(&models.Order{})
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("delete order %d", o.ID))
		}
		if res.RowsAffected == 0 {
			return conflict("order", o.ID)
		}
	}
	return nil
}
