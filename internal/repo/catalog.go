package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

type ProductFilter struct {
	Query      string
	CategoryID *uint
}

// CascadeResult counts the rows DeleteProduct removed along with the product.
type CascadeResult struct {
	Orders    int64 `json:"orders"`
	CartItems int64 `json:"cartItems"`
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, translate(err, "list categories")
	}
	return cats, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category %d", id))
	}
	return &cat, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return translate(r.DB.WithContext(ctx).Create(cat).Error, "create category")
}

// DeleteCategory refuses to remove a category that products still reference.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: category %d is used by %d products", domain.ErrConflict, id, refs)
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, fmt.Sprintf("category %d", id))
}

func (r *GormRepo) CategoriesByIDs(ctx context.Context, ids []uint) (map[uint]models.Category, error) {
	out := make(map[uint]models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, translate(err, "load categories")
	}
	for _, c := range cats {
		out[c.ID] = c
	}
	return out, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if strings.TrimSpace(f.Query) != "" {
		p := likePattern(f.Query)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}

	var items []models.Product
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return items, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translate(err, "load products")
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product %d", id))
	}
	return &p, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Version = 1
	return translate(r.DB.WithContext(ctx).Create(p).Error, "create product")
}

// SaveProduct replaces the editable fields of p if the row still has p.Version.
// On success p.Version is the new version.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.Product{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"stock":       p.Stock,
			"category_id": p.CategoryID,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("update product %d", p.ID))
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&models.Product{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return translate(err, fmt.Sprintf("product %d", p.ID))
		}
		if n == 0 {
			return fmt.Errorf("%w: product %d", domain.ErrNotFound, p.ID)
		}
		return conflict("product", p.ID)
	}
	p.Version++
	return nil
}

// DeleteProduct removes the product together with every order and cart item
// that references it, in one transaction.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (CascadeResult, error) {
	var out CascadeResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("product_id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		out.Orders = res.RowsAffected

		res = tx.Where("product_id = ?", id).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		out.CartItems = res.RowsAffected

		res = tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return CascadeResult{}, translate(err, fmt.Sprintf("product %d", id))
	}
	return out, nil
}
