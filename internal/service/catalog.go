package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/internal/util"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
	"github.com/Skotchmaster/ecommerce_api/pkg/search"
)

const (
	EventCategoryCreated = "category_created"
	EventCategoryDeleted = "category_deleted"
	EventProductCreated  = "product_created"
	EventProductUpdated  = "product_updated"
	EventProductDeleted  = "product_deleted"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Policy access.Policy
	Events events.Publisher
	Index  search.Index
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) AddCategory(ctx context.Context, claim access.Claim, req transport.CategoryRequest) (*models.Category, error) {
	if err := s.Policy.Authorize(claim, access.OpManageCatalog, nil); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	cat := models.Category{Name: name}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCategories, key(cat.ID), events.New(EventCategoryCreated, cat))
	return &cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, claim access.Claim, id uint) error {
	if err := s.Policy.Authorize(claim, access.OpManageCatalog, nil); err != nil {
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.Events, events.TopicCategories, key(id), events.New(EventCategoryDeleted, map[string]any{"categoryId": id}))
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.ProductView, error) {
	items, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Product{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SearchProducts queries the search index and falls back to the substring
// filter when no index is configured or the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (int64, []models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: q is required", domain.ErrInvalidInput)
	}
	from, limit := util.Calculate(page, size)

	total, docs, err := s.searchIndex().Search(ctx, q, from, limit)
	if err == nil {
		items := make([]models.Product, len(docs))
		for n, d := range docs {
			items[n] = fromDoc(d)
		}
		views, err := s.views(ctx, items)
		return total, views, err
	}
	if !errors.Is(err, search.ErrDisabled) {
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	all, err := s.ListProducts(ctx, repo.ProductFilter{Query: q})
	if err != nil {
		return 0, nil, err
	}
	lo, hi := util.Window(len(all), from, limit)
	return int64(len(all)), all[lo:hi], nil
}

func (s *CatalogService) AddProduct(ctx context.Context, claim access.Claim, req transport.ProductRequest) (*models.Product, error) {
	if err := s.Policy.Authorize(claim, access.OpManageCatalog, nil); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	p := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, key(p.ID), events.New(EventProductCreated, p))
	return &p, nil
}

// UpdateProduct replaces all editable fields of the product.
func (s *CatalogService) UpdateProduct(ctx context.Context, claim access.Claim, id uint, req transport.ProductRequest) (*models.Product, error) {
	if err := s.Policy.Authorize(claim, access.OpManageCatalog, nil); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != p.Version {
		return nil, fmt.Errorf("%w: product %d is at version %d", domain.ErrConflict, id, p.Version)
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.CategoryID = req.CategoryID
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, *p)
	publish(ctx, s.Events, events.TopicProducts, key(p.ID), events.New(EventProductUpdated, p))
	return p, nil
}

// DeleteProduct removes the product and every order and cart item referencing it.
func (s *CatalogService) DeleteProduct(ctx context.Context, claim access.Claim, id uint) (repo.CascadeResult, error) {
	if err := s.Policy.Authorize(claim, access.OpManageCatalog, nil); err != nil {
		return repo.CascadeResult{}, err
	}
	res, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return repo.CascadeResult{}, err
	}

	if err := s.searchIndex().DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search_delete_failed", "product_id", id, "error", err)
	}
	publish(ctx, s.Events, events.TopicProducts, key(id), events.New(EventProductDeleted, map[string]any{
		"productId":        id,
		"ordersRemoved":    res.Orders,
		"cartItemsRemoved": res.CartItems,
	}))
	return res, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, req transport.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", domain.ErrInvalidInput)
	}
	if req.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", domain.ErrInvalidInput)
	}
	if req.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: category %d does not exist", domain.ErrInvalidInput, *req.CategoryID)
			}
			return err
		}
	}
	return nil
}

func (s *CatalogService) views(ctx context.Context, items []models.Product) ([]models.ProductView, error) {
	var ids []uint
	for _, p := range items {
		if p.CategoryID != nil {
			ids = append(ids, *p.CategoryID)
		}
	}
	cats, err := s.Repo.CategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProductView, len(items))
	for n, p := range items {
		out[n] = models.NewProductView(p, cats)
	}
	return out, nil
}

func (s *CatalogService) searchIndex() search.Index {
	if s.Index == nil {
		return search.Nop{}
	}
	return s.Index
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if err := s.searchIndex().IndexProduct(ctx, toDoc(p)); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func toDoc(p models.Product) search.Product {
	return search.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

func fromDoc(d search.Product) models.Product {
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		CategoryID:  d.CategoryID,
	}
}
