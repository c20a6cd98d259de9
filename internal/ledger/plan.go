package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

// StockWrite sets a product's stock, provided the row still carries Version.
type StockWrite struct {
	ProductID uint
	Version   int
	Stock     int
}

// Plan is the complete set of writes one ledger operation commits.
// At most one of Insert, Update and Delete is set.
type Plan struct {
	Stock  []StockWrite
	Insert *models.Order
	Update *models.Order
	Delete *models.Order
}

type PlaceRequest struct {
	ProductID       uint
	Quantity        int
	UserID          uint
	ShippingAddress string
	Status          string
}

func (r PlaceRequest) validate() error {
	if r.ProductID == 0 {
		return fmt.Errorf("%w: productId is required", domain.ErrInvalidInput)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be > 0", domain.ErrInvalidInput)
	}
	return nil
}

// Patch holds the optional fields of an order update. Zero values mean
// "keep the current value".
type Patch struct {
	ProductID       uint
	Quantity        int
	ShippingAddress string
	Status          string
}

func (p Patch) validate() error {
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be > 0", domain.ErrInvalidInput)
	}
	return nil
}

// target returns the product and quantity the order ends up with.
func (p Patch) target(o models.Order) (uint, int) {
	productID, qty := o.ProductID, o.Quantity
	if p.ProductID != 0 {
		productID = p.ProductID
	}
	if p.Quantity != 0 {
		qty = p.Quantity
	}
	return productID, qty
}

type sheetEntry struct {
	product models.Product
	stock   int
}

// sheet keeps one stock counter per product, so credits and debits against
// the same row are netted before anything is written.
type sheet struct {
	entries map[uint]*sheetEntry
	touched []uint
}

func newSheet(products map[uint]models.Product) *sheet {
	s := &sheet{entries: make(map[uint]*sheetEntry, len(products))}
	for id, p := range products {
		s.entries[id] = &sheetEntry{product: p, stock: p.Stock}
	}
	return s
}

func (s *sheet) get(id uint) (*sheetEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

func (s *sheet) touch(id uint) {
	for _, t := range s.touched {
		if t == id {
			return
		}
	}
	s.touched = append(s.touched, id)
}

// credit returns stock to a product. A product that no longer exists is skipped.
func (s *sheet) credit(id uint, qty int) {
	e, ok := s.get(id)
	if !ok {
		return
	}
	e.stock += qty
	s.touch(id)
}

func (s *sheet) debit(id uint, qty int) (models.Product, error) {
	e, ok := s.get(id)
	if !ok {
		return models.Product{}, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	if e.stock < qty {
		return models.Product{}, fmt.Errorf("%w: product %d has %d, requested %d",
			domain.ErrInsufficientStock, id, e.stock, qty)
	}
	e.stock -= qty
	s.touch(id)
	return e.product, nil
}

func (s *sheet) writes() []StockWrite {
	out := make([]StockWrite, 0, len(s.touched))
	for _, id := range s.touched {
		e := s.entries[id]
		if e.stock == e.product.Stock {
			continue
		}
		out = append(out, StockWrite{ProductID: id, Version: e.product.Version, Stock: e.stock})
	}
	return out
}

func total(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// PlanPlace deducts the requested quantity from product and builds the new order.
func PlanPlace(req PlaceRequest, product models.Product, now time.Time) (Plan, error) {
	if err := req.validate(); err != nil {
		return Plan{}, err
	}

	sh := newSheet(map[uint]models.Product{product.ID: product})
	p, err := sh.debit(req.ProductID, req.Quantity)
	if err != nil {
		return Plan{}, err
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.DefaultOrderStatus
	}

	order := &models.Order{
		UserID:          req.UserID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
		OrderDate:       now,
		TotalAmount:     total(p.Price, req.Quantity),
		Status:          status,
	}
	return Plan{Stock: sh.writes(), Insert: order}, nil
}

// PlanUpdate applies patch to order. products holds whatever could be loaded
// for the current and the target product; a missing current product only
// skips its restoration, a missing target fails with ErrNotFound.
func PlanUpdate(order models.Order, patch Patch, products map[uint]models.Product) (Plan, error) {
	if err := patch.validate(); err != nil {
		return Plan{}, err
	}

	updated := order
	if patch.ShippingAddress != "" {
		updated.ShippingAddress = patch.ShippingAddress
	}
	if patch.Status != "" {
		updated.Status = patch.Status
	}

	productID, qty := patch.target(order)
	if productID == order.ProductID && qty == order.Quantity {
		return Plan{Update: &updated}, nil
	}

	sh := newSheet(products)
	sh.credit(order.ProductID, order.Quantity)
	p, err := sh.debit(productID, qty)
	if err != nil {
		return Plan{}, err
	}

	updated.ProductID = productID
	updated.Quantity = qty
	updated.TotalAmount = total(p.Price, qty)
	return Plan{Stock: sh.writes(), Update: &updated}, nil
}

// PlanDelete returns the order's quantity to its product, if the product still exists.
func PlanDelete(order models.Order, products map[uint]models.Product) Plan {
	sh := newSheet(products)
	sh.credit(order.ProductID, order.Quantity)
	o := order
	return Plan{Stock: sh.writes(), Delete: &o}
}
