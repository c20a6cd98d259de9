package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MissingCategoryName = "N/A"
	MissingProductName  = "N/A"
	MissingUserName     = "Unknown User"
)

type ProductView struct {
	ProductID    uint            `json:"productId"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	CategoryID   *uint           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
}

type OrderView struct {
	OrderID         uint            `json:"orderId"`
	UserID          uint            `json:"userId"`
	ProductID       uint            `json:"productId"`
	ProductName     string          `json:"productName"`
	FullName        string          `json:"fullName"`
	Quantity        int             `json:"quantity"`
	ShippingAddress string          `json:"shippingAddress"`
	OrderDate       time.Time       `json:"orderDate"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          string          `json:"status"`
}

type CartLine struct {
	CartItemID  uint            `json:"cartItemId"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

func NewProductView(p Product, categories map[uint]Category) ProductView {
	v := ProductView{
		ProductID:    p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		CategoryID:   p.CategoryID,
		CategoryName: MissingCategoryName,
	}
	if p.CategoryID != nil {
		if c, ok := categories[*p.CategoryID]; ok {
			v.CategoryName = c.Name
		}
	}
	return v
}

func NewOrderView(o Order, products map[uint]Product, users map[uint]User) OrderView {
	v := OrderView{
		OrderID:         o.ID,
		UserID:          o.UserID,
		ProductID:       o.ProductID,
		ProductName:     MissingProductName,
		FullName:        MissingUserName,
		Quantity:        o.Quantity,
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
	}
	if p, ok := products[o.ProductID]; ok {
		v.ProductName = p.Name
	}
	if u, ok := users[o.UserID]; ok {
		v.FullName = u.FullName()
	}
	return v
}

// NewCartLine prices the item at the current product price, or zero when the product is gone.
func NewCartLine(it CartItem, products map[uint]Product) CartLine {
	l := CartLine{
		CartItemID:  it.ID,
		ProductID:   it.ProductID,
		ProductName: MissingProductName,
		Quantity:    it.Quantity,
		TotalPrice:  decimal.Zero,
	}
	if p, ok := products[it.ProductID]; ok {
		l.ProductName = p.Name
		l.TotalPrice = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
	}
	return l
}
